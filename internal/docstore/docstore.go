package docstore

import (
	"context"
	"fmt"
	"regexp"
)

// Reserved document fields. Every stored document carries an id and a
// creation time; updatedAt is set by the first Update.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// Document is a single record in a collection, keyed by field name.
type Document map[string]any

// ID returns the document's id field, or "" when absent.
func (d Document) ID() string {
	id, _ := d[FieldID].(string)
	return id
}

// Clone returns a shallow copy of d.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Operator is a comparison used in a query condition.
type Operator string

const (
	OpEqual          Operator = "=="
	OpNotEqual       Operator = "!="
	OpLess           Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpGreater        Operator = ">"
	OpGreaterOrEqual Operator = ">="
)

// Valid reports whether o is a supported operator.
func (o Operator) Valid() bool {
	switch o {
	case OpEqual, OpNotEqual, OpLess, OpLessOrEqual, OpGreater, OpGreaterOrEqual:
		return true
	}
	return false
}

// Condition restricts a query to documents whose Field compares to Value.
type Condition struct {
	Field string
	Op    Operator
	Value any
}

// Where builds a condition.
func Where(field string, op Operator, value any) Condition {
	return Condition{Field: field, Op: op, Value: value}
}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// OrderBy sorts query results by a field. Documents lacking the field are
// excluded from ordered results. Ties are broken by id in the same direction.
type OrderBy struct {
	Field     string
	Direction Direction
}

// Query selects documents from a collection. A zero Limit means no limit.
type Query struct {
	Conditions []Condition
	OrderBy    *OrderBy
	Limit      int
}

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks field names, operators and the limit.
func (q Query) Validate() error {
	for _, c := range q.Conditions {
		if !fieldPattern.MatchString(c.Field) {
			return fmt.Errorf("%w: field %q", ErrInvalidQuery, c.Field)
		}
		if !c.Op.Valid() {
			return fmt.Errorf("%w: operator %q", ErrInvalidQuery, c.Op)
		}
	}
	if q.OrderBy != nil {
		if !fieldPattern.MatchString(q.OrderBy.Field) {
			return fmt.Errorf("%w: order field %q", ErrInvalidQuery, q.OrderBy.Field)
		}
		if q.OrderBy.Direction != Asc && q.OrderBy.Direction != Desc {
			return fmt.Errorf("%w: direction %q", ErrInvalidQuery, q.OrderBy.Direction)
		}
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: negative limit", ErrInvalidQuery)
	}
	return nil
}

// Collection is a named set of documents supporting generic CRUD and
// filtered, ordered, limited queries.
type Collection interface {
	// Create stores doc, assigning a new id when it has none, and stamps
	// createdAt with the store clock. Returns ErrDuplicate when the id is taken.
	Create(ctx context.Context, doc Document) (Document, error)

	// FindByID returns the document with the given id or ErrNotFound.
	FindByID(ctx context.Context, id string) (Document, error)

	// FindByField returns every document whose field equals value.
	FindByField(ctx context.Context, field string, value any) ([]Document, error)

	// Update merges patch into the stored document, stamps updatedAt, and
	// returns the merged result. Returns ErrNotFound when absent.
	Update(ctx context.Context, id string, patch Document) (Document, error)

	// Delete removes the document. Deleting an absent document is not an error.
	Delete(ctx context.Context, id string) error

	// Query returns the documents matching q.
	Query(ctx context.Context, q Query) ([]Document, error)
}

// Store hands out collections over one backing database.
type Store interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
	Close() error
}
