package postgres

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/phrazzld/tasks-api/internal/docstore"
)

const selectColumns = "id, data, created_at, updated_at"

// sqlBuilder accumulates positional arguments while a statement is built.
type sqlBuilder struct {
	sb   strings.Builder
	args []any
}

func (b *sqlBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *sqlBuilder) write(parts ...string) {
	for _, p := range parts {
		b.sb.WriteString(p)
	}
}

// buildSelect translates a document query into SQL over the documents table.
// Reserved fields map to their columns; every other field is compared as
// JSONB. Ordering on a data field excludes rows lacking it, and ties are
// broken by id in the same direction.
func buildSelect(collection string, q docstore.Query) (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}

	b := &sqlBuilder{}
	b.write("SELECT ", selectColumns, " FROM documents WHERE collection = ", b.arg(collection))

	for _, c := range q.Conditions {
		lhs, rhs, err := b.conditionOperands(c)
		if err != nil {
			return "", nil, err
		}
		b.write(" AND ", lhs, " ", sqlOperator(c.Op), " ", rhs)
	}

	if q.OrderBy != nil {
		dir := "ASC"
		if q.OrderBy.Direction == docstore.Desc {
			dir = "DESC"
		}
		expr := b.fieldExpr(q.OrderBy.Field)
		if q.OrderBy.Field != docstore.FieldID && q.OrderBy.Field != docstore.FieldCreatedAt {
			b.write(" AND ", expr, " IS NOT NULL")
		}
		b.write(" ORDER BY ", expr, " ", dir, ", id ", dir)
	} else {
		b.write(" ORDER BY id ASC")
	}

	if q.Limit > 0 {
		b.write(" LIMIT ", b.arg(q.Limit))
	}

	return b.sb.String(), b.args, nil
}

func (b *sqlBuilder) fieldExpr(field string) string {
	switch field {
	case docstore.FieldID:
		return "id"
	case docstore.FieldCreatedAt:
		return "created_at"
	case docstore.FieldUpdatedAt:
		return "updated_at"
	default:
		return "data -> " + b.arg(field) + "::text"
	}
}

func (b *sqlBuilder) conditionOperands(c docstore.Condition) (string, string, error) {
	switch c.Field {
	case docstore.FieldID:
		id, ok := c.Value.(string)
		if !ok {
			return "", "", fmt.Errorf("%w: id must be a string", docstore.ErrInvalidQuery)
		}
		return "id", b.arg(id) + "::text", nil
	case docstore.FieldCreatedAt, docstore.FieldUpdatedAt:
		t, ok := docstore.NormalizeTime(c.Value)
		if !ok {
			return "", "", fmt.Errorf("%w: %s must be a timestamp", docstore.ErrInvalidQuery, c.Field)
		}
		return b.fieldExpr(c.Field), b.arg(t) + "::timestamptz", nil
	default:
		encoded, err := json.Marshal(c.Value)
		if err != nil {
			return "", "", fmt.Errorf("%w: value for %s: %v", docstore.ErrInvalidQuery, c.Field, err)
		}
		return b.fieldExpr(c.Field), b.arg(string(encoded)) + "::jsonb", nil
	}
}

func sqlOperator(op docstore.Operator) string {
	switch op {
	case docstore.OpEqual:
		return "="
	case docstore.OpNotEqual:
		return "<>"
	default:
		return string(op)
	}
}

// splitDocument separates the reserved fields from the JSON payload.
func splitDocument(doc docstore.Document) (string, []byte, error) {
	payload := make(map[string]any, len(doc))
	for k, v := range doc {
		switch k {
		case docstore.FieldID, docstore.FieldCreatedAt, docstore.FieldUpdatedAt:
			continue
		}
		payload[k] = v
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return doc.ID(), data, nil
}
