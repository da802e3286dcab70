package docstore

import (
	"cmp"
	"context"
	"encoding/json"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store. It evaluates queries with the same
// semantics as the SQL backend and is used by tests and the memory driver.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
	now         func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock sets the function used to stamp createdAt and updatedAt.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore creates an empty in-memory document store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		collections: make(map[string]map[string]Document),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Collection returns the named collection, creating it on first use.
func (s *MemoryStore) Collection(name string) Collection {
	return &memoryCollection{store: s, name: name}
}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

type memoryCollection struct {
	store *MemoryStore
	name  string
}

// docs returns the collection map; callers must hold the store lock.
func (c *memoryCollection) docs() map[string]Document {
	m, ok := c.store.collections[c.name]
	if !ok {
		m = make(map[string]Document)
		c.store.collections[c.name] = m
	}
	return m
}

func (c *memoryCollection) Create(ctx context.Context, doc Document) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	stored := doc.Clone()
	id := stored.ID()
	if id == "" {
		id = uuid.NewString()
	}
	docs := c.docs()
	if _, exists := docs[id]; exists {
		return nil, ErrDuplicate
	}
	stored[FieldID] = id
	stored[FieldCreatedAt] = c.store.now().UTC()
	docs[id] = stored

	return stored.Clone(), nil
}

func (c *memoryCollection) FindByID(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	doc, ok := c.store.collections[c.name][id]
	if !ok {
		return nil, ErrNotFound
	}
	return doc.Clone(), nil
}

func (c *memoryCollection) FindByField(ctx context.Context, field string, value any) ([]Document, error) {
	return c.Query(ctx, Query{Conditions: []Condition{Where(field, OpEqual, value)}})
}

func (c *memoryCollection) Update(ctx context.Context, id string, patch Document) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	doc, ok := c.store.collections[c.name][id]
	if !ok {
		return nil, ErrNotFound
	}
	for k, v := range patch {
		if k == FieldID || k == FieldCreatedAt {
			continue
		}
		doc[k] = v
	}
	doc[FieldUpdatedAt] = c.store.now().UTC()

	return doc.Clone(), nil
}

func (c *memoryCollection) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	delete(c.store.collections[c.name], id)
	return nil
}

func (c *memoryCollection) Query(ctx context.Context, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	c.store.mu.RLock()
	results := make([]Document, 0)
	for _, doc := range c.store.collections[c.name] {
		if matchesAll(doc, q) {
			results = append(results, doc.Clone())
		}
	}
	c.store.mu.RUnlock()

	sortDocuments(results, q.OrderBy)

	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}

func matchesAll(doc Document, q Query) bool {
	for _, cond := range q.Conditions {
		if !matches(doc, cond) {
			return false
		}
	}
	if q.OrderBy != nil {
		if _, ok := doc[q.OrderBy.Field]; !ok {
			return false
		}
	}
	return true
}

func matches(doc Document, cond Condition) bool {
	value, ok := doc[cond.Field]
	if !ok {
		return false
	}

	order, ok := compareValues(value, cond.Value)
	if !ok {
		return cond.Op == OpNotEqual
	}

	switch cond.Op {
	case OpEqual:
		return order == 0
	case OpNotEqual:
		return order != 0
	case OpLess:
		return order < 0
	case OpLessOrEqual:
		return order <= 0
	case OpGreater:
		return order > 0
	case OpGreaterOrEqual:
		return order >= 0
	}
	return false
}

func sortDocuments(docs []Document, orderBy *OrderBy) {
	if orderBy == nil {
		sort.SliceStable(docs, func(i, j int) bool {
			return docs[i].ID() < docs[j].ID()
		})
		return
	}

	sort.SliceStable(docs, func(i, j int) bool {
		order, ok := compareValues(docs[i][orderBy.Field], docs[j][orderBy.Field])
		if !ok || order == 0 {
			order = strings.Compare(docs[i].ID(), docs[j].ID())
		}
		if orderBy.Direction == Desc {
			return order > 0
		}
		return order < 0
	})
}

// compareValues orders two document values of the same type family
// (strings, booleans, numbers, timestamps). ok is false when the values
// cannot be compared.
func compareValues(a, b any) (order int, ok bool) {
	if a == nil || b == nil {
		if a == nil && b == nil {
			return 0, true
		}
		return 0, false
	}

	switch av := a.(type) {
	case string:
		if bv, isString := b.(string); isString {
			return strings.Compare(av, bv), true
		}
		if at, isTime := NormalizeTime(av); isTime {
			if bt, bIsTime := b.(time.Time); bIsTime {
				return at.Compare(bt), true
			}
		}
		return 0, false
	case bool:
		bv, isBool := b.(bool)
		if !isBool {
			return 0, false
		}
		return cmp.Compare(boolRank(av), boolRank(bv)), true
	case time.Time:
		bt, isTime := NormalizeTime(b)
		if !isTime {
			return 0, false
		}
		return av.Compare(bt), true
	}

	af, aNum := toFloat(a)
	bf, bNum := toFloat(b)
	if aNum && bNum {
		return cmp.Compare(af, bf), true
	}
	if reflect.DeepEqual(a, b) {
		return 0, true
	}
	return 0, false
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
