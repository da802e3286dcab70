// Package docstore defines a small document database abstraction: named
// collections of schemaless documents with CRUD and filtered, ordered,
// limited queries. Repositories map domain entities onto it; concrete
// backends live in internal/platform (PostgreSQL JSONB) and here (in-memory).
package docstore
