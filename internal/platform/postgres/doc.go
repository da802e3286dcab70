// Package postgres provides the PostgreSQL implementation of the docstore
// interfaces. Every collection shares one table of JSONB documents keyed by
// (collection, id); document queries are translated into SQL over it. The
// package also embeds the goose migrations that create that table.
package postgres
