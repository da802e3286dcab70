// Package repository implements the store ports on top of a docstore.Store.
// Users live in the "users" collection and tasks in "tasks"; records are
// converted to domain types with docstore.Decode so any timestamp shape the
// backing store returns becomes a time.Time.
package repository
