// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying document store from the
// application's core logic, and the sentinel errors every implementation
// returns for missing or duplicate records.
package store
