// Package testdb provides helpers for tests that need a real PostgreSQL
// database.
//
// Tests run inside a transaction that is rolled back when they finish, so
// they can share one database and run in parallel:
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t) // skips when no database is configured
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        store := postgres.NewDocumentStore(db, nil, postgres.WithConn(tx))
//	        // ...
//	    })
//	}
//
// The connection string is read from TASKS_TEST_DATABASE_URL, then
// DATABASE_URL.
package testdb
