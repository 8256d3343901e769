// Package testdb provides database helpers for tests that need a real,
// migrated notes schema.
//
// By default every call to Open returns a private in-memory SQLite database,
// so tests can run in parallel without sharing state. Setting
// NOTES_TEST_DATABASE_URL points the helpers at another database (for
// example a local PostgreSQL instance); in that case the notes and tasks
// tables are emptied before the test starts.
//
// Basic usage:
//
//	func TestSomething(t *testing.T) {
//	    db, dialect := testdb.Open(t)
//	    notes := sqlstore.NewNoteStore(db, dialect, nil)
//
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        // work inside tx; it is rolled back afterwards
//	    })
//	}
package testdb
