// Package testdb provides helpers for integration tests that need a real
// PostgreSQL database.
//
// Tests built with the integration tag call Open to get a migrated database
// and WithTx to run each case inside a transaction that is always rolled
// back. When no database URL is configured the tests are skipped:
//
//	db := testdb.Open(t)
//	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//		tasks := postgres.NewPostgresTaskStore(tx, logger)
//		...
//	})
package testdb
