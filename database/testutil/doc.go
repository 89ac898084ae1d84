// Package testutil provides an in-memory sqlite database for tests and
// dataset assertions against it.
//
//	db := testutil.NewComponent().WithModels(&User{})
//	dbunittest.T(t).Setup(db)
//
//	testutil.MustLoadDataSet(t, db, "testdata/users.yml")
//	// ... exercise the code under test ...
//	testutil.AssertTablesMatch(t, db, "testdata/users_after.yml", builder)
//
// Reset purges every table, Snapshot captures the whole database as a
// dataset and Restore purges and inserts a captured dataset again.
package testutil
