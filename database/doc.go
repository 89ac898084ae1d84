// Package database connects to the database under test through GORM and
// performs the engine-specific housekeeping a test run needs.
//
// Open picks the GORM dialector for the configured driver (sqlite, postgres
// or mysql), retries the connection with exponential backoff and records every
// executed statement in a QueryLog. Conn implements the purger connection
// interfaces: it lists and truncates tables, resets postgres sequences,
// drops every table and creates or drops whole databases where the engine
// allows it. Conn also reads live tables into datasets and inserts
// datasets row by row.
//
//	db, err := database.Open(ctx, database.Config{Driver: "postgres", Name: "app_test"}, log)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := purger.New(db.Conn()).Purge(ctx); err != nil {
//	    return err
//	}
//
// Driver errors are translated to AppErrors: connection failures become
// CONNECTION_FAILED and anything else STATEMENT_ERROR with the statement
// in the error details.
package database
