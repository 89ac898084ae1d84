package database

import (
	"context"
	"testing"

	"github.com/kbukum/dbunit/logger"
)

func openTestDB(t *testing.T, schema ...string) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{Driver: DriverSQLite}, logger.NewNop())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	for _, stmt := range schema {
		if err := db.GormDB.Exec(stmt).Error; err != nil {
			t.Fatalf("schema %q: %v", stmt, err)
		}
	}
	return db
}

const (
	usersDDL = `CREATE TABLE users (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT, email TEXT)`
	postsDDL = `CREATE TABLE posts (id INTEGER PRIMARY KEY AUTOINCREMENT, user_id INTEGER REFERENCES users(id), title TEXT)`
	migrDDL  = `CREATE TABLE schema_migrations (version INTEGER PRIMARY KEY, dirty BOOLEAN)`
)
