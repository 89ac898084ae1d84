package database

import (
	"context"
	"slices"
	"testing"

	"github.com/kbukum/dbunit/dataset"
	apperrors "github.com/kbukum/dbunit/errors"
)

func TestConn_InsertAndQueryDataSet(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, usersDDL, migrDDL)

	users := dataset.NewTable(dataset.NewTableMetaData("users", []string{"id", "name", "email"}))
	users.AddRows(
		dataset.Row{"id": 2, "name": "bob", "email": nil},
		dataset.Row{"id": 1, "name": "amy", "email": "amy@example.com"},
	)
	fixture, _ := dataset.NewDataSet(users)

	if err := db.InsertDataSet(ctx, fixture); err != nil {
		t.Fatalf("InsertDataSet() failed: %v", err)
	}

	actual, err := db.QueryDataSet(ctx)
	if err != nil {
		t.Fatalf("QueryDataSet() failed: %v", err)
	}
	if got := dataset.TableNames(actual); !slices.Equal(got, []string{"users"}) {
		t.Errorf("TableNames() = %v, want [users]", got)
	}
	if tbl, ok := dataset.FindTable(actual, "users"); !ok {
		t.Error("users table missing")
	} else if got := tbl.MetaData().PrimaryKeys(); !slices.Equal(got, []string{"id"}) {
		t.Errorf("PrimaryKeys() = %v, want [id]", got)
	}

	expected, err := dataset.NewBuilder().AddSortBy("users", "id").CreateDataSet(fixture)
	if err != nil {
		t.Fatal(err)
	}
	sortedActual, err := dataset.NewBuilder().AddSortBy("users", "id").CreateDataSet(actual)
	if err != nil {
		t.Fatal(err)
	}
	if err := dataset.AssertDataSetsEqual(expected, sortedActual); err != nil {
		t.Errorf("round trip differs: %v", err)
	}
}

func TestConn_QueryTable(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, usersDDL)
	db.GormDB.Exec("INSERT INTO users (name, email) VALUES ('amy', NULL), ('bob', 'b@x')")

	tbl, err := db.QueryTable(ctx, "names", "SELECT name, email FROM users WHERE name <> ? ORDER BY name", "nobody")
	if err != nil {
		t.Fatalf("QueryTable() failed: %v", err)
	}
	if got := tbl.MetaData().Columns(); !slices.Equal(got, []string{"name", "email"}) {
		t.Errorf("Columns() = %v", got)
	}
	if got := tbl.MetaData().PrimaryKeys(); len(got) != 0 {
		t.Errorf("PrimaryKeys() = %v, want none", got)
	}
	if tbl.RowCount() != 2 {
		t.Fatalf("RowCount() = %d, want 2", tbl.RowCount())
	}
	if v, _ := tbl.Value(0, "email"); v != nil {
		t.Errorf("NULL should read as nil, got %#v", v)
	}
	if v, _ := tbl.Value(1, "email"); v != "b@x" {
		t.Errorf("Value(1, email) = %#v, want b@x", v)
	}
}

func TestConn_InsertDataSet_RollsBack(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, usersDDL)

	users := dataset.NewTable(dataset.NewTableMetaData("users", []string{"name"}))
	users.AddRow(dataset.Row{"name": "amy"})
	ghosts := dataset.NewTable(dataset.NewTableMetaData("ghosts", []string{"name"}))
	ghosts.AddRow(dataset.Row{"name": "boo"})
	ds, _ := dataset.NewDataSet(users, ghosts)

	err := db.InsertDataSet(ctx, ds)
	if !apperrors.HasCode(err, apperrors.ErrCodeStatementError) {
		t.Fatalf("InsertDataSet() error = %v, want STATEMENT_ERROR", err)
	}
	var count int64
	db.GormDB.Raw("SELECT COUNT(*) FROM users").Scan(&count)
	if count != 0 {
		t.Errorf("users has %d rows, want rollback to 0", count)
	}
}
