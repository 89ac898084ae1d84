package testutil

import (
	"context"
	"testing"

	"github.com/kbukum/dbunit/dataset"
	_ "github.com/kbukum/dbunit/dataset/yamlset"
)

func usersDataSet(t *testing.T, rows ...dataset.Row) *dataset.DefaultDataSet {
	t.Helper()
	tbl := dataset.NewTable(dataset.NewTableMetaData("users", []string{"id", "name", "email"}))
	tbl.AddRows(rows...)
	ds, err := dataset.NewDataSet(tbl)
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func TestLoadDataSet_FromFile(t *testing.T) {
	c := startedComponent(t)
	c.DB().Exec("INSERT INTO users (name) VALUES ('stale')")

	MustLoadDataSet(t, c, "testdata/users.yml")

	AssertRowCount(t, c.DB(), "users", 2)
	var n int64
	c.DB().Raw("SELECT COUNT(*) FROM users WHERE email IS NULL").Scan(&n)
	if n != 1 {
		t.Errorf("rows with NULL email = %d, want 1", n)
	}
}

func TestLoadDataSet_Replacements(t *testing.T) {
	c := startedComponent(t)
	ds := usersDataSet(t, dataset.Row{"id": 1, "name": "amy", "email": "##NULL##"})
	b := dataset.NewBuilder().AddFullReplacement("##NULL##", nil)

	if err := LoadDataSet(context.Background(), c, ds, b); err != nil {
		t.Fatalf("LoadDataSet: %v", err)
	}
	var n int64
	c.DB().Raw("SELECT COUNT(*) FROM users WHERE email IS NULL").Scan(&n)
	if n != 1 {
		t.Errorf("replacement not applied before insert")
	}
}

func TestLoadDataSet_Errors(t *testing.T) {
	ctx := context.Background()
	stopped := NewComponent()
	if err := LoadDataSet(ctx, stopped, usersDataSet(t), nil); err == nil {
		t.Error("expected error for a stopped component")
	}

	c := startedComponent(t)
	if err := LoadDataSet(ctx, c, "testdata/missing.yml", nil); err == nil {
		t.Error("expected error for a missing fixture")
	}
	if err := LoadDataSet(ctx, c, 42, nil); err == nil {
		t.Error("expected error for an invalid source")
	}
}

func TestAssertTablesMatch(t *testing.T) {
	c := startedComponent(t)
	MustLoadDataSet(t, c, "testdata/users.yml")

	// Rows come back in insertion order; sorting both sides makes the
	// comparison independent of it.
	b := dataset.NewBuilder().AddSortBy("users", "id")
	AssertTablesMatch(t, c, "testdata/users.yml", b)
}

func TestAssertDataSetEqual_Mismatch(t *testing.T) {
	expected := usersDataSet(t, dataset.Row{"id": 1, "name": "amy", "email": nil})
	actual := usersDataSet(t, dataset.Row{"id": 1, "name": "bob", "email": nil})

	rec := &recordingTB{TB: t}
	AssertDataSetEqual(rec, nil, expected, actual)
	if !rec.failed {
		t.Error("expected a failure for differing datasets")
	}

	rec = &recordingTB{TB: t}
	AssertDataSetEqual(rec, nil, expected, expected)
	if rec.failed {
		t.Error("equal datasets should not fail")
	}
}

func TestCountRows_UnknownTable(t *testing.T) {
	c := startedComponent(t)
	if _, err := CountRows(c.DB(), "nope"); err == nil {
		t.Error("expected error for an unknown table")
	}
}

// recordingTB captures Error calls so failing assertions can be tested.
type recordingTB struct {
	testing.TB
	failed bool
}

func (r *recordingTB) Error(args ...any)                 { r.failed = true }
func (r *recordingTB) Errorf(format string, args ...any) { r.failed = true }
func (r *recordingTB) Helper()                           {}
