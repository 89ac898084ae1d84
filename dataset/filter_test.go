package dataset

import (
	"slices"
	"testing"

	apperrors "github.com/kbukum/dbunit/errors"
)

func TestFilteredTable(t *testing.T) {
	inner := newTestTable("users", []string{"id", "name", "created_at"},
		Row{"id": 1, "name": "amy", "created_at": "2024-01-01"},
	)
	filtered := NewFilteredTable(inner, "created_at", "not_a_column")

	if got := filtered.MetaData().Columns(); !slices.Equal(got, []string{"id", "name"}) {
		t.Errorf("Columns() = %v, want [id name]", got)
	}
	if _, err := filtered.Value(0, "created_at"); !apperrors.HasCode(err, apperrors.ErrCodeOutOfRange) {
		t.Errorf("excluded column read error = %v, want OUT_OF_RANGE", err)
	}
	row, err := filtered.Row(0)
	if err != nil {
		t.Fatalf("Row(0) failed: %v", err)
	}
	if _, ok := row["created_at"]; ok || len(row) != 2 {
		t.Errorf("Row(0) = %v, want only id and name", row)
	}
	if !inner.MetaData().HasColumn("created_at") {
		t.Error("filtering must not change the inner table")
	}
}

func TestFilterDataSet_OnlyNamedTables(t *testing.T) {
	users := newTestTable("users", []string{"id", "token"})
	roles := newTestTable("roles", []string{"id", "token"})
	ds := NewFilterDataSet(newTestDataSet(t, users, roles), map[string][]string{"users": {"token"}})

	u, _ := FindTable(ds, "users")
	if u.MetaData().HasColumn("token") {
		t.Error("users.token should be excluded")
	}
	r, _ := FindTable(ds, "roles")
	if r != Table(roles) {
		t.Error("roles has no exclusions and should pass through")
	}
}

func TestReplacementTable(t *testing.T) {
	inner := newTestTable("users", []string{"name", "note", "age"},
		Row{"name": "##NULL##", "note": "hi [NAME]!", "age": 3},
		Row{"name": "amy", "note": []byte("[NAME]"), "age": nil},
	)
	ds := NewReplacementDataSet(newTestDataSet(t, inner),
		map[string]any{"##NULL##": nil, "[NAME]": "full"},
		SubReplacement{Token: "[NAME]", With: "bob"},
	)
	tbl, _ := FindTable(ds, "users")

	tests := []struct {
		row    int
		column string
		want   any
	}{
		{0, "name", nil},
		{0, "note", "hi bob!"},
		{0, "age", 3},
		{1, "name", "amy"},
		{1, "note", "full"},
		{1, "age", nil},
	}
	for _, tt := range tests {
		got, err := tbl.Value(tt.row, tt.column)
		if err != nil {
			t.Fatalf("Value(%d, %s) failed: %v", tt.row, tt.column, err)
		}
		if got != tt.want {
			t.Errorf("Value(%d, %s) = %#v, want %#v", tt.row, tt.column, got, tt.want)
		}
	}

	row, _ := tbl.Row(0)
	if row["name"] != nil || row["note"] != "hi bob!" {
		t.Errorf("Row(0) = %v", row)
	}
	if v, _ := inner.Value(0, "name"); v != "##NULL##" {
		t.Errorf("inner table was mutated: %v", v)
	}
}

func TestReplacementTable_SubstitutionsRunInOrder(t *testing.T) {
	inner := newTestTable("t", []string{"v"}, Row{"v": "a"})
	ds := NewReplacementDataSet(newTestDataSet(t, inner), nil,
		SubReplacement{Token: "a", With: "b"},
		SubReplacement{Token: "b", With: "c"},
	)
	tbl, _ := FindTable(ds, "t")
	if v, _ := tbl.Value(0, "v"); v != "c" {
		t.Errorf("Value() = %v, want c", v)
	}
}
