package database

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestQueryLog_RecordsOnlyWhenEnabled(t *testing.T) {
	q := NewQueryLog(10)
	q.Record(Statement{SQL: "ignored"})
	if q.Len() != 0 {
		t.Fatal("disabled log recorded a statement")
	}

	q.Enable()
	q.Record(Statement{SQL: "SELECT 1"})
	q.Disable()
	q.Record(Statement{SQL: "ignored"})

	if got := q.Statements(); len(got) != 1 || got[0].SQL != "SELECT 1" {
		t.Errorf("Statements() = %v", got)
	}
	q.Reset()
	if q.Len() != 0 {
		t.Error("Reset() kept statements")
	}
}

func TestQueryLog_Bounded(t *testing.T) {
	q := NewQueryLog(2)
	q.Enable()
	for _, s := range []string{"a", "b", "c"} {
		q.Record(Statement{SQL: s})
	}
	got := q.Statements()
	if len(got) != 2 || got[0].SQL != "b" || got[1].SQL != "c" {
		t.Errorf("Statements() = %v, want [b c]", got)
	}
}

func TestQueryLog_StringNewestFirst(t *testing.T) {
	q := NewQueryLog(0)
	q.Enable()
	q.Record(Statement{SQL: "INSERT INTO users"})
	q.Record(Statement{SQL: "SELECT * FROM users", Err: errors.New("no such table")})

	want := "1. SELECT * FROM users -- error: no such table\n2. INSERT INTO users\n"
	if got := q.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestQueryLog_FedByConnection(t *testing.T) {
	db := openTestDB(t, usersDDL)
	q := db.QueryLog()
	q.Enable()

	db.WithContext(context.Background()).Exec("INSERT INTO users (name) VALUES (?)", "amy")

	got := q.Statements()
	if len(got) != 1 {
		t.Fatalf("Statements() = %v, want one", got)
	}
	if !strings.Contains(got[0].SQL, `VALUES ("amy")`) || got[0].Rows != 1 {
		t.Errorf("statement = %+v, want bound value and 1 row", got[0])
	}
}
