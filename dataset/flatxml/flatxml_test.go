package flatxml

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/kbukum/dbunit/dataset"
	apperrors "github.com/kbukum/dbunit/errors"
)

const usersXML = `<?xml version="1.0" encoding="UTF-8"?>
<dataset>
  <users id="1" first_name="Bob"/>
  <roles/>
  <users id="2" first_name="Amy" last_name="Zed"/>
</dataset>`

func TestParse(t *testing.T) {
	ds, err := Parse(strings.NewReader(usersXML))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	if got := dataset.TableNames(ds); !slices.Equal(got, []string{"users", "roles"}) {
		t.Errorf("TableNames() = %v, want [users roles]", got)
	}

	users, _ := ds.Table("users")
	if got := users.MetaData().Columns(); !slices.Equal(got, []string{"id", "first_name", "last_name"}) {
		t.Errorf("Columns() = %v", got)
	}
	if users.RowCount() != 2 {
		t.Fatalf("RowCount() = %d, want 2", users.RowCount())
	}

	tests := []struct {
		row    int
		column string
		want   any
	}{
		{0, "id", "1"},
		{0, "last_name", nil},
		{1, "first_name", "Amy"},
		{1, "last_name", "Zed"},
	}
	for _, tt := range tests {
		got, err := users.Value(tt.row, tt.column)
		if err != nil {
			t.Fatalf("Value(%d, %s) failed: %v", tt.row, tt.column, err)
		}
		if got != tt.want {
			t.Errorf("Value(%d, %s) = %v, want %v", tt.row, tt.column, got, tt.want)
		}
	}

	roles, _ := ds.Table("roles")
	if roles.RowCount() != 0 {
		t.Errorf("roles RowCount() = %d, want 0", roles.RowCount())
	}
}

func TestParse_Invalid(t *testing.T) {
	for name, input := range map[string]string{
		"empty":     "",
		"unclosed":  "<dataset><users id=\"1\">",
		"nested":    "<dataset><users><x/></users></dataset>",
		"malformed": "<dataset><users id=1/></dataset>",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(input))
			if !apperrors.HasCode(err, apperrors.ErrCodeInvalidFormat) {
				t.Errorf("Parse() error = %v, want INVALID_FORMAT", err)
			}
		})
	}
}

func TestLoad_RegisteredLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.XML")
	if err := os.WriteFile(path, []byte(usersXML), 0o600); err != nil {
		t.Fatal(err)
	}

	ds, err := dataset.NewBuilder().AddSortBy("users", "first_name").CreateDataSet(path)
	if err != nil {
		t.Fatalf("CreateDataSet() failed: %v", err)
	}
	users, _ := dataset.FindTable(ds, "users")
	if v, _ := users.Value(0, "first_name"); v != "Amy" {
		t.Errorf("first sorted row = %v, want Amy", v)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.xml"))
	if !apperrors.HasCode(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("Load() error = %v, want INVALID_INPUT", err)
	}
}
