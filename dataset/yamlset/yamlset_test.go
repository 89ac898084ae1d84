package yamlset

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/kbukum/dbunit/dataset"
	apperrors "github.com/kbukum/dbunit/errors"
)

const usersYAML = `
users:
  - id: 1
    first_name: Bob
    last_name: null
  - first_name: Amy
    id: 2
    active: true
roles: []
audit:
`

func TestParse(t *testing.T) {
	ds, err := Parse(strings.NewReader(usersYAML))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if got := dataset.TableNames(ds); !slices.Equal(got, []string{"users", "roles", "audit"}) {
		t.Errorf("TableNames() = %v", got)
	}

	users, _ := ds.Table("users")
	if got := users.MetaData().Columns(); !slices.Equal(got, []string{"id", "first_name", "last_name", "active"}) {
		t.Errorf("Columns() = %v", got)
	}

	tests := []struct {
		row    int
		column string
		want   any
	}{
		{0, "id", 1},
		{0, "last_name", nil},
		{0, "active", nil},
		{1, "id", 2},
		{1, "active", true},
	}
	for _, tt := range tests {
		got, err := users.Value(tt.row, tt.column)
		if err != nil {
			t.Fatalf("Value(%d, %s) failed: %v", tt.row, tt.column, err)
		}
		if got != tt.want {
			t.Errorf("Value(%d, %s) = %#v, want %#v", tt.row, tt.column, got, tt.want)
		}
	}

	for _, name := range []string{"roles", "audit"} {
		tbl, _ := ds.Table(name)
		if tbl.RowCount() != 0 {
			t.Errorf("%s RowCount() = %d, want 0", name, tbl.RowCount())
		}
	}
}

func TestParse_Empty(t *testing.T) {
	ds, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if len(dataset.Tables(ds)) != 0 {
		t.Error("empty document should give an empty dataset")
	}
}

func TestParse_Invalid(t *testing.T) {
	for name, input := range map[string]string{
		"list at top":     "- a\n- b\n",
		"rows not a list": "users: {id: 1}\n",
		"row not a map":   "users: [1, 2]\n",
		"nested cell":     "users:\n  - id: [1]\n",
		"syntax":          "users: [\n",
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
	dir := t.TempDir()
	for _, name := range []string{"users.yml", "users.yaml"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(usersYAML), 0o600); err != nil {
			t.Fatal(err)
		}
		ds, err := dataset.LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile(%s) failed: %v", name, err)
		}
		if _, ok := dataset.FindTable(ds, "users"); !ok {
			t.Errorf("LoadFile(%s) has no users table", name)
		}
	}
}
