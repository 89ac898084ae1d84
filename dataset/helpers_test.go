package dataset

import "testing"

func newTestTable(name string, columns []string, rows ...Row) *DefaultTable {
	tbl := NewTable(NewTableMetaData(name, columns))
	tbl.AddRows(rows...)
	return tbl
}

func newTestDataSet(t *testing.T, tables ...Table) *DefaultDataSet {
	t.Helper()
	ds, err := NewDataSet(tables...)
	if err != nil {
		t.Fatalf("NewDataSet() failed: %v", err)
	}
	return ds
}

func columnValues(t *testing.T, tbl Table, column string) []any {
	t.Helper()
	out := make([]any, tbl.RowCount())
	for i := range out {
		v, err := tbl.Value(i, column)
		if err != nil {
			t.Fatalf("Value(%d, %q) failed: %v", i, column, err)
		}
		out[i] = v
	}
	return out
}

// countingTable records how often its cells are read.
type countingTable struct {
	Table
	reads int
}

func (c *countingTable) Value(row int, column string) (any, error) {
	c.reads++
	return c.Table.Value(row, column)
}
