package dataset

import (
	"maps"
	"slices"

	apperrors "github.com/kbukum/dbunit/errors"
)

// Row maps column names to cell values.
type Row map[string]any

// TableMetaData describes a table's name and column layout.
type TableMetaData struct {
	name        string
	columns     []string
	primaryKeys []string
}

// NewTableMetaData creates metadata for a table. Column order is preserved.
func NewTableMetaData(name string, columns []string, primaryKeys ...string) TableMetaData {
	return TableMetaData{
		name:        name,
		columns:     slices.Clone(columns),
		primaryKeys: slices.Clone(primaryKeys),
	}
}

// Name returns the table name.
func (m TableMetaData) Name() string { return m.name }

// Columns returns the column names in metadata order.
func (m TableMetaData) Columns() []string { return slices.Clone(m.columns) }

// PrimaryKeys returns the primary key columns, if known.
func (m TableMetaData) PrimaryKeys() []string { return slices.Clone(m.primaryKeys) }

// HasColumn reports whether the table has the named column.
func (m TableMetaData) HasColumn(column string) bool {
	return slices.Contains(m.columns, column)
}

// Matches reports whether both tables share a name and the same set of
// columns. Column order does not matter: a query over a live table is free to
// return columns in a different order than the fixture declares them.
func (m TableMetaData) Matches(other TableMetaData) bool {
	if m.name != other.name || len(m.columns) != len(other.columns) {
		return false
	}
	for _, c := range m.columns {
		if !other.HasColumn(c) {
			return false
		}
	}
	return true
}

// without returns a copy of the metadata with the given columns removed.
func (m TableMetaData) without(excluded []string) TableMetaData {
	columns := make([]string, 0, len(m.columns))
	for _, c := range m.columns {
		if !slices.Contains(excluded, c) {
			columns = append(columns, c)
		}
	}
	keys := make([]string, 0, len(m.primaryKeys))
	for _, k := range m.primaryKeys {
		if !slices.Contains(excluded, k) {
			keys = append(keys, k)
		}
	}
	return TableMetaData{name: m.name, columns: columns, primaryKeys: keys}
}

// Table is a read-only view over one table.
type Table interface {
	// MetaData returns the table's name and columns.
	MetaData() TableMetaData
	// RowCount returns the number of rows.
	RowCount() int
	// Value returns the cell at (row, column). An out-of-range row or an
	// unknown column fails with an OUT_OF_RANGE error.
	Value(row int, column string) (any, error)
	// Row returns a copy of the full record at row.
	Row(row int) (Row, error)
}

// DefaultTable is an in-memory Table.
type DefaultTable struct {
	meta TableMetaData
	rows []Row
}

// NewTable creates an empty in-memory table.
func NewTable(meta TableMetaData) *DefaultTable {
	return &DefaultTable{meta: meta}
}

// AddRow appends a row. Only the table's columns are kept; a column missing
// from row is stored as nil.
func (t *DefaultTable) AddRow(row Row) {
	stored := make(Row, len(t.meta.columns))
	for _, c := range t.meta.columns {
		stored[c] = row[c]
	}
	t.rows = append(t.rows, stored)
}

// AddRows appends every row in order.
func (t *DefaultTable) AddRows(rows ...Row) {
	for _, r := range rows {
		t.AddRow(r)
	}
}

func (t *DefaultTable) MetaData() TableMetaData { return t.meta }

func (t *DefaultTable) RowCount() int { return len(t.rows) }

func (t *DefaultTable) Value(row int, column string) (any, error) {
	if row < 0 || row >= len(t.rows) {
		return nil, apperrors.OutOfRange(t.meta.name, row, column)
	}
	v, ok := t.rows[row][column]
	if !ok {
		return nil, apperrors.OutOfRange(t.meta.name, row, column)
	}
	return v, nil
}

func (t *DefaultTable) Row(row int) (Row, error) {
	if row < 0 || row >= len(t.rows) {
		return nil, apperrors.OutOfRange(t.meta.name, row, "")
	}
	return maps.Clone(t.rows[row]), nil
}

func (t *DefaultTable) String() string { return RenderTable(t) }

// readRow assembles a Row through Value for tables that do not store records.
func readRow(t Table, row int) (Row, error) {
	meta := t.MetaData()
	if row < 0 || row >= t.RowCount() {
		return nil, apperrors.OutOfRange(meta.Name(), row, "")
	}
	out := make(Row, len(meta.columns))
	for _, c := range meta.columns {
		v, err := t.Value(row, c)
		if err != nil {
			return nil, err
		}
		out[c] = v
	}
	return out, nil
}
