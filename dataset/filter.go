package dataset

import (
	apperrors "github.com/kbukum/dbunit/errors"
)

// FilterDataSet hides excluded columns of selected tables.
type FilterDataSet struct {
	inner   DataSet
	exclude map[string][]string
}

// NewFilterDataSet wraps inner, dropping exclude[table] columns from the
// named tables. Tables without an entry pass through unchanged.
func NewFilterDataSet(inner DataSet, exclude map[string][]string) *FilterDataSet {
	return &FilterDataSet{inner: inner, exclude: cloneKeyMap(exclude)}
}

func (d *FilterDataSet) Iterator() TableIterator {
	return &decoratingIterator{inner: d.inner.Iterator(), decorate: d.decorate}
}

func (d *FilterDataSet) ReverseIterator() TableIterator {
	return &decoratingIterator{inner: d.inner.ReverseIterator(), decorate: d.decorate}
}

func (d *FilterDataSet) decorate(t Table) Table {
	cols, ok := d.exclude[t.MetaData().Name()]
	if !ok || len(cols) == 0 {
		return t
	}
	return NewFilteredTable(t, cols...)
}

// FilteredTable is a Table with some columns removed.
type FilteredTable struct {
	inner Table
	meta  TableMetaData
}

// NewFilteredTable wraps inner without the excluded columns.
func NewFilteredTable(inner Table, excluded ...string) *FilteredTable {
	return &FilteredTable{inner: inner, meta: inner.MetaData().without(excluded)}
}

func (t *FilteredTable) MetaData() TableMetaData { return t.meta }

func (t *FilteredTable) RowCount() int { return t.inner.RowCount() }

func (t *FilteredTable) Value(row int, column string) (any, error) {
	if !t.meta.HasColumn(column) {
		return nil, apperrors.OutOfRange(t.meta.Name(), row, column)
	}
	return t.inner.Value(row, column)
}

func (t *FilteredTable) Row(row int) (Row, error) {
	full, err := t.inner.Row(row)
	if err != nil {
		return nil, err
	}
	out := make(Row, len(t.meta.columns))
	for _, c := range t.meta.columns {
		out[c] = full[c]
	}
	return out, nil
}

func (t *FilteredTable) String() string { return RenderTable(t) }
