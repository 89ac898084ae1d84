package dataset

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	apperrors "github.com/kbukum/dbunit/errors"
)

// SortableDataSet stably sorts the tables named in its sort key map.
type SortableDataSet struct {
	inner  DataSet
	sortBy map[string][]string
}

// NewSortableDataSet wraps inner. sortBy maps a table name to its sort
// columns, most significant first.
func NewSortableDataSet(inner DataSet, sortBy map[string][]string) *SortableDataSet {
	return &SortableDataSet{inner: inner, sortBy: cloneKeyMap(sortBy)}
}

func (d *SortableDataSet) Iterator() TableIterator {
	return NewSortableTableIterator(d.inner.Iterator(), d.sortBy)
}

func (d *SortableDataSet) ReverseIterator() TableIterator {
	return NewSortableTableIterator(d.inner.ReverseIterator(), d.sortBy)
}

// SortableTableIterator wraps each table that has a sort key in a new
// SortableTable. It keeps no position of its own.
type SortableTableIterator struct {
	inner  TableIterator
	sortBy map[string][]string
}

// NewSortableTableIterator adapts inner.
func NewSortableTableIterator(inner TableIterator, sortBy map[string][]string) *SortableTableIterator {
	return &SortableTableIterator{inner: inner, sortBy: sortBy}
}

// Current returns the inner table, wrapped in a fresh SortableTable when its
// name has a sort key. Two calls at the same position yield the same data
// but not the same instance.
func (it *SortableTableIterator) Current() Table {
	t := it.inner.Current()
	if t == nil {
		return nil
	}
	if cols, ok := it.sortBy[t.MetaData().Name()]; ok {
		return NewSortableTable(t, cols...)
	}
	return t
}

func (it *SortableTableIterator) Key() string {
	if t := it.inner.Current(); t != nil {
		return t.MetaData().Name()
	}
	return ""
}

func (it *SortableTableIterator) Valid() bool { return it.inner.Valid() }
func (it *SortableTableIterator) Next()       { it.inner.Next() }
func (it *SortableTableIterator) Rewind()     { it.inner.Rewind() }

// SortableTable presents inner's rows stably sorted by sortBy.
//
// The first data read materializes every row of inner and sorts the copy.
// That snapshot (or the error that prevented it) is kept for the life of
// the table; inner is never read again.
type SortableTable struct {
	inner  Table
	sortBy []string
	sorted func() ([]Row, error)
}

// NewSortableTable wraps inner, sorting by the given columns.
func NewSortableTable(inner Table, sortBy ...string) *SortableTable {
	t := &SortableTable{inner: inner, sortBy: slices.Clone(sortBy)}
	t.sorted = sync.OnceValues(t.materialize)
	return t
}

// SortBy returns the sort columns, most significant first.
func (t *SortableTable) SortBy() []string { return slices.Clone(t.sortBy) }

func (t *SortableTable) MetaData() TableMetaData { return t.inner.MetaData() }

func (t *SortableTable) RowCount() int { return t.inner.RowCount() }

func (t *SortableTable) Value(row int, column string) (any, error) {
	rows, err := t.sorted()
	if err != nil {
		return nil, err
	}
	if row < 0 || row >= len(rows) {
		return nil, apperrors.OutOfRange(t.inner.MetaData().Name(), row, column)
	}
	v, ok := rows[row][column]
	if !ok {
		return nil, apperrors.OutOfRange(t.inner.MetaData().Name(), row, column)
	}
	return v, nil
}

func (t *SortableTable) Row(row int) (Row, error) {
	rows, err := t.sorted()
	if err != nil {
		return nil, err
	}
	if row < 0 || row >= len(rows) {
		return nil, apperrors.OutOfRange(t.inner.MetaData().Name(), row, "")
	}
	return maps.Clone(rows[row]), nil
}

func (t *SortableTable) String() string { return RenderTable(t) }

type sortRecord struct {
	row  Row
	keys []string
}

func (t *SortableTable) materialize() ([]Row, error) {
	meta := t.inner.MetaData()
	for _, c := range t.sortBy {
		if !meta.HasColumn(c) {
			return nil, apperrors.InvalidInput("sort_by",
				fmt.Sprintf("sort column %q is not a column of table %q", c, meta.Name()))
		}
	}

	count := t.inner.RowCount()
	records := make([]sortRecord, 0, count)
	for i := 0; i < count; i++ {
		row := make(Row, len(meta.columns))
		for _, c := range meta.columns {
			v, err := t.inner.Value(i, c)
			if err != nil {
				return nil, err
			}
			row[c] = v
		}
		keys := make([]string, len(t.sortBy))
		for k, c := range t.sortBy {
			keys[k] = FormatValue(row[c])
		}
		records = append(records, sortRecord{row: row, keys: keys})
	}

	slices.SortStableFunc(records, func(a, b sortRecord) int {
		for k := range a.keys {
			if c := strings.Compare(a.keys[k], b.keys[k]); c != 0 {
				return c
			}
		}
		return 0
	})

	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = r.row
	}
	return rows, nil
}

func cloneKeyMap(m map[string][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[k] = slices.Clone(v)
	}
	return out
}
