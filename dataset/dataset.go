package dataset

import (
	"fmt"
	"iter"

	apperrors "github.com/kbukum/dbunit/errors"
)

// DataSet is an ordered collection of uniquely named tables.
type DataSet interface {
	// Iterator walks the tables in order.
	Iterator() TableIterator
	// ReverseIterator walks the tables in reverse order.
	ReverseIterator() TableIterator
}

// TableIterator is a cursor over a dataset's tables. A fresh iterator is
// positioned on the first table.
type TableIterator interface {
	// Valid reports whether the cursor points at a table.
	Valid() bool
	// Current returns the table under the cursor, or nil when not Valid.
	Current() Table
	// Key returns the current table's name.
	Key() string
	// Next advances the cursor.
	Next()
	// Rewind moves the cursor back to the first table.
	Rewind()
}

// DefaultDataSet is an in-memory DataSet.
type DefaultDataSet struct {
	tables []Table
	index  map[string]int
}

// NewDataSet creates a dataset from tables in order. Duplicate table names
// fail with INVALID_INPUT.
func NewDataSet(tables ...Table) (*DefaultDataSet, error) {
	ds := &DefaultDataSet{index: make(map[string]int, len(tables))}
	for _, t := range tables {
		if err := ds.AddTable(t); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// AddTable appends a table.
func (d *DefaultDataSet) AddTable(t Table) error {
	name := t.MetaData().Name()
	if _, exists := d.index[name]; exists {
		return apperrors.InvalidInput("table", fmt.Sprintf("duplicate table %q in dataset", name))
	}
	d.index[name] = len(d.tables)
	d.tables = append(d.tables, t)
	return nil
}

// Table returns the named table.
func (d *DefaultDataSet) Table(name string) (Table, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.tables[i], true
}

func (d *DefaultDataSet) Iterator() TableIterator {
	return &sliceIterator{tables: d.tables}
}

func (d *DefaultDataSet) ReverseIterator() TableIterator {
	return &sliceIterator{tables: d.tables, reverse: true}
}

type sliceIterator struct {
	tables  []Table
	pos     int
	reverse bool
}

func (it *sliceIterator) index() int {
	if it.reverse {
		return len(it.tables) - 1 - it.pos
	}
	return it.pos
}

func (it *sliceIterator) Valid() bool { return it.pos >= 0 && it.pos < len(it.tables) }

func (it *sliceIterator) Current() Table {
	if !it.Valid() {
		return nil
	}
	return it.tables[it.index()]
}

func (it *sliceIterator) Key() string {
	if t := it.Current(); t != nil {
		return t.MetaData().Name()
	}
	return ""
}

func (it *sliceIterator) Next()   { it.pos++ }
func (it *sliceIterator) Rewind() { it.pos = 0 }

// decoratingIterator maps every table an inner iterator yields.
type decoratingIterator struct {
	inner    TableIterator
	decorate func(Table) Table
}

func (it *decoratingIterator) Valid() bool { return it.inner.Valid() }

func (it *decoratingIterator) Current() Table {
	t := it.inner.Current()
	if t == nil {
		return nil
	}
	return it.decorate(t)
}

func (it *decoratingIterator) Key() string { return it.inner.Key() }
func (it *decoratingIterator) Next()       { it.inner.Next() }
func (it *decoratingIterator) Rewind()     { it.inner.Rewind() }

// All yields every table of ds in order, keyed by name.
func All(ds DataSet) iter.Seq2[string, Table] {
	return walk(ds.Iterator)
}

// Backward yields every table of ds in reverse order, keyed by name.
func Backward(ds DataSet) iter.Seq2[string, Table] {
	return walk(ds.ReverseIterator)
}

func walk(open func() TableIterator) iter.Seq2[string, Table] {
	return func(yield func(string, Table) bool) {
		it := open()
		for it.Rewind(); it.Valid(); it.Next() {
			if !yield(it.Key(), it.Current()) {
				return
			}
		}
	}
}

// Tables returns the tables of ds in order.
func Tables(ds DataSet) []Table {
	var out []Table
	for _, t := range All(ds) {
		out = append(out, t)
	}
	return out
}

// TableNames returns the table names of ds in order.
func TableNames(ds DataSet) []string {
	var out []string
	for name := range All(ds) {
		out = append(out, name)
	}
	return out
}

// FindTable returns the named table as seen through every decorator of ds.
func FindTable(ds DataSet, name string) (Table, bool) {
	for n, t := range All(ds) {
		if n == name {
			return t, true
		}
	}
	return nil, false
}
