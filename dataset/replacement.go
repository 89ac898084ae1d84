package dataset

import (
	"maps"
	"strings"
)

// SubReplacement is an ordered substring replacement.
type SubReplacement struct {
	Token string
	With  string
}

// ReplacementDataSet swaps token values in every table.
type ReplacementDataSet struct {
	inner DataSet
	full  map[string]any
	sub   []SubReplacement
}

// NewReplacementDataSet wraps inner. A string cell equal to a key of full is
// replaced by that key's value; string cells not fully replaced then have
// every sub token substituted in order.
func NewReplacementDataSet(inner DataSet, full map[string]any, sub ...SubReplacement) *ReplacementDataSet {
	return &ReplacementDataSet{inner: inner, full: maps.Clone(full), sub: append([]SubReplacement(nil), sub...)}
}

func (d *ReplacementDataSet) Iterator() TableIterator {
	return &decoratingIterator{inner: d.inner.Iterator(), decorate: d.decorate}
}

func (d *ReplacementDataSet) ReverseIterator() TableIterator {
	return &decoratingIterator{inner: d.inner.ReverseIterator(), decorate: d.decorate}
}

func (d *ReplacementDataSet) decorate(t Table) Table {
	return &ReplacementTable{inner: t, full: d.full, sub: d.sub}
}

// ReplacementTable is a Table whose token values are swapped on read.
type ReplacementTable struct {
	inner Table
	full  map[string]any
	sub   []SubReplacement
}

func (t *ReplacementTable) MetaData() TableMetaData { return t.inner.MetaData() }

func (t *ReplacementTable) RowCount() int { return t.inner.RowCount() }

func (t *ReplacementTable) Value(row int, column string) (any, error) {
	v, err := t.inner.Value(row, column)
	if err != nil {
		return nil, err
	}
	return t.replace(v), nil
}

func (t *ReplacementTable) Row(row int) (Row, error) {
	r, err := t.inner.Row(row)
	if err != nil {
		return nil, err
	}
	out := make(Row, len(r))
	for c, v := range r {
		out[c] = t.replace(v)
	}
	return out, nil
}

func (t *ReplacementTable) String() string { return RenderTable(t) }

func (t *ReplacementTable) replace(v any) any {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case []byte:
		s = string(x)
	default:
		return v
	}
	if r, ok := t.full[s]; ok {
		return r
	}
	if len(t.sub) == 0 {
		return v
	}
	for _, sr := range t.sub {
		s = strings.ReplaceAll(s, sr.Token, sr.With)
	}
	return s
}
