package dataset

import (
	"fmt"
	"maps"
	"reflect"
	"slices"

	apperrors "github.com/kbukum/dbunit/errors"
)

// Builder accumulates replacement, sort and exclusion settings and applies
// them to any number of sources. Setters are last-write-wins per key.
// A Builder is not safe for concurrent mutation.
type Builder struct {
	fullReplacements map[string]any
	subReplacements  []SubReplacement
	sortBy           map[string][]string
	excludeColumns   map[string][]string
	loaders          map[string]Loader
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		fullReplacements: make(map[string]any),
		sortBy:           make(map[string][]string),
		excludeColumns:   make(map[string][]string),
		loaders:          make(map[string]Loader),
	}
}

// AddFullReplacement replaces every cell whose whole value equals token.
func (b *Builder) AddFullReplacement(token string, value any) *Builder {
	b.fullReplacements[token] = value
	return b
}

// AddSubStringReplacement replaces every occurrence of token inside string cells.
func (b *Builder) AddSubStringReplacement(token, with string) *Builder {
	for i, sr := range b.subReplacements {
		if sr.Token == token {
			b.subReplacements[i].With = with
			return b
		}
	}
	b.subReplacements = append(b.subReplacements, SubReplacement{Token: token, With: with})
	return b
}

// AddSortBy sorts table by columns, most significant first.
func (b *Builder) AddSortBy(table string, columns ...string) *Builder {
	b.sortBy[table] = slices.Clone(columns)
	return b
}

// SetExcludeColumnsForTable drops columns from table before comparison.
func (b *Builder) SetExcludeColumnsForTable(table string, columns ...string) *Builder {
	b.excludeColumns[table] = slices.Clone(columns)
	return b
}

// WithLoader parses files with the given extension using fn instead of the
// globally registered loader.
func (b *Builder) WithLoader(ext string, fn Loader) *Builder {
	b.loaders[normalizeExt(ext)] = fn
	return b
}

// CreateDataSet builds the comparable dataset for source, which is either a
// DataSet or a path to a fixture file. Any other source fails with
// INVALID_INPUT. Exclusion, replacement and sort wrap the source in that
// order, each only when configured.
func (b *Builder) CreateDataSet(source any) (DataSet, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	var ds DataSet
	switch s := source.(type) {
	case DataSet:
		if isNilValue(s) {
			return nil, apperrors.InvalidInput("source", fmt.Sprintf("nil %T", source))
		}
		ds = s
	case string:
		loaded, err := loadFile(s, b.loaders)
		if err != nil {
			return nil, err
		}
		ds = loaded
	default:
		return nil, apperrors.InvalidInput("source",
			fmt.Sprintf("expected a fixture path or a dataset.DataSet, got %T", source))
	}

	if len(b.excludeColumns) > 0 {
		ds = NewFilterDataSet(ds, b.excludeColumns)
	}
	if len(b.fullReplacements) > 0 || len(b.subReplacements) > 0 {
		ds = NewReplacementDataSet(ds, maps.Clone(b.fullReplacements), b.subReplacements...)
	}
	if len(b.sortBy) > 0 {
		ds = NewSortableDataSet(ds, b.sortBy)
	}
	return ds, nil
}

// validate rejects sorting a table by a column the same builder excludes.
func (b *Builder) validate() error {
	for table, columns := range b.sortBy {
		excluded := b.excludeColumns[table]
		for _, c := range columns {
			if slices.Contains(excluded, c) {
				return apperrors.InvalidInput("sort_by",
					fmt.Sprintf("table %q is sorted by column %q, which is also excluded", table, c))
			}
		}
	}
	return nil
}

// isNilValue reports whether v holds a typed nil, such as a nil
// *DefaultDataSet stored in a DataSet.
func isNilValue(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
