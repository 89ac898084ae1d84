// Package dataset is the comparison pipeline used to assert database state in
// integration tests.
//
// A Table is a read-only view over one table's columns and rows; a DataSet
// is an ordered collection of uniquely named tables walked with a
// TableIterator. Transformations are decorators: each wraps an inner DataSet
// and forwards to it, and none of them mutates what it wraps.
//
//   - FilterDataSet drops excluded columns
//   - ReplacementDataSet swaps token values (##NULL##, ##NOW##) for real ones
//   - SortableDataSet stably sorts selected tables by an ordered column list
//
// A Builder assembles the chain in that fixed order so that sorting always
// sees filtered, replaced values:
//
//	ds, err := dataset.NewBuilder().
//	    AddFullReplacement("##NULL##", nil).
//	    AddSortBy("users", "last_name", "first_name").
//	    CreateDataSet("testdata/users.xml")
//
// # Sort semantics
//
// Sort keys compare as strings (see FormatValue), so "10" sorts before "2".
// A nil cell formats as the empty string and therefore sorts lowest, tied
// with "". Rows whose keys tie keep the order the inner table produced.
// A sortable table reads its inner table exactly once, on the first data
// access, and serves every later read from that snapshot.
package dataset
