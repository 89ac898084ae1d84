package dataset

import (
	"fmt"
	"strings"

	apperrors "github.com/kbukum/dbunit/errors"
)

// Mismatch is one difference between an expected and an actual table.
// Row is -1 for table-level differences.
type Mismatch struct {
	Table    string
	Row      int
	Column   string
	Expected any
	Actual   any
	Reason   string
}

func (m Mismatch) String() string {
	switch {
	case m.Row < 0 && m.Column != "":
		return fmt.Sprintf("%s.%s: %s", m.Table, m.Column, m.Reason)
	case m.Row < 0:
		return fmt.Sprintf("%s: %s (expected %v, got %v)", m.Table, m.Reason, m.Expected, m.Actual)
	default:
		return fmt.Sprintf("%s[%d].%s: expected %s, got %s",
			m.Table, m.Row, m.Column, displayValue(m.Expected), displayValue(m.Actual))
	}
}

// CompareTables reports every difference between expected and actual. Table
// names, column sets and row counts are compared first; cells are compared
// by row index over the shared columns and rows. A read error from either
// side is returned as the error, never as a mismatch.
func CompareTables(expected, actual Table) ([]Mismatch, error) {
	em, am := expected.MetaData(), actual.MetaData()
	name := em.Name()
	var out []Mismatch

	if em.Name() != am.Name() {
		out = append(out, Mismatch{Table: name, Row: -1, Expected: em.Name(), Actual: am.Name(), Reason: "table name differs"})
	}

	var shared []string
	for _, c := range em.columns {
		if am.HasColumn(c) {
			shared = append(shared, c)
		} else {
			out = append(out, Mismatch{Table: name, Row: -1, Column: c, Reason: "column missing from actual table"})
		}
	}
	for _, c := range am.columns {
		if !em.HasColumn(c) {
			out = append(out, Mismatch{Table: name, Row: -1, Column: c, Reason: "unexpected column in actual table"})
		}
	}

	rows := expected.RowCount()
	if n := actual.RowCount(); n != rows {
		out = append(out, Mismatch{Table: name, Row: -1, Expected: rows, Actual: n, Reason: "row count differs"})
		rows = min(rows, n)
	}

	for i := 0; i < rows; i++ {
		want, err := expected.Row(i)
		if err != nil {
			return nil, err
		}
		got, err := actual.Row(i)
		if err != nil {
			return nil, err
		}
		for _, c := range shared {
			if !ValuesEqual(want[c], got[c]) {
				out = append(out, Mismatch{Table: name, Row: i, Column: c, Expected: want[c], Actual: got[c]})
			}
		}
	}
	return out, nil
}

// TableMatches reports whether expected and actual hold the same data.
func TableMatches(expected, actual Table) (bool, error) {
	m, err := CompareTables(expected, actual)
	return len(m) == 0, err
}

// CompareDataSets compares table name sets, then every shared table by name.
func CompareDataSets(expected, actual DataSet) ([]Mismatch, error) {
	var out []Mismatch
	actualTables := make(map[string]Table)
	for name, t := range All(actual) {
		actualTables[name] = t
	}

	seen := make(map[string]bool)
	for name, want := range All(expected) {
		seen[name] = true
		got, ok := actualTables[name]
		if !ok {
			out = append(out, Mismatch{Table: name, Row: -1, Expected: "present", Actual: "absent", Reason: "table missing from actual dataset"})
			continue
		}
		m, err := CompareTables(want, got)
		if err != nil {
			return nil, err
		}
		out = append(out, m...)
	}
	for _, name := range TableNames(actual) {
		if !seen[name] {
			out = append(out, Mismatch{Table: name, Row: -1, Expected: "absent", Actual: "present", Reason: "unexpected table in actual dataset"})
		}
	}
	return out, nil
}

// DataSetMatches reports whether expected and actual hold the same tables and data.
func DataSetMatches(expected, actual DataSet) (bool, error) {
	m, err := CompareDataSets(expected, actual)
	return len(m) == 0, err
}

// AssertionError describes a failed table or dataset assertion.
type AssertionError struct {
	Mismatches []Mismatch
	Expected   string
	Actual     string
}

func (e *AssertionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "dataset assertion failed with %d mismatch(es):\n", len(e.Mismatches))
	for _, m := range e.Mismatches {
		b.WriteString("  ")
		b.WriteString(m.String())
		b.WriteByte('\n')
	}
	if e.Expected != "" || e.Actual != "" {
		b.WriteString("expected:\n")
		b.WriteString(e.Expected)
		b.WriteString("actual:\n")
		b.WriteString(e.Actual)
	}
	return b.String()
}

// Unwrap exposes the failure as an ASSERTION_FAILED AppError.
func (e *AssertionError) Unwrap() error {
	return apperrors.AssertionFailed(fmt.Sprintf("%d mismatch(es)", len(e.Mismatches)))
}

// IsAssertionError reports whether err is, or wraps, a dataset assertion failure.
func IsAssertionError(err error) bool {
	return apperrors.HasCode(err, apperrors.ErrCodeAssertionFailed)
}

// AssertTablesEqual returns nil when both tables hold the same data, an
// *AssertionError when they differ, or the read error that stopped the
// comparison.
func AssertTablesEqual(expected, actual Table) error {
	m, err := CompareTables(expected, actual)
	if err != nil {
		return err
	}
	if len(m) == 0 {
		return nil
	}
	return &AssertionError{Mismatches: m, Expected: RenderTable(expected), Actual: RenderTable(actual)}
}

// AssertDataSetsEqual is AssertTablesEqual over whole datasets.
func AssertDataSetsEqual(expected, actual DataSet) error {
	m, err := CompareDataSets(expected, actual)
	if err != nil {
		return err
	}
	if len(m) == 0 {
		return nil
	}
	return &AssertionError{Mismatches: m, Expected: RenderDataSet(expected), Actual: RenderDataSet(actual)}
}

// ContainsRow reports whether some row of t matches every column of want.
func ContainsRow(t Table, want Row) (bool, error) {
	for i := 0; i < t.RowCount(); i++ {
		got, err := t.Row(i)
		if err != nil {
			return false, err
		}
		if rowMatches(want, got) {
			return true, nil
		}
	}
	return false, nil
}

func rowMatches(want, got Row) bool {
	for c, v := range want {
		gv, ok := got[c]
		if !ok || !ValuesEqual(v, gv) {
			return false
		}
	}
	return true
}

func displayValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%q", FormatValue(v))
}

// RenderTable draws t as a text grid. A read failure is rendered in place of
// the rows.
func RenderTable(t Table) string {
	meta := t.MetaData()
	columns := meta.columns

	cells := make([][]string, 0, t.RowCount())
	var readErr error
	for i := 0; i < t.RowCount(); i++ {
		row, err := t.Row(i)
		if err != nil {
			readErr = err
			break
		}
		line := make([]string, len(columns))
		for k, c := range columns {
			if row[c] == nil {
				line[k] = "NULL"
			} else {
				line[k] = FormatValue(row[c])
			}
		}
		cells = append(cells, line)
	}

	widths := make([]int, len(columns))
	for k, c := range columns {
		widths[k] = len(c)
		for _, line := range cells {
			widths[k] = max(widths[k], len(line[k]))
		}
	}

	var sep strings.Builder
	sep.WriteByte('+')
	for _, w := range widths {
		sep.WriteString(strings.Repeat("-", w+2))
		sep.WriteByte('+')
	}
	separator := sep.String()

	var b strings.Builder
	inner := max(len(separator)-4, len(meta.Name()))
	fmt.Fprintf(&b, "%s\n| %-*s |\n%s\n", separator, inner, meta.Name(), separator)
	writeLine := func(values []string) {
		b.WriteByte('|')
		for k, v := range values {
			fmt.Fprintf(&b, " %-*s |", widths[k], v)
		}
		b.WriteByte('\n')
	}
	if len(columns) > 0 {
		writeLine(columns)
		b.WriteString(separator + "\n")
	}
	for _, line := range cells {
		writeLine(line)
	}
	if readErr != nil {
		fmt.Fprintf(&b, "| <error: %v>\n", readErr)
	}
	if len(cells) > 0 {
		b.WriteString(separator + "\n")
	}
	return b.String()
}

// RenderDataSet draws every table of ds in order.
func RenderDataSet(ds DataSet) string {
	var b strings.Builder
	for _, t := range All(ds) {
		b.WriteString(RenderTable(t))
		b.WriteByte('\n')
	}
	return b.String()
}
