package session

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/kbukum/dbunit/dataset"
)

// Case is the per-test view of a Session. It records the statements the
// test executes and enriches unexpected failures with them.
type Case struct {
	t       testing.TB
	s       *Session
	ctx     context.Context
	builder *dataset.Builder
}

// Begin starts a test case: the query log is cleared and enabled until
// the test ends.
func (s *Session) Begin(t testing.TB) *Case {
	t.Helper()
	db, err := s.conn()
	if err != nil {
		t.Fatal(err)
	}
	ql := db.QueryLog()
	ql.Reset()
	ql.Enable()
	t.Cleanup(func() {
		ql.Disable()
		ql.Reset()
	})
	return &Case{t: t, s: s, ctx: context.Background(), builder: s.NewBuilder(true)}
}

// Session returns the session the case belongs to.
func (c *Case) Session() *Session { return c.s }

// Context returns the context for statements issued by the test.
func (c *Case) Context() context.Context { return c.ctx }

// Builder returns the builder AssertDataSet and AssertTables apply to both
// sides. It starts with the default replacements; configure sort keys and
// excluded columns on it before asserting.
func (c *Case) Builder() *dataset.Builder { return c.builder }

// AssertDataSet compares expected and actual, each a fixture path or a
// dataset.DataSet, after passing both through Builder. A difference fails
// the test with the assertion error unchanged; any other error is fatal
// and enriched.
func (c *Case) AssertDataSet(expected, actual any) {
	c.t.Helper()
	want, err := c.builder.CreateDataSet(c.s.resolve(expected))
	c.Check(err)
	got, err := c.builder.CreateDataSet(c.s.resolve(actual))
	c.Check(err)
	c.Check(dataset.AssertDataSetsEqual(want, got))
}

// AssertTables compares expected with the current content of the tables
// it names.
func (c *Case) AssertTables(expected any) {
	c.t.Helper()
	want, err := c.builder.CreateDataSet(c.s.resolve(expected))
	c.Check(err)
	actual, err := c.s.ActualDataSet(c.ctx, dataset.TableNames(want)...)
	c.Check(err)
	got, err := c.builder.CreateDataSet(actual)
	c.Check(err)
	c.Check(dataset.AssertDataSetsEqual(want, got))
}

// Check fails the test when err is not nil. Assertion errors are reported
// as they are; anything else goes through Enrich first.
func (c *Case) Check(err error) {
	c.t.Helper()
	if err == nil {
		return
	}
	c.t.Fatal(c.Enrich(err))
}

// Enrich attaches the statements executed so far and the call trace to a
// non-assertion error. Assertion errors and errors raised before any
// statement ran are returned unchanged.
func (c *Case) Enrich(err error) error {
	if err == nil || dataset.IsAssertionError(err) {
		return err
	}
	db := c.s.DB()
	if db == nil || db.QueryLog().Len() == 0 {
		return err
	}
	return &EnrichedError{Err: err, Queries: db.QueryLog().String(), Trace: callTrace(2)}
}

// EnrichedError is a failure annotated with the statements leading to it.
// It unwraps to the original error, whose classification is unchanged.
type EnrichedError struct {
	Err     error
	Queries string
	Trace   string
}

func (e *EnrichedError) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	b.WriteString("\n\nWith queries:\n")
	b.WriteString(e.Queries)
	if e.Trace != "" {
		b.WriteString("\nTrace:\n")
		b.WriteString(e.Trace)
	}
	return b.String()
}

func (e *EnrichedError) Unwrap() error { return e.Err }

// IsEnriched reports whether err carries a statement log.
func IsEnriched(err error) bool {
	var e *EnrichedError
	return errors.As(err, &e)
}

// callTrace lists file:line of the callers above skip frames, stopping at
// the first frame of the testing package.
func callTrace(skip int) string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+1, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for {
		f, more := frames.Next()
		if strings.HasPrefix(f.Function, "testing.") {
			break
		}
		if f.File != "" {
			fmt.Fprintf(&b, "%s:%d\n", f.File, f.Line)
		}
		if !more {
			break
		}
	}
	return b.String()
}
