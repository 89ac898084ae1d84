// Package purger restores a database to an empty baseline between tests.
//
// A TablePurger truncates every managed table. A SequenceResettingPurger
// runs a base purge and then, on engines that have sequence objects,
// restarts every sequence at 1 so generated identifiers are the same on
// every run. Engines with only auto-increment columns reset those as part
// of truncation and skip the second step.
package purger

import (
	"context"
	"slices"

	"github.com/kbukum/dbunit/logger"
)

// DefaultExcludedTables are never truncated unless listed explicitly.
var DefaultExcludedTables = []string{"schema_migrations"}

// Purger empties the database.
type Purger interface {
	Purge(ctx context.Context) error
}

// Connection is the part of a database connection a TablePurger needs.
type Connection interface {
	// ManagedTables lists the user tables of the bound schema.
	ManagedTables(ctx context.Context) ([]string, error)
	// TruncateTables removes every row of the given tables and resets
	// their auto-increment counters where the engine has them.
	TruncateTables(ctx context.Context, tables []string) error
}

// SequenceConnection is implemented by connections to engines that may have
// sequence objects.
type SequenceConnection interface {
	SupportsSequences() bool
	ListSequences(ctx context.Context) ([]string, error)
	ResetSequence(ctx context.Context, name string) error
}

// Option configures a purger.
type Option func(*options)

type options struct {
	tables   []string
	excluded []string
	log      *logger.Logger
}

// WithTables truncates exactly these tables instead of every managed table.
func WithTables(tables ...string) Option {
	return func(o *options) { o.tables = slices.Clone(tables) }
}

// WithExcludedTables replaces DefaultExcludedTables.
func WithExcludedTables(tables ...string) Option {
	return func(o *options) { o.excluded = slices.Clone(tables) }
}

// WithLogger sets the logger used for purge progress.
func WithLogger(log *logger.Logger) Option {
	return func(o *options) { o.log = log }
}

func buildOptions(opts []Option) options {
	o := options{excluded: slices.Clone(DefaultExcludedTables)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.NewNop()
	}
	o.log = o.log.WithComponent("purger")
	return o
}

// TablePurger truncates managed tables.
type TablePurger struct {
	conn Connection
	opts options
}

// NewTablePurger creates a TablePurger over conn.
func NewTablePurger(conn Connection, opts ...Option) *TablePurger {
	return &TablePurger{conn: conn, opts: buildOptions(opts)}
}

// Tables returns the tables Purge truncates.
func (p *TablePurger) Tables(ctx context.Context) ([]string, error) {
	if len(p.opts.tables) > 0 {
		return slices.Clone(p.opts.tables), nil
	}
	all, err := p.conn.ManagedTables(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(all, func(t string) bool {
		return slices.Contains(p.opts.excluded, t)
	}), nil
}

// Purge truncates the tables in one call to the connection.
func (p *TablePurger) Purge(ctx context.Context) error {
	tables, err := p.Tables(ctx)
	if err != nil {
		return err
	}
	if len(tables) == 0 {
		p.opts.log.Debug("No tables to purge")
		return nil
	}
	if err := p.conn.TruncateTables(ctx, tables); err != nil {
		return err
	}
	p.opts.log.Debug("Tables purged", logger.Fields(logger.FieldTables, tables))
	return nil
}

// SequenceResettingPurger follows a base purge with a sequence reset.
type SequenceResettingPurger struct {
	base Purger
	seq  SequenceConnection
	log  *logger.Logger
}

// NewSequenceResettingPurger decorates base.
func NewSequenceResettingPurger(base Purger, seq SequenceConnection, opts ...Option) *SequenceResettingPurger {
	o := buildOptions(opts)
	return &SequenceResettingPurger{base: base, seq: seq, log: o.log}
}

// Purge runs the base purge, then restarts every sequence at 1 when the
// engine supports sequences. The first failure is returned as is and the
// remaining sequences are left untouched.
func (p *SequenceResettingPurger) Purge(ctx context.Context) error {
	if err := p.base.Purge(ctx); err != nil {
		return err
	}
	if !p.seq.SupportsSequences() {
		return nil
	}

	names, err := p.seq.ListSequences(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := p.seq.ResetSequence(ctx, name); err != nil {
			return err
		}
	}
	if len(names) > 0 {
		p.log.Debug("Sequences reset", logger.Fields(logger.FieldSequence, names))
	}
	return nil
}

// New returns the purger for conn: a TablePurger, wrapped in a
// SequenceResettingPurger when conn also implements SequenceConnection.
func New(conn Connection, opts ...Option) Purger {
	base := NewTablePurger(conn, opts...)
	if seq, ok := conn.(SequenceConnection); ok {
		return NewSequenceResettingPurger(base, seq, opts...)
	}
	return base
}
