package session

import (
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/dbunit/component"
	"github.com/kbukum/dbunit/database"
	"github.com/kbukum/dbunit/dataset"
	"github.com/kbukum/dbunit/logger"
	"github.com/kbukum/dbunit/purger"
)

// Session is the state of one test run. It is safe for concurrent use;
// builders it returns are not.
type Session struct {
	id    string
	cfg   Config
	log   *logger.Logger
	clock func() time.Time
	comp  *database.Component

	mu          sync.Mutex
	schemaReady bool
	shared      map[string]bool
	closed      bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger replaces the logger built from Config.Logging.
func WithLogger(log *logger.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithClock sets the time source used for the now token.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.clock = now }
}

// Open initializes the database and opens the shared connection.
// Initialization drops and recreates the database on engines that support
// it and otherwise drops every existing table; SkipInit disables both.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Session, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		id:     uuid.NewString(),
		cfg:    cfg,
		clock:  time.Now,
		shared: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.New(&cfg.Logging, "dbunit")
	}
	s.log = s.log.WithComponent("session").WithFields(map[string]interface{}{"session_id": s.id})

	recreate := !cfg.SkipInit && canRecreate(cfg.Database)
	if recreate {
		if err := s.recreateDatabase(ctx); err != nil {
			return nil, err
		}
	}

	s.comp = database.NewComponent(cfg.Database, s.log)
	if err := s.comp.Start(ctx); err != nil {
		return nil, err
	}
	if !cfg.SkipInit && !recreate {
		if err := s.comp.DB().Conn().DropAllTables(ctx); err != nil {
			_ = s.comp.Stop(ctx)
			return nil, fmt.Errorf("failed to drop existing tables: %w", err)
		}
	}

	d := component.Describe(s.comp)
	s.log.Info("session opened", map[string]interface{}{"database": d.Details})
	return s, nil
}

// canRecreate reports whether Open drops and creates the database itself.
// An explicit DSN names the database only opaquely, so it is not recreated.
func canRecreate(cfg database.Config) bool {
	return database.PlatformFor(cfg.Driver).CreateDatabase && cfg.DSN == "" && cfg.Name != ""
}

func (s *Session) recreateDatabase(ctx context.Context) error {
	serverCfg := s.cfg.Database
	serverCfg.DSN = serverCfg.ServerDSN()
	server, err := database.Open(ctx, serverCfg, s.log)
	if err != nil {
		return err
	}
	defer server.Close()

	conn := server.Conn()
	if err := conn.DropDatabase(ctx, s.cfg.Database.Name); err != nil {
		return err
	}
	if err := conn.CreateDatabase(ctx, s.cfg.Database.Name); err != nil {
		return err
	}
	s.log.Info("database recreated", map[string]interface{}{"name": s.cfg.Database.Name})
	return nil
}

// ID returns the unique id of this session.
func (s *Session) ID() string { return s.id }

// Config returns the effective configuration.
func (s *Session) Config() Config { return s.cfg }

// Logger returns the session logger.
func (s *Session) Logger() *logger.Logger { return s.log }

// DB returns the shared connection, or nil after Close.
func (s *Session) DB() *database.DB { return s.comp.DB() }

// Health reports the state of the shared connection.
func (s *Session) Health(ctx context.Context) component.Health { return s.comp.Health(ctx) }

// SchemaFunc creates the schema of the database under test.
type SchemaFunc func(ctx context.Context, db *database.DB) error

// SetUpSchema runs fn the first time it is called on s and does nothing
// afterwards. A failed fn leaves the schema unmarked so a later call retries.
func (s *Session) SetUpSchema(ctx context.Context, fn SchemaFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schemaReady {
		return nil
	}
	db, err := s.conn()
	if err != nil {
		return err
	}
	if err := fn(ctx, db); err != nil {
		return err
	}
	s.schemaReady = true
	s.log.Debug("schema created")
	return nil
}

// SchemaReady reports whether SetUpSchema has succeeded.
func (s *Session) SchemaReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schemaReady
}

// NewBuilder returns a dataset builder. With defaults the null token is
// replaced by nil and the now token by the current session time.
func (s *Session) NewBuilder(defaults bool) *dataset.Builder {
	b := dataset.NewBuilder()
	if defaults {
		fx := s.cfg.Fixtures
		b.AddFullReplacement(fx.NullToken, nil)
		b.AddFullReplacement(fx.NowToken, s.clock().Format(fx.NowFormat))
	}
	return b
}

// resolve prefixes relative fixture paths with the fixtures directory.
func (s *Session) resolve(source any) any {
	if p, ok := source.(string); ok && s.cfg.Fixtures.Dir != "" && !filepath.IsAbs(p) {
		return filepath.Join(s.cfg.Fixtures.Dir, p)
	}
	return source
}

func (s *Session) purger(conn *database.Conn) purger.Purger {
	excluded := append(slices.Clone(purger.DefaultExcludedTables), s.cfg.KeepTables...)
	return purger.New(conn, purger.WithExcludedTables(excluded...), purger.WithLogger(s.log))
}

// Purge truncates every managed table except KeepTables and resets
// sequences where the engine has them.
func (s *Session) Purge(ctx context.Context) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	return s.purger(db.Conn()).Purge(ctx)
}

// CleanInsert purges the database and inserts every source, each a fixture
// path or a dataset.DataSet, through a default builder.
func (s *Session) CleanInsert(ctx context.Context, sources ...any) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	b := s.NewBuilder(true)
	sets := make([]dataset.DataSet, 0, len(sources))
	for _, src := range sources {
		ds, err := b.CreateDataSet(s.resolve(src))
		if err != nil {
			return err
		}
		sets = append(sets, ds)
	}

	if err := s.purger(db.Conn()).Purge(ctx); err != nil {
		return err
	}
	for _, ds := range sets {
		if err := db.InsertDataSet(ctx, ds); err != nil {
			return err
		}
	}
	return nil
}

// LoadSharedFixtures clean-inserts sources the first time it is called
// with key and reports whether it did. Loading a different key purges the
// fixtures of every other key, which are then no longer marked loaded.
func (s *Session) LoadSharedFixtures(ctx context.Context, key string, sources ...any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shared[key] {
		return false, nil
	}
	if err := s.CleanInsert(ctx, sources...); err != nil {
		return false, err
	}
	clear(s.shared)
	s.shared[key] = true
	s.log.Debug("shared fixtures loaded", map[string]interface{}{"key": key})
	return true, nil
}

// ResetShared forgets that the fixtures of keys were loaded, or of every
// key when none is given, so the next LoadSharedFixtures loads again.
func (s *Session) ResetShared(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(keys) == 0 {
		clear(s.shared)
		return
	}
	for _, k := range keys {
		delete(s.shared, k)
	}
}

// SharedKeys returns the keys whose fixtures are currently loaded.
func (s *Session) SharedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.shared))
}

// ActualDataSet reads tables from the database, or every managed table
// when none is named.
func (s *Session) ActualDataSet(ctx context.Context, tables ...string) (*dataset.DefaultDataSet, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	return db.QueryDataSet(ctx, tables...)
}

// Close closes the shared connection. Closing twice is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.log.Debug("session closed")
	return s.comp.Stop(context.Background())
}

func (s *Session) conn() (*database.DB, error) {
	db := s.comp.DB()
	if db == nil {
		return nil, fmt.Errorf("session %s is closed", s.id)
	}
	return db, nil
}
