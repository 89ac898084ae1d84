package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/kbukum/dbunit/errors"
	"github.com/kbukum/dbunit/logger"
	"github.com/kbukum/dbunit/resilience"
)

// DB wraps a GORM database with logging, a query log and engine-specific
// housekeeping.
type DB struct {
	GormDB   *gorm.DB
	log      *logger.Logger
	cfg      Config
	platform Platform
	queries  *QueryLog
	closed   bool
	mu       sync.Mutex
}

// Open connects using cfg with retry logic and connection pooling.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (*DB, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error()).WithCause(err)
	}
	d, err := Dialector(cfg.Driver, cfg.ConnString())
	if err != nil {
		return nil, apperrors.InvalidInput("driver", err.Error())
	}
	return OpenDialector(ctx, d, cfg, log)
}

// OpenDialector connects through an already constructed dialector. The
// context allows cancellation of connection attempts during retries.
func OpenDialector(ctx context.Context, d gorm.Dialector, cfg Config, log *logger.Logger) (*DB, error) {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.NewNop()
	}
	log = log.WithComponent("database")

	slowThreshold, _ := time.ParseDuration(cfg.SlowQueryThreshold)
	backoff, _ := time.ParseDuration(cfg.RetryBackoff)
	queries := NewQueryLog(cfg.QueryLogSize)
	gormCfg := &gorm.Config{
		Logger: newGormLogger(log, queries, slowThreshold, parseLogLevel(cfg.LogLevel)),
	}

	attempts := 0
	db, err := resilience.Retry(ctx, resilience.RetryConfig{
		MaxAttempts:    cfg.MaxRetries,
		InitialBackoff: backoff,
		MaxBackoff:     maxRetryBackoff,
		BackoffFactor:  2,
		RetryIf:        func(error) bool { return ctx.Err() == nil },
		OnRetry: func(attempt int, err error, wait time.Duration) {
			log.Warn("Database connection attempt failed, retrying", map[string]interface{}{
				"attempt":          attempt,
				logger.FieldError: err.Error(),
				"backoff":          wait.String(),
			})
		},
	}, func() (*gorm.DB, error) {
		attempts++
		return connect(ctx, d, gormCfg, cfg)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, apperrors.ConnectionFailed(cfg.Driver, ctxErr)
		}
		return nil, apperrors.ConnectionFailed(cfg.Driver,
			fmt.Errorf("failed to connect after %d attempts: %w", attempts, err))
	}

	platform := PlatformFor(db.Dialector.Name())
	log.Debug("Database connection established", map[string]interface{}{
		"attempts":           attempts,
		logger.FieldPlatform: platform.Name,
	})
	return &DB{GormDB: db, log: log, cfg: cfg, platform: platform, queries: queries}, nil
}

// maxRetryBackoff caps the doubling delay between connection attempts.
const maxRetryBackoff = 30 * time.Second

// connect opens and pings one connection pool and applies the pool limits.
func connect(ctx context.Context, d gorm.Dialector, gormCfg *gorm.Config, cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(d, gormCfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	if lifetime, err := time.ParseDuration(cfg.ConnMaxLifetime); err == nil {
		sqlDB.SetConnMaxLifetime(lifetime)
	}
	if idleTime, err := time.ParseDuration(cfg.ConnMaxIdleTime); err == nil {
		sqlDB.SetConnMaxIdleTime(idleTime)
	}
	return db, nil
}

// Config returns the effective configuration, defaults applied.
func (d *DB) Config() Config { return d.cfg }

// Platform returns the capabilities of the connected engine.
func (d *DB) Platform() Platform { return d.platform }

// QueryLog returns the log fed by every statement this connection executes.
func (d *DB) QueryLog() *QueryLog { return d.queries }

// Conn returns the purge-capable view of this connection.
func (d *DB) Conn() *Conn { return NewConn(d.GormDB, d.platform) }

// Close closes the underlying sql.DB connection pool. Safe to call multiple times.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return err
	}
	d.log.Debug("Closing database connection")
	d.closed = true
	return sqlDB.Close()
}

// PingContext verifies the database connection is alive.
func (d *DB) PingContext(ctx context.Context) error {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return apperrors.ConnectionFailed(d.platform.Name, fmt.Errorf("database is closed"))
	}
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return FromDatabase(err, "")
	}
	return FromDatabase(sqlDB.PingContext(ctx), "")
}

// WithContext returns a GORM session scoped to the given context.
func (d *DB) WithContext(ctx context.Context) *gorm.DB {
	return d.GormDB.WithContext(ctx)
}

// AutoMigrate runs GORM auto-migration for the given models.
func (d *DB) AutoMigrate(ctx context.Context, models ...interface{}) error {
	d.log.Debug("Running auto-migration", map[string]interface{}{
		"models": len(models),
	})
	for _, model := range models {
		if err := d.GormDB.WithContext(ctx).AutoMigrate(model); err != nil {
			return FromDatabase(fmt.Errorf("failed to migrate %T: %w", model, err), "")
		}
	}
	return nil
}

// Transaction executes fn inside a database transaction.
func (d *DB) Transaction(ctx context.Context, fn func(*gorm.DB) error) error {
	return d.GormDB.WithContext(ctx).Transaction(fn)
}
