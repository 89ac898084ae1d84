package testutil

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/kbukum/dbunit/component"
	"github.com/kbukum/dbunit/database"
	"github.com/kbukum/dbunit/dataset"
	"github.com/kbukum/dbunit/logger"
	"github.com/kbukum/dbunit/purger"
	"github.com/kbukum/dbunit/testutil"
)

// Component is a test database backed by in-memory sqlite.
type Component struct {
	cfg    database.Config
	log    *logger.Logger
	models []interface{}
	schema []string

	mu sync.RWMutex
	db *database.DB
}

var _ component.Component = (*Component)(nil)
var _ testutil.TestComponent = (*Component)(nil)

// NewComponent creates a test database component.
func NewComponent() *Component {
	return &Component{
		cfg: database.Config{Driver: database.DriverSQLite, Path: database.MemoryPath, LogLevel: "silent"},
		log: logger.NewNop(),
	}
}

// WithModels registers models for auto-migration on Start.
func (c *Component) WithModels(models ...interface{}) *Component {
	c.models = append(c.models, models...)
	return c
}

// WithSchema registers DDL statements executed on Start, after auto-migration.
func (c *Component) WithSchema(statements ...string) *Component {
	c.schema = append(c.schema, statements...)
	return c
}

// WithLogger sets the logger passed to the connection.
func (c *Component) WithLogger(log *logger.Logger) *Component {
	c.log = log
	return c
}

// DB returns the underlying *gorm.DB, or nil if not started.
func (c *Component) DB() *gorm.DB {
	if db := c.Database(); db != nil {
		return db.GormDB
	}
	return nil
}

// Database returns the connection, or nil if not started.
func (c *Component) Database() *database.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// Name returns the component name.
func (c *Component) Name() string { return "database-test" }

// Start opens the database and creates the schema.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db != nil {
		return fmt.Errorf("component already started")
	}

	db, err := database.Open(ctx, c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("failed to open test database: %w", err)
	}
	if len(c.models) > 0 {
		if err := db.AutoMigrate(ctx, c.models...); err != nil {
			_ = db.Close()
			return err
		}
	}
	for _, stmt := range c.schema {
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			_ = db.Close()
			return database.FromDatabase(err, stmt)
		}
	}
	c.db = db
	return nil
}

// Stop closes the database; the in-memory data is gone afterwards.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// Health returns the health status of the test database.
func (c *Component) Health(ctx context.Context) component.Health {
	db := c.Database()
	if db == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "database not started"}
	}
	if err := db.PingContext(ctx); err != nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: err.Error()}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

func (c *Component) started() (*database.DB, error) {
	db := c.Database()
	if db == nil {
		return nil, fmt.Errorf("component not started")
	}
	return db, nil
}

// Reset purges every table while keeping the schema.
func (c *Component) Reset(ctx context.Context) error {
	db, err := c.started()
	if err != nil {
		return err
	}
	return purger.New(db.Conn(), purger.WithLogger(c.log)).Purge(ctx)
}

// Snapshot captures every table as a *dataset.DefaultDataSet.
func (c *Component) Snapshot(ctx context.Context) (any, error) {
	db, err := c.started()
	if err != nil {
		return nil, err
	}
	ds, err := db.QueryDataSet(ctx)
	if err != nil {
		return nil, err
	}
	return ds, nil
}

// Restore purges the database and inserts snap, which must be a
// dataset.DataSet such as one returned by Snapshot.
func (c *Component) Restore(ctx context.Context, snap any) error {
	ds, ok := snap.(dataset.DataSet)
	if !ok {
		return fmt.Errorf("invalid snapshot type: expected dataset.DataSet, got %T", snap)
	}
	if err := c.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset before restore: %w", err)
	}
	db, err := c.started()
	if err != nil {
		return err
	}
	return db.InsertDataSet(ctx, ds)
}
