package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/dbunit/component"
	"github.com/kbukum/dbunit/logger"
)

// Component wraps DB and implements component.Component for lifecycle management.
type Component struct {
	cfg    Config
	log    *logger.Logger
	models []interface{}

	mu sync.RWMutex
	db *DB
}

var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// NewComponent creates a database component. The connection is opened by Start.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.NewNop()
	}
	return &Component{cfg: cfg, log: log}
}

// WithAutoMigrate registers models for auto-migration on Start.
func (c *Component) WithAutoMigrate(models ...interface{}) *Component {
	c.models = append(c.models, models...)
	return c
}

// DB returns the underlying *DB, or nil if not started.
func (c *Component) DB() *DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// Name returns the component name.
func (c *Component) Name() string { return "database" }

// Start connects to the database and runs auto-migration for registered models.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db != nil {
		return fmt.Errorf("database component already started")
	}

	db, err := Open(ctx, c.cfg, c.log)
	if err != nil {
		return err
	}
	if len(c.models) > 0 {
		if err := db.AutoMigrate(ctx, c.models...); err != nil {
			_ = db.Close()
			return err
		}
	}
	c.db = db
	return nil
}

// Stop closes the database connection.
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

// Health returns the current health status of the database.
func (c *Component) Health(ctx context.Context) component.Health {
	db := c.DB()
	if db == nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: "database not started",
		}
	}
	if err := db.PingContext(ctx); err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: fmt.Sprintf("ping failed: %v", err),
		}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe summarizes the connection target and pool.
func (c *Component) Describe() component.Description {
	target := c.cfg.Path
	if c.cfg.Driver != DriverSQLite {
		target = fmt.Sprintf("%s:%d/%s", c.cfg.Host, c.cfg.Port, c.cfg.Name)
		if c.cfg.UnixSocket != "" {
			target = fmt.Sprintf("%s/%s", c.cfg.UnixSocket, c.cfg.Name)
		}
	}
	if c.cfg.DSN != "" {
		target = "dsn"
	}
	return component.Description{
		Name:    "Database",
		Type:    "database",
		Details: fmt.Sprintf("%s %s pool=%d/%d", c.cfg.Driver, target, c.cfg.MaxOpenConns, c.cfg.MaxIdleConns),
	}
}
