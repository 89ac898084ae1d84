package migration

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kbukum/dbunit/logger"
)

// Migration describes a single schema migration written in Go.
type Migration struct {
	ID          string
	Description string
	Up          func(*gorm.DB) error
	Down        func(*gorm.DB) error
}

// DefaultRunnerTable records the migrations a Runner has applied. It is
// listed in purger.DefaultExcludedTables so purging keeps it.
const DefaultRunnerTable = "schema_migrations"

// appliedMigration is a row of the runner table.
type appliedMigration struct {
	ID        string `gorm:"primaryKey;size:255"`
	AppliedAt time.Time
}

// Runner applies Go migrations in registration order, each in its own
// transaction, skipping those already recorded.
type Runner struct {
	db         *gorm.DB
	log        *logger.Logger
	table      string
	migrations []Migration
}

// NewRunner creates a runner bound to the given database and logger.
func NewRunner(db *gorm.DB, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.NewNop()
	}
	return &Runner{db: db, log: log.WithComponent("migration"), table: DefaultRunnerTable}
}

// WithTable records applied migrations in table instead of DefaultRunnerTable.
func (r *Runner) WithTable(table string) *Runner {
	r.table = table
	return r
}

// Add registers migrations to be applied.
func (r *Runner) Add(migrations ...Migration) *Runner {
	r.migrations = append(r.migrations, migrations...)
	return r
}

// Up applies all pending migrations in order.
func (r *Runner) Up(ctx context.Context) error {
	db := r.db.WithContext(ctx)
	if err := db.Table(r.table).AutoMigrate(&appliedMigration{}); err != nil {
		return fmt.Errorf("create %s: %w", r.table, err)
	}

	for _, m := range r.migrations {
		var count int64
		if err := db.Table(r.table).Where("id = ?", m.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("check migration %s: %w", m.ID, err)
		}
		if count > 0 {
			r.log.Debug("Migration already applied", map[string]interface{}{"id": m.ID})
			continue
		}

		if err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return err
			}
			return tx.Table(r.table).Create(&appliedMigration{ID: m.ID, AppliedAt: time.Now().UTC()}).Error
		}); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.ID, err)
		}
		r.log.Debug("Migration applied", map[string]interface{}{
			"id":          m.ID,
			"description": m.Description,
		})
	}
	return nil
}

// Down reverts applied migrations in reverse order. Migrations without a
// Down function stop the rollback with an error.
func (r *Runner) Down(ctx context.Context) error {
	db := r.db.WithContext(ctx)
	if !db.Migrator().HasTable(r.table) {
		return nil
	}
	for i := len(r.migrations) - 1; i >= 0; i-- {
		m := r.migrations[i]
		var count int64
		if err := db.Table(r.table).Where("id = ?", m.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("check migration %s: %w", m.ID, err)
		}
		if count == 0 {
			continue
		}
		if m.Down == nil {
			return fmt.Errorf("migration %s cannot be reverted", m.ID)
		}
		if err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.Down(tx); err != nil {
				return err
			}
			return tx.Table(r.table).Where("id = ?", m.ID).Delete(&appliedMigration{}).Error
		}); err != nil {
			return fmt.Errorf("revert migration %s: %w", m.ID, err)
		}
	}
	return nil
}
