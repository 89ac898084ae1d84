package session

import (
	"context"
	"io/fs"

	"github.com/kbukum/dbunit/database"
	"github.com/kbukum/dbunit/database/migration"
)

// AutoMigrate creates the schema from GORM models.
func AutoMigrate(models ...interface{}) SchemaFunc {
	return func(ctx context.Context, db *database.DB) error {
		return db.AutoMigrate(ctx, models...)
	}
}

// Migrations applies the SQL migrations under dir in fsys with golang-migrate.
func Migrations(fsys fs.FS, dir string, driverFunc migration.DriverFunc) SchemaFunc {
	return func(_ context.Context, db *database.DB) error {
		return migration.MigrateUp(db.GormDB, fsys, dir, driverFunc)
	}
}

// Functions applies migrations written in Go, recording them in the
// migration table.
func Functions(migrations ...migration.Migration) SchemaFunc {
	return func(ctx context.Context, db *database.DB) error {
		return migration.NewRunner(db.GormDB, nil).Add(migrations...).Up(ctx)
	}
}

// Statements executes DDL statements in order.
func Statements(stmts ...string) SchemaFunc {
	return func(ctx context.Context, db *database.DB) error {
		for _, stmt := range stmts {
			if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
				return database.FromDatabase(err, stmt)
			}
		}
		return nil
	}
}

// Chain runs fns in order, stopping at the first error.
func Chain(fns ...SchemaFunc) SchemaFunc {
	return func(ctx context.Context, db *database.DB) error {
		for _, fn := range fns {
			if err := fn(ctx, db); err != nil {
				return err
			}
		}
		return nil
	}
}
