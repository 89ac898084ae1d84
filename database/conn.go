package database

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/kbukum/dbunit/errors"
	"github.com/kbukum/dbunit/purger"
)

var (
	_ purger.Connection         = (*Conn)(nil)
	_ purger.SequenceConnection = (*Conn)(nil)
)

// Conn runs schema housekeeping statements in the dialect of its platform.
type Conn struct {
	db       *gorm.DB
	platform Platform
}

// NewConn binds db to platform.
func NewConn(db *gorm.DB, platform Platform) *Conn {
	return &Conn{db: db, platform: platform}
}

// Platform returns the engine capabilities Conn was bound with.
func (c *Conn) Platform() Platform { return c.platform }

// ManagedTables lists the user tables of the current schema in name order.
func (c *Conn) ManagedTables(ctx context.Context) ([]string, error) {
	tables, err := c.db.WithContext(ctx).Migrator().GetTables()
	if err != nil {
		return nil, FromDatabase(err, "list tables")
	}
	tables = slices.DeleteFunc(tables, func(t string) bool {
		return c.platform.Name == DriverSQLite && strings.HasPrefix(t, "sqlite_")
	})
	slices.Sort(tables)
	return tables, nil
}

// TruncateTables removes every row of tables with foreign key checks
// suspended. Auto-increment counters are reset on sqlite and mysql.
func (c *Conn) TruncateTables(ctx context.Context, tables []string) error {
	if len(tables) == 0 {
		return nil
	}
	db := c.db.WithContext(ctx)

	switch c.platform.Name {
	case DriverPostgres:
		quoted := make([]string, len(tables))
		for i, t := range tables {
			quoted[i] = quoteIdent(c.platform, t)
		}
		stmt := "TRUNCATE TABLE " + strings.Join(quoted, ", ") + " CASCADE"
		return FromDatabase(db.Exec(stmt).Error, stmt)

	case DriverMySQL:
		return db.Connection(func(tx *gorm.DB) error {
			if err := exec(tx, "SET FOREIGN_KEY_CHECKS = 0"); err != nil {
				return err
			}
			defer tx.Exec("SET FOREIGN_KEY_CHECKS = 1")
			for _, t := range tables {
				if err := exec(tx, "TRUNCATE TABLE "+quoteIdent(c.platform, t)); err != nil {
					return err
				}
			}
			return nil
		})
	}

	return db.Connection(func(tx *gorm.DB) error {
		var fk int
		if err := tx.Raw("PRAGMA foreign_keys").Scan(&fk).Error; err != nil {
			return FromDatabase(err, "PRAGMA foreign_keys")
		}
		if fk == 1 {
			if err := exec(tx, "PRAGMA foreign_keys = OFF"); err != nil {
				return err
			}
			defer tx.Exec("PRAGMA foreign_keys = ON")
		}
		return tx.Transaction(func(tx *gorm.DB) error {
			for _, t := range tables {
				if err := exec(tx, "DELETE FROM "+quoteIdent(c.platform, t)); err != nil {
					return err
				}
			}
			if !tx.Migrator().HasTable("sqlite_sequence") {
				return nil
			}
			stmt := "DELETE FROM sqlite_sequence WHERE name IN ?"
			return FromDatabase(tx.Exec(stmt, tables).Error, stmt)
		})
	})
}

// SupportsSequences reports whether the engine has sequence objects.
func (c *Conn) SupportsSequences() bool { return c.platform.Sequences }

// ListSequences lists the sequences of the current schema in name order.
func (c *Conn) ListSequences(ctx context.Context) ([]string, error) {
	if !c.platform.Sequences {
		return nil, nil
	}
	const stmt = `SELECT c.relname FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE c.relkind = 'S' AND n.nspname = current_schema()
		ORDER BY c.relname`
	var names []string
	if err := c.db.WithContext(ctx).Raw(stmt).Scan(&names).Error; err != nil {
		return nil, FromDatabase(err, stmt)
	}
	return names, nil
}

// ResetSequence makes the next value of sequence name 1.
func (c *Conn) ResetSequence(ctx context.Context, name string) error {
	if !c.platform.Sequences {
		return apperrors.InvalidInput("sequence", fmt.Sprintf("%s has no sequences", c.platform.Name))
	}
	return exec(c.db.WithContext(ctx), "ALTER SEQUENCE "+quoteIdent(c.platform, name)+" RESTART WITH 1")
}

// DropAllTables drops every table of the current schema, including
// migration bookkeeping.
func (c *Conn) DropAllTables(ctx context.Context) error {
	tables, err := c.ManagedTables(ctx)
	if err != nil {
		return err
	}
	if len(tables) == 0 {
		return nil
	}
	args := make([]interface{}, len(tables))
	for i, t := range tables {
		args[i] = t
	}
	return FromDatabase(c.db.WithContext(ctx).Migrator().DropTable(args...), "drop tables")
}

// CreateDatabase creates database name. c must be connected to the server
// rather than to name itself.
func (c *Conn) CreateDatabase(ctx context.Context, name string) error {
	if !c.platform.CreateDatabase {
		return apperrors.InvalidInput("database", fmt.Sprintf("%s cannot create databases", c.platform.Name))
	}
	return exec(c.db.WithContext(ctx), "CREATE DATABASE "+quoteIdent(c.platform, name))
}

// DropDatabase drops database name if it exists.
func (c *Conn) DropDatabase(ctx context.Context, name string) error {
	if !c.platform.CreateDatabase {
		return apperrors.InvalidInput("database", fmt.Sprintf("%s cannot drop databases", c.platform.Name))
	}
	return exec(c.db.WithContext(ctx), "DROP DATABASE IF EXISTS "+quoteIdent(c.platform, name))
}

func exec(db *gorm.DB, stmt string, args ...interface{}) error {
	return FromDatabase(db.Exec(stmt, args...).Error, stmt)
}
