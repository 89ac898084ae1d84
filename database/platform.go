package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Platform describes what the connected engine can do.
type Platform struct {
	// Name is the driver name: sqlite, postgres or mysql.
	Name string
	// Sequences reports whether the engine has sequence objects that
	// survive truncation.
	Sequences bool
	// CreateDatabase reports whether the engine supports CREATE and DROP
	// DATABASE.
	CreateDatabase bool
}

// PlatformFor returns the Platform of a driver or GORM dialector name.
func PlatformFor(name string) Platform {
	switch name {
	case DriverPostgres:
		return Platform{Name: DriverPostgres, Sequences: true, CreateDatabase: true}
	case DriverMySQL:
		return Platform{Name: DriverMySQL, CreateDatabase: true}
	default:
		return Platform{Name: DriverSQLite}
	}
}

func (p Platform) String() string { return p.Name }

// Dialector returns the GORM dialector for driver and dsn.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	case DriverMySQL:
		return mysql.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported driver %q", driver)
}

func quoteIdent(platform Platform, name string) string {
	q := `"`
	if platform.Name == DriverMySQL {
		q = "`"
	}
	return q + strings.ReplaceAll(name, q, q+q) + q
}
