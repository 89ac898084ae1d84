package database

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Drivers lists every supported driver name.
var Drivers = []string{DriverSQLite, DriverPostgres, DriverMySQL}

// MemoryPath opens a private in-memory sqlite database.
const MemoryPath = ":memory:"

// Config holds database connection configuration.
type Config struct {
	// Driver is one of sqlite, postgres or mysql.
	Driver string `mapstructure:"driver" validate:"required,oneof=sqlite postgres mysql"`

	// DSN, when set, is passed to the driver unchanged and the connection
	// fields below are ignored.
	DSN string `mapstructure:"dsn"`

	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port" validate:"gte=0,lte=65535"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	Name       string `mapstructure:"name"`
	UnixSocket string `mapstructure:"unix_socket"`

	// Path is the sqlite database file. Empty means MemoryPath.
	Path string `mapstructure:"path"`

	// Params are appended to generated DSNs (sslmode, charset, ...).
	Params map[string]string `mapstructure:"params"`

	// MaxOpenConns sets the maximum number of open connections to the database.
	MaxOpenConns int `mapstructure:"max_open_conns"`

	// MaxIdleConns sets the maximum number of idle connections in the pool.
	MaxIdleConns int `mapstructure:"max_idle_conns"`

	// ConnMaxLifetime is the maximum time a connection may be reused (e.g. "1h", "30m").
	// "0" disables the limit.
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`

	// ConnMaxIdleTime is the maximum time a connection may sit idle.
	// If empty, no idle timeout is set.
	ConnMaxIdleTime string `mapstructure:"conn_max_idle_time"`

	// MaxRetries is the number of connection attempts before giving up.
	MaxRetries int `mapstructure:"max_retries"`

	// RetryBackoff is the delay after the first failed attempt; it
	// doubles with each further attempt.
	RetryBackoff string `mapstructure:"retry_backoff"`

	// LogLevel is the GORM log level: silent, error, warn or info.
	LogLevel string `mapstructure:"log_level" validate:"omitempty,oneof=silent error warn info"`

	// SlowQueryThreshold is the duration above which queries are logged as slow (e.g. "200ms").
	SlowQueryThreshold string `mapstructure:"slow_query_threshold"`

	// QueryLogSize bounds the number of statements kept by the query log.
	QueryLogSize int `mapstructure:"query_log_size"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Driver == "" {
		c.Driver = DriverSQLite
	}
	c.Driver = strings.ToLower(c.Driver)

	if c.Driver == DriverSQLite {
		if c.Path == "" {
			c.Path = MemoryPath
		}
		// Each connection to :memory: is its own database.
		if c.isMemory() {
			c.MaxOpenConns = 1
			c.MaxIdleConns = 1
			c.ConnMaxLifetime = "0"
			c.ConnMaxIdleTime = "0"
		}
	}
	if c.Driver != DriverSQLite && c.Host == "" && c.UnixSocket == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		switch c.Driver {
		case DriverPostgres:
			c.Port = 5432
		case DriverMySQL:
			c.Port = 3306
		}
	}

	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 25
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 5
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		c.MaxIdleConns = c.MaxOpenConns
	}
	if c.ConnMaxLifetime == "" {
		c.ConnMaxLifetime = "1h"
	}
	if c.ConnMaxIdleTime == "" {
		c.ConnMaxIdleTime = "5m"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 5
	}
	if c.RetryBackoff == "" {
		c.RetryBackoff = "1s"
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	if c.SlowQueryThreshold == "" {
		c.SlowQueryThreshold = "200ms"
	}
	if c.QueryLogSize <= 0 {
		c.QueryLogSize = 100
	}
}

// Validate checks that required fields are present and parseable.
func (c *Config) Validate() error {
	if !slices.Contains(Drivers, c.Driver) {
		return fmt.Errorf("unsupported driver %q (want one of %s)", c.Driver, strings.Join(Drivers, ", "))
	}
	if c.DSN == "" && c.Driver != DriverSQLite && c.Name == "" {
		return fmt.Errorf("database name is required for driver %s", c.Driver)
	}
	if c.MaxOpenConns <= 0 {
		return fmt.Errorf("max_open_conns must be > 0")
	}
	if c.MaxIdleConns <= 0 {
		return fmt.Errorf("max_idle_conns must be > 0")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("max_idle_conns (%d) must be <= max_open_conns (%d)", c.MaxIdleConns, c.MaxOpenConns)
	}
	for name, value := range map[string]string{
		"conn_max_lifetime":    c.ConnMaxLifetime,
		"conn_max_idle_time":   c.ConnMaxIdleTime,
		"retry_backoff":        c.RetryBackoff,
		"slow_query_threshold": c.SlowQueryThreshold,
	} {
		if value == "" && name == "conn_max_idle_time" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, value, err)
		}
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("max_retries must be > 0")
	}
	return nil
}

func (c *Config) isMemory() bool {
	return c.Path == MemoryPath || strings.Contains(c.Path, "mode=memory") || strings.HasPrefix(c.DSN, MemoryPath)
}

// ConnString returns the driver connection string for the configured
// database: DSN when set, otherwise one built from the connection fields.
func (c *Config) ConnString() string {
	if c.DSN != "" {
		return c.DSN
	}
	return c.buildDSN(c.Name)
}

// ServerDSN returns a connection string to the database server without
// selecting the configured database, for CREATE and DROP DATABASE. For
// sqlite it equals ConnString.
func (c *Config) ServerDSN() string {
	switch c.Driver {
	case DriverPostgres:
		return c.buildDSN("postgres")
	case DriverMySQL:
		return c.buildDSN("")
	}
	return c.ConnString()
}

func (c *Config) buildDSN(name string) string {
	switch c.Driver {
	case DriverPostgres:
		host := c.Host
		if c.UnixSocket != "" {
			host = c.UnixSocket
		}
		parts := []string{"host=" + pgQuote(host), "port=" + strconv.Itoa(c.Port)}
		if c.User != "" {
			parts = append(parts, "user="+pgQuote(c.User))
		}
		if c.Password != "" {
			parts = append(parts, "password="+pgQuote(c.Password))
		}
		if name != "" {
			parts = append(parts, "dbname="+pgQuote(name))
		}
		params := c.params(map[string]string{"sslmode": "disable"})
		for _, k := range slices.Sorted(maps.Keys(params)) {
			parts = append(parts, k+"="+pgQuote(params[k]))
		}
		return strings.Join(parts, " ")

	case DriverMySQL:
		addr := fmt.Sprintf("tcp(%s:%d)", c.Host, c.Port)
		if c.UnixSocket != "" {
			addr = fmt.Sprintf("unix(%s)", c.UnixSocket)
		}
		creds := c.User
		if c.Password != "" {
			creds += ":" + c.Password
		}
		params := c.params(map[string]string{"parseTime": "true", "charset": "utf8mb4"})
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		return fmt.Sprintf("%s@%s/%s?%s", creds, addr, name, q.Encode())
	}

	if len(c.Params) == 0 {
		return c.Path
	}
	q := url.Values{}
	for k, v := range c.Params {
		q.Set(k, v)
	}
	sep := "?"
	if strings.Contains(c.Path, "?") {
		sep = "&"
	}
	return c.Path + sep + q.Encode()
}

func (c *Config) params(defaults map[string]string) map[string]string {
	out := maps.Clone(defaults)
	maps.Copy(out, c.Params)
	return out
}

var pgEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// pgQuote renders v as a libpq keyword/value setting, single-quoted when it
// is empty or contains a space, a quote or a backslash.
func pgQuote(v string) string {
	if v != "" && !strings.ContainsAny(v, " \t\n'\\") {
		return v
	}
	return "'" + pgEscaper.Replace(v) + "'"
}
