package database

import (
	"strings"
	"testing"
)

// TestConfig_ApplyDefaults tests defaults for an empty config
func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{Driver: DriverPostgres}
	cfg.ApplyDefaults()

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"Host", cfg.Host, "localhost"},
		{"Port", cfg.Port, 5432},
		{"MaxOpenConns", cfg.MaxOpenConns, 25},
		{"MaxIdleConns", cfg.MaxIdleConns, 5},
		{"ConnMaxLifetime", cfg.ConnMaxLifetime, "1h"},
		{"ConnMaxIdleTime", cfg.ConnMaxIdleTime, "5m"},
		{"MaxRetries", cfg.MaxRetries, 5},
		{"RetryBackoff", cfg.RetryBackoff, "1s"},
		{"LogLevel", cfg.LogLevel, "warn"},
		{"SlowQueryThreshold", cfg.SlowQueryThreshold, "200ms"},
		{"QueryLogSize", cfg.QueryLogSize, 100},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

// TestConfig_ApplyDefaults_SQLiteMemory tests that in-memory sqlite is pinned to one connection
func TestConfig_ApplyDefaults_SQLiteMemory(t *testing.T) {
	cfg := Config{MaxOpenConns: 10}
	cfg.ApplyDefaults()

	if cfg.Driver != DriverSQLite || cfg.Path != MemoryPath {
		t.Errorf("Driver/Path = %s/%s, want sqlite/:memory:", cfg.Driver, cfg.Path)
	}
	if cfg.MaxOpenConns != 1 || cfg.MaxIdleConns != 1 {
		t.Errorf("pool = %d/%d, want 1/1", cfg.MaxOpenConns, cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime != "0" {
		t.Errorf("ConnMaxLifetime = %q, want 0", cfg.ConnMaxLifetime)
	}
	if cfg.Host != "" {
		t.Errorf("Host = %q, want empty for sqlite", cfg.Host)
	}
}

// TestConfig_ApplyDefaults_PreservesExistingValues tests that non-zero values are preserved
func TestConfig_ApplyDefaults_PreservesExistingValues(t *testing.T) {
	cfg := Config{
		Driver:             "MySQL",
		Port:               3307,
		MaxOpenConns:       50,
		MaxIdleConns:       10,
		ConnMaxLifetime:    "2h",
		MaxRetries:         10,
		SlowQueryThreshold: "500ms",
		LogLevel:           "info",
	}
	cfg.ApplyDefaults()

	if cfg.Driver != DriverMySQL {
		t.Errorf("Driver = %q, want mysql", cfg.Driver)
	}
	if cfg.Port != 3307 || cfg.MaxOpenConns != 50 || cfg.MaxIdleConns != 10 {
		t.Errorf("Port/pool = %d %d/%d", cfg.Port, cfg.MaxOpenConns, cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime != "2h" || cfg.MaxRetries != 10 || cfg.SlowQueryThreshold != "500ms" || cfg.LogLevel != "info" {
		t.Errorf("overwritten values: %+v", cfg)
	}
}

// TestConfig_ApplyDefaults_Idempotent tests that applying defaults twice changes nothing
func TestConfig_ApplyDefaults_Idempotent(t *testing.T) {
	cfg := Config{Driver: DriverPostgres, Name: "app"}
	cfg.ApplyDefaults()
	first := cfg.ConnString()
	cfg.ApplyDefaults()
	if cfg.ConnString() != first {
		t.Errorf("DSN changed: %q -> %q", first, cfg.ConnString())
	}
}

// TestConfig_Validate tests every validation rule
func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		cfg := Config{Driver: DriverPostgres, Name: "app"}
		cfg.ApplyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"sqlite needs no name", func(c *Config) { c.Driver = DriverSQLite; c.Name = "" }, ""},
		{"dsn replaces name", func(c *Config) { c.Name = ""; c.DSN = "postgres://x" }, ""},
		{"empty idle time allowed", func(c *Config) { c.ConnMaxIdleTime = "" }, ""},
		{"unknown driver", func(c *Config) { c.Driver = "oracle" }, "unsupported driver"},
		{"missing name", func(c *Config) { c.Name = "" }, "database name is required"},
		{"max open zero", func(c *Config) { c.MaxOpenConns = 0 }, "max_open_conns"},
		{"max idle zero", func(c *Config) { c.MaxIdleConns = 0 }, "max_idle_conns must be > 0"},
		{"idle above open", func(c *Config) { c.MaxIdleConns = 30 }, "must be <= max_open_conns"},
		{"bad lifetime", func(c *Config) { c.ConnMaxLifetime = "forever" }, "conn_max_lifetime"},
		{"bad idle time", func(c *Config) { c.ConnMaxIdleTime = "soon" }, "conn_max_idle_time"},
		{"bad backoff", func(c *Config) { c.RetryBackoff = "x" }, "retry_backoff"},
		{"bad slow threshold", func(c *Config) { c.SlowQueryThreshold = "fast" }, "slow_query_threshold"},
		{"retries zero", func(c *Config) { c.MaxRetries = 0 }, "max_retries"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

// TestConfig_DSN tests generated connection strings per driver
func TestConfig_DSN(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		wantDSN    string
		wantServer string
	}{
		{
			name:       "sqlite memory",
			cfg:        Config{},
			wantDSN:    ":memory:",
			wantServer: ":memory:",
		},
		{
			name:       "sqlite file with params",
			cfg:        Config{Path: "/tmp/t.db", Params: map[string]string{"_foreign_keys": "1"}},
			wantDSN:    "/tmp/t.db?_foreign_keys=1",
			wantServer: "/tmp/t.db?_foreign_keys=1",
		},
		{
			name:       "postgres",
			cfg:        Config{Driver: DriverPostgres, User: "u", Password: "p", Name: "app"},
			wantDSN:    "host=localhost port=5432 user=u password=p dbname=app sslmode=disable",
			wantServer: "host=localhost port=5432 user=u password=p dbname=postgres sslmode=disable",
		},
		{
			name:       "postgres socket",
			cfg:        Config{Driver: DriverPostgres, UnixSocket: "/var/run/postgresql", Name: "app", Params: map[string]string{"sslmode": "require"}},
			wantDSN:    "host=/var/run/postgresql port=5432 dbname=app sslmode=require",
			wantServer: "host=/var/run/postgresql port=5432 dbname=postgres sslmode=require",
		},
		{
			name:       "postgres quoted values",
			cfg:        Config{Driver: DriverPostgres, Host: "db", User: "app", Password: `s3cr et'x\y`, Name: "test db"},
			wantDSN:    `host=db port=5432 user=app password='s3cr et\'x\\y' dbname='test db' sslmode=disable`,
			wantServer: `host=db port=5432 user=app password='s3cr et\'x\\y' dbname=postgres sslmode=disable`,
		},
		{
			name:       "mysql",
			cfg:        Config{Driver: DriverMySQL, User: "root", Password: "secret", Name: "app"},
			wantDSN:    "root:secret@tcp(localhost:3306)/app?charset=utf8mb4&parseTime=true",
			wantServer: "root:secret@tcp(localhost:3306)/?charset=utf8mb4&parseTime=true",
		},
		{
			name:       "mysql socket",
			cfg:        Config{Driver: DriverMySQL, User: "root", UnixSocket: "/tmp/mysql.sock", Name: "app"},
			wantDSN:    "root@unix(/tmp/mysql.sock)/app?charset=utf8mb4&parseTime=true",
			wantServer: "root@unix(/tmp/mysql.sock)/?charset=utf8mb4&parseTime=true",
		},
		{
			name:       "explicit dsn",
			cfg:        Config{Driver: DriverPostgres, DSN: "postgres://u@db/app"},
			wantDSN:    "postgres://u@db/app",
			wantServer: "host=localhost port=5432 dbname=postgres sslmode=disable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.ApplyDefaults()
			if got := cfg.ConnString(); got != tt.wantDSN {
				t.Errorf("ConnString() = %q, want %q", got, tt.wantDSN)
			}
			if got := cfg.ServerDSN(); got != tt.wantServer {
				t.Errorf("ServerDSN() = %q, want %q", got, tt.wantServer)
			}
		})
	}
}
