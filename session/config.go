package session

import (
	"fmt"

	"github.com/kbukum/dbunit/config"
	"github.com/kbukum/dbunit/database"
	"github.com/kbukum/dbunit/logger"
	"github.com/kbukum/dbunit/validation"
)

// Default fixture tokens.
const (
	DefaultNullToken = "##NULL##"
	DefaultNowToken  = "##NOW##"
	DefaultNowFormat = "2006-01-02 15:04:05"
)

// ConfigName is the base name of the config and env files LoadConfig reads.
const ConfigName = "dbunit"

// FixturesConfig controls how fixture files are resolved and which tokens
// default builders replace.
type FixturesConfig struct {
	// Dir is prepended to relative fixture paths.
	Dir string `mapstructure:"dir"`
	// NullToken is replaced by a database NULL.
	NullToken string `mapstructure:"null_token" validate:"required"`
	// NowToken is replaced by the session clock formatted with NowFormat.
	NowToken  string `mapstructure:"now_token" validate:"required"`
	NowFormat string `mapstructure:"now_format" validate:"required"`
}

// Config is the configuration of a test session.
type Config struct {
	Database database.Config `mapstructure:"database"`
	Logging  logger.Config   `mapstructure:"logging"`
	Fixtures FixturesConfig  `mapstructure:"fixtures"`

	// KeepTables are never purged, in addition to the migration table.
	KeepTables []string `mapstructure:"keep_tables" validate:"dive,required"`

	// SkipInit leaves an existing database and its tables in place on Open.
	SkipInit bool `mapstructure:"skip_init"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	c.Database.ApplyDefaults()
	c.Logging.ApplyDefaults()
	if c.Fixtures.NullToken == "" {
		c.Fixtures.NullToken = DefaultNullToken
	}
	if c.Fixtures.NowToken == "" {
		c.Fixtures.NowToken = DefaultNowToken
	}
	if c.Fixtures.NowFormat == "" {
		c.Fixtures.NowFormat = DefaultNowFormat
	}
}

// Validate checks struct tags first and then each section's own rules.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.Fixtures.NullToken == c.Fixtures.NowToken {
		return fmt.Errorf("fixtures: null_token and now_token must differ (both %q)", c.Fixtures.NullToken)
	}
	return nil
}

// LoadConfig reads dbunit.yml and .env files and DBUNIT_* variables, with
// DB_* variables also setting database fields (DB_HOST, DB_NAME, ...),
// then applies defaults and validates the result.
func LoadConfig(opts ...config.LoaderOption) (Config, error) {
	var cfg Config
	opts = append([]config.LoaderOption{config.WithEnvAlias("DB", "database")}, opts...)
	if err := config.LoadConfig(ConfigName, &cfg, opts...); err != nil {
		return Config{}, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
