package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/dbunit/errors"
)

// DefaultEnvPrefix prefixes environment variables read by LoadConfig.
const DefaultEnvPrefix = "DBUNIT"

// FileSystem abstracts file lookups (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem implements FileSystem using actual file operations.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// LoadEnv loads path into the process environment without overriding
// variables that are already set.
func (OSFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver handles finding config and env files.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns explicit paths from opts when set and otherwise
// searches the standard locations for name.
func (r *Resolver) ResolveFiles(name string, opts LoaderConfig) ResolvedFiles {
	files := ResolvedFiles{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	if files.ConfigFile == "" {
		files.ConfigFile = r.first(configCandidates(name))
	}
	if files.EnvFile == "" {
		files.EnvFile = r.first(envCandidates(name))
	}
	return files
}

func (r *Resolver) first(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

var searchRoots = []string{".", "..", filepath.Join("..", "..")}

func configCandidates(name string) []string {
	var out []string
	for _, root := range searchRoots {
		for _, dir := range []string{"", "config", "testdata"} {
			for _, ext := range []string{".yml", ".yaml"} {
				out = append(out, filepath.Join(root, dir, name+ext))
			}
		}
	}
	return out
}

func envCandidates(name string) []string {
	var out []string
	for _, file := range []string{".env." + name, ".env.test", ".env"} {
		for _, root := range searchRoots {
			out = append(out, filepath.Join(root, file))
		}
	}
	return out
}

// LoaderConfig holds dependencies and optional overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct env file path (optional)
	EnvPrefix  string
	// Aliases maps extra env prefixes to the config key they populate.
	Aliases map[string]string
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix replaces DefaultEnvPrefix.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = prefix }
}

// WithEnvAlias makes variables named PREFIX_X populate key.x.
func WithEnvAlias(prefix, key string) LoaderOption {
	return func(lc *LoaderConfig) {
		if lc.Aliases == nil {
			lc.Aliases = make(map[string]string)
		}
		lc.Aliases[prefix] = key
	}
}

// LoadConfig loads configuration for name into cfg. A config file that
// does not exist is skipped; one that cannot be parsed fails with
// INVALID_FORMAT.
func LoadConfig(name string, cfg interface{}, opts ...LoaderOption) error {
	lc := LoaderConfig{EnvPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = OSFileSystem{}
	}

	files := (&Resolver{FileSystem: lc.FileSystem}).ResolveFiles(name, lc)
	v := viper.New()

	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return errors.InvalidFormat(files.ConfigFile, err.Error()).WithCause(err)
		}
	}

	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			return errors.InvalidFormat(files.EnvFile, err.Error()).WithCause(err)
		}
	}

	bindEnv(v, lc.EnvPrefix, "")
	// Sorted so a longer alias prefix applies after (and wins over) a shorter one.
	for _, prefix := range slices.Sorted(maps.Keys(lc.Aliases)) {
		bindEnv(v, prefix, lc.Aliases[prefix])
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for %s: %w", name, err)
	}
	return nil
}

// bindEnv sets every PREFIX_* variable on v under each key it may name,
// nested below key when key is not empty.
func bindEnv(v *viper.Viper, prefix, key string) {
	if prefix == "" {
		return
	}
	marker := strings.ToUpper(prefix) + "_"
	for _, env := range os.Environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, marker) || len(name) == len(marker) {
			continue
		}
		for _, variant := range envKeyVariants(strings.TrimPrefix(name, marker)) {
			if key != "" {
				variant = key + "." + variant
			}
			v.Set(variant, value)
		}
	}
}

// envKeyVariants lists the config keys an env suffix may address, since
// underscores separate both nesting levels and words:
//
//	DATABASE_MAX_OPEN_CONNS -> database_max_open_conns, database.max.open.conns,
//	                           database.max_open_conns, database.max.open_conns, ...
func envKeyVariants(suffix string) []string {
	lower := strings.ToLower(suffix)
	parts := strings.Split(lower, "_")
	if len(parts) == 1 {
		return parts
	}
	variants := []string{lower, strings.Join(parts, ".")}
	for i := 1; i < len(parts); i++ {
		variants = append(variants, strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"))
	}
	slices.Sort(variants)
	return slices.Compact(variants)
}
