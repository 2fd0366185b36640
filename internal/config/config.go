// Package config loads, validates and persists ecotrack settings.
//
// Settings live in $ECOTRACK_HOME/config.yaml (default ~/.ecotrack). Each
// top-level section present in the file replaces the built-in default for
// that section; absent sections keep their defaults. A few environment
// variables override the file at runtime.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/rshade/ecotrack/internal/store"
)

// Environment variables that override the config file.
const (
	EnvHome     = "ECOTRACK_HOME"
	EnvLogLevel = "ECOTRACK_LOG_LEVEL"
	EnvStoreDSN = "ECOTRACK_STORE_DSN"
	EnvUser     = "ECOTRACK_USER"
)

// ConfigFileName is the config document name inside the config directory.
const ConfigFileName = "config.yaml"

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// MaxPrecision bounds output.precision.
const MaxPrecision = 6

// Validation errors.
var (
	ErrUnknownKey        = errors.New("unknown config key")
	ErrInvalidValue      = errors.New("invalid config value")
	ErrInvalidFormat     = errors.New("output format must be 'table' or 'json'")
	ErrPrecisionRange    = errors.New("output precision must be between 0 and 6")
	ErrInvalidLogLevel   = errors.New("invalid log level")
	ErrInvalidLogFormat  = errors.New("log format must be 'console' or 'json'")
	ErrStoreFileRequired = errors.New("store.file is required for the file driver")
	ErrStoreDSNRequired  = errors.New("store.dsn is required for the postgres driver")
	ErrInvalidLocale     = errors.New("invalid locale")
	ErrUserIDRequired    = errors.New("user.id cannot be empty")
)

// Config is the full ecotrack configuration.
type Config struct {
	Output  OutputConfig  `yaml:"output"  json:"output"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Store   StoreConfig   `yaml:"store"   json:"store"`
	Catalog CatalogConfig `yaml:"catalog" json:"catalog"`
	User    UserConfig    `yaml:"user"    json:"user"`
	Locale  string        `yaml:"locale"  json:"locale"`
	Budget  BudgetConfig  `yaml:"budget"  json:"budget"`

	path string
}

// OutputConfig controls CLI rendering.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"`
	Precision     int    `yaml:"precision"      json:"precision"`
}

// StoreConfig selects and configures the activity store.
type StoreConfig struct {
	Driver string `yaml:"driver"          json:"driver"`
	File   string `yaml:"file,omitempty"  json:"file,omitempty"`
	DSN    string `yaml:"dsn,omitempty"   json:"dsn,omitempty"`
	Table  string `yaml:"table,omitempty" json:"table,omitempty"`
}

// CatalogConfig points at an optional replacement emission catalog.
type CatalogConfig struct {
	File string `yaml:"file,omitempty" json:"file,omitempty"`
}

// UserConfig holds the default user.
type UserConfig struct {
	ID string `yaml:"id" json:"id"`
}

// New returns the built-in defaults. The store file and config path are
// placed under the config directory when it can be determined.
func New() *Config {
	cfg := &Config{
		Output:  OutputConfig{DefaultFormat: FormatTable, Precision: 2},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Store:   StoreConfig{Driver: store.DriverFile},
		User:    UserConfig{ID: "default"},
		Locale:  "en",
		Budget:  BudgetConfig{Period: DefaultBudgetPeriod},
	}
	if dir, err := GetConfigDir(); err == nil {
		cfg.Store.File = filepath.Join(dir, "activities.json")
		cfg.path = filepath.Join(dir, ConfigFileName)
	}
	return cfg
}

// Load returns the defaults overlaid with the file at path. A missing file
// yields the defaults; a malformed one is an error.
func Load(path string) (*Config, error) {
	cfg := New()
	if path == "" {
		path = cfg.path
	}
	cfg.path = path

	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err := ShallowMergeYAML(cfg, path); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}
	return cfg, nil
}

// fillDefaults restores defaults for string settings a replaced section left empty.
func (c *Config) fillDefaults() {
	def := New()
	for _, f := range []struct{ dst, src *string }{
		{&c.Output.DefaultFormat, &def.Output.DefaultFormat},
		{&c.Logging.Level, &def.Logging.Level},
		{&c.Logging.Format, &def.Logging.Format},
		{&c.Store.Driver, &def.Store.Driver},
		{&c.User.ID, &def.User.ID},
		{&c.Locale, &def.Locale},
	} {
		if *f.dst == "" {
			*f.dst = *f.src
		}
	}
	if c.Store.Driver == store.DriverFile && c.Store.File == "" {
		c.Store.File = def.Store.File
	}
}

// Path returns the file the config was loaded from and saves to.
func (c *Config) Path() string {
	return c.path
}

// Save writes the config as YAML to its path.
func (c *Config) Save() error {
	if c.path == "" {
		return errors.New("config has no file path")
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// ApplyEnv applies the environment overrides. They are never saved.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvStoreDSN); v != "" {
		c.Store.DSN = v
		if c.Store.Driver == store.DriverFile || c.Store.Driver == "" {
			c.Store.Driver = store.DriverPostgres
		}
	}
	if v := os.Getenv(EnvUser); v != "" {
		c.User.ID = v
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if c.Output.DefaultFormat != FormatTable && c.Output.DefaultFormat != FormatJSON {
		return fmt.Errorf("%w: got %q", ErrInvalidFormat, c.Output.DefaultFormat)
	}
	if c.Output.Precision < 0 || c.Output.Precision > MaxPrecision {
		return fmt.Errorf("%w: got %d", ErrPrecisionRange, c.Output.Precision)
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}

	switch c.Store.Driver {
	case store.DriverMemory:
	case store.DriverFile:
		if c.Store.File == "" {
			return ErrStoreFileRequired
		}
	case store.DriverPostgres:
		if c.Store.DSN == "" {
			return ErrStoreDSNRequired
		}
	default:
		return fmt.Errorf("%w: %q", store.ErrUnknownDriver, c.Store.Driver)
	}

	if strings.TrimSpace(c.User.ID) == "" {
		return ErrUserIDRequired
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidLocale, c.Locale, err)
	}
	return c.Budget.Validate()
}

// key binds a dotted config key to its field.
type key struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) key {
	return key{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func intKey(field func(c *Config) *int) key {
	return key{
		get: func(c *Config) string { return strconv.Itoa(*field(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, v)
			}
			*field(c) = n
			return nil
		},
	}
}

func exitCodeKey() key {
	return key{
		get: func(c *Config) string { return strconv.Itoa(c.Budget.GetExitCode()) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, v)
			}
			c.Budget.ExitCode = &n
			return nil
		},
	}
}

func floatKey(field func(c *Config) *float64) key {
	return key{
		get: func(c *Config) string { return strconv.FormatFloat(*field(c), 'f', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%w: %q is not a number", ErrInvalidValue, v)
			}
			*field(c) = f
			return nil
		},
	}
}

func boolKey(field func(c *Config) *bool) key {
	return key{
		get: func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, v)
			}
			*field(c) = b
			return nil
		},
	}
}

//nolint:gochecknoglobals // Lookup table of settable keys.
var keys = map[string]key{
	"output.default_format":    stringKey(func(c *Config) *string { return &c.Output.DefaultFormat }),
	"output.precision":         intKey(func(c *Config) *int { return &c.Output.Precision }),
	"logging.level":            stringKey(func(c *Config) *string { return &c.Logging.Level }),
	"logging.format":           stringKey(func(c *Config) *string { return &c.Logging.Format }),
	"logging.file":             stringKey(func(c *Config) *string { return &c.Logging.File }),
	"logging.caller":           boolKey(func(c *Config) *bool { return &c.Logging.Caller }),
	"store.driver":             stringKey(func(c *Config) *string { return &c.Store.Driver }),
	"store.file":               stringKey(func(c *Config) *string { return &c.Store.File }),
	"store.dsn":                stringKey(func(c *Config) *string { return &c.Store.DSN }),
	"store.table":              stringKey(func(c *Config) *string { return &c.Store.Table }),
	"catalog.file":             stringKey(func(c *Config) *string { return &c.Catalog.File }),
	"user.id":                  stringKey(func(c *Config) *string { return &c.User.ID }),
	"locale":                   stringKey(func(c *Config) *string { return &c.Locale }),
	"budget.limit_kg":          floatKey(func(c *Config) *float64 { return &c.Budget.LimitKg }),
	"budget.period":            stringKey(func(c *Config) *string { return &c.Budget.Period }),
	"budget.exit_on_threshold": boolKey(func(c *Config) *bool { return &c.Budget.ExitOnThreshold }),
	"budget.exit_code":         exitCodeKey(),
}

// Keys lists every dotted key accepted by Get and Set, sorted.
func Keys() []string {
	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Get returns the value of a dotted key.
func (c *Config) Get(name string) (string, error) {
	k, ok := keys[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, name)
	}
	return k.get(c), nil
}

// Set assigns a dotted key and validates the result. The config is left
// unchanged when the new value is invalid.
func (c *Config) Set(name, value string) error {
	k, ok := keys[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, name)
	}

	next := *c
	next.Budget.Alerts = append([]AlertConfig(nil), c.Budget.Alerts...)
	if err := k.set(&next, value); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return fmt.Errorf("setting %s: %w", name, err)
	}
	*c = next
	return nil
}

// ParseLevel parses a log level name, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
