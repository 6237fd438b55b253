// Package config defines the run configuration for tosql and how it is
// assembled: defaults, then an optional YAML file, then TOSQL_* environment
// variables. Command-line flags are applied last by the CLI.
//
// Example file:
//
//	job: nightly-import
//	storage:
//	  kind: postgres
//	  dsn: postgres://loader@db:5432/
//	  batch_size: 1000
//	  retry:
//	    max_elapsed: 30s
//	parser:
//	  encoding: windows-1250
//	schema:
//	  fold_accents: true
//	metrics:
//	  backend: pushgateway
//	  pushgateway_url: http://pushgateway:9091
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"tosql/internal/ident"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TOSQL_"

// Config is the full configuration of one run.
type Config struct {
	// Job labels metrics and log lines for this run.
	Job string `yaml:"job"`

	// Database is the target database name. Empty means derived from the
	// first input; see Resolve.
	Database string `yaml:"database"`

	Storage Storage `yaml:"storage"`
	Parser  Parser  `yaml:"parser"`
	Schema  Schema  `yaml:"schema"`
	Runtime Runtime `yaml:"runtime"`
	Metrics Metrics `yaml:"metrics"`
	Log     Log     `yaml:"log"`

	// Inputs are the source files, in command-line order.
	Inputs []string `yaml:"-"`
	// Noop describes tables without connecting to a database.
	Noop bool `yaml:"-"`
	// Force routes every input as one kind: "excel", "sv", or "" for by
	// extension.
	Force string `yaml:"-"`
}

// Storage configures the database backend.
type Storage struct {
	Kind           string `yaml:"kind"`
	DSN            string `yaml:"dsn"`
	BatchSize      int    `yaml:"batch_size"`
	CreateDatabase bool   `yaml:"create_database"`
	Retry          Retry  `yaml:"retry"`
}

// Retry bounds connection retries.
type Retry struct {
	MaxElapsed time.Duration `yaml:"max_elapsed"`
}

// Parser configures delimited-text reading.
type Parser struct {
	// Comma is a single character, or "tab". Empty picks by extension.
	Comma      string `yaml:"comma"`
	Encoding   string `yaml:"encoding"`
	LazyQuotes bool   `yaml:"lazy_quotes"`
}

// Schema configures identifier derivation.
type Schema struct {
	FoldAccents bool `yaml:"fold_accents"`
}

// Runtime controls concurrency.
type Runtime struct {
	// Workers is how many sources are processed at once.
	Workers int `yaml:"workers"`
}

// Metrics selects a metrics backend.
type Metrics struct {
	Backend        string `yaml:"backend"`
	PushgatewayURL string `yaml:"pushgateway_url"`
	DatadogAddr    string `yaml:"datadog_addr"`
}

// Log configures log output.
type Log struct {
	Format  string `yaml:"format"`
	Verbose bool   `yaml:"verbose"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Job: "tosql",
		Storage: Storage{
			Kind:           "postgres",
			DSN:            "postgres://127.0.0.1:5432/",
			BatchSize:      500,
			CreateDatabase: true,
			Retry:          Retry{MaxElapsed: 10 * time.Second},
		},
		Parser:  Parser{Encoding: "utf-8"},
		Runtime: Runtime{Workers: 4},
		Metrics: Metrics{Backend: "none"},
		Log:     Log{Format: "text"},
	}
}

// ErrConfigNotFound is returned by Load when the named file does not exist.
var ErrConfigNotFound = errors.New("config file not found")

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the process environment. A .env file in the working
// directory is loaded first without overriding variables already set.
func Load(path string) (Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return Config{}, err
	}
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := Decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}
	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDotEnv loads path into the environment if it exists.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Decode overlays YAML data onto cfg. Unknown keys are an error.
func Decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

// ApplyEnv overrides cfg from TOSQL_* variables found through lookup.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	var errs []error
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(EnvPrefix + key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(EnvPrefix + key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = d
		}
	}

	str("JOB", &cfg.Job)
	str("DATABASE", &cfg.Database)
	str("STORAGE_KIND", &cfg.Storage.Kind)
	str("STORAGE_DSN", &cfg.Storage.DSN)
	integer("STORAGE_BATCH_SIZE", &cfg.Storage.BatchSize)
	boolean("STORAGE_CREATE_DATABASE", &cfg.Storage.CreateDatabase)
	duration("STORAGE_RETRY_MAX_ELAPSED", &cfg.Storage.Retry.MaxElapsed)
	str("PARSER_COMMA", &cfg.Parser.Comma)
	str("PARSER_ENCODING", &cfg.Parser.Encoding)
	boolean("PARSER_LAZY_QUOTES", &cfg.Parser.LazyQuotes)
	boolean("SCHEMA_FOLD_ACCENTS", &cfg.Schema.FoldAccents)
	integer("RUNTIME_WORKERS", &cfg.Runtime.Workers)
	str("METRICS_BACKEND", &cfg.Metrics.Backend)
	str("METRICS_PUSHGATEWAY_URL", &cfg.Metrics.PushgatewayURL)
	str("METRICS_DATADOG_ADDR", &cfg.Metrics.DatadogAddr)
	str("LOG_FORMAT", &cfg.Log.Format)
	boolean("LOG_VERBOSE", &cfg.Log.Verbose)

	return errors.Join(errs...)
}

// Resolve fills values derived from other fields: an empty Database becomes
// the lower-cased identifier of the first input's base name.
func (c *Config) Resolve() error {
	if c.Database != "" || len(c.Inputs) == 0 {
		return nil
	}
	name, err := ident.SQLName(ident.PathToIdentifier(c.Inputs[0]))
	if err != nil {
		return fmt.Errorf("database name from %s: %w", c.Inputs[0], err)
	}
	c.Database = name
	return nil
}

// CommaRune parses Parser.Comma. Zero means "pick by extension".
func (p Parser) CommaRune() (rune, error) {
	switch s := p.Comma; strings.ToLower(s) {
	case "":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	default:
		r := []rune(s)
		if len(r) != 1 || r[0] == '"' || r[0] == '\r' || r[0] == '\n' {
			return 0, fmt.Errorf("comma must be a single character other than quote or newline, got %q", s)
		}
		return r[0], nil
	}
}
