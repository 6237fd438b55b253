package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

func validRun(t *testing.T) Config {
	t.Helper()
	p := filepath.Join(t.TempDir(), "people.csv")
	if err := os.WriteFile(p, []byte("id\n1\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	cfg := Default()
	cfg.Inputs = []string{p}
	if err := cfg.Resolve(); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	return cfg
}

func TestValidateRunValidMinimal(t *testing.T) {
	t.Parallel()

	if issues := ValidateRun(validRun(t)); len(issues) != 0 {
		t.Fatalf("ValidateRun() = %+v, want no issues", issues)
	}
}

func TestValidateRunIssues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		sev    IssueSeverity
		path   string
		msg    string
	}{
		{name: "no inputs", mutate: func(c *Config) { c.Inputs = nil }, sev: SeverityError, path: "inputs", msg: "at least one"},
		{name: "missing input", mutate: func(c *Config) { c.Inputs = append(c.Inputs, "/nonexistent/x.csv") }, sev: SeverityError, path: "inputs[1]", msg: "stat"},
		{name: "empty job", mutate: func(c *Config) { c.Job = " " }, sev: SeverityError, path: "job", msg: "must not be empty"},
		{name: "unknown kind", mutate: func(c *Config) { c.Storage.Kind = "oracle" }, sev: SeverityError, path: "storage.kind", msg: "oracle"},
		{name: "empty dsn", mutate: func(c *Config) { c.Storage.DSN = "" }, sev: SeverityError, path: "storage.dsn", msg: "must not be empty"},
		{name: "zero batch", mutate: func(c *Config) { c.Storage.BatchSize = 0 }, sev: SeverityError, path: "storage.batch_size", msg: "> 0"},
		{name: "negative retry", mutate: func(c *Config) { c.Storage.Retry.MaxElapsed = -1 }, sev: SeverityWarning, path: "storage.retry.max_elapsed", msg: "once"},
		{name: "bad database", mutate: func(c *Config) { c.Database = "***" }, sev: SeverityError, path: "database", msg: "usable identifier"},
		{name: "bad comma", mutate: func(c *Config) { c.Parser.Comma = ";;" }, sev: SeverityError, path: "parser.comma", msg: "single character"},
		{name: "bad encoding", mutate: func(c *Config) { c.Parser.Encoding = "klingon" }, sev: SeverityError, path: "parser.encoding", msg: "klingon"},
		{name: "zero workers", mutate: func(c *Config) { c.Runtime.Workers = 0 }, sev: SeverityError, path: "runtime.workers", msg: "> 0"},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, sev: SeverityError, path: "log.format", msg: "xml"},
		{name: "pushgateway without url", mutate: func(c *Config) { c.Metrics.Backend = "pushgateway" }, sev: SeverityError, path: "metrics.pushgateway_url", msg: "required"},
		{name: "datadog without addr", mutate: func(c *Config) { c.Metrics.Backend = "datadog" }, sev: SeverityError, path: "metrics.datadog_addr", msg: "required"},
		{name: "unknown metrics", mutate: func(c *Config) { c.Metrics.Backend = "graphite" }, sev: SeverityError, path: "metrics.backend", msg: "graphite"},
		{name: "unknown force", mutate: func(c *Config) { c.Force = "pdf" }, sev: SeverityError, path: "force", msg: "pdf"},
		{name: "comma with only spreadsheets", mutate: func(c *Config) { c.Parser.Comma = ";"; c.Force = "excel" }, sev: SeverityWarning, path: "parser.comma", msg: "ignored"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validRun(t)
			tt.mutate(&cfg)
			issues := ValidateRun(cfg)
			if !hasIssue(issues, tt.sev, tt.path, tt.msg) {
				t.Fatalf("ValidateRun() = %+v, want %s at %s containing %q", issues, tt.sev, tt.path, tt.msg)
			}
		})
	}
}

func TestValidateRunNoopSkipsStorage(t *testing.T) {
	t.Parallel()

	cfg := validRun(t)
	cfg.Noop = true
	cfg.Storage.Kind = "oracle"
	cfg.Storage.DSN = ""
	if issues := ValidateRun(cfg); len(issues) != 0 {
		t.Fatalf("ValidateRun(noop) = %+v, want none", issues)
	}
}

func TestSQLiteNeedsNoDSN(t *testing.T) {
	t.Parallel()

	cfg := validRun(t)
	cfg.Storage.Kind = "sqlite"
	cfg.Storage.DSN = ""
	if issues := ValidateRun(cfg); len(issues) != 0 {
		t.Fatalf("ValidateRun(sqlite) = %+v, want none", issues)
	}
}

func TestErrorsKeepsOnlyErrors(t *testing.T) {
	t.Parallel()

	if err := Errors([]Issue{{Severity: SeverityWarning, Path: "a", Message: "m"}}); err != nil {
		t.Fatalf("Errors(warnings) = %v, want nil", err)
	}
	err := Errors([]Issue{
		{Severity: SeverityError, Path: "storage.kind", Message: "bad"},
		{Severity: SeverityWarning, Path: "x", Message: "meh"},
	})
	if err == nil || !strings.Contains(err.Error(), "error at storage.kind: bad") || strings.Contains(err.Error(), "meh") {
		t.Fatalf("Errors() = %v", err)
	}
}
