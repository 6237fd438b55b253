package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"tosql/internal/datasource/file"
	"tosql/internal/ident"
	"tosql/internal/parser/csv"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks the run.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is reported but the run proceeds.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a single validation finding. Path names the offending key in
// the config tree, e.g. "storage.batch_size" or "inputs[1]".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements error so an Issue can be returned directly.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Known option values.
var (
	StorageKinds   = []string{"postgres", "mssql", "mysql", "sqlite"}
	MetricsKinds   = []string{"none", "pushgateway", "datadog"}
	LogFormats     = []string{"text", "json"}
	ForceKinds     = []string{"", "excel", "sv"}
	SpreadsheetExt = ".xlsx"
)

// ValidateRun lints a resolved Config before anything touches a database.
// It does not mutate cfg.
func ValidateRun(cfg Config) []Issue {
	var issues []Issue
	add := func(sev IssueSeverity, path, format string, args ...any) {
		issues = append(issues, Issue{Severity: sev, Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(cfg.Job) == "" {
		add(SeverityError, "job", "job must not be empty; it labels metrics for this run")
	}

	if len(cfg.Inputs) == 0 {
		add(SeverityError, "inputs", "at least one input file is required")
	}
	spreadsheets := 0
	for i, in := range cfg.Inputs {
		if err := file.NewLocal(in).Check(); err != nil {
			add(SeverityError, fmt.Sprintf("inputs[%d]", i), "%v", err)
		}
		if IsSpreadsheet(in, cfg.Force) {
			spreadsheets++
		}
	}
	if !slices.Contains(ForceKinds, cfg.Force) {
		add(SeverityError, "force", "unknown input kind %q", cfg.Force)
	}

	if _, err := cfg.Parser.CommaRune(); err != nil {
		add(SeverityError, "parser.comma", "%v", err)
	} else if cfg.Parser.Comma != "" && spreadsheets == len(cfg.Inputs) && spreadsheets > 0 {
		add(SeverityWarning, "parser.comma", "ignored: every input is a spreadsheet")
	}
	if err := csv.CheckEncoding(cfg.Parser.Encoding); err != nil {
		add(SeverityError, "parser.encoding", "%v", err)
	}

	if cfg.Runtime.Workers <= 0 {
		add(SeverityError, "runtime.workers", "must be > 0, got %d", cfg.Runtime.Workers)
	}
	if !slices.Contains(LogFormats, cfg.Log.Format) {
		add(SeverityError, "log.format", "unknown format %q (want %s)", cfg.Log.Format, strings.Join(LogFormats, ", "))
	}

	issues = append(issues, validateMetrics(cfg.Metrics)...)

	// Describe mode never opens a connection.
	if !cfg.Noop {
		issues = append(issues, validateStorage(cfg)...)
	}
	return issues
}

func validateStorage(cfg Config) []Issue {
	var issues []Issue
	s := cfg.Storage

	if cfg.Database == "" {
		issues = append(issues, Issue{Severity: SeverityError, Path: "database", Message: "database name is required"})
	} else if _, err := ident.SQLName(cfg.Database); err != nil {
		issues = append(issues, Issue{Severity: SeverityError, Path: "database", Message: fmt.Sprintf("%q is not a usable identifier", cfg.Database)})
	}

	if !slices.Contains(StorageKinds, s.Kind) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q (want %s)", s.Kind, strings.Join(StorageKinds, ", ")),
		})
	}
	if s.Kind != "sqlite" && strings.TrimSpace(s.DSN) == "" {
		issues = append(issues, Issue{Severity: SeverityError, Path: "storage.dsn", Message: "dsn must not be empty"})
	}
	if s.BatchSize <= 0 {
		issues = append(issues, Issue{Severity: SeverityError, Path: "storage.batch_size", Message: fmt.Sprintf("must be > 0, got %d", s.BatchSize)})
	}
	if s.Retry.MaxElapsed < 0 {
		issues = append(issues, Issue{Severity: SeverityWarning, Path: "storage.retry.max_elapsed", Message: "negative; connecting is tried once"})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	switch m.Backend {
	case "none", "":
	case "pushgateway":
		if m.PushgatewayURL == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: "metrics.pushgateway_url", Message: "required for the pushgateway backend"})
		}
	case "datadog":
		if m.DatadogAddr == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: "metrics.datadog_addr", Message: "required for the datadog backend"})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q (want %s)", m.Backend, strings.Join(MetricsKinds, ", ")),
		})
	}
	return issues
}

// IsSpreadsheet reports whether path is read as a workbook: force "excel"
// always, "sv" never, otherwise by the .xlsx extension.
func IsSpreadsheet(path, force string) bool {
	switch force {
	case "excel":
		return true
	case "sv":
		return false
	}
	return strings.EqualFold(filepath.Ext(path), SpreadsheetExt)
}

// Errors returns the error-severity issues joined into one error, or nil.
func Errors(issues []Issue) error {
	var errs []error
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			errs = append(errs, iss)
		}
	}
	return errors.Join(errs...)
}
