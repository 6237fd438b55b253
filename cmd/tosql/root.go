package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tosql/internal/config"
	"tosql/internal/datasource/file"
	"tosql/internal/logging"
	"tosql/internal/metrics"
	"tosql/internal/metrics/datadog"
	"tosql/internal/metrics/prompush"
	"tosql/internal/pipeline"

	_ "tosql/internal/storage/all"
)

type options struct {
	configPath     string
	from           string
	verbose        bool
	noop           bool
	excel          bool
	sv             bool
	database       string
	storage        string
	dsn            string
	batchSize      int
	comma          string
	encoding       string
	foldAccents    bool
	workers        int
	metricsBackend string
	pushgatewayURL string
	logFormat      string
}

func newRootCmd() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:   "tosql [flags] FILE...",
		Short: "Load spreadsheets and delimited files into SQL tables",
		Long: `tosql reads .xlsx workbooks (one table per worksheet) and delimited text
files (one table per file), infers a SQL type and nullability for every
column, then creates the database and tables and inserts the rows.

Configuration is taken from defaults, then --config (YAML), then TOSQL_*
environment variables and a .env file, then flags.`,
		Version:       buildVersion(),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, o, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.configPath, "config", "", "YAML config file")
	f.StringVar(&o.from, "from", "", "file listing input paths, one per line")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "print debug output")
	f.BoolVarP(&o.noop, "noop", "n", false, "only print what would be created")
	f.BoolVar(&o.excel, "excel", false, "read every input as an .xlsx workbook")
	f.BoolVar(&o.sv, "sv", false, "read every input as delimited text")
	f.StringVar(&o.database, "database", "", "database name (default: derived from the first input)")
	f.StringVar(&o.storage, "storage", "", "storage kind: postgres, mssql, mysql, sqlite")
	f.StringVar(&o.dsn, "dsn", "", "backend connection string")
	f.IntVar(&o.batchSize, "batch-size", 0, "rows per insert batch")
	f.StringVar(&o.comma, "comma", "", `field delimiter for delimited text ("tab" for \t)`)
	f.StringVar(&o.encoding, "encoding", "", "source encoding of delimited text")
	f.BoolVar(&o.foldAccents, "fold-accents", false, "strip diacritics from table and column names")
	f.IntVar(&o.workers, "workers", 0, "inputs and tables processed at once")
	f.StringVar(&o.metricsBackend, "metrics-backend", "", "metrics backend: none, pushgateway, datadog")
	f.StringVar(&o.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL")
	f.StringVar(&o.logFormat, "log-format", "", "log format: text, json")
	cmd.MarkFlagsMutuallyExclusive("excel", "sv")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func run(cmd *cobra.Command, o options, args []string) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, o, &cfg)

	if err := logging.Setup(cmd.ErrOrStderr(), cfg.Log.Verbose, cfg.Log.Format); err != nil {
		return err
	}

	cfg.Inputs = append(cfg.Inputs, args...)
	if o.from != "" {
		listed, err := file.ReadList(o.from)
		if err != nil {
			return err
		}
		cfg.Inputs = append(cfg.Inputs, listed...)
	}
	if err := cfg.Resolve(); err != nil {
		return err
	}

	issues := config.ValidateRun(cfg)
	for _, iss := range issues {
		if iss.Severity == config.SeverityWarning {
			slog.Warn("config", "path", iss.Path, "msg", iss.Message)
		}
	}
	if err := config.Errors(issues); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	runID := uuid.NewString()
	stopMetrics, err := setupMetrics(cfg, runID)
	if err != nil {
		return err
	}
	defer stopMetrics()

	start := time.Now()
	slog.Debug("starting",
		"run_id", runID,
		"inputs", len(cfg.Inputs),
		"storage", cfg.Storage.Kind,
		"database", cfg.Database,
		"noop", cfg.Noop,
	)

	r := pipeline.Runner{Config: cfg, RunID: runID, Out: cmd.OutOrStdout()}
	results, err := r.Run(cmd.Context())
	if err != nil {
		return err
	}

	var rows int64
	for _, res := range results {
		rows += res.Rows
	}
	slog.Info("DONE", "tables", len(results), "rows", rows, "elapsed", time.Since(start).Truncate(time.Millisecond))
	return nil
}

// applyFlags overrides cfg with every flag set on the command line.
func applyFlags(cmd *cobra.Command, o options, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("verbose") {
		cfg.Log.Verbose = o.verbose
	}
	if f.Changed("log-format") {
		cfg.Log.Format = o.logFormat
	}
	cfg.Noop = o.noop
	switch {
	case o.excel:
		cfg.Force = "excel"
	case o.sv:
		cfg.Force = "sv"
	}
	if f.Changed("database") {
		cfg.Database = o.database
	}
	if f.Changed("storage") {
		cfg.Storage.Kind = o.storage
	}
	if f.Changed("dsn") {
		cfg.Storage.DSN = o.dsn
	}
	if f.Changed("batch-size") {
		cfg.Storage.BatchSize = o.batchSize
	}
	if f.Changed("comma") {
		cfg.Parser.Comma = o.comma
	}
	if f.Changed("encoding") {
		cfg.Parser.Encoding = o.encoding
	}
	if f.Changed("fold-accents") {
		cfg.Schema.FoldAccents = o.foldAccents
	}
	if f.Changed("workers") {
		cfg.Runtime.Workers = o.workers
	}
	if f.Changed("metrics-backend") {
		cfg.Metrics.Backend = o.metricsBackend
	}
	if f.Changed("pushgateway-url") {
		cfg.Metrics.PushgatewayURL = o.pushgatewayURL
	}
}

// setupMetrics installs the configured backend and returns the function
// that flushes it at the end of the run.
func setupMetrics(cfg config.Config, runID string) (func(), error) {
	var (
		b   metrics.Backend
		err error
	)
	switch cfg.Metrics.Backend {
	case "pushgateway":
		b, err = prompush.NewBackend(cfg.Job, cfg.Metrics.PushgatewayURL, runID)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       cfg.Metrics.DatadogAddr,
			GlobalTags: []string{"job:" + cfg.Job, "run_id:" + runID},
		})
	default:
		slog.Debug("metrics disabled", "backend", cfg.Metrics.Backend)
		return func() {}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("metrics %s: %w", cfg.Metrics.Backend, err)
	}

	metrics.SetBackend(b)
	slog.Debug("metrics enabled", "backend", cfg.Metrics.Backend, "job", cfg.Job)
	return func() {
		if err := metrics.Flush(); err != nil {
			slog.Warn("metrics flush failed", "backend", cfg.Metrics.Backend, "err", err)
		}
		metrics.SetBackend(nil)
	}, nil
}
