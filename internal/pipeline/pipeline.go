// Package pipeline runs a tosql job end to end: read every input, infer a
// table definition per worksheet or delimited file, then either describe the
// tables or create and fill them in the target database.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"tosql/internal/config"
	"tosql/internal/ddl"
	"tosql/internal/metrics"
	"tosql/internal/parser/csv"
	"tosql/internal/sheet"
	"tosql/internal/sheet/xlsx"
	"tosql/internal/storage"
	"tosql/internal/table"
	"tosql/internal/transformer"
)

// Source is one table extracted from an input, with its inferred definition.
type Source struct {
	Path  string
	Table table.RawTable
	Def   ddl.TableDef
}

// Rows is the number of data rows (header excluded).
func (s Source) Rows() int { return len(s.Table.Records()) }

// Result summarizes how one table was loaded.
type Result struct {
	Path    string
	Table   string
	Rows    int64
	Batches int64
}

// Runner carries the resolved configuration of one run.
type Runner struct {
	Config config.Config
	// RunID tags log lines and pushed metrics.
	RunID string
	// Out receives the describe listing in noop mode.
	Out io.Writer
}

// Run reads and infers every input, then describes (Config.Noop) or loads
// the tables. The first failure cancels the remaining work.
func (r Runner) Run(ctx context.Context) ([]Result, error) {
	log := slog.With("run_id", r.RunID)

	sources, err := r.Read(ctx)
	if err != nil {
		return nil, err
	}

	if r.Config.Noop {
		log.Debug("describe only", "tables", len(sources))
		return nil, Describe(r.Out, r.Config.Storage.Kind, sources)
	}
	return r.Load(ctx, sources)
}

// Read extracts and infers every input concurrently, bounded by
// Runtime.Workers. Sources come back in input order, worksheets in workbook
// order. Two sources mapping to the same table name is an error.
func (r Runner) Read(ctx context.Context) ([]Source, error) {
	perInput := make([][]Source, len(r.Config.Inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Config.Runtime.Workers, 1))
	for i, path := range r.Config.Inputs {
		i, path := i, path
		g.Go(func() error {
			done := metrics.Step(r.Config.Job, "read")
			tables, err := r.readInput(gctx, path)
			done(err)
			if err != nil {
				return err
			}

			done = metrics.Step(r.Config.Job, "infer")
			srcs := make([]Source, 0, len(tables))
			for _, t := range tables {
				def, err := ddl.FromRawTable(t, ddl.Options{FoldAccents: r.Config.Schema.FoldAccents})
				if err != nil {
					done(err)
					return fmt.Errorf("%s: %w", path, err)
				}
				metrics.RecordRows(r.Config.Job, def.FQN, metrics.RowsRead, int64(len(t.Records())))
				srcs = append(srcs, Source{Path: path, Table: t, Def: def})
			}
			done(nil)
			perInput[i] = srcs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var (
		all  []Source
		defs []ddl.TableDef
		raw  []string
	)
	for _, srcs := range perInput {
		for _, s := range srcs {
			all = append(all, s)
			defs = append(defs, s.Def)
			raw = append(raw, s.Path+":"+s.Table.Name)
		}
	}
	if err := ddl.CheckTableNames(defs, raw); err != nil {
		return nil, err
	}
	return all, nil
}

func (r Runner) readInput(ctx context.Context, path string) ([]table.RawTable, error) {
	log := slog.With("run_id", r.RunID, "source", path)

	if config.IsSpreadsheet(path, r.Config.Force) {
		sheets, err := xlsx.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return workbookTables(log, path, sheets)
	}

	comma, err := r.Config.Parser.CommaRune()
	if err != nil {
		return nil, err
	}
	t, err := csv.ReadFile(ctx, path, csv.Options{
		Comma:      comma,
		Encoding:   r.Config.Parser.Encoding,
		LazyQuotes: r.Config.Parser.LazyQuotes,
	})
	if err != nil {
		return nil, err
	}
	log.Debug("read delimited source", "table", t.Name, "rows", len(t.Records()))
	return []table.RawTable{t}, nil
}

// workbookTables extracts one table per worksheet. Empty worksheets are
// skipped with a warning; a workbook with nothing but empty worksheets is an
// *table.EmptySourceError.
func workbookTables(log *slog.Logger, path string, sheets []sheet.Sheet) ([]table.RawTable, error) {
	out := make([]table.RawTable, 0, len(sheets))
	for _, s := range sheets {
		grid, err := sheet.ReadTable(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		t, err := table.FromGrid(s.Name, grid)
		if errors.Is(err, table.ErrEmptySource) {
			log.Warn("skipping empty worksheet", "sheet", s.Name)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		log.Debug("read worksheet", "sheet", s.Name, "range", s.Ref, "rows", len(t.Records()))
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, &table.EmptySourceError{Name: path}
	}
	return out, nil
}

// Load provisions the database when configured, connects, then creates and
// fills every table. Tables load concurrently; rows within a table are
// inserted in source order.
func (r Runner) Load(ctx context.Context, sources []Source) ([]Result, error) {
	cfg := r.Config
	log := slog.With("run_id", r.RunID)

	scfg := storage.Config{Kind: cfg.Storage.Kind, DSN: cfg.Storage.DSN, Database: cfg.Database}
	if cfg.Storage.CreateDatabase {
		done := metrics.Step(cfg.Job, "provision")
		var err error
		scfg, err = storage.Provision(ctx, scfg)
		done(err)
		if err != nil {
			return nil, fmt.Errorf("create database %s: %w", cfg.Database, err)
		}
		log.Debug("database ready", "kind", scfg.Kind, "database", scfg.Database)
	}

	repo, err := storage.Open(ctx, scfg, cfg.Storage.Retry.MaxElapsed)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", scfg.Kind, err)
	}
	defer repo.Close()

	results := make([]Result, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Runtime.Workers, 1))
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			res, err := r.loadTable(gctx, repo, src)
			if err != nil {
				return fmt.Errorf("%s: table %s: %w", src.Path, src.Def.FQN, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r Runner) loadTable(ctx context.Context, repo storage.Repository, src Source) (Result, error) {
	job, kind, def := r.Config.Job, r.Config.Storage.Kind, src.Def
	log := slog.With("run_id", r.RunID, "source", src.Path, "table", def.FQN)

	log.Info("creating table", "columns", len(def.Columns))
	done := metrics.Step(job, "create")
	err := storage.EnsureTable(ctx, kind, repo, def)
	done(err)
	if err != nil {
		return Result{}, err
	}

	plan, err := transformer.Compile(def.ColumnNames(), def.Types())
	if err != nil {
		return Result{}, err
	}

	batchSize := r.Config.Storage.BatchSize
	rows := make(chan []any, batchSize)
	start := time.Now()
	log.Info("inserting rows", "rows", src.Rows(), "batch_size", batchSize)

	var stats storage.LoadStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return transformer.Stream(gctx, plan, src.Table.Records(), rows)
	})
	g.Go(func() error {
		var err error
		stats, err = storage.Load(gctx, repo, def.FQN, def.ColumnNames(), rows, batchSize)
		return err
	})
	err = g.Wait()
	metrics.RecordStep(job, "insert", err, time.Since(start))
	metrics.RecordRows(job, def.FQN, metrics.RowsInserted, stats.Rows)
	metrics.RecordBatches(job, def.FQN, stats.Batches)
	if err != nil {
		var loadErr *storage.RowError
		var coerceErr *transformer.RowError
		if errors.As(err, &loadErr) || errors.As(err, &coerceErr) {
			metrics.RecordRows(job, def.FQN, metrics.RowsRejected, 1)
		}
		return Result{}, err
	}

	log.Info("summary", "rows", stats.Rows, "batches", stats.Batches, "elapsed", time.Since(start).Truncate(time.Millisecond))
	return Result{Path: src.Path, Table: def.FQN, Rows: stats.Rows, Batches: stats.Batches}, nil
}
