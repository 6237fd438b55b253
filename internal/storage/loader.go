package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrRowRejected matches any *RowError.
var ErrRowRejected = errors.New("row rejected by database")

// RowError attributes a failed insert to one data row (1-based, header
// excluded). Rows before it have been inserted.
type RowError struct {
	Table string
	Row   int
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("table %s: insert row %d: %v", e.Table, e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

func (e *RowError) Is(target error) bool { return target == ErrRowRejected }

// CopyFn inserts rows (aligned to columns) and returns the count inserted. It
// must be atomic per call; the loader relies on that to replay a failed batch.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadStats summarizes one LoadBatches run.
type LoadStats struct {
	Rows    int64
	Batches int64
}

// LoadBatches drains rows from in, groups them into batches of batchSize and
// calls copyFn per batch. It returns the totals and the first error.
//
// When a batch fails, it is replayed one row at a time so the failure can be
// pinned to a row: the result is a *RowError whose Row counts from the first
// row received. Rows ahead of the bad one in that batch are inserted by the
// replay, so the table ends up as serial insertion would have left it.
//
// Cancellation returns ctx.Err() without replaying. Progress is logged per
// flushed batch at debug level.
func LoadBatches(
	ctx context.Context,
	table string,
	columns []string,
	in <-chan []any,
	batchSize int,
	copyFn CopyFn,
) (LoadStats, error) {
	if batchSize <= 0 {
		return LoadStats{}, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return LoadStats{}, fmt.Errorf("copyFn must not be nil")
	}

	var (
		stats       LoadStats
		offset      int // rows handed to copyFn before the current batch
		batch       = make([][]any, 0, batchSize)
		start       = time.Now()
		lastFlushTS = start
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, batch)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Debug("batch failed, replaying rows", "table", table, "batch_rows", len(batch), "err", err)
			n, err = replay(ctx, table, columns, batch, offset, copyFn)
		}
		stats.Rows += n
		offset += len(batch)
		batch = batch[:0]
		if err != nil {
			return err
		}

		stats.Batches++
		now := time.Now()
		since := now.Sub(lastFlushTS)
		rps := float64(0)
		if since > 0 {
			rps = float64(n) / since.Seconds()
		}
		slog.Debug("batch flushed",
			"table", table,
			"batch", stats.Batches,
			"rps", int64(rps),
			"inserted", n,
			"total_inserted", stats.Rows,
			"elapsed", now.Sub(start).Truncate(time.Millisecond),
		)
		lastFlushTS = now
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()

		case row, ok := <-in:
			if !ok {
				if err := flush(); err != nil {
					return stats, err
				}
				return stats, nil
			}
			batch = append(batch, row)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return stats, err
				}
			}
		}
	}
}

func replay(ctx context.Context, table string, columns []string, batch [][]any, offset int, copyFn CopyFn) (int64, error) {
	var inserted int64
	for i, row := range batch {
		n, err := copyFn(ctx, columns, [][]any{row})
		inserted += n
		if err != nil {
			if ctx.Err() != nil {
				return inserted, ctx.Err()
			}
			return inserted, &RowError{Table: table, Row: offset + i + 1, Err: err}
		}
	}
	return inserted, nil
}

// Load is LoadBatches bound to repo.CopyFrom for table.
func Load(ctx context.Context, repo Repository, table string, columns []string, in <-chan []any, batchSize int) (LoadStats, error) {
	return LoadBatches(ctx, table, columns, in, batchSize,
		func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
			return repo.CopyFrom(ctx, table, columns, rows)
		})
}
