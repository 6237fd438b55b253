package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. Backends wrap connection errors
// with it when the server has answered definitively (bad credentials, bad
// DSN).
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// Open calls New, retrying with exponential backoff until it succeeds,
// maxElapsed passes, or ctx is done. An unknown kind fails immediately.
// Errors marked with Permanent also stop the retries. maxElapsed <= 0 means
// a single attempt.
func Open(ctx context.Context, cfg Config, maxElapsed time.Duration) (Repository, error) {
	var repo Repository
	op := func() error {
		r, err := New(ctx, cfg)
		if err != nil {
			if errors.Is(err, ErrUnknownKind) || IsPermanent(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		repo = r
		return nil
	}

	if maxElapsed <= 0 {
		if err := op(); err != nil {
			var perm *backoff.PermanentError
			if errors.As(err, &perm) {
				return nil, perm.Err
			}
			return nil, err
		}
		return repo, nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxElapsedTime = maxElapsed

	notify := func(err error, wait time.Duration) {
		slog.Warn("storage connect failed, retrying", "kind", cfg.Kind, "database", cfg.Database, "wait", wait, "err", err)
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify); err != nil {
		return nil, err
	}
	return repo, nil
}
