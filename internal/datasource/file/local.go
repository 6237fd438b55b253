// Package file opens local input files and reads input lists.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Local is a filesystem input bound to one path.
type Local struct{ path string }

// NewLocal returns a Local for path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the bound path.
func (l *Local) Path() string { return l.path }

// Open returns the file for reading. A canceled ctx short-circuits before
// the filesystem is touched. Errors keep os.ErrNotExist and friends
// reachable through errors.Is.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}

// Check reports whether the path names a readable regular file.
func (l *Local) Check() error {
	fi, err := os.Stat(l.path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", l.path, err)
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", l.path)
	}
	return nil
}
