// Package csv reads delimited text files into table.RawTable values.
//
// The first record is the header. Every field is kept as text; blank fields
// are left for the inferrer and loader to treat as NULL. A UTF-8 byte order
// mark on the first header cell is dropped.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"tosql/internal/datasource/file"
	"tosql/internal/table"
)

const utf8BOM = "\uFEFF"

// Options controls how a delimited file is read.
type Options struct {
	// Comma is the field delimiter. Zero picks one from the file extension.
	Comma rune
	// Encoding names the source character set; empty means UTF-8.
	Encoding string
	// LazyQuotes tolerates bare quotes inside unquoted fields.
	LazyQuotes bool
}

// delimiter returns the delimiter implied by path's extension: tab for
// .tsv and .tab, ';' for .ssv, '|' for .psv, otherwise ','.
func delimiter(path string) rune {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".tab":
		return '\t'
	case ".ssv":
		return ';'
	case ".psv":
		return '|'
	default:
		return ','
	}
}

// ReadFile opens path and reads it as one table. The table is named after
// the file's base name without extension; sanitizing happens in ddl.
func ReadFile(ctx context.Context, path string, opt Options) (table.RawTable, error) {
	rc, err := file.NewLocal(path).Open(ctx)
	if err != nil {
		return table.RawTable{}, err
	}
	defer rc.Close()

	if opt.Comma == 0 {
		opt.Comma = delimiter(path)
	}
	base := filepath.Base(path)
	t, err := Read(ctx, strings.TrimSuffix(base, filepath.Ext(base)), rc, opt)
	if err != nil {
		return table.RawTable{}, fmt.Errorf("read %s: %w", path, err)
	}
	slog.Debug("read delimited file", "path", path, "table", t.Name, "columns", t.Width(), "rows", len(t.Records()))
	return t, nil
}

// Read parses r as delimited text into a table called name. Records shorter
// than the header are padded with NULLs; longer ones are an error.
func Read(ctx context.Context, name string, r io.Reader, opt Options) (table.RawTable, error) {
	src, err := decode(r, opt.Encoding)
	if err != nil {
		return table.RawTable{}, err
	}

	cr := csv.NewReader(src)
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	cr.LazyQuotes = opt.LazyQuotes
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return table.RawTable{}, &table.EmptySourceError{Name: name}
	}
	if err != nil {
		return table.RawTable{}, fmt.Errorf("read header: %w", err)
	}
	header = StripHeaderBOM(header)

	var records [][]string
	for {
		if err := ctx.Err(); err != nil {
			return table.RawTable{}, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return table.RawTable{}, fmt.Errorf("parse: %w", err)
		}
		records = append(records, rec)
	}
	return table.New(name, header, records)
}

// StripHeaderBOM removes a UTF-8 BOM from the first header cell if present.
func StripHeaderBOM(headers []string) []string {
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	}
	return headers
}
