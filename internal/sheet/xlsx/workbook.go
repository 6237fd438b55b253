// Package xlsx loads Office Open XML workbooks into sheet.Sheet values.
//
// Each worksheet becomes a declared range plus a sparse cell map. Cells whose
// formatted text is empty are treated as absent, which is how the decoder
// tells "no cell" from "cell" when the workbook stores blank placeholders.
package xlsx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"tosql/internal/sheet"
)

// ReadFile opens the workbook at path and returns its worksheets in workbook
// order.
func ReadFile(path string) ([]sheet.Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open %s: %w", path, err)
	}
	defer f.Close()

	return ReadWorkbook(f)
}

// ReadWorkbook converts every worksheet of an already-open workbook.
func ReadWorkbook(f *excelize.File) ([]sheet.Sheet, error) {
	names := f.GetSheetList()
	out := make([]sheet.Sheet, 0, len(names))
	for _, name := range names {
		s, err := readSheet(f, name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func readSheet(f *excelize.File, name string) (sheet.Sheet, error) {
	text, err := f.GetRows(name)
	if err != nil {
		return sheet.Sheet{}, fmt.Errorf("xlsx: sheet %q: rows: %w", name, err)
	}
	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return sheet.Sheet{}, fmt.Errorf("xlsx: sheet %q: raw rows: %w", name, err)
	}

	cells := make(map[string]*sheet.Cell)
	used := sheet.CellRange{}
	for r, row := range text {
		for c, formatted := range row {
			rawValue := cellAt(raw, r, c)
			if formatted == "" && rawValue == "" {
				continue
			}
			addr := sheet.CellAddress{Row: r, Column: c}.String()
			typ, err := f.GetCellType(name, addr)
			if err != nil {
				return sheet.Sheet{}, fmt.Errorf("xlsx: sheet %q: cell %s: %w", name, addr, err)
			}
			cell, err := toCell(typ, rawValue, formatted)
			if err != nil {
				return sheet.Sheet{}, fmt.Errorf("xlsx: sheet %q: cell %s: %w", name, addr, err)
			}
			cells[addr] = cell
			if r > used.End.Row {
				used.End.Row = r
			}
			if c > used.End.Column {
				used.End.Column = c
			}
		}
	}

	dim, err := f.GetSheetDimension(name)
	if err != nil {
		return sheet.Sheet{}, fmt.Errorf("xlsx: sheet %q: dimension: %w", name, err)
	}

	return sheet.Sheet{
		Name:  name,
		Ref:   declaredRef(dim, used, len(cells) > 0),
		Cells: cells,
	}, nil
}

// declaredRef prefers the workbook's own dimension tag and widens it when the
// tag is missing, stale, or smaller than the cells actually present.
func declaredRef(dim string, used sheet.CellRange, hasCells bool) string {
	rng, err := sheet.DecodeRange(strings.TrimSpace(dim))
	if err != nil {
		if !hasCells {
			return "A1"
		}
		return used.String()
	}
	if !hasCells {
		return rng.String()
	}
	if used.End.Row > rng.End.Row {
		rng.End.Row = used.End.Row
	}
	if used.End.Column > rng.End.Column {
		rng.End.Column = used.End.Column
	}
	return rng.String()
}

func cellAt(rows [][]string, r, c int) string {
	if r >= len(rows) || c >= len(rows[r]) {
		return ""
	}
	return rows[r][c]
}

// toCell maps an excelize cell type onto the four sheet cell kinds.
//
// OOXML cells without a type attribute hold numbers, so CellTypeUnset is read
// as numeric whenever the raw value parses as one. Dates stored in ISO form
// ("d") and formula string results ("str") are strings.
func toCell(typ excelize.CellType, raw, text string) (*sheet.Cell, error) {
	switch typ {
	case excelize.CellTypeBool:
		b, err := parseBool(raw)
		if err != nil {
			return nil, err
		}
		return &sheet.Cell{Type: sheet.CellBool, Value: b, Text: text}, nil

	case excelize.CellTypeError:
		return &sheet.Cell{Type: sheet.CellError, Value: raw, Text: text}, nil

	case excelize.CellTypeNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("numeric cell with raw value %q: %w", raw, err)
		}
		return &sheet.Cell{Type: sheet.CellNumber, Value: n, Text: text}, nil

	case excelize.CellTypeUnset:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return &sheet.Cell{Type: sheet.CellNumber, Value: n, Text: text}, nil
		}
		return &sheet.Cell{Type: sheet.CellString, Value: raw, Text: text}, nil

	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeDate:
		return &sheet.Cell{Type: sheet.CellString, Value: raw, Text: text}, nil

	default:
		return nil, fmt.Errorf("unsupported excelize cell type %d", typ)
	}
}

func parseBool(raw string) (bool, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "1", "TRUE":
		return true, nil
	case "0", "FALSE":
		return false, nil
	default:
		return false, fmt.Errorf("boolean cell with raw value %q", raw)
	}
}
