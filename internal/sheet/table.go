package sheet

import "fmt"

// Sheet is one worksheet: a declared range plus a sparse cell map keyed by
// encoded address ("A1", "B7", ...). The map is only read, never mutated.
type Sheet struct {
	Name  string
	Ref   string
	Cells map[string]*Cell
}

// ReadTable materializes s into a dense grid.
//
// Rows run from Range.Start.Row to Range.End.Row (outer loop) and columns from
// Range.Start.Column to Range.End.Column (inner loop). Every row has exactly
// Range.Columns() entries; addresses missing from the map become nil. The
// first row is the header by convention, but ReadTable does not interpret it.
func ReadTable(s Sheet) ([][]any, error) {
	rng, err := DecodeRange(s.Ref)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", s.Name, err)
	}

	columns := make([]string, rng.Columns())
	for i := range columns {
		columns[i] = EncodeColumn(rng.Start.Column + i)
	}

	grid := make([][]any, 0, rng.Rows())
	for r := rng.Start.Row; r <= rng.End.Row; r++ {
		rowEnc := EncodeRow(r)
		row := make([]any, len(columns))
		for i, colEnc := range columns {
			addr := colEnc + rowEnc
			v, err := FormatCell(addr, s.Cells[addr])
			if err != nil {
				return nil, fmt.Errorf("sheet %q: %w", s.Name, err)
			}
			row[i] = v
		}
		grid = append(grid, row)
	}
	return grid, nil
}
