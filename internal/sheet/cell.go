package sheet

import "fmt"

// CellType tags the kind of value a raw cell carries.
type CellType byte

// Known cell types. The byte values mirror the one-letter tags used by
// common workbook readers.
const (
	CellBool   CellType = 'b'
	CellError  CellType = 'e'
	CellNumber CellType = 'n'
	CellString CellType = 's'
)

// String returns a readable name for t.
func (t CellType) String() string {
	switch t {
	case CellBool:
		return "boolean"
	case CellError:
		return "error"
	case CellNumber:
		return "numeric"
	case CellString:
		return "string"
	default:
		return fmt.Sprintf("CellType(%q)", byte(t))
	}
}

// Cell is one raw cell record.
//
// Value holds the stored value: bool for CellBool, float64 for CellNumber,
// string for CellString, and the numeric error code for CellError. Text is
// the formatted display text, empty when the reader did not provide one.
type Cell struct {
	Type  CellType
	Value any
	Text  string
}

// FormatCell converts a raw cell to its canonical value.
//
//   - nil cell        -> nil
//   - boolean         -> the bool value
//   - error           -> the display text (e.g. "#DIV/0!")
//   - numeric         -> the raw float64, never the display text
//   - string          -> the display text when present, else the raw string
//
// The returned value is therefore one of nil, bool, float64 or string. A cell
// with an unknown type tag, or whose Value does not match its tag, yields a
// *UnrecognizedCellTypeError.
func FormatCell(addr string, cell *Cell) (any, error) {
	if cell == nil {
		return nil, nil
	}
	switch cell.Type {
	case CellBool:
		b, ok := cell.Value.(bool)
		if !ok {
			return nil, &UnrecognizedCellTypeError{Address: addr, Type: cell.Type, Value: cell.Value}
		}
		return b, nil
	case CellError:
		return cell.Text, nil
	case CellNumber:
		switch v := cell.Value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		default:
			return nil, &UnrecognizedCellTypeError{Address: addr, Type: cell.Type, Value: cell.Value}
		}
	case CellString:
		if cell.Text != "" {
			return cell.Text, nil
		}
		s, ok := cell.Value.(string)
		if !ok && cell.Value != nil {
			return nil, &UnrecognizedCellTypeError{Address: addr, Type: cell.Type, Value: cell.Value}
		}
		return s, nil
	default:
		return nil, &UnrecognizedCellTypeError{Address: addr, Type: cell.Type, Value: cell.Value}
	}
}
