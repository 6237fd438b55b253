package sheet

import (
	"errors"
	"fmt"
)

// ErrMalformedRange and ErrUnrecognizedCellType let callers match the typed
// errors below with errors.Is.
var (
	ErrMalformedRange       = errors.New("malformed cell range")
	ErrUnrecognizedCellType = errors.New("unrecognized cell type")
)

// MalformedRangeError reports an address or range string that does not match
// the COLROW[:COLROW] grammar.
type MalformedRangeError struct {
	Input string
}

func (e *MalformedRangeError) Error() string {
	return fmt.Sprintf("sheet: malformed cell range %q", e.Input)
}

func (e *MalformedRangeError) Is(target error) bool { return target == ErrMalformedRange }

// UnrecognizedCellTypeError reports a cell whose type tag is outside the known
// set, or whose stored value does not agree with its tag.
type UnrecognizedCellTypeError struct {
	Address string
	Type    CellType
	Value   any
}

func (e *UnrecognizedCellTypeError) Error() string {
	return fmt.Sprintf("sheet: cell %s: unrecognized cell type %s (value %T)", e.Address, e.Type, e.Value)
}

func (e *UnrecognizedCellTypeError) Is(target error) bool { return target == ErrUnrecognizedCellType }
