// Package boarderr collects the sentinel errors the board protocol can
// surface, in a leaf package so callers (httpapi, admin) and the board
// package itself can both depend on them without an import cycle.
package boarderr

import (
	"errors"
	"fmt"
)

// Sentinel errors a flip/map/watch call can return. Callers should use
// errors.Is against these, since InvalidPosition and ParseError carry
// extra context via wrapping.
var (
	ErrCardRemoved       = errors.New("card has been removed")
	ErrControlledByOther = errors.New("card is controlled by another player")
	ErrTimeout           = errors.New("timed out waiting for card")
	ErrInvalidPosition   = errors.New("position out of bounds")
	ErrParse             = errors.New("board file malformed")
)

// PositionError wraps ErrInvalidPosition with the offending coordinates.
type PositionError struct {
	Row, Col   int
	Rows, Cols int
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("position (%d,%d) out of bounds for %dx%d board", e.Row, e.Col, e.Rows, e.Cols)
}

func (e *PositionError) Unwrap() error { return ErrInvalidPosition }

// ParseErrorAt wraps ErrParse with the line/reason that failed to parse.
type ParseErrorAt struct {
	Reason string
}

func (e *ParseErrorAt) Error() string { return "board file: " + e.Reason }

func (e *ParseErrorAt) Unwrap() error { return ErrParse }
