package grades

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSchema matches *SchemaError.
	ErrSchema = errors.New("missing required columns")
	// ErrType matches *TypeError.
	ErrType = errors.New("non-numeric score")
	// ErrRecord matches *RecordError.
	ErrRecord = errors.New("invalid record")
	// ErrRange matches *RangeError.
	ErrRange = errors.New("total marks out of range")
)

// SchemaError lists required columns absent after normalization.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("Missing required columns: %s", strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// TypeError reports a score cell that is not numeric.
type TypeError struct {
	Row    int
	Column string
	Value  string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("row %d: column %s: %q is not numeric", e.Row, e.Column, e.Value)
}

func (e *TypeError) Is(target error) bool { return target == ErrType }

// RecordError reports a required value missing from a row.
type RecordError struct {
	Row    int
	Column string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("row %d: column %s is empty", e.Row, e.Column)
}

func (e *RecordError) Is(target error) bool { return target == ErrRecord }

// RangeError reports a total outside [0,100] under RangeReject.
type RangeError struct {
	Row   int
	Total float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("row %d: Total_Marks %g outside 0-100", e.Row, e.Total)
}

func (e *RangeError) Is(target error) bool { return target == ErrRange }
