// Package grades turns raw tabular rows into typed, validated and derived
// student records.
package grades

import (
	"fmt"
	"strings"
)

// Column names after normalization.
const (
	ColCourse     = "Course"
	ColGender     = "Gender"
	ColSubject    = "Subject"
	ColInternal1  = "Internal_1"
	ColInternal2  = "Internal_2"
	ColExternal   = "External"
	ColTotalMarks = "Total_Marks"
	ColResult     = "Result"
	ColMarkRange  = "Mark_Range"
)

// RequiredColumns must all be present for a table to be accepted.
var RequiredColumns = []string{ColCourse, ColGender, ColSubject, ColInternal1, ColInternal2, ColExternal}

// Gender is kept verbatim from the source; only Boy and Girl are counted.
type Gender string

const (
	Boy  Gender = "Boy"
	Girl Gender = "Girl"
)

// Result is the pass/fail outcome of a record.
type Result string

const (
	Pass Result = "Pass"
	Fail Result = "Fail"
)

// Results lists outcomes in display order.
var Results = []Result{Pass, Fail}

// RangePolicy decides what happens to totals outside [0,100].
type RangePolicy string

const (
	// RangeClamp assigns totals below 0 to the first bucket and above 100 to the last.
	RangeClamp RangePolicy = "clamp"
	// RangeReject fails derivation with a *RangeError.
	RangeReject RangePolicy = "reject"
)

// ParseRangePolicy validates a policy name.
func ParseRangePolicy(s string) (RangePolicy, error) {
	switch RangePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", RangeClamp:
		return RangeClamp, nil
	case RangeReject:
		return RangeReject, nil
	default:
		return "", fmt.Errorf("invalid range policy: %s (use clamp or reject)", s)
	}
}

// Options carries the fixed pipeline constants.
type Options struct {
	// Course is the only course kept after ingestion.
	Course string
	// PassMark is the inclusive Total_Marks threshold for Pass.
	PassMark float64
	// RangePolicy handles totals outside [0,100].
	RangePolicy RangePolicy
}

// DefaultOptions returns the constants used by the dashboard.
func DefaultOptions() Options {
	return Options{
		Course:      "BCA",
		PassMark:    50,
		RangePolicy: RangeClamp,
	}
}

// Record is one student-subject row. Derived fields are zero until Derive runs.
type Record struct {
	Row        int     `json:"row" yaml:"row"`
	Course     string  `json:"Course" yaml:"Course"`
	Gender     Gender  `json:"Gender" yaml:"Gender"`
	Subject    string  `json:"Subject" yaml:"Subject"`
	Internal1  float64 `json:"Internal_1" yaml:"Internal_1"`
	Internal2  float64 `json:"Internal_2" yaml:"Internal_2"`
	External   float64 `json:"External" yaml:"External"`
	TotalMarks float64 `json:"Total_Marks" yaml:"Total_Marks"`
	Result     Result  `json:"Result,omitempty" yaml:"Result,omitempty"`
	MarkRange  string  `json:"Mark_Range,omitempty" yaml:"Mark_Range,omitempty"`
}

// Table is an ordered set of records sharing one schema.
type Table struct {
	Records []Record
	// Derived is set once Total_Marks, Result and Mark_Range are filled in.
	Derived bool
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{Derived: t.Derived, Records: make([]Record, len(t.Records))}
	copy(out.Records, t.Records)
	return out
}
