package grades

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/KaramelBytes/markboard-cli/internal/parser"
)

// rawRecord is one course-matching row before numeric conversion.
type rawRecord struct {
	Course    string `col:"Course" validate:"required"`
	Gender    string `col:"Gender" validate:"required"`
	Subject   string `col:"Subject" validate:"required"`
	Internal1 string `col:"Internal_1" validate:"required"`
	Internal2 string `col:"Internal_2" validate:"required"`
	External  string `col:"External" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("col")
	})
	return v
}

// BuildTable normalizes and validates the sheet header, keeps rows whose
// Course equals opt.Course and converts them into typed records.
func BuildTable(sh parser.Sheet, opt Options) (*Table, error) {
	cols := NormalizeColumns(sh.Header)
	if err := ValidateSchema(cols); err != nil {
		return nil, err
	}
	idx := columnIndex(cols)
	cell := func(row []string, name string) string {
		i := idx[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	t := &Table{}
	for i, row := range sh.Rows {
		line := sh.Line(i)
		raw := rawRecord{
			Course:    cell(row, ColCourse),
			Gender:    cell(row, ColGender),
			Subject:   cell(row, ColSubject),
			Internal1: cell(row, ColInternal1),
			Internal2: cell(row, ColInternal2),
			External:  cell(row, ColExternal),
		}
		if raw.Course != opt.Course {
			continue
		}
		if err := validate.Struct(raw); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				return nil, &RecordError{Row: line, Column: verrs[0].Field()}
			}
			return nil, err
		}
		rec := Record{Row: line, Course: raw.Course, Gender: Gender(raw.Gender), Subject: raw.Subject}
		var err error
		if rec.Internal1, err = parseScore(line, ColInternal1, raw.Internal1); err != nil {
			return nil, err
		}
		if rec.Internal2, err = parseScore(line, ColInternal2, raw.Internal2); err != nil {
			return nil, err
		}
		if rec.External, err = parseScore(line, ColExternal, raw.External); err != nil {
			return nil, err
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

func parseScore(line int, col, v string) (float64, error) {
	x, ok := parseNumeric(v)
	if !ok || math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, &TypeError{Row: line, Column: col, Value: v}
	}
	return x, nil
}

// parseNumeric accepts plain and locale-formatted numbers ("1.234,5", "1,234.5").
// A percent sign is dropped, so "20%" reads as 20.
func parseNumeric(s string) (float64, bool) {
	raw := strings.ReplaceAll(strings.TrimSpace(s), "%", "")
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	// decide decimal separator by last occurrence
	dec, thou := '.', rune(0)
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	switch {
	case cpos >= 0 && dpos >= 0:
		if cpos > dpos {
			dec, thou = ',', '.'
		} else {
			thou = ','
		}
	case cpos >= 0:
		dec = ','
	}
	if thou != 0 {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	raw = strings.ReplaceAll(raw, " ", "")
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
