package parser

import (
	"errors"
	"fmt"
	"strings"
)

// Format names the tabular encoding of an uploaded file.
type Format string

const (
	FormatAuto Format = ""
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a user-supplied hint to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "csv", "tsv", "text", "delimited":
		return FormatCSV, nil
	case "xlsx", "excel", "spreadsheet":
		return FormatXLSX, nil
	default:
		return FormatAuto, fmt.Errorf("unsupported format: %s (use csv or xlsx)", s)
	}
}

// Sheet is a raw table: one header row followed by data rows, all cells as text.
// Every row is padded to len(Header). Lines holds the 1-based source line (CSV)
// or sheet row (XLSX) of each entry in Rows, since blank rows are dropped.
type Sheet struct {
	Header []string
	Rows   [][]string
	Lines  []int
}

// Line returns the source line of Rows[i]. Sheets built without Lines are
// assumed to have one header line and no gaps.
func (sh Sheet) Line(i int) int {
	if i < len(sh.Lines) {
		return sh.Lines[i]
	}
	return i + 2
}

// Options tunes individual parsers.
type Options struct {
	// Delimiter for CSV. If 0, sniffed from the header line.
	Delimiter rune
	// SheetName selects an XLSX sheet; empty means the first sheet.
	SheetName string
}

// Parser defines a tabular parser implementation.
type Parser interface {
	Format() Format
	CanParse(filename string) bool
	Parse(content []byte, opt Options) (Sheet, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// Parse decodes raw upload bytes into a Sheet. An explicit hint wins; with
// FormatAuto the filename decides, and anything that is not delimited text is
// treated as a spreadsheet.
func Parse(filename string, hint Format, content []byte, opt Options) (Sheet, error) {
	p := lookup(filename, hint)
	if p == nil {
		return Sheet{}, &ParseError{Format: hint, Err: ErrUnsupported}
	}
	sh, err := p.Parse(content, opt)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			return Sheet{}, err
		}
		return Sheet{}, &ParseError{Format: p.Format(), Err: err}
	}
	return sh, nil
}

// Detect reports the format Parse would use for filename and hint.
func Detect(filename string, hint Format) Format {
	if p := lookup(filename, hint); p != nil {
		return p.Format()
	}
	return FormatAuto
}

func lookup(filename string, hint Format) Parser {
	if hint != FormatAuto {
		for _, p := range registry {
			if p.Format() == hint {
				return p
			}
		}
		return nil
	}
	for _, p := range registry {
		if p.CanParse(filename) {
			return p
		}
	}
	for _, p := range registry {
		if p.Format() == FormatXLSX {
			return p
		}
	}
	return nil
}

func init() {
	Register(csvParser{})
	Register(xlsxParser{})
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported tabular format")

// ErrParse matches any *ParseError via errors.Is.
var ErrParse = errors.New("parse error")

// ParseError reports bytes that cannot be decoded as the claimed format.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	if e.Format == FormatAuto {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

func padRow(row []string, n int) []string {
	if len(row) >= n {
		return row[:n:n]
	}
	out := make([]string, n)
	copy(out, row)
	return out
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
