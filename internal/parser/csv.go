package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

type csvParser struct{}

func (csvParser) Format() Format { return FormatCSV }

func (csvParser) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

// Parse reads UTF-8 delimited text. Rows with more fields than the header are
// rejected; short rows are padded with empty cells.
func (csvParser) Parse(content []byte, opt Options) (Sheet, error) {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(content) {
		return Sheet{}, errors.New("input is not valid UTF-8 text")
	}
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(content)
	}
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Sheet{}, errors.New("no columns to parse from file")
		}
		return Sheet{}, fmt.Errorf("read header: %w", err)
	}
	ncol := len(header)
	sh := Sheet{Header: append([]string(nil), header...)}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Sheet{}, fmt.Errorf("read row: %w", err)
		}
		line, _ := r.FieldPos(0)
		if len(rec) > ncol {
			return Sheet{}, fmt.Errorf("line %d: expected %d fields, saw %d", line, ncol, len(rec))
		}
		if blankRow(rec) {
			continue
		}
		sh.Rows = append(sh.Rows, padRow(rec, ncol))
		sh.Lines = append(sh.Lines, line)
	}
	return sh, nil
}

// sniffDelimiter picks the most frequent of ',', ';', '\t' on the first line.
func sniffDelimiter(content []byte) rune {
	first := content
	if i := bytes.IndexByte(content, '\n'); i >= 0 {
		first = content[:i]
	}
	best, bestN := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if n := bytes.Count(first, []byte(string(d))); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}
