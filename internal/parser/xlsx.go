package parser

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

type xlsxParser struct{}

func (xlsxParser) Format() Format { return FormatXLSX }

func (xlsxParser) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xlsm")
}

// Parse reads the requested sheet (first sheet by default) of a workbook.
func (xlsxParser) Parse(content []byte, opt Options) (Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return Sheet{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Sheet{}, errors.New("workbook has no sheets")
	}
	name := sheets[0]
	if opt.SheetName != "" {
		name = ""
		for _, s := range sheets {
			if strings.EqualFold(s, opt.SheetName) {
				name = s
				break
			}
		}
		if name == "" {
			return Sheet{}, fmt.Errorf("sheet '%s' not found.\nAvailable sheets: %s",
				opt.SheetName, strings.Join(sheets, ", "))
		}
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return Sheet{}, fmt.Errorf("read sheet %s: %w", name, err)
	}
	// excelize trims trailing empty rows but may return leading blank ones
	first := 0
	for first < len(rows) && blankRow(rows[first]) {
		first++
	}
	if first == len(rows) {
		return Sheet{}, errors.New("no columns to parse from file")
	}
	header := rows[first]
	ncol := len(header)
	sh := Sheet{Header: append([]string(nil), header...)}
	for i := first + 1; i < len(rows); i++ {
		if blankRow(rows[i]) {
			continue
		}
		sh.Rows = append(sh.Rows, padRow(rows[i], ncol))
		sh.Lines = append(sh.Lines, i+1)
	}
	return sh, nil
}
