package spreadsheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Supported file extensions.
const (
	ExtXLSX = ".xlsx"
	ExtXLS  = ".xls"
)

var (
	// ErrUnsupportedExtension is returned for anything but .xls and .xlsx.
	ErrUnsupportedExtension = errors.New("Invalid file extension.")
	// ErrNoWorksheet is returned for workbooks without any sheet.
	ErrNoWorksheet = errors.New("workbook has no worksheets")
)

// CheckExtension validates the filename suffix, case-insensitively.
func CheckExtension(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ExtXLSX && ext != ExtXLS {
		return "", ErrUnsupportedExtension
	}
	return ext, nil
}

// Read parses the first worksheet of an uploaded workbook. The format is
// chosen from the filename extension.
func Read(filename string, r io.Reader) (*Table, error) {
	ext, err := CheckExtension(filename)
	if err != nil {
		return nil, err
	}

	var raw [][]string
	switch ext {
	case ExtXLSX:
		raw, err = readXLSX(r)
	case ExtXLS:
		raw, err = readXLS(r)
	}
	if err != nil {
		return nil, err
	}
	return NewTable(raw), nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoWorksheet
	}

	// Raw values keep numbers unformatted; date cells come back as serials.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readXLS(r io.Reader) ([][]string, error) {
	// The BIFF reader needs random access.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read xls upload: %w", err)
	}

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open xls workbook: %w", err)
	}
	if wb == nil || wb.NumSheets() == 0 {
		return nil, ErrNoWorksheet
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, ErrNoWorksheet
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := xlsRow(sheet, i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		width := row.LastCol()
		if width == 0 {
			// Cells written without a ROW record carry no column span.
			width = xlsMaxColumns
		}
		values := make([]string, 0, width)
		for j := 0; j < width; j++ {
			values = append(values, row.Col(j))
		}
		for len(values) > 0 && values[len(values)-1] == "" {
			values = values[:len(values)-1]
		}
		rows = append(rows, values)
	}
	return rows, nil
}

// xlsMaxColumns is the BIFF8 column limit.
const xlsMaxColumns = 256

// xlsRow returns nil for rows absent from the sheet. WorkSheet.Row
// dereferences the missing entry, so the panic is turned into nil here.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}
