package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

type SheetSpec struct {
	Title  string
	Header []string
	Rows   [][]any
}

// Build собирает книгу: лист на каждый SheetSpec, заголовок в первой строке.
func Build(sheets []SheetSpec) (*excelize.File, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("export: no sheets")
	}
	f := excelize.NewFile()
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Title); err != nil {
				_ = f.Close()
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.Title); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("new sheet %q: %w", s.Title, err)
		}
		if err := writeSheet(f, s); err != nil {
			_ = f.Close()
			return nil, err
		}
		if err := ApplyDefaultExcelFormatting(f, s.Title); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("format sheet %q: %w", s.Title, err)
		}
	}
	return f, nil
}

func writeSheet(f *excelize.File, s SheetSpec) error {
	header := make([]any, len(s.Header))
	for i, h := range s.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(s.Title, "A1", &header); err != nil {
		return fmt.Errorf("header %q: %w", s.Title, err)
	}
	for r, row := range s.Rows {
		cell := fmt.Sprintf("A%d", r+2)
		row := row
		if err := f.SetSheetRow(s.Title, cell, &row); err != nil {
			return fmt.Errorf("set row %s: %w", cell, err)
		}
	}
	return nil
}

// Bytes — книга целиком, для отправки документом в чат.
func Bytes(sheets []SheetSpec) ([]byte, error) {
	f, err := Build(sheets)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
