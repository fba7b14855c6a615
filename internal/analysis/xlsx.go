package analysis

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX loads one worksheet of an Excel workbook into a dataset. The sheet
// is chosen by opt.SheetName, then opt.SheetIndex (1-based), else the first.
func ReadXLSX(r io.Reader, name string, opt Options) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx: no sheets found")
	}
	sheet := sheets[0]
	switch {
	case opt.SheetName != "":
		found := false
		for _, s := range sheets {
			if s == opt.SheetName {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("xlsx: sheet %q not found", opt.SheetName)
		}
		sheet = opt.SheetName
	case opt.SheetIndex > 0:
		if opt.SheetIndex > len(sheets) {
			return nil, fmt.Errorf("xlsx: sheet index %d out of range (have %d)", opt.SheetIndex, len(sheets))
		}
		sheet = sheets[opt.SheetIndex-1]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx: read sheet %q: %w", sheet, err)
	}
	// skip leading empty rows so the first populated row is the header
	for len(rows) > 0 && blankRecord(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}
	header := rows[0]
	var records [][]string
	for _, row := range rows[1:] {
		if blankRecord(row) {
			continue
		}
		records = append(records, row)
	}
	dsName := name
	if len(sheets) > 1 {
		dsName = fmt.Sprintf("%s#%s", name, sheet)
	}
	return FromRecords(dsName, header, records, opt)
}
