package sheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ChargesSheet is the worksheet charge rows are read from and written to.
const ChargesSheet = "Charges"

// ReadXLSX decodes the Charges worksheet of a workbook.
func ReadXLSX(r io.Reader, name string) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(ChargesSheet)
	if err != nil {
		return nil, fmt.Errorf("find %s sheet: %w", ChargesSheet, err)
	}
	if idx < 0 {
		return nil, fmt.Errorf("%s: workbook has no %q sheet", name, ChargesSheet)
	}

	rows, err := f.GetRows(ChargesSheet)
	if err != nil {
		return nil, fmt.Errorf("read %s rows: %w", ChargesSheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: empty sheet", name)
	}
	return New(name, rows[0], rows[1:])
}

// WriteXLSX encodes the sheet as a single-sheet workbook named Charges.
func (s *Sheet) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(ChargesSheet); err != nil {
		return fmt.Errorf("create %s sheet: %w", ChargesSheet, err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(0)

	if err := writeXLSXRow(f, 1, s.Headers); err != nil {
		return err
	}
	for i, rec := range s.Records() {
		if err := writeXLSXRow(f, i+2, rec); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeXLSXRow(f *excelize.File, n int, rec []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	values := make([]any, len(rec))
	for i, v := range rec {
		values[i] = v
	}
	if err := f.SetSheetRow(ChargesSheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", n, err)
	}
	return nil
}
