// Package sheet reads and writes charge sheets and maps their headers onto
// logical fields.
//
// Three formats are supported, chosen by file extension: CSV, XLSX (the
// "Charges" worksheet) and Parquet. Every reader produces the same Sheet:
// original headers in order, a ColumnMap and one model.Row per data record.
package sheet

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gyeh/chargeflow/internal/model"
	"github.com/gyeh/chargeflow/internal/normalize"
)

// Format identifies a sheet encoding.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatXLSX    Format = "xlsx"
	FormatParquet Format = "parquet"
)

// FormatOf picks the format from a file name's extension.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".parquet":
		return FormatParquet, nil
	}
	return "", fmt.Errorf("unsupported sheet type %q: use .csv, .xlsx or .parquet", filepath.Ext(name))
}

// MappingError reports critical columns missing from a sheet. It is fatal
// for the whole batch.
type MappingError struct {
	Sheet   string
	Missing []model.Field
}

func (e *MappingError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	if e.Sheet == "" {
		return fmt.Sprintf("missing critical columns: %s", strings.Join(names, ", "))
	}
	return fmt.Sprintf("%s: missing critical columns: %s", e.Sheet, strings.Join(names, ", "))
}

// MapColumns matches headers to logical fields after normalizing both
// (trim, lower-case, collapse whitespace). The first matching header wins.
// Absent non-critical fields map to their logical name; absent critical
// fields produce a *MappingError.
func MapColumns(headers []string) (model.ColumnMap, error) {
	byName := make(map[string]string, len(headers))
	for _, h := range headers {
		key := normalize.NormalizeName(h)
		if key == "" {
			continue
		}
		if _, dup := byName[key]; !dup {
			byName[key] = h
		}
	}

	cols := make(model.ColumnMap, len(model.AllFields))
	var missing []model.Field
	for _, fd := range model.AllFields {
		if h, ok := byName[normalize.NormalizeName(string(fd.Field))]; ok {
			cols[fd.Field] = h
			continue
		}
		if fd.Critical {
			missing = append(missing, fd.Field)
			continue
		}
		cols[fd.Field] = string(fd.Field)
	}
	if len(missing) > 0 {
		return nil, &MappingError{Missing: missing}
	}
	return cols, nil
}

// Sheet is a mapped charge sheet.
type Sheet struct {
	Name    string
	Headers []string
	Columns model.ColumnMap
	Rows    []*model.Row
}

// New maps headers and turns records into rows. Output columns missing from
// headers are appended, the Error column of every row is cleared, a leading
// descriptive row is dropped and fully blank records are skipped. Row numbers
// count the header as row 1.
func New(name string, headers []string, records [][]string) (*Sheet, error) {
	cols, err := MapColumns(headers)
	if err != nil {
		if me, ok := err.(*MappingError); ok {
			me.Sheet = name
		}
		return nil, err
	}

	s := &Sheet{Name: name, Headers: append([]string(nil), headers...), Columns: cols}
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}
	for _, f := range model.OutputFields() {
		if h := cols.Header(f); !present[h] {
			s.Headers = append(s.Headers, h)
			present[h] = true
		}
	}

	first := 0
	if len(records) > 0 && isDescriptive(records[0]) {
		first = 1
	}
	for i := first; i < len(records); i++ {
		rec := records[i]
		if blank(rec) {
			continue
		}
		cells := make(map[string]string, len(s.Headers))
		for j, h := range headers {
			if j < len(rec) {
				if _, dup := cells[h]; !dup {
					cells[h] = rec[j]
				}
			}
		}
		row := model.NewRow(i+2, cols, cells)
		row.Set(model.FieldError, "")
		s.Rows = append(s.Rows, row)
	}
	return s, nil
}

// Records returns the rows as cell slices aligned with Headers. Each row's
// messages replace its Error cell.
func (s *Sheet) Records() [][]string {
	errHeader := s.Columns.Header(model.FieldError)
	out := make([][]string, len(s.Rows))
	for i, row := range s.Rows {
		rec := make([]string, len(s.Headers))
		for j, h := range s.Headers {
			if h == errHeader {
				rec[j] = row.Message()
				continue
			}
			rec[j] = row.Cell(h)
		}
		out[i] = rec
	}
	return out
}

// isDescriptive reports whether rec is a second header line describing the
// columns rather than data.
func isDescriptive(rec []string) bool {
	if len(rec) == 0 {
		return false
	}
	first := normalize.NormalizeName(rec[0])
	if strings.Contains(first, "script will read this from excel") {
		return true
	}
	return len(rec) > 1 && first == "practice" && normalize.NormalizeName(rec[1]) == "patient id"
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Read loads a sheet from disk.
func Read(path string) (*Sheet, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	if format == FormatParquet {
		return ReadParquetFile(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sheet: %w", err)
	}
	defer f.Close()
	return decode(f, format, filepath.Base(path))
}

// ReadFrom decodes an uploaded sheet. name is only used for its extension and
// for error messages.
func ReadFrom(r io.Reader, name string) (*Sheet, error) {
	format, err := FormatOf(name)
	if err != nil {
		return nil, err
	}
	return decode(r, format, name)
}

func decode(r io.Reader, format Format, name string) (*Sheet, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r, name)
	case FormatXLSX:
		return ReadXLSX(r, name)
	case FormatParquet:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read parquet upload: %w", err)
		}
		return ReadParquet(bytes.NewReader(data), int64(len(data)), name)
	}
	return nil, fmt.Errorf("unsupported sheet format %q", format)
}

// Write saves s to path in the format given by its extension.
func (s *Sheet) Write(path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output sheet: %w", err)
	}
	if err := s.Encode(f, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Encode writes s to w.
func (s *Sheet) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatCSV:
		return s.WriteCSV(w)
	case FormatXLSX:
		return s.WriteXLSX(w)
	case FormatParquet:
		return s.WriteParquet(w)
	}
	return fmt.Errorf("unsupported sheet format %q", format)
}
