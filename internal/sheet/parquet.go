package sheet

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/chargeflow/internal/model"
	"github.com/gyeh/chargeflow/internal/parquetread"
)

// Parquet sheets carry one column per logical field, so their headers are the
// logical field names.
func parquetHeaders() []string {
	out := make([]string, len(model.AllFields))
	for i, fd := range model.AllFields {
		out[i] = string(fd.Field)
	}
	return out
}

// ReadParquetFile decodes a Parquet sheet from disk.
func ReadParquetFile(path string) (*Sheet, error) {
	r, err := parquetread.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return readParquet(r, filepath.Base(path))
}

// ReadParquet decodes a Parquet sheet from a random-access source.
func ReadParquet(src io.ReaderAt, size int64, name string) (*Sheet, error) {
	r, err := parquetread.OpenReaderAt(src, size)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return readParquet(r, name)
}

func readParquet(r *parquetread.Reader, name string) (*Sheet, error) {
	if missing := parquetread.MissingCritical(r.Schema()); len(missing) > 0 {
		return nil, &MappingError{Sheet: name, Missing: missing}
	}

	rows, err := r.ReadAll(0)
	if err != nil {
		return nil, err
	}

	records := make([][]string, len(rows))
	for i := range rows {
		cells := rows[i].Cells()
		rec := make([]string, len(model.AllFields))
		for j, fd := range model.AllFields {
			rec[j] = cells[fd.Field]
		}
		records[i] = rec
	}
	return New(name, parquetHeaders(), records)
}

// WriteParquet encodes the sheet with the ChargeSheetRow schema. Columns
// outside the logical field set are not written.
func (s *Sheet) WriteParquet(w io.Writer) error {
	out := make([]model.ChargeSheetRow, len(s.Rows))
	for i, row := range s.Rows {
		out[i] = model.ChargeSheetRowFrom(row)
		if msg := row.Message(); msg != "" {
			out[i].Error = &msg
		} else {
			out[i].Error = nil
		}
	}

	pw := parquet.NewGenericWriter[model.ChargeSheetRow](w)
	if _, err := pw.Write(out); err != nil {
		pw.Close()
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}
