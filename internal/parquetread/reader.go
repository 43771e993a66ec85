package parquetread

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/chargeflow/internal/model"
)

// Reader streams ChargeSheetRow records out of a Parquet charge sheet.
type Reader struct {
	closer io.Closer
	file   *parquet.File
	reader *parquet.GenericReader[model.ChargeSheetRow]
}

// Open opens a Parquet file on disk.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat parquet file: %w", err)
	}

	r, err := OpenReaderAt(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// OpenReaderAt opens Parquet data held in memory or any other random-access
// source, such as an uploaded file.
func OpenReaderAt(src io.ReaderAt, size int64) (*Reader, error) {
	pf, err := parquet.OpenFile(src, size)
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	return &Reader{file: pf, reader: parquet.NewGenericReader[model.ChargeSheetRow](pf)}, nil
}

// NumRows returns the total number of rows in the file.
func (r *Reader) NumRows() int64 {
	return r.reader.NumRows()
}

// Read reads up to len(rows) records. It returns io.EOF after the last row.
func (r *Reader) Read(rows []model.ChargeSheetRow) (int, error) {
	n, err := r.reader.Read(rows)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("read parquet rows: %w", err)
	}
	return n, err
}

// ReadAll drains the reader in batches of batchSize.
func (r *Reader) ReadAll(batchSize int) ([]model.ChargeSheetRow, error) {
	if batchSize <= 0 {
		batchSize = 1024
	}
	out := make([]model.ChargeSheetRow, 0, r.NumRows())
	buf := make([]model.ChargeSheetRow, batchSize)
	for {
		n, err := r.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// Schema returns the schema as written in the file, not the row type's.
func (r *Reader) Schema() *parquet.Schema {
	return r.file.Schema()
}

// Close releases all resources.
func (r *Reader) Close() error {
	err := r.reader.Close()
	if r.closer != nil {
		if cerr := r.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
