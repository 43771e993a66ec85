package parquetread

import (
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/chargeflow/internal/model"
)

// MissingCritical returns the critical fields whose column is absent from the
// schema, in canonical order. Column names are compared case-insensitively.
func MissingCritical(schema *parquet.Schema) []model.Field {
	columns := make(map[string]bool)
	for _, field := range schema.Fields() {
		columns[strings.ToLower(field.Name())] = true
	}

	var missing []model.Field
	for _, fd := range model.AllFields {
		if fd.Critical && !columns[fd.Column] {
			missing = append(missing, fd.Field)
		}
	}
	return missing
}
