package encounter

import (
	"fmt"
	"strings"

	"github.com/gyeh/chargeflow/internal/model"
	"github.com/gyeh/chargeflow/internal/normalize"
	"github.com/gyeh/chargeflow/internal/tebra"
)

// LineError reports the row whose service line could not be built.
type LineError struct {
	RowNumber int
	Reason    string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("row %d: %s", e.RowNumber, e.Reason)
}

// BuildServiceLine turns one row into a service line dated serviceDate.
func BuildServiceLine(row *model.Row, serviceDate string) (tebra.ServiceLine, error) {
	proc := normalize.TrimFloatSuffix(row.Get(model.FieldProcedures))
	if proc == "" {
		return tebra.ServiceLine{}, &LineError{RowNumber: row.Number, Reason: "procedure code missing"}
	}
	rawUnits := row.Get(model.FieldUnits)
	if blank(rawUnits) {
		return tebra.ServiceLine{}, &LineError{RowNumber: row.Number, Reason: "units missing"}
	}
	units, err := normalize.ParseUnits(rawUnits)
	if err != nil {
		return tebra.ServiceLine{}, &LineError{RowNumber: row.Number, Reason: fmt.Sprintf("units '%s' not a number", rawUnits)}
	}
	if units <= 0 {
		return tebra.ServiceLine{}, &LineError{RowNumber: row.Number, Reason: fmt.Sprintf("units %s <= 0", normalize.FormatUnits(units))}
	}
	diag1 := cleanCode(row.Get(model.FieldDiag1))
	if diag1 == "" {
		return tebra.ServiceLine{}, &LineError{RowNumber: row.Number, Reason: "Diag 1 missing"}
	}

	sl := tebra.ServiceLine{
		ProcedureCode: proc,
		Units:         normalize.FormatUnits(units),
		StartDate:     serviceDate,
		EndDate:       serviceDate,
	}
	for _, f := range model.ModifierFields {
		sl.Modifiers = append(sl.Modifiers, cleanModifier(row.Get(f)))
	}
	sl.DiagnosisCodes = append(sl.DiagnosisCodes, diag1)
	for _, f := range model.DiagnosisFields[1:] {
		sl.DiagnosisCodes = append(sl.DiagnosisCodes, cleanCode(row.Get(f)))
	}
	sl.Modifiers = trimTrailingBlanks(sl.Modifiers)
	sl.DiagnosisCodes = trimTrailingBlanks(sl.DiagnosisCodes)
	return sl, nil
}

// BuildServiceLines builds one line per row. The first invalid row fails
// the whole set.
func BuildServiceLines(rows []*model.Row, serviceDate string) ([]tebra.ServiceLine, error) {
	lines := make([]tebra.ServiceLine, 0, len(rows))
	for _, row := range rows {
		sl, err := BuildServiceLine(row, serviceDate)
		if err != nil {
			return nil, err
		}
		lines = append(lines, sl)
	}
	return lines, nil
}

func cleanModifier(s string) string {
	if blank(s) {
		return ""
	}
	return normalize.NormalizeModifier(s)
}

func cleanCode(s string) string {
	if blank(s) {
		return ""
	}
	return strings.TrimSpace(s)
}

func blank(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "nan")
}

func trimTrailingBlanks(codes []string) []string {
	n := len(codes)
	for n > 0 && codes[n-1] == "" {
		n--
	}
	if n == 0 {
		return nil
	}
	return codes[:n]
}
