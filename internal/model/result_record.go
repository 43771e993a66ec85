package model

import (
	"github.com/google/uuid"
)

// ResultRecord is the ledger form of one processed row.
type ResultRecord struct {
	RunID           uuid.UUID
	RowNumber       int32
	PracticeName    string
	PatientID       string
	DOS             *string
	InsuranceStatus *string
	PaymentID       *string
	EncounterID     *string
	ChargeAmount    *string
	ChargeStatus    *string
	Message         string
	Failed          bool
}

// NewResultRecord snapshots a processed row. Blank optional cells become NULL.
func NewResultRecord(runID uuid.UUID, row *Row, failed bool) *ResultRecord {
	return &ResultRecord{
		RunID:           runID,
		RowNumber:       int32(row.Number),
		PracticeName:    row.Get(FieldPractice),
		PatientID:       row.Get(FieldPatientID),
		DOS:             optional(row.Get(FieldDOS)),
		InsuranceStatus: optional(row.Get(FieldInsuranceStatus)),
		PaymentID:       optional(row.PaymentID),
		EncounterID:     optional(row.Get(FieldEncounterID)),
		ChargeAmount:    optional(row.Get(FieldChargeAmount)),
		ChargeStatus:    optional(row.Get(FieldChargeStatus)),
		Message:         row.Message(),
		Failed:          failed,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ResultColumns returns the COPY column order for chargeflow.row_results.
func ResultColumns() []string {
	return []string{
		"run_id",
		"row_number",
		"practice_name",
		"patient_id",
		"dos",
		"insurance_status",
		"payment_id",
		"encounter_id",
		"charge_amount",
		"charge_status",
		"message",
		"failed",
	}
}

// CopyValues returns the record in ResultColumns order.
func (r *ResultRecord) CopyValues() []any {
	return []any{
		r.RunID,
		r.RowNumber,
		r.PracticeName,
		r.PatientID,
		r.DOS,
		r.InsuranceStatus,
		r.PaymentID,
		r.EncounterID,
		r.ChargeAmount,
		r.ChargeStatus,
		r.Message,
		r.Failed,
	}
}
