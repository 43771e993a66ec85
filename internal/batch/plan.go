package batch

import (
	"github.com/gyeh/chargeflow/internal/encounter"
	"github.com/gyeh/chargeflow/internal/model"
	"github.com/gyeh/chargeflow/internal/payment"
)

// Plan is what a run would attempt, computed without remote calls.
type Plan struct {
	Rows        int
	MissingKeys int // rows without a patient id or practice
	PaymentRows int
	// Groups is an upper bound on encounters: Phase 1 may still drop rows
	// whose patient is not found.
	Groups []model.GroupKey
}

// MakePlan inspects rows the way Run would.
func MakePlan(rows []*model.Row) Plan {
	p := Plan{Rows: len(rows)}
	seen := make(map[model.GroupKey]bool)
	for _, row := range rows {
		if row.Get(model.FieldPatientID) == "" || row.Get(model.FieldPractice) == "" {
			p.MissingKeys++
			continue
		}
		if payment.InputFromRow(row).HasPayment() {
			p.PaymentRows++
		}
		if row.Get(model.FieldDOS) == "" {
			continue
		}
		key := encounter.KeyOf(row)
		if !seen[key] {
			seen[key] = true
			p.Groups = append(p.Groups, key)
		}
	}
	return p
}
