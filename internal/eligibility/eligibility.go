// Package eligibility implements Phase 1: patient demographics and the
// insurance policy active on the date of service.
package eligibility

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/chargeflow/internal/model"
	"github.com/gyeh/chargeflow/internal/normalize"
	"github.com/gyeh/chargeflow/internal/tebra"
)

// Result is the Phase 1 outcome for one row.
type Result struct {
	PatientName   string
	DOB           string
	InsuranceName string
	InsuranceID   string
	Status        Status
	// Detail explains an error status; empty for informational statuses.
	Detail string
}

// Message returns the row message for this result.
func (r Result) Message() string {
	if r.Detail != "" {
		return "P1 Error: " + r.Detail
	}
	return "P1 Status: " + string(r.Status)
}

// Apply writes the result into the Phase 1 output columns of row and
// appends its message.
func (r Result) Apply(row *model.Row) {
	row.Set(model.FieldPatientName, r.PatientName)
	row.Set(model.FieldDOB, r.DOB)
	row.Set(model.FieldInsurance, r.InsuranceName)
	row.Set(model.FieldInsuranceID, r.InsuranceID)
	row.Set(model.FieldInsuranceStatus, string(r.Status))
	row.AddMessage(r.Message())
}

// Fetcher runs Phase 1 lookups.
type Fetcher struct {
	gw  tebra.Gateway
	log zerolog.Logger
}

// NewFetcher creates a Fetcher.
func NewFetcher(gw tebra.Gateway, log zerolog.Logger) *Fetcher {
	return &Fetcher{gw: gw, log: log.With().Str("phase", "eligibility").Logger()}
}

// Fetch looks up the patient and, when dos is a valid date, the insurance
// policy active on it. practice is used for logging only.
func (f *Fetcher) Fetch(ctx context.Context, patientID, practice, dos string) Result {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return Result{Status: StatusPatientIDMissing, Detail: "Patient ID is missing."}
	}
	pid, err := normalize.ParseID(patientID)
	if err != nil || pid <= 0 {
		return Result{Status: StatusInvalidPatientID, Detail: fmt.Sprintf("Invalid Patient ID format: '%s'.", patientID)}
	}

	log := f.log.With().Int64("patient_id", pid).Str("practice", practice).Logger()

	var res Result
	var dosDate *time.Time
	switch dos = strings.TrimSpace(dos); {
	case dos == "":
		res.Status = StatusDOSMissing
	default:
		dosDate = normalize.ParseDate(dos)
		if dosDate == nil {
			res.Status = StatusInvalidDOS
			res.Detail = fmt.Sprintf("Invalid DOS '%s'.", dos)
		}
	}

	patient, err := f.gw.GetPatient(ctx, pid)
	if err != nil {
		log.Error().Err(err).Msg("patient lookup failed")
		return faultResult(err)
	}
	if patient == nil {
		return Result{Status: StatusPatientNotFound, Detail: "Patient data not in API resp."}
	}

	res.PatientName = strings.TrimSpace(patient.FirstName + " " + patient.LastName)
	res.DOB = patient.DOB
	if d := normalize.ParseDate(patient.DOB); d != nil {
		res.DOB = normalize.FormatDate(*d)
	}

	if dosDate == nil {
		log.Debug().Str("status", string(res.Status)).Msg("insurance check skipped")
		return res
	}

	pcase, ok := PrimaryCase(patient.Cases)
	switch {
	case !ok:
		res.Status = StatusNoCase
	case len(pcase.Policies) == 0:
		res.Status = StatusNoPolicies
	default:
		policy, found := SelectPolicy(pcase.Policies, *dosDate)
		if !found {
			res.Status = StatusNoActivePolicy
			break
		}
		res.Status = StatusActive
		res.InsuranceName = InsuranceName(policy)
		res.InsuranceID = strings.TrimSpace(policy.Number)
	}
	log.Debug().Str("status", string(res.Status)).Str("insurance", res.InsuranceName).Msg("eligibility checked")
	return res
}

func faultResult(err error) Result {
	f, ok := tebra.AsFault(err)
	if !ok {
		return Result{Status: StatusSystemError, Detail: fmt.Sprintf("Error in Ph1(GetPt): %v", err)}
	}
	switch f.Kind {
	case tebra.FaultAPI:
		return Result{Status: StatusAPIError, Detail: "API Err(GetPt): " + f.Message}
	case tebra.FaultAuth:
		return Result{Status: StatusAuthError, Detail: "API Auth Err(GetPt): " + f.Message}
	default:
		return Result{Status: StatusSystemError, Detail: "Error in Ph1(GetPt): " + f.Error()}
	}
}

// PrimaryCase returns the case flagged primary, else the first case.
func PrimaryCase(cases []tebra.PatientCase) (tebra.PatientCase, bool) {
	if len(cases) == 0 {
		return tebra.PatientCase{}, false
	}
	for _, c := range cases {
		if c.IsPrimary {
			return c, true
		}
	}
	return cases[0], true
}

// SelectPolicy returns the first policy, in returned order, that is active
// on dos.
func SelectPolicy(policies []tebra.InsurancePolicy, dos time.Time) (tebra.InsurancePolicy, bool) {
	for _, p := range policies {
		if ActiveOn(p, dos) {
			return p, true
		}
	}
	return tebra.InsurancePolicy{}, false
}

// ActiveOn reports whether p covers dos. A policy with neither date is
// always active; a policy with an end date but no start date, or with an
// unparseable date, is not.
func ActiveOn(p tebra.InsurancePolicy, dos time.Time) bool {
	startRaw := strings.TrimSpace(p.EffectiveStartDate)
	endRaw := strings.TrimSpace(p.EffectiveEndDate)
	if startRaw == "" && endRaw == "" {
		return true
	}
	if startRaw == "" {
		return false
	}
	start := normalize.ParseDate(startRaw)
	if start == nil || start.After(dos) {
		return false
	}
	if endRaw == "" {
		return true
	}
	end := normalize.ParseDate(endRaw)
	return end != nil && !end.Before(dos)
}

// InsuranceName is the plan name, else the company name, else "N/A".
func InsuranceName(p tebra.InsurancePolicy) string {
	if n := strings.TrimSpace(p.PlanName); n != "" {
		return n
	}
	if n := strings.TrimSpace(p.CompanyName); n != "" {
		return n
	}
	return "N/A"
}
