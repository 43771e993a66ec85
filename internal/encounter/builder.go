// Package encounter implements Phase 3: grouping rows into encounters,
// building the encounter request, submitting it and reconciling the
// created encounter's status and charge total.
package encounter

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/gyeh/chargeflow/internal/model"
	"github.com/gyeh/chargeflow/internal/normalize"
	"github.com/gyeh/chargeflow/internal/resolve"
	"github.com/gyeh/chargeflow/internal/simplify"
	"github.com/gyeh/chargeflow/internal/tebra"
)

// DraftStatus is the status every encounter is created with.
const DraftStatus = "Draft"

// Placeholder values written to the charge columns.
const (
	ValueError            = "Error"
	ValueStatusFetchError = "Status Fetch Error"
)

// Result is the Phase 3 outcome for one group.
type Result struct {
	EncounterID  string
	ChargeAmount string
	ChargeStatus string
	Message      string
}

// Created reports whether an encounter was created.
func (r Result) Created() bool {
	return r.EncounterID != ""
}

// Apply writes the result into row, merging the message with the row's
// earlier messages.
func (r Result) Apply(row *model.Row) {
	if r.EncounterID != "" {
		row.Set(model.FieldEncounterID, r.EncounterID)
	}
	if r.ChargeAmount != "" {
		row.Set(model.FieldChargeAmount, r.ChargeAmount)
	}
	if r.ChargeStatus != "" {
		row.Set(model.FieldChargeStatus, r.ChargeStatus)
	}
	row.AddMessage(r.Message)
}

// Failure is the result of a group that produced no encounter: the charge
// columns read "Error" and the encounter id stays blank.
func Failure(msg string) Result {
	return Result{ChargeAmount: ValueError, ChargeStatus: ValueError, Message: msg}
}

// Builder creates one encounter per group.
type Builder struct {
	gw       tebra.Gateway
	resolver *resolve.Resolver
	log      zerolog.Logger
}

// NewBuilder creates a Builder. Lookups go through resolver so they share
// the run's cache.
func NewBuilder(gw tebra.Gateway, resolver *resolve.Resolver, log zerolog.Logger) *Builder {
	return &Builder{gw: gw, resolver: resolver, log: log.With().Str("phase", "encounter").Logger()}
}

// Process builds and submits the encounter for g under practiceID. Any
// failure before submission aborts the group; nothing partial is sent.
func (b *Builder) Process(ctx context.Context, g *Group, practiceID string) Result {
	log := b.log.With().
		Str("patient_id", g.Key.PatientID).
		Str("dos", g.Key.DOS).
		Str("practice", g.Key.Practice).
		Int("rows", len(g.Rows)).
		Logger()

	if len(g.Rows) == 0 {
		return Failure("Enc Error: No rows in group.")
	}
	first := g.Rows[0]

	req, procCode, res, ok := b.buildRequest(ctx, log, g, first, practiceID)
	if !ok {
		log.Error().Msg(res.Message)
		return res
	}

	log.Info().Int("service_lines", len(req.ServiceLines)).Str("pos", req.PlaceOfService.Code).Msg("creating encounter")
	id, err := b.gw.CreateEncounter(ctx, req)
	if err != nil {
		res := submitFailure(err)
		log.Error().Err(err).Msg(res.Message)
		return res
	}
	if id <= 0 {
		log.Warn().Msg("encounter response carried neither an id nor an error")
		return Failure("Enc creation unclear (EncID -1 or missing).")
	}

	encID := strconv.FormatInt(id, 10)
	res = Result{EncounterID: encID, Message: fmt.Sprintf("Encounter #%s Created.", encID)}
	log = log.With().Str("encounter_id", encID).Logger()

	code, err := b.gw.GetEncounterStatus(ctx, encID, practiceID)
	if err != nil {
		res.ChargeStatus = ValueStatusFetchError
		res.Message += fmt.Sprintf(" (Status Warn: %s)", faultMessage(err))
		log.Warn().Err(err).Msg("encounter status fetch failed")
	} else {
		res.ChargeStatus = StatusName(code)
	}

	filter := tebra.ChargeFilter{
		PracticeName:      g.Key.Practice,
		FromServiceDate:   req.ServiceStartDate,
		ToServiceDate:     req.ServiceEndDate,
		ProcedureCode:     procCode,
		IncludeUnapproved: true,
	}
	amount, err := b.fetchChargeAmount(ctx, filter, req.PatientID, encID)
	if err != nil {
		res.ChargeAmount = ValueError
		res.Message += fmt.Sprintf(" (Charge Warn: %s)", faultMessage(err))
		log.Warn().Err(err).Msg("charge fetch failed")
	} else {
		res.ChargeAmount = amount
	}

	log.Info().Str("charge_status", res.ChargeStatus).Str("charge_amount", res.ChargeAmount).Msg("encounter created")
	return res
}

// buildRequest resolves every reference the encounter needs and assembles
// the request. ok is false when the group must be aborted; res then holds
// the failure.
func (b *Builder) buildRequest(ctx context.Context, log zerolog.Logger, g *Group, first *model.Row, practiceID string) (req tebra.EncounterRequest, procCode string, res Result, ok bool) {
	if practiceID == "" {
		return req, "", Failure("Enc Error: Missing Practice ID."), false
	}

	locationID, found := b.resolver.ServiceLocationID(ctx, g.Key.Practice, practiceID)
	if !found {
		return req, "", Failure(fmt.Sprintf("Enc Error: SL '%s' not found for PracticeID %s.", g.Key.Practice, practiceID)), false
	}

	patientID, err := normalize.ParseID(g.Key.PatientID)
	if err != nil || patientID <= 0 {
		return req, "", Failure(fmt.Sprintf("Enc Error: Invalid Patient ID '%s'.", g.Key.PatientID)), false
	}
	caseID, found := b.resolver.CaseID(ctx, patientID)
	if !found {
		return req, "", Failure(fmt.Sprintf("Enc Error: Case ID not found for Pt %s.", g.Key.PatientID)), false
	}

	renderingName := first.Get(model.FieldRenderingProvider)
	if renderingName == "" {
		return req, "", Failure("Enc Error: Rendering Provider name missing."), false
	}
	renderingID, found := b.resolver.ProviderID(ctx, renderingName, practiceID, nil)
	if !found {
		return req, "", Failure(fmt.Sprintf("Enc Error: Rendering Provider ID for '%s' not found.", renderingName)), false
	}

	dos := normalize.ParseDate(g.Key.DOS)
	if dos == nil {
		return req, "", Failure(fmt.Sprintf("Enc Error: Invalid DOS '%s'.", g.Key.DOS)), false
	}
	serviceDate := normalize.FormatTimestamp(*dos)

	pos, source := PlaceOfService(first.Get(model.FieldPOS), first.Get(model.FieldEncounterMode))
	if source == POSDefault {
		log.Warn().Str("pos", first.Get(model.FieldPOS)).Str("mode", first.Get(model.FieldEncounterMode)).Msg("place of service not determined, defaulting to office")
	}

	lines, err := BuildServiceLines(g.Rows, serviceDate)
	if err != nil {
		var le *LineError
		if errors.As(err, &le) {
			log.Warn().Int("row", le.RowNumber).Str("reason", le.Reason).Msg("invalid service line")
			return req, "", Failure(fmt.Sprintf("Enc Error: Failed service line from Excel row %d (%s).", le.RowNumber, le.Reason)), false
		}
		return req, "", Failure("Enc Error: " + err.Error()), false
	}

	req = tebra.EncounterRequest{
		PatientID:         patientID,
		PracticeID:        practiceID,
		ServiceLocationID: locationID,
		CaseID:            caseID,
		RenderingProvider: tebra.ProviderRef{ProviderID: renderingID},
		PlaceOfService:    pos,
		ServiceStartDate:  serviceDate,
		ServiceEndDate:    serviceDate,
		PostDate:          serviceDate,
		BatchNumber:       first.Get(model.FieldEncounterBatch),
		Status:            DraftStatus,
		ServiceLines:      lines,
	}

	if name := first.Get(model.FieldSchedulingProvider); !blank(name) {
		if id, found := b.resolver.ProviderID(ctx, name, practiceID, nil); found {
			req.SchedulingProvider = &tebra.ProviderRef{ProviderID: id}
		} else {
			log.Warn().Str("scheduling_provider", name).Msg("scheduling provider not found, not sent")
		}
	}

	if name := first.Get(model.FieldReferringProvider); !blank(name) {
		if rp, found := b.resolver.ReferringProvider(ctx, name, practiceID); found {
			req.ReferringProvider = referringRef(rp)
		} else {
			log.Warn().Str("referring_provider", name).Msg("referring provider not found, not sent")
		}
	}

	req.Hospitalization = hospitalization(log, first)
	return req, lines[0].ProcedureCode, Result{}, true
}

// referringRef identifies a referring provider by NPI when known, else by
// provider id.
func referringRef(rp *resolve.ReferringProvider) *tebra.ProviderRef {
	ref := &tebra.ProviderRef{FirstName: rp.FirstName, LastName: rp.LastName}
	if rp.NPI != "" {
		ref.NPI = rp.NPI
	} else {
		ref.ProviderID = rp.ProviderID
	}
	return ref
}

func hospitalization(log zerolog.Logger, row *model.Row) *tebra.Hospitalization {
	admit, discharge := row.Get(model.FieldAdmitDate), row.Get(model.FieldDischargeDate)
	switch {
	case blank(admit) && blank(discharge):
		return nil
	case blank(admit) || blank(discharge):
		log.Warn().Msg("both admit and discharge dates are needed, hospitalization not sent")
		return nil
	}
	start, end := normalize.ParseDate(admit), normalize.ParseDate(discharge)
	if start == nil || end == nil {
		log.Warn().Str("admit", admit).Str("discharge", discharge).Msg("invalid hospitalization dates, not sent")
		return nil
	}
	return &tebra.Hospitalization{StartDate: normalize.FormatTimestamp(*start), EndDate: normalize.FormatTimestamp(*end)}
}

func submitFailure(err error) Result {
	f, ok := tebra.AsFault(err)
	if !ok {
		return Failure(fmt.Sprintf("Enc System Error: %v.", err))
	}
	switch f.Kind {
	case tebra.FaultAPI:
		return Failure("Enc API Err: " + simplify.EncounterError(f.Message))
	case tebra.FaultAuth:
		return Failure("Enc API Auth Err: " + f.Message)
	default:
		return Failure(fmt.Sprintf("Enc Failed (Transport Error: %s).", faultMessage(err)))
	}
}

func faultMessage(err error) string {
	if f, ok := tebra.AsFault(err); ok && f.Message != "" {
		return f.Message
	}
	return err.Error()
}
