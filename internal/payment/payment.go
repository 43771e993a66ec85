// Package payment implements Phase 2: posting an optional patient payment
// for a row.
package payment

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gyeh/chargeflow/internal/model"
	"github.com/gyeh/chargeflow/internal/normalize"
	"github.com/gyeh/chargeflow/internal/resolve"
	"github.com/gyeh/chargeflow/internal/tebra"
)

// Outcome classifies a Phase 2 attempt.
type Outcome int

const (
	OutcomeSkipped Outcome = iota
	OutcomePosted
	OutcomeInvalid
	OutcomeUnresolved
	OutcomeAPIError
	OutcomeAuthError
	OutcomeTransport
	OutcomeUnclear
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomePosted:
		return "posted"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeUnresolved:
		return "unresolved"
	case OutcomeAPIError:
		return "api error"
	case OutcomeAuthError:
		return "auth error"
	case OutcomeTransport:
		return "transport fault"
	case OutcomeUnclear:
		return "unclear"
	default:
		return "unknown"
	}
}

// SkippedMessage marks a row that carries no payment.
const SkippedMessage = "P2 Skipped: No payment batch, amount or source."

// Input holds the payment cells of one row.
type Input struct {
	PatientID string
	Practice  string
	Batch     string
	Amount    string
	Source    string
	Reference string
}

// InputFromRow reads the payment cells of row.
func InputFromRow(row *model.Row) Input {
	return Input{
		PatientID: row.Get(model.FieldPatientID),
		Practice:  row.Get(model.FieldPractice),
		Batch:     row.Get(model.FieldPaymentBatch),
		Amount:    row.Get(model.FieldPatientPayment),
		Source:    row.Get(model.FieldPaymentSource),
		Reference: row.Get(model.FieldReferenceNumber),
	}
}

// HasPayment reports whether the batch, amount and source cells are all
// filled in.
func (in Input) HasPayment() bool {
	return !blank(in.Batch) && !blank(in.Amount) && !blank(in.Source)
}

// Result is the Phase 2 outcome for one row.
type Result struct {
	Outcome   Outcome
	PaymentID string
	Message   string
}

// Apply records the result on row.
func (r Result) Apply(row *model.Row) {
	if r.Outcome == OutcomePosted {
		row.PaymentID = r.PaymentID
	}
	row.AddMessage(r.Message)
}

// Poster posts patient payments.
type Poster struct {
	gw       tebra.Gateway
	resolver *resolve.Resolver
	log      zerolog.Logger
}

// NewPoster creates a Poster. Practice ids are resolved through resolver so
// they share the run's cache.
func NewPoster(gw tebra.Gateway, resolver *resolve.Resolver, log zerolog.Logger) *Poster {
	return &Poster{gw: gw, resolver: resolver, log: log.With().Str("phase", "payment").Logger()}
}

// Post validates in and, when it carries a payment, posts it. Input
// problems are reported before any remote call is made.
func (p *Poster) Post(ctx context.Context, in Input) Result {
	if !in.HasPayment() {
		return Result{Outcome: OutcomeSkipped, Message: SkippedMessage}
	}

	log := p.log.With().Str("patient_id", in.PatientID).Str("batch", in.Batch).Logger()

	cents, err := normalize.ParseAmountCents(in.Amount)
	if err != nil {
		return p.invalid(log, fmt.Sprintf("P2 Invalid: Payment amount format '%s'.", in.Amount))
	}
	if cents <= 0 {
		return p.invalid(log, fmt.Sprintf("P2 Invalid: Payment amount $%s must be > 0.", normalize.FormatCents(cents)))
	}
	method, ok := ParseMethod(in.Source)
	if !ok {
		return p.invalid(log, fmt.Sprintf("P2 Invalid: Unmapped payment source '%s'.", in.Source))
	}
	patientID, err := normalize.ParseID(in.PatientID)
	if err != nil || patientID <= 0 {
		return p.invalid(log, fmt.Sprintf("P2 Invalid: Patient ID '%s'.", in.PatientID))
	}

	practiceID, ok := p.resolver.PracticeID(ctx, in.Practice)
	if !ok {
		msg := fmt.Sprintf("P2 Error: Practice ID for '%s' (payment) not found.", in.Practice)
		log.Error().Str("practice", in.Practice).Msg(msg)
		return Result{Outcome: OutcomeUnresolved, Message: msg}
	}

	req := tebra.PaymentRequest{
		PracticeID:      practiceID,
		PracticeName:    strings.TrimSpace(in.Practice),
		PatientID:       patientID,
		BatchNumber:     strings.TrimSpace(in.Batch),
		AmountPaid:      normalize.FormatCents(cents),
		PaymentMethod:   int(method),
		ReferenceNumber: strings.TrimSpace(in.Reference),
	}
	log.Info().Str("practice_id", practiceID).Str("amount", req.AmountPaid).Stringer("method", method).Msg("posting payment")

	id, err := p.gw.CreatePayment(ctx, req)
	if err != nil {
		res := faultResult(err)
		log.Error().Err(err).Stringer("outcome", res.Outcome).Msg("payment failed")
		return res
	}
	if id <= 0 {
		log.Warn().Msg("payment response carried neither an id nor an error")
		return Result{Outcome: OutcomeUnclear, Message: "P2 Status Unknown (response unclear)."}
	}

	pid := strconv.FormatInt(id, 10)
	log.Info().Str("payment_id", pid).Msg("payment posted")
	return Result{Outcome: OutcomePosted, PaymentID: pid, Message: fmt.Sprintf("Payment #%s Posted.", pid)}
}

func (p *Poster) invalid(log zerolog.Logger, msg string) Result {
	log.Warn().Msg(msg)
	return Result{Outcome: OutcomeInvalid, Message: msg}
}

func faultResult(err error) Result {
	f, ok := tebra.AsFault(err)
	if !ok {
		return Result{Outcome: OutcomeTransport, Message: "P2 Failed (System Error)."}
	}
	switch f.Kind {
	case tebra.FaultAPI:
		return Result{Outcome: OutcomeAPIError, Message: fmt.Sprintf("P2 API Error (%s...)", truncate(f.Message, 70))}
	case tebra.FaultAuth:
		return Result{Outcome: OutcomeAuthError, Message: "P2 API Auth Error."}
	default:
		return Result{Outcome: OutcomeTransport, Message: "P2 Failed (Transport Error)."}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return strings.TrimSpace(string(r))
}

func blank(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "nan")
}
