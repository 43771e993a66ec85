package batch

import (
	"regexp"
	"sort"
	"strings"

	"github.com/gyeh/chargeflow/internal/model"
	"github.com/gyeh/chargeflow/internal/payment"
)

var (
	paymentPosted    = regexp.MustCompile(`Payment #\w+ Posted`)
	encounterCreated = regexp.MustCompile(`Encounter #\w+ Created`)
	failureKeywords  = regexp.MustCompile(`(?i)error|failed|skipped|invalid|unknown`)
)

// Failed reports whether a row message counts as a failure: it mentions a
// failure keyword and shows neither a created encounter nor a posted
// payment. The Phase 2 skip marker for rows without payment data is not a
// failure.
func Failed(message string) bool {
	message = strings.ReplaceAll(message, payment.SkippedMessage, "")
	return failureKeywords.MatchString(message) &&
		!encounterCreated.MatchString(message) &&
		!paymentPosted.MatchString(message)
}

// Finalize writes each row's joined message into its Error cell and fills
// the summary counters and per-row results, ordered by row number.
func Finalize(summary *model.RunSummary, rows []*model.Row) {
	ordered := make([]*model.Row, len(rows))
	copy(ordered, rows)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Number < ordered[j].Number })

	summary.TotalRows = len(rows)
	summary.EncountersCreated = 0
	summary.PaymentsPosted = 0
	summary.FailedRows = 0
	summary.Results = make([]model.RowResult, 0, len(rows))

	for _, row := range ordered {
		msg := row.Message()
		row.Set(model.FieldError, msg)

		if row.Get(model.FieldEncounterID) != "" {
			summary.EncountersCreated++
		}
		if paymentPosted.MatchString(msg) {
			summary.PaymentsPosted++
		}
		if Failed(msg) {
			summary.FailedRows++
		}
		summary.Results = append(summary.Results, model.RowResult{
			RowNumber:    row.Number,
			PracticeName: row.Get(model.FieldPractice),
			PatientID:    row.Get(model.FieldPatientID),
			Results:      msg,
		})
	}
}
