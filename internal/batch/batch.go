// Package batch sequences the three billing phases over a sheet of rows
// and aggregates their outcomes into a run summary.
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gyeh/chargeflow/internal/eligibility"
	"github.com/gyeh/chargeflow/internal/encounter"
	"github.com/gyeh/chargeflow/internal/logging"
	"github.com/gyeh/chargeflow/internal/model"
	"github.com/gyeh/chargeflow/internal/payment"
	"github.com/gyeh/chargeflow/internal/progress"
	"github.com/gyeh/chargeflow/internal/resolve"
	"github.com/gyeh/chargeflow/internal/tebra"
)

// SkippedMissingKeys is written to rows that lack a patient id or practice.
const SkippedMissingKeys = "Skipped (Ph1/2): Patient ID or Practice Name missing."

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Options configure one run.
type Options struct {
	// RunID identifies the run; a random UUID is used when empty.
	RunID       string
	InputFile   string
	InputSHA256 string
	Match       resolve.MatchConfig
	Progress    progress.Manager
}

type runner struct {
	log      zerolog.Logger
	resolver *resolve.Resolver
	fetcher  *eligibility.Fetcher
	poster   *payment.Poster
	builder  *encounter.Builder
	summary  *model.RunSummary
}

// Run executes Phase 1 and Phase 2 for every row, then Phase 3 for every
// encounter group, mutating rows in place. Unit-of-work failures are
// recorded on the rows. A run always visits every row and group: once ctx
// is done, each remaining remote call fails as a transport fault on its own
// unit of work. An error is returned only when the run cannot start.
func Run(ctx context.Context, rows []*model.Row, gw tebra.Gateway, log zerolog.Logger, opts Options) (*model.RunSummary, error) {
	if gw == nil {
		return nil, &PipelineError{Phase: "setup", Err: errors.New("no gateway configured")}
	}
	totalStart := time.Now()

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	log = log.With().Str("run_id", runID).Logger()
	pm := opts.Progress
	if pm == nil {
		pm = &progress.NoopManager{}
	}

	cache := resolve.NewCache()
	resolver := resolve.New(gw, cache, opts.Match, log)
	r := &runner{
		log:      log,
		resolver: resolver,
		fetcher:  eligibility.NewFetcher(gw, logging.Phase(log, "eligibility")),
		poster:   payment.NewPoster(gw, resolver, logging.Phase(log, "payment")),
		builder:  encounter.NewBuilder(gw, resolver, logging.Phase(log, "encounter")),
		summary: &model.RunSummary{
			RunID:       runID,
			InputFile:   opts.InputFile,
			InputSHA256: opts.InputSHA256,
			StartedAt:   totalStart.UTC(),
			TotalRows:   len(rows),
		},
	}

	log.Info().Int("rows", len(rows)).Str("file", opts.InputFile).Msg("starting run")

	// Phases 1 and 2
	tr := pm.NewTracker(0, 2, "rows")
	tr.SetStage("eligibility + payments")
	for i, row := range rows {
		r.rowPhases(ctx, row)
		tr.SetProgress(int64(i+1), int64(len(rows)))
	}
	tr.Done()

	// Phase 3
	groups := encounter.GroupRows(rows)
	r.summary.EncounterGroups = len(groups)
	log.Info().Int("groups", len(groups)).Msg("starting encounters")

	tr = pm.NewTracker(1, 2, "encounters")
	tr.SetStage("creating encounters")
	created := 0
	start := time.Now()
	for i, g := range groups {
		res := r.groupPhase(ctx, g)
		for _, row := range g.Rows {
			res.Apply(row)
		}
		if res.Created() {
			created++
			tr.SetCounter("created", int64(created))
		}
		tr.SetProgress(int64(i+1), int64(len(groups)))
	}
	r.summary.DurationEncounters = time.Since(start)
	tr.Done()
	pm.Wait()

	if err := ctx.Err(); err != nil {
		log.Warn().Err(err).Msg("run context done before completion, remaining calls recorded as transport faults")
	}

	Finalize(r.summary, rows)
	r.summary.CacheLookups, r.summary.CacheHits = cache.Stats()
	r.summary.DurationTotal = time.Since(totalStart)

	log.Info().
		Int("total_rows", r.summary.TotalRows).
		Int("groups", r.summary.EncounterGroups).
		Int("encounters_created", r.summary.EncountersCreated).
		Int("payments_posted", r.summary.PaymentsPosted).
		Int("failed_rows", r.summary.FailedRows).
		Int("cache_lookups", r.summary.CacheLookups).
		Int("cache_hits", r.summary.CacheHits).
		Str("total_duration", r.summary.DurationTotal.String()).
		Msg("run complete")

	return r.summary, nil
}

func (r *runner) rowPhases(ctx context.Context, row *model.Row) {
	patientID := row.Get(model.FieldPatientID)
	practice := row.Get(model.FieldPractice)
	if patientID == "" || practice == "" {
		row.AddMessage(SkippedMissingKeys)
		r.log.Debug().Int("row", row.Number).Msg("row skipped, patient id or practice missing")
		return
	}

	start := time.Now()
	r.fetcher.Fetch(ctx, patientID, practice, row.Get(model.FieldDOS)).Apply(row)
	r.summary.DurationEligibility += time.Since(start)

	start = time.Now()
	r.poster.Post(ctx, payment.InputFromRow(row)).Apply(row)
	r.summary.DurationPayment += time.Since(start)
}

func (r *runner) groupPhase(ctx context.Context, g *encounter.Group) encounter.Result {
	practiceID, ok := r.resolver.PracticeID(ctx, g.Key.Practice)
	if !ok {
		msg := fmt.Sprintf("P3 Error: Practice ID for '%s' (enc) not found.", g.Key.Practice)
		r.log.Error().Str("group", g.Key.String()).Msg(msg)
		return encounter.Failure(msg)
	}
	return r.builder.Process(ctx, g, practiceID)
}
