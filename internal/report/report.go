// Package report writes run summaries as JSON, optionally gzip-compressed,
// and uploads run artifacts to S3.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/pgzip"

	"github.com/gyeh/chargeflow/internal/model"
)

// WriteJSON encodes summary as indented JSON.
func WriteJSON(w io.Writer, summary *model.RunSummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}

// WriteFile writes summary to path. A ".gz" suffix compresses the output.
func WriteFile(path string, summary *model.RunSummary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary file: %w", err)
	}

	if !isGzip(path) {
		if err := WriteJSON(f, summary); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}

	zw := pgzip.NewWriter(f)
	if err := WriteJSON(zw, summary); err != nil {
		zw.Close()
		f.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("flush gzip: %w", err)
	}
	return f.Close()
}

// ReadFile loads a summary written by WriteFile.
func ReadFile(path string) (*model.RunSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open summary file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if isGzip(path) {
		zr, err := pgzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	var s model.RunSummary
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return &s, nil
}

func isGzip(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".gz")
}

// Print writes a short human-readable report of a run.
func Print(w io.Writer, s *model.RunSummary) {
	fmt.Fprintln(w, "=== chargeflow run ===")
	fmt.Fprintf(w, "Run:                %s\n", s.RunID)
	if s.InputFile != "" {
		fmt.Fprintf(w, "File:               %s\n", s.InputFile)
	}
	fmt.Fprintf(w, "Rows:               %d\n", s.TotalRows)
	fmt.Fprintf(w, "Encounter groups:   %d\n", s.EncounterGroups)
	fmt.Fprintf(w, "Encounters created: %d rows\n", s.EncountersCreated)
	fmt.Fprintf(w, "Payments posted:    %d\n", s.PaymentsPosted)
	fmt.Fprintf(w, "Failed rows:        %d\n", s.FailedRows)
	if s.CacheLookups > 0 {
		fmt.Fprintf(w, "Lookup cache:       %d hits / %d lookups\n", s.CacheHits, s.CacheLookups)
	}
	fmt.Fprintf(w, "Duration:           %.1fs (eligibility %.1fs, payments %.1fs, encounters %.1fs)\n",
		s.DurationTotal.Seconds(), s.DurationEligibility.Seconds(),
		s.DurationPayment.Seconds(), s.DurationEncounters.Seconds())
}
