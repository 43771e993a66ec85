package model

import "time"

// RowResult is the per-row entry of a run report.
type RowResult struct {
	RowNumber    int    `json:"row_number"`
	PracticeName string `json:"practice_name"`
	PatientID    string `json:"patient_id"`
	Results      string `json:"results"`
}

// RunSummary captures metrics from a single batch run.
type RunSummary struct {
	RunID             string      `json:"run_id"`
	InputFile         string      `json:"input_file,omitempty"`
	InputSHA256       string      `json:"input_sha256,omitempty"`
	StartedAt         time.Time   `json:"started_at"`
	TotalRows         int         `json:"total_rows"`
	EncounterGroups   int         `json:"encounter_groups"`
	EncountersCreated int         `json:"encounters_created"`
	PaymentsPosted    int         `json:"payments_posted"`
	FailedRows        int         `json:"failed_rows"`
	Results           []RowResult `json:"results"`

	CacheLookups int `json:"-"`
	CacheHits    int `json:"-"`

	DurationEligibility time.Duration `json:"-"`
	DurationPayment     time.Duration `json:"-"`
	DurationEncounters  time.Duration `json:"-"`
	DurationTotal       time.Duration `json:"-"`
}
