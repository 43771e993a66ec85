package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gyeh/chargeflow/internal/model"
	"github.com/gyeh/chargeflow/internal/sheet"
	"github.com/gyeh/chargeflow/internal/tebra"
	"github.com/gyeh/chargeflow/internal/tebra/tebratest"
)

const uploadCSV = `Patient ID,Practice,DOS,Rendering Provider,Encounter Mode,POS,Procedures,Units,Diag 1,PP Batch #,Patient Payment,Patient Payment Source
100,Clinic A,2024-01-05,Jane Doe,Office,11,99213,1,Z00.00,PB-1,$25.00,Cash
100,Clinic A,2024-01-05,Jane Doe,Office,11,90791,1,Z00.00,,,
`

func clinicFake() *tebratest.Fake {
	return &tebratest.Fake{
		Patients: map[int64]*tebra.Patient{
			100: {ID: 100, FirstName: "Ada", LastName: "Lovelace", DOB: "1980-02-03", Cases: []tebra.PatientCase{
				{ID: "300", IsPrimary: true, Policies: []tebra.InsurancePolicy{{PlanName: "Gold", Number: "G1"}}},
			}},
		},
		Practices:   []tebra.Practice{{ID: "7", Name: "Clinic A", Active: true}},
		Locations:   map[string][]tebra.ServiceLocation{"7": {{ID: "40", Name: "Clinic A", PracticeID: "7"}}},
		Providers:   map[string][]tebra.Provider{"7": {{ID: "11", FullName: "Jane Doe", Type: "Physician", Active: true}}},
		PaymentID:   900,
		EncounterID: 555,
		StatusCode:  "1",
		Charges:     []tebra.Charge{{PatientID: "100", EncounterID: "555", TotalCharges: "80.00"}},
	}
}

type fakeRecorder struct {
	started  []uuid.UUID
	finished []*model.RunSummary
	failed   []uuid.UUID
}

func (r *fakeRecorder) Start(_ context.Context, runID uuid.UUID, _, _ string, _ time.Time) error {
	r.started = append(r.started, runID)
	return nil
}

func (r *fakeRecorder) Finish(_ context.Context, s *model.RunSummary, _ []*model.Row) error {
	r.finished = append(r.finished, s)
	return nil
}

func (r *fakeRecorder) Fail(_ context.Context, runID uuid.UUID) error {
	r.failed = append(r.failed, runID)
	return nil
}

func newTestServer(t *testing.T, gw tebra.Gateway, rec Recorder) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	factory := func(tebra.Credentials) (tebra.Gateway, error) { return gw, nil }
	return New(Options{OutputDir: dir, Recorder: rec}, factory, zerolog.Nop()), dir
}

func uploadRequest(t *testing.T, filename, body string, form map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(body))
	}
	for k, v := range form {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/process", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

var creds = map[string]string{"customer_key": "ck", "username": "u", "password": "p"}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, clinicFake(), nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("GET /health = %d %q", rec.Code, rec.Body.String())
	}
}

func TestProcess_ThenDownload(t *testing.T) {
	recorder := &fakeRecorder{}
	s, dir := newTestServer(t, clinicFake(), recorder)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, uploadRequest(t, "charges.csv", uploadCSV, creds))
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/process = %d: %s", rec.Code, rec.Body.String())
	}

	var summary model.RunSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.TotalRows != 2 || summary.EncountersCreated != 2 || summary.PaymentsPosted != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if len(recorder.started) != 1 || len(recorder.finished) != 1 || recorder.started[0].String() != summary.RunID {
		t.Errorf("recorder not driven with run %s: %+v", summary.RunID, recorder)
	}

	if _, err := os.Stat(filepath.Join(dir, summary.RunID+".xlsx")); err != nil {
		t.Fatalf("processed file missing: %v", err)
	}

	dl := httptest.NewRecorder()
	s.Handler().ServeHTTP(dl, httptest.NewRequest(http.MethodGet, "/api/download/"+summary.RunID, nil))
	if dl.Code != http.StatusOK {
		t.Fatalf("GET download = %d", dl.Code)
	}
	if cd := dl.Header().Get("Content-Disposition"); !strings.Contains(cd, "Processed_Tebra_Data_") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	back, err := sheet.ReadFrom(bytes.NewReader(dl.Body.Bytes()), "out.xlsx")
	if err != nil {
		t.Fatalf("read downloaded workbook: %v", err)
	}
	if got := back.Rows[0].Get(model.FieldEncounterID); got != "555" {
		t.Errorf("Encounter ID in download = %q", got)
	}
}

func TestProcess_BadRequests(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		body     string
		form     map[string]string
		want     string
	}{
		{"no file", "", "", creds, "No file part"},
		{"no credentials", "charges.csv", uploadCSV, map[string]string{"customer_key": "ck"}, "Missing Tebra credentials"},
		{"missing columns", "charges.csv", "Patient ID,Practice\n100,Clinic A\n", creds, "File validation failed"},
		{"unsupported type", "charges.txt", uploadCSV, creds, "File validation failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := clinicFake()
			s, _ := newTestServer(t, fake, nil)
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, uploadRequest(t, tt.filename, tt.body, tt.form))

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body %q does not contain %q", rec.Body.String(), tt.want)
			}
			if fake.TotalCalls() != 0 {
				t.Errorf("expected no gateway calls, got %d", fake.TotalCalls())
			}
		})
	}
}

func TestProcess_GatewayFactoryError(t *testing.T) {
	factory := func(tebra.Credentials) (tebra.Gateway, error) { return nil, errors.New("bad endpoint") }
	s := New(Options{OutputDir: t.TempDir()}, factory, zerolog.Nop())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, uploadRequest(t, "charges.csv", uploadCSV, creds))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestProcess_RunErrorMarksLedgerFailed(t *testing.T) {
	recorder := &fakeRecorder{}
	factory := func(tebra.Credentials) (tebra.Gateway, error) { return nil, nil }
	s := New(Options{OutputDir: t.TempDir(), Recorder: recorder}, factory, zerolog.Nop())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, uploadRequest(t, "charges.csv", uploadCSV, creds))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if len(recorder.started) != 1 || len(recorder.failed) != 1 || recorder.failed[0] != recorder.started[0] {
		t.Errorf("run not marked failed: %+v", recorder)
	}
	if len(recorder.finished) != 0 {
		t.Errorf("failed run was finished: %+v", recorder.finished)
	}
}

func TestProcess_WriteErrorMarksLedgerFailed(t *testing.T) {
	recorder := &fakeRecorder{}
	notADir := filepath.Join(t.TempDir(), "output")
	if err := os.WriteFile(notADir, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	factory := func(tebra.Credentials) (tebra.Gateway, error) { return clinicFake(), nil }
	s := New(Options{OutputDir: notADir, Recorder: recorder}, factory, zerolog.Nop())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, uploadRequest(t, "charges.csv", uploadCSV, creds))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if len(recorder.failed) != 1 || len(recorder.finished) != 0 {
		t.Errorf("run not marked failed: %+v", recorder)
	}
}

func TestProcess_CompletesAfterClientGoesAway(t *testing.T) {
	fake := clinicFake()
	s, dir := newTestServer(t, fake, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := uploadRequest(t, "charges.csv", uploadCSV, creds).WithContext(ctx)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/process = %d: %s", rec.Code, rec.Body.String())
	}
	var summary model.RunSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.PaymentsPosted != 1 || summary.EncountersCreated != 2 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(dir, summary.RunID+".xlsx")); err != nil {
		t.Errorf("processed file missing: %v", err)
	}
}

func TestDownload_Errors(t *testing.T) {
	s, _ := newTestServer(t, clinicFake(), nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/download/not-a-run", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/download/"+uuid.NewString(), nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown run status = %d, want 404", rec.Code)
	}
}
