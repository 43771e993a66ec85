package eligibility

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/gyeh/chargeflow/internal/model"
	"github.com/gyeh/chargeflow/internal/tebra"
	"github.com/gyeh/chargeflow/internal/tebra/tebratest"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestSelectPolicy_ByDOS(t *testing.T) {
	policies := []tebra.InsurancePolicy{
		{PlanName: "First", EffectiveStartDate: "2024-01-01", EffectiveEndDate: "2024-06-30"},
		{PlanName: "Second", EffectiveStartDate: "2024-07-01"},
	}
	tests := []struct {
		dos  string
		want string
	}{
		{dos: "2024-08-01", want: "Second"},
		{dos: "2024-03-01", want: "First"},
		{dos: "2024-06-30", want: "First"},
		{dos: "2023-12-31", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.dos, func(t *testing.T) {
			p, ok := SelectPolicy(policies, date(tt.dos))
			if tt.want == "" {
				if ok {
					t.Fatalf("expected no policy, got %q", p.PlanName)
				}
				return
			}
			if !ok || p.PlanName != tt.want {
				t.Errorf("got %q (%v), want %q", p.PlanName, ok, tt.want)
			}
		})
	}
}

func TestActiveOn_Edges(t *testing.T) {
	dos := date("2024-05-01")
	tests := []struct {
		name   string
		policy tebra.InsurancePolicy
		want   bool
	}{
		{name: "no dates", policy: tebra.InsurancePolicy{}, want: true},
		{name: "end only", policy: tebra.InsurancePolicy{EffectiveEndDate: "2025-01-01"}, want: false},
		{name: "bad start", policy: tebra.InsurancePolicy{EffectiveStartDate: "soon"}, want: false},
		{name: "bad end", policy: tebra.InsurancePolicy{EffectiveStartDate: "2024-01-01", EffectiveEndDate: "later"}, want: false},
		{name: "timestamp dates", policy: tebra.InsurancePolicy{EffectiveStartDate: "2024-05-01T00:00:00", EffectiveEndDate: "2024-05-01T00:00:00"}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ActiveOn(tt.policy, dos); got != tt.want {
				t.Errorf("ActiveOn = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInsuranceName_Fallbacks(t *testing.T) {
	if got := InsuranceName(tebra.InsurancePolicy{PlanName: "Gold", CompanyName: "Acme"}); got != "Gold" {
		t.Errorf("got %q", got)
	}
	if got := InsuranceName(tebra.InsurancePolicy{CompanyName: "Acme"}); got != "Acme" {
		t.Errorf("got %q", got)
	}
	if got := InsuranceName(tebra.InsurancePolicy{}); got != "N/A" {
		t.Errorf("got %q", got)
	}
}

func testPatient() *tebra.Patient {
	return &tebra.Patient{
		ID: 100, FirstName: "Ada", LastName: "Lovelace", DOB: "1980-02-03T00:00:00",
		Cases: []tebra.PatientCase{
			{ID: "1", Name: "Old", Policies: []tebra.InsurancePolicy{{PlanName: "Wrong"}}},
			{ID: "2", Name: "Primary", IsPrimary: true, Policies: []tebra.InsurancePolicy{
				{PlanName: "Gold PPO", Number: "G-1", EffectiveStartDate: "2024-01-01"},
			}},
		},
	}
}

func TestFetch(t *testing.T) {
	fake := &tebratest.Fake{Patients: map[int64]*tebra.Patient{
		100: testPatient(),
		101: {ID: 101, FirstName: "No", LastName: "Cases"},
		102: {ID: 102, FirstName: "No", LastName: "Policies", Cases: []tebra.PatientCase{{ID: "5"}}},
		103: {ID: 103, FirstName: "Lapsed", LastName: "Cover", Cases: []tebra.PatientCase{{ID: "6", Policies: []tebra.InsurancePolicy{
			{PlanName: "Old", EffectiveStartDate: "2020-01-01", EffectiveEndDate: "2020-12-31"},
		}}}},
	}}
	f := NewFetcher(fake, zerolog.Nop())

	tests := []struct {
		name      string
		patientID string
		dos       string
		want      Result
	}{
		{
			name: "active", patientID: "100", dos: "2024-08-01",
			want: Result{PatientName: "Ada Lovelace", DOB: "1980-02-03", InsuranceName: "Gold PPO", InsuranceID: "G-1", Status: StatusActive},
		},
		{
			name: "decimal patient id", patientID: "100.0", dos: "08/01/2024",
			want: Result{PatientName: "Ada Lovelace", DOB: "1980-02-03", InsuranceName: "Gold PPO", InsuranceID: "G-1", Status: StatusActive},
		},
		{
			name: "dos missing still fetches demographics", patientID: "100",
			want: Result{PatientName: "Ada Lovelace", DOB: "1980-02-03", Status: StatusDOSMissing},
		},
		{
			name: "invalid dos", patientID: "100", dos: "someday",
			want: Result{PatientName: "Ada Lovelace", DOB: "1980-02-03", Status: StatusInvalidDOS, Detail: "Invalid DOS 'someday'."},
		},
		{
			name: "no case", patientID: "101", dos: "2024-08-01",
			want: Result{PatientName: "No Cases", Status: StatusNoCase},
		},
		{
			name: "no policies", patientID: "102", dos: "2024-08-01",
			want: Result{PatientName: "No Policies", Status: StatusNoPolicies},
		},
		{
			name: "no active policy", patientID: "103", dos: "2024-08-01",
			want: Result{PatientName: "Lapsed Cover", Status: StatusNoActivePolicy},
		},
		{
			name: "not found", patientID: "999", dos: "2024-08-01",
			want: Result{Status: StatusPatientNotFound, Detail: "Patient data not in API resp."},
		},
		{
			name: "missing id", patientID: " ",
			want: Result{Status: StatusPatientIDMissing, Detail: "Patient ID is missing."},
		},
		{
			name: "invalid id", patientID: "abc",
			want: Result{Status: StatusInvalidPatientID, Detail: "Invalid Patient ID format: 'abc'."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Fetch(context.Background(), tt.patientID, "Clinic A", tt.dos)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Fetch mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFetch_FaultsMapToStatuses(t *testing.T) {
	tests := []struct {
		err  error
		want Status
	}{
		{err: tebratest.APIError("GetPatient", "boom"), want: StatusAPIError},
		{err: tebratest.AuthError("GetPatient"), want: StatusAuthError},
		{err: tebratest.TransportError("GetPatient"), want: StatusSystemError},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			f := NewFetcher(&tebratest.Fake{PatientErr: tt.err}, zerolog.Nop())
			got := f.Fetch(context.Background(), "100", "Clinic A", "2024-08-01")
			if got.Status != tt.want || got.Detail == "" {
				t.Errorf("got %+v, want status %q with detail", got, tt.want)
			}
		})
	}
}

func TestFetch_InvalidIDMakesNoRemoteCall(t *testing.T) {
	fake := &tebratest.Fake{}
	NewFetcher(fake, zerolog.Nop()).Fetch(context.Background(), "12x", "Clinic A", "2024-08-01")
	if fake.TotalCalls() != 0 {
		t.Errorf("remote calls = %d, want 0", fake.TotalCalls())
	}
}

func TestResult_Apply(t *testing.T) {
	row := model.NewRow(2, model.ColumnMap{model.FieldInsuranceStatus: "Ins Status"}, nil)
	Result{PatientName: "Ada Lovelace", Status: StatusActive}.Apply(row)
	Result{Status: StatusAPIError, Detail: "API Err(GetPt): boom"}.Apply(row)

	if got := row.Cell("Ins Status"); got != string(StatusAPIError) {
		t.Errorf("Ins Status = %q", got)
	}
	want := "P1 Status: Active; P1 Error: API Err(GetPt): boom"
	if got := row.Message(); got != want {
		t.Errorf("Message = %q, want %q", got, want)
	}
}
