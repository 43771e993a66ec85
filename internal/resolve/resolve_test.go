package resolve

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/gyeh/chargeflow/internal/tebra"
	"github.com/gyeh/chargeflow/internal/tebra/tebratest"
)

func newTestResolver(gw tebra.Gateway) *Resolver {
	return New(gw, NewCache(), DefaultMatchConfig(), zerolog.Nop())
}

func TestPracticeID_CachedAcrossSpellings(t *testing.T) {
	fake := &tebratest.Fake{Practices: []tebra.Practice{{ID: "7", Name: "Acme Clinic", Active: true}}}
	r := newTestResolver(fake)
	ctx := context.Background()

	for _, name := range []string{"Acme Clinic", " ACME CLINIC ", "acme   clinic"} {
		id, ok := r.PracticeID(ctx, name)
		if !ok || id != "7" {
			t.Fatalf("PracticeID(%q) = %q, %v; want 7, true", name, id, ok)
		}
	}
	if got := fake.Calls("GetPractices"); got != 1 {
		t.Errorf("GetPractices calls = %d, want 1", got)
	}
	lookups, hits := r.Cache().Stats()
	if lookups != 3 || hits != 2 {
		t.Errorf("Stats = (%d, %d), want (3, 2)", lookups, hits)
	}
}

func TestPracticeID_PrefersActive(t *testing.T) {
	fake := &tebratest.Fake{Practices: []tebra.Practice{
		{ID: "1", Name: "Acme Clinic", Active: false},
		{ID: "2", Name: "Acme Clinic", Active: true},
	}}
	id, ok := newTestResolver(fake).PracticeID(context.Background(), "Acme Clinic")
	if !ok || id != "2" {
		t.Errorf("got %q, %v; want 2, true", id, ok)
	}
}

func TestPracticeID_InactiveOnlyAccepted(t *testing.T) {
	fake := &tebratest.Fake{Practices: []tebra.Practice{{ID: "1", Name: "Acme Clinic"}}}
	id, ok := newTestResolver(fake).PracticeID(context.Background(), "Acme Clinic")
	if !ok || id != "1" {
		t.Errorf("got %q, %v; want 1, true", id, ok)
	}
}

func TestPracticeID_NegativeCached(t *testing.T) {
	fake := &tebratest.Fake{Practices: []tebra.Practice{{ID: "1", Name: "Acme Clinic West", Active: true}}}
	r := newTestResolver(fake)
	for i := 0; i < 3; i++ {
		if id, ok := r.PracticeID(context.Background(), "Acme Clinic"); ok {
			t.Fatalf("unexpected match %q", id)
		}
	}
	if got := fake.Calls("GetPractices"); got != 1 {
		t.Errorf("GetPractices calls = %d, want 1", got)
	}
}

func TestPracticeID_FaultIsNotFound(t *testing.T) {
	fake := &tebratest.Fake{PracticesErr: tebratest.TransportError("GetPractices")}
	r := newTestResolver(fake)
	if _, ok := r.PracticeID(context.Background(), "Acme"); ok {
		t.Fatal("expected not found")
	}
	r.PracticeID(context.Background(), "Acme")
	if got := fake.Calls("GetPractices"); got != 1 {
		t.Errorf("GetPractices calls = %d, want 1", got)
	}
}

func TestPracticeID_EmptyNameSkipsLookup(t *testing.T) {
	fake := &tebratest.Fake{}
	if _, ok := newTestResolver(fake).PracticeID(context.Background(), "  "); ok {
		t.Fatal("expected not found")
	}
	if fake.TotalCalls() != 0 {
		t.Errorf("expected no remote calls, got %d", fake.TotalCalls())
	}
}

func TestServiceLocationID_ScopedToPractice(t *testing.T) {
	fake := &tebratest.Fake{Locations: map[string][]tebra.ServiceLocation{
		"7": {
			{ID: "90", Name: "Main Office", PracticeID: "8"},
			{ID: "91", Name: "Main Office", PracticeID: "7"},
		},
	}}
	id, ok := newTestResolver(fake).ServiceLocationID(context.Background(), "main office", "7")
	if !ok || id != "91" {
		t.Errorf("got %q, %v; want 91, true", id, ok)
	}
}

func TestProviderID_ExactThenFuzzy(t *testing.T) {
	fake := &tebratest.Fake{Providers: map[string][]tebra.Provider{
		"7": {
			{ID: "10", FullName: "Jane Q Doe", Type: "Referring Provider", Active: true},
			{ID: "11", FullName: "Jane Doe, MD", Type: "Normal Provider", Active: true},
			{ID: "12", FullName: "John Smith", Type: "Physician", Active: false},
			{ID: "13", FullName: "Mary Major", Type: "Physician", Active: true},
		},
	}}
	r := newTestResolver(fake)
	ctx := context.Background()

	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{name: "Jane Doe, MD", want: "11", wantOK: true},
		{name: "Dr. Jane Doe", want: "11", wantOK: true},
		{name: "Mary Major DO", want: "13", wantOK: true},
		{name: "John Smith", wantOK: false},
		{name: "Jane Roe", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.ProviderID(ctx, tt.name, "7", nil)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ProviderID(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestMatchProvider_TieKeepsFirst(t *testing.T) {
	providers := []tebra.Provider{
		{ID: "1", FullName: "Alex Kim Lee", Type: "Physician", Active: true},
		{ID: "2", FullName: "Alex Kim Park", Type: "Physician", Active: true},
	}
	p, score, ok := MatchProvider(providers, "Alex Kim", []string{"physician"}, nil, 0.8)
	if !ok || p.ID != "1" || score != 1 {
		t.Errorf("got %q score %v ok %v; want 1 score 1", p.ID, score, ok)
	}
}

func TestReferringProvider_SplitsNameAndKeepsNPI(t *testing.T) {
	fake := &tebratest.Fake{Providers: map[string][]tebra.Provider{
		"7": {
			{ID: "20", FullName: "Sam Referral", Type: "Normal Provider", Active: true},
			{ID: "21", FullName: "Sam Referral", Type: "Referring Provider", Active: true, NPI: "1234567890"},
		},
	}}
	got, ok := newTestResolver(fake).ReferringProvider(context.Background(), "sam referral", "7")
	if !ok {
		t.Fatal("expected a referring provider")
	}
	want := &ReferringProvider{ProviderID: "21", FirstName: "Sam", LastName: "Referral", NPI: "1234567890"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReferringProvider mismatch (-want +got):\n%s", diff)
	}
}

func TestReferringProvider_SharesCacheStatsButNotKeys(t *testing.T) {
	fake := &tebratest.Fake{Providers: map[string][]tebra.Provider{
		"7": {{ID: "21", FullName: "Sam Referral", Type: "Referring Provider", Active: true}},
	}}
	r := newTestResolver(fake)
	ctx := context.Background()
	r.ReferringProvider(ctx, "Sam Referral", "7")
	r.ReferringProvider(ctx, "Sam Referral", "7")
	if _, ok := r.ProviderID(ctx, "Sam Referral", "7", nil); ok {
		t.Error("referring provider must not satisfy a rendering lookup")
	}
	if got := fake.Calls("GetProviders"); got != 2 {
		t.Errorf("GetProviders calls = %d, want 2", got)
	}
}

func TestCaseID(t *testing.T) {
	fake := &tebratest.Fake{Patients: map[int64]*tebra.Patient{
		1: {ID: 1, Cases: []tebra.PatientCase{{ID: "100"}, {ID: "101", IsPrimary: true}}},
		2: {ID: 2, Cases: []tebra.PatientCase{{ID: "", IsPrimary: true}, {ID: "200"}}},
		3: {ID: 3},
	}}
	r := newTestResolver(fake)
	ctx := context.Background()

	cases := map[int64]string{1: "101", 2: "200", 3: "", 4: ""}
	for pid, want := range cases {
		got, ok := r.CaseID(ctx, pid)
		if got != want || ok != (want != "") {
			t.Errorf("CaseID(%d) = %q, %v; want %q", pid, got, ok, want)
		}
	}
	r.CaseID(ctx, 1)
	if got := fake.Calls("GetPatient"); got != 4 {
		t.Errorf("GetPatient calls = %d, want 4", got)
	}
}
