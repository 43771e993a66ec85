package payment

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/gyeh/chargeflow/internal/model"
	"github.com/gyeh/chargeflow/internal/resolve"
	"github.com/gyeh/chargeflow/internal/tebra"
	"github.com/gyeh/chargeflow/internal/tebra/tebratest"
)

func newPoster(fake *tebratest.Fake) *Poster {
	if fake.Practices == nil {
		fake.Practices = []tebra.Practice{{ID: "7", Name: "Clinic A", Active: true}}
	}
	r := resolve.New(fake, resolve.NewCache(), resolve.DefaultMatchConfig(), zerolog.Nop())
	return NewPoster(fake, r, zerolog.Nop())
}

func validInput() Input {
	return Input{PatientID: "100", Practice: "Clinic A", Batch: "B-1", Amount: "$1,234.56", Source: "credit card", Reference: " R9 "}
}

func TestParseMethod(t *testing.T) {
	tests := map[string]Method{
		"check":                     MethodCheck,
		"CC":                        MethodCreditCard,
		" Credit  Card ":            MethodCreditCard,
		"eft":                       MethodEFT,
		"Electronic Funds Transfer": MethodEFT,
		"Cash":                      MethodCash,
	}
	for in, want := range tests {
		got, ok := ParseMethod(in)
		if !ok || got != want {
			t.Errorf("ParseMethod(%q) = %v, %v; want %v", in, got, ok, want)
		}
	}
	if _, ok := ParseMethod("bitcoin"); ok {
		t.Error("expected bitcoin to be unmapped")
	}
}

func TestPost_Success(t *testing.T) {
	fake := &tebratest.Fake{PaymentID: 555}
	got := newPoster(fake).Post(context.Background(), validInput())

	want := Result{Outcome: OutcomePosted, PaymentID: "555", Message: "Payment #555 Posted."}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Post mismatch (-want +got):\n%s", diff)
	}
	wantReq := []tebra.PaymentRequest{{
		PracticeID: "7", PracticeName: "Clinic A", PatientID: 100, BatchNumber: "B-1",
		AmountPaid: "1234.56", PaymentMethod: 3, ReferenceNumber: "R9",
	}}
	if diff := cmp.Diff(wantReq, fake.Payments); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestPost_Skipped(t *testing.T) {
	for _, in := range []Input{
		{PatientID: "100", Practice: "Clinic A", Amount: "10", Source: "cash"},
		{PatientID: "100", Practice: "Clinic A", Batch: "B", Source: "cash"},
		{PatientID: "100", Practice: "Clinic A", Batch: "B", Amount: "nan", Source: "cash"},
		{PatientID: "100", Practice: "Clinic A", Batch: "B", Amount: "10"},
	} {
		fake := &tebratest.Fake{}
		got := newPoster(fake).Post(context.Background(), in)
		if got.Outcome != OutcomeSkipped || got.Message != SkippedMessage {
			t.Errorf("Post(%+v) = %+v, want skipped", in, got)
		}
		if fake.TotalCalls() != 0 {
			t.Errorf("skipped payment made %d remote calls", fake.TotalCalls())
		}
	}
}

func TestPost_InvalidInputsMakeNoRemoteCalls(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		source string
		want   string
	}{
		{name: "zero", amount: "0", source: "cash", want: "P2 Invalid: Payment amount $0.00 must be > 0."},
		{name: "negative", amount: "-5", source: "cash", want: "P2 Invalid: Payment amount $-5.00 must be > 0."},
		{name: "garbage", amount: "ten", source: "cash", want: "P2 Invalid: Payment amount format 'ten'."},
		{name: "source", amount: "10", source: "Barter", want: "P2 Invalid: Unmapped payment source 'Barter'."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &tebratest.Fake{PaymentID: 1}
			in := validInput()
			in.Amount, in.Source = tt.amount, tt.source
			got := newPoster(fake).Post(context.Background(), in)
			if got.Outcome != OutcomeInvalid || got.Message != tt.want {
				t.Errorf("got %+v, want message %q", got, tt.want)
			}
			if fake.TotalCalls() != 0 {
				t.Errorf("remote calls = %d, want 0", fake.TotalCalls())
			}
		})
	}
}

func TestPost_PracticeNotFound(t *testing.T) {
	fake := &tebratest.Fake{Practices: []tebra.Practice{}}
	got := newPoster(fake).Post(context.Background(), validInput())
	if got.Outcome != OutcomeUnresolved {
		t.Fatalf("outcome = %v", got.Outcome)
	}
	if got.Message != "P2 Error: Practice ID for 'Clinic A' (payment) not found." {
		t.Errorf("message = %q", got.Message)
	}
	if fake.Calls("CreatePayment") != 0 {
		t.Error("payment must not be posted without a practice")
	}
}

func TestPost_Failures(t *testing.T) {
	long := strings.Repeat("x", 100)
	tests := []struct {
		name    string
		err     error
		id      int64
		outcome Outcome
		message string
	}{
		{name: "api", err: tebratest.APIError("CreatePayment", long), outcome: OutcomeAPIError, message: "P2 API Error (" + strings.Repeat("x", 70) + "...)"},
		{name: "auth", err: tebratest.AuthError("CreatePayment"), outcome: OutcomeAuthError, message: "P2 API Auth Error."},
		{name: "transport", err: tebratest.TransportError("CreatePayment"), outcome: OutcomeTransport, message: "P2 Failed (Transport Error)."},
		{name: "unclear", id: 0, outcome: OutcomeUnclear, message: "P2 Status Unknown (response unclear)."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &tebratest.Fake{PaymentErr: tt.err, PaymentID: tt.id}
			got := newPoster(fake).Post(context.Background(), validInput())
			want := Result{Outcome: tt.outcome, Message: tt.message}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Post mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResult_ApplySetsPaymentID(t *testing.T) {
	row := model.NewRow(2, model.ColumnMap{}, nil)
	Result{Outcome: OutcomePosted, PaymentID: "9", Message: "Payment #9 Posted."}.Apply(row)
	if row.PaymentID != "9" || row.Message() != "Payment #9 Posted." {
		t.Errorf("row = %q / %q", row.PaymentID, row.Message())
	}
}
