// Package tebratest provides an in-memory tebra.Gateway for tests.
package tebratest

import (
	"context"
	"sync"

	"github.com/gyeh/chargeflow/internal/tebra"
)

// Fake is a scripted Gateway. Zero values answer "not found"; the Err fields
// force a call to fail. Every call is counted by operation name.
type Fake struct {
	mu sync.Mutex

	Patients  map[int64]*tebra.Patient
	Practices []tebra.Practice
	Providers map[string][]tebra.Provider        // by practice id
	Locations map[string][]tebra.ServiceLocation // by practice id

	PaymentID   int64
	EncounterID int64
	StatusCode  string
	Charges     []tebra.Charge

	PatientErr   error
	PracticesErr error
	ProvidersErr error
	LocationsErr error
	PaymentErr   error
	EncounterErr error
	StatusErr    error
	ChargesErr   error

	Payments      []tebra.PaymentRequest
	Encounters    []tebra.EncounterRequest
	ChargeFilters []tebra.ChargeFilter

	calls map[string]int
}

var _ tebra.Gateway = (*Fake)(nil)

// record counts a call to op. Like the SOAP client, a call made on a done
// context fails with a transport fault; it is still counted.
func (f *Fake) record(ctx context.Context, op string) error {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[op]++
	if err := ctx.Err(); err != nil {
		return &tebra.Fault{Kind: tebra.FaultTransport, Op: op, Err: err}
	}
	return nil
}

// Calls returns how many times op was invoked.
func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// TotalCalls returns the number of calls across all operations.
func (f *Fake) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *Fake) GetPatient(ctx context.Context, patientID int64) (*tebra.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, "GetPatient"); err != nil {
		return nil, err
	}
	if f.PatientErr != nil {
		return nil, f.PatientErr
	}
	return f.Patients[patientID], nil
}

func (f *Fake) GetPractices(ctx context.Context, name string) ([]tebra.Practice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, "GetPractices"); err != nil {
		return nil, err
	}
	if f.PracticesErr != nil {
		return nil, f.PracticesErr
	}
	return f.Practices, nil
}

func (f *Fake) GetProviders(ctx context.Context, practiceID string) ([]tebra.Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, "GetProviders"); err != nil {
		return nil, err
	}
	if f.ProvidersErr != nil {
		return nil, f.ProvidersErr
	}
	return f.Providers[practiceID], nil
}

func (f *Fake) GetServiceLocations(ctx context.Context, practiceID string) ([]tebra.ServiceLocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, "GetServiceLocations"); err != nil {
		return nil, err
	}
	if f.LocationsErr != nil {
		return nil, f.LocationsErr
	}
	return f.Locations[practiceID], nil
}

func (f *Fake) CreatePayment(ctx context.Context, req tebra.PaymentRequest) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, "CreatePayment"); err != nil {
		return 0, err
	}
	f.Payments = append(f.Payments, req)
	if f.PaymentErr != nil {
		return 0, f.PaymentErr
	}
	return f.PaymentID, nil
}

func (f *Fake) CreateEncounter(ctx context.Context, req tebra.EncounterRequest) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, "CreateEncounter"); err != nil {
		return 0, err
	}
	f.Encounters = append(f.Encounters, req)
	if f.EncounterErr != nil {
		return 0, f.EncounterErr
	}
	return f.EncounterID, nil
}

func (f *Fake) GetEncounterStatus(ctx context.Context, encounterID, practiceID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, "GetEncounterStatus"); err != nil {
		return "", err
	}
	if f.StatusErr != nil {
		return "", f.StatusErr
	}
	return f.StatusCode, nil
}

func (f *Fake) GetCharges(ctx context.Context, filter tebra.ChargeFilter) ([]tebra.Charge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, "GetCharges"); err != nil {
		return nil, err
	}
	f.ChargeFilters = append(f.ChargeFilters, filter)
	if f.ChargesErr != nil {
		return nil, f.ChargesErr
	}
	return f.Charges, nil
}

// APIError returns an API fault for op.
func APIError(op, msg string) error {
	return &tebra.Fault{Kind: tebra.FaultAPI, Op: op, Message: msg}
}

// AuthError returns an authentication fault for op.
func AuthError(op string) error {
	return &tebra.Fault{Kind: tebra.FaultAuth, Op: op, Message: "Invalid credentials"}
}

// TransportError returns a transport fault for op.
func TransportError(op string) error {
	return &tebra.Fault{Kind: tebra.FaultTransport, Op: op, Message: "timeout"}
}
