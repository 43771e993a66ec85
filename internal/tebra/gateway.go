package tebra

import "context"

// Gateway is the practice-management service as seen by the billing engine.
// Every method decodes the remote response once: it either returns a payload
// or a *Fault. Lookups that find nothing return a nil/empty payload and a nil
// error.
type Gateway interface {
	GetPatient(ctx context.Context, patientID int64) (*Patient, error)
	GetPractices(ctx context.Context, name string) ([]Practice, error)
	GetProviders(ctx context.Context, practiceID string) ([]Provider, error)
	GetServiceLocations(ctx context.Context, practiceID string) ([]ServiceLocation, error)

	// CreatePayment returns the new payment id, or 0 when the response
	// carried neither an id nor an error.
	CreatePayment(ctx context.Context, req PaymentRequest) (int64, error)

	// CreateEncounter returns the new encounter id, or 0 when the response
	// carried neither an id nor an error.
	CreateEncounter(ctx context.Context, req EncounterRequest) (int64, error)

	// GetEncounterStatus returns the raw status code of an encounter.
	GetEncounterStatus(ctx context.Context, encounterID, practiceID string) (string, error)

	GetCharges(ctx context.Context, filter ChargeFilter) ([]Charge, error)
}
