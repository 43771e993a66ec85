package tebra

// Patient is the demographic and coverage view returned by GetPatient.
type Patient struct {
	ID        int64
	FirstName string
	LastName  string
	DOB       string // as returned by the service; parse with normalize.ParseDate
	Cases     []PatientCase
}

// PatientCase groups the insurance policies that apply to a course of care.
type PatientCase struct {
	ID        string
	Name      string
	IsPrimary bool
	Policies  []InsurancePolicy
}

// InsurancePolicy is one policy on a case. Dates are kept verbatim; a policy
// whose dates cannot be parsed is treated as not active.
type InsurancePolicy struct {
	PlanName           string
	CompanyName        string
	Number             string
	EffectiveStartDate string
	EffectiveEndDate   string
}

// Practice is a billing practice.
type Practice struct {
	ID     string
	Name   string
	Active bool
}

// Provider is a rendering, scheduling, or referring provider of a practice.
type Provider struct {
	ID        string
	FullName  string
	FirstName string
	LastName  string
	Type      string
	Active    bool
	NPI       string
}

// ServiceLocation is a place where a practice renders services.
type ServiceLocation struct {
	ID         string
	Name       string
	PracticeID string
}

// PaymentRequest posts a patient payment against a batch.
type PaymentRequest struct {
	PracticeID      string
	PracticeName    string
	PatientID       int64
	BatchNumber     string
	AmountPaid      string // two-decimal dollar amount, e.g. "25.00"
	PaymentMethod   int
	ReferenceNumber string
}

// ProviderRef identifies a provider on an encounter. When NPI is set the
// service matches on it; otherwise ProviderID is used.
type ProviderRef struct {
	ProviderID string
	NPI        string
	FirstName  string
	LastName   string
}

// Hospitalization carries admit and discharge timestamps.
type Hospitalization struct {
	StartDate string
	EndDate   string
}

// PlaceOfService is the POS code/name pair sent with an encounter.
type PlaceOfService struct {
	Code string
	Name string
}

// ServiceLine is one billed procedure on an encounter.
type ServiceLine struct {
	ProcedureCode  string
	Units          string
	StartDate      string
	EndDate        string
	Modifiers      []string // up to four, in slot order
	DiagnosisCodes []string // first is required, up to four
}

// EncounterRequest creates a draft encounter with its service lines.
type EncounterRequest struct {
	PatientID          int64
	PracticeID         string
	ServiceLocationID  string
	CaseID             string
	RenderingProvider  ProviderRef
	SchedulingProvider *ProviderRef
	ReferringProvider  *ProviderRef
	Hospitalization    *Hospitalization
	PlaceOfService     PlaceOfService
	ServiceStartDate   string
	ServiceEndDate     string
	PostDate           string
	BatchNumber        string
	Status             string
	ServiceLines       []ServiceLine
}

// ChargeFilter narrows a GetCharges query.
type ChargeFilter struct {
	PracticeName      string
	FromServiceDate   string
	ToServiceDate     string
	ProcedureCode     string
	IncludeUnapproved bool
}

// Charge is one charge line as returned by GetCharges.
type Charge struct {
	ID            string
	EncounterID   string
	PatientID     string
	ProcedureCode string
	TotalCharges  string
}
