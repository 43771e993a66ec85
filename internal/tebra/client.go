package tebra

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultEndpoint is the production SOAP endpoint.
const DefaultEndpoint = "https://webservice.kareo.com/services/soap/2.1/KareoServices.svc"

// DefaultTimeout bounds every round-trip.
const DefaultTimeout = 60 * time.Second

// Credentials authenticate every request.
type Credentials struct {
	CustomerKey string
	User        string
	Password    string
}

// Client is the SOAP implementation of Gateway.
type Client struct {
	endpoint string
	header   requestHeader
	http     *http.Client
}

// Compile-time check that Client satisfies the interface.
var _ Gateway = (*Client)(nil)

// NewClient creates a client for endpoint. A zero timeout uses DefaultTimeout.
func NewClient(endpoint string, creds Credentials, timeout time.Duration) (*Client, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if creds.CustomerKey == "" || creds.User == "" || creds.Password == "" {
		return nil, fmt.Errorf("customer key, user and password are required")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		header: requestHeader{
			CustomerKey: creds.CustomerKey,
			User:        creds.User,
			Password:    creds.Password,
		},
		http: &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) GetPatient(ctx context.Context, patientID int64) (*Patient, error) {
	const op = "GetPatient"
	var call getPatientCall
	call.Request.Header = c.header
	call.Request.Filter.PatientID = patientID

	var resp struct {
		Result patientResult `xml:"GetPatientResult"`
	}
	if err := c.call(ctx, op, call, &resp); err != nil {
		return nil, err
	}
	if err := resp.Result.fault(op); err != nil {
		return nil, err
	}
	p := resp.Result.Patient
	if p == nil {
		return nil, nil
	}

	out := &Patient{ID: patientID, FirstName: strings.TrimSpace(p.FirstName), LastName: strings.TrimSpace(p.LastName), DOB: strings.TrimSpace(p.DOB)}
	for _, pc := range p.Cases {
		pcase := PatientCase{
			ID:        strings.TrimSpace(pc.PatientCaseID),
			Name:      pc.Name,
			IsPrimary: isTrue(pc.IsPrimaryCase),
		}
		for _, pol := range pc.Policies {
			pcase.Policies = append(pcase.Policies, InsurancePolicy{
				PlanName:           strings.TrimSpace(pol.PlanName),
				CompanyName:        strings.TrimSpace(pol.CompanyName),
				Number:             strings.TrimSpace(pol.Number),
				EffectiveStartDate: strings.TrimSpace(pol.EffectiveStartDate),
				EffectiveEndDate:   strings.TrimSpace(pol.EffectiveEndDate),
			})
		}
		out.Cases = append(out.Cases, pcase)
	}
	return out, nil
}

func (c *Client) GetPractices(ctx context.Context, name string) ([]Practice, error) {
	const op = "GetPractices"
	var call getPracticesCall
	call.Request.Header = c.header
	call.Request.Fields.ID = true
	call.Request.Fields.PracticeName = true
	call.Request.Fields.Active = true
	call.Request.Filter.PracticeName = strings.TrimSpace(name)

	var resp struct {
		Result practicesResult `xml:"GetPracticesResult"`
	}
	if err := c.call(ctx, op, call, &resp); err != nil {
		return nil, err
	}
	if err := resp.Result.fault(op); err != nil {
		return nil, err
	}
	out := make([]Practice, 0, len(resp.Result.Practices))
	for _, p := range resp.Result.Practices {
		out = append(out, Practice{
			ID:     strings.TrimSpace(p.ID),
			Name:   strings.TrimSpace(p.PracticeName),
			Active: isTrue(p.Active),
		})
	}
	return out, nil
}

func (c *Client) GetProviders(ctx context.Context, practiceID string) ([]Provider, error) {
	const op = "GetProviders"
	var call getProvidersCall
	call.Request.Header = c.header
	f := &call.Request.Fields
	f.ID, f.FullName, f.FirstName, f.LastName = true, true, true, true
	f.Type, f.Active, f.NationalProviderIdentifier = true, true, true
	call.Request.Filter.PracticeID = practiceID

	var resp struct {
		Result providersResult `xml:"GetProvidersResult"`
	}
	if err := c.call(ctx, op, call, &resp); err != nil {
		return nil, err
	}
	if err := resp.Result.fault(op); err != nil {
		return nil, err
	}
	out := make([]Provider, 0, len(resp.Result.Providers))
	for _, p := range resp.Result.Providers {
		out = append(out, Provider{
			ID:        strings.TrimSpace(p.ID),
			FullName:  strings.TrimSpace(p.FullName),
			FirstName: strings.TrimSpace(p.FirstName),
			LastName:  strings.TrimSpace(p.LastName),
			Type:      strings.TrimSpace(p.Type),
			Active:    isTrue(p.Active),
			NPI:       strings.TrimSpace(p.NationalProviderIdentifier),
		})
	}
	return out, nil
}

func (c *Client) GetServiceLocations(ctx context.Context, practiceID string) ([]ServiceLocation, error) {
	const op = "GetServiceLocations"
	var call getServiceLocationsCall
	call.Request.Header = c.header
	call.Request.Fields.ID = true
	call.Request.Fields.Name = true
	call.Request.Fields.PracticeID = true
	call.Request.Filter.PracticeID = practiceID

	var resp struct {
		Result serviceLocationsResult `xml:"GetServiceLocationsResult"`
	}
	if err := c.call(ctx, op, call, &resp); err != nil {
		return nil, err
	}
	if err := resp.Result.fault(op); err != nil {
		return nil, err
	}
	out := make([]ServiceLocation, 0, len(resp.Result.Locations))
	for _, l := range resp.Result.Locations {
		out = append(out, ServiceLocation{
			ID:         strings.TrimSpace(l.ID),
			Name:       strings.TrimSpace(l.Name),
			PracticeID: strings.TrimSpace(l.PracticeID),
		})
	}
	return out, nil
}

func (c *Client) CreatePayment(ctx context.Context, req PaymentRequest) (int64, error) {
	const op = "CreatePayment"
	var call createPaymentCall
	call.Request.Header = c.header
	p := &call.Request.Payment
	p.BatchNumber = req.BatchNumber
	p.Patient.PatientID = req.PatientID
	p.PayerType = "Patient"
	p.Payment.AmountPaid = req.AmountPaid
	p.Payment.PaymentMethod = req.PaymentMethod
	p.Payment.ReferenceNumber = req.ReferenceNumber
	p.Practice.PracticeID = req.PracticeID
	p.Practice.PracticeName = req.PracticeName

	var resp struct {
		Result createPaymentResult `xml:"CreatePaymentResult"`
	}
	if err := c.call(ctx, op, call, &resp); err != nil {
		return 0, err
	}
	if err := resp.Result.fault(op); err != nil {
		return 0, err
	}
	return parsePositiveID(resp.Result.PaymentID), nil
}

func (c *Client) CreateEncounter(ctx context.Context, req EncounterRequest) (int64, error) {
	const op = "CreateEncounter"
	var call createEncounterCall
	call.Request.Header = c.header
	e := &call.Request.Encounter
	e.BatchNumber = req.BatchNumber
	e.Case.CaseID = req.CaseID
	e.EncounterStatus = req.Status
	if req.Hospitalization != nil {
		e.Hospitalization = &hospitalizationXML{StartDate: req.Hospitalization.StartDate, EndDate: req.Hospitalization.EndDate}
	}
	e.Patient.PatientID = req.PatientID
	e.PlaceOfService.PlaceOfServiceCode = req.PlaceOfService.Code
	e.PlaceOfService.PlaceOfServiceName = req.PlaceOfService.Name
	e.PostDate = req.PostDate
	e.Practice.PracticeID = req.PracticeID
	e.ReferringProvider = providerRef(req.ReferringProvider)
	e.RenderingProvider = providerXML{ProviderID: req.RenderingProvider.ProviderID}
	e.SchedulingProvider = providerRef(req.SchedulingProvider)
	e.ServiceEndDate = req.ServiceEndDate
	e.ServiceLocation.LocationID = req.ServiceLocationID
	e.ServiceStartDate = req.ServiceStartDate
	for _, sl := range req.ServiceLines {
		e.ServiceLines.Lines = append(e.ServiceLines.Lines, serviceLine(sl))
	}

	var resp struct {
		Result createEncounterResult `xml:"CreateEncounterResult"`
	}
	if err := c.call(ctx, op, call, &resp); err != nil {
		return 0, err
	}
	if err := resp.Result.fault(op); err != nil {
		return 0, err
	}
	return parsePositiveID(resp.Result.EncounterID), nil
}

func (c *Client) GetEncounterStatus(ctx context.Context, encounterID, practiceID string) (string, error) {
	const op = "GetEncounterDetails"
	var call getEncounterDetailsCall
	call.Request.Header = c.header
	call.Request.Fields.EncounterID = true
	call.Request.Fields.EncounterStatus = true
	call.Request.Fields.PracticeID = true
	call.Request.Filter.EncounterID = encounterID
	call.Request.Filter.Practice.PracticeID = practiceID

	var resp struct {
		Result encounterDetailsResult `xml:"GetEncounterDetailsResult"`
	}
	if err := c.call(ctx, op, call, &resp); err != nil {
		return "", err
	}
	if err := resp.Result.fault(op); err != nil {
		return "", err
	}
	if len(resp.Result.Details) == 0 {
		return "", &Fault{Kind: FaultAPI, Op: op, Message: "no encounter details returned"}
	}
	return strings.TrimSpace(resp.Result.Details[0].EncounterStatus), nil
}

func (c *Client) GetCharges(ctx context.Context, filter ChargeFilter) ([]Charge, error) {
	const op = "GetCharges"
	var call getChargesCall
	call.Request.Header = c.header
	f := &call.Request.Fields
	f.ID, f.EncounterID, f.PatientID, f.ProcedureCode = true, true, true, true
	f.TotalCharges, f.UnitCharge, f.Units = true, true, true
	call.Request.Filter.PracticeName = filter.PracticeName
	call.Request.Filter.FromServiceDate = filter.FromServiceDate
	call.Request.Filter.ToServiceDate = filter.ToServiceDate
	call.Request.Filter.ProcedureCode = filter.ProcedureCode
	call.Request.Filter.IncludeUnapprovedCharges = filter.IncludeUnapproved

	var resp struct {
		Result chargesResult `xml:"GetChargesResult"`
	}
	if err := c.call(ctx, op, call, &resp); err != nil {
		return nil, err
	}
	if err := resp.Result.fault(op); err != nil {
		return nil, err
	}
	out := make([]Charge, 0, len(resp.Result.Charges))
	for _, ch := range resp.Result.Charges {
		out = append(out, Charge{
			ID:            strings.TrimSpace(ch.ID),
			EncounterID:   strings.TrimSpace(ch.EncounterID),
			PatientID:     strings.TrimSpace(ch.PatientID),
			ProcedureCode: strings.TrimSpace(ch.ProcedureCode),
			TotalCharges:  strings.TrimSpace(ch.TotalCharges),
		})
	}
	return out, nil
}

func providerRef(ref *ProviderRef) *providerXML {
	if ref == nil {
		return nil
	}
	p := &providerXML{FirstName: ref.FirstName, LastName: ref.LastName}
	if ref.NPI != "" {
		p.NPI = ref.NPI
	} else {
		p.ProviderID = ref.ProviderID
	}
	return p
}

func serviceLine(sl ServiceLine) serviceLineXML {
	x := serviceLineXML{
		ProcedureCode:    sl.ProcedureCode,
		Units:            sl.Units,
		ServiceStartDate: sl.StartDate,
		ServiceEndDate:   sl.EndDate,
	}
	mods := []*string{&x.ProcedureModifier1, &x.ProcedureModifier2, &x.ProcedureModifier3, &x.ProcedureModifier4}
	for i := 0; i < len(sl.Modifiers) && i < len(mods); i++ {
		*mods[i] = sl.Modifiers[i]
	}
	diags := []*string{&x.DiagnosisCode1, &x.DiagnosisCode2, &x.DiagnosisCode3, &x.DiagnosisCode4}
	for i := 0; i < len(sl.DiagnosisCodes) && i < len(diags); i++ {
		*diags[i] = sl.DiagnosisCodes[i]
	}
	return x
}

func isTrue(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}

// parsePositiveID returns the id when s is a positive integer, else 0.
func parsePositiveID(s string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}
