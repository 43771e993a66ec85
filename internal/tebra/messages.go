package tebra

import "encoding/xml"

// Request-side wire types. Every element carries the schema prefix because the
// service validates element-qualified input.

type requestHeader struct {
	CustomerKey string `xml:"sch:CustomerKey"`
	User        string `xml:"sch:User"`
	Password    string `xml:"sch:Password"`
}

type getPatientCall struct {
	XMLName xml.Name      `xml:"sch:GetPatient"`
	Request getPatientReq `xml:"sch:request"`
}

type getPatientReq struct {
	Header requestHeader `xml:"sch:RequestHeader"`
	Filter struct {
		PatientID int64 `xml:"sch:PatientID"`
	} `xml:"sch:Filter"`
}

type getPracticesCall struct {
	XMLName xml.Name        `xml:"sch:GetPractices"`
	Request getPracticesReq `xml:"sch:request"`
}

type getPracticesReq struct {
	Header requestHeader `xml:"sch:RequestHeader"`
	Fields struct {
		ID           bool `xml:"sch:ID"`
		PracticeName bool `xml:"sch:PracticeName"`
		Active       bool `xml:"sch:Active"`
	} `xml:"sch:Fields"`
	Filter struct {
		PracticeName string `xml:"sch:PracticeName"`
	} `xml:"sch:Filter"`
}

type getProvidersCall struct {
	XMLName xml.Name        `xml:"sch:GetProviders"`
	Request getProvidersReq `xml:"sch:request"`
}

type getProvidersReq struct {
	Header requestHeader `xml:"sch:RequestHeader"`
	Fields struct {
		ID                         bool `xml:"sch:ID"`
		FullName                   bool `xml:"sch:FullName"`
		FirstName                  bool `xml:"sch:FirstName"`
		LastName                   bool `xml:"sch:LastName"`
		Type                       bool `xml:"sch:Type"`
		Active                     bool `xml:"sch:Active"`
		NationalProviderIdentifier bool `xml:"sch:NationalProviderIdentifier"`
	} `xml:"sch:Fields"`
	Filter struct {
		PracticeID string `xml:"sch:PracticeID"`
	} `xml:"sch:Filter"`
}

type getServiceLocationsCall struct {
	XMLName xml.Name               `xml:"sch:GetServiceLocations"`
	Request getServiceLocationsReq `xml:"sch:request"`
}

type getServiceLocationsReq struct {
	Header requestHeader `xml:"sch:RequestHeader"`
	Fields struct {
		ID         bool `xml:"sch:ID"`
		Name       bool `xml:"sch:Name"`
		PracticeID bool `xml:"sch:PracticeID"`
	} `xml:"sch:Fields"`
	Filter struct {
		PracticeID string `xml:"sch:PracticeID"`
	} `xml:"sch:Filter"`
}

type createPaymentCall struct {
	XMLName xml.Name         `xml:"sch:CreatePayment"`
	Request createPaymentReq `xml:"sch:request"`
}

type createPaymentReq struct {
	Header  requestHeader `xml:"sch:RequestHeader"`
	Payment paymentCreate `xml:"sch:Payment"`
}

type paymentCreate struct {
	BatchNumber string `xml:"sch:BatchNumber"`
	Patient     struct {
		PatientID int64 `xml:"sch:PatientID"`
	} `xml:"sch:Patient"`
	PayerType string `xml:"sch:PayerType"`
	Payment   struct {
		AmountPaid      string `xml:"sch:AmountPaid"`
		PaymentMethod   int    `xml:"sch:PaymentMethod"`
		ReferenceNumber string `xml:"sch:ReferenceNumber,omitempty"`
	} `xml:"sch:Payment"`
	Practice struct {
		PracticeID   string `xml:"sch:PracticeID"`
		PracticeName string `xml:"sch:PracticeName"`
	} `xml:"sch:Practice"`
}

type createEncounterCall struct {
	XMLName xml.Name           `xml:"sch:CreateEncounter"`
	Request createEncounterReq `xml:"sch:request"`
}

type createEncounterReq struct {
	Header    requestHeader   `xml:"sch:RequestHeader"`
	Encounter encounterCreate `xml:"sch:Encounter"`
}

type encounterCreate struct {
	BatchNumber string `xml:"sch:BatchNumber,omitempty"`
	Case        struct {
		CaseID string `xml:"sch:CaseID"`
	} `xml:"sch:Case"`
	EncounterStatus string              `xml:"sch:EncounterStatus"`
	Hospitalization *hospitalizationXML `xml:"sch:Hospitalization,omitempty"`
	Patient         struct {
		PatientID int64 `xml:"sch:PatientID"`
	} `xml:"sch:Patient"`
	PlaceOfService struct {
		PlaceOfServiceCode string `xml:"sch:PlaceOfServiceCode"`
		PlaceOfServiceName string `xml:"sch:PlaceOfServiceName,omitempty"`
	} `xml:"sch:PlaceOfService"`
	PostDate string `xml:"sch:PostDate"`
	Practice struct {
		PracticeID string `xml:"sch:PracticeID"`
	} `xml:"sch:Practice"`
	ReferringProvider  *providerXML `xml:"sch:ReferringProvider,omitempty"`
	RenderingProvider  providerXML  `xml:"sch:RenderingProvider"`
	SchedulingProvider *providerXML `xml:"sch:SchedulingProvider,omitempty"`
	ServiceEndDate     string       `xml:"sch:ServiceEndDate"`
	ServiceLines       struct {
		Lines []serviceLineXML `xml:"sch:ServiceLineReq"`
	} `xml:"sch:ServiceLines"`
	ServiceLocation struct {
		LocationID string `xml:"sch:LocationID"`
	} `xml:"sch:ServiceLocation"`
	ServiceStartDate string `xml:"sch:ServiceStartDate"`
}

type hospitalizationXML struct {
	StartDate string `xml:"sch:StartDate"`
	EndDate   string `xml:"sch:EndDate"`
}

type providerXML struct {
	FirstName  string `xml:"sch:FirstName,omitempty"`
	LastName   string `xml:"sch:LastName,omitempty"`
	NPI        string `xml:"sch:NPI,omitempty"`
	ProviderID string `xml:"sch:ProviderID,omitempty"`
}

type serviceLineXML struct {
	DiagnosisCode1     string `xml:"sch:DiagnosisCode1"`
	DiagnosisCode2     string `xml:"sch:DiagnosisCode2,omitempty"`
	DiagnosisCode3     string `xml:"sch:DiagnosisCode3,omitempty"`
	DiagnosisCode4     string `xml:"sch:DiagnosisCode4,omitempty"`
	ProcedureCode      string `xml:"sch:ProcedureCode"`
	ProcedureModifier1 string `xml:"sch:ProcedureModifier1,omitempty"`
	ProcedureModifier2 string `xml:"sch:ProcedureModifier2,omitempty"`
	ProcedureModifier3 string `xml:"sch:ProcedureModifier3,omitempty"`
	ProcedureModifier4 string `xml:"sch:ProcedureModifier4,omitempty"`
	ServiceEndDate     string `xml:"sch:ServiceEndDate"`
	ServiceStartDate   string `xml:"sch:ServiceStartDate"`
	Units              string `xml:"sch:Units"`
}

type getEncounterDetailsCall struct {
	XMLName xml.Name               `xml:"sch:GetEncounterDetails"`
	Request getEncounterDetailsReq `xml:"sch:request"`
}

type getEncounterDetailsReq struct {
	Header requestHeader `xml:"sch:RequestHeader"`
	Fields struct {
		EncounterID     bool `xml:"sch:EncounterID"`
		EncounterStatus bool `xml:"sch:EncounterStatus"`
		PracticeID      bool `xml:"sch:PracticeID"`
	} `xml:"sch:Fields"`
	Filter struct {
		EncounterID string `xml:"sch:EncounterID"`
		Practice    struct {
			PracticeID string `xml:"sch:PracticeID"`
		} `xml:"sch:Practice"`
	} `xml:"sch:Filter"`
}

type getChargesCall struct {
	XMLName xml.Name      `xml:"sch:GetCharges"`
	Request getChargesReq `xml:"sch:request"`
}

type getChargesReq struct {
	Header requestHeader `xml:"sch:RequestHeader"`
	Fields struct {
		ID            bool `xml:"sch:ID"`
		EncounterID   bool `xml:"sch:EncounterID"`
		PatientID     bool `xml:"sch:PatientID"`
		ProcedureCode bool `xml:"sch:ProcedureCode"`
		TotalCharges  bool `xml:"sch:TotalCharges"`
		UnitCharge    bool `xml:"sch:UnitCharge"`
		Units         bool `xml:"sch:Units"`
	} `xml:"sch:Fields"`
	Filter struct {
		FromServiceDate          string `xml:"sch:FromServiceDate"`
		IncludeUnapprovedCharges bool   `xml:"sch:IncludeUnapprovedCharges"`
		PracticeName             string `xml:"sch:PracticeName"`
		ProcedureCode            string `xml:"sch:ProcedureCode,omitempty"`
		ToServiceDate            string `xml:"sch:ToServiceDate"`
	} `xml:"sch:Filter"`
}

// Response-side wire types. Decoding matches on local names only.

type patientResult struct {
	responseStatus
	Patient *struct {
		FirstName string `xml:"FirstName"`
		LastName  string `xml:"LastName"`
		DOB       string `xml:"DOB"`
		Cases     []struct {
			PatientCaseID string `xml:"PatientCaseID"`
			Name          string `xml:"Name"`
			IsPrimaryCase string `xml:"IsPrimaryCase"`
			Policies      []struct {
				PlanName           string `xml:"PlanName"`
				CompanyName        string `xml:"CompanyName"`
				Number             string `xml:"Number"`
				EffectiveStartDate string `xml:"EffectiveStartDate"`
				EffectiveEndDate   string `xml:"EffectiveEndDate"`
			} `xml:"InsurancePolicies>PatientInsurancePolicyData"`
		} `xml:"Cases>PatientCaseData"`
	} `xml:"Patient"`
}

type practicesResult struct {
	responseStatus
	Practices []struct {
		ID           string `xml:"ID"`
		PracticeName string `xml:"PracticeName"`
		Active       string `xml:"Active"`
	} `xml:"Practices>PracticeData"`
}

type providersResult struct {
	responseStatus
	Providers []struct {
		ID                         string `xml:"ID"`
		FullName                   string `xml:"FullName"`
		FirstName                  string `xml:"FirstName"`
		LastName                   string `xml:"LastName"`
		Type                       string `xml:"Type"`
		Active                     string `xml:"Active"`
		NationalProviderIdentifier string `xml:"NationalProviderIdentifier"`
	} `xml:"Providers>ProviderData"`
}

type serviceLocationsResult struct {
	responseStatus
	Locations []struct {
		ID         string `xml:"ID"`
		Name       string `xml:"Name"`
		PracticeID string `xml:"PracticeID"`
	} `xml:"ServiceLocations>ServiceLocationData"`
}

type createPaymentResult struct {
	responseStatus
	PaymentID string `xml:"PaymentID"`
}

type createEncounterResult struct {
	responseStatus
	EncounterID string `xml:"EncounterID"`
}

type encounterDetailsResult struct {
	responseStatus
	Details []struct {
		EncounterID     string `xml:"EncounterID"`
		EncounterStatus string `xml:"EncounterStatus"`
	} `xml:"EncounterDetails>EncounterDetailsData"`
}

type chargesResult struct {
	responseStatus
	Charges []struct {
		ID            string `xml:"ID"`
		EncounterID   string `xml:"EncounterID"`
		PatientID     string `xml:"PatientID"`
		ProcedureCode string `xml:"ProcedureCode"`
		TotalCharges  string `xml:"TotalCharges"`
	} `xml:"Charges>ChargeData"`
}
