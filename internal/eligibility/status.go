package eligibility

// Status is the insurance status written to the Insurance Status column.
type Status string

const (
	StatusActive           Status = "Active"
	StatusNoActivePolicy   Status = "No Primary Active Insurance Found"
	StatusNoPolicies       Status = "No Insurance Policies on Case"
	StatusNoCase           Status = "No Case Data"
	StatusDOSMissing       Status = "DOS Missing"
	StatusInvalidDOS       Status = "Invalid DOS"
	StatusPatientNotFound  Status = "Patient Not Found"
	StatusPatientIDMissing Status = "Patient ID Missing"
	StatusInvalidPatientID Status = "Invalid Patient ID"
	StatusAPIError         Status = "API Error (Patient)"
	StatusAuthError        Status = "API Auth Error (Patient)"
	StatusSystemError      Status = "System Error (Patient)"
)
