package model

// Field is the logical name of a charge-sheet column. Sheets may spell the
// header differently; the ColumnMap resolves a Field to the actual header.
type Field string

const (
	FieldPatientID          Field = "Patient ID"
	FieldPractice           Field = "Practice"
	FieldDOS                Field = "DOS"
	FieldPaymentBatch       Field = "PP Batch #"
	FieldPatientPayment     Field = "Patient Payment"
	FieldPaymentSource      Field = "Patient Payment Source"
	FieldReferenceNumber    Field = "Reference Number"
	FieldEncounterBatch     Field = "CE Batch #"
	FieldRenderingProvider  Field = "Rendering Provider"
	FieldSchedulingProvider Field = "Scheduling Provider"
	FieldReferringProvider  Field = "Referring Provider"
	FieldEncounterMode      Field = "Encounter Mode"
	FieldPOS                Field = "POS"
	FieldAdmitDate          Field = "Admit Date"
	FieldDischargeDate      Field = "Discharge Date"
	FieldProcedures         Field = "Procedures"
	FieldMod1               Field = "Mod 1"
	FieldMod2               Field = "Mod 2"
	FieldMod3               Field = "Mod 3"
	FieldMod4               Field = "Mod 4"
	FieldUnits              Field = "Units"
	FieldDiag1              Field = "Diag 1"
	FieldDiag2              Field = "Diag 2"
	FieldDiag3              Field = "Diag 3"
	FieldDiag4              Field = "Diag 4"
	FieldPatientName        Field = "Patient Name"
	FieldDOB                Field = "DOB"
	FieldInsurance          Field = "Insurance"
	FieldInsuranceID        Field = "Insurance ID"
	FieldInsuranceStatus    Field = "Insurance Status"
	FieldEncounterID        Field = "Encounter ID"
	FieldChargeAmount       Field = "Charge Amount"
	FieldChargeStatus       Field = "Charge Status"
	FieldError              Field = "Error"
)

// FieldDef describes one logical column of the charge sheet.
type FieldDef struct {
	Field    Field
	Column   string // parquet column name, e.g. "patient_id"
	Critical bool   // batch is rejected when the header is missing
	Output   bool   // written by the engine
}

// AllFields lists every logical column in canonical sheet order.
var AllFields = []FieldDef{
	{Field: FieldPatientID, Column: "patient_id", Critical: true},
	{Field: FieldPractice, Column: "practice", Critical: true},
	{Field: FieldDOS, Column: "dos", Critical: true},
	{Field: FieldPaymentBatch, Column: "pp_batch"},
	{Field: FieldPatientPayment, Column: "patient_payment"},
	{Field: FieldPaymentSource, Column: "patient_payment_source"},
	{Field: FieldReferenceNumber, Column: "reference_number"},
	{Field: FieldEncounterBatch, Column: "ce_batch"},
	{Field: FieldRenderingProvider, Column: "rendering_provider", Critical: true},
	{Field: FieldSchedulingProvider, Column: "scheduling_provider"},
	{Field: FieldReferringProvider, Column: "referring_provider"},
	{Field: FieldEncounterMode, Column: "encounter_mode", Critical: true},
	{Field: FieldPOS, Column: "pos", Critical: true},
	{Field: FieldAdmitDate, Column: "admit_date"},
	{Field: FieldDischargeDate, Column: "discharge_date"},
	{Field: FieldProcedures, Column: "procedures", Critical: true},
	{Field: FieldMod1, Column: "mod_1"},
	{Field: FieldMod2, Column: "mod_2"},
	{Field: FieldMod3, Column: "mod_3"},
	{Field: FieldMod4, Column: "mod_4"},
	{Field: FieldUnits, Column: "units", Critical: true},
	{Field: FieldDiag1, Column: "diag_1", Critical: true},
	{Field: FieldDiag2, Column: "diag_2"},
	{Field: FieldDiag3, Column: "diag_3"},
	{Field: FieldDiag4, Column: "diag_4"},
	{Field: FieldPatientName, Column: "patient_name", Output: true},
	{Field: FieldDOB, Column: "dob", Output: true},
	{Field: FieldInsurance, Column: "insurance", Output: true},
	{Field: FieldInsuranceID, Column: "insurance_id", Output: true},
	{Field: FieldInsuranceStatus, Column: "insurance_status", Output: true},
	{Field: FieldEncounterID, Column: "encounter_id", Output: true},
	{Field: FieldChargeAmount, Column: "charge_amount", Output: true},
	{Field: FieldChargeStatus, Column: "charge_status", Output: true},
	{Field: FieldError, Column: "error", Output: true},
}

// ModifierFields and DiagnosisFields are the per-line code slots, in order.
var (
	ModifierFields  = []Field{FieldMod1, FieldMod2, FieldMod3, FieldMod4}
	DiagnosisFields = []Field{FieldDiag1, FieldDiag2, FieldDiag3, FieldDiag4}
)

// FieldDefByColumn returns the FieldDef for a parquet column name, or ok=false.
func FieldDefByColumn(column string) (FieldDef, bool) {
	for _, fd := range AllFields {
		if fd.Column == column {
			return fd, true
		}
	}
	return FieldDef{}, false
}

// CriticalFields returns the fields whose headers must be present.
func CriticalFields() []Field {
	var out []Field
	for _, fd := range AllFields {
		if fd.Critical {
			out = append(out, fd.Field)
		}
	}
	return out
}

// OutputFields returns the fields the engine writes back.
func OutputFields() []Field {
	var out []Field
	for _, fd := range AllFields {
		if fd.Output {
			out = append(out, fd.Field)
		}
	}
	return out
}
