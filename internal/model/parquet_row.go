package model

// ChargeSheetRow mirrors the Parquet schema of a charge sheet. Every column
// is an optional string; numbers and dates keep the text they were entered as.
type ChargeSheetRow struct {
	PatientID          *string `parquet:"patient_id,optional"`
	Practice           *string `parquet:"practice,optional"`
	DOS                *string `parquet:"dos,optional"`
	PaymentBatch       *string `parquet:"pp_batch,optional"`
	PatientPayment     *string `parquet:"patient_payment,optional"`
	PaymentSource      *string `parquet:"patient_payment_source,optional"`
	ReferenceNumber    *string `parquet:"reference_number,optional"`
	EncounterBatch     *string `parquet:"ce_batch,optional"`
	RenderingProvider  *string `parquet:"rendering_provider,optional"`
	SchedulingProvider *string `parquet:"scheduling_provider,optional"`
	ReferringProvider  *string `parquet:"referring_provider,optional"`
	EncounterMode      *string `parquet:"encounter_mode,optional"`
	POS                *string `parquet:"pos,optional"`
	AdmitDate          *string `parquet:"admit_date,optional"`
	DischargeDate      *string `parquet:"discharge_date,optional"`
	Procedures         *string `parquet:"procedures,optional"`
	Mod1               *string `parquet:"mod_1,optional"`
	Mod2               *string `parquet:"mod_2,optional"`
	Mod3               *string `parquet:"mod_3,optional"`
	Mod4               *string `parquet:"mod_4,optional"`
	Units              *string `parquet:"units,optional"`
	Diag1              *string `parquet:"diag_1,optional"`
	Diag2              *string `parquet:"diag_2,optional"`
	Diag3              *string `parquet:"diag_3,optional"`
	Diag4              *string `parquet:"diag_4,optional"`

	// Written by the engine
	PatientName        *string `parquet:"patient_name,optional"`
	DOB                *string `parquet:"dob,optional"`
	Insurance          *string `parquet:"insurance,optional"`
	InsuranceID        *string `parquet:"insurance_id,optional"`
	InsuranceStatus    *string `parquet:"insurance_status,optional"`
	EncounterID        *string `parquet:"encounter_id,optional"`
	ChargeAmount       *string `parquet:"charge_amount,optional"`
	ChargeStatus       *string `parquet:"charge_status,optional"`
	Error              *string `parquet:"error,optional"`
}

func (r *ChargeSheetRow) columns() map[Field]**string {
	return map[Field]**string{
		FieldPatientID:          &r.PatientID,
		FieldPractice:           &r.Practice,
		FieldDOS:                &r.DOS,
		FieldPaymentBatch:       &r.PaymentBatch,
		FieldPatientPayment:     &r.PatientPayment,
		FieldPaymentSource:      &r.PaymentSource,
		FieldReferenceNumber:    &r.ReferenceNumber,
		FieldEncounterBatch:     &r.EncounterBatch,
		FieldRenderingProvider:  &r.RenderingProvider,
		FieldSchedulingProvider: &r.SchedulingProvider,
		FieldReferringProvider:  &r.ReferringProvider,
		FieldEncounterMode:      &r.EncounterMode,
		FieldPOS:                &r.POS,
		FieldAdmitDate:          &r.AdmitDate,
		FieldDischargeDate:      &r.DischargeDate,
		FieldProcedures:         &r.Procedures,
		FieldMod1:               &r.Mod1,
		FieldMod2:               &r.Mod2,
		FieldMod3:               &r.Mod3,
		FieldMod4:               &r.Mod4,
		FieldUnits:              &r.Units,
		FieldDiag1:              &r.Diag1,
		FieldDiag2:              &r.Diag2,
		FieldDiag3:              &r.Diag3,
		FieldDiag4:              &r.Diag4,
		FieldPatientName:        &r.PatientName,
		FieldDOB:                &r.DOB,
		FieldInsurance:          &r.Insurance,
		FieldInsuranceID:        &r.InsuranceID,
		FieldInsuranceStatus:    &r.InsuranceStatus,
		FieldEncounterID:        &r.EncounterID,
		FieldChargeAmount:       &r.ChargeAmount,
		FieldChargeStatus:       &r.ChargeStatus,
		FieldError:              &r.Error,
	}
}

// Cells returns the non-null columns keyed by logical field.
func (r *ChargeSheetRow) Cells() map[Field]string {
	out := make(map[Field]string)
	for f, p := range r.columns() {
		if *p != nil {
			out[f] = **p
		}
	}
	return out
}

// ChargeSheetRowFrom builds a Parquet row from a sheet row. Blank cells are
// written as nulls.
func ChargeSheetRowFrom(row *Row) ChargeSheetRow {
	var out ChargeSheetRow
	for f, p := range out.columns() {
		if v := row.Get(f); v != "" {
			s := v
			*p = &s
		}
	}
	return out
}
