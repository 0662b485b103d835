package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreatePreclinicRequest struct {
	PatientID              string           `json:"patient_id" validate:"required,uuid"`
	BloodPressureSystolic  *int             `json:"blood_pressure_systolic"  validate:"omitempty,min=40,max=300"`
	BloodPressureDiastolic *int             `json:"blood_pressure_diastolic" validate:"omitempty,min=20,max=200"`
	HeartRate              *int             `json:"heart_rate"               validate:"omitempty,min=20,max=300"`
	RespRate               *int             `json:"resp_rate"                validate:"omitempty,min=4,max=80"`
	TemperatureC           *decimal.Decimal `json:"temperature_c"`
	WeightKg               *decimal.Decimal `json:"weight_kg"`
	HeightCm               *decimal.Decimal `json:"height_cm"`
	ChiefComplaint         *string          `json:"chief_complaint"`
	CurrentMedications     *string          `json:"current_medications"`
	Notes                  *string          `json:"notes"`
}

// UpdatePreclinicRequest patches an existing record. Only the provided
// vitals change; BMI is recomputed from the resulting weight and height.
type UpdatePreclinicRequest struct {
	BloodPressureSystolic  *int             `json:"blood_pressure_systolic"  validate:"omitempty,min=40,max=300"`
	BloodPressureDiastolic *int             `json:"blood_pressure_diastolic" validate:"omitempty,min=20,max=200"`
	HeartRate              *int             `json:"heart_rate"               validate:"omitempty,min=20,max=300"`
	RespRate               *int             `json:"resp_rate"                validate:"omitempty,min=4,max=80"`
	TemperatureC           *decimal.Decimal `json:"temperature_c"`
	WeightKg               *decimal.Decimal `json:"weight_kg"`
	HeightCm               *decimal.Decimal `json:"height_cm"`
	ChiefComplaint         *string          `json:"chief_complaint"`
	CurrentMedications     *string          `json:"current_medications"`
	Notes                  *string          `json:"notes"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PreclinicResponse struct {
	ID                     string           `json:"id"`
	PatientID              string           `json:"patient_id"`
	VisitDate              string           `json:"visit_date"`
	BloodPressureSystolic  *int             `json:"blood_pressure_systolic,omitempty"`
	BloodPressureDiastolic *int             `json:"blood_pressure_diastolic,omitempty"`
	HeartRate              *int             `json:"heart_rate,omitempty"`
	RespRate               *int             `json:"resp_rate,omitempty"`
	TemperatureC           *decimal.Decimal `json:"temperature_c,omitempty"`
	WeightKg               *decimal.Decimal `json:"weight_kg,omitempty"`
	HeightCm               *decimal.Decimal `json:"height_cm,omitempty"`
	BMI                    *decimal.Decimal `json:"bmi,omitempty"`
	ChiefComplaint         *string          `json:"chief_complaint,omitempty"`
	CurrentMedications     *string          `json:"current_medications,omitempty"`
	Notes                  *string          `json:"notes,omitempty"`
	RecordedBy             string           `json:"recorded_by"`
	CreatedAt              string           `json:"created_at"`
}
