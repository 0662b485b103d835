package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PreclinicRecord stores the vitals taken before a consultation.
// All measurements are optional; only what was taken is stored.
type PreclinicRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PatientID uuid.UUID `gorm:"type:uuid;not null;index"`
	VisitDate time.Time `gorm:"not null"`

	BloodPressureSystolic  *int
	BloodPressureDiastolic *int
	HeartRate              *int
	RespRate               *int
	TemperatureC           *decimal.Decimal `gorm:"type:decimal(4,1)"`
	WeightKg               *decimal.Decimal `gorm:"type:decimal(5,2)"`
	HeightCm               *decimal.Decimal `gorm:"type:decimal(5,2)"`
	BMI                    *decimal.Decimal `gorm:"type:decimal(4,1)"`

	ChiefComplaint     *string
	CurrentMedications *string
	Notes              *string

	RecordedByID uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt    time.Time

	Patient *Patient `gorm:"foreignKey:PatientID"`
}
