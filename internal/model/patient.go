package model

import (
	"time"

	"github.com/google/uuid"
)

// Patient is referenced by invoices and preclinic records.
// Sex: "M" | "F" | "Other" | "Unknown"
type Patient struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MRN       string    `gorm:"uniqueIndex;not null"`
	FirstName string    `gorm:"not null;index"`
	LastName  string    `gorm:"not null;index"`
	BirthDate *time.Time
	Sex       *string `gorm:"type:varchar(10)"`
	Phone     *string
	Email     *string
	Address   *string
	City      *string
	Region    *string
	Country   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
