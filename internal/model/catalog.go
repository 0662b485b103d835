package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ServiceCategory groups billable services (consultation, lab, imaging…).
type ServiceCategory struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name string    `gorm:"uniqueIndex;not null"`
}

// Service is a billable clinic service from the catalog. Invoice lines
// reference it by id; the price on the line is captured at billing time.
type Service struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code             string          `gorm:"uniqueIndex;not null"`
	Name             string          `gorm:"not null"`
	CategoryID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Price            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxRatePct       decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	RequiresProvider bool            `gorm:"not null;default:false"`
	CommissionPct    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Active           bool            `gorm:"not null;default:true"`
	CreatedAt        time.Time

	Category *ServiceCategory `gorm:"foreignKey:CategoryID"`
}

// Provider is a practitioner attributable on service lines.
type Provider struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FullName  string    `gorm:"uniqueIndex;not null"`
	Specialty *string
	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
}

// InventoryProduct is a sellable supply item (consumables, tubes, needles…).
type InventoryProduct struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SKU        string          `gorm:"uniqueIndex;not null;column:sku"`
	Name       string          `gorm:"not null"`
	Unit       string          `gorm:"not null"`
	Price      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxRatePct decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Active     bool            `gorm:"not null;default:true"`
	CreatedAt  time.Time
}
