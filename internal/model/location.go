package model

import (
	"time"

	"github.com/google/uuid"
)

// Location is a physical clinic site. Registers and POS terminals belong to one.
type Location struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"uniqueIndex;not null"`
	Address   *string
	CreatedAt time.Time
}

// CashRegister identifies a physical register. Immutable once created.
type CashRegister struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name       string    `gorm:"uniqueIndex;not null"`
	LocationID uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt  time.Time

	Location *Location `gorm:"foreignKey:LocationID"`
}

// PosTerminal is a card terminal referenced by card payments.
type PosTerminal struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name       string    `gorm:"uniqueIndex;not null"`
	Provider   string    `gorm:"not null"`
	MerchantID *string
	LocationID uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt  time.Time
}
