package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashSession represents the custody period of a register between the open
// and close events. It is created open and mutated exactly once to closed;
// never reopened or deleted. At most one open session may exist per register
// (enforced by a partial unique index, see infra.applySchemaPatches).
type CashSession struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RegisterID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	OpenedByID   uuid.UUID       `gorm:"type:uuid;not null"`
	OpenedAt     time.Time       `gorm:"not null;autoCreateTime"`
	OpeningFloat decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Closing fields are written together in a single update at close time.
	ClosedByID    *uuid.UUID `gorm:"type:uuid"`
	ClosedAt      *time.Time
	DeclaredTotal *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// SystemTotal = openingFloat + deposits + sales - withdrawals + adjustments,
	// derived from the ledger at the moment of closing.
	SystemTotal      *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Variance         *decimal.Decimal `gorm:"type:decimal(12,2)"`
	RequestContextID *uuid.UUID       `gorm:"type:uuid"`

	Register  *CashRegister  `gorm:"foreignKey:RegisterID"`
	OpenedBy  *User          `gorm:"foreignKey:OpenedByID"`
	ClosedBy  *User          `gorm:"foreignKey:ClosedByID"`
	Movements []CashMovement `gorm:"foreignKey:SessionID"`
}

// Open reports whether the session has not been closed yet.
func (s *CashSession) Open() bool { return s.ClosedAt == nil }

// Cash movement types.
const (
	MovementSale       = "sale"
	MovementWithdrawal = "withdrawal"
	MovementDeposit    = "deposit"
	MovementAdjustment = "adjustment"
)

// CashMovement is an immutable entry in the cash ledger. Movements are never
// updated; they may be deleted only by a super_admin and only while the
// owning session is still open.
type CashMovement struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type      string          `gorm:"type:varchar(20);not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Reference soft-links the originating payment ("PAY:<id>") or carries a
	// free-text note for manual movements.
	Reference        *string
	CreatedByID      uuid.UUID  `gorm:"type:uuid;not null"`
	RequestContextID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt        time.Time

	Session   *CashSession `gorm:"foreignKey:SessionID"`
	CreatedBy *User        `gorm:"foreignKey:CreatedByID"`
}
