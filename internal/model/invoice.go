package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice statuses. draft --post--> posted; draft/posted --void--> void.
// posted and void are terminal with respect to line mutation.
const (
	InvoiceDraft  = "draft"
	InvoicePosted = "posted"
	InvoiceVoid   = "void"
)

// Payment methods.
const (
	MethodCash     = "cash"
	MethodCard     = "card"
	MethodTransfer = "transfer"
	MethodOther    = "other"
)

// Transfer settlement states. A bank transfer is recorded as not_completed
// until the back office matches it against the bank statement.
const (
	TransferNotCompleted = "not_completed"
	TransferConfirmed    = "confirmed"
)

// Invoice carries derived totals that are always a pure function of the
// current line set: every line mutation triggers a full recomputation, never
// an incremental delta.
type Invoice struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceNo   string    `gorm:"uniqueIndex;not null"`
	Status      string    `gorm:"type:varchar(10);not null;default:'draft';index"`
	InvoiceAt   time.Time `gorm:"not null;index"`
	LocationID  uuid.UUID `gorm:"type:uuid;not null"`
	PatientID   *uuid.UUID `gorm:"type:uuid;index"`
	PreclinicID *uuid.UUID `gorm:"type:uuid"`
	CashierID   uuid.UUID  `gorm:"type:uuid;not null"`
	// RegisterID and CashSessionID are bound when a cash payment is applied,
	// linking the invoice to the session it was settled in.
	RegisterID       *uuid.UUID `gorm:"type:uuid"`
	CashSessionID    *uuid.UUID `gorm:"type:uuid;index"`
	RequestContextID *uuid.UUID `gorm:"type:uuid"`

	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DiscountTotal decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TaxTotal      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Lines    []InvoiceLine `gorm:"foreignKey:InvoiceID"`
	Payments []Payment     `gorm:"foreignKey:InvoiceID"`
	Patient  *Patient      `gorm:"foreignKey:PatientID"`
}

// Invoice line item types.
const (
	ItemService = "service"
	ItemProduct = "product"
)

// InvoiceLine is owned exclusively by its invoice. Exactly one of ServiceID /
// ProductID is set, matching ItemType.
type InvoiceLine struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	LineNo      int        `gorm:"not null"`
	ItemType    string     `gorm:"type:varchar(10);not null"`
	ServiceID   *uuid.UUID `gorm:"type:uuid"`
	ProductID   *uuid.UUID `gorm:"type:uuid"`
	Description string
	Qty         decimal.Decimal `gorm:"type:decimal(9,2);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountPct decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	TaxRatePct  decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ProviderID  *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt   time.Time
}

// Payment is append-only once created. The applied amounts of an invoice's
// payments never sum to more than the invoice total.
type Payment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceID uuid.UUID `gorm:"type:uuid;not null;index"`
	Method    string    `gorm:"type:varchar(10);not null"`
	// TransferStatus is only meaningful for method=transfer.
	TransferStatus *string         `gorm:"type:varchar(20)"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency       string          `gorm:"type:varchar(3);not null;default:'HNL'"`
	Reference      *string
	// PosTerminalID is only meaningful for method=card.
	PosTerminalID    *uuid.UUID `gorm:"type:uuid"`
	CreatedByID      uuid.UUID  `gorm:"type:uuid;not null"`
	RequestContextID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt        time.Time
}
