package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenSessionRequest struct {
	RegisterID   string          `json:"register_id"   validate:"required,uuid"`
	OpeningFloat decimal.Decimal `json:"opening_float" validate:"min=0"`
}

type CloseSessionRequest struct {
	DeclaredTotal decimal.Decimal `json:"declared_total" validate:"min=0"`
}

type RecordMovementRequest struct {
	SessionID string          `json:"session_id" validate:"required,uuid"`
	Type      string          `json:"type"       validate:"required,oneof=sale withdrawal deposit adjustment"`
	Amount    decimal.Decimal `json:"amount"     validate:"required,gt=0"`
	Reference *string         `json:"reference"`
}

type SessionFilter struct {
	Status string // "open" | "closed" | "" (all)
	Page   int
	Limit  int
}

type MovementFilter struct {
	SessionID string
	Type      string
	From      string // YYYY-MM-DD
	To        string
	Page      int
	Limit     int
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// TotalsByType is the per-type breakdown of a session's ledger, always
// recomputed live from the movement rows.
type TotalsByType struct {
	Sales       decimal.Decimal `json:"sales"`
	Withdrawals decimal.Decimal `json:"withdrawals"`
	Deposits    decimal.Decimal `json:"deposits"`
	Adjustments decimal.Decimal `json:"adjustments"`
}

type SessionResponse struct {
	ID            string           `json:"id"`
	RegisterID    string           `json:"register_id"`
	RegisterName  string           `json:"register_name,omitempty"`
	Status        string           `json:"status"` // open | closed
	OpenedBy      string           `json:"opened_by"`
	OpenedAt      string           `json:"opened_at"`
	OpeningFloat  decimal.Decimal  `json:"opening_float"`
	ClosedBy      *string          `json:"closed_by,omitempty"`
	ClosedAt      *string          `json:"closed_at,omitempty"`
	DeclaredTotal *decimal.Decimal `json:"declared_total,omitempty"`
	SystemTotal   *decimal.Decimal `json:"system_total,omitempty"`
	Variance      *decimal.Decimal `json:"variance,omitempty"`
}

type CloseSessionResponse struct {
	Session   SessionResponse `json:"session"`
	Breakdown TotalsByType    `json:"breakdown"`
}

type SessionSummaryResponse struct {
	SessionID     string           `json:"session_id"`
	Status        string           `json:"status"`
	OpeningFloat  decimal.Decimal  `json:"opening_float"`
	Totals        TotalsByType     `json:"totals"`
	SystemTotal   decimal.Decimal  `json:"system_total"`
	DeclaredTotal *decimal.Decimal `json:"declared_total,omitempty"`
	Variance      *decimal.Decimal `json:"variance,omitempty"`
}

type MovementResponse struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Reference *string         `json:"reference,omitempty"`
	CreatedBy string          `json:"created_by"`
	CreatedAt string          `json:"created_at"`
}

type SessionDetailResponse struct {
	Session         SessionResponse    `json:"session"`
	RecentMovements []MovementResponse `json:"recent_movements"`
}

type SessionListResponse struct {
	Data  []SessionResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type MovementListResponse struct {
	Data  []MovementResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type RegisterResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	LocationID   string  `json:"location_id"`
	LocationName *string `json:"location_name,omitempty"`
}
