package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateInvoiceRequest struct {
	LocationID  string  `json:"location_id"  validate:"required,uuid"`
	PatientID   *string `json:"patient_id"   validate:"omitempty,uuid"`
	PreclinicID *string `json:"preclinic_id" validate:"omitempty,uuid"`
}

type AddLineRequest struct {
	ItemType    string          `json:"item_type"    validate:"required,oneof=service product"`
	ServiceID   *string         `json:"service_id"   validate:"omitempty,uuid"`
	ProductID   *string         `json:"product_id"   validate:"omitempty,uuid"`
	Description *string         `json:"description"`
	Qty         decimal.Decimal `json:"qty"          validate:"required,gt=0"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	DiscountPct decimal.Decimal `json:"discount_pct" validate:"min=0,max=100"`
	ProviderID  *string         `json:"provider_id"  validate:"omitempty,uuid"`
}

type PayInvoiceRequest struct {
	Method         string           `json:"method"          validate:"required,oneof=cash card transfer other"`
	Amount         decimal.Decimal  `json:"amount"          validate:"required,gt=0"`
	AmountTendered *decimal.Decimal `json:"amount_tendered"`
	Currency       string           `json:"currency"        validate:"omitempty,len=3"`
	Reference      *string          `json:"reference"`
	PosTerminalID  *string          `json:"pos_terminal_id" validate:"omitempty,uuid"`
	CashSessionID  *string          `json:"cash_session_id" validate:"omitempty,uuid"`
	SendReceipt    bool             `json:"send_receipt"`
	ReceiptEmail   *string          `json:"receipt_email"   validate:"omitempty,email"`
}

type InvoiceFilter struct {
	Status    string
	PatientID string
	From      string // YYYY-MM-DD
	To        string
	Page      int
	Limit     int
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LineResponse struct {
	ID          string          `json:"id"`
	LineNo      int             `json:"line_no"`
	ItemType    string          `json:"item_type"`
	ServiceID   *string         `json:"service_id,omitempty"`
	ProductID   *string         `json:"product_id,omitempty"`
	Description string          `json:"description"`
	Qty         decimal.Decimal `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	TaxRatePct  decimal.Decimal `json:"tax_rate_pct"`
	LineTotal   decimal.Decimal `json:"line_total"`
	ProviderID  *string         `json:"provider_id,omitempty"`
}

type PaymentResponse struct {
	ID             string          `json:"id"`
	Method         string          `json:"method"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Reference      *string         `json:"reference,omitempty"`
	TransferStatus *string         `json:"transfer_status,omitempty"`
	CreatedAt      string          `json:"created_at"`
}

type InvoiceResponse struct {
	ID            string            `json:"id"`
	InvoiceNo     string            `json:"invoice_no"`
	Status        string            `json:"status"`
	InvoiceAt     string            `json:"invoice_at"`
	LocationID    string            `json:"location_id"`
	PatientID     *string           `json:"patient_id,omitempty"`
	PatientName   *string           `json:"patient_name,omitempty"`
	CashSessionID *string           `json:"cash_session_id,omitempty"`
	Subtotal      decimal.Decimal   `json:"subtotal"`
	DiscountTotal decimal.Decimal   `json:"discount_total"`
	TaxTotal      decimal.Decimal   `json:"tax_total"`
	Total         decimal.Decimal   `json:"total"`
	Paid          decimal.Decimal   `json:"paid"`
	Outstanding   decimal.Decimal   `json:"outstanding"`
	Lines         []LineResponse    `json:"lines"`
	Payments      []PaymentResponse `json:"payments"`
}

type InvoiceListItem struct {
	ID          string          `json:"id"`
	InvoiceNo   string          `json:"invoice_no"`
	Status      string          `json:"status"`
	InvoiceAt   string          `json:"invoice_at"`
	PatientName *string         `json:"patient_name,omitempty"`
	Total       decimal.Decimal `json:"total"`
}

type InvoiceListResponse struct {
	Data  []InvoiceListItem `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type PaymentResultResponse struct {
	Payment       PaymentResponse `json:"payment"`
	AppliedAmount decimal.Decimal `json:"applied_amount"`
	Change        decimal.Decimal `json:"change"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	InvoicePaid   bool            `json:"invoice_paid"`
}
