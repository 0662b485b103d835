package dto

import "github.com/shopspring/decimal"

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ServiceResponse struct {
	ID           string          `json:"id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name,omitempty"`
	Price        decimal.Decimal `json:"price"`
	TaxRatePct   decimal.Decimal `json:"tax_rate_pct"`
	Active       bool            `json:"active"`
}

type ProductResponse struct {
	ID         string          `json:"id"`
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	Unit       string          `json:"unit"`
	Price      decimal.Decimal `json:"price"`
	TaxRatePct decimal.Decimal `json:"tax_rate_pct"`
	Active     bool            `json:"active"`
}

type ProviderResponse struct {
	ID        string  `json:"id"`
	FullName  string  `json:"full_name"`
	Specialty *string `json:"specialty,omitempty"`
	Active    bool    `json:"active"`
}

// PriceLookupResponse answers a front-desk price query for a service code
// or product SKU, cached in Redis to keep the lookup off the database.
type PriceLookupResponse struct {
	ItemType   string          `json:"item_type"` // service | product
	ID         string          `json:"id"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	TaxRatePct decimal.Decimal `json:"tax_rate_pct"`
}
