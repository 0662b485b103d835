package repository

import (
	"context"
	"fmt"

	"clinipos/internal/dto"
	"clinipos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvoiceRepository interface {
	DB() *gorm.DB
	Create(ctx context.Context, inv *model.Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Invoice, error)
	FindLinesTx(ctx context.Context, tx *gorm.DB, invoiceID uuid.UUID) ([]model.InvoiceLine, error)
	CountLinesTx(ctx context.Context, tx *gorm.DB, invoiceID uuid.UUID) (int64, error)
	CreateLineTx(ctx context.Context, tx *gorm.DB, line *model.InvoiceLine) error
	UpdateTotalsTx(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error
	UpdateStatusTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error
	CreatePaymentTx(ctx context.Context, tx *gorm.DB, p *model.Payment) error
	SumPaymentsTx(ctx context.Context, tx *gorm.DB, invoiceID uuid.UUID) (decimal.Decimal, error)
	FindPaymentByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	UpdateTransferStatus(ctx context.Context, id uuid.UUID, status string) error
	LinkCashSessionTx(ctx context.Context, tx *gorm.DB, invoiceID, sessionID, registerID uuid.UUID) error
	List(ctx context.Context, filter dto.InvoiceFilter) ([]model.Invoice, int64, error)
	NextInvoiceNumber(ctx context.Context, tx *gorm.DB) (string, error)
}

type invoiceRepo struct{ db *gorm.DB }

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository { return &invoiceRepo{db: db} }

func (r *invoiceRepo) DB() *gorm.DB { return r.db }

func (r *invoiceRepo) Create(ctx context.Context, inv *model.Invoice) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *invoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Patient").
		First(&inv, id).Error
	return &inv, err
}

// FindByIDTx takes a row lock on the invoice so line appends, posting and
// payments against the same invoice serialize.
func (r *invoiceRepo) FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Invoice, error) {
	var inv model.Invoice
	err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&inv, id).Error
	return &inv, err
}

func (r *invoiceRepo) FindLinesTx(ctx context.Context, tx *gorm.DB, invoiceID uuid.UUID) ([]model.InvoiceLine, error) {
	var lines []model.InvoiceLine
	err := tx.WithContext(ctx).Where("invoice_id = ?", invoiceID).Order("line_no ASC").Find(&lines).Error
	return lines, err
}

func (r *invoiceRepo) CountLinesTx(ctx context.Context, tx *gorm.DB, invoiceID uuid.UUID) (int64, error) {
	var n int64
	err := tx.WithContext(ctx).Model(&model.InvoiceLine{}).Where("invoice_id = ?", invoiceID).Count(&n).Error
	return n, err
}

func (r *invoiceRepo) CreateLineTx(ctx context.Context, tx *gorm.DB, line *model.InvoiceLine) error {
	return tx.WithContext(ctx).Create(line).Error
}

func (r *invoiceRepo) UpdateTotalsTx(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error {
	return tx.WithContext(ctx).Model(&model.Invoice{}).Where("id = ?", inv.ID).
		Updates(map[string]interface{}{
			"subtotal":       inv.Subtotal,
			"discount_total": inv.DiscountTotal,
			"tax_total":      inv.TaxTotal,
			"total":          inv.Total,
		}).Error
}

func (r *invoiceRepo) UpdateStatusTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error {
	return tx.WithContext(ctx).Model(&model.Invoice{}).Where("id = ?", id).Update("status", status).Error
}

func (r *invoiceRepo) CreatePaymentTx(ctx context.Context, tx *gorm.DB, p *model.Payment) error {
	return tx.WithContext(ctx).Create(p).Error
}

func (r *invoiceRepo) SumPaymentsTx(ctx context.Context, tx *gorm.DB, invoiceID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := tx.WithContext(ctx).Model(&model.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("invoice_id = ?", invoiceID).
		Scan(&total).Error
	return total, err
}

func (r *invoiceRepo) FindPaymentByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var p model.Payment
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *invoiceRepo) UpdateTransferStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).Model(&model.Payment{}).Where("id = ?", id).
		Update("transfer_status", status).Error
}

func (r *invoiceRepo) LinkCashSessionTx(ctx context.Context, tx *gorm.DB, invoiceID, sessionID, registerID uuid.UUID) error {
	return tx.WithContext(ctx).Model(&model.Invoice{}).Where("id = ?", invoiceID).
		Updates(map[string]interface{}{
			"cash_session_id": sessionID,
			"register_id":     registerID,
		}).Error
}

func (r *invoiceRepo) List(ctx context.Context, filter dto.InvoiceFilter) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Invoice{})

	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.PatientID != "" {
		q = q.Where("patient_id = ?", filter.PatientID)
	}
	if filter.From != "" {
		q = q.Where("DATE(invoice_at) >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("DATE(invoice_at) <= ?", filter.To)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Patient").
		Order("invoice_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&invoices).Error

	return invoices, total, err
}

func (r *invoiceRepo) NextInvoiceNumber(ctx context.Context, tx *gorm.DB) (string, error) {
	// Uses a PostgreSQL sequence for atomic invoice number generation
	var num int
	err := tx.WithContext(ctx).Raw("SELECT nextval('invoices_invoice_no_seq')").Scan(&num).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%06d", num), nil
}
