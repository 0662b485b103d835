package service

import (
	"context"
	"time"

	"clinipos/internal/apierror"
	"clinipos/internal/dto"
	"clinipos/internal/model"
	"clinipos/internal/money"
	"clinipos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvoiceService interface {
	CreateDraft(ctx context.Context, userID uuid.UUID, rcID *uuid.UUID, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.InvoiceResponse, error)
	List(ctx context.Context, filter dto.InvoiceFilter) (*dto.InvoiceListResponse, error)
	AddLine(ctx context.Context, invoiceID uuid.UUID, req dto.AddLineRequest) (*dto.InvoiceResponse, error)
	Post(ctx context.Context, invoiceID uuid.UUID) (*dto.InvoiceResponse, error)
	Void(ctx context.Context, invoiceID uuid.UUID) (*dto.InvoiceResponse, error)
}

type invoiceService struct {
	repo        repository.InvoiceRepository
	catalogRepo repository.CatalogRepository
	patientRepo repository.PatientRepository
}

func NewInvoiceService(
	repo repository.InvoiceRepository,
	catalogRepo repository.CatalogRepository,
	patientRepo repository.PatientRepository,
) InvoiceService {
	return &invoiceService{
		repo:        repo,
		catalogRepo: catalogRepo,
		patientRepo: patientRepo,
	}
}

// ── CreateDraft ───────────────────────────────────────────────────────────────

func (s *invoiceService) CreateDraft(ctx context.Context, userID uuid.UUID, rcID *uuid.UUID, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	locationID, err := uuid.Parse(req.LocationID)
	if err != nil {
		return nil, apierror.InvalidArgument("invalid location_id")
	}

	inv := &model.Invoice{
		Status:           model.InvoiceDraft,
		InvoiceAt:        time.Now().UTC(),
		LocationID:       locationID,
		CashierID:        userID,
		RequestContextID: rcID,
	}

	if req.PatientID != nil {
		pid, err := uuid.Parse(*req.PatientID)
		if err != nil {
			return nil, apierror.InvalidArgument("invalid patient_id")
		}
		if _, err := s.patientRepo.FindByID(ctx, pid); err != nil {
			return nil, apierror.NotFound("patient not found")
		}
		inv.PatientID = &pid
	}
	if req.PreclinicID != nil {
		pcid, err := uuid.Parse(*req.PreclinicID)
		if err != nil {
			return nil, apierror.InvalidArgument("invalid preclinic_id")
		}
		inv.PreclinicID = &pcid
	}

	invoiceNo, err := s.repo.NextInvoiceNumber(ctx, s.repo.DB())
	if err != nil {
		return nil, err
	}
	inv.InvoiceNo = invoiceNo

	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, err
	}
	return invoiceToResponse(inv), nil
}

// ── Get / List ────────────────────────────────────────────────────────────────

func (s *invoiceService) Get(ctx context.Context, id uuid.UUID) (*dto.InvoiceResponse, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("invoice not found")
	}
	return invoiceToResponse(inv), nil
}

func (s *invoiceService) List(ctx context.Context, filter dto.InvoiceFilter) (*dto.InvoiceListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	invoices, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.InvoiceListItem, 0, len(invoices))
	for i := range invoices {
		inv := &invoices[i]
		item := dto.InvoiceListItem{
			ID:        inv.ID.String(),
			InvoiceNo: inv.InvoiceNo,
			Status:    inv.Status,
			InvoiceAt: inv.InvoiceAt.Format(time.RFC3339),
			Total:     inv.Total,
		}
		if inv.Patient != nil {
			name := inv.Patient.FirstName + " " + inv.Patient.LastName
			item.PatientName = &name
		}
		items = append(items, item)
	}
	return &dto.InvoiceListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ── AddLine ───────────────────────────────────────────────────────────────────
// Lines can only be appended to drafts. The invoice row is locked for the
// duration so line numbering and the totals recompute serialize.

func (s *invoiceService) AddLine(ctx context.Context, invoiceID uuid.UUID, req dto.AddLineRequest) (*dto.InvoiceResponse, error) {
	line, err := s.resolveLine(ctx, req)
	if err != nil {
		return nil, err
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		inv, err := s.repo.FindByIDTx(ctx, tx, invoiceID)
		if err != nil {
			return apierror.NotFound("invoice not found")
		}
		if inv.Status != model.InvoiceDraft {
			return apierror.Conflict("invoice is not a draft")
		}

		count, err := s.repo.CountLinesTx(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		line.InvoiceID = invoiceID
		line.LineNo = int(count) + 1

		if err := s.repo.CreateLineTx(ctx, tx, line); err != nil {
			return err
		}
		return s.recomputeTotalsTx(ctx, tx, inv)
	})
	if txErr != nil {
		return nil, txErr
	}

	return s.Get(ctx, invoiceID)
}

// ── Post ──────────────────────────────────────────────────────────────────────

func (s *invoiceService) Post(ctx context.Context, invoiceID uuid.UUID) (*dto.InvoiceResponse, error) {
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		inv, err := s.repo.FindByIDTx(ctx, tx, invoiceID)
		if err != nil {
			return apierror.NotFound("invoice not found")
		}
		if inv.Status != model.InvoiceDraft {
			return apierror.Conflict("invoice is not a draft")
		}

		count, err := s.repo.CountLinesTx(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if count == 0 {
			return apierror.Conflict("invoice has no lines")
		}

		// Final recompute before the totals freeze.
		if err := s.recomputeTotalsTx(ctx, tx, inv); err != nil {
			return err
		}
		return s.repo.UpdateStatusTx(ctx, tx, invoiceID, model.InvoicePosted)
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.Get(ctx, invoiceID)
}

// ── Void ──────────────────────────────────────────────────────────────────────
// Drafts void freely. A posted invoice can be voided only while no payment
// has been applied against it.

func (s *invoiceService) Void(ctx context.Context, invoiceID uuid.UUID) (*dto.InvoiceResponse, error) {
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		inv, err := s.repo.FindByIDTx(ctx, tx, invoiceID)
		if err != nil {
			return apierror.NotFound("invoice not found")
		}
		if inv.Status == model.InvoiceVoid {
			return apierror.Conflict("invoice is already void")
		}
		if inv.Status == model.InvoicePosted {
			paid, err := s.repo.SumPaymentsTx(ctx, tx, invoiceID)
			if err != nil {
				return err
			}
			if paid.IsPositive() {
				return apierror.Conflict("invoice has payments and cannot be voided")
			}
		}
		return s.repo.UpdateStatusTx(ctx, tx, invoiceID, model.InvoiceVoid)
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.Get(ctx, invoiceID)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// resolveLine turns an add-line request into a persistable line, pulling
// price, tax rate and description from the catalog unless overridden.
func (s *invoiceService) resolveLine(ctx context.Context, req dto.AddLineRequest) (*model.InvoiceLine, error) {
	line := &model.InvoiceLine{
		ItemType:    req.ItemType,
		Qty:         req.Qty,
		DiscountPct: req.DiscountPct,
	}

	switch req.ItemType {
	case model.ItemService:
		if req.ServiceID == nil {
			return nil, apierror.InvalidArgument("service_id is required for service lines")
		}
		sid, err := uuid.Parse(*req.ServiceID)
		if err != nil {
			return nil, apierror.InvalidArgument("invalid service_id")
		}
		svc, err := s.catalogRepo.FindServiceByID(ctx, sid)
		if err != nil {
			return nil, apierror.NotFound("service not found")
		}
		if !svc.Active {
			return nil, apierror.InvalidArgument("service is inactive")
		}
		line.ServiceID = &sid
		line.Description = svc.Name
		line.UnitPrice = svc.Price
		line.TaxRatePct = svc.TaxRatePct

		if svc.RequiresProvider {
			if req.ProviderID == nil {
				return nil, apierror.InvalidArgument("provider_id is required for this service")
			}
		}
		if req.ProviderID != nil {
			pid, err := uuid.Parse(*req.ProviderID)
			if err != nil {
				return nil, apierror.InvalidArgument("invalid provider_id")
			}
			if _, err := s.catalogRepo.FindProviderByID(ctx, pid); err != nil {
				return nil, apierror.NotFound("provider not found")
			}
			line.ProviderID = &pid
		}

	case model.ItemProduct:
		if req.ProductID == nil {
			return nil, apierror.InvalidArgument("product_id is required for product lines")
		}
		pid, err := uuid.Parse(*req.ProductID)
		if err != nil {
			return nil, apierror.InvalidArgument("invalid product_id")
		}
		prod, err := s.catalogRepo.FindProductByID(ctx, pid)
		if err != nil {
			return nil, apierror.NotFound("product not found")
		}
		if !prod.Active {
			return nil, apierror.InvalidArgument("product is inactive")
		}
		line.ProductID = &pid
		line.Description = prod.Name
		line.UnitPrice = prod.Price
		line.TaxRatePct = prod.TaxRatePct

	default:
		return nil, apierror.InvalidArgument("item_type must be service or product")
	}

	if req.UnitPrice != nil {
		if req.UnitPrice.IsNegative() {
			return nil, apierror.InvalidArgument("unit_price must not be negative")
		}
		line.UnitPrice = *req.UnitPrice
	}
	if req.Description != nil && *req.Description != "" {
		line.Description = *req.Description
	}

	amounts := money.ComputeLine(line.Qty, line.UnitPrice, line.DiscountPct, line.TaxRatePct)
	line.LineTotal = money.Round2(amounts.Total)
	return line, nil
}

// recomputeTotalsTx recalculates the invoice totals over all persisted lines
// with exact decimal arithmetic, rounding only the final figures.
func (s *invoiceService) recomputeTotalsTx(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error {
	lines, err := s.repo.FindLinesTx(ctx, tx, inv.ID)
	if err != nil {
		return err
	}

	subtotal := decimal.Zero
	discountTotal := decimal.Zero
	taxTotal := decimal.Zero
	total := decimal.Zero
	for i := range lines {
		a := money.ComputeLine(lines[i].Qty, lines[i].UnitPrice, lines[i].DiscountPct, lines[i].TaxRatePct)
		subtotal = subtotal.Add(a.Base)
		discountTotal = discountTotal.Add(a.Discount)
		taxTotal = taxTotal.Add(a.Tax)
		total = total.Add(a.Total)
	}

	inv.Subtotal = money.Round2(subtotal)
	inv.DiscountTotal = money.Round2(discountTotal)
	inv.TaxTotal = money.Round2(taxTotal)
	inv.Total = money.Round2(total)
	return s.repo.UpdateTotalsTx(ctx, tx, inv)
}

func invoiceToResponse(inv *model.Invoice) *dto.InvoiceResponse {
	lines := make([]dto.LineResponse, 0, len(inv.Lines))
	for i := range inv.Lines {
		l := &inv.Lines[i]
		item := dto.LineResponse{
			ID:          l.ID.String(),
			LineNo:      l.LineNo,
			ItemType:    l.ItemType,
			Description: l.Description,
			Qty:         l.Qty,
			UnitPrice:   l.UnitPrice,
			DiscountPct: l.DiscountPct,
			TaxRatePct:  l.TaxRatePct,
			LineTotal:   l.LineTotal,
		}
		if l.ServiceID != nil {
			id := l.ServiceID.String()
			item.ServiceID = &id
		}
		if l.ProductID != nil {
			id := l.ProductID.String()
			item.ProductID = &id
		}
		if l.ProviderID != nil {
			id := l.ProviderID.String()
			item.ProviderID = &id
		}
		lines = append(lines, item)
	}

	paid := decimal.Zero
	payments := make([]dto.PaymentResponse, 0, len(inv.Payments))
	for i := range inv.Payments {
		p := &inv.Payments[i]
		paid = paid.Add(p.Amount)
		payments = append(payments, dto.PaymentResponse{
			ID:             p.ID.String(),
			Method:         p.Method,
			Amount:         p.Amount,
			Currency:       p.Currency,
			Reference:      p.Reference,
			TransferStatus: p.TransferStatus,
			CreatedAt:      p.CreatedAt.Format(time.RFC3339),
		})
	}

	outstanding := inv.Total.Sub(paid)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}

	resp := &dto.InvoiceResponse{
		ID:            inv.ID.String(),
		InvoiceNo:     inv.InvoiceNo,
		Status:        inv.Status,
		InvoiceAt:     inv.InvoiceAt.Format(time.RFC3339),
		LocationID:    inv.LocationID.String(),
		Subtotal:      inv.Subtotal,
		DiscountTotal: inv.DiscountTotal,
		TaxTotal:      inv.TaxTotal,
		Total:         inv.Total,
		Paid:          paid,
		Outstanding:   outstanding,
		Lines:         lines,
		Payments:      payments,
	}
	if inv.PatientID != nil {
		id := inv.PatientID.String()
		resp.PatientID = &id
	}
	if inv.Patient != nil {
		name := inv.Patient.FirstName + " " + inv.Patient.LastName
		resp.PatientName = &name
	}
	if inv.CashSessionID != nil {
		id := inv.CashSessionID.String()
		resp.CashSessionID = &id
	}
	return resp
}
