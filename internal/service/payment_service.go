package service

import (
	"context"
	"fmt"
	"time"

	"clinipos/internal/apierror"
	"clinipos/internal/dto"
	"clinipos/internal/model"
	"clinipos/internal/money"
	"clinipos/internal/repository"
	"clinipos/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentService interface {
	Pay(ctx context.Context, userID uuid.UUID, rcID *uuid.UUID, invoiceID uuid.UUID, req dto.PayInvoiceRequest) (*dto.PaymentResultResponse, error)
	ConfirmTransfer(ctx context.Context, paymentID uuid.UUID) (*dto.PaymentResponse, error)
}

type paymentService struct {
	invoiceRepo repository.InvoiceRepository
	cashRepo    repository.CashRepository
	catalogRepo repository.CatalogRepository
	dispatcher  *worker.Dispatcher
}

func NewPaymentService(
	invoiceRepo repository.InvoiceRepository,
	cashRepo repository.CashRepository,
	catalogRepo repository.CatalogRepository,
	dispatcher *worker.Dispatcher,
) PaymentService {
	return &paymentService{
		invoiceRepo: invoiceRepo,
		cashRepo:    cashRepo,
		catalogRepo: catalogRepo,
		dispatcher:  dispatcher,
	}
}

// ── Pay ───────────────────────────────────────────────────────────────────────
// Settlement runs as one transaction:
//   1. lock the invoice row, require posted status
//   2. amount must not exceed the outstanding balance
//   3. create the Payment
//   4. cash only: lock the session, require it open, append a sale movement
//      referencing the payment, and link the invoice to session and register
// Either every row lands or none do.

func (s *paymentService) Pay(ctx context.Context, userID uuid.UUID, rcID *uuid.UUID, invoiceID uuid.UUID, req dto.PayInvoiceRequest) (*dto.PaymentResultResponse, error) {
	currency := req.Currency
	if currency == "" {
		currency = "HNL"
	}

	var sessionID *uuid.UUID
	if req.Method == model.MethodCash {
		if req.CashSessionID == nil {
			return nil, apierror.InvalidArgument("cash payments require cash_session_id")
		}
		sid, err := uuid.Parse(*req.CashSessionID)
		if err != nil {
			return nil, apierror.InvalidArgument("invalid cash_session_id")
		}
		sessionID = &sid
	}

	var posTerminalID *uuid.UUID
	if req.Method == model.MethodCard && req.PosTerminalID != nil {
		tid, err := uuid.Parse(*req.PosTerminalID)
		if err != nil {
			return nil, apierror.InvalidArgument("invalid pos_terminal_id")
		}
		if _, err := s.catalogRepo.FindPosTerminalByID(ctx, tid); err != nil {
			return nil, apierror.NotFound("pos terminal not found")
		}
		posTerminalID = &tid
	}

	payment := &model.Payment{
		InvoiceID:        invoiceID,
		Method:           req.Method,
		Currency:         currency,
		Reference:        req.Reference,
		PosTerminalID:    posTerminalID,
		CreatedByID:      userID,
		RequestContextID: rcID,
	}
	if req.Method == model.MethodTransfer {
		// Pending until the back office matches it against the bank statement.
		status := model.TransferNotCompleted
		payment.TransferStatus = &status
	}

	var applied decimal.Decimal
	var outstandingAfter decimal.Decimal

	txErr := runTx(ctx, s.invoiceRepo.DB(), func(tx *gorm.DB) error {
		inv, err := s.invoiceRepo.FindByIDTx(ctx, tx, invoiceID)
		if err != nil {
			return apierror.NotFound("invoice not found")
		}
		if inv.Status != model.InvoicePosted {
			return apierror.Conflict("invoice is not posted")
		}

		paid, err := s.invoiceRepo.SumPaymentsTx(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		outstanding := inv.Total.Sub(paid)
		if !outstanding.IsPositive() {
			return apierror.Conflict("invoice is already settled")
		}

		amount := money.Round2(req.Amount)
		if amount.GreaterThan(outstanding) {
			return apierror.InvalidArgumentWithDetails(
				"amount exceeds the outstanding balance",
				map[string]interface{}{"outstanding": outstanding.StringFixed(2)},
			)
		}
		applied = money.Min(amount, outstanding)
		outstandingAfter = outstanding.Sub(applied)

		payment.Amount = applied
		if err := s.invoiceRepo.CreatePaymentTx(ctx, tx, payment); err != nil {
			return err
		}

		if req.Method == model.MethodCash {
			session, err := s.cashRepo.FindSessionByIDTx(ctx, tx, *sessionID)
			if err != nil {
				return apierror.NotFound("cash session not found")
			}
			if !session.Open() {
				return apierror.Conflict("cash session is closed")
			}

			ref := fmt.Sprintf("PAY:%s", payment.ID)
			mov := &model.CashMovement{
				SessionID:        session.ID,
				Type:             model.MovementSale,
				Amount:           applied,
				Reference:        &ref,
				CreatedByID:      userID,
				RequestContextID: rcID,
			}
			if err := s.cashRepo.CreateMovement(ctx, tx, mov); err != nil {
				return err
			}

			if err := s.invoiceRepo.LinkCashSessionTx(ctx, tx, invoiceID, session.ID, session.RegisterID); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	change := decimal.Zero
	if req.AmountTendered != nil {
		change = money.Max(decimal.Zero, req.AmountTendered.Sub(applied))
	}

	// Async receipt rendering is best-effort, fire and forget.
	if s.dispatcher != nil && req.SendReceipt {
		payload := map[string]interface{}{
			"invoice_id": invoiceID.String(),
			"payment_id": payment.ID.String(),
		}
		if req.ReceiptEmail != nil && *req.ReceiptEmail != "" {
			payload["email"] = *req.ReceiptEmail
		}
		_ = s.dispatcher.EnqueueReceipt(ctx, payload)
	}

	return &dto.PaymentResultResponse{
		Payment: dto.PaymentResponse{
			ID:             payment.ID.String(),
			Method:         payment.Method,
			Amount:         payment.Amount,
			Currency:       payment.Currency,
			Reference:      payment.Reference,
			TransferStatus: payment.TransferStatus,
			CreatedAt:      payment.CreatedAt.Format(time.RFC3339),
		},
		AppliedAmount: applied,
		Change:        change,
		Outstanding:   outstandingAfter,
		InvoicePaid:   outstandingAfter.IsZero(),
	}, nil
}

// ── ConfirmTransfer ───────────────────────────────────────────────────────────
// Back-office reconciliation: marks a pending bank transfer as confirmed once
// it shows up on the statement. Terminal for the payment.

func (s *paymentService) ConfirmTransfer(ctx context.Context, paymentID uuid.UUID) (*dto.PaymentResponse, error) {
	p, err := s.invoiceRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, apierror.NotFound("payment not found")
	}
	if p.Method != model.MethodTransfer {
		return nil, apierror.Conflict("payment is not a transfer")
	}
	if p.TransferStatus != nil && *p.TransferStatus == model.TransferConfirmed {
		return nil, apierror.Conflict("transfer is already confirmed")
	}

	if err := s.invoiceRepo.UpdateTransferStatus(ctx, paymentID, model.TransferConfirmed); err != nil {
		return nil, err
	}

	confirmed := model.TransferConfirmed
	return &dto.PaymentResponse{
		ID:             p.ID.String(),
		Method:         p.Method,
		Amount:         p.Amount,
		Currency:       p.Currency,
		Reference:      p.Reference,
		TransferStatus: &confirmed,
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
	}, nil
}
