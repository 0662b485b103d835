package worker

// receipt_worker.go
// Processes receipt jobs from QueueReceipt: loads the settled invoice,
// renders the PDF receipt, and optionally enqueues an email job carrying
// the attachment.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clinipos/internal/infra"
	"clinipos/internal/model"
	"clinipos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ReceiptJobPayload is the job envelope sent to QueueReceipt.
type ReceiptJobPayload struct {
	InvoiceID string  `json:"invoice_id"`
	PaymentID string  `json:"payment_id"`
	Email     *string `json:"email,omitempty"`
}

type ReceiptWorker struct {
	invoiceRepo    repository.InvoiceRepository
	dispatcher     *Dispatcher
	rdb            *redis.Client
	pdfStoragePath string
	clinicName     string
}

func NewReceiptWorker(
	invoiceRepo repository.InvoiceRepository,
	dispatcher *Dispatcher,
	rdb *redis.Client,
	pdfStoragePath string,
	clinicName string,
) *ReceiptWorker {
	return &ReceiptWorker{
		invoiceRepo:    invoiceRepo,
		dispatcher:     dispatcher,
		rdb:            rdb,
		pdfStoragePath: pdfStoragePath,
		clinicName:     clinicName,
	}
}

// Process handles a single receipt job:
//  1. Parse ReceiptJobPayload from the job envelope
//  2. Fetch the invoice (with lines and payments)
//  3. Render the PDF with retries and exponential backoff
//  4. Optionally enqueue an email job with the attachment
//
// A job that keeps failing lands in the DLQ instead of vanishing; its
// delivery count accumulates across replays until the drainer parks it.
func (w *ReceiptWorker) Process(ctx context.Context, job Job) {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return
	}

	invoiceID, err := uuid.Parse(payload.InvoiceID)
	if err != nil {
		log.Error().Str("invoice_id", payload.InvoiceID).Msg("receipt_worker: invalid invoice_id")
		return
	}

	inv, err := w.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		log.Error().Err(err).Str("invoice_id", payload.InvoiceID).Msg("receipt_worker: invoice not found")
		SendToDLQ(ctx, w.rdb, QueueReceipt, "receipt", job.Payload, "invoice not found", job.Attempts+1)
		return
	}

	var pdfPath string
	const maxAttempts = 3
	renderErr := withRetry(ctx, maxAttempts, func(attempt int) error {
		path, err := infra.GenerateInvoicePDF(inv, w.clinicName, w.pdfStoragePath)
		if err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("invoice_no", inv.InvoiceNo).
				Msg("receipt_worker: render attempt failed, retrying")
			return err
		}
		pdfPath = path
		return nil
	})
	if renderErr != nil {
		log.Error().Err(renderErr).Str("invoice_no", inv.InvoiceNo).Msg("receipt_worker: render failed after all retries")
		SendToDLQ(ctx, w.rdb, QueueReceipt, "receipt", job.Payload, renderErr.Error(), job.Attempts+1)
		return
	}
	log.Info().Str("pdf", pdfPath).Str("invoice_no", inv.InvoiceNo).Msg("receipt_worker: receipt rendered")

	if payload.Email != nil && *payload.Email != "" {
		emailJob := EmailJobPayload{
			ToEmail: *payload.Email,
			Subject: fmt.Sprintf("Receipt %s", inv.InvoiceNo),
			Body:    fmt.Sprintf("Your receipt is attached.\nTotal: %s %s", inv.Total.StringFixed(2), paymentCurrency(inv)),
			PDFPath: pdfPath,
		}
		if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
			log.Warn().Err(err).Str("email", *payload.Email).Msg("receipt_worker: failed to enqueue email")
		} else {
			log.Info().Str("email", *payload.Email).Msg("receipt_worker: email job enqueued")
		}
	}
}

func paymentCurrency(inv *model.Invoice) string {
	if len(inv.Payments) > 0 {
		return inv.Payments[0].Currency
	}
	return "HNL"
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
