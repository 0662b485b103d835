package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"clinipos/internal/apierror"
	"clinipos/internal/dto"
	"clinipos/internal/model"
	"clinipos/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Test rig ─────────────────────────────────────────────────────────────────

type paymentRig struct {
	invoices *fakeInvoiceRepo
	cash     *fakeCashRepo
	catalog  *fakeCatalogRepo
	svc      service.PaymentService
	cashSvc  service.CashService
}

func newPaymentRig() *paymentRig {
	invoices := newFakeInvoiceRepo()
	cash := newFakeCashRepo()
	catalog := newFakeCatalogRepo()
	return &paymentRig{
		invoices: invoices,
		cash:     cash,
		catalog:  catalog,
		svc:      service.NewPaymentService(invoices, cash, catalog, nil),
		cashSvc:  service.NewCashService(cash),
	}
}

func (rig *paymentRig) postedInvoice(t *testing.T, total string) uuid.UUID {
	t.Helper()
	inv := &model.Invoice{
		ID:         uuid.New(),
		InvoiceNo:  "INV-" + uuid.NewString()[:6],
		Status:     model.InvoicePosted,
		InvoiceAt:  time.Now(),
		LocationID: uuid.New(),
		CashierID:  uuid.New(),
		Total:      dec(total),
	}
	rig.invoices.invoices[inv.ID] = inv
	return inv.ID
}

func (rig *paymentRig) openCashSession(t *testing.T) uuid.UUID {
	t.Helper()
	return openSession(t, rig.cashSvc, rig.cash, "100")
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestPayCash_FullSettlement(t *testing.T) {
	rig := newPaymentRig()
	invoiceID := rig.postedInvoice(t, "630.00")
	sessionID := rig.openCashSession(t)

	sid := sessionID.String()
	tendered := dec("700.00")
	resp, err := rig.svc.Pay(context.Background(), uuid.New(), nil, invoiceID, dto.PayInvoiceRequest{
		Method:         model.MethodCash,
		Amount:         dec("630.00"),
		AmountTendered: &tendered,
		CashSessionID:  &sid,
	})

	require.NoError(t, err)
	assert.Equal(t, "630.00", resp.AppliedAmount.StringFixed(2))
	assert.Equal(t, "70.00", resp.Change.StringFixed(2))
	assert.True(t, resp.Outstanding.IsZero())
	assert.True(t, resp.InvoicePaid)
	assert.Equal(t, "HNL", resp.Payment.Currency)

	// The payment produced a matching sale movement in the cash ledger.
	require.Len(t, rig.cash.movements, 1)
	mov := rig.cash.movements[0]
	assert.Equal(t, model.MovementSale, mov.Type)
	assert.Equal(t, "630.00", mov.Amount.StringFixed(2))
	require.NotNil(t, mov.Reference)
	assert.True(t, strings.HasPrefix(*mov.Reference, "PAY:"), "reference %q", *mov.Reference)
	assert.Equal(t, resp.Payment.ID, strings.TrimPrefix(*mov.Reference, "PAY:"))

	// The invoice is linked to the settling session and register.
	inv := rig.invoices.invoices[invoiceID]
	require.NotNil(t, inv.CashSessionID)
	assert.Equal(t, sessionID, *inv.CashSessionID)
	assert.NotNil(t, inv.RegisterID)
}

func TestPay_Overpayment(t *testing.T) {
	rig := newPaymentRig()
	invoiceID := rig.postedInvoice(t, "100.00")

	_, err := rig.svc.Pay(context.Background(), uuid.New(), nil, invoiceID, dto.PayInvoiceRequest{
		Method: model.MethodCard,
		Amount: dec("150.00"),
	})

	assert.Equal(t, apierror.KindInvalidArgument, kindOf(t, err))
	var apiErr *apierror.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "100.00", apiErr.Details["outstanding"])

	// Nothing was persisted
	assert.Empty(t, rig.invoices.payments)
	assert.Empty(t, rig.cash.movements)
}

func TestPay_NotPosted(t *testing.T) {
	rig := newPaymentRig()
	inv := &model.Invoice{
		ID: uuid.New(), InvoiceNo: "INV-000009", Status: model.InvoiceDraft,
		LocationID: uuid.New(), CashierID: uuid.New(), Total: dec("50"),
	}
	rig.invoices.invoices[inv.ID] = inv

	_, err := rig.svc.Pay(context.Background(), uuid.New(), nil, inv.ID, dto.PayInvoiceRequest{
		Method: model.MethodCard,
		Amount: dec("50"),
	})
	assert.Equal(t, apierror.KindConflict, kindOf(t, err))
}

func TestPayCash_MissingSession(t *testing.T) {
	rig := newPaymentRig()
	invoiceID := rig.postedInvoice(t, "100")

	_, err := rig.svc.Pay(context.Background(), uuid.New(), nil, invoiceID, dto.PayInvoiceRequest{
		Method: model.MethodCash,
		Amount: dec("100"),
	})
	assert.Equal(t, apierror.KindInvalidArgument, kindOf(t, err))
	assert.ErrorContains(t, err, "cash_session_id")
}

func TestPayCash_ClosedSession(t *testing.T) {
	rig := newPaymentRig()
	invoiceID := rig.postedInvoice(t, "100")
	sessionID := rig.openCashSession(t)

	_, err := rig.cashSvc.Close(context.Background(), uuid.New(), nil, sessionID, dto.CloseSessionRequest{
		DeclaredTotal: dec("100"),
	})
	require.NoError(t, err)

	sid := sessionID.String()
	_, err = rig.svc.Pay(context.Background(), uuid.New(), nil, invoiceID, dto.PayInvoiceRequest{
		Method:        model.MethodCash,
		Amount:        dec("100"),
		CashSessionID: &sid,
	})
	assert.Equal(t, apierror.KindConflict, kindOf(t, err))
	assert.ErrorContains(t, err, "closed")
}

func TestPayCard_NoMovement(t *testing.T) {
	rig := newPaymentRig()
	invoiceID := rig.postedInvoice(t, "200")

	resp, err := rig.svc.Pay(context.Background(), uuid.New(), nil, invoiceID, dto.PayInvoiceRequest{
		Method: model.MethodCard,
		Amount: dec("200"),
	})
	require.NoError(t, err)
	assert.True(t, resp.InvoicePaid)
	assert.Empty(t, rig.cash.movements, "card payments never touch the cash ledger")
}

func TestPayCard_UnknownTerminal(t *testing.T) {
	rig := newPaymentRig()
	invoiceID := rig.postedInvoice(t, "200")

	tid := uuid.NewString()
	_, err := rig.svc.Pay(context.Background(), uuid.New(), nil, invoiceID, dto.PayInvoiceRequest{
		Method:        model.MethodCard,
		Amount:        dec("200"),
		PosTerminalID: &tid,
	})
	assert.Equal(t, apierror.KindNotFound, kindOf(t, err))
}

func TestPayTransfer_PendingConfirmation(t *testing.T) {
	rig := newPaymentRig()
	invoiceID := rig.postedInvoice(t, "500")

	resp, err := rig.svc.Pay(context.Background(), uuid.New(), nil, invoiceID, dto.PayInvoiceRequest{
		Method: model.MethodTransfer,
		Amount: dec("500"),
	})
	require.NoError(t, err)

	// Transfers settle the invoice but wait for back-office reconciliation.
	require.Len(t, rig.invoices.payments, 1)
	require.NotNil(t, rig.invoices.payments[0].TransferStatus)
	assert.Equal(t, model.TransferNotCompleted, *rig.invoices.payments[0].TransferStatus)
	require.NotNil(t, resp.Payment.TransferStatus)
	assert.Equal(t, model.TransferNotCompleted, *resp.Payment.TransferStatus)
}

func TestConfirmTransfer(t *testing.T) {
	rig := newPaymentRig()
	invoiceID := rig.postedInvoice(t, "500")

	paid, err := rig.svc.Pay(context.Background(), uuid.New(), nil, invoiceID, dto.PayInvoiceRequest{
		Method: model.MethodTransfer,
		Amount: dec("500"),
	})
	require.NoError(t, err)
	paymentID := uuid.MustParse(paid.Payment.ID)

	resp, err := rig.svc.ConfirmTransfer(context.Background(), paymentID)
	require.NoError(t, err)
	require.NotNil(t, resp.TransferStatus)
	assert.Equal(t, model.TransferConfirmed, *resp.TransferStatus)

	// Stored status follows
	stored, err := rig.invoices.FindPaymentByID(context.Background(), paymentID)
	require.NoError(t, err)
	require.NotNil(t, stored.TransferStatus)
	assert.Equal(t, model.TransferConfirmed, *stored.TransferStatus)

	// Confirmation is terminal
	_, err = rig.svc.ConfirmTransfer(context.Background(), paymentID)
	assert.Equal(t, apierror.KindConflict, kindOf(t, err))
	assert.ErrorContains(t, err, "already confirmed")
}

func TestConfirmTransfer_NotATransfer(t *testing.T) {
	rig := newPaymentRig()
	invoiceID := rig.postedInvoice(t, "200")

	paid, err := rig.svc.Pay(context.Background(), uuid.New(), nil, invoiceID, dto.PayInvoiceRequest{
		Method: model.MethodCard,
		Amount: dec("200"),
	})
	require.NoError(t, err)

	_, err = rig.svc.ConfirmTransfer(context.Background(), uuid.MustParse(paid.Payment.ID))
	assert.Equal(t, apierror.KindConflict, kindOf(t, err))
}

func TestConfirmTransfer_UnknownPayment(t *testing.T) {
	rig := newPaymentRig()

	_, err := rig.svc.ConfirmTransfer(context.Background(), uuid.New())
	assert.Equal(t, apierror.KindNotFound, kindOf(t, err))
}

func TestPay_CumulativeSettlement(t *testing.T) {
	rig := newPaymentRig()
	invoiceID := rig.postedInvoice(t, "300.00")

	first, err := rig.svc.Pay(context.Background(), uuid.New(), nil, invoiceID, dto.PayInvoiceRequest{
		Method: model.MethodCard,
		Amount: dec("120.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "180.00", first.Outstanding.StringFixed(2))
	assert.False(t, first.InvoicePaid)

	second, err := rig.svc.Pay(context.Background(), uuid.New(), nil, invoiceID, dto.PayInvoiceRequest{
		Method: model.MethodTransfer,
		Amount: dec("180.00"),
	})
	require.NoError(t, err)
	assert.True(t, second.Outstanding.IsZero())
	assert.True(t, second.InvoicePaid)

	// A settled invoice takes no further payments
	_, err = rig.svc.Pay(context.Background(), uuid.New(), nil, invoiceID, dto.PayInvoiceRequest{
		Method: model.MethodCard,
		Amount: dec("1.00"),
	})
	assert.Equal(t, apierror.KindConflict, kindOf(t, err))
	assert.ErrorContains(t, err, "settled")
}

func TestPayCash_MovementFailureSurfaces(t *testing.T) {
	rig := newPaymentRig()
	invoiceID := rig.postedInvoice(t, "100")
	sessionID := rig.openCashSession(t)
	rig.cash.failCreateMovement = errors.New("connection reset")

	sid := sessionID.String()
	_, err := rig.svc.Pay(context.Background(), uuid.New(), nil, invoiceID, dto.PayInvoiceRequest{
		Method:        model.MethodCash,
		Amount:        dec("100"),
		CashSessionID: &sid,
	})
	require.Error(t, err)
	assert.Empty(t, rig.cash.movements)
}

func TestPay_ChangeWithoutTender(t *testing.T) {
	rig := newPaymentRig()
	invoiceID := rig.postedInvoice(t, "80")
	sessionID := rig.openCashSession(t)

	sid := sessionID.String()
	resp, err := rig.svc.Pay(context.Background(), uuid.New(), nil, invoiceID, dto.PayInvoiceRequest{
		Method:        model.MethodCash,
		Amount:        dec("80"),
		CashSessionID: &sid,
	})
	require.NoError(t, err)
	assert.True(t, resp.Change.IsZero())
}
