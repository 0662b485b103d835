package handler_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"clinipos/internal/handler"
	"clinipos/internal/infra"
	"clinipos/internal/model"
	"clinipos/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubInvoiceRepo serves a single invoice by ID; the print path needs
// nothing else from the repository.
type stubInvoiceRepo struct {
	repository.InvoiceRepository
	inv *model.Invoice
}

func (r *stubInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Invoice, error) {
	if r.inv != nil && r.inv.ID == id {
		return r.inv, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func TestPrint_LeavesStoredReceiptsAlone(t *testing.T) {
	gin.SetMode(gin.TestMode)

	inv := &model.Invoice{
		ID:        uuid.New(),
		InvoiceNo: "INV-000042",
		Status:    model.InvoicePosted,
		InvoiceAt: time.Now(),
		Total:     decimal.RequireFromString("150.00"),
	}

	// The receipt worker has already rendered this invoice into the shared
	// storage path.
	storage := t.TempDir()
	stored, err := infra.GenerateInvoicePDF(inv, "Clinica Vida", storage)
	require.NoError(t, err)

	h := handler.NewInvoiceHandler(nil, nil, nil, &stubInvoiceRepo{inv: inv}, "Clinica Vida")
	router := gin.New()
	router.GET("/v1/invoices/:id/print", h.Print)

	req := httptest.NewRequest(http.MethodGet, "/v1/invoices/"+inv.ID.String()+"/print", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")), "expected a PDF body")

	// The worker's copy must survive a print of the same invoice.
	_, err = os.Stat(stored)
	assert.NoError(t, err, "stored receipt went missing after print")
}

func TestPrint_UnknownInvoice(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := handler.NewInvoiceHandler(nil, nil, nil, &stubInvoiceRepo{}, "Clinica Vida")
	router := gin.New()
	router.GET("/v1/invoices/:id/print", h.Print)

	req := httptest.NewRequest(http.MethodGet, "/v1/invoices/"+uuid.NewString()+"/print", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
