package handler

import (
	"net/http"
	"os"

	"clinipos/internal/apierror"
	"clinipos/internal/dto"
	"clinipos/internal/infra"
	"clinipos/internal/repository"
	"clinipos/internal/service"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	svc        service.InvoiceService
	payments   service.PaymentService
	audit      service.AuditService
	repo       repository.InvoiceRepository
	clinicName string
}

func NewInvoiceHandler(
	svc service.InvoiceService,
	payments service.PaymentService,
	audit service.AuditService,
	repo repository.InvoiceRepository,
	clinicName string,
) *InvoiceHandler {
	return &InvoiceHandler{
		svc:        svc,
		payments:   payments,
		audit:      audit,
		repo:       repo,
		clinicName: clinicName,
	}
}

// Create godoc
// @Summary Creates a draft invoice with zero totals
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateInvoiceRequest true "Draft data"
// @Success 201 {object} dto.InvoiceResponse
// @Failure 404 {object} apierror.Response
// @Router /v1/invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	userID, rcID := auditContext(c, h.audit)

	resp, err := h.svc.CreateDraft(c.Request.Context(), userID, rcID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary Invoice detail with lines and payments
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} apierror.Response
// @Router /v1/invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary Paginated invoice listing
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param status query string false "draft | posted | void"
// @Param patient_id query string false "Patient ID"
// @Param from query string false "From date YYYY-MM-DD"
// @Param to query string false "To date YYYY-MM-DD"
// @Success 200 {object} dto.InvoiceListResponse
// @Router /v1/invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	filter := dto.InvoiceFilter{
		Status:    c.Query("status"),
		PatientID: c.Query("patient_id"),
		From:      c.Query("from"),
		To:        c.Query("to"),
		Page:      queryInt(c, "page", 1),
		Limit:     queryInt(c, "limit", 50),
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddLine godoc
// @Summary Appends a line to a draft invoice and recomputes totals
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Param body body dto.AddLineRequest true "Line data"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} apierror.Response
// @Failure 409 {object} apierror.Response
// @Router /v1/invoices/{id}/lines [post]
func (h *InvoiceHandler) AddLine(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.AddLineRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddLine(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Post godoc
// @Summary Posts a draft invoice, freezing its totals
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 409 {object} apierror.Response
// @Router /v1/invoices/{id}/post [post]
func (h *InvoiceHandler) Post(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Post(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Void godoc
// @Summary Voids an invoice that has no payments against it
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 409 {object} apierror.Response
// @Router /v1/invoices/{id}/void [post]
func (h *InvoiceHandler) Void(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Void(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Pay godoc
// @Summary Applies a payment against a posted invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Param body body dto.PayInvoiceRequest true "Payment data"
// @Success 201 {object} dto.PaymentResultResponse
// @Failure 400 {object} apierror.Response
// @Failure 409 {object} apierror.Response
// @Router /v1/invoices/{id}/payments [post]
func (h *InvoiceHandler) Pay(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.PayInvoiceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	userID, rcID := auditContext(c, h.audit)

	resp, err := h.payments.Pay(c.Request.Context(), userID, rcID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ConfirmTransfer godoc
// @Summary Marks a pending bank transfer payment as confirmed
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Success 200 {object} dto.PaymentResponse
// @Failure 404 {object} apierror.Response
// @Failure 409 {object} apierror.Response
// @Router /v1/payments/{id}/confirm-transfer [patch]
func (h *InvoiceHandler) ConfirmTransfer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.payments.ConfirmTransfer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Print godoc
// @Summary Renders the invoice receipt PDF and streams it back
// @Tags invoices
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Success 200 {file} binary
// @Failure 404 {object} apierror.Response
// @Router /v1/invoices/{id}/print [get]
func (h *InvoiceHandler) Print(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	inv, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, apierror.NotFound("invoice not found"))
		return
	}

	// Render into a private temp dir; the receipt worker owns the shared
	// storage path and its files must not be deleted from under it.
	tmpDir, err := os.MkdirTemp("", "clinipos-print-")
	if err != nil {
		respondError(c, err)
		return
	}
	defer os.RemoveAll(tmpDir)

	path, err := infra.GenerateInvoicePDF(inv, h.clinicName, tmpDir)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+inv.InvoiceNo+`.pdf"`)
	c.File(path)
}
