package handler

import (
	"net/http"

	"clinipos/internal/dto"
	"clinipos/internal/service"

	"github.com/gin-gonic/gin"
)

type CashHandler struct {
	svc   service.CashService
	audit service.AuditService
}

func NewCashHandler(svc service.CashService, audit service.AuditService) *CashHandler {
	return &CashHandler{svc: svc, audit: audit}
}

// OpenSession godoc
// @Summary Opens a cash session on a register
// @Tags cash
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.OpenSessionRequest true "Opening data"
// @Success 201 {object} dto.SessionResponse
// @Failure 404 {object} apierror.Response
// @Failure 409 {object} apierror.Response
// @Router /v1/cash/sessions [post]
func (h *CashHandler) OpenSession(c *gin.Context) {
	var req dto.OpenSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	userID, rcID := auditContext(c, h.audit)

	resp, err := h.svc.Open(c.Request.Context(), userID, rcID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// CloseSession godoc
// @Summary Closes a session against a declared drawer count
// @Tags cash
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param body body dto.CloseSessionRequest true "Declared total"
// @Success 200 {object} dto.CloseSessionResponse
// @Failure 404 {object} apierror.Response
// @Failure 409 {object} apierror.Response
// @Router /v1/cash/sessions/{id}/close [post]
func (h *CashHandler) CloseSession(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CloseSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	userID, rcID := auditContext(c, h.audit)

	resp, err := h.svc.Close(c.Request.Context(), userID, rcID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetSession godoc
// @Summary Session detail with its most recent movements
// @Tags cash
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionDetailResponse
// @Failure 404 {object} apierror.Response
// @Router /v1/cash/sessions/{id} [get]
func (h *CashHandler) GetSession(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Detail(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetSummary godoc
// @Summary Live ledger summary for a session, open or closed
// @Tags cash
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionSummaryResponse
// @Failure 404 {object} apierror.Response
// @Router /v1/cash/sessions/{id}/summary [get]
func (h *CashHandler) GetSummary(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Summary(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListSessions godoc
// @Summary Paginated session listing
// @Tags cash
// @Produce json
// @Security BearerAuth
// @Param status query string false "open | closed"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.SessionListResponse
// @Router /v1/cash/sessions [get]
func (h *CashHandler) ListSessions(c *gin.Context) {
	filter := dto.SessionFilter{
		Status: c.Query("status"),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 50),
	}
	resp, err := h.svc.ListSessions(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListRegisters godoc
// @Summary Lists the configured cash registers
// @Tags cash
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.RegisterResponse
// @Router /v1/cash/registers [get]
func (h *CashHandler) ListRegisters(c *gin.Context) {
	resp, err := h.svc.ListRegisters(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecordMovement godoc
// @Summary Appends a movement to an open session's ledger
// @Tags cash
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RecordMovementRequest true "Movement"
// @Success 201 {object} dto.MovementResponse
// @Failure 403 {object} apierror.Response
// @Failure 404 {object} apierror.Response
// @Router /v1/cash/movements [post]
func (h *CashHandler) RecordMovement(c *gin.Context) {
	var req dto.RecordMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	userID, rcID := auditContext(c, h.audit)

	resp, err := h.svc.RecordMovement(c.Request.Context(), userID, rcID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// DeleteMovement godoc
// @Summary Removes a movement while its session is still open
// @Tags cash
// @Security BearerAuth
// @Param id path string true "Movement ID"
// @Success 204
// @Failure 403 {object} apierror.Response
// @Failure 404 {object} apierror.Response
// @Router /v1/cash/movements/{id} [delete]
func (h *CashHandler) DeleteMovement(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteMovement(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMovements godoc
// @Summary Paginated movement listing with session/type/date filters
// @Tags cash
// @Produce json
// @Security BearerAuth
// @Param session_id query string false "Session ID"
// @Param type query string false "Movement type"
// @Param from query string false "From date YYYY-MM-DD"
// @Param to query string false "To date YYYY-MM-DD"
// @Success 200 {object} dto.MovementListResponse
// @Router /v1/cash/movements [get]
func (h *CashHandler) ListMovements(c *gin.Context) {
	filter := dto.MovementFilter{
		SessionID: c.Query("session_id"),
		Type:      c.Query("type"),
		From:      c.Query("from"),
		To:        c.Query("to"),
		Page:      queryInt(c, "page", 1),
		Limit:     queryInt(c, "limit", 100),
	}
	resp, err := h.svc.ListMovements(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
