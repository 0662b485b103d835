package handler

import (
	"net/http"

	"clinipos/internal/dto"
	"clinipos/internal/service"

	"github.com/gin-gonic/gin"
)

type PreclinicHandler struct{ svc service.PreclinicService }

func NewPreclinicHandler(svc service.PreclinicService) *PreclinicHandler {
	return &PreclinicHandler{svc: svc}
}

// Create godoc
// @Summary Records a patient's preclinic vitals for today's visit
// @Tags preclinic
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreatePreclinicRequest true "Vitals"
// @Success 201 {object} dto.PreclinicResponse
// @Failure 404 {object} apierror.Response
// @Router /v1/preclinic [post]
func (h *PreclinicHandler) Create(c *gin.Context) {
	var req dto.CreatePreclinicRequest
	if !bindAndValidate(c, &req) {
		return
	}
	userID := currentUser(c)

	resp, err := h.svc.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Update godoc
// @Summary Amends a preclinic record's vitals
// @Tags preclinic
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Param body body dto.UpdatePreclinicRequest true "Changed vitals"
// @Success 200 {object} dto.PreclinicResponse
// @Failure 404 {object} apierror.Response
// @Router /v1/preclinic/{id} [patch]
func (h *PreclinicHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdatePreclinicRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PreclinicHandler) Get(c *gin.Context) {
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
