package handler

import (
	"net/http"

	"clinipos/internal/dto"
	"clinipos/internal/service"

	"github.com/gin-gonic/gin"
)

type PatientHandler struct {
	svc       service.PatientService
	preclinic service.PreclinicService
}

func NewPatientHandler(svc service.PatientService, preclinic service.PreclinicService) *PatientHandler {
	return &PatientHandler{svc: svc, preclinic: preclinic}
}

// Create godoc
// @Summary Registers a patient and assigns a record number
// @Tags patients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreatePatientRequest true "Patient data"
// @Success 201 {object} dto.PatientResponse
// @Router /v1/patients [post]
func (h *PatientHandler) Create(c *gin.Context) {
	var req dto.CreatePatientRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PatientHandler) Get(c *gin.Context) {
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
// @Summary Searches patients by record number or name
// @Tags patients
// @Produce json
// @Security BearerAuth
// @Param search query string false "MRN or name fragment"
// @Success 200 {object} dto.PatientListResponse
// @Router /v1/patients [get]
func (h *PatientHandler) List(c *gin.Context) {
	filter := dto.PatientFilter{
		Search: c.Query("search"),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 50),
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PatientHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdatePatientRequest
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

// Delete godoc
// @Summary Permanently removes a patient record
// @Tags patients
// @Security BearerAuth
// @Param id path string true "Patient ID"
// @Success 204
// @Failure 404 {object} apierror.Response
// @Router /v1/patients/{id} [delete]
func (h *PatientHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListPreclinic godoc
// @Summary Lists a patient's preclinic vitals records
// @Tags patients
// @Produce json
// @Security BearerAuth
// @Param id path string true "Patient ID"
// @Success 200 {array} dto.PreclinicResponse
// @Router /v1/patients/{id}/preclinic [get]
func (h *PatientHandler) ListPreclinic(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.preclinic.ListByPatient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
