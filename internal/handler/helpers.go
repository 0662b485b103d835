package handler

import (
	"net/http"
	"reflect"
	"strconv"

	"clinipos/internal/apierror"
	"clinipos/internal/middleware"
	"clinipos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.InvalidArgument("invalid JSON: "+err.Error()).Body())
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps a service error onto its HTTP status and envelope.
func respondError(c *gin.Context, err error) {
	apiErr := apierror.From(err)
	c.JSON(apiErr.HTTPStatus(), apiErr.Body())
}

// currentUser extracts the authenticated user id from the JWT claims.
func currentUser(c *gin.Context) uuid.UUID {
	claims := middleware.GetClaims(c)
	uid, _ := uuid.Parse(claims.UserID)
	return uid
}

// auditContext records a RequestContext row for a mutating request and
// returns the acting user plus the audit row id (nil when the write failed).
func auditContext(c *gin.Context, audit service.AuditService) (uuid.UUID, *uuid.UUID) {
	userID := currentUser(c)
	rcID := audit.Record(c.Request.Context(), userID, c.ClientIP(), c.Request.UserAgent())
	return userID, rcID
}

// queryInt reads an integer query parameter with a fallback default.
func queryInt(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// parseID parses a :id style path parameter, responding 400 on garbage.
func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.InvalidArgument("invalid id").Body())
		return uuid.Nil, false
	}
	return id, true
}
