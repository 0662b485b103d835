package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"clinipos/internal/apierror"
	"clinipos/internal/dto"
	"clinipos/internal/model"
	"clinipos/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const priceCacheTTL = 4 * time.Hour

// CatalogHandler serves the billable item catalog and the front-desk price
// lookup. Lookups are cached in Redis to keep the hot path off the database.
type CatalogHandler struct {
	repo repository.CatalogRepository
	rdb  *redis.Client
}

func NewCatalogHandler(repo repository.CatalogRepository, rdb *redis.Client) *CatalogHandler {
	return &CatalogHandler{repo: repo, rdb: rdb}
}

// ListServices godoc
// @Summary Lists active clinical services
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ServiceResponse
// @Router /v1/catalog/services [get]
func (h *CatalogHandler) ListServices(c *gin.Context) {
	services, err := h.repo.ListServices(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.ServiceResponse, 0, len(services))
	for i := range services {
		s := &services[i]
		item := dto.ServiceResponse{
			ID:         s.ID.String(),
			Code:       s.Code,
			Name:       s.Name,
			CategoryID: s.CategoryID.String(),
			Price:      s.Price,
			TaxRatePct: s.TaxRatePct,
			Active:     s.Active,
		}
		if s.Category != nil {
			item.CategoryName = s.Category.Name
		}
		out = append(out, item)
	}
	c.JSON(http.StatusOK, out)
}

// ListProducts godoc
// @Summary Lists active inventory products
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ProductResponse
// @Router /v1/catalog/products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.repo.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		p := &products[i]
		out = append(out, dto.ProductResponse{
			ID:         p.ID.String(),
			SKU:        p.SKU,
			Name:       p.Name,
			Unit:       p.Unit,
			Price:      p.Price,
			TaxRatePct: p.TaxRatePct,
			Active:     p.Active,
		})
	}
	c.JSON(http.StatusOK, out)
}

// ListProviders godoc
// @Summary Lists active service providers
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ProviderResponse
// @Router /v1/catalog/providers [get]
func (h *CatalogHandler) ListProviders(c *gin.Context) {
	providers, err := h.repo.ListProviders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.ProviderResponse, 0, len(providers))
	for i := range providers {
		p := &providers[i]
		out = append(out, dto.ProviderResponse{
			ID:        p.ID.String(),
			FullName:  p.FullName,
			Specialty: p.Specialty,
			Active:    p.Active,
		})
	}
	c.JSON(http.StatusOK, out)
}

// PriceLookup godoc
// @Summary Price check by service code or product SKU
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param code path string true "Service code or product SKU"
// @Success 200 {object} dto.PriceLookupResponse
// @Failure 404 {object} apierror.Response
// @Router /v1/catalog/price/{code} [get]
func (h *CatalogHandler) PriceLookup(c *gin.Context) {
	code := c.Param("code")
	ctx := c.Request.Context()
	cacheKey := "price:" + code

	// 1. Try Redis cache
	if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var resp dto.PriceLookupResponse
		if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	// 2. Cache miss — services first, then products
	var resp dto.PriceLookupResponse
	if svc, err := h.repo.FindServiceByCode(ctx, code); err == nil {
		resp = dto.PriceLookupResponse{
			ItemType:   model.ItemService,
			ID:         svc.ID.String(),
			Code:       svc.Code,
			Name:       svc.Name,
			Price:      svc.Price,
			TaxRatePct: svc.TaxRatePct,
		}
	} else if prod, err := h.repo.FindProductBySKU(ctx, code); err == nil {
		resp = dto.PriceLookupResponse{
			ItemType:   model.ItemProduct,
			ID:         prod.ID.String(),
			Code:       prod.SKU,
			Name:       prod.Name,
			Price:      prod.Price,
			TaxRatePct: prod.TaxRatePct,
		}
	} else {
		c.JSON(http.StatusNotFound, apierror.NotFound("no service or product with that code").Body())
		return
	}

	// 3. Populate cache — best effort, ignore errors
	if b, jsonErr := json.Marshal(resp); jsonErr == nil {
		_ = h.rdb.Set(context.Background(), cacheKey, b, priceCacheTTL).Err()
	}

	c.JSON(http.StatusOK, resp)
}
