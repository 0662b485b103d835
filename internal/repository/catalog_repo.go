package repository

import (
	"context"

	"clinipos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogRepository serves the billable item catalog: clinical services,
// inventory products and the providers who perform services.
type CatalogRepository interface {
	FindServiceByID(ctx context.Context, id uuid.UUID) (*model.Service, error)
	FindServiceByCode(ctx context.Context, code string) (*model.Service, error)
	ListServices(ctx context.Context) ([]model.Service, error)
	FindProductByID(ctx context.Context, id uuid.UUID) (*model.InventoryProduct, error)
	FindProductBySKU(ctx context.Context, sku string) (*model.InventoryProduct, error)
	ListProducts(ctx context.Context) ([]model.InventoryProduct, error)
	FindProviderByID(ctx context.Context, id uuid.UUID) (*model.Provider, error)
	ListProviders(ctx context.Context) ([]model.Provider, error)
	FindPosTerminalByID(ctx context.Context, id uuid.UUID) (*model.PosTerminal, error)
}

type catalogRepo struct{ db *gorm.DB }

func NewCatalogRepository(db *gorm.DB) CatalogRepository { return &catalogRepo{db: db} }

func (r *catalogRepo) FindServiceByID(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	var s model.Service
	err := r.db.WithContext(ctx).Preload("Category").First(&s, id).Error
	return &s, err
}

func (r *catalogRepo) FindServiceByCode(ctx context.Context, code string) (*model.Service, error) {
	var s model.Service
	err := r.db.WithContext(ctx).Where("code = ? AND active = true", code).First(&s).Error
	return &s, err
}

func (r *catalogRepo) ListServices(ctx context.Context) ([]model.Service, error) {
	var services []model.Service
	err := r.db.WithContext(ctx).Preload("Category").Where("active = true").Order("name ASC").Find(&services).Error
	return services, err
}

func (r *catalogRepo) FindProductByID(ctx context.Context, id uuid.UUID) (*model.InventoryProduct, error) {
	var p model.InventoryProduct
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *catalogRepo) FindProductBySKU(ctx context.Context, sku string) (*model.InventoryProduct, error) {
	var p model.InventoryProduct
	err := r.db.WithContext(ctx).Where("sku = ? AND active = true", sku).First(&p).Error
	return &p, err
}

func (r *catalogRepo) ListProducts(ctx context.Context) ([]model.InventoryProduct, error) {
	var products []model.InventoryProduct
	err := r.db.WithContext(ctx).Where("active = true").Order("name ASC").Find(&products).Error
	return products, err
}

func (r *catalogRepo) FindProviderByID(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	var p model.Provider
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *catalogRepo) ListProviders(ctx context.Context) ([]model.Provider, error) {
	var providers []model.Provider
	err := r.db.WithContext(ctx).Where("active = true").Order("full_name ASC").Find(&providers).Error
	return providers, err
}

func (r *catalogRepo) FindPosTerminalByID(ctx context.Context, id uuid.UUID) (*model.PosTerminal, error) {
	var t model.PosTerminal
	err := r.db.WithContext(ctx).First(&t, id).Error
	return &t, err
}
