package repository

import (
	"context"

	"clinipos/internal/model"

	"gorm.io/gorm"
)

type RequestContextRepository interface {
	Create(ctx context.Context, rc *model.RequestContext) error
}

type requestContextRepo struct{ db *gorm.DB }

func NewRequestContextRepository(db *gorm.DB) RequestContextRepository {
	return &requestContextRepo{db: db}
}

func (r *requestContextRepo) Create(ctx context.Context, rc *model.RequestContext) error {
	return r.db.WithContext(ctx).Create(rc).Error
}
