package repository

import (
	"context"

	"clinipos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PreclinicRepository interface {
	Create(ctx context.Context, rec *model.PreclinicRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PreclinicRecord, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]model.PreclinicRecord, error)
	Update(ctx context.Context, rec *model.PreclinicRecord) error
}

type preclinicRepo struct{ db *gorm.DB }

func NewPreclinicRepository(db *gorm.DB) PreclinicRepository { return &preclinicRepo{db: db} }

func (r *preclinicRepo) Create(ctx context.Context, rec *model.PreclinicRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *preclinicRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PreclinicRecord, error) {
	var rec model.PreclinicRecord
	err := r.db.WithContext(ctx).Preload("Patient").First(&rec, id).Error
	return &rec, err
}

func (r *preclinicRepo) Update(ctx context.Context, rec *model.PreclinicRecord) error {
	return r.db.WithContext(ctx).Omit("Patient").Save(rec).Error
}

func (r *preclinicRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]model.PreclinicRecord, error) {
	var recs []model.PreclinicRecord
	err := r.db.WithContext(ctx).Where("patient_id = ?", patientID).Order("visit_date DESC").Find(&recs).Error
	return recs, err
}
