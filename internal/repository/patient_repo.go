package repository

import (
	"context"
	"fmt"

	"clinipos/internal/dto"
	"clinipos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PatientRepository interface {
	Create(ctx context.Context, p *model.Patient) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	FindByMRN(ctx context.Context, mrn string) (*model.Patient, error)
	List(ctx context.Context, filter dto.PatientFilter) ([]model.Patient, int64, error)
	Update(ctx context.Context, p *model.Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	NextMRN(ctx context.Context) (string, error)
}

type patientRepo struct{ db *gorm.DB }

func NewPatientRepository(db *gorm.DB) PatientRepository { return &patientRepo{db: db} }

func (r *patientRepo) Create(ctx context.Context, p *model.Patient) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *patientRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	var p model.Patient
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *patientRepo) FindByMRN(ctx context.Context, mrn string) (*model.Patient, error) {
	var p model.Patient
	err := r.db.WithContext(ctx).Where("mrn = ?", mrn).First(&p).Error
	return &p, err
}

func (r *patientRepo) List(ctx context.Context, filter dto.PatientFilter) ([]model.Patient, int64, error) {
	var patients []model.Patient
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Patient{})

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("mrn ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?", like, like, like)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("last_name ASC, first_name ASC").
		Offset(offset).Limit(filter.Limit).
		Find(&patients).Error

	return patients, total, err
}

func (r *patientRepo) Update(ctx context.Context, p *model.Patient) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *patientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Patient{}, id).Error
}

func (r *patientRepo) NextMRN(ctx context.Context) (string, error) {
	var num int
	err := r.db.WithContext(ctx).Raw("SELECT nextval('patients_mrn_seq')").Scan(&num).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("MRN-%06d", num), nil
}
