package service

import (
	"context"
	"errors"
	"time"

	"clinipos/internal/apierror"
	"clinipos/internal/dto"
	"clinipos/internal/model"
	"clinipos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PatientService interface {
	Create(ctx context.Context, req dto.CreatePatientRequest) (*dto.PatientResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.PatientResponse, error)
	List(ctx context.Context, filter dto.PatientFilter) (*dto.PatientListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdatePatientRequest) (*dto.PatientResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type patientService struct {
	repo repository.PatientRepository
}

func NewPatientService(repo repository.PatientRepository) PatientService {
	return &patientService{repo: repo}
}

func (s *patientService) Create(ctx context.Context, req dto.CreatePatientRequest) (*dto.PatientResponse, error) {
	mrn, err := s.repo.NextMRN(ctx)
	if err != nil {
		return nil, err
	}

	p := &model.Patient{
		MRN:       mrn,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Sex:       req.Sex,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
		City:      req.City,
		Region:    req.Region,
		Country:   req.Country,
	}
	if req.BirthDate != nil {
		bd, err := time.Parse("2006-01-02", *req.BirthDate)
		if err != nil {
			return nil, apierror.InvalidArgument("birth_date must be YYYY-MM-DD")
		}
		p.BirthDate = &bd
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict("patient record number already exists")
		}
		return nil, err
	}
	resp := patientToResponse(p)
	return &resp, nil
}

func (s *patientService) Get(ctx context.Context, id uuid.UUID) (*dto.PatientResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("patient not found")
	}
	resp := patientToResponse(p)
	return &resp, nil
}

func (s *patientService) List(ctx context.Context, filter dto.PatientFilter) (*dto.PatientListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	patients, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PatientResponse, 0, len(patients))
	for i := range patients {
		items = append(items, patientToResponse(&patients[i]))
	}
	return &dto.PatientListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *patientService) Update(ctx context.Context, id uuid.UUID, req dto.UpdatePatientRequest) (*dto.PatientResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("patient not found")
	}

	if req.FirstName != "" {
		p.FirstName = req.FirstName
	}
	if req.LastName != "" {
		p.LastName = req.LastName
	}
	if req.BirthDate != nil {
		bd, err := time.Parse("2006-01-02", *req.BirthDate)
		if err != nil {
			return nil, apierror.InvalidArgument("birth_date must be YYYY-MM-DD")
		}
		p.BirthDate = &bd
	}
	if req.Sex != nil {
		p.Sex = req.Sex
	}
	if req.Phone != nil {
		p.Phone = req.Phone
	}
	if req.Email != nil {
		p.Email = req.Email
	}
	if req.Address != nil {
		p.Address = req.Address
	}
	if req.City != nil {
		p.City = req.City
	}
	if req.Region != nil {
		p.Region = req.Region
	}
	if req.Country != nil {
		p.Country = req.Country
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	resp := patientToResponse(p)
	return &resp, nil
}

func (s *patientService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return apierror.NotFound("patient not found")
	}
	return s.repo.Delete(ctx, id)
}

func patientToResponse(p *model.Patient) dto.PatientResponse {
	resp := dto.PatientResponse{
		ID:        p.ID.String(),
		MRN:       p.MRN,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Sex:       p.Sex,
		Phone:     p.Phone,
		Email:     p.Email,
		Address:   p.Address,
		City:      p.City,
		Region:    p.Region,
		Country:   p.Country,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
	if p.BirthDate != nil {
		bd := p.BirthDate.Format("2006-01-02")
		resp.BirthDate = &bd
	}
	return resp
}
