package service

import (
	"context"
	"time"

	"clinipos/internal/apierror"
	"clinipos/internal/dto"
	"clinipos/internal/model"
	"clinipos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PreclinicService interface {
	Create(ctx context.Context, recordedBy uuid.UUID, req dto.CreatePreclinicRequest) (*dto.PreclinicResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.PreclinicResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdatePreclinicRequest) (*dto.PreclinicResponse, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]dto.PreclinicResponse, error)
}

type preclinicService struct {
	repo        repository.PreclinicRepository
	patientRepo repository.PatientRepository
}

func NewPreclinicService(repo repository.PreclinicRepository, patientRepo repository.PatientRepository) PreclinicService {
	return &preclinicService{repo: repo, patientRepo: patientRepo}
}

func (s *preclinicService) Create(ctx context.Context, recordedBy uuid.UUID, req dto.CreatePreclinicRequest) (*dto.PreclinicResponse, error) {
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, apierror.InvalidArgument("invalid patient_id")
	}
	if _, err := s.patientRepo.FindByID(ctx, patientID); err != nil {
		return nil, apierror.NotFound("patient not found")
	}

	rec := &model.PreclinicRecord{
		PatientID:              patientID,
		VisitDate:              time.Now().UTC(),
		BloodPressureSystolic:  req.BloodPressureSystolic,
		BloodPressureDiastolic: req.BloodPressureDiastolic,
		HeartRate:              req.HeartRate,
		RespRate:               req.RespRate,
		TemperatureC:           req.TemperatureC,
		WeightKg:               req.WeightKg,
		HeightCm:               req.HeightCm,
		ChiefComplaint:         req.ChiefComplaint,
		CurrentMedications:     req.CurrentMedications,
		Notes:                  req.Notes,
		RecordedByID:           recordedBy,
	}
	rec.BMI = computeBMI(req.WeightKg, req.HeightCm)

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	resp := preclinicToResponse(rec)
	return &resp, nil
}

func (s *preclinicService) Get(ctx context.Context, id uuid.UUID) (*dto.PreclinicResponse, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("preclinic record not found")
	}
	resp := preclinicToResponse(rec)
	return &resp, nil
}

func (s *preclinicService) Update(ctx context.Context, id uuid.UUID, req dto.UpdatePreclinicRequest) (*dto.PreclinicResponse, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("preclinic record not found")
	}

	if req.BloodPressureSystolic != nil {
		rec.BloodPressureSystolic = req.BloodPressureSystolic
	}
	if req.BloodPressureDiastolic != nil {
		rec.BloodPressureDiastolic = req.BloodPressureDiastolic
	}
	if req.HeartRate != nil {
		rec.HeartRate = req.HeartRate
	}
	if req.RespRate != nil {
		rec.RespRate = req.RespRate
	}
	if req.TemperatureC != nil {
		rec.TemperatureC = req.TemperatureC
	}
	if req.WeightKg != nil {
		rec.WeightKg = req.WeightKg
	}
	if req.HeightCm != nil {
		rec.HeightCm = req.HeightCm
	}
	if req.ChiefComplaint != nil {
		rec.ChiefComplaint = req.ChiefComplaint
	}
	if req.CurrentMedications != nil {
		rec.CurrentMedications = req.CurrentMedications
	}
	if req.Notes != nil {
		rec.Notes = req.Notes
	}

	// BMI always tracks the stored measurements
	rec.BMI = computeBMI(rec.WeightKg, rec.HeightCm)

	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	resp := preclinicToResponse(rec)
	return &resp, nil
}

func (s *preclinicService) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]dto.PreclinicResponse, error) {
	if _, err := s.patientRepo.FindByID(ctx, patientID); err != nil {
		return nil, apierror.NotFound("patient not found")
	}
	recs, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PreclinicResponse, 0, len(recs))
	for i := range recs {
		out = append(out, preclinicToResponse(&recs[i]))
	}
	return out, nil
}

// computeBMI returns weight / height² in kg/m², one decimal, or nil when
// either measurement is missing or zero.
func computeBMI(weightKg, heightCm *decimal.Decimal) *decimal.Decimal {
	if weightKg == nil || heightCm == nil || weightKg.IsZero() || heightCm.IsZero() {
		return nil
	}
	heightM := heightCm.Div(decimal.NewFromInt(100))
	bmi := weightKg.Div(heightM.Mul(heightM)).Round(1)
	return &bmi
}

func preclinicToResponse(rec *model.PreclinicRecord) dto.PreclinicResponse {
	return dto.PreclinicResponse{
		ID:                     rec.ID.String(),
		PatientID:              rec.PatientID.String(),
		VisitDate:              rec.VisitDate.Format(time.RFC3339),
		BloodPressureSystolic:  rec.BloodPressureSystolic,
		BloodPressureDiastolic: rec.BloodPressureDiastolic,
		HeartRate:              rec.HeartRate,
		RespRate:               rec.RespRate,
		TemperatureC:           rec.TemperatureC,
		WeightKg:               rec.WeightKg,
		HeightCm:               rec.HeightCm,
		BMI:                    rec.BMI,
		ChiefComplaint:         rec.ChiefComplaint,
		CurrentMedications:     rec.CurrentMedications,
		Notes:                  rec.Notes,
		RecordedBy:             rec.RecordedByID.String(),
		CreatedAt:              rec.CreatedAt.Format(time.RFC3339),
	}
}
