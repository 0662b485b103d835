package service

import (
	"context"

	"clinipos/internal/model"
	"clinipos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AuditService records one RequestContext row per mutating request so
// sessions, movements, invoices and payments can be traced back to the
// request that produced them.
type AuditService interface {
	Record(ctx context.Context, userID uuid.UUID, ip, userAgent string) *uuid.UUID
}

type auditService struct {
	repo repository.RequestContextRepository
}

func NewAuditService(repo repository.RequestContextRepository) AuditService {
	return &auditService{repo: repo}
}

// Record is best effort: a failed audit write must never block the
// business operation, so it logs a warning and returns nil.
func (s *auditService) Record(ctx context.Context, userID uuid.UUID, ip, userAgent string) *uuid.UUID {
	rc := &model.RequestContext{
		UserID:    userID,
		IPAddress: ip,
		UserAgent: userAgent,
	}
	if err := s.repo.Create(ctx, rc); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("audit context write failed")
		return nil
	}
	return &rc.ID
}
