package service

import (
	"context"
	"errors"
	"time"

	"clinipos/internal/apierror"
	"clinipos/internal/dto"
	"clinipos/internal/model"
	"clinipos/internal/money"
	"clinipos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CashService interface {
	Open(ctx context.Context, userID uuid.UUID, rcID *uuid.UUID, req dto.OpenSessionRequest) (*dto.SessionResponse, error)
	Close(ctx context.Context, userID uuid.UUID, rcID *uuid.UUID, sessionID uuid.UUID, req dto.CloseSessionRequest) (*dto.CloseSessionResponse, error)
	Summary(ctx context.Context, sessionID uuid.UUID) (*dto.SessionSummaryResponse, error)
	Detail(ctx context.Context, sessionID uuid.UUID) (*dto.SessionDetailResponse, error)
	ListSessions(ctx context.Context, filter dto.SessionFilter) (*dto.SessionListResponse, error)
	ListRegisters(ctx context.Context) ([]dto.RegisterResponse, error)
	RecordMovement(ctx context.Context, userID uuid.UUID, rcID *uuid.UUID, req dto.RecordMovementRequest) (*dto.MovementResponse, error)
	DeleteMovement(ctx context.Context, movementID uuid.UUID) error
	ListMovements(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error)
	// FindOpenSession is called by PaymentService to validate a cash payment's session
	FindOpenSession(ctx context.Context, sessionID uuid.UUID) (*model.CashSession, error)
}

type cashService struct {
	repo repository.CashRepository
}

func NewCashService(repo repository.CashRepository) CashService {
	return &cashService{repo: repo}
}

// ── Open ──────────────────────────────────────────────────────────────────────

func (s *cashService) Open(ctx context.Context, userID uuid.UUID, rcID *uuid.UUID, req dto.OpenSessionRequest) (*dto.SessionResponse, error) {
	registerID, err := uuid.Parse(req.RegisterID)
	if err != nil {
		return nil, apierror.InvalidArgument("invalid register_id")
	}

	register, err := s.repo.FindRegisterByID(ctx, registerID)
	if err != nil {
		return nil, apierror.NotFound("cash register not found")
	}

	if existing, err := s.repo.FindOpenSessionByRegister(ctx, registerID); err == nil && existing != nil {
		return nil, apierror.Conflict("register already has an open session")
	}

	session := &model.CashSession{
		RegisterID:       registerID,
		OpenedByID:       userID,
		OpeningFloat:     money.Round2(req.OpeningFloat),
		RequestContextID: rcID,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		// The partial unique index on open sessions turns a concurrent
		// double-open into a duplicated key error.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict("register already has an open session")
		}
		return nil, err
	}
	session.Register = register

	resp := sessionToResponse(session)
	return &resp, nil
}

// ── Close ─────────────────────────────────────────────────────────────────────
// The closing snapshot is computed from the movement rows inside the same
// transaction that stamps closed_at, under a row lock on the session.

func (s *cashService) Close(ctx context.Context, userID uuid.UUID, rcID *uuid.UUID, sessionID uuid.UUID, req dto.CloseSessionRequest) (*dto.CloseSessionResponse, error) {
	var out *dto.CloseSessionResponse

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		session, err := s.repo.FindSessionByIDTx(ctx, tx, sessionID)
		if err != nil {
			return apierror.NotFound("cash session not found")
		}
		if !session.Open() {
			return apierror.Conflict("cash session is already closed")
		}

		totals, systemTotal, err := s.computeTotals(ctx, tx, session)
		if err != nil {
			return err
		}

		declared := money.Round2(req.DeclaredTotal)
		variance := declared.Sub(systemTotal)

		now := time.Now().UTC()
		session.ClosedByID = &userID
		session.ClosedAt = &now
		session.DeclaredTotal = &declared
		session.SystemTotal = &systemTotal
		session.Variance = &variance
		if rcID != nil {
			session.RequestContextID = rcID
		}

		if err := s.repo.UpdateSessionTx(ctx, tx, session); err != nil {
			return err
		}

		out = &dto.CloseSessionResponse{
			Session:   sessionToResponse(session),
			Breakdown: totals,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return out, nil
}

// ── Summary ───────────────────────────────────────────────────────────────────
// Always recomputed live from the ledger, for open and closed sessions alike.

func (s *cashService) Summary(ctx context.Context, sessionID uuid.UUID) (*dto.SessionSummaryResponse, error) {
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, apierror.NotFound("cash session not found")
	}

	totals, systemTotal, err := s.computeTotals(ctx, nil, session)
	if err != nil {
		return nil, err
	}

	resp := &dto.SessionSummaryResponse{
		SessionID:    session.ID.String(),
		Status:       sessionStatus(session),
		OpeningFloat: session.OpeningFloat,
		Totals:       totals,
		SystemTotal:  systemTotal,
	}
	if session.DeclaredTotal != nil {
		resp.DeclaredTotal = session.DeclaredTotal
		variance := session.DeclaredTotal.Sub(systemTotal)
		resp.Variance = &variance
	}
	return resp, nil
}

func (s *cashService) Detail(ctx context.Context, sessionID uuid.UUID) (*dto.SessionDetailResponse, error) {
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, apierror.NotFound("cash session not found")
	}

	movs, _, err := s.repo.ListMovements(ctx, dto.MovementFilter{
		SessionID: session.ID.String(),
		Page:      1,
		Limit:     50,
	})
	if err != nil {
		return nil, err
	}

	recent := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		recent = append(recent, movementToResponse(&m))
	}
	return &dto.SessionDetailResponse{
		Session:         sessionToResponse(session),
		RecentMovements: recent,
	}, nil
}

func (s *cashService) ListSessions(ctx context.Context, filter dto.SessionFilter) (*dto.SessionListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	sessions, total, err := s.repo.ListSessions(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		items = append(items, sessionToResponse(&sessions[i]))
	}
	return &dto.SessionListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *cashService) ListRegisters(ctx context.Context) ([]dto.RegisterResponse, error) {
	regs, err := s.repo.ListRegisters(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RegisterResponse, 0, len(regs))
	for _, reg := range regs {
		item := dto.RegisterResponse{
			ID:         reg.ID.String(),
			Name:       reg.Name,
			LocationID: reg.LocationID.String(),
		}
		if reg.Location != nil {
			name := reg.Location.Name
			item.LocationName = &name
		}
		out = append(out, item)
	}
	return out, nil
}

// ── RecordMovement ────────────────────────────────────────────────────────────
// Movements are append-only while the session is open. The session row is
// locked so a concurrent close cannot slip in between the check and the insert.

func (s *cashService) RecordMovement(ctx context.Context, userID uuid.UUID, rcID *uuid.UUID, req dto.RecordMovementRequest) (*dto.MovementResponse, error) {
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return nil, apierror.InvalidArgument("invalid session_id")
	}

	mov := &model.CashMovement{
		SessionID:        sessionID,
		Type:             req.Type,
		Amount:           money.Round2(req.Amount),
		Reference:        req.Reference,
		CreatedByID:      userID,
		RequestContextID: rcID,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		session, err := s.repo.FindSessionByIDTx(ctx, tx, sessionID)
		if err != nil {
			return apierror.NotFound("cash session not found")
		}
		if !session.Open() {
			return apierror.Forbidden("cash session is closed")
		}
		return s.repo.CreateMovement(ctx, tx, mov)
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := movementToResponse(mov)
	return &resp, nil
}

// ── DeleteMovement ────────────────────────────────────────────────────────────

func (s *cashService) DeleteMovement(ctx context.Context, movementID uuid.UUID) error {
	mov, err := s.repo.FindMovementByID(ctx, movementID)
	if err != nil {
		return apierror.NotFound("cash movement not found")
	}
	if mov.Session == nil || !mov.Session.Open() {
		return apierror.Forbidden("cash session is closed")
	}
	return s.repo.DeleteMovement(ctx, movementID)
}

func (s *cashService) ListMovements(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 100
	}
	movs, total, err := s.repo.ListMovements(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(movs))
	for i := range movs {
		items = append(items, movementToResponse(&movs[i]))
	}
	return &dto.MovementListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ── FindOpenSession ───────────────────────────────────────────────────────────

func (s *cashService) FindOpenSession(ctx context.Context, sessionID uuid.UUID) (*model.CashSession, error) {
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, apierror.NotFound("cash session not found")
	}
	if !session.Open() {
		return nil, apierror.Conflict("cash session is closed")
	}
	return session, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// computeTotals sums the ledger by movement type and derives the expected
// drawer amount: opening float plus deposits and sales, minus withdrawals,
// plus adjustments.
func (s *cashService) computeTotals(ctx context.Context, tx *gorm.DB, session *model.CashSession) (dto.TotalsByType, decimal.Decimal, error) {
	sums, err := s.repo.SumMovementsByType(ctx, tx, session.ID)
	if err != nil {
		return dto.TotalsByType{}, decimal.Zero, err
	}

	totals := dto.TotalsByType{
		Sales:       money.Round2(sums[model.MovementSale]),
		Withdrawals: money.Round2(sums[model.MovementWithdrawal]),
		Deposits:    money.Round2(sums[model.MovementDeposit]),
		Adjustments: money.Round2(sums[model.MovementAdjustment]),
	}

	systemTotal := session.OpeningFloat.
		Add(totals.Deposits).
		Add(totals.Sales).
		Sub(totals.Withdrawals).
		Add(totals.Adjustments)

	return totals, money.Round2(systemTotal), nil
}

func sessionStatus(s *model.CashSession) string {
	if s.Open() {
		return "open"
	}
	return "closed"
}

func sessionToResponse(s *model.CashSession) dto.SessionResponse {
	resp := dto.SessionResponse{
		ID:            s.ID.String(),
		RegisterID:    s.RegisterID.String(),
		Status:        sessionStatus(s),
		OpenedBy:      s.OpenedByID.String(),
		OpenedAt:      s.OpenedAt.Format(time.RFC3339),
		OpeningFloat:  s.OpeningFloat,
		DeclaredTotal: s.DeclaredTotal,
		SystemTotal:   s.SystemTotal,
		Variance:      s.Variance,
	}
	if s.Register != nil {
		resp.RegisterName = s.Register.Name
	}
	if s.ClosedByID != nil {
		closedBy := s.ClosedByID.String()
		resp.ClosedBy = &closedBy
	}
	if s.ClosedAt != nil {
		t := s.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	return resp
}

func movementToResponse(m *model.CashMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:        m.ID.String(),
		SessionID: m.SessionID.String(),
		Type:      m.Type,
		Amount:    m.Amount,
		Reference: m.Reference,
		CreatedBy: m.CreatedByID.String(),
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}
