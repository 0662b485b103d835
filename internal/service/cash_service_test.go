package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"clinipos/internal/apierror"
	"clinipos/internal/dto"
	"clinipos/internal/model"
	"clinipos/internal/repository"
	"clinipos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Full in-memory CashRepository ────────────────────────────────────────────

type fakeCashRepo struct {
	registers map[uuid.UUID]*model.CashRegister
	sessions  map[uuid.UUID]*model.CashSession
	movements []model.CashMovement

	failCreateMovement error // injected fault for atomicity tests
}

func newFakeCashRepo() *fakeCashRepo {
	return &fakeCashRepo{
		registers: make(map[uuid.UUID]*model.CashRegister),
		sessions:  make(map[uuid.UUID]*model.CashSession),
	}
}

func (r *fakeCashRepo) addRegister(name string) *model.CashRegister {
	reg := &model.CashRegister{ID: uuid.New(), Name: name, LocationID: uuid.New()}
	r.registers[reg.ID] = reg
	return reg
}

func (r *fakeCashRepo) DB() *gorm.DB { return nil }

func (r *fakeCashRepo) FindRegisterByID(_ context.Context, id uuid.UUID) (*model.CashRegister, error) {
	reg, ok := r.registers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return reg, nil
}

func (r *fakeCashRepo) ListRegisters(_ context.Context) ([]model.CashRegister, error) {
	out := make([]model.CashRegister, 0, len(r.registers))
	for _, reg := range r.registers {
		out = append(out, *reg)
	}
	return out, nil
}

func (r *fakeCashRepo) CreateSession(_ context.Context, s *model.CashSession) error {
	// Mirror the partial unique index on open sessions
	for _, existing := range r.sessions {
		if existing.RegisterID == s.RegisterID && existing.Open() {
			return gorm.ErrDuplicatedKey
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.OpenedAt = time.Now()
	r.sessions[s.ID] = s
	return nil
}

func (r *fakeCashRepo) FindSessionByID(_ context.Context, id uuid.UUID) (*model.CashSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *fakeCashRepo) FindSessionByIDTx(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.CashSession, error) {
	return r.FindSessionByID(ctx, id)
}

func (r *fakeCashRepo) FindOpenSessionByRegister(_ context.Context, registerID uuid.UUID) (*model.CashSession, error) {
	for _, s := range r.sessions {
		if s.RegisterID == registerID && s.Open() {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCashRepo) ListSessions(_ context.Context, filter dto.SessionFilter) ([]model.CashSession, int64, error) {
	var out []model.CashSession
	for _, s := range r.sessions {
		switch filter.Status {
		case "open":
			if !s.Open() {
				continue
			}
		case "closed":
			if s.Open() {
				continue
			}
		}
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *fakeCashRepo) UpdateSessionTx(_ context.Context, _ *gorm.DB, s *model.CashSession) error {
	r.sessions[s.ID] = s
	return nil
}

func (r *fakeCashRepo) CreateMovement(_ context.Context, _ *gorm.DB, m *model.CashMovement) error {
	if r.failCreateMovement != nil {
		return r.failCreateMovement
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *fakeCashRepo) FindMovementByID(_ context.Context, id uuid.UUID) (*model.CashMovement, error) {
	for i := range r.movements {
		if r.movements[i].ID == id {
			m := r.movements[i]
			m.Session = r.sessions[m.SessionID]
			return &m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCashRepo) DeleteMovement(_ context.Context, id uuid.UUID) error {
	for i := range r.movements {
		if r.movements[i].ID == id {
			r.movements = append(r.movements[:i], r.movements[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeCashRepo) ListMovements(_ context.Context, filter dto.MovementFilter) ([]model.CashMovement, int64, error) {
	var out []model.CashMovement
	for _, m := range r.movements {
		if filter.SessionID != "" && m.SessionID.String() != filter.SessionID {
			continue
		}
		if filter.Type != "" && filter.Type != "all" && m.Type != filter.Type {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (r *fakeCashRepo) SumMovementsByType(_ context.Context, _ *gorm.DB, sessionID uuid.UUID) (map[string]decimal.Decimal, error) {
	sums := make(map[string]decimal.Decimal)
	for _, m := range r.movements {
		if m.SessionID == sessionID {
			sums[m.Type] = sums[m.Type].Add(m.Amount)
		}
	}
	return sums, nil
}

var _ repository.CashRepository = (*fakeCashRepo)(nil)

// ── Helpers ──────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func openSession(t *testing.T, svc service.CashService, repo *fakeCashRepo, openingFloat string) uuid.UUID {
	t.Helper()
	reg := repo.addRegister("Caja " + uuid.NewString()[:4])
	resp, err := svc.Open(context.Background(), uuid.New(), nil, dto.OpenSessionRequest{
		RegisterID:   reg.ID.String(),
		OpeningFloat: dec(openingFloat),
	})
	require.NoError(t, err)
	return uuid.MustParse(resp.ID)
}

func kindOf(t *testing.T, err error) apierror.Kind {
	t.Helper()
	var apiErr *apierror.Error
	require.True(t, errors.As(err, &apiErr), "expected apierror, got %v", err)
	return apiErr.Kind
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestOpenSession(t *testing.T) {
	repo := newFakeCashRepo()
	svc := service.NewCashService(repo)
	reg := repo.addRegister("Caja A")

	resp, err := svc.Open(context.Background(), uuid.New(), nil, dto.OpenSessionRequest{
		RegisterID:   reg.ID.String(),
		OpeningFloat: dec("100.00"),
	})

	require.NoError(t, err)
	assert.Equal(t, "open", resp.Status)
	assert.Equal(t, reg.ID.String(), resp.RegisterID)
	assert.Equal(t, "100.00", resp.OpeningFloat.StringFixed(2))
	assert.Nil(t, resp.ClosedAt)
}

func TestOpenSession_UnknownRegister(t *testing.T) {
	repo := newFakeCashRepo()
	svc := service.NewCashService(repo)

	_, err := svc.Open(context.Background(), uuid.New(), nil, dto.OpenSessionRequest{
		RegisterID:   uuid.NewString(),
		OpeningFloat: dec("100"),
	})
	assert.Equal(t, apierror.KindNotFound, kindOf(t, err))
}

func TestOpenSession_DuplicateOpen(t *testing.T) {
	repo := newFakeCashRepo()
	svc := service.NewCashService(repo)
	reg := repo.addRegister("Caja A")

	_, err := svc.Open(context.Background(), uuid.New(), nil, dto.OpenSessionRequest{
		RegisterID:   reg.ID.String(),
		OpeningFloat: dec("100"),
	})
	require.NoError(t, err)

	// Second open on the same register must be rejected
	_, err = svc.Open(context.Background(), uuid.New(), nil, dto.OpenSessionRequest{
		RegisterID:   reg.ID.String(),
		OpeningFloat: dec("50"),
	})
	assert.Equal(t, apierror.KindConflict, kindOf(t, err))
	assert.ErrorContains(t, err, "already has an open session")
}

func TestRecordMovement(t *testing.T) {
	repo := newFakeCashRepo()
	svc := service.NewCashService(repo)
	sessionID := openSession(t, svc, repo, "100")

	ref := "change fund"
	resp, err := svc.RecordMovement(context.Background(), uuid.New(), nil, dto.RecordMovementRequest{
		SessionID: sessionID.String(),
		Type:      model.MovementDeposit,
		Amount:    dec("500"),
		Reference: &ref,
	})

	require.NoError(t, err)
	assert.Equal(t, model.MovementDeposit, resp.Type)
	assert.Equal(t, "500.00", resp.Amount.StringFixed(2))
	require.Len(t, repo.movements, 1)
	assert.Equal(t, "change fund", *repo.movements[0].Reference)
}

func TestRecordMovement_ClosedSession(t *testing.T) {
	repo := newFakeCashRepo()
	svc := service.NewCashService(repo)
	sessionID := openSession(t, svc, repo, "100")

	_, err := svc.Close(context.Background(), uuid.New(), nil, sessionID, dto.CloseSessionRequest{
		DeclaredTotal: dec("100"),
	})
	require.NoError(t, err)

	_, err = svc.RecordMovement(context.Background(), uuid.New(), nil, dto.RecordMovementRequest{
		SessionID: sessionID.String(),
		Type:      model.MovementSale,
		Amount:    dec("10"),
	})
	assert.Equal(t, apierror.KindForbidden, kindOf(t, err))
}

func TestDeleteMovement_ClosedSession(t *testing.T) {
	repo := newFakeCashRepo()
	svc := service.NewCashService(repo)
	sessionID := openSession(t, svc, repo, "100")

	mov, err := svc.RecordMovement(context.Background(), uuid.New(), nil, dto.RecordMovementRequest{
		SessionID: sessionID.String(),
		Type:      model.MovementSale,
		Amount:    dec("10"),
	})
	require.NoError(t, err)

	_, err = svc.Close(context.Background(), uuid.New(), nil, sessionID, dto.CloseSessionRequest{
		DeclaredTotal: dec("110"),
	})
	require.NoError(t, err)

	err = svc.DeleteMovement(context.Background(), uuid.MustParse(mov.ID))
	assert.Equal(t, apierror.KindForbidden, kindOf(t, err))
	assert.Len(t, repo.movements, 1, "movement must remain")
}

func TestCloseSession_Variance(t *testing.T) {
	// Opening float 100.00, deposit 100.00, sales 75.50, withdrawal 20.00:
	// system total = 100 + 100 + 75.50 - 20 = 255.50
	// declared 255.00 -> variance -0.50 (shortage)
	repo := newFakeCashRepo()
	svc := service.NewCashService(repo)
	userID := uuid.New()
	sessionID := openSession(t, svc, repo, "100.00")

	for _, m := range []struct {
		typ    string
		amount string
	}{
		{model.MovementDeposit, "100.00"},
		{model.MovementSale, "25.50"},
		{model.MovementSale, "50.00"},
		{model.MovementWithdrawal, "20.00"},
	} {
		_, err := svc.RecordMovement(context.Background(), userID, nil, dto.RecordMovementRequest{
			SessionID: sessionID.String(),
			Type:      m.typ,
			Amount:    dec(m.amount),
		})
		require.NoError(t, err)
	}

	resp, err := svc.Close(context.Background(), userID, nil, sessionID, dto.CloseSessionRequest{
		DeclaredTotal: dec("255.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, "closed", resp.Session.Status)
	assert.Equal(t, "255.50", resp.Session.SystemTotal.StringFixed(2))
	assert.Equal(t, "255.00", resp.Session.DeclaredTotal.StringFixed(2))
	assert.Equal(t, "-0.50", resp.Session.Variance.StringFixed(2))
	assert.Equal(t, "75.50", resp.Breakdown.Sales.StringFixed(2))
	assert.Equal(t, "100.00", resp.Breakdown.Deposits.StringFixed(2))
	assert.Equal(t, "20.00", resp.Breakdown.Withdrawals.StringFixed(2))
}

func TestCloseSession_Twice(t *testing.T) {
	repo := newFakeCashRepo()
	svc := service.NewCashService(repo)
	sessionID := openSession(t, svc, repo, "100")

	_, err := svc.Close(context.Background(), uuid.New(), nil, sessionID, dto.CloseSessionRequest{
		DeclaredTotal: dec("100"),
	})
	require.NoError(t, err)

	_, err = svc.Close(context.Background(), uuid.New(), nil, sessionID, dto.CloseSessionRequest{
		DeclaredTotal: dec("100"),
	})
	assert.Equal(t, apierror.KindConflict, kindOf(t, err))
}

func TestCloseSession_OrderInvariant(t *testing.T) {
	// Two sessions with the same movements in different order close with the
	// same system total.
	repo := newFakeCashRepo()
	svc := service.NewCashService(repo)
	userID := uuid.New()

	amounts := []string{"10.10", "20.20", "30.30"}
	reversed := []string{"30.30", "20.20", "10.10"}

	close := func(order []string) string {
		sessionID := openSession(t, svc, repo, "50")
		for _, a := range order {
			_, err := svc.RecordMovement(context.Background(), userID, nil, dto.RecordMovementRequest{
				SessionID: sessionID.String(),
				Type:      model.MovementSale,
				Amount:    dec(a),
			})
			require.NoError(t, err)
		}
		resp, err := svc.Close(context.Background(), userID, nil, sessionID, dto.CloseSessionRequest{
			DeclaredTotal: dec("110.60"),
		})
		require.NoError(t, err)
		return resp.Session.SystemTotal.StringFixed(2)
	}

	assert.Equal(t, close(amounts), close(reversed))
}

func TestSummary_OpenSession(t *testing.T) {
	repo := newFakeCashRepo()
	svc := service.NewCashService(repo)
	userID := uuid.New()
	sessionID := openSession(t, svc, repo, "200")

	_, err := svc.RecordMovement(context.Background(), userID, nil, dto.RecordMovementRequest{
		SessionID: sessionID.String(),
		Type:      model.MovementSale,
		Amount:    dec("99.99"),
	})
	require.NoError(t, err)

	summary, err := svc.Summary(context.Background(), sessionID)
	require.NoError(t, err)

	assert.Equal(t, "open", summary.Status)
	assert.Equal(t, "299.99", summary.SystemTotal.StringFixed(2))
	// No declared total yet, so no variance either
	assert.Nil(t, summary.DeclaredTotal)
	assert.Nil(t, summary.Variance)
}

func TestFindOpenSession_Closed(t *testing.T) {
	repo := newFakeCashRepo()
	svc := service.NewCashService(repo)
	sessionID := openSession(t, svc, repo, "100")

	_, err := svc.Close(context.Background(), uuid.New(), nil, sessionID, dto.CloseSessionRequest{
		DeclaredTotal: dec("100"),
	})
	require.NoError(t, err)

	_, err = svc.FindOpenSession(context.Background(), sessionID)
	assert.Equal(t, apierror.KindConflict, kindOf(t, err))
}
