package repository

import (
	"context"

	"clinipos/internal/dto"
	"clinipos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CashRepository interface {
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
	FindRegisterByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error)
	ListRegisters(ctx context.Context) ([]model.CashRegister, error)
	CreateSession(ctx context.Context, s *model.CashSession) error
	FindSessionByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error)
	FindSessionByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.CashSession, error)
	FindOpenSessionByRegister(ctx context.Context, registerID uuid.UUID) (*model.CashSession, error)
	ListSessions(ctx context.Context, filter dto.SessionFilter) ([]model.CashSession, int64, error)
	UpdateSessionTx(ctx context.Context, tx *gorm.DB, s *model.CashSession) error
	CreateMovement(ctx context.Context, tx *gorm.DB, m *model.CashMovement) error
	FindMovementByID(ctx context.Context, id uuid.UUID) (*model.CashMovement, error)
	DeleteMovement(ctx context.Context, id uuid.UUID) error
	ListMovements(ctx context.Context, filter dto.MovementFilter) ([]model.CashMovement, int64, error)
	SumMovementsByType(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (map[string]decimal.Decimal, error)
}

type cashRepo struct{ db *gorm.DB }

func NewCashRepository(db *gorm.DB) CashRepository { return &cashRepo{db: db} }

func (r *cashRepo) DB() *gorm.DB { return r.db }

func (r *cashRepo) FindRegisterByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error) {
	var reg model.CashRegister
	err := r.db.WithContext(ctx).Preload("Location").First(&reg, id).Error
	return &reg, err
}

func (r *cashRepo) ListRegisters(ctx context.Context) ([]model.CashRegister, error) {
	var regs []model.CashRegister
	err := r.db.WithContext(ctx).Preload("Location").Order("name ASC").Find(&regs).Error
	return regs, err
}

func (r *cashRepo) CreateSession(ctx context.Context, s *model.CashSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *cashRepo) FindSessionByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).Preload("Register").Preload("OpenedBy").Preload("ClosedBy").First(&s, id).Error
	return &s, err
}

// FindSessionByIDTx locks the session row for the duration of the
// surrounding transaction so close and concurrent movement writes serialize.
func (r *cashRepo) FindSessionByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, id).Error
	return &s, err
}

func (r *cashRepo) FindOpenSessionByRegister(ctx context.Context, registerID uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).Where("register_id = ? AND closed_at IS NULL", registerID).First(&s).Error
	return &s, err
}

func (r *cashRepo) ListSessions(ctx context.Context, filter dto.SessionFilter) ([]model.CashSession, int64, error) {
	var sessions []model.CashSession
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.CashSession{})

	switch filter.Status {
	case "open":
		q = q.Where("closed_at IS NULL")
	case "closed":
		q = q.Where("closed_at IS NOT NULL")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Register").Preload("OpenedBy").Preload("ClosedBy").
		Order("opened_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&sessions).Error

	return sessions, total, err
}

func (r *cashRepo) UpdateSessionTx(ctx context.Context, tx *gorm.DB, s *model.CashSession) error {
	return tx.WithContext(ctx).Save(s).Error
}

func (r *cashRepo) CreateMovement(ctx context.Context, tx *gorm.DB, m *model.CashMovement) error {
	return tx.WithContext(ctx).Create(m).Error
}

func (r *cashRepo) FindMovementByID(ctx context.Context, id uuid.UUID) (*model.CashMovement, error) {
	var m model.CashMovement
	err := r.db.WithContext(ctx).Preload("Session").First(&m, id).Error
	return &m, err
}

func (r *cashRepo) DeleteMovement(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.CashMovement{}, id).Error
}

func (r *cashRepo) ListMovements(ctx context.Context, filter dto.MovementFilter) ([]model.CashMovement, int64, error) {
	var movs []model.CashMovement
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.CashMovement{})

	if filter.SessionID != "" {
		q = q.Where("session_id = ?", filter.SessionID)
	}
	if filter.Type != "" && filter.Type != "all" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.From != "" {
		q = q.Where("DATE(created_at) >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("DATE(created_at) <= ?", filter.To)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("CreatedBy").
		Order("created_at ASC").
		Offset(offset).Limit(filter.Limit).
		Find(&movs).Error

	return movs, total, err
}

func (r *cashRepo) SumMovementsByType(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (map[string]decimal.Decimal, error) {
	db := tx
	if db == nil {
		db = r.db
	}

	rows := []struct {
		Type  string
		Total decimal.Decimal
	}{}
	err := db.WithContext(ctx).Model(&model.CashMovement{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Where("session_id = ?", sessionID).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		totals[row.Type] = row.Total
	}
	return totals, nil
}
