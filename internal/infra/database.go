package infra

import (
	"fmt"

	"clinipos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (partial unique indexes, sequences).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates the schema. Shared with the integration test suite so
// test containers come up with the exact production schema.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Location{},
		&model.CashRegister{},
		&model.PosTerminal{},
		&model.RequestContext{},
		&model.CashSession{},
		&model.CashMovement{},
		&model.Patient{},
		&model.PreclinicRecord{},
		&model.ServiceCategory{},
		&model.Service{},
		&model.Provider{},
		&model.InventoryProduct{},
		&model.Invoice{},
		&model.InvoiceLine{},
		&model.Payment{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot handle:
// number sequences and the partial unique index enforcing one open session
// per register. Safe to re-run on an already-patched database.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"invoice number sequence",
			`CREATE SEQUENCE IF NOT EXISTS invoices_invoice_no_seq START 1`},
		{"patient record number sequence",
			`CREATE SEQUENCE IF NOT EXISTS patients_mrn_seq START 1`},
		// One open session per register, enforced at the database so a
		// concurrent double-open loses with a duplicate key error.
		{"partial unique index on open sessions", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uni_cash_sessions_open_register') THEN
    CREATE UNIQUE INDEX uni_cash_sessions_open_register
        ON cash_sessions (register_id)
        WHERE closed_at IS NULL;
  END IF;
END $$`},
		{"movement ledger covering index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_cash_movements_session_type') THEN
    CREATE INDEX idx_cash_movements_session_type
        ON cash_movements (session_id, type);
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
