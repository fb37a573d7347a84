package infra

import (
	"fmt"

	"github.com/cellkom/poscellkom-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, migrates the
// schema, then applies the idempotent SQL patches that AutoMigrate cannot
// express (sequences, partial indexes).
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

// Models lists every table owned by the service, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Supplier{},
		&model.Customer{},
		&model.Product{},
		&model.ProductPriceHistory{},
		&model.StockMovement{},
		&model.Sale{},
		&model.SaleItem{},
		&model.ServiceEntry{},
		&model.ServiceTransaction{},
		&model.ServicePart{},
		&model.Installment{},
		&model.InstallmentPayment{},
		&model.Receipt{},
		&model.Order{},
		&model.OrderItem{},
		&model.News{},
		&model.Ad{},
		&model.Setting{},
	}
}

// RunMigrations creates / updates all tables and applies schema patches.
// Integration tests call it directly against a fresh container.
func RunMigrations(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto: %w", err)
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL statements. Each uses IF NOT EXISTS
// so re-running on an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// display id sequences, drawn inside the checkout transaction
		`CREATE SEQUENCE IF NOT EXISTS sales_display_seq`,
		`CREATE SEQUENCE IF NOT EXISTS services_display_seq`,
		`CREATE SEQUENCE IF NOT EXISTS service_entries_display_seq`,
		`CREATE SEQUENCE IF NOT EXISTS orders_display_seq`,
		// partial index for the receipt retry cron query
		`CREATE INDEX IF NOT EXISTS idx_receipts_due_retry
		    ON receipts (next_retry_at)
		    WHERE status = 'error' AND next_retry_at IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_installments_open
		    ON installments (customer_id)
		    WHERE status = 'unpaid'`,
		`CREATE INDEX IF NOT EXISTS idx_sales_created_at ON sales (created_at DESC)`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
