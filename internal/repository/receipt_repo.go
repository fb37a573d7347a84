package repository

import (
	"context"
	"time"

	"github.com/cellkom/poscellkom-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReceiptRepository interface {
	Create(ctx context.Context, r *model.Receipt) error
	FindBySource(ctx context.Context, sourceType string, sourceID uuid.UUID) (*model.Receipt, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Receipt, error)
	Update(ctx context.Context, r *model.Receipt) error
	// ListDueRetries returns receipts in "error" whose next_retry_at has passed
	// and that are still under maxAttempts.
	ListDueRetries(ctx context.Context, now time.Time, maxAttempts, limit int) ([]model.Receipt, error)
}

type receiptRepo struct{ db *gorm.DB }

func NewReceiptRepository(db *gorm.DB) ReceiptRepository {
	return &receiptRepo{db: db}
}

func (r *receiptRepo) Create(ctx context.Context, rc *model.Receipt) error {
	return r.db.WithContext(ctx).Create(rc).Error
}

func (r *receiptRepo) FindBySource(ctx context.Context, sourceType string, sourceID uuid.UUID) (*model.Receipt, error) {
	var rc model.Receipt
	err := r.db.WithContext(ctx).
		Where("source_type = ? AND source_id = ?", sourceType, sourceID).
		Order("created_at DESC").
		First(&rc).Error
	return &rc, notFound(err, "receipt")
}

func (r *receiptRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Receipt, error) {
	var rc model.Receipt
	err := r.db.WithContext(ctx).First(&rc, "id = ?", id).Error
	return &rc, notFound(err, "receipt")
}

func (r *receiptRepo) Update(ctx context.Context, rc *model.Receipt) error {
	return r.db.WithContext(ctx).Save(rc).Error
}

func (r *receiptRepo) ListDueRetries(ctx context.Context, now time.Time, maxAttempts, limit int) ([]model.Receipt, error) {
	var rows []model.Receipt
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ? AND retry_count < ?",
			model.ReceiptError, now, maxAttempts).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
