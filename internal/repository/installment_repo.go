package repository

import (
	"context"

	"github.com/cellkom/poscellkom-sub000/internal/dto"
	"github.com/cellkom/poscellkom-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InstallmentRepository interface {
	// UpsertTx inserts an installment or, when one already exists for the
	// same display id, overwrites its totals and status. Payment history is
	// left untouched.
	UpsertTx(tx *gorm.DB, in *model.Installment) error
	FindByDisplayIDTx(tx *gorm.DB, displayID string) (*model.Installment, error)
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Installment, error)
	UpdateTx(tx *gorm.DB, in *model.Installment) error
	AddPaymentTx(tx *gorm.DB, p *model.InstallmentPayment) error
	CountPaymentsTx(tx *gorm.DB, installmentID uuid.UUID) (int64, error)

	FindByID(ctx context.Context, id uuid.UUID) (*model.Installment, error)
	List(ctx context.Context, filter dto.InstallmentFilter) ([]model.Installment, int64, error)
	DB() *gorm.DB
}

type installmentRepo struct{ db *gorm.DB }

func NewInstallmentRepository(db *gorm.DB) InstallmentRepository {
	return &installmentRepo{db: db}
}

func (r *installmentRepo) DB() *gorm.DB { return r.db }

func (r *installmentRepo) UpsertTx(tx *gorm.DB, in *model.Installment) error {
	return tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "display_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"customer_id", "total", "initial_paid", "paid", "remaining", "status", "paid_at", "updated_at",
		}),
	}).Create(in).Error
}

// FindByDisplayIDTx returns nil, nil when no installment exists yet.
func (r *installmentRepo) FindByDisplayIDTx(tx *gorm.DB, displayID string) (*model.Installment, error) {
	var rows []model.Installment
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("display_id = ?", displayID).Limit(1).Find(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

func (r *installmentRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Installment, error) {
	var in model.Installment
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&in, "id = ?", id).Error
	return &in, notFound(err, "installment")
}

func (r *installmentRepo) UpdateTx(tx *gorm.DB, in *model.Installment) error {
	return tx.Omit(clause.Associations).Save(in).Error
}

func (r *installmentRepo) AddPaymentTx(tx *gorm.DB, p *model.InstallmentPayment) error {
	return tx.Create(p).Error
}

func (r *installmentRepo) CountPaymentsTx(tx *gorm.DB, installmentID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&model.InstallmentPayment{}).Where("installment_id = ?", installmentID).Count(&n).Error
	return n, err
}

func (r *installmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Installment, error) {
	var in model.Installment
	err := r.db.WithContext(ctx).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Customer").
		First(&in, "id = ?", id).Error
	return &in, notFound(err, "installment")
}

func (r *installmentRepo) List(ctx context.Context, filter dto.InstallmentFilter) ([]model.Installment, int64, error) {
	filter.Normalize()
	q := r.db.WithContext(ctx).Model(&model.Installment{})
	switch filter.Status {
	case "all":
	case "":
		q = q.Where("status = ?", model.InstallmentUnpaid)
	default:
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.Installment
	err := q.Preload("Customer").Order("created_at DESC").
		Offset(filter.Offset()).Limit(filter.Limit).Find(&rows).Error
	return rows, total, err
}
