package repository

import (
	"context"

	"github.com/cellkom/poscellkom-sub000/internal/dto"
	"github.com/cellkom/poscellkom-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ServiceOrderRepository covers repair entries and their single bill.
type ServiceOrderRepository interface {
	CreateEntry(ctx context.Context, tx *gorm.DB, e *model.ServiceEntry) error
	FindEntry(ctx context.Context, id uuid.UUID) (*model.ServiceEntry, error)
	FindEntryForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.ServiceEntry, error)
	ListEntries(ctx context.Context, filter dto.ServiceEntryFilter) ([]model.ServiceEntry, int64, error)
	UpdateEntry(ctx context.Context, e *model.ServiceEntry) error

	// FindTransactionTx returns nil, nil when the entry has not been billed yet.
	FindTransactionTx(tx *gorm.DB, entryID uuid.UUID) (*model.ServiceTransaction, error)
	FindTransaction(ctx context.Context, entryID uuid.UUID) (*model.ServiceTransaction, error)
	// FindTransactionByID loads a bill with its parts and entry, for receipts.
	FindTransactionByID(ctx context.Context, id uuid.UUID) (*model.ServiceTransaction, error)
	CreateTransactionTx(tx *gorm.DB, t *model.ServiceTransaction) error
	// ReplaceTransactionTx rewrites the header and swaps the part rows.
	ReplaceTransactionTx(tx *gorm.DB, t *model.ServiceTransaction) error

	DB() *gorm.DB
}

type serviceOrderRepo struct{ db *gorm.DB }

func NewServiceOrderRepository(db *gorm.DB) ServiceOrderRepository {
	return &serviceOrderRepo{db: db}
}

func (r *serviceOrderRepo) DB() *gorm.DB { return r.db }

func (r *serviceOrderRepo) CreateEntry(ctx context.Context, tx *gorm.DB, e *model.ServiceEntry) error {
	return tx.WithContext(ctx).Create(e).Error
}

func (r *serviceOrderRepo) FindEntry(ctx context.Context, id uuid.UUID) (*model.ServiceEntry, error) {
	var e model.ServiceEntry
	err := r.db.WithContext(ctx).Preload("Transaction.Parts").First(&e, "id = ?", id).Error
	return &e, notFound(err, "service entry")
}

func (r *serviceOrderRepo) FindEntryForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.ServiceEntry, error) {
	var e model.ServiceEntry
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&e, "id = ?", id).Error
	return &e, notFound(err, "service entry")
}

func (r *serviceOrderRepo) ListEntries(ctx context.Context, filter dto.ServiceEntryFilter) ([]model.ServiceEntry, int64, error) {
	filter.Normalize()
	q := r.db.WithContext(ctx).Model(&model.ServiceEntry{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("display_id ILIKE ? OR customer_name ILIKE ? OR device_model ILIKE ? OR imei = ?",
			like, like, like, filter.Search)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var entries []model.ServiceEntry
	err := q.Order("created_at DESC").Offset(filter.Offset()).Limit(filter.Limit).Find(&entries).Error
	return entries, total, err
}

func (r *serviceOrderRepo) UpdateEntry(ctx context.Context, e *model.ServiceEntry) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(e).Error
}

func (r *serviceOrderRepo) FindTransactionTx(tx *gorm.DB, entryID uuid.UUID) (*model.ServiceTransaction, error) {
	var rows []model.ServiceTransaction
	if err := tx.Preload("Parts").Where("service_entry_id = ?", entryID).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *serviceOrderRepo) FindTransaction(ctx context.Context, entryID uuid.UUID) (*model.ServiceTransaction, error) {
	var t model.ServiceTransaction
	err := r.db.WithContext(ctx).Preload("Parts").Where("service_entry_id = ?", entryID).First(&t).Error
	return &t, notFound(err, "service transaction")
}

func (r *serviceOrderRepo) FindTransactionByID(ctx context.Context, id uuid.UUID) (*model.ServiceTransaction, error) {
	var t model.ServiceTransaction
	err := r.db.WithContext(ctx).Preload("Parts").Preload("Entry").First(&t, "id = ?", id).Error
	return &t, notFound(err, "service transaction")
}

func (r *serviceOrderRepo) CreateTransactionTx(tx *gorm.DB, t *model.ServiceTransaction) error {
	return tx.Create(t).Error
}

func (r *serviceOrderRepo) ReplaceTransactionTx(tx *gorm.DB, t *model.ServiceTransaction) error {
	if err := tx.Where("service_transaction_id = ?", t.ID).Delete(&model.ServicePart{}).Error; err != nil {
		return err
	}
	if err := tx.Omit(clause.Associations).Save(t).Error; err != nil {
		return err
	}
	for i := range t.Parts {
		t.Parts[i].ID = uuid.Nil
		t.Parts[i].ServiceTransactionID = t.ID
	}
	if len(t.Parts) == 0 {
		return nil
	}
	return tx.Create(&t.Parts).Error
}
