package repository

import (
	"context"

	"github.com/cellkom/poscellkom-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContentRepository stores storefront news, ads and store settings.
type ContentRepository interface {
	CreateNews(ctx context.Context, n *model.News) error
	FindNews(ctx context.Context, id uuid.UUID) (*model.News, error)
	FindNewsBySlug(ctx context.Context, slug string) (*model.News, error)
	ListNews(ctx context.Context, publishedOnly bool) ([]model.News, error)
	UpdateNews(ctx context.Context, n *model.News) error
	DeleteNews(ctx context.Context, id uuid.UUID) error

	CreateAd(ctx context.Context, a *model.Ad) error
	FindAd(ctx context.Context, id uuid.UUID) (*model.Ad, error)
	ListAds(ctx context.Context, activeOnly bool) ([]model.Ad, error)
	UpdateAd(ctx context.Context, a *model.Ad) error
	DeleteAd(ctx context.Context, id uuid.UUID) error

	Settings(ctx context.Context) ([]model.Setting, error)
	PutSettings(ctx context.Context, values []model.Setting) error
}

type contentRepo struct{ db *gorm.DB }

func NewContentRepository(db *gorm.DB) ContentRepository { return &contentRepo{db: db} }

func (r *contentRepo) CreateNews(ctx context.Context, n *model.News) error {
	return duplicate(r.db.WithContext(ctx).Create(n).Error, "slug "+n.Slug+" is already used")
}

func (r *contentRepo) FindNews(ctx context.Context, id uuid.UUID) (*model.News, error) {
	var n model.News
	err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error
	return &n, notFound(err, "news")
}

func (r *contentRepo) FindNewsBySlug(ctx context.Context, slug string) (*model.News, error) {
	var n model.News
	err := r.db.WithContext(ctx).Where("slug = ? AND published = true", slug).First(&n).Error
	return &n, notFound(err, "news")
}

func (r *contentRepo) ListNews(ctx context.Context, publishedOnly bool) ([]model.News, error) {
	var rows []model.News
	q := r.db.WithContext(ctx)
	if publishedOnly {
		q = q.Where("published = true")
	}
	err := q.Order("COALESCE(published_at, created_at) DESC").Find(&rows).Error
	return rows, err
}

func (r *contentRepo) UpdateNews(ctx context.Context, n *model.News) error {
	return duplicate(r.db.WithContext(ctx).Save(n).Error, "slug "+n.Slug+" is already used")
}

func (r *contentRepo) DeleteNews(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &model.News{}, id, "news")
}

func (r *contentRepo) CreateAd(ctx context.Context, a *model.Ad) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *contentRepo) FindAd(ctx context.Context, id uuid.UUID) (*model.Ad, error) {
	var a model.Ad
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	return &a, notFound(err, "ad")
}

func (r *contentRepo) ListAds(ctx context.Context, activeOnly bool) ([]model.Ad, error) {
	var rows []model.Ad
	q := r.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("active = true")
	}
	err := q.Order("position ASC, created_at DESC").Find(&rows).Error
	return rows, err
}

func (r *contentRepo) UpdateAd(ctx context.Context, a *model.Ad) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *contentRepo) DeleteAd(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &model.Ad{}, id, "ad")
}

func (r *contentRepo) Settings(ctx context.Context) ([]model.Setting, error) {
	var rows []model.Setting
	err := r.db.WithContext(ctx).Order("key ASC").Find(&rows).Error
	return rows, err
}

func (r *contentRepo) PutSettings(ctx context.Context, values []model.Setting) error {
	if len(values) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&values).Error
}

func deleteByID(db *gorm.DB, m interface{}, id uuid.UUID, what string) error {
	res := db.Where("id = ?", id).Delete(m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, what)
	}
	return nil
}
