package service

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/cellkom/poscellkom-sub000/internal/apierror"
	"github.com/cellkom/poscellkom-sub000/internal/dto"
	"github.com/cellkom/poscellkom-sub000/internal/middleware"
	"github.com/cellkom/poscellkom-sub000/internal/model"
	"github.com/cellkom/poscellkom-sub000/internal/realtime"
	"github.com/cellkom/poscellkom-sub000/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Setting keys accepted by PUT /v1/settings.
const (
	SettingStoreName     = "store_name"
	SettingAddress       = "address"
	SettingPhone         = "phone"
	SettingReceiptFooter = "receipt_footer"
)

var settingKeys = map[string]bool{
	SettingStoreName:     true,
	SettingAddress:       true,
	SettingPhone:         true,
	SettingReceiptFooter: true,
}

type ContentService interface {
	CreateNews(ctx context.Context, sess middleware.Session, req dto.NewsRequest) (*dto.NewsResponse, error)
	UpdateNews(ctx context.Context, id uuid.UUID, req dto.NewsRequest) (*dto.NewsResponse, error)
	DeleteNews(ctx context.Context, id uuid.UUID) error
	GetNews(ctx context.Context, id uuid.UUID) (*dto.NewsResponse, error)
	NewsBySlug(ctx context.Context, slug string) (*dto.NewsResponse, error)
	ListNews(ctx context.Context, publishedOnly bool) ([]dto.NewsResponse, error)

	CreateAd(ctx context.Context, req dto.AdRequest) (*dto.AdResponse, error)
	UpdateAd(ctx context.Context, id uuid.UUID, req dto.AdRequest) (*dto.AdResponse, error)
	DeleteAd(ctx context.Context, id uuid.UUID) error
	ListAds(ctx context.Context, activeOnly bool) ([]dto.AdResponse, error)

	// Settings returns every known key, falling back to defaults for keys
	// that were never saved.
	Settings(ctx context.Context) (map[string]string, error)
	UpdateSettings(ctx context.Context, req dto.UpdateSettingsRequest) (map[string]string, error)
}

type contentService struct {
	repo     repository.ContentRepository
	pub      realtime.Publisher
	defaults map[string]string
	now      func() time.Time
}

// NewContentService takes the store name used until one is saved.
func NewContentService(repo repository.ContentRepository, pub realtime.Publisher, storeName string) ContentService {
	return &contentService{
		repo:     repo,
		pub:      pub,
		defaults: map[string]string{SettingStoreName: storeName},
		now:      time.Now,
	}
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify lowercases s, drops diacritics and joins words with dashes.
func Slugify(s string) string {
	plain, _, err := transform.String(stripMarks, s)
	if err != nil {
		plain = s
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func (s *contentService) CreateNews(ctx context.Context, sess middleware.Session, req dto.NewsRequest) (*dto.NewsResponse, error) {
	n := &model.News{ID: uuid.New(), AuthorID: sess.UserID}
	if err := s.applyNews(n, req); err != nil {
		return nil, err
	}
	if err := s.repo.CreateNews(ctx, n); err != nil {
		return nil, err
	}
	realtime.Notify(ctx, s.pub, realtime.Changed("news", realtime.ActionInsert, n.ID.String()))
	return toNewsResponse(n), nil
}

func (s *contentService) UpdateNews(ctx context.Context, id uuid.UUID, req dto.NewsRequest) (*dto.NewsResponse, error) {
	n, err := s.repo.FindNews(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyNews(n, req); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateNews(ctx, n); err != nil {
		return nil, err
	}
	realtime.Notify(ctx, s.pub, realtime.Changed("news", realtime.ActionUpdate, n.ID.String()))
	return toNewsResponse(n), nil
}

func (s *contentService) applyNews(n *model.News, req dto.NewsRequest) error {
	slug := Slugify(req.Slug)
	if slug == "" {
		slug = Slugify(req.Title)
	}
	if slug == "" {
		return apierror.Validation("title must contain letters or digits")
	}
	n.Title = req.Title
	n.Slug = slug
	n.Body = req.Body
	n.ImageURL = req.ImageURL
	if req.Published && !n.Published {
		now := s.now()
		n.PublishedAt = &now
	}
	if !req.Published {
		n.PublishedAt = nil
	}
	n.Published = req.Published
	return nil
}

func (s *contentService) DeleteNews(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteNews(ctx, id); err != nil {
		return err
	}
	realtime.Notify(ctx, s.pub, realtime.Changed("news", realtime.ActionDelete, id.String()))
	return nil
}

func (s *contentService) GetNews(ctx context.Context, id uuid.UUID) (*dto.NewsResponse, error) {
	n, err := s.repo.FindNews(ctx, id)
	if err != nil {
		return nil, err
	}
	return toNewsResponse(n), nil
}

func (s *contentService) NewsBySlug(ctx context.Context, slug string) (*dto.NewsResponse, error) {
	n, err := s.repo.FindNewsBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return toNewsResponse(n), nil
}

func (s *contentService) ListNews(ctx context.Context, publishedOnly bool) ([]dto.NewsResponse, error) {
	rows, err := s.repo.ListNews(ctx, publishedOnly)
	if err != nil {
		return nil, err
	}
	out := make([]dto.NewsResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *toNewsResponse(&rows[i]))
	}
	return out, nil
}

func (s *contentService) CreateAd(ctx context.Context, req dto.AdRequest) (*dto.AdResponse, error) {
	a := &model.Ad{ID: uuid.New()}
	applyAd(a, req)
	if err := s.repo.CreateAd(ctx, a); err != nil {
		return nil, err
	}
	realtime.Notify(ctx, s.pub, realtime.Changed("ads", realtime.ActionInsert, a.ID.String()))
	return toAdResponse(a), nil
}

func (s *contentService) UpdateAd(ctx context.Context, id uuid.UUID, req dto.AdRequest) (*dto.AdResponse, error) {
	a, err := s.repo.FindAd(ctx, id)
	if err != nil {
		return nil, err
	}
	applyAd(a, req)
	if err := s.repo.UpdateAd(ctx, a); err != nil {
		return nil, err
	}
	realtime.Notify(ctx, s.pub, realtime.Changed("ads", realtime.ActionUpdate, a.ID.String()))
	return toAdResponse(a), nil
}

func applyAd(a *model.Ad, req dto.AdRequest) {
	a.Title = req.Title
	a.ImageURL = req.ImageURL
	a.LinkURL = req.LinkURL
	a.Position = req.Position
	a.Active = req.Active
}

func (s *contentService) DeleteAd(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteAd(ctx, id); err != nil {
		return err
	}
	realtime.Notify(ctx, s.pub, realtime.Changed("ads", realtime.ActionDelete, id.String()))
	return nil
}

func (s *contentService) ListAds(ctx context.Context, activeOnly bool) ([]dto.AdResponse, error) {
	rows, err := s.repo.ListAds(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AdResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *toAdResponse(&rows[i]))
	}
	return out, nil
}

func (s *contentService) Settings(ctx context.Context) (map[string]string, error) {
	rows, err := s.repo.Settings(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(settingKeys))
	for k := range settingKeys {
		out[k] = s.defaults[k]
	}
	for _, r := range rows {
		if settingKeys[r.Key] {
			out[r.Key] = r.Value
		}
	}
	return out, nil
}

func (s *contentService) UpdateSettings(ctx context.Context, req dto.UpdateSettingsRequest) (map[string]string, error) {
	keys := make([]string, 0, len(req.Values))
	for k := range req.Values {
		if !settingKeys[k] {
			return nil, apierror.Validation("unknown setting " + k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	now := s.now()
	rows := make([]model.Setting, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, model.Setting{Key: k, Value: strings.TrimSpace(req.Values[k]), UpdatedAt: now})
	}
	if err := s.repo.PutSettings(ctx, rows); err != nil {
		return nil, err
	}
	realtime.Notify(ctx, s.pub, realtime.Changed("settings", realtime.ActionUpdate, ""))
	return s.Settings(ctx)
}

func toNewsResponse(n *model.News) *dto.NewsResponse {
	r := &dto.NewsResponse{
		ID:        n.ID.String(),
		Title:     n.Title,
		Slug:      n.Slug,
		Body:      n.Body,
		ImageURL:  n.ImageURL,
		Published: n.Published,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
	if n.PublishedAt != nil {
		at := n.PublishedAt.Format(time.RFC3339)
		r.PublishedAt = &at
	}
	return r
}

func toAdResponse(a *model.Ad) *dto.AdResponse {
	return &dto.AdResponse{
		ID:       a.ID.String(),
		Title:    a.Title,
		ImageURL: a.ImageURL,
		LinkURL:  a.LinkURL,
		Position: a.Position,
		Active:   a.Active,
	}
}
