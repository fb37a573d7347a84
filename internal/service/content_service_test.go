package service

import (
	"context"
	"testing"
	"time"

	"github.com/cellkom/poscellkom-sub000/internal/apierror"
	"github.com/cellkom/poscellkom-sub000/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Promo Akhir Tahun!":      "promo-akhir-tahun",
		"  Servis  HP -- Murah  ": "servis-hp-murah",
		"Café & Crème":            "cafe-creme",
		"iPhone 15 Pro Max 256GB": "iphone-15-pro-max-256gb",
		"!!!":                     "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func newContent() (*contentService, *stubContentRepo) {
	repo := newStubContentRepo()
	svc := NewContentService(repo, &stubPublisher{}, "Cellkom").(*contentService)
	svc.now = func() time.Time { return testDay }
	return svc, repo
}

func TestNews_PublishStampsOnce(t *testing.T) {
	svc, _ := newContent()
	ctx := context.Background()

	n, err := svc.CreateNews(ctx, cashier(), dto.NewsRequest{Title: "Grand Opening", Body: "Come visit", Published: true})
	require.NoError(t, err)
	assert.Equal(t, "grand-opening", n.Slug)
	require.NotNil(t, n.PublishedAt)

	svc.now = func() time.Time { return testDay.Add(time.Hour) }
	id := uuid.MustParse(n.ID)
	n2, err := svc.UpdateNews(ctx, id, dto.NewsRequest{Title: "Grand Opening", Body: "Updated", Published: true})
	require.NoError(t, err)
	assert.Equal(t, *n.PublishedAt, *n2.PublishedAt)

	n3, err := svc.UpdateNews(ctx, id, dto.NewsRequest{Title: "Grand Opening", Body: "Draft again"})
	require.NoError(t, err)
	assert.Nil(t, n3.PublishedAt)

	_, err = svc.NewsBySlug(ctx, "grand-opening")
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err), "drafts are not public")
}

func TestNews_DuplicateSlug(t *testing.T) {
	svc, _ := newContent()
	ctx := context.Background()

	_, err := svc.CreateNews(ctx, cashier(), dto.NewsRequest{Title: "Promo", Body: "a"})
	require.NoError(t, err)
	_, err = svc.CreateNews(ctx, cashier(), dto.NewsRequest{Title: "PROMO!", Body: "b"})
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
}

func TestSettings_DefaultsAndUnknownKey(t *testing.T) {
	svc, repo := newContent()
	ctx := context.Background()

	got, err := svc.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Cellkom", got[SettingStoreName])
	assert.Equal(t, "", got[SettingPhone])

	got, err = svc.UpdateSettings(ctx, dto.UpdateSettingsRequest{Values: map[string]string{SettingPhone: " 0812-555 "}})
	require.NoError(t, err)
	assert.Equal(t, "0812-555", got[SettingPhone])

	_, err = svc.UpdateSettings(ctx, dto.UpdateSettingsRequest{Values: map[string]string{"theme": "dark"}})
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
	_, stored := repo.settings["theme"]
	assert.False(t, stored)
}
