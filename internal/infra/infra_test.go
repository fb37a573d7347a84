package infra

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cellkom/poscellkom-sub000/internal/apierror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRelay = errors.New("relay down")

func TestCircuitBreaker_TripsAndRecovers(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "test", FailureThreshold: 2, SuccessThreshold: 1, OpenTimeout: time.Minute})
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return now }

	fail := func() error { return errRelay }
	ok := func() error { return nil }

	assert.ErrorIs(t, cb.Execute(fail), errRelay)
	assert.Equal(t, CBClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(fail), errRelay)
	assert.Equal(t, CBOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called, "open breaker must not call through")

	now = now.Add(61 * time.Second)
	assert.Equal(t, CBHalfOpen, cb.State())
	require.NoError(t, cb.Execute(ok))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenProbeFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Second})
	now := time.Now()
	cb.now = func() time.Time { return now }

	_ = cb.Execute(func() error { return errRelay })
	now = now.Add(2 * time.Second)
	_ = cb.Execute(func() error { return errRelay })
	assert.Equal(t, CBOpen, cb.State())
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "Rp 1.250.000", Money(decimal.NewFromInt(1250000)))
	assert.Equal(t, "Rp 500", Money(decimal.NewFromInt(500)))
	assert.Equal(t, "Rp 12.500,05", Money(decimal.RequireFromString("12500.05")))
	assert.Equal(t, "-Rp 5.000", Money(decimal.NewFromInt(-5000)))
}

func TestWriteReceiptPDF(t *testing.T) {
	dir := t.TempDir()
	doc := ReceiptDoc{
		StoreName: "Cellkom",
		Title:     "Sales receipt",
		DisplayID: "TRX-20240501-00042",
		IssuedAt:  time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC),
		Customer:  "Budi",
		Lines: []ReceiptLine{
			{Name: "LCD Redmi Note 9 Pro Original", Quantity: 1, Subtotal: decimal.NewFromInt(350000)},
			{Name: "Tempered glass", Quantity: 2, Subtotal: decimal.NewFromInt(50000)},
		},
		Subtotal:  decimal.NewFromInt(400000),
		Total:     decimal.NewFromInt(400000),
		Paid:      decimal.NewFromInt(300000),
		Remaining: decimal.NewFromInt(100000),
		Method:    "installment",
		Footer:    "Goods sold are not returnable.",
	}

	name, err := WriteReceiptPDF(doc, dir)
	require.NoError(t, err)
	assert.Equal(t, "TRX-20240501-00042.pdf", name)

	raw, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF-")))
}

func TestStorage_SaveImage(t *testing.T) {
	s := NewStorage(t.TempDir(), "http://shop.test/")
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 100)...)

	url, err := s.Save("products", bytes.NewReader(png))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://shop.test/uploads/products/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	files, _ := os.ReadDir(filepath.Join(s.Root(), "products"))
	require.Len(t, files, 1)
}

func TestStorage_RejectsNonImageAndUnknownFolder(t *testing.T) {
	s := NewStorage(t.TempDir(), "http://shop.test")

	_, err := s.Save("products", strings.NewReader("#!/bin/sh\necho hi"))
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))

	_, err = s.Save("../etc", strings.NewReader("x"))
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestStorage_RejectsOversize(t *testing.T) {
	s := NewStorage(t.TempDir(), "http://shop.test")
	big := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, MaxUploadBytes)...)

	_, err := s.Save("ads", bytes.NewReader(big))
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
	files, _ := os.ReadDir(filepath.Join(s.Root(), "ads"))
	assert.Empty(t, files)
}
