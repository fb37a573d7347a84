package service

import (
	"context"
	"testing"

	"github.com/cellkom/poscellkom-sub000/internal/apierror"
	"github.com/cellkom/poscellkom-sub000/internal/dto"
	"github.com/cellkom/poscellkom-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openInstallment(repo *stubInstallmentRepo, total, paid int64) *model.Installment {
	in := &model.Installment{
		ID:          uuid.New(),
		DisplayID:   "TRX-20240501-00009",
		SourceType:  model.SourceSale,
		SourceID:    uuid.New(),
		CustomerID:  uuid.New(),
		Total:       d(total),
		InitialPaid: d(paid),
		Paid:        d(paid),
		Remaining:   d(total - paid),
		Status:      model.InstallmentUnpaid,
	}
	repo.rows[in.DisplayID] = in
	return in
}

func TestAddPayment_PartialThenFull(t *testing.T) {
	repo := newStubInstallmentRepo()
	in := openInstallment(repo, 300000, 100000)
	pub := &stubPublisher{}
	svc := NewInstallmentService(repo, pub)
	ctx := context.Background()

	res, err := svc.AddPayment(ctx, cashier(), in.ID, dto.AddPaymentRequest{Amount: d(50000), Method: "cash"})
	require.NoError(t, err)
	assert.Equal(t, model.InstallmentUnpaid, res.Status)
	assert.True(t, res.Remaining.Equal(d(150000)))

	res, err = svc.AddPayment(ctx, cashier(), in.ID, dto.AddPaymentRequest{Amount: d(150000), Method: "transfer"})
	require.NoError(t, err)
	assert.Equal(t, model.InstallmentPaid, res.Status)
	assert.True(t, res.Remaining.IsZero())
	require.Len(t, res.Payments, 2, "the response carries the full history")
	assert.True(t, res.Payments[0].Amount.Equal(d(50000)))

	pays := repo.payments[in.ID]
	require.Len(t, pays, 2)
	assert.True(t, pays[1].RemainingBefore.Equal(d(150000)))
	assert.True(t, pays[1].RemainingAfter.IsZero())
	assert.Equal(t, 2, pub.tables()["installments"])
}

func TestAddPayment_Rejections(t *testing.T) {
	repo := newStubInstallmentRepo()
	in := openInstallment(repo, 300000, 100000)
	svc := NewInstallmentService(repo, &stubPublisher{})
	ctx := context.Background()

	cases := []struct {
		name   string
		id     uuid.UUID
		amount decimal.Decimal
		kind   apierror.Kind
	}{
		{"zero amount", in.ID, d(0), apierror.KindValidation},
		{"negative amount", in.ID, d(-1000), apierror.KindValidation},
		{"more than remaining", in.ID, d(200001), apierror.KindValidation},
		{"fraction of a cent", in.ID, decimal.RequireFromString("1000.005"), apierror.KindValidation},
		{"unknown installment", uuid.New(), d(1000), apierror.KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddPayment(ctx, cashier(), tc.id, dto.AddPaymentRequest{Amount: tc.amount, Method: "cash"})
			assert.Equal(t, tc.kind, apierror.KindOf(err))
		})
	}
	assert.Empty(t, repo.payments[in.ID])
}

func TestAddPayment_ClosedInstallment(t *testing.T) {
	repo := newStubInstallmentRepo()
	in := openInstallment(repo, 300000, 100000)
	in.Status = model.InstallmentCancelled
	svc := NewInstallmentService(repo, &stubPublisher{})

	_, err := svc.AddPayment(context.Background(), cashier(), in.ID, dto.AddPaymentRequest{Amount: d(1000), Method: "cash"})
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestUpsertInstallment_CarriesLaterPayments(t *testing.T) {
	repo := newStubInstallmentRepo()
	in := openInstallment(repo, 300000, 100000)
	in.Paid = d(150000) // 50000 paid after billing
	in.Remaining = d(150000)
	cid := in.CustomerID

	got, err := upsertInstallment(nil, repo, billing{
		displayID:  in.DisplayID,
		sourceType: model.SourceService,
		sourceID:   in.SourceID,
		customerID: &cid,
		total:      d(400000),
		paid:       d(100000),
	}, testDay)
	require.NoError(t, err)
	assert.Equal(t, in.ID, got.ID)
	assert.True(t, got.Paid.Equal(d(150000)))
	assert.True(t, got.Remaining.Equal(d(250000)))
}

func TestUpsertInstallment_NothingOwed(t *testing.T) {
	repo := newStubInstallmentRepo()
	cid := uuid.New()
	got, err := upsertInstallment(nil, repo, billing{displayID: "SRV-1", customerID: &cid, total: d(1000), paid: d(1000)}, testDay)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, repo.rows)
}
