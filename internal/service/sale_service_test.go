package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/cellkom/poscellkom-sub000/internal/apierror"
	"github.com/cellkom/poscellkom-sub000/internal/dto"
	"github.com/cellkom/poscellkom-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cashCheckout(p *model.Product, qty int, paid int64) dto.CheckoutRequest {
	return dto.CheckoutRequest{
		Items:         []dto.CartItemRequest{{ProductID: p.ID.String(), Quantity: qty}},
		Paid:          d(paid),
		PaymentMethod: "cash",
	}
}

func TestCheckout_CashWithChange(t *testing.T) {
	w := newWorld()
	charger := w.products.add("CHG-01", "Charger 20W", 20000, 30000, 5)
	svc := w.saleService()

	res, err := svc.Checkout(context.Background(), cashier(), cashCheckout(charger, 1, 50000))
	require.NoError(t, err)

	assert.Equal(t, "TRX-20240501-00001", res.DisplayID)
	assert.True(t, res.Total.Equal(d(30000)))
	assert.True(t, res.Change.Equal(d(20000)))
	assert.True(t, res.Remaining.IsZero())
	assert.True(t, res.Profit.Equal(d(10000)))
	assert.Nil(t, res.InstallmentID)

	assert.Equal(t, 4, w.products.stock(charger.ID))
	assert.Equal(t, []string{"sale:-1"}, w.movements.kinds())
	require.Len(t, w.queue.jobs, 1)
	assert.Equal(t, model.SourceSale, w.queue.jobs[0].sourceType)
	assert.Equal(t, 1, w.pub.tables()["sales"])
	assert.Equal(t, 1, w.cache.flushes)
}

func TestCheckout_CashShortIsRejectedBeforeWriting(t *testing.T) {
	w := newWorld()
	charger := w.products.add("CHG-01", "Charger 20W", 20000, 30000, 5)

	_, err := w.saleService().Checkout(context.Background(), cashier(), cashCheckout(charger, 1, 20000))
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
	assert.Empty(t, w.sales.rows)
	assert.Equal(t, 5, w.products.stock(charger.ID))
}

func TestCheckout_PartialPaymentOpensInstallment(t *testing.T) {
	w := newWorld()
	charger := w.products.add("CHG-01", "Charger 20W", 20000, 30000, 5)
	budi := w.customers.add("Budi", "retail")
	svc := w.saleService()

	req := cashCheckout(charger, 1, 20000)
	req.PaymentMethod = "installment"
	req.CustomerID = strp(budi.ID.String())

	res, err := svc.Checkout(context.Background(), cashier(), req)
	require.NoError(t, err)
	require.NotNil(t, res.InstallmentID)
	assert.True(t, res.Remaining.Equal(d(10000)))
	assert.Equal(t, &budi.ID, w.sales.rows[uuid.MustParse(res.ID)].CustomerID)
	assert.Zero(t, w.sales.withCustomer, "the customer row is not rewritten by a sale")

	inst := w.installments.rows[res.DisplayID]
	require.NotNil(t, inst)
	assert.Equal(t, model.InstallmentUnpaid, inst.Status)
	assert.True(t, inst.Total.Equal(d(30000)))
	assert.True(t, inst.InitialPaid.Equal(d(20000)))
	assert.True(t, inst.Remaining.Equal(d(10000)))
	assert.Equal(t, budi.ID, inst.CustomerID)

	// the receipt goes to the customer's address on file
	require.Len(t, w.queue.jobs, 1)
	assert.Equal(t, budi.Email, w.queue.jobs[0].email)

	// settling the balance closes it
	installments := NewInstallmentService(w.installments, w.pub)
	paid, err := installments.AddPayment(context.Background(), cashier(), inst.ID, dto.AddPaymentRequest{Amount: d(10000), Method: "cash"})
	require.NoError(t, err)
	assert.Equal(t, model.InstallmentPaid, paid.Status)
	assert.True(t, paid.Remaining.IsZero())
	assert.True(t, paid.Paid.Equal(d(30000)))
}

func TestCheckout_InstallmentNeedsCustomer(t *testing.T) {
	w := newWorld()
	charger := w.products.add("CHG-01", "Charger 20W", 20000, 30000, 5)

	req := cashCheckout(charger, 1, 0)
	req.PaymentMethod = "installment"
	_, err := w.saleService().Checkout(context.Background(), cashier(), req)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestCheckout_CustomerTierWins(t *testing.T) {
	w := newWorld()
	cable := w.products.add("CBL-01", "USB-C cable", 10000, 25000, 10)
	cable.ResellerPrice = d(18000)
	cable.MemberPrice = d(22000)
	shop := w.customers.add("Toko Maju", "reseller")

	req := cashCheckout(cable, 2, 40000)
	req.Tier = "member"
	req.CustomerID = strp(shop.ID.String())

	res, err := w.saleService().Checkout(context.Background(), cashier(), req)
	require.NoError(t, err)
	assert.Equal(t, "reseller", res.Tier)
	assert.True(t, res.Total.Equal(d(36000)))
	assert.True(t, res.Change.Equal(d(4000)))
}

func TestCheckout_UnsetTierPriceFallsBackToRetail(t *testing.T) {
	w := newWorld()
	cable := w.products.add("CBL-01", "USB-C cable", 10000, 25000, 10)

	res, err := w.saleService().Preview(context.Background(), dto.PreviewRequest{
		Tier:  "member",
		Items: []dto.CartItemRequest{{ProductID: cable.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)
	assert.True(t, res.Total.Equal(d(25000)))
}

func TestCheckout_MoreThanStockIsRejected(t *testing.T) {
	w := newWorld()
	charger := w.products.add("CHG-01", "Charger 20W", 20000, 30000, 2)

	_, err := w.saleService().Checkout(context.Background(), cashier(), cashCheckout(charger, 3, 100000))
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
	assert.Empty(t, w.sales.rows)
}

func TestCheckout_ConcurrentSaleTookTheStock(t *testing.T) {
	w := newWorld()
	charger := w.products.add("CHG-01", "Charger 20W", 20000, 30000, 1)
	// another till sells the last unit between pricing and writing
	w.products.stolen[charger.ID] = 0

	_, err := w.saleService().Checkout(context.Background(), cashier(), cashCheckout(charger, 1, 30000))
	require.Error(t, err)
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
	assert.Contains(t, err.Error(), "insufficient stock for Charger 20W")

	assert.Equal(t, 0, w.products.stock(charger.ID))
	assert.Empty(t, w.movements.rows)
	assert.Empty(t, w.queue.jobs)
	assert.Empty(t, w.pub.events)
}

func TestCheckout_UnknownProduct(t *testing.T) {
	w := newWorld()
	req := dto.CheckoutRequest{
		Items:         []dto.CartItemRequest{{ProductID: uuid.NewString(), Quantity: 1}},
		PaymentMethod: "cash",
	}
	_, err := w.saleService().Checkout(context.Background(), cashier(), req)
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}

func TestCheckout_QueueFailureDoesNotFailTheSale(t *testing.T) {
	w := newWorld()
	w.queue.err = errors.New("redis down")
	charger := w.products.add("CHG-01", "Charger 20W", 20000, 30000, 5)

	res, err := w.saleService().Checkout(context.Background(), cashier(), cashCheckout(charger, 1, 30000))
	require.NoError(t, err)
	assert.Equal(t, "completed", res.Status)
}

func TestCheckout_DisplayIDsAreSequential(t *testing.T) {
	w := newWorld()
	charger := w.products.add("CHG-01", "Charger 20W", 20000, 30000, 5)
	svc := w.saleService()

	first, err := svc.Checkout(context.Background(), cashier(), cashCheckout(charger, 1, 30000))
	require.NoError(t, err)
	second, err := svc.Checkout(context.Background(), cashier(), cashCheckout(charger, 1, 30000))
	require.NoError(t, err)
	assert.Equal(t, "TRX-20240501-00001", first.DisplayID)
	assert.Equal(t, "TRX-20240501-00002", second.DisplayID)
}

func TestVoid_RestoresStockAndCancelsInstallment(t *testing.T) {
	w := newWorld()
	charger := w.products.add("CHG-01", "Charger 20W", 20000, 30000, 5)
	budi := w.customers.add("Budi", "retail")
	svc := w.saleService()

	req := cashCheckout(charger, 2, 10000)
	req.PaymentMethod = "installment"
	req.CustomerID = strp(budi.ID.String())
	res, err := svc.Checkout(context.Background(), cashier(), req)
	require.NoError(t, err)
	assert.Equal(t, 3, w.products.stock(charger.ID))

	saleID := uuid.MustParse(res.ID)
	require.NoError(t, svc.Void(context.Background(), cashier(), saleID, "wrong item"))

	assert.Equal(t, 5, w.products.stock(charger.ID))
	assert.Equal(t, "voided", w.sales.rows[saleID].Status)
	assert.Equal(t, model.InstallmentCancelled, w.installments.rows[res.DisplayID].Status)
	assert.Equal(t, []string{"sale:-2", "sale_void:2"}, w.movements.kinds())

	err = svc.Void(context.Background(), cashier(), saleID, "wrong item")
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
}

func TestVoid_RejectedAfterInstallmentPayment(t *testing.T) {
	w := newWorld()
	charger := w.products.add("CHG-01", "Charger 20W", 20000, 30000, 5)
	budi := w.customers.add("Budi", "retail")
	svc := w.saleService()

	req := cashCheckout(charger, 1, 10000)
	req.PaymentMethod = "installment"
	req.CustomerID = strp(budi.ID.String())
	res, err := svc.Checkout(context.Background(), cashier(), req)
	require.NoError(t, err)

	instID := uuid.MustParse(*res.InstallmentID)
	_, err = NewInstallmentService(w.installments, w.pub).AddPayment(context.Background(), cashier(), instID,
		dto.AddPaymentRequest{Amount: d(5000), Method: "cash"})
	require.NoError(t, err)

	err = svc.Void(context.Background(), cashier(), uuid.MustParse(res.ID), "customer changed mind")
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
	assert.Equal(t, 4, w.products.stock(charger.ID))
}

func TestCheckout_LocksProductsInIDOrder(t *testing.T) {
	w := newWorld()
	a := w.products.add("CASE-A", "Case A", 10000, 25000, 3)
	b := w.products.add("CASE-B", "Case B", 10000, 25000, 3)
	first, second := a, b
	if bytes.Compare(a.ID[:], b.ID[:]) < 0 {
		first, second = b, a
	}

	req := dto.CheckoutRequest{
		Items: []dto.CartItemRequest{
			{ProductID: first.ID.String(), Quantity: 1},
			{ProductID: second.ID.String(), Quantity: 1},
		},
		Paid:          d(50000),
		PaymentMethod: "cash",
	}
	res, err := w.saleService().Checkout(context.Background(), cashier(), req)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{second.ID, first.ID}, w.products.locks)
	require.Len(t, res.Items, 2)
	assert.Equal(t, first.ID.String(), res.Items[0].ProductID, "line order follows the cart")
}
