package service

import (
	"context"
	"testing"

	"github.com/cellkom/poscellkom-sub000/internal/apierror"
	"github.com/cellkom/poscellkom-sub000/internal/dto"
	"github.com/cellkom/poscellkom-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placeOrder(t *testing.T, svc *orderService, p *model.Product, qty int) uuid.UUID {
	t.Helper()
	o, err := svc.Place(context.Background(), dto.CreateOrderRequest{
		CustomerName:  "Sari",
		CustomerPhone: "081234567890",
		Items:         []dto.CartItemRequest{{ProductID: p.ID.String(), Quantity: qty}},
	})
	require.NoError(t, err)
	return uuid.MustParse(o.ID)
}

func TestPlaceOrder_DoesNotTouchStock(t *testing.T) {
	w := newWorld()
	case1 := w.products.add("CSE-01", "Silicone case", 15000, 35000, 4)
	svc := w.orderService()

	id := placeOrder(t, svc, case1, 2)
	o, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "ORD-20240501-00001", o.DisplayID)
	assert.Equal(t, model.OrderPending, o.Status)
	assert.True(t, o.Total.Equal(d(70000)))
	assert.Equal(t, 4, w.products.stock(case1.ID))
	assert.Empty(t, w.movements.rows)
}

func TestPlaceOrder_BeyondStock(t *testing.T) {
	w := newWorld()
	case1 := w.products.add("CSE-01", "Silicone case", 15000, 35000, 1)

	_, err := w.orderService().Place(context.Background(), dto.CreateOrderRequest{
		CustomerName:  "Sari",
		CustomerPhone: "081234567890",
		Items:         []dto.CartItemRequest{{ProductID: case1.ID.String(), Quantity: 2}},
	})
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
	assert.Empty(t, w.orders.rows)
}

func TestConfirmOrder_KeepsPlacedPrice(t *testing.T) {
	w := newWorld()
	case1 := w.products.add("CSE-01", "Silicone case", 15000, 35000, 4)
	svc := w.orderService()
	id := placeOrder(t, svc, case1, 2)

	// price goes up after the visitor ordered
	case1.SalePrice = d(40000)

	sale, err := svc.Confirm(context.Background(), cashier(), id, dto.ConfirmOrderRequest{Paid: d(70000), PaymentMethod: "cash"})
	require.NoError(t, err)
	assert.True(t, sale.Total.Equal(d(70000)))
	assert.Equal(t, 2, w.products.stock(case1.ID))

	o := w.orders.rows[id]
	assert.Equal(t, model.OrderConfirmed, o.Status)
	require.NotNil(t, o.SaleID)
	assert.Equal(t, sale.ID, o.SaleID.String())
	assert.Equal(t, &id, w.sales.rows[*o.SaleID].OrderID)
	assert.Len(t, w.queue.jobs, 1)

	_, err = svc.Confirm(context.Background(), cashier(), id, dto.ConfirmOrderRequest{Paid: d(70000), PaymentMethod: "cash"})
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
}

func TestCancelOrder(t *testing.T) {
	w := newWorld()
	case1 := w.products.add("CSE-01", "Silicone case", 15000, 35000, 4)
	svc := w.orderService()
	id := placeOrder(t, svc, case1, 1)

	require.NoError(t, svc.Cancel(context.Background(), cashier(), id))
	assert.Equal(t, model.OrderCancelled, w.orders.rows[id].Status)

	err := svc.Cancel(context.Background(), cashier(), id)
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))

	_, err = svc.Confirm(context.Background(), cashier(), id, dto.ConfirmOrderRequest{Paid: d(35000), PaymentMethod: "cash"})
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
}
