package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/cellkom/poscellkom-sub000/internal/apierror"
	"github.com/cellkom/poscellkom-sub000/internal/dto"
	"github.com/cellkom/poscellkom-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReceipts(w *world) ReceiptService {
	content := newStubContentRepo()
	content.settings[SettingAddress] = "Jl. Merdeka 1"
	content.settings[SettingPhone] = "0812-555"
	content.settings[SettingReceiptFooter] = "Thank you"
	return NewReceiptService(w.sales, w.services, &stubReceiptRepo{}, NewContentService(content, nil, "Cellkom"), w.queue)
}

func TestReceiptDocument_Sale(t *testing.T) {
	w := newWorld()
	charger := w.products.add("CHG-01", "Charger 20W", 20000, 30000, 5)
	res, err := w.saleService().Checkout(context.Background(), cashier(), cashCheckout(charger, 2, 100000))
	require.NoError(t, err)

	doc, err := newReceipts(w).Document(context.Background(), model.SourceSale, uuid.MustParse(res.ID))
	require.NoError(t, err)
	assert.Equal(t, "Cellkom", doc.StoreName)
	assert.Equal(t, "Jl. Merdeka 1 · 0812-555", doc.Header)
	assert.Equal(t, "Thank you", doc.Footer)
	assert.Equal(t, res.DisplayID, doc.DisplayID)
	require.Len(t, doc.Lines, 1)
	assert.True(t, doc.Total.Equal(d(60000)))
	assert.True(t, doc.Change.Equal(d(40000)))
	assert.False(t, doc.Voided)
}

func TestReceiptDocument_RevisedServiceBill(t *testing.T) {
	w := newWorld()
	lcd := w.products.add("LCD-A52", "LCD A52", 300000, 450000, 3)
	svc := w.serviceOrders()
	id := receiveDevice(t, svc, nil)
	req := dto.BillServiceRequest{
		ServiceFee:    d(100000),
		Parts:         []dto.CartItemRequest{{ProductID: lcd.ID.String(), Quantity: 1}},
		Paid:          d(550000),
		PaymentMethod: "cash",
	}
	_, err := svc.Bill(context.Background(), cashier(), id, req)
	require.NoError(t, err)
	bill, err := svc.Bill(context.Background(), cashier(), id, req)
	require.NoError(t, err)

	doc, err := newReceipts(w).Document(context.Background(), model.SourceService, uuid.MustParse(bill.ID))
	require.NoError(t, err)
	assert.Equal(t, "Service receipt", doc.Title)
	assert.Contains(t, doc.Extra, "Revision 2")
	assert.Contains(t, doc.Extra, "IMEI: 356789104512345")
	require.Len(t, doc.Lines, 2)
	assert.Equal(t, serviceFeeName, doc.Lines[0].Name)
}

func TestReceiptPDF(t *testing.T) {
	w := newWorld()
	charger := w.products.add("CHG-01", "Charger 20W", 20000, 30000, 5)
	res, err := w.saleService().Checkout(context.Background(), cashier(), cashCheckout(charger, 1, 30000))
	require.NoError(t, err)

	pdf, displayID, err := newReceipts(w).PDF(context.Background(), model.SourceSale, uuid.MustParse(res.ID))
	require.NoError(t, err)
	assert.Equal(t, res.DisplayID, displayID)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestReceiptResend(t *testing.T) {
	w := newWorld()
	receipts := newReceipts(w)

	err := receipts.Resend(context.Background(), model.SourceSale, uuid.New(), nil)
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
	assert.Empty(t, w.queue.jobs)

	err = receipts.Resend(context.Background(), "invoice", uuid.New(), nil)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))

	charger := w.products.add("CHG-01", "Charger 20W", 20000, 30000, 5)
	res, err := w.saleService().Checkout(context.Background(), cashier(), cashCheckout(charger, 1, 30000))
	require.NoError(t, err)
	w.queue.jobs = nil

	require.NoError(t, receipts.Resend(context.Background(), model.SourceSale, uuid.MustParse(res.ID), strp("a@b.co")))
	require.Len(t, w.queue.jobs, 1)
	assert.Equal(t, "a@b.co", *w.queue.jobs[0].email)
}
