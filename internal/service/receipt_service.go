package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cellkom/poscellkom-sub000/internal/apierror"
	"github.com/cellkom/poscellkom-sub000/internal/dto"
	"github.com/cellkom/poscellkom-sub000/internal/infra"
	"github.com/cellkom/poscellkom-sub000/internal/model"
	"github.com/cellkom/poscellkom-sub000/internal/repository"

	"github.com/google/uuid"
)

// ReceiptService builds receipts for sales and service bills. It satisfies
// worker.ReceiptRenderer.
type ReceiptService interface {
	Document(ctx context.Context, sourceType string, id uuid.UUID) (infra.ReceiptDoc, error)
	// PDF renders the receipt on demand and returns it with its display id.
	PDF(ctx context.Context, sourceType string, id uuid.UUID) ([]byte, string, error)
	Status(ctx context.Context, sourceType string, id uuid.UUID) (*dto.ReceiptResponse, error)
	Resend(ctx context.Context, sourceType string, id uuid.UUID, email *string) error
}

type receiptService struct {
	sales    repository.SaleRepository
	services repository.ServiceOrderRepository
	receipts repository.ReceiptRepository
	content  ContentService
	queue    ReceiptQueue
}

func NewReceiptService(
	sales repository.SaleRepository,
	services repository.ServiceOrderRepository,
	receipts repository.ReceiptRepository,
	content ContentService,
	queue ReceiptQueue,
) ReceiptService {
	return &receiptService{sales: sales, services: services, receipts: receipts, content: content, queue: queue}
}

func (s *receiptService) Document(ctx context.Context, sourceType string, id uuid.UUID) (infra.ReceiptDoc, error) {
	settings, err := s.content.Settings(ctx)
	if err != nil {
		return infra.ReceiptDoc{}, err
	}
	var header []string
	for _, k := range []string{SettingAddress, SettingPhone} {
		if v := settings[k]; v != "" {
			header = append(header, v)
		}
	}
	doc := infra.ReceiptDoc{
		StoreName: settings[SettingStoreName],
		Header:    strings.Join(header, " · "),
		Footer:    settings[SettingReceiptFooter],
	}

	switch sourceType {
	case model.SourceSale:
		sale, err := s.sales.FindByID(ctx, id)
		if err != nil {
			return infra.ReceiptDoc{}, err
		}
		doc.Title = "Sales receipt"
		doc.DisplayID = sale.DisplayID
		doc.IssuedAt = sale.CreatedAt
		if sale.Customer != nil {
			doc.Customer = sale.Customer.Name
		}
		for _, it := range sale.Items {
			doc.Lines = append(doc.Lines, infra.ReceiptLine{Name: it.Name, Quantity: it.Quantity, Subtotal: it.Subtotal})
		}
		doc.Subtotal, doc.Discount, doc.Total = sale.Subtotal, sale.Discount, sale.Total
		doc.Paid, doc.Change, doc.Remaining = sale.AmountPaid, sale.Change, sale.Remaining
		doc.Method = sale.PaymentMethod
		doc.Voided = sale.Status == "voided"

	case model.SourceService:
		t, err := s.services.FindTransactionByID(ctx, id)
		if err != nil {
			return infra.ReceiptDoc{}, err
		}
		doc.Title = "Service receipt"
		doc.DisplayID = t.DisplayID
		doc.IssuedAt = t.UpdatedAt
		if t.Revision > 1 {
			doc.Extra = append(doc.Extra, fmt.Sprintf("Revision %d", t.Revision))
		}
		if e := t.Entry; e != nil {
			doc.Customer = e.CustomerName
			doc.Extra = append(doc.Extra, "Device: "+e.DeviceBrand+" "+e.DeviceModel)
			if e.IMEI != nil {
				doc.Extra = append(doc.Extra, "IMEI: "+*e.IMEI)
			}
			doc.Extra = append(doc.Extra, "Work order: "+e.DisplayID)
		}
		if t.ServiceFee.IsPositive() {
			doc.Lines = append(doc.Lines, infra.ReceiptLine{Name: serviceFeeName, Quantity: 1, Subtotal: t.ServiceFee})
		}
		for _, p := range t.Parts {
			doc.Lines = append(doc.Lines, infra.ReceiptLine{Name: p.Name, Quantity: p.Quantity, Subtotal: p.Subtotal})
		}
		doc.Subtotal, doc.Discount, doc.Total = t.Subtotal, t.Discount, t.Total
		doc.Paid, doc.Change, doc.Remaining = t.AmountPaid, t.Change, t.Remaining
		doc.Method = t.PaymentMethod

	default:
		return infra.ReceiptDoc{}, apierror.Validation("unknown receipt source " + sourceType)
	}
	return doc, nil
}

func (s *receiptService) PDF(ctx context.Context, sourceType string, id uuid.UUID) ([]byte, string, error) {
	doc, err := s.Document(ctx, sourceType, id)
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	if err := infra.RenderReceiptPDF(&buf, doc); err != nil {
		return nil, "", apierror.Server("render receipt", err)
	}
	return buf.Bytes(), doc.DisplayID, nil
}

func (s *receiptService) Status(ctx context.Context, sourceType string, id uuid.UUID) (*dto.ReceiptResponse, error) {
	rc, err := s.receipts.FindBySource(ctx, sourceType, id)
	if err != nil {
		return nil, err
	}
	r := &dto.ReceiptResponse{
		ID:         rc.ID.String(),
		SourceType: rc.SourceType,
		SourceID:   rc.SourceID.String(),
		DisplayID:  rc.DisplayID,
		Status:     rc.Status,
		Email:      rc.Email,
		RetryCount: rc.RetryCount,
		LastError:  rc.LastError,
	}
	if rc.NextRetryAt != nil {
		at := rc.NextRetryAt.Format(time.RFC3339)
		r.NextRetryAt = &at
	}
	return r, nil
}

// Resend queues the receipt job again. The worker reuses the existing row.
func (s *receiptService) Resend(ctx context.Context, sourceType string, id uuid.UUID, email *string) error {
	// resolve first so an unknown id is a 404 instead of a dead letter
	if _, err := s.Document(ctx, sourceType, id); err != nil {
		return err
	}
	if err := s.queue.EnqueueReceipt(ctx, sourceType, id, email); err != nil {
		return apierror.Network("queue receipt job", err)
	}
	return nil
}
