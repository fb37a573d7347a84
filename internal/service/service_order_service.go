package service

import (
	"context"
	"time"

	"github.com/cellkom/poscellkom-sub000/internal/apierror"
	"github.com/cellkom/poscellkom-sub000/internal/checkout"
	"github.com/cellkom/poscellkom-sub000/internal/dto"
	"github.com/cellkom/poscellkom-sub000/internal/middleware"
	"github.com/cellkom/poscellkom-sub000/internal/model"
	"github.com/cellkom/poscellkom-sub000/internal/realtime"
	"github.com/cellkom/poscellkom-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ServiceOrderService interface {
	CreateEntry(ctx context.Context, sess middleware.Session, req dto.CreateServiceEntryRequest) (*dto.ServiceEntryResponse, error)
	GetEntry(ctx context.Context, id uuid.UUID) (*dto.ServiceEntryResponse, error)
	ListEntries(ctx context.Context, filter dto.ServiceEntryFilter) (*dto.ListResponse[dto.ServiceEntryResponse], error)
	UpdateEntry(ctx context.Context, id uuid.UUID, req dto.UpdateServiceEntryRequest) (*dto.ServiceEntryResponse, error)
	UpdateStatus(ctx context.Context, sess middleware.Session, id uuid.UUID, status string) (*dto.ServiceEntryResponse, error)

	// Bill writes the entry's service transaction, or revises it when the
	// entry was billed before.
	Bill(ctx context.Context, sess middleware.Session, id uuid.UUID, req dto.BillServiceRequest) (*dto.ServiceTransactionResponse, error)
	GetTransaction(ctx context.Context, entryID uuid.UUID) (*dto.ServiceTransactionResponse, error)
}

// serviceFeeName labels the non-stock fee line of a repair bill.
const serviceFeeName = "Service fee"

// serviceTransitions lists the statuses each status may move to.
var serviceTransitions = map[string][]string{
	model.ServiceReceived:   {model.ServiceInProgress, model.ServiceCancelled},
	model.ServiceInProgress: {model.ServiceDone, model.ServiceCancelled},
	model.ServiceDone:       {model.ServiceTaken, model.ServiceCancelled},
}

func canTransition(from, to string) bool {
	for _, s := range serviceTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type serviceOrderService struct {
	checkoutWriter
	services repository.ServiceOrderRepository
	pub      realtime.Publisher
	queue    ReceiptQueue
	catalog  CatalogCache
	now      func() time.Time
}

func NewServiceOrderService(services repository.ServiceOrderRepository, repos CheckoutRepos, pub realtime.Publisher, queue ReceiptQueue, catalog CatalogCache) ServiceOrderService {
	return &serviceOrderService{
		checkoutWriter: newCheckoutWriter(repos),
		services:       services,
		pub:            pub,
		queue:          queue,
		catalog:        catalog,
		now:            time.Now,
	}
}

func parseOptionalID(s *string, field string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, apierror.Validation("invalid " + field)
	}
	return &id, nil
}

func (s *serviceOrderService) CreateEntry(ctx context.Context, sess middleware.Session, req dto.CreateServiceEntryRequest) (*dto.ServiceEntryResponse, error) {
	customerID, err := parseOptionalID(req.CustomerID, "customer_id")
	if err != nil {
		return nil, err
	}
	technicianID, err := parseOptionalID(req.TechnicianID, "technician_id")
	if err != nil {
		return nil, err
	}
	if customerID != nil {
		if _, err := s.repos.Customers.FindByID(ctx, *customerID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	e := &model.ServiceEntry{
		ID:            uuid.New(),
		CustomerID:    customerID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		DeviceBrand:   req.DeviceBrand,
		DeviceModel:   req.DeviceModel,
		IMEI:          req.IMEI,
		Complaint:     req.Complaint,
		Accessories:   req.Accessories,
		EstimatedCost: req.EstimatedCost,
		TechnicianID:  technicianID,
		Status:        model.ServiceReceived,
		ReceivedByID:  sess.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err = runTx(ctx, s.services.DB(), func(tx *gorm.DB) error {
		id, err := s.nextID(tx, repository.SeqServiceEntries, "SVC")
		if err != nil {
			return err
		}
		e.DisplayID = id
		return s.services.CreateEntry(ctx, tx, e)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("entry", e.DisplayID).Str("device", e.DeviceBrand+" "+e.DeviceModel).Msg("service entry received")
	realtime.Notify(ctx, s.pub, realtime.Changed("service_entries", realtime.ActionInsert, e.ID.String()))
	return toServiceEntryResponse(e), nil
}

func (s *serviceOrderService) GetEntry(ctx context.Context, id uuid.UUID) (*dto.ServiceEntryResponse, error) {
	e, err := s.services.FindEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	return toServiceEntryResponse(e), nil
}

func (s *serviceOrderService) ListEntries(ctx context.Context, filter dto.ServiceEntryFilter) (*dto.ListResponse[dto.ServiceEntryResponse], error) {
	filter.Normalize()
	entries, total, err := s.services.ListEntries(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ServiceEntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, *toServiceEntryResponse(&entries[i]))
	}
	return &dto.ListResponse[dto.ServiceEntryResponse]{Data: out, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *serviceOrderService) UpdateEntry(ctx context.Context, id uuid.UUID, req dto.UpdateServiceEntryRequest) (*dto.ServiceEntryResponse, error) {
	e, err := s.services.FindEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Status == model.ServiceTaken || e.Status == model.ServiceCancelled {
		return nil, apierror.Conflict("service entry is closed")
	}
	if req.Complaint != nil {
		e.Complaint = *req.Complaint
	}
	if req.Accessories != nil {
		e.Accessories = req.Accessories
	}
	if req.EstimatedCost != nil {
		if req.EstimatedCost.IsNegative() {
			return nil, apierror.Validation("estimated_cost cannot be negative")
		}
		e.EstimatedCost = *req.EstimatedCost
	}
	if req.TechnicianID != nil {
		if e.TechnicianID, err = parseOptionalID(req.TechnicianID, "technician_id"); err != nil {
			return nil, err
		}
	}
	e.UpdatedAt = s.now()
	if err := s.services.UpdateEntry(ctx, e); err != nil {
		return nil, err
	}
	realtime.Notify(ctx, s.pub, realtime.Changed("service_entries", realtime.ActionUpdate, e.ID.String()))
	return toServiceEntryResponse(e), nil
}

func (s *serviceOrderService) UpdateStatus(ctx context.Context, sess middleware.Session, id uuid.UUID, status string) (*dto.ServiceEntryResponse, error) {
	e, err := s.services.FindEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(e.Status, status) {
		return nil, apierror.Validation("cannot move service entry from " + e.Status + " to " + status)
	}
	e.Status = status
	e.UpdatedAt = s.now()
	if err := s.services.UpdateEntry(ctx, e); err != nil {
		return nil, err
	}

	log.Info().Str("entry", e.DisplayID).Str("status", status).Str("operator", sess.Username).Msg("service entry status changed")
	realtime.Notify(ctx, s.pub, realtime.Changed("service_entries", realtime.ActionUpdate, e.ID.String()))
	return toServiceEntryResponse(e), nil
}

func (s *serviceOrderService) Bill(ctx context.Context, sess middleware.Session, id uuid.UUID, req dto.BillServiceRequest) (*dto.ServiceTransactionResponse, error) {
	if req.ServiceFee.IsNegative() {
		return nil, apierror.Validation("service_fee cannot be negative")
	}
	if err := checkout.CheckScale("service_fee", req.ServiceFee); err != nil {
		return nil, err
	}
	entry, err := s.services.FindEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.Status == model.ServiceTaken || entry.Status == model.ServiceCancelled {
		return nil, apierror.Conflict("service entry is closed and can no longer be billed")
	}

	items, err := toCartItems(req.Parts)
	if err != nil {
		return nil, err
	}
	in := draftInput{items: items, discount: req.Discount, paid: req.Paid}
	if entry.CustomerID != nil {
		cid := entry.CustomerID.String()
		in.customerID = &cid
	}
	if req.ServiceFee.IsPositive() {
		in.extra = []checkout.Line{{Name: serviceFeeName, Quantity: 1, BuyPrice: decimal.Zero, SalePrice: req.ServiceFee}}
	}
	// parts already on the bill go back to stock before the new decrement
	if entry.Transaction != nil {
		in.credit = make(map[uuid.UUID]int, len(entry.Transaction.Parts))
		for _, p := range entry.Transaction.Parts {
			in.credit[p.ProductID] += p.Quantity
		}
	}

	d, err := s.draft(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := checkout.ValidateTender(checkout.Method(req.PaymentMethod), d.summary, req.Paid, d.customer != nil); err != nil {
		return nil, err
	}

	var (
		t       *model.ServiceTransaction
		inst    *model.Installment
		touched []uuid.UUID
	)
	err = runTx(ctx, s.services.DB(), func(tx *gorm.DB) error {
		e, err := s.services.FindEntryForUpdateTx(tx, id)
		if err != nil {
			return err
		}
		if e.Status == model.ServiceTaken || e.Status == model.ServiceCancelled {
			return apierror.Conflict("service entry is closed and can no longer be billed")
		}

		existing, err := s.services.FindTransactionTx(tx, id)
		if err != nil {
			return err
		}
		now := s.now()
		var moves []stockMove

		if existing == nil {
			displayID, err := s.nextID(tx, repository.SeqServices, "SRV")
			if err != nil {
				return err
			}
			t = &model.ServiceTransaction{
				ID:             uuid.New(),
				DisplayID:      displayID,
				ServiceEntryID: id,
				Revision:       1,
				CreatedAt:      now,
			}
		} else {
			t = existing
			prior, err := s.repos.Installments.FindByDisplayIDTx(tx, t.DisplayID)
			if err != nil {
				return err
			}
			if prior != nil {
				n, err := s.repos.Installments.CountPaymentsTx(tx, prior.ID)
				if err != nil {
					return err
				}
				if n > 0 {
					return apierror.Conflict("bill has installment payments and can no longer be revised")
				}
			}
			for _, p := range t.Parts {
				moves = append(moves, stockMove{productID: p.ProductID, qty: p.Quantity, kind: model.MovementServiceReturn, reason: "revise " + t.DisplayID})
				touched = append(touched, p.ProductID)
			}
			t.Revision++
		}

		t.CustomerID = e.CustomerID
		t.OperatorID = sess.UserID
		t.ServiceFee = req.ServiceFee
		t.Subtotal = d.summary.Subtotal
		t.Discount = d.summary.Discount
		t.Total = d.summary.Total
		t.Cost = d.summary.Cost
		t.Profit = d.summary.Profit
		t.AmountPaid = d.payment.Paid
		t.Change = d.payment.Change
		t.Remaining = d.payment.Remaining
		t.PaymentMethod = req.PaymentMethod
		t.UpdatedAt = now
		t.Parts = nil
		for _, l := range d.lines {
			if l.ProductID == uuid.Nil {
				continue
			}
			t.Parts = append(t.Parts, model.ServicePart{
				ID:                   uuid.New(),
				ServiceTransactionID: t.ID,
				ProductID:            l.ProductID,
				Name:                 l.Name,
				Quantity:             l.Quantity,
				BuyPrice:             l.BuyPrice,
				SalePrice:            l.SalePrice,
				Subtotal:             l.Subtotal(),
			})
		}

		if existing == nil {
			err = s.services.CreateTransactionTx(tx, t)
		} else {
			err = s.services.ReplaceTransactionTx(tx, t)
		}
		if err != nil {
			return err
		}
		for _, p := range t.Parts {
			moves = append(moves, stockMove{productID: p.ProductID, qty: -p.Quantity, kind: model.MovementServicePart, reason: "service " + t.DisplayID})
			touched = append(touched, p.ProductID)
		}
		if err := s.ledger.apply(tx, &t.ID, moves); err != nil {
			return err
		}

		inst, err = upsertInstallment(tx, s.repos.Installments, billing{
			displayID:  t.DisplayID,
			sourceType: model.SourceService,
			sourceID:   t.ID,
			customerID: t.CustomerID,
			total:      t.Total,
			paid:       t.AmountPaid,
		}, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("bill", t.DisplayID).
		Int("revision", t.Revision).
		Str("total", t.Total.StringFixed(2)).
		Str("operator", sess.Username).
		Msg("service billed")

	events := []realtime.Event{
		realtime.Changed("service_transactions", realtime.ActionUpdate, t.ID.String()),
		realtime.Changed("service_entries", realtime.ActionUpdate, id.String()),
	}
	for _, pid := range touched {
		events = append(events, realtime.Changed("products", realtime.ActionUpdate, pid.String()))
	}
	if inst != nil {
		events = append(events, realtime.Changed("installments", realtime.ActionUpdate, inst.ID.String()))
	}
	email := req.CustomerEmail
	if email == nil && d.customer != nil {
		email = d.customer.Email
	}
	if len(touched) > 0 {
		invalidateCatalog(ctx, s.catalog)
	}
	after(ctx, s.pub, s.queue, &receiptJob{sourceType: model.SourceService, id: t.ID, email: email}, events...)
	return toServiceTransactionResponse(t, inst), nil
}

func (s *serviceOrderService) GetTransaction(ctx context.Context, entryID uuid.UUID) (*dto.ServiceTransactionResponse, error) {
	t, err := s.services.FindTransaction(ctx, entryID)
	if err != nil {
		return nil, err
	}
	return toServiceTransactionResponse(t, nil), nil
}

// ─── Mapping ─────────────────────────────────────────────────────────────────

func toServiceEntryResponse(e *model.ServiceEntry) *dto.ServiceEntryResponse {
	r := &dto.ServiceEntryResponse{
		ID:            e.ID.String(),
		DisplayID:     e.DisplayID,
		CustomerName:  e.CustomerName,
		CustomerPhone: e.CustomerPhone,
		DeviceBrand:   e.DeviceBrand,
		DeviceModel:   e.DeviceModel,
		IMEI:          e.IMEI,
		Complaint:     e.Complaint,
		Accessories:   e.Accessories,
		EstimatedCost: e.EstimatedCost,
		Status:        e.Status,
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
	if e.CustomerID != nil {
		id := e.CustomerID.String()
		r.CustomerID = &id
	}
	if e.TechnicianID != nil {
		id := e.TechnicianID.String()
		r.TechnicianID = &id
	}
	if e.Transaction != nil {
		r.Transaction = toServiceTransactionResponse(e.Transaction, nil)
	}
	return r
}

func toServiceTransactionResponse(t *model.ServiceTransaction, inst *model.Installment) *dto.ServiceTransactionResponse {
	r := &dto.ServiceTransactionResponse{
		ID:             t.ID.String(),
		DisplayID:      t.DisplayID,
		ServiceEntryID: t.ServiceEntryID.String(),
		ServiceFee:     t.ServiceFee,
		Parts:          make([]dto.LineResponse, 0, len(t.Parts)),
		Subtotal:       t.Subtotal,
		Discount:       t.Discount,
		Total:          t.Total,
		Cost:           t.Cost,
		Profit:         t.Profit,
		AmountPaid:     t.AmountPaid,
		Change:         t.Change,
		Remaining:      t.Remaining,
		PaymentMethod:  t.PaymentMethod,
		Revision:       t.Revision,
		UpdatedAt:      t.UpdatedAt.Format(time.RFC3339),
	}
	for _, p := range t.Parts {
		r.Parts = append(r.Parts, dto.LineResponse{
			ProductID: p.ProductID.String(),
			Name:      p.Name,
			Quantity:  p.Quantity,
			BuyPrice:  p.BuyPrice,
			SalePrice: p.SalePrice,
			Subtotal:  p.Subtotal,
		})
	}
	if inst != nil {
		id := inst.ID.String()
		r.InstallmentID = &id
	}
	return r
}
