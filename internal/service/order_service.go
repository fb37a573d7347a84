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

type OrderService interface {
	// Place stores a public storefront order. Stock is checked but not taken.
	Place(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error)
	List(ctx context.Context, filter dto.OrderFilter) (*dto.ListResponse[dto.OrderResponse], error)
	// Confirm turns a pending order into a sale in one transaction.
	Confirm(ctx context.Context, sess middleware.Session, id uuid.UUID, req dto.ConfirmOrderRequest) (*dto.SaleResponse, error)
	Cancel(ctx context.Context, sess middleware.Session, id uuid.UUID) error
}

type orderService struct {
	checkoutWriter
	orders  repository.OrderRepository
	pub     realtime.Publisher
	queue   ReceiptQueue
	catalog CatalogCache
	now     func() time.Time
}

func NewOrderService(orders repository.OrderRepository, repos CheckoutRepos, pub realtime.Publisher, queue ReceiptQueue, catalog CatalogCache) OrderService {
	return &orderService{
		checkoutWriter: newCheckoutWriter(repos),
		orders:         orders,
		pub:            pub,
		queue:          queue,
		catalog:        catalog,
		now:            time.Now,
	}
}

func (s *orderService) Place(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	items, err := toCartItems(req.Items)
	if err != nil {
		return nil, err
	}
	// visitors always pay retail; no customer account is involved
	d, err := s.draft(ctx, draftInput{tier: string(checkout.TierRetail), items: items})
	if err != nil {
		return nil, err
	}

	now := s.now()
	o := &model.Order{
		ID:            uuid.New(),
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Address:       req.Address,
		Note:          req.Note,
		Total:         d.summary.Total,
		Status:        model.OrderPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, l := range d.lines {
		o.Items = append(o.Items, model.OrderItem{
			ID:        uuid.New(),
			OrderID:   o.ID,
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			Price:     l.SalePrice,
			Subtotal:  l.Subtotal(),
		})
	}

	err = runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		id, err := s.nextID(tx, repository.SeqOrders, "ORD")
		if err != nil {
			return err
		}
		o.DisplayID = id
		return s.orders.CreateTx(tx, o)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("order", o.DisplayID).Str("total", o.Total.StringFixed(2)).Msg("storefront order placed")
	realtime.Notify(ctx, s.pub, realtime.Changed("orders", realtime.ActionInsert, o.ID.String()))
	return toOrderResponse(o), nil
}

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(o), nil
}

func (s *orderService) List(ctx context.Context, filter dto.OrderFilter) (*dto.ListResponse[dto.OrderResponse], error) {
	filter.Normalize()
	rows, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrderResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *toOrderResponse(&rows[i]))
	}
	return &dto.ListResponse[dto.OrderResponse]{Data: out, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *orderService) Confirm(ctx context.Context, sess middleware.Session, id uuid.UUID, req dto.ConfirmOrderRequest) (*dto.SaleResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status != model.OrderPending {
		return nil, apierror.Conflict("order is already " + o.Status)
	}

	// the visitor keeps the price shown when the order was placed
	items := make([]cartItem, 0, len(o.Items))
	for _, it := range o.Items {
		price := it.Price
		items = append(items, cartItem{productID: it.ProductID, quantity: it.Quantity, price: &price})
	}
	d, err := s.draft(ctx, draftInput{customerID: req.CustomerID, items: items, discount: decimal.Zero, paid: req.Paid})
	if err != nil {
		return nil, err
	}
	if err := checkout.ValidateTender(checkout.Method(req.PaymentMethod), d.summary, req.Paid, d.customer != nil); err != nil {
		return nil, err
	}

	var (
		sale *model.Sale
		inst *model.Installment
	)
	err = runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		locked, err := s.orders.FindForUpdateTx(tx, id)
		if err != nil {
			return err
		}
		if locked.Status != model.OrderPending {
			return apierror.Conflict("order is already " + locked.Status)
		}
		sale, inst, err = s.write(tx, d, saleWrite{
			operator: sess,
			method:   req.PaymentMethod,
			note:     o.Note,
			orderID:  &o.ID,
			now:      s.now(),
		})
		if err != nil {
			return err
		}
		return s.orders.UpdateStatusTx(tx, id, model.OrderConfirmed, &sale.ID)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("order", o.DisplayID).Str("sale", sale.DisplayID).Str("operator", sess.Username).Msg("storefront order confirmed")
	events := append(saleEvents(sale, inst, realtime.ActionInsert), realtime.Changed("orders", realtime.ActionUpdate, o.ID.String()))
	var email *string
	if d.customer != nil {
		email = d.customer.Email
	}
	invalidateCatalog(ctx, s.catalog)
	after(ctx, s.pub, s.queue, &receiptJob{sourceType: model.SourceSale, id: sale.ID, email: email}, events...)
	return toSaleResponse(sale, inst), nil
}

func (s *orderService) Cancel(ctx context.Context, sess middleware.Session, id uuid.UUID) error {
	err := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		o, err := s.orders.FindForUpdateTx(tx, id)
		if err != nil {
			return err
		}
		if o.Status != model.OrderPending {
			return apierror.Conflict("order is already " + o.Status)
		}
		return s.orders.UpdateStatusTx(tx, id, model.OrderCancelled, nil)
	})
	if err != nil {
		return err
	}
	log.Info().Str("order_id", id.String()).Str("operator", sess.Username).Msg("storefront order cancelled")
	realtime.Notify(ctx, s.pub, realtime.Changed("orders", realtime.ActionUpdate, id.String()))
	return nil
}

func toOrderResponse(o *model.Order) *dto.OrderResponse {
	r := &dto.OrderResponse{
		ID:            o.ID.String(),
		DisplayID:     o.DisplayID,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		Address:       o.Address,
		Note:          o.Note,
		Items:         make([]dto.OrderItemResponse, 0, len(o.Items)),
		Total:         o.Total,
		Status:        o.Status,
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
	}
	for _, it := range o.Items {
		r.Items = append(r.Items, dto.OrderItemResponse{
			ProductID: it.ProductID.String(),
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Subtotal:  it.Subtotal,
		})
	}
	if o.SaleID != nil {
		id := o.SaleID.String()
		r.SaleID = &id
	}
	return r
}
