package service

import (
	"context"
	"fmt"
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

type SaleService interface {
	Preview(ctx context.Context, req dto.PreviewRequest) (*dto.PreviewResponse, error)
	Checkout(ctx context.Context, sess middleware.Session, req dto.CheckoutRequest) (*dto.SaleResponse, error)
	Void(ctx context.Context, sess middleware.Session, id uuid.UUID, reason string) error
	Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	List(ctx context.Context, filter dto.SaleFilter) (*dto.ListResponse[dto.SaleResponse], error)
}

// CheckoutRepos groups the repositories the checkout write touches. Sales
// and storefront order confirmation share it.
type CheckoutRepos struct {
	Sales        repository.SaleRepository
	Products     repository.ProductRepository
	Customers    repository.CustomerRepository
	Installments repository.InstallmentRepository
	Movements    repository.StockMovementRepository
}

// checkoutWriter prices a cart and writes it as a sale.
type checkoutWriter struct {
	repos  CheckoutRepos
	ledger stockLedger
	nextID displayIDFunc
}

func newCheckoutWriter(repos CheckoutRepos) checkoutWriter {
	return checkoutWriter{
		repos:  repos,
		ledger: stockLedger{products: repos.Products, movements: repos.Movements},
		nextID: sequenceDisplayID,
	}
}

// cartItem is one requested line. price, when set, overrides tier pricing
// (storefront orders keep the price the visitor saw).
type cartItem struct {
	productID uuid.UUID
	quantity  int
	price     *decimal.Decimal
}

// draftInput is what draft prices. extra holds non-stock lines such as a
// repair fee. credit is stock the write returns before it decrements, so a
// revised service bill may reuse the parts it already holds.
type draftInput struct {
	customerID *string
	tier       string
	items      []cartItem
	extra      []checkout.Line
	credit     map[uuid.UUID]int
	discount   decimal.Decimal
	paid       decimal.Decimal
}

// saleDraft is a priced cart that has not been written.
type saleDraft struct {
	customer *model.Customer
	tier     checkout.Tier
	lines    []checkout.Line
	summary  checkout.Summary
	payment  checkout.Payment
}

func (w checkoutWriter) draft(ctx context.Context, in draftInput) (*saleDraft, error) {
	d := &saleDraft{tier: checkout.ParseTier(in.tier)}

	if in.customerID != nil && *in.customerID != "" {
		id, err := uuid.Parse(*in.customerID)
		if err != nil {
			return nil, apierror.Validation("invalid customer_id")
		}
		c, err := w.repos.Customers.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !c.Active {
			return nil, apierror.Validation("customer is inactive")
		}
		d.customer = c
		// the customer's own tier wins over whatever the cashier picked
		d.tier = checkout.ParseTier(c.Tier)
	}

	ids := make([]uuid.UUID, 0, len(in.items))
	for _, it := range in.items {
		ids = append(ids, it.productID)
	}
	products, err := w.repos.Products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	cart := checkout.NewCart()
	for _, it := range in.items {
		p, ok := byID[it.productID]
		if !ok {
			return nil, apierror.NotFound(fmt.Sprintf("product %s not found", it.productID))
		}
		if !p.Active {
			return nil, apierror.Validation(fmt.Sprintf("product %s is inactive", p.Name))
		}
		price := checkout.PriceFor(p.SalePrice, p.ResellerPrice, p.MemberPrice, d.tier)
		if it.price != nil {
			price = *it.price
		}
		line := checkout.Line{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  it.quantity,
			BuyPrice:  p.BuyPrice,
			SalePrice: price,
		}
		if err := cart.Add(line, p.Stock+in.credit[p.ID]); err != nil {
			return nil, err
		}
	}
	for _, l := range in.extra {
		if err := cart.Add(l, 0); err != nil {
			return nil, err
		}
	}

	d.lines = cart.Lines()
	d.summary = checkout.Summarize(d.lines, in.discount)
	d.payment = checkout.EvaluatePayment(d.summary.Total, in.paid)
	return d, nil
}

// saleWrite is everything write needs besides the draft.
type saleWrite struct {
	operator middleware.Session
	method   string
	note     *string
	orderID  *uuid.UUID
	now      time.Time
}

// write persists the draft. It must run inside a transaction: any error
// rolls back the header, every decrement and the installment together.
func (w checkoutWriter) write(tx *gorm.DB, d *saleDraft, sw saleWrite) (*model.Sale, *model.Installment, error) {
	displayID, err := w.nextID(tx, repository.SeqSales, "TRX")
	if err != nil {
		return nil, nil, err
	}

	sale := &model.Sale{
		ID:            uuid.New(),
		DisplayID:     displayID,
		OperatorID:    sw.operator.UserID,
		Tier:          string(d.tier),
		Subtotal:      d.summary.Subtotal,
		Discount:      d.summary.Discount,
		Total:         d.summary.Total,
		Cost:          d.summary.Cost,
		Profit:        d.summary.Profit,
		AmountPaid:    d.payment.Paid,
		Change:        d.payment.Change,
		Remaining:     d.payment.Remaining,
		PaymentMethod: sw.method,
		Status:        "completed",
		Note:          sw.note,
		OrderID:       sw.orderID,
		CreatedAt:     sw.now,
		UpdatedAt:     sw.now,
	}
	if d.customer != nil {
		sale.CustomerID = &d.customer.ID
	}
	for _, l := range d.lines {
		sale.Items = append(sale.Items, model.SaleItem{
			ID:        uuid.New(),
			SaleID:    sale.ID,
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			BuyPrice:  l.BuyPrice,
			SalePrice: l.SalePrice,
			Subtotal:  l.Subtotal(),
		})
	}

	if err := w.repos.Sales.CreateTx(tx, sale); err != nil {
		return nil, nil, err
	}
	sale.Customer = d.customer
	moves := make([]stockMove, 0, len(d.lines))
	for _, l := range d.lines {
		moves = append(moves, stockMove{productID: l.ProductID, qty: -l.Quantity, kind: model.MovementSale, reason: "sale " + displayID})
	}
	if err := w.ledger.apply(tx, &sale.ID, moves); err != nil {
		return nil, nil, err
	}

	var inst *model.Installment
	if d.payment.Remaining.IsPositive() {
		inst, err = upsertInstallment(tx, w.repos.Installments, billing{
			displayID:  displayID,
			sourceType: model.SourceSale,
			sourceID:   sale.ID,
			customerID: sale.CustomerID,
			total:      sale.Total,
			paid:       sale.AmountPaid,
		}, sw.now)
		if err != nil {
			return nil, nil, err
		}
	}
	return sale, inst, nil
}

// saleEvents lists the change notices for a committed sale.
func saleEvents(sale *model.Sale, inst *model.Installment, action string) []realtime.Event {
	events := []realtime.Event{realtime.Changed("sales", action, sale.ID.String())}
	for _, it := range sale.Items {
		events = append(events, realtime.Changed("products", realtime.ActionUpdate, it.ProductID.String()))
	}
	if inst != nil {
		events = append(events, realtime.Changed("installments", realtime.ActionUpdate, inst.ID.String()))
	}
	return events
}

// ─── Sale service ────────────────────────────────────────────────────────────

type saleService struct {
	checkoutWriter
	pub     realtime.Publisher
	queue   ReceiptQueue
	catalog CatalogCache
	now     func() time.Time
}

func NewSaleService(repos CheckoutRepos, pub realtime.Publisher, queue ReceiptQueue, catalog CatalogCache) SaleService {
	return &saleService{
		checkoutWriter: newCheckoutWriter(repos),
		pub:            pub,
		queue:          queue,
		catalog:        catalog,
		now:            time.Now,
	}
}

func toCartItems(items []dto.CartItemRequest) ([]cartItem, error) {
	out := make([]cartItem, 0, len(items))
	for _, it := range items {
		id, err := uuid.Parse(it.ProductID)
		if err != nil {
			return nil, apierror.Validation("invalid product_id " + it.ProductID)
		}
		out = append(out, cartItem{productID: id, quantity: it.Quantity})
	}
	return out, nil
}

func (s *saleService) Preview(ctx context.Context, req dto.PreviewRequest) (*dto.PreviewResponse, error) {
	items, err := toCartItems(req.Items)
	if err != nil {
		return nil, err
	}
	d, err := s.draft(ctx, draftInput{customerID: req.CustomerID, tier: req.Tier, items: items, discount: req.Discount, paid: req.Paid})
	if err != nil {
		return nil, err
	}
	return &dto.PreviewResponse{
		Tier:      string(d.tier),
		Lines:     lineResponses(d.lines),
		Subtotal:  d.summary.Subtotal,
		Discount:  d.summary.Discount,
		Total:     d.summary.Total,
		Cost:      d.summary.Cost,
		Profit:    d.summary.Profit,
		Change:    d.payment.Change,
		Remaining: d.payment.Remaining,
	}, nil
}

func (s *saleService) Checkout(ctx context.Context, sess middleware.Session, req dto.CheckoutRequest) (*dto.SaleResponse, error) {
	items, err := toCartItems(req.Items)
	if err != nil {
		return nil, err
	}
	d, err := s.draft(ctx, draftInput{customerID: req.CustomerID, tier: req.Tier, items: items, discount: req.Discount, paid: req.Paid})
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
	err = runTx(ctx, s.repos.Sales.DB(), func(tx *gorm.DB) error {
		var werr error
		sale, inst, werr = s.write(tx, d, saleWrite{
			operator: sess,
			method:   req.PaymentMethod,
			note:     req.Note,
			now:      s.now(),
		})
		return werr
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("sale", sale.DisplayID).
		Str("operator", sess.Username).
		Str("total", sale.Total.StringFixed(2)).
		Str("remaining", sale.Remaining.StringFixed(2)).
		Msg("sale completed")

	email := req.CustomerEmail
	if email == nil && d.customer != nil {
		email = d.customer.Email
	}
	invalidateCatalog(ctx, s.catalog)
	after(ctx, s.pub, s.queue, &receiptJob{sourceType: model.SourceSale, id: sale.ID, email: email}, saleEvents(sale, inst, realtime.ActionInsert)...)
	return toSaleResponse(sale, inst), nil
}

// Void reverses a sale: stock comes back and the installment is cancelled.
// A sale whose installment already received payments cannot be voided.
func (s *saleService) Void(ctx context.Context, sess middleware.Session, id uuid.UUID, reason string) error {
	var (
		sale *model.Sale
		inst *model.Installment
	)
	err := runTx(ctx, s.repos.Sales.DB(), func(tx *gorm.DB) error {
		var err error
		sale, err = s.repos.Sales.FindForUpdateTx(tx, id)
		if err != nil {
			return err
		}
		if sale.Status == "voided" {
			return apierror.Conflict("sale is already voided")
		}

		inst, err = s.repos.Installments.FindByDisplayIDTx(tx, sale.DisplayID)
		if err != nil {
			return err
		}
		if inst != nil {
			n, err := s.repos.Installments.CountPaymentsTx(tx, inst.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				return apierror.Conflict("sale has installment payments and cannot be voided")
			}
		}

		moves := make([]stockMove, 0, len(sale.Items))
		for _, it := range sale.Items {
			moves = append(moves, stockMove{productID: it.ProductID, qty: it.Quantity, kind: model.MovementSaleVoid, reason: "void " + sale.DisplayID + ": " + reason})
		}
		if err := s.ledger.apply(tx, &sale.ID, moves); err != nil {
			return err
		}
		if err := s.repos.Sales.UpdateStatusTx(tx, sale.ID, "voided"); err != nil {
			return err
		}
		if inst != nil {
			inst.Status = model.InstallmentCancelled
			inst.UpdatedAt = s.now()
			if err := s.repos.Installments.UpdateTx(tx, inst); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().Str("sale", sale.DisplayID).Str("operator", sess.Username).Str("reason", reason).Msg("sale voided")
	invalidateCatalog(ctx, s.catalog)
	after(ctx, s.pub, nil, nil, saleEvents(sale, inst, realtime.ActionUpdate)...)
	return nil
}

func (s *saleService) Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repos.Sales.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSaleResponse(sale, nil), nil
}

func (s *saleService) List(ctx context.Context, filter dto.SaleFilter) (*dto.ListResponse[dto.SaleResponse], error) {
	filter.Normalize()
	sales, total, err := s.repos.Sales.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		out = append(out, *toSaleResponse(&sales[i], nil))
	}
	return &dto.ListResponse[dto.SaleResponse]{Data: out, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ─── Mapping ─────────────────────────────────────────────────────────────────

func lineResponses(lines []checkout.Line) []dto.LineResponse {
	out := make([]dto.LineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, dto.LineResponse{
			ProductID: l.ProductID.String(),
			Name:      l.Name,
			Quantity:  l.Quantity,
			BuyPrice:  l.BuyPrice,
			SalePrice: l.SalePrice,
			Subtotal:  l.Subtotal(),
		})
	}
	return out
}

func toSaleResponse(s *model.Sale, inst *model.Installment) *dto.SaleResponse {
	r := &dto.SaleResponse{
		ID:            s.ID.String(),
		DisplayID:     s.DisplayID,
		OperatorID:    s.OperatorID.String(),
		Tier:          s.Tier,
		Subtotal:      s.Subtotal,
		Discount:      s.Discount,
		Total:         s.Total,
		Cost:          s.Cost,
		Profit:        s.Profit,
		AmountPaid:    s.AmountPaid,
		Change:        s.Change,
		Remaining:     s.Remaining,
		PaymentMethod: s.PaymentMethod,
		Status:        s.Status,
		CreatedAt:     s.CreatedAt.Format(time.RFC3339),
	}
	if s.CustomerID != nil {
		id := s.CustomerID.String()
		r.CustomerID = &id
	}
	if s.Customer != nil {
		r.CustomerName = s.Customer.Name
	}
	for _, it := range s.Items {
		r.Items = append(r.Items, dto.LineResponse{
			ProductID: it.ProductID.String(),
			Name:      it.Name,
			Quantity:  it.Quantity,
			BuyPrice:  it.BuyPrice,
			SalePrice: it.SalePrice,
			Subtotal:  it.Subtotal,
		})
	}
	if inst != nil {
		id := inst.ID.String()
		r.InstallmentID = &id
	}
	return r
}
