package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cellkom/poscellkom-sub000/internal/apierror"
	"github.com/cellkom/poscellkom-sub000/internal/dto"
	"github.com/cellkom/poscellkom-sub000/internal/middleware"
	"github.com/cellkom/poscellkom-sub000/internal/model"
	"github.com/cellkom/poscellkom-sub000/internal/realtime"
	"github.com/cellkom/poscellkom-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Products ─────────────────────────────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
	history  []model.ProductPriceHistory
	// stolen simulates a concurrent sale: the stock is reduced to this value
	// the moment a transaction locks the row.
	stolen map[uuid.UUID]int
	// locks records the order in which product rows were locked.
	locks []uuid.UUID
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: map[uuid.UUID]*model.Product{}, stolen: map[uuid.UUID]int{}}
}

func (r *stubProductRepo) add(code, name string, buy, sale int64, stock int) *model.Product {
	p := &model.Product{
		ID:        uuid.New(),
		Code:      code,
		Name:      name,
		Category:  "general",
		BuyPrice:  decimal.NewFromInt(buy),
		SalePrice: decimal.NewFromInt(sale),
		Stock:     stock,
		MinStock:  1,
		Active:    true,
	}
	r.products[p.ID] = p
	return p
}

func (r *stubProductRepo) stock(id uuid.UUID) int { return r.products[id].Stock }

func (r *stubProductRepo) get(id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, apierror.NotFound("product not found")
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	for _, o := range r.products {
		if o.Code == p.Code {
			return apierror.Conflict("product code " + p.Code + " already exists")
		}
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	return r.get(id)
}

func (r *stubProductRepo) FindByCode(_ context.Context, code string) (*model.Product, error) {
	for _, p := range r.products {
		if p.Code == code && p.Active {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apierror.NotFound("product not found")
}

func (r *stubProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) List(_ context.Context, f dto.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.products {
		if !p.Active {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	cur, ok := r.products[p.ID]
	if !ok {
		return apierror.NotFound("product not found")
	}
	cp := *p
	cp.Stock = cur.Stock
	cp.BuyPrice, cp.SalePrice = cur.BuyPrice, cur.SalePrice
	cp.ResellerPrice, cp.MemberPrice = cur.ResellerPrice, cur.MemberPrice
	r.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	p, ok := r.products[id]
	if !ok {
		return apierror.NotFound("product not found")
	}
	p.Active = active
	return nil
}

func (r *stubProductRepo) LowStock(_ context.Context) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.Active && p.Stock <= p.MinStock {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	r.locks = append(r.locks, id)
	if v, ok := r.stolen[id]; ok {
		r.products[id].Stock = v
		delete(r.stolen, id)
	}
	return r.get(id)
}

func (r *stubProductRepo) DecrementStockTx(_ *gorm.DB, id uuid.UUID, qty int) error {
	p, ok := r.products[id]
	if !ok {
		return apierror.NotFound("product not found")
	}
	if p.Stock < qty {
		return apierror.Conflict("not enough stock")
	}
	p.Stock -= qty
	return nil
}

func (r *stubProductRepo) IncrementStockTx(_ *gorm.DB, id uuid.UUID, qty int) error {
	r.products[id].Stock += qty
	return nil
}

func (r *stubProductRepo) UpdatePricesTx(_ *gorm.DB, p *model.Product) error {
	cur := r.products[p.ID]
	cur.BuyPrice, cur.SalePrice = p.BuyPrice, p.SalePrice
	cur.ResellerPrice, cur.MemberPrice = p.ResellerPrice, p.MemberPrice
	return nil
}

func (r *stubProductRepo) CreatePriceHistoryTx(_ *gorm.DB, h *model.ProductPriceHistory) error {
	r.history = append(r.history, *h)
	return nil
}

func (r *stubProductRepo) ListPriceHistory(_ context.Context, id uuid.UUID, _, _ int) ([]model.ProductPriceHistory, int64, error) {
	var out []model.ProductPriceHistory
	for _, h := range r.history {
		if h.ProductID == id {
			out = append(out, h)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

// lockedInOrder reports whether the recorded locks never go backwards in
// id order.
func (r *stubProductRepo) lockedInOrder() bool {
	return sort.SliceIsSorted(r.locks, func(i, j int) bool {
		return bytes.Compare(r.locks[i][:], r.locks[j][:]) < 0
	})
}

// ── Stock movements ──────────────────────────────────────────────────────────

type stubMovementRepo struct {
	rows []model.StockMovement
}

var _ repository.StockMovementRepository = (*stubMovementRepo)(nil)

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	r.rows = append(r.rows, *m)
	return nil
}

func (r *stubMovementRepo) List(_ context.Context, f dto.StockMovementFilter) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for _, m := range r.rows {
		if f.Kind != "" && m.Kind != f.Kind {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (r *stubMovementRepo) kinds() []string {
	var out []string
	for _, m := range r.rows {
		out = append(out, fmt.Sprintf("%s:%d", m.Kind, m.Quantity))
	}
	return out
}

// ── Customers / suppliers / users ────────────────────────────────────────────

type stubCustomerRepo struct {
	rows map[uuid.UUID]*model.Customer
}

var _ repository.CustomerRepository = (*stubCustomerRepo)(nil)

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{rows: map[uuid.UUID]*model.Customer{}}
}

func (r *stubCustomerRepo) add(name, tier string) *model.Customer {
	email := strings.ToLower(name) + "@example.com"
	c := &model.Customer{ID: uuid.New(), Name: name, Tier: tier, Email: &email, Active: true}
	r.rows[c.ID] = c
	return c
}

func (r *stubCustomerRepo) Create(_ context.Context, c *model.Customer) error {
	cp := *c
	r.rows[c.ID] = &cp
	return nil
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.rows[id]
	if !ok {
		return nil, apierror.NotFound("customer not found")
	}
	cp := *c
	return &cp, nil
}

func (r *stubCustomerRepo) List(_ context.Context, _ dto.CustomerFilter) ([]model.Customer, int64, error) {
	var out []model.Customer
	for _, c := range r.rows {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubCustomerRepo) Update(_ context.Context, c *model.Customer) error {
	cp := *c
	r.rows[c.ID] = &cp
	return nil
}

func (r *stubCustomerRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	c, ok := r.rows[id]
	if !ok {
		return apierror.NotFound("customer not found")
	}
	c.Active = active
	return nil
}

type stubSupplierRepo struct {
	rows map[uuid.UUID]*model.Supplier
}

var _ repository.SupplierRepository = (*stubSupplierRepo)(nil)

func (r *stubSupplierRepo) Create(_ context.Context, s *model.Supplier) error {
	if r.rows == nil {
		r.rows = map[uuid.UUID]*model.Supplier{}
	}
	cp := *s
	r.rows[s.ID] = &cp
	return nil
}

func (r *stubSupplierRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Supplier, error) {
	s, ok := r.rows[id]
	if !ok {
		return nil, apierror.NotFound("supplier not found")
	}
	cp := *s
	return &cp, nil
}

func (r *stubSupplierRepo) List(_ context.Context) ([]model.Supplier, error) {
	var out []model.Supplier
	for _, s := range r.rows {
		out = append(out, *s)
	}
	return out, nil
}

func (r *stubSupplierRepo) Update(ctx context.Context, s *model.Supplier) error {
	return r.Create(ctx, s)
}

func (r *stubSupplierRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	s, ok := r.rows[id]
	if !ok {
		return apierror.NotFound("supplier not found")
	}
	s.Active = active
	return nil
}

type stubUserRepo struct {
	rows map[uuid.UUID]*model.User
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

func newStubUserRepo() *stubUserRepo { return &stubUserRepo{rows: map[uuid.UUID]*model.User{}} }

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	for _, o := range r.rows {
		if o.Username == u.Username {
			return apierror.Conflict("username " + u.Username + " already exists")
		}
	}
	cp := *u
	r.rows[u.ID] = &cp
	return nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.rows {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apierror.NotFound("user not found")
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.rows[id]
	if !ok {
		return nil, apierror.NotFound("user not found")
	}
	cp := *u
	return &cp, nil
}

func (r *stubUserRepo) List(_ context.Context, includeInactive bool) ([]model.User, error) {
	var out []model.User
	for _, u := range r.rows {
		if u.Active || includeInactive {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	cp := *u
	r.rows[u.ID] = &cp
	return nil
}

func (r *stubUserRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	u, ok := r.rows[id]
	if !ok {
		return apierror.NotFound("user not found")
	}
	u.Active = active
	return nil
}

// ── Sales ────────────────────────────────────────────────────────────────────

type stubSaleRepo struct {
	rows map[uuid.UUID]*model.Sale
	// withCustomer counts inserts that carried a loaded customer association.
	withCustomer int
}

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

func newStubSaleRepo() *stubSaleRepo { return &stubSaleRepo{rows: map[uuid.UUID]*model.Sale{}} }

func (r *stubSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	if s.Customer != nil {
		r.withCustomer++
	}
	cp := *s
	cp.Items = append([]model.SaleItem(nil), s.Items...)
	r.rows[s.ID] = &cp
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.rows[id]
	if !ok {
		return nil, apierror.NotFound("sale not found")
	}
	cp := *s
	return &cp, nil
}

func (r *stubSaleRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubSaleRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string) error {
	r.rows[id].Status = status
	return nil
}

func (r *stubSaleRepo) List(_ context.Context, _ dto.SaleFilter) ([]model.Sale, int64, error) {
	var out []model.Sale
	for _, s := range r.rows {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

// ── Installments ─────────────────────────────────────────────────────────────

type stubInstallmentRepo struct {
	rows     map[string]*model.Installment // by display id
	payments map[uuid.UUID][]model.InstallmentPayment
}

var _ repository.InstallmentRepository = (*stubInstallmentRepo)(nil)

func newStubInstallmentRepo() *stubInstallmentRepo {
	return &stubInstallmentRepo{
		rows:     map[string]*model.Installment{},
		payments: map[uuid.UUID][]model.InstallmentPayment{},
	}
}

func (r *stubInstallmentRepo) byID(id uuid.UUID) *model.Installment {
	for _, in := range r.rows {
		if in.ID == id {
			return in
		}
	}
	return nil
}

func (r *stubInstallmentRepo) UpsertTx(_ *gorm.DB, in *model.Installment) error {
	if cur, ok := r.rows[in.DisplayID]; ok {
		in.ID = cur.ID
		in.CreatedAt = cur.CreatedAt
	} else if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	cp := *in
	cp.Payments = nil
	r.rows[in.DisplayID] = &cp
	return nil
}

func (r *stubInstallmentRepo) FindByDisplayIDTx(_ *gorm.DB, displayID string) (*model.Installment, error) {
	in, ok := r.rows[displayID]
	if !ok {
		return nil, nil
	}
	cp := *in
	return &cp, nil
}

func (r *stubInstallmentRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Installment, error) {
	in := r.byID(id)
	if in == nil {
		return nil, apierror.NotFound("installment not found")
	}
	cp := *in
	return &cp, nil
}

func (r *stubInstallmentRepo) UpdateTx(_ *gorm.DB, in *model.Installment) error {
	cp := *in
	cp.Payments = nil
	r.rows[in.DisplayID] = &cp
	return nil
}

func (r *stubInstallmentRepo) AddPaymentTx(_ *gorm.DB, p *model.InstallmentPayment) error {
	r.payments[p.InstallmentID] = append(r.payments[p.InstallmentID], *p)
	return nil
}

func (r *stubInstallmentRepo) CountPaymentsTx(_ *gorm.DB, id uuid.UUID) (int64, error) {
	return int64(len(r.payments[id])), nil
}

func (r *stubInstallmentRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Installment, error) {
	in := r.byID(id)
	if in == nil {
		return nil, apierror.NotFound("installment not found")
	}
	cp := *in
	cp.Payments = r.payments[id]
	return &cp, nil
}

func (r *stubInstallmentRepo) List(_ context.Context, f dto.InstallmentFilter) ([]model.Installment, int64, error) {
	var out []model.Installment
	for _, in := range r.rows {
		if f.Status != "all" && f.Status != "" && in.Status != f.Status {
			continue
		}
		out = append(out, *in)
	}
	return out, int64(len(out)), nil
}

func (r *stubInstallmentRepo) DB() *gorm.DB { return nil }

// ── Service orders ───────────────────────────────────────────────────────────

type stubServiceRepo struct {
	entries map[uuid.UUID]*model.ServiceEntry
	bills   map[uuid.UUID]*model.ServiceTransaction // by entry id
}

var _ repository.ServiceOrderRepository = (*stubServiceRepo)(nil)

func newStubServiceRepo() *stubServiceRepo {
	return &stubServiceRepo{
		entries: map[uuid.UUID]*model.ServiceEntry{},
		bills:   map[uuid.UUID]*model.ServiceTransaction{},
	}
}

func copyBill(t *model.ServiceTransaction) *model.ServiceTransaction {
	cp := *t
	cp.Parts = append([]model.ServicePart(nil), t.Parts...)
	return &cp
}

func (r *stubServiceRepo) CreateEntry(_ context.Context, _ *gorm.DB, e *model.ServiceEntry) error {
	cp := *e
	r.entries[e.ID] = &cp
	return nil
}

func (r *stubServiceRepo) FindEntry(_ context.Context, id uuid.UUID) (*model.ServiceEntry, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, apierror.NotFound("service entry not found")
	}
	cp := *e
	if t, ok := r.bills[id]; ok {
		cp.Transaction = copyBill(t)
	}
	return &cp, nil
}

func (r *stubServiceRepo) FindEntryForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.ServiceEntry, error) {
	return r.FindEntry(context.Background(), id)
}

func (r *stubServiceRepo) ListEntries(_ context.Context, f dto.ServiceEntryFilter) ([]model.ServiceEntry, int64, error) {
	var out []model.ServiceEntry
	for _, e := range r.entries {
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (r *stubServiceRepo) UpdateEntry(_ context.Context, e *model.ServiceEntry) error {
	cp := *e
	cp.Transaction = nil
	r.entries[e.ID] = &cp
	return nil
}

func (r *stubServiceRepo) FindTransactionTx(_ *gorm.DB, entryID uuid.UUID) (*model.ServiceTransaction, error) {
	t, ok := r.bills[entryID]
	if !ok {
		return nil, nil
	}
	return copyBill(t), nil
}

func (r *stubServiceRepo) FindTransaction(_ context.Context, entryID uuid.UUID) (*model.ServiceTransaction, error) {
	t, ok := r.bills[entryID]
	if !ok {
		return nil, apierror.NotFound("service transaction not found")
	}
	return copyBill(t), nil
}

func (r *stubServiceRepo) FindTransactionByID(_ context.Context, id uuid.UUID) (*model.ServiceTransaction, error) {
	for entryID, t := range r.bills {
		if t.ID == id {
			cp := copyBill(t)
			e := *r.entries[entryID]
			cp.Entry = &e
			return cp, nil
		}
	}
	return nil, apierror.NotFound("service transaction not found")
}

func (r *stubServiceRepo) CreateTransactionTx(_ *gorm.DB, t *model.ServiceTransaction) error {
	r.bills[t.ServiceEntryID] = copyBill(t)
	return nil
}

func (r *stubServiceRepo) ReplaceTransactionTx(_ *gorm.DB, t *model.ServiceTransaction) error {
	r.bills[t.ServiceEntryID] = copyBill(t)
	return nil
}

func (r *stubServiceRepo) DB() *gorm.DB { return nil }

// ── Orders ───────────────────────────────────────────────────────────────────

type stubOrderRepo struct {
	rows map[uuid.UUID]*model.Order
}

var _ repository.OrderRepository = (*stubOrderRepo)(nil)

func newStubOrderRepo() *stubOrderRepo { return &stubOrderRepo{rows: map[uuid.UUID]*model.Order{}} }

func (r *stubOrderRepo) CreateTx(_ *gorm.DB, o *model.Order) error {
	cp := *o
	r.rows[o.ID] = &cp
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := r.rows[id]
	if !ok {
		return nil, apierror.NotFound("order not found")
	}
	cp := *o
	return &cp, nil
}

func (r *stubOrderRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Order, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubOrderRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string, saleID *uuid.UUID) error {
	r.rows[id].Status = status
	r.rows[id].SaleID = saleID
	return nil
}

func (r *stubOrderRepo) List(_ context.Context, _ dto.OrderFilter) ([]model.Order, int64, error) {
	var out []model.Order
	for _, o := range r.rows {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) DB() *gorm.DB { return nil }

// ── Content ──────────────────────────────────────────────────────────────────

type stubContentRepo struct {
	news     map[uuid.UUID]*model.News
	ads      map[uuid.UUID]*model.Ad
	settings map[string]string
}

var _ repository.ContentRepository = (*stubContentRepo)(nil)

func newStubContentRepo() *stubContentRepo {
	return &stubContentRepo{
		news:     map[uuid.UUID]*model.News{},
		ads:      map[uuid.UUID]*model.Ad{},
		settings: map[string]string{},
	}
}

func (r *stubContentRepo) CreateNews(_ context.Context, n *model.News) error {
	for _, o := range r.news {
		if o.Slug == n.Slug && o.ID != n.ID {
			return apierror.Conflict("slug " + n.Slug + " is already used")
		}
	}
	cp := *n
	r.news[n.ID] = &cp
	return nil
}

func (r *stubContentRepo) FindNews(_ context.Context, id uuid.UUID) (*model.News, error) {
	n, ok := r.news[id]
	if !ok {
		return nil, apierror.NotFound("news not found")
	}
	cp := *n
	return &cp, nil
}

func (r *stubContentRepo) FindNewsBySlug(_ context.Context, slug string) (*model.News, error) {
	for _, n := range r.news {
		if n.Slug == slug && n.Published {
			cp := *n
			return &cp, nil
		}
	}
	return nil, apierror.NotFound("news not found")
}

func (r *stubContentRepo) ListNews(_ context.Context, publishedOnly bool) ([]model.News, error) {
	var out []model.News
	for _, n := range r.news {
		if publishedOnly && !n.Published {
			continue
		}
		out = append(out, *n)
	}
	return out, nil
}

func (r *stubContentRepo) UpdateNews(ctx context.Context, n *model.News) error {
	return r.CreateNews(ctx, n)
}

func (r *stubContentRepo) DeleteNews(_ context.Context, id uuid.UUID) error {
	if _, ok := r.news[id]; !ok {
		return apierror.NotFound("news not found")
	}
	delete(r.news, id)
	return nil
}

func (r *stubContentRepo) CreateAd(_ context.Context, a *model.Ad) error {
	cp := *a
	r.ads[a.ID] = &cp
	return nil
}

func (r *stubContentRepo) FindAd(_ context.Context, id uuid.UUID) (*model.Ad, error) {
	a, ok := r.ads[id]
	if !ok {
		return nil, apierror.NotFound("ad not found")
	}
	cp := *a
	return &cp, nil
}

func (r *stubContentRepo) ListAds(_ context.Context, activeOnly bool) ([]model.Ad, error) {
	var out []model.Ad
	for _, a := range r.ads {
		if activeOnly && !a.Active {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (r *stubContentRepo) UpdateAd(ctx context.Context, a *model.Ad) error { return r.CreateAd(ctx, a) }

func (r *stubContentRepo) DeleteAd(_ context.Context, id uuid.UUID) error {
	delete(r.ads, id)
	return nil
}

func (r *stubContentRepo) Settings(_ context.Context) ([]model.Setting, error) {
	var out []model.Setting
	for k, v := range r.settings {
		out = append(out, model.Setting{Key: k, Value: v})
	}
	return out, nil
}

func (r *stubContentRepo) PutSettings(_ context.Context, values []model.Setting) error {
	for _, s := range values {
		r.settings[s.Key] = s.Value
	}
	return nil
}

// ── Receipts ─────────────────────────────────────────────────────────────────

type stubReceiptRepo struct {
	rows []model.Receipt
}

var _ repository.ReceiptRepository = (*stubReceiptRepo)(nil)

func (r *stubReceiptRepo) Create(_ context.Context, rc *model.Receipt) error {
	rc.ID = uuid.New()
	r.rows = append(r.rows, *rc)
	return nil
}

func (r *stubReceiptRepo) FindBySource(_ context.Context, st string, id uuid.UUID) (*model.Receipt, error) {
	for _, rc := range r.rows {
		if rc.SourceType == st && rc.SourceID == id {
			cp := rc
			return &cp, nil
		}
	}
	return nil, apierror.NotFound("receipt not found")
}

func (r *stubReceiptRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Receipt, error) {
	for _, rc := range r.rows {
		if rc.ID == id {
			cp := rc
			return &cp, nil
		}
	}
	return nil, apierror.NotFound("receipt not found")
}

func (r *stubReceiptRepo) Update(_ context.Context, rc *model.Receipt) error { return nil }

func (r *stubReceiptRepo) ListDueRetries(context.Context, time.Time, int, int) ([]model.Receipt, error) {
	return nil, nil
}

// ── Side effects ─────────────────────────────────────────────────────────────

type stubPublisher struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (p *stubPublisher) Publish(_ context.Context, events ...realtime.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *stubPublisher) tables() map[string]int {
	out := map[string]int{}
	for _, e := range p.events {
		out[e.Table]++
	}
	return out
}

type queuedReceipt struct {
	sourceType string
	id         uuid.UUID
	email      *string
}

type stubQueue struct {
	jobs []queuedReceipt
	err  error
}

func (q *stubQueue) EnqueueReceipt(_ context.Context, sourceType string, id uuid.UUID, email *string) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, queuedReceipt{sourceType, id, email})
	return nil
}

type stubCache struct {
	data    map[string][]byte
	gets    int
	flushes int
}

var _ CatalogCache = (*stubCache)(nil)

func newStubCache() *stubCache { return &stubCache{data: map[string][]byte{}} }

func (c *stubCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.gets++
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *stubCache) Set(_ context.Context, key string, val []byte, _ time.Duration) error {
	c.data[key] = val
	return nil
}

func (c *stubCache) Flush(_ context.Context) error {
	c.flushes++
	c.data = map[string][]byte{}
	return nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

var testDay = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

// seqIDs replaces the Postgres sequences with per-prefix counters.
func seqIDs() displayIDFunc {
	n := map[string]int64{}
	return func(_ *gorm.DB, _ string, prefix string) (string, error) {
		n[prefix]++
		return repository.FormatDisplayID(prefix, testDay, n[prefix]), nil
	}
}

func cashier() middleware.Session {
	return middleware.Session{UserID: uuid.New(), Username: "kasir1", Role: middleware.RoleCashier}
}

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func strp(s string) *string { return &s }

// world wires every stub repository the checkout paths share.
type world struct {
	products     *stubProductRepo
	movements    *stubMovementRepo
	customers    *stubCustomerRepo
	sales        *stubSaleRepo
	installments *stubInstallmentRepo
	services     *stubServiceRepo
	orders       *stubOrderRepo
	pub          *stubPublisher
	queue        *stubQueue
	cache        *stubCache
}

func newWorld() *world {
	return &world{
		products:     newStubProductRepo(),
		movements:    &stubMovementRepo{},
		customers:    newStubCustomerRepo(),
		sales:        newStubSaleRepo(),
		installments: newStubInstallmentRepo(),
		services:     newStubServiceRepo(),
		orders:       newStubOrderRepo(),
		pub:          &stubPublisher{},
		queue:        &stubQueue{},
		cache:        newStubCache(),
	}
}

func (w *world) repos() CheckoutRepos {
	return CheckoutRepos{
		Sales:        w.sales,
		Products:     w.products,
		Customers:    w.customers,
		Installments: w.installments,
		Movements:    w.movements,
	}
}

func (w *world) saleService() *saleService {
	s := NewSaleService(w.repos(), w.pub, w.queue, w.cache).(*saleService)
	s.nextID = seqIDs()
	s.now = func() time.Time { return testDay }
	return s
}

func (w *world) serviceOrders() *serviceOrderService {
	s := NewServiceOrderService(w.services, w.repos(), w.pub, w.queue, w.cache).(*serviceOrderService)
	s.nextID = seqIDs()
	s.now = func() time.Time { return testDay }
	return s
}

func (w *world) orderService() *orderService {
	s := NewOrderService(w.orders, w.repos(), w.pub, w.queue, w.cache).(*orderService)
	s.nextID = seqIDs()
	s.now = func() time.Time { return testDay }
	return s
}
