package service

import (
	"context"

	"github.com/cellkom/poscellkom-sub000/internal/dto"
	"github.com/cellkom/poscellkom-sub000/internal/model"
	"github.com/cellkom/poscellkom-sub000/internal/realtime"
	"github.com/cellkom/poscellkom-sub000/internal/repository"

	"github.com/google/uuid"
)

type CustomerService interface {
	Create(ctx context.Context, req dto.CustomerRequest) (*dto.CustomerResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error)
	List(ctx context.Context, filter dto.CustomerFilter) (*dto.ListResponse[dto.CustomerResponse], error)
	Update(ctx context.Context, id uuid.UUID, req dto.CustomerRequest) (*dto.CustomerResponse, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type customerService struct {
	repo repository.CustomerRepository
	pub  realtime.Publisher
}

func NewCustomerService(repo repository.CustomerRepository, pub realtime.Publisher) CustomerService {
	return &customerService{repo: repo, pub: pub}
}

func tierOrRetail(t string) string {
	if t == "" {
		return "retail"
	}
	return t
}

func (s *customerService) Create(ctx context.Context, req dto.CustomerRequest) (*dto.CustomerResponse, error) {
	c := &model.Customer{
		ID:      uuid.New(),
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		Tier:    tierOrRetail(req.Tier),
		Active:  true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	realtime.Notify(ctx, s.pub, realtime.Changed("customers", realtime.ActionInsert, c.ID.String()))
	return toCustomerResponse(c), nil
}

func (s *customerService) Get(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCustomerResponse(c), nil
}

func (s *customerService) List(ctx context.Context, filter dto.CustomerFilter) (*dto.ListResponse[dto.CustomerResponse], error) {
	filter.Normalize()
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CustomerResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *toCustomerResponse(&rows[i]))
	}
	return &dto.ListResponse[dto.CustomerResponse]{Data: out, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *customerService) Update(ctx context.Context, id uuid.UUID, req dto.CustomerRequest) (*dto.CustomerResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = req.Name
	c.Phone = req.Phone
	c.Email = req.Email
	c.Address = req.Address
	c.Tier = tierOrRetail(req.Tier)
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	realtime.Notify(ctx, s.pub, realtime.Changed("customers", realtime.ActionUpdate, c.ID.String()))
	return toCustomerResponse(c), nil
}

func (s *customerService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return err
	}
	realtime.Notify(ctx, s.pub, realtime.Changed("customers", realtime.ActionUpdate, id.String()))
	return nil
}

func toCustomerResponse(c *model.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:      c.ID.String(),
		Name:    c.Name,
		Phone:   c.Phone,
		Email:   c.Email,
		Address: c.Address,
		Tier:    c.Tier,
		Active:  c.Active,
	}
}

// ─── Suppliers ───────────────────────────────────────────────────────────────

type SupplierService interface {
	Create(ctx context.Context, req dto.SupplierRequest) (*dto.SupplierResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SupplierResponse, error)
	List(ctx context.Context) ([]dto.SupplierResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.SupplierRequest) (*dto.SupplierResponse, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type supplierService struct {
	repo repository.SupplierRepository
}

func NewSupplierService(repo repository.SupplierRepository) SupplierService {
	return &supplierService{repo: repo}
}

func (s *supplierService) Create(ctx context.Context, req dto.SupplierRequest) (*dto.SupplierResponse, error) {
	sp := &model.Supplier{
		ID:      uuid.New(),
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		Note:    req.Note,
		Active:  true,
	}
	if err := s.repo.Create(ctx, sp); err != nil {
		return nil, err
	}
	return toSupplierResponse(sp), nil
}

func (s *supplierService) Get(ctx context.Context, id uuid.UUID) (*dto.SupplierResponse, error) {
	sp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSupplierResponse(sp), nil
}

func (s *supplierService) List(ctx context.Context) ([]dto.SupplierResponse, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SupplierResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *toSupplierResponse(&rows[i]))
	}
	return out, nil
}

func (s *supplierService) Update(ctx context.Context, id uuid.UUID, req dto.SupplierRequest) (*dto.SupplierResponse, error) {
	sp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sp.Name = req.Name
	sp.Phone = req.Phone
	sp.Email = req.Email
	sp.Address = req.Address
	sp.Note = req.Note
	if err := s.repo.Update(ctx, sp); err != nil {
		return nil, err
	}
	return toSupplierResponse(sp), nil
}

func (s *supplierService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}

func toSupplierResponse(s *model.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:      s.ID.String(),
		Name:    s.Name,
		Phone:   s.Phone,
		Email:   s.Email,
		Address: s.Address,
		Note:    s.Note,
		Active:  s.Active,
	}
}
