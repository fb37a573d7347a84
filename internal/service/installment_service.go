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
	"gorm.io/gorm"
)

type InstallmentService interface {
	List(ctx context.Context, filter dto.InstallmentFilter) (*dto.ListResponse[dto.InstallmentResponse], error)
	Get(ctx context.Context, id uuid.UUID) (*dto.InstallmentResponse, error)
	AddPayment(ctx context.Context, sess middleware.Session, id uuid.UUID, req dto.AddPaymentRequest) (*dto.InstallmentResponse, error)
}

type installmentService struct {
	repo repository.InstallmentRepository
	pub  realtime.Publisher
	now  func() time.Time
}

func NewInstallmentService(repo repository.InstallmentRepository, pub realtime.Publisher) InstallmentService {
	return &installmentService{repo: repo, pub: pub, now: time.Now}
}

func (s *installmentService) List(ctx context.Context, filter dto.InstallmentFilter) (*dto.ListResponse[dto.InstallmentResponse], error) {
	filter.Normalize()
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InstallmentResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *toInstallmentResponse(&rows[i]))
	}
	return &dto.ListResponse[dto.InstallmentResponse]{Data: out, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *installmentService) Get(ctx context.Context, id uuid.UUID) (*dto.InstallmentResponse, error) {
	in, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toInstallmentResponse(in), nil
}

// AddPayment records a payment against an open installment. The row lock
// serialises concurrent payments so remaining is never paid twice.
func (s *installmentService) AddPayment(ctx context.Context, sess middleware.Session, id uuid.UUID, req dto.AddPaymentRequest) (*dto.InstallmentResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, apierror.Validation("payment amount must be greater than zero")
	}
	if err := checkout.CheckScale("amount", req.Amount); err != nil {
		return nil, err
	}

	var in *model.Installment
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		in, err = s.repo.FindForUpdateTx(tx, id)
		if err != nil {
			return err
		}
		if in.Status != model.InstallmentUnpaid {
			return apierror.Validation("installment is " + in.Status)
		}
		if req.Amount.GreaterThan(in.Remaining) {
			return apierror.Validation("payment exceeds the remaining balance of " + in.Remaining.StringFixed(2))
		}

		now := s.now()
		p := model.InstallmentPayment{
			ID:              uuid.New(),
			InstallmentID:   in.ID,
			Amount:          req.Amount,
			Method:          req.Method,
			RemainingBefore: in.Remaining,
			RemainingAfter:  in.Remaining.Sub(req.Amount),
			Note:            req.Note,
			ReceivedByID:    sess.UserID,
			CreatedAt:       now,
		}
		if err := s.repo.AddPaymentTx(tx, &p); err != nil {
			return err
		}

		in.Paid = in.Paid.Add(req.Amount)
		in.Remaining = p.RemainingAfter
		in.UpdatedAt = now
		if in.Remaining.IsZero() {
			in.Status = model.InstallmentPaid
			in.PaidAt = &now
		}
		return s.repo.UpdateTx(tx, in)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("installment", in.DisplayID).
		Str("amount", req.Amount.StringFixed(2)).
		Str("remaining", in.Remaining.StringFixed(2)).
		Str("operator", sess.Username).
		Msg("installment payment recorded")
	realtime.Notify(ctx, s.pub, realtime.Changed("installments", realtime.ActionUpdate, in.ID.String()))

	// The locked read carries no history; reload it with every payment.
	full, err := s.repo.FindByID(ctx, in.ID)
	if err != nil {
		log.Warn().Err(err).Str("installment", in.DisplayID).Msg("reload after payment failed")
		return toInstallmentResponse(in), nil
	}
	return toInstallmentResponse(full), nil
}

func toInstallmentResponse(in *model.Installment) *dto.InstallmentResponse {
	r := &dto.InstallmentResponse{
		ID:         in.ID.String(),
		DisplayID:  in.DisplayID,
		SourceType: in.SourceType,
		SourceID:   in.SourceID.String(),
		CustomerID: in.CustomerID.String(),
		Total:      in.Total,
		Paid:       in.Paid,
		Remaining:  in.Remaining,
		Status:     in.Status,
		CreatedAt:  in.CreatedAt.Format(time.RFC3339),
	}
	if in.Customer != nil {
		r.CustomerName = in.Customer.Name
	}
	for _, p := range in.Payments {
		r.Payments = append(r.Payments, dto.InstallmentPaymentResponse{
			ID:              p.ID.String(),
			Amount:          p.Amount,
			Method:          p.Method,
			RemainingBefore: p.RemainingBefore,
			RemainingAfter:  p.RemainingAfter,
			Note:            p.Note,
			ReceivedByID:    p.ReceivedByID.String(),
			CreatedAt:       p.CreatedAt.Format(time.RFC3339),
		})
	}
	return r
}
