package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cellkom/poscellkom-sub000/internal/apierror"
	"github.com/cellkom/poscellkom-sub000/internal/checkout"
	"github.com/cellkom/poscellkom-sub000/internal/model"
	"github.com/cellkom/poscellkom-sub000/internal/realtime"
	"github.com/cellkom/poscellkom-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return repository.Classify(db.WithContext(ctx).Transaction(fn))
}

// ReceiptQueue is satisfied by *worker.Dispatcher.
type ReceiptQueue interface {
	EnqueueReceipt(ctx context.Context, sourceType string, sourceID uuid.UUID, email *string) error
}

// displayIDFunc draws a display id inside a transaction.
type displayIDFunc func(tx *gorm.DB, seq, prefix string) (string, error)

func sequenceDisplayID(tx *gorm.DB, seq, prefix string) (string, error) {
	return repository.NextDisplayID(tx, seq, prefix, time.Now())
}

// after runs the post-commit side effects of a write. Failures are logged;
// the write itself has already succeeded.
func after(ctx context.Context, pub realtime.Publisher, queue ReceiptQueue, receipt *receiptJob, events ...realtime.Event) {
	realtime.Notify(ctx, pub, events...)
	if queue == nil || receipt == nil {
		return
	}
	if err := queue.EnqueueReceipt(ctx, receipt.sourceType, receipt.id, receipt.email); err != nil {
		log.Warn().Err(err).Str("source_id", receipt.id.String()).Msg("failed to enqueue receipt job")
	}
}

type receiptJob struct {
	sourceType string
	id         uuid.UUID
	email      *string
}

// ── Stock ledger ─────────────────────────────────────────────────────────────

// stockLedger moves stock and records a movement for every change.
// All methods must run inside a transaction.
type stockLedger struct {
	products  repository.ProductRepository
	movements repository.StockMovementRepository
}

// take decrements stock atomically. The row lock gives an exact "before"
// value for the movement; the conditional update is what guarantees stock
// never goes below zero.
func (l stockLedger) take(tx *gorm.DB, productID uuid.UUID, qty int, kind, reason string, ref *uuid.UUID) error {
	p, err := l.products.FindForUpdateTx(tx, productID)
	if err != nil {
		return err
	}
	if err := l.products.DecrementStockTx(tx, productID, qty); err != nil {
		if apierror.KindOf(err) == apierror.KindConflict {
			return apierror.Conflict(fmt.Sprintf("insufficient stock for %s: %d available", p.Name, p.Stock))
		}
		return err
	}
	return l.movements.CreateTx(tx, &model.StockMovement{
		ProductID:   productID,
		Kind:        kind,
		Quantity:    -qty,
		StockBefore: p.Stock,
		StockAfter:  p.Stock - qty,
		Reason:      reason,
		ReferenceID: ref,
	})
}

// put returns stock, e.g. on void or when a service bill drops a part.
func (l stockLedger) put(tx *gorm.DB, productID uuid.UUID, qty int, kind, reason string, ref *uuid.UUID) error {
	p, err := l.products.FindForUpdateTx(tx, productID)
	if err != nil {
		return err
	}
	if err := l.products.IncrementStockTx(tx, productID, qty); err != nil {
		return err
	}
	return l.movements.CreateTx(tx, &model.StockMovement{
		ProductID:   productID,
		Kind:        kind,
		Quantity:    qty,
		StockBefore: p.Stock,
		StockAfter:  p.Stock + qty,
		Reason:      reason,
		ReferenceID: ref,
	})
}

// stockMove is one pending stock change. Positive qty returns stock,
// negative qty takes it.
type stockMove struct {
	productID uuid.UUID
	qty       int
	kind      string
	reason    string
}

// apply runs moves in product id order so that concurrent writers lock
// product rows in the same sequence. For a single product, returns run
// before takes.
func (l stockLedger) apply(tx *gorm.DB, ref *uuid.UUID, moves []stockMove) error {
	ordered := append([]stockMove(nil), moves...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if c := bytes.Compare(ordered[i].productID[:], ordered[j].productID[:]); c != 0 {
			return c < 0
		}
		return ordered[i].qty > ordered[j].qty
	})
	for _, m := range ordered {
		var err error
		if m.qty < 0 {
			err = l.take(tx, m.productID, -m.qty, m.kind, m.reason, ref)
		} else {
			err = l.put(tx, m.productID, m.qty, m.kind, m.reason, ref)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// ── Installment upsert ───────────────────────────────────────────────────────

// billing is what a sale or service bill contributes to an installment.
type billing struct {
	displayID  string
	sourceType string
	sourceID   uuid.UUID
	customerID *uuid.UUID
	total      decimal.Decimal
	paid       decimal.Decimal
}

// upsertInstallment creates or refreshes the installment keyed by the
// billing's display id. Payments received after the original billing are
// carried over into paid. When the bill is fully settled and no installment
// exists yet, nothing is written and nil is returned.
func upsertInstallment(tx *gorm.DB, repo repository.InstallmentRepository, b billing, now time.Time) (*model.Installment, error) {
	existing, err := repo.FindByDisplayIDTx(tx, b.displayID)
	if err != nil {
		return nil, err
	}

	later := decimal.Zero
	if existing != nil {
		later = existing.Paid.Sub(existing.InitialPaid)
	}
	paid := b.paid.Add(later)
	pay := checkout.EvaluatePayment(b.total, paid)

	if existing == nil && pay.Remaining.IsZero() {
		return nil, nil
	}
	if b.customerID == nil {
		return nil, apierror.Validation("installment requires a registered customer")
	}

	in := &model.Installment{
		DisplayID:   b.displayID,
		SourceType:  b.sourceType,
		SourceID:    b.sourceID,
		CustomerID:  *b.customerID,
		Total:       b.total,
		InitialPaid: b.paid,
		Paid:        paid,
		Remaining:   pay.Remaining,
		Status:      model.InstallmentUnpaid,
		UpdatedAt:   now,
	}
	in.CreatedAt = now
	if pay.Remaining.IsZero() {
		in.Status = model.InstallmentPaid
		in.PaidAt = &now
	}
	if err := repo.UpsertTx(tx, in); err != nil {
		return nil, err
	}
	if existing != nil && in.ID == uuid.Nil {
		in.ID = existing.ID
	}
	return in, nil
}
