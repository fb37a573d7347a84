package worker

// email_worker.go
// Processes email jobs from QueueEmail: sends the stored receipt PDF to the
// customer. Failed sends are rescheduled on the receipt row and picked up by
// the retry cron.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cellkom/poscellkom-sub000/internal/infra"
	"github.com/cellkom/poscellkom-sub000/internal/model"
	"github.com/cellkom/poscellkom-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MaxReceiptRetries is the number of delivery attempts before a receipt is
// parked in the DLQ.
const MaxReceiptRetries = 5

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ReceiptID string `json:"receipt_id"`
}

// ReceiptMailer is satisfied by *infra.Mailer.
type ReceiptMailer interface {
	SendReceipt(to, subject, body, pdfPath string) error
}

type EmailWorker struct {
	mailer      ReceiptMailer
	receipts    repository.ReceiptRepository
	dlq         DeadLetterSink
	storagePath string
	storeName   string
	now         func() time.Time
}

func NewEmailWorker(mailer ReceiptMailer, receipts repository.ReceiptRepository, dlq DeadLetterSink, storagePath, storeName string) *EmailWorker {
	return &EmailWorker{
		mailer:      mailer,
		receipts:    receipts,
		dlq:         dlq,
		storagePath: storagePath,
		storeName:   storeName,
		now:         time.Now,
	}
}

// Process sends an email with the PDF receipt as attachment.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	id, err := uuid.Parse(payload.ReceiptID)
	if err != nil {
		log.Error().Str("receipt_id", payload.ReceiptID).Msg("email_worker: invalid receipt_id")
		return
	}
	rc, err := w.receipts.FindByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("receipt_id", payload.ReceiptID).Msg("email_worker: receipt not found")
		return
	}
	w.Deliver(ctx, rc)
}

// Deliver sends rc and records the outcome on the row.
func (w *EmailWorker) Deliver(ctx context.Context, rc *model.Receipt) {
	if rc.Email == nil || *rc.Email == "" {
		log.Warn().Str("receipt_id", rc.ID.String()).Msg("email_worker: no recipient — skipping")
		return
	}
	pdfPath := ""
	if rc.PDFPath != nil {
		pdfPath = filepath.Join(w.storagePath, *rc.PDFPath)
	}

	subject := fmt.Sprintf("%s receipt %s", w.storeName, rc.DisplayID)
	body := fmt.Sprintf("Thank you for your purchase at %s.\nYour receipt %s is attached.", w.storeName, rc.DisplayID)

	err := w.mailer.SendReceipt(*rc.Email, subject, body, pdfPath)
	if err == nil {
		rc.Status = model.ReceiptSent
		rc.NextRetryAt = nil
		rc.LastError = nil
		if uerr := w.receipts.Update(ctx, rc); uerr != nil {
			log.Error().Err(uerr).Str("receipt_id", rc.ID.String()).Msg("email_worker: failed to mark sent")
		}
		log.Info().Str("to", *rc.Email).Str("display_id", rc.DisplayID).Msg("email_worker: receipt sent")
		return
	}
	w.scheduleRetry(ctx, rc, err)
}

func (w *EmailWorker) scheduleRetry(ctx context.Context, rc *model.Receipt, cause error) {
	msg := cause.Error()
	rc.Status = model.ReceiptError
	rc.LastError = &msg
	rc.RetryCount++

	// Nothing to retry against when mail is not configured.
	if errors.Is(cause, infra.ErrMailDisabled) || rc.RetryCount >= MaxReceiptRetries {
		rc.NextRetryAt = nil
		payload, _ := json.Marshal(EmailJobPayload{ReceiptID: rc.ID.String()})
		w.dlq.Send(ctx, DLQEntry{
			OriginalQueue: QueueEmail,
			JobType:       JobEmail,
			Payload:       payload,
			Reason:        fmt.Sprintf("giving up after %d attempts: %s", rc.RetryCount, msg),
			Attempts:      rc.RetryCount,
		})
	} else {
		next := w.now().Add(computeRetryBackoff(rc.RetryCount))
		rc.NextRetryAt = &next
		log.Warn().
			Str("receipt_id", rc.ID.String()).
			Int("retry_count", rc.RetryCount).
			Time("next_retry_at", next).
			Msg("email_worker: delivery failed, scheduled next attempt")
	}
	if err := w.receipts.Update(ctx, rc); err != nil {
		log.Error().Err(err).Str("receipt_id", rc.ID.String()).Msg("email_worker: failed to record retry")
	}
}
