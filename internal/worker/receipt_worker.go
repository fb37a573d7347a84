package worker

// receipt_worker.go
// Renders receipt PDFs for committed sales and service bills, records them
// and hands delivery to the email queue.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cellkom/poscellkom-sub000/internal/apierror"
	"github.com/cellkom/poscellkom-sub000/internal/infra"
	"github.com/cellkom/poscellkom-sub000/internal/model"
	"github.com/cellkom/poscellkom-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReceiptJobPayload is the job envelope sent to QueueReceipt.
type ReceiptJobPayload struct {
	SourceType string  `json:"source_type"` // sale | service
	SourceID   string  `json:"source_id"`
	Email      *string `json:"email,omitempty"`
}

// ReceiptRenderer builds the printable document of a transaction.
type ReceiptRenderer interface {
	Document(ctx context.Context, sourceType string, id uuid.UUID) (infra.ReceiptDoc, error)
}

// EmailQueue is the part of Dispatcher the receipt worker needs.
type EmailQueue interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

type ReceiptWorker struct {
	renderer    ReceiptRenderer
	receipts    repository.ReceiptRepository
	emails      EmailQueue
	dlq         DeadLetterSink
	storagePath string
	retryBase   time.Duration
}

func NewReceiptWorker(
	renderer ReceiptRenderer,
	receipts repository.ReceiptRepository,
	emails EmailQueue,
	dlq DeadLetterSink,
	storagePath string,
) *ReceiptWorker {
	return &ReceiptWorker{
		renderer:    renderer,
		receipts:    receipts,
		emails:      emails,
		dlq:         dlq,
		storagePath: storagePath,
		retryBase:   time.Second,
	}
}

// Process handles a single receipt job:
//  1. Build the receipt document (3 attempts, exponential backoff)
//  2. Write the PDF under storagePath
//  3. Store a Receipt row with status "generated"
//  4. Enqueue an email job when the customer left an address
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return
	}
	sourceID, err := uuid.Parse(payload.SourceID)
	if err != nil {
		log.Error().Str("source_id", payload.SourceID).Msg("receipt_worker: invalid source_id")
		return
	}

	var doc infra.ReceiptDoc
	var fileName string
	err = withRetry(ctx, 3, w.retryBase, func(attempt int) error {
		d, err := w.renderer.Document(ctx, payload.SourceType, sourceID)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Str("source_id", payload.SourceID).
				Msg("receipt_worker: render attempt failed")
			return err
		}
		doc = d
		fileName, err = infra.WriteReceiptPDF(d, w.storagePath)
		return err
	})
	if err != nil {
		w.dlq.Send(ctx, DLQEntry{
			OriginalQueue: QueueReceipt,
			JobType:       JobReceipt,
			Payload:       raw,
			Reason:        err.Error(),
			Attempts:      3,
		})
		return
	}

	rc, err := w.store(ctx, payload, sourceID, doc.DisplayID, fileName)
	if err != nil {
		log.Error().Err(err).Str("display_id", doc.DisplayID).Msg("receipt_worker: failed to store receipt")
		return
	}
	log.Info().Str("display_id", doc.DisplayID).Str("pdf", fileName).Msg("receipt_worker: PDF generated")

	if payload.Email == nil || *payload.Email == "" {
		return
	}
	job := EmailJobPayload{ReceiptID: rc.ID.String()}
	if err := w.emails.EnqueueEmail(ctx, job); err != nil {
		// The retry cron picks it up from the row instead.
		log.Warn().Err(err).Str("receipt_id", rc.ID.String()).Msg("receipt_worker: failed to enqueue email")
		now := time.Now()
		rc.Status = model.ReceiptError
		rc.NextRetryAt = &now
		msg := fmt.Sprintf("enqueue email: %v", err)
		rc.LastError = &msg
		_ = w.receipts.Update(ctx, rc)
	}
}

// store records the rendered PDF. A source billed again (a revised service
// bill, a resend) reuses its receipt row and starts delivery over.
func (w *ReceiptWorker) store(ctx context.Context, p ReceiptJobPayload, sourceID uuid.UUID, displayID, fileName string) (*model.Receipt, error) {
	rc, err := w.receipts.FindBySource(ctx, p.SourceType, sourceID)
	switch {
	case apierror.KindOf(err) == apierror.KindNotFound:
		rc = &model.Receipt{
			SourceType: p.SourceType,
			SourceID:   sourceID,
			DisplayID:  displayID,
			Status:     model.ReceiptGenerated,
			PDFPath:    &fileName,
			Email:      p.Email,
		}
		return rc, w.receipts.Create(ctx, rc)
	case err != nil:
		return nil, err
	}

	rc.DisplayID = displayID
	rc.Status = model.ReceiptGenerated
	rc.PDFPath = &fileName
	if p.Email != nil {
		rc.Email = p.Email
	}
	rc.RetryCount = 0
	rc.NextRetryAt = nil
	rc.LastError = nil
	return rc, w.receipts.Update(ctx, rc)
}
