package worker

// retry_cron.go
// Background goroutine that periodically re-attempts receipt delivery for
// rows in status "error" whose next_retry_at has passed. Skips the tick
// while the mail circuit breaker is open.

import (
	"context"
	"time"

	"github.com/cellkom/poscellkom-sub000/internal/infra"
	"github.com/cellkom/poscellkom-sub000/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10

	retryBaseDelay = 30 * time.Second
	retryMaxDelay  = 30 * time.Minute
)

// computeRetryBackoff returns the wait before attempt n+1:
// 30s, 1m, 2m, 4m … capped at 30m.
func computeRetryBackoff(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	d := retryBaseDelay
	for i := 1; i < n; i++ {
		d *= 2
		if d >= retryMaxDelay {
			return retryMaxDelay
		}
	}
	return d
}

// BreakerState is satisfied by *infra.CircuitBreaker.
type BreakerState interface {
	State() infra.CBState
}

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	Receipts repository.ReceiptRepository
	Email    *EmailWorker
	CB       BreakerState
}

// StartRetryCron launches a background goroutine that ticks every 30s.
// It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg, time.Now())
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig, now time.Time) int {
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return 0
	}

	due, err := cfg.Receipts.ListDueRetries(ctx, now, MaxReceiptRetries, retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending retries")
		return 0
	}
	if len(due) == 0 {
		return 0
	}
	log.Info().Int("count", len(due)).Msg("retry_cron: retrying receipt delivery")

	n := 0
	for i := range due {
		// it may have tripped mid-batch
		if cfg.CB.State() == infra.CBOpen {
			log.Debug().Msg("retry_cron: circuit breaker opened mid-batch, stopping")
			break
		}
		cfg.Email.Deliver(ctx, &due[i])
		n++
	}
	return n
}
