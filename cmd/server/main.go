// @title           Cellkom POS API
// @version         1.0
// @description     Point of sale, repair orders, installments and storefront for a phone shop.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cellkom/poscellkom-sub000/internal/config"
	"github.com/cellkom/poscellkom-sub000/internal/infra"
	"github.com/cellkom/poscellkom-sub000/internal/repository"
	"github.com/cellkom/poscellkom-sub000/internal/router"
	"github.com/cellkom/poscellkom-sub000/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger — dev: pretty, prod: JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailCB := infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp"))
	mailer := infra.NewMailer(cfg, mailCB)
	dispatcher := worker.NewDispatcher(rdb)

	r, receipts := router.New(ctx, router.Deps{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Queue:  dispatcher,
		MailCB: mailCB,
	})

	// Worker handlers are wired here (composition root) so the pool shares
	// the receipt renderer with the HTTP side.
	receiptRepo := repository.NewReceiptRepository(db)
	dlq := worker.NewDLQ(rdb)
	emailWorker := worker.NewEmailWorker(mailer, receiptRepo, dlq, cfg.ReceiptStoragePath, cfg.StoreName)
	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, worker.Handlers{
		Receipt: worker.NewReceiptWorker(receipts, receiptRepo, dispatcher, dlq, cfg.ReceiptStoragePath),
		Email:   emailWorker,
	})
	worker.StartRetryCron(ctx, worker.RetryCronConfig{
		Receipts: receiptRepo,
		Email:    emailWorker,
		CB:       mailCB,
	})

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: /v1/realtime holds its response open.
		IdleTimeout: 60 * time.Second,
		// cancel() ends open event streams so Shutdown can drain.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("Cellkom backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
