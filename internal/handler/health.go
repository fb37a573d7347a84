package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/cellkom/poscellkom-sub000/internal/infra"
	"github.com/cellkom/poscellkom-sub000/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity and reports the mail circuit state;
// never exposes credentials or internals. An open mail circuit degrades
// receipts only, so it does not fail the check.
func Health(db *gorm.DB, rdb *redis.Client, mailCB *infra.CircuitBreaker, dlq *worker.DLQ) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		mail := "unknown"
		if mailCB != nil {
			mail = mailCB.State().String()
		}

		dead := gin.H{}
		if dlq != nil && redisStatus == "connected" {
			for _, q := range []string{worker.QueueReceipt, worker.QueueEmail} {
				if n, err := dlq.Length(ctx, q); err == nil {
					dead[q] = n
				}
			}
		}

		c.JSON(status, gin.H{
			"ok":           status == http.StatusOK,
			"db":           dbStatus,
			"redis":        redisStatus,
			"mail":         mail,
			"dead_letters": dead,
		})
	}
}
