package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/cellkom/poscellkom-sub000/internal/apierror"
	"github.com/cellkom/poscellkom-sub000/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Subscriber is satisfied by *realtime.Bus.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan realtime.Event, error)
}

type RealtimeHandler struct {
	sub       Subscriber
	heartbeat time.Duration
}

func NewRealtimeHandler(sub Subscriber) *RealtimeHandler {
	return &RealtimeHandler{sub: sub, heartbeat: 25 * time.Second}
}

// Stream godoc
// @Summary      Change feed
// @Description  Server-Sent Events. Each "change" event carries {table, action, id, at}; clients re-fetch what they show. EventSource cannot set headers, so the token may be passed as ?access_token=.
// @Tags         realtime
// @Produce      text/event-stream
// @Security     BearerAuth
// @Success      200
// @Failure      503 {object} apierror.APIError
// @Router       /v1/realtime [get]
func (h *RealtimeHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()
	events, err := h.sub.Subscribe(ctx)
	if err != nil {
		respondError(c, apierror.Network("change feed unavailable", err))
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.SSEvent("ready", gin.H{"at": time.Now().UTC()})
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				log.Debug().Msg("realtime: subscription closed")
				return
			}
			c.SSEvent("change", ev)
			c.Writer.Flush()
		case <-ticker.C:
			// comment line keeps proxies from closing an idle stream
			if _, err := c.Writer.WriteString(": ping\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}
