package api

import (
	"io"
	"net/http"
	"time"

	"pos-checkout/internal/handler/httperr"
	"pos-checkout/internal/infra/broadcast"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
)

type EventsHandler struct {
	hub       *broadcast.Hub
	keepAlive time.Duration
}

func NewEventsHandler(hub *broadcast.Hub, keepAlive time.Duration) *EventsHandler {
	return &EventsHandler{hub: hub, keepAlive: keepAlive}
}

// @Summary Payment events
// @Description Server-sent events; emits payment-success with {"md5": "..."} when an order settles
// @Tags checkout
// @Produce text/event-stream
// @Success 200
// @Failure 503 {object} httperr.Response
// @Router /api/events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	sub, err := h.hub.Subscribe()
	if err != nil {
		httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Event stream unavailable", nil)
		return
	}
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	var tick <-chan time.Time
	if h.keepAlive > 0 {
		ticker := time.NewTicker(h.keepAlive)
		defer ticker.Stop()
		tick = ticker.C
	}

	c.Stream(func(_ io.Writer) bool {
		select {
		case e, ok := <-sub.Events():
			if !ok {
				return false
			}
			c.Render(-1, sse.Event{Event: e.Name, Data: e.Data})
			return true
		case <-tick:
			c.Render(-1, sse.Event{Event: "ping", Data: time.Now().UnixMilli()})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
