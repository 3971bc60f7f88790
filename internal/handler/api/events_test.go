//go:build unit

package api_test

import (
	"bufio"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pos-checkout/internal/handler/api"
	"pos-checkout/internal/infra/broadcast"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEvent(t *testing.T, r *bufio.Reader) (event, data string) {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		case line == "" && event != "":
			return event, data
		}
	}
}

func TestEventsStream(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := broadcast.NewHub(4, slog.New(slog.NewTextHandler(io.Discard, nil)))
	router := gin.New()
	router.GET("/api/events", api.NewEventsHandler(hub, 0).Stream)

	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/events")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 5*time.Millisecond)
	hub.PublishPaymentSuccess("fp-1")

	event, data := readEvent(t, bufio.NewReader(resp.Body))
	assert.Equal(t, "payment-success", event)
	assert.JSONEq(t, `{"md5":"fp-1"}`, data)

	hub.Close()
	assert.Eventually(t, func() bool { return hub.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestEventsStreamAfterShutdown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := broadcast.NewHub(1, slog.New(slog.NewTextHandler(io.Discard, nil)))
	hub.Close()

	router := gin.New()
	router.GET("/api/events", api.NewEventsHandler(hub, 0).Stream)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
