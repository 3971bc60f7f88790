//go:build unit

package bakong_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pos-checkout/internal/infra/bakong"
	"pos-checkout/internal/usecase/commands"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newClient(url string, enabled bool) *bakong.Client {
	return bakong.NewClient(bakong.Config{
		APIURL:             url,
		Token:              "token-123",
		MerchantID:         "shop@aclb",
		Timeout:            time.Second,
		RatePerSecond:      1000,
		Burst:              100,
		BreakerMaxFailures: 2,
		BreakerOpenTimeout: time.Minute,
	}, enabled, discardLogger())
}

func respond(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"responseCode": code, "responseMessage": "ok"})
	}
}

func TestCheckSettlement(t *testing.T) {
	ctx := context.Background()

	t.Run("settled transaction", func(t *testing.T) {
		var gotAuth, gotPath string
		var gotBody map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotPath = r.URL.Path
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			respond(0)(w, r)
		}))
		defer srv.Close()

		status := newClient(srv.URL, true).CheckSettlement(ctx, "abc123")

		assert.Equal(t, commands.Settled, status)
		assert.Equal(t, "Bearer token-123", gotAuth)
		assert.Equal(t, "/v1/check_transaction_by_md5", gotPath)
		assert.Equal(t, "abc123", gotBody["md5"])
		assert.Equal(t, "shop@aclb", gotBody["merchantId"])
	})

	t.Run("not found transaction", func(t *testing.T) {
		srv := httptest.NewServer(respond(1))
		defer srv.Close()

		assert.Equal(t, commands.NotYetSettled, newClient(srv.URL, true).CheckSettlement(ctx, "abc123"))
	})

	t.Run("server error folds into not settled", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		assert.Equal(t, commands.NotYetSettled, newClient(srv.URL, true).CheckSettlement(ctx, "abc123"))
	})

	t.Run("malformed body folds into not settled", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("{not json"))
		}))
		defer srv.Close()

		assert.Equal(t, commands.NotYetSettled, newClient(srv.URL, true).CheckSettlement(ctx, "abc123"))
	})

	t.Run("unreachable network folds into not settled", func(t *testing.T) {
		srv := httptest.NewServer(respond(0))
		url := srv.URL
		srv.Close()

		assert.Equal(t, commands.NotYetSettled, newClient(url, true).CheckSettlement(ctx, "abc123"))
	})

	t.Run("disabled client never calls the network", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			respond(0)(w, r)
		}))
		defer srv.Close()

		c := newClient(srv.URL, false)
		assert.False(t, c.Enabled())
		assert.Equal(t, commands.NotYetSettled, c.CheckSettlement(ctx, "abc123"))
		assert.Zero(t, hits.Load())
	})

	t.Run("mock fingerprints are not queried", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			respond(0)(w, r)
		}))
		defer srv.Close()

		assert.Equal(t, commands.NotYetSettled, newClient(srv.URL, true).CheckSettlement(ctx, "mock_md5_1_deadbeef"))
		assert.Zero(t, hits.Load())
	})

	t.Run("breaker opens after consecutive failures", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		c := newClient(srv.URL, true)
		for range 5 {
			assert.Equal(t, commands.NotYetSettled, c.CheckSettlement(ctx, "abc123"))
		}
		assert.Equal(t, int32(2), hits.Load())
	})

	t.Run("concurrent checks share one request", func(t *testing.T) {
		var hits atomic.Int32
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			<-release
			respond(0)(w, r)
		}))
		defer srv.Close()

		c := newClient(srv.URL, true)
		var wg sync.WaitGroup
		results := make([]commands.SettlementStatus, 5)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = c.CheckSettlement(ctx, "abc123")
			}(i)
		}

		require.Eventually(t, func() bool { return hits.Load() == 1 }, time.Second, 5*time.Millisecond)
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Equal(t, int32(1), hits.Load())
		for _, r := range results {
			assert.Equal(t, commands.Settled, r)
		}
	})

	t.Run("cancelled caller does not fail a concurrent caller", func(t *testing.T) {
		var hits atomic.Int32
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			<-release
			respond(0)(w, r)
		}))
		defer srv.Close()

		c := newClient(srv.URL, true)
		leavingCtx, cancel := context.WithCancel(ctx)

		leaving := make(chan commands.SettlementStatus, 1)
		go func() { leaving <- c.CheckSettlement(leavingCtx, "abc123") }()
		require.Eventually(t, func() bool { return hits.Load() == 1 }, time.Second, 5*time.Millisecond)

		staying := make(chan commands.SettlementStatus, 1)
		go func() { staying <- c.CheckSettlement(ctx, "abc123") }()
		time.Sleep(50 * time.Millisecond)

		cancel()
		select {
		case status := <-leaving:
			assert.Equal(t, commands.NotYetSettled, status)
		case <-time.After(time.Second):
			t.Fatal("cancelled caller did not return")
		}

		close(release)
		select {
		case status := <-staying:
			assert.Equal(t, commands.Settled, status)
		case <-time.After(time.Second):
			t.Fatal("healthy caller did not return")
		}

		// The breaker stays closed after the cancellation.
		assert.Equal(t, commands.Settled, c.CheckSettlement(ctx, "abc123"))
	})
}
