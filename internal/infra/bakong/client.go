package bakong

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"pos-checkout/internal/pkg/errs"
	"pos-checkout/internal/usecase/commands"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const checkByMD5Path = "/v1/check_transaction_by_md5"

// mockFingerprintPrefix identifies codes issued without a live merchant; the
// network has never seen them.
const mockFingerprintPrefix = "mock_md5_"

var ErrUnexpectedStatus = errs.New("unexpected bakong response status")

type Config struct {
	APIURL             string
	Token              string
	MerchantID         string
	Timeout            time.Duration
	RatePerSecond      float64
	Burst              int
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
}

type checkRequest struct {
	MD5        string `json:"md5"`
	MerchantID string `json:"merchantId"`
}

type checkResponse struct {
	ResponseCode    int             `json:"responseCode"`
	ResponseMessage string          `json:"responseMessage"`
	ErrorCode       *int            `json:"errorCode"`
	Data            json.RawMessage `json:"data"`
}

// Client asks Bakong whether a transaction with a given MD5 has settled.
// A disabled client never touches the network.
type Client struct {
	cfg     Config
	enabled bool
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[commands.SettlementStatus]
	group   singleflight.Group
	logger  *slog.Logger
}

func NewClient(cfg Config, enabled bool, logger *slog.Logger) *Client {
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	c := &Client{
		cfg:     cfg,
		enabled: enabled,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker[commands.SettlementStatus](gobreaker.Settings{
		Name:    "bakong",
		Timeout: cfg.BreakerOpenTimeout,
		// A caller giving up says nothing about Bakong's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return c
}

func (c *Client) Enabled() bool {
	return c.enabled
}

// CheckSettlement performs one settlement query. Concurrent queries for the
// same fingerprint share a single upstream request, which runs detached from
// any one caller so a disconnecting terminal cannot fail the others. Every
// failure is logged and reported as NotYetSettled.
func (c *Client) CheckSettlement(ctx context.Context, fingerprint string) commands.SettlementStatus {
	if !c.enabled || strings.HasPrefix(fingerprint, mockFingerprintPrefix) {
		return commands.NotYetSettled
	}

	ch := c.group.DoChan(fingerprint, func() (any, error) {
		qctx, cancel := c.sharedContext(ctx)
		defer cancel()

		if err := c.limiter.Wait(qctx); err != nil {
			return commands.NotYetSettled, errs.Wrap(err, "rate limiter")
		}
		return c.breaker.Execute(func() (commands.SettlementStatus, error) {
			return c.query(qctx, fingerprint)
		})
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		c.logger.DebugContext(ctx, "settlement check abandoned by caller", "fingerprint", fingerprint, "error", ctx.Err())
		return commands.NotYetSettled
	case res = <-ch:
	}
	if res.Err != nil {
		c.logger.WarnContext(ctx, "settlement check failed", "fingerprint", fingerprint, "error", res.Err)
		return commands.NotYetSettled
	}

	status := res.Val.(commands.SettlementStatus)
	c.logger.DebugContext(ctx, "settlement checked", "fingerprint", fingerprint, "status", status.String())
	return status
}

// sharedContext keeps the caller's values but not its cancellation.
func (c *Client) sharedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if c.cfg.Timeout > 0 {
		return context.WithTimeout(detached, c.cfg.Timeout)
	}
	return context.WithCancel(detached)
}

func (c *Client) query(ctx context.Context, fingerprint string) (commands.SettlementStatus, error) {
	body, err := json.Marshal(checkRequest{MD5: fingerprint, MerchantID: c.cfg.MerchantID})
	if err != nil {
		return commands.NotYetSettled, errs.Wrap(err, "failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.cfg.APIURL, "/")+checkByMD5Path, bytes.NewReader(body))
	if err != nil {
		return commands.NotYetSettled, errs.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.http.Do(req)
	if err != nil {
		return commands.NotYetSettled, errs.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return commands.NotYetSettled, errs.Wrapf(ErrUnexpectedStatus, "status %d", resp.StatusCode)
	}

	var out checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return commands.NotYetSettled, errs.Wrap(err, "failed to decode response")
	}

	if out.ResponseCode == 0 {
		return commands.Settled, nil
	}
	c.logger.DebugContext(ctx, "transaction not settled",
		"fingerprint", fingerprint,
		"response_message", out.ResponseMessage,
		"error_code", derefInt(out.ErrorCode),
	)
	return commands.NotYetSettled, nil
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
