package commands

import (
	"context"
	"log/slog"
	"time"

	"pos-checkout/internal/pkg/clock"
)

// ExpirySweeper removes pending orders past their expiry on a fixed interval.
// It is off unless an interval is configured; without it expired records stay
// in the store until settled.
type ExpirySweeper struct {
	store    OrderStore
	clock    clock.Clock
	interval time.Duration
	logger   *slog.Logger
}

func NewExpirySweeper(store OrderStore, clk clock.Clock, interval time.Duration, logger *slog.Logger) *ExpirySweeper {
	return &ExpirySweeper{store: store, clock: clk, interval: interval, logger: logger}
}

func (s *ExpirySweeper) Enabled() bool {
	return s.interval > 0
}

// SweepOnce removes expired records and returns how many were dropped.
func (s *ExpirySweeper) SweepOnce(ctx context.Context) int {
	removed := s.store.RemoveExpired(ctx, s.clock.Now())
	for _, o := range removed {
		s.logger.Info("expired order removed",
			"fingerprint", o.Fingerprint(),
			"bill_number", o.BillNumber(),
			"expired_at", o.ExpiresAt(),
		)
	}
	return len(removed)
}

func (s *ExpirySweeper) Run(ctx context.Context) {
	if !s.Enabled() {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.SweepOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}
