package commands

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Fanout delivers a settlement to the real-time channel and the off-band
// notifier. Delivery is best-effort: failures are logged and never retried.
type Fanout struct {
	broadcaster Broadcaster
	notifier    MessageNotifier
	timeout     time.Duration
	logger      *slog.Logger
	wg          sync.WaitGroup
}

func NewFanout(broadcaster Broadcaster, notifier MessageNotifier, timeout time.Duration, logger *slog.Logger) *Fanout {
	return &Fanout{
		broadcaster: broadcaster,
		notifier:    notifier,
		timeout:     timeout,
		logger:      logger,
	}
}

// Dispatch returns without waiting for the off-band notifier. A settlement
// without a bill number carries no order details and is only broadcast.
func (f *Fanout) Dispatch(s Settlement) {
	f.broadcast(s)

	if s.BillNumber == "" {
		f.logger.Warn("settlement details unavailable; notification skipped", "fingerprint", s.Fingerprint)
		return
	}

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		f.notify(s)
	}()
}

// Wait blocks until in-flight notifier deliveries have finished.
func (f *Fanout) Wait() {
	f.wg.Wait()
}

func (f *Fanout) broadcast(s Settlement) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("broadcast panicked", "fingerprint", s.Fingerprint, "panic", r)
		}
	}()
	f.broadcaster.PublishPaymentSuccess(s.Fingerprint)
}

func (f *Fanout) notify(s Settlement) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("settlement notifier panicked", "fingerprint", s.Fingerprint, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()
	if err := f.notifier.NotifySettlement(ctx, s); err != nil {
		f.logger.Warn("settlement notification not delivered", "fingerprint", s.Fingerprint, "error", err)
	}
}
