//go:build unit

package commands_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"pos-checkout/internal/infra/store"
	"pos-checkout/internal/pkg/clock"
	"pos-checkout/internal/usecase/commands"
	"pos-checkout/tests/common/builder"

	"github.com/stretchr/testify/mock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type settlementMock struct {
	mock.Mock
}

func (m *settlementMock) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *settlementMock) CheckSettlement(ctx context.Context, fingerprint string) commands.SettlementStatus {
	return m.Called(ctx, fingerprint).Get(0).(commands.SettlementStatus)
}

type sequentialCodes struct {
	n    atomic.Int32
	mode commands.CodeMode
}

func (g *sequentialCodes) Generate(_ context.Context, _ commands.CodeRequest) commands.GeneratedCode {
	mode := g.mode
	if mode == "" {
		mode = commands.CodeModeLive
	}
	n := g.n.Add(1)
	return commands.GeneratedCode{
		Payload:     fmt.Sprintf("qr-%d", n),
		Fingerprint: fmt.Sprintf("fp-%d", n),
		Mode:        mode,
	}
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (b *recordingBroadcaster) PublishPaymentSuccess(fingerprint string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, fingerprint)
}

func (b *recordingBroadcaster) Events() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.events...)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []commands.Settlement
	fail bool
}

func (n *recordingNotifier) NotifySettlement(_ context.Context, s commands.Settlement) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("telegram unavailable")
	}
	n.sent = append(n.sent, s)
	return nil
}

func (n *recordingNotifier) Sent() []commands.Settlement {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]commands.Settlement(nil), n.sent...)
}

type fixture struct {
	builder     *builder.OrderBuilder
	clock       *clock.MockClock
	store       *store.MemoryOrderStore
	codes       *sequentialCodes
	settlement  *settlementMock
	broadcaster *recordingBroadcaster
	notifier    *recordingNotifier
	fanout      *commands.Fanout
	resolver    *commands.Resolver
	cmds        commands.OrderCommands
}

func newFixture(settlementEnabled bool) *fixture {
	b := builder.NewOrderBuilder()
	f := &fixture{
		builder:     b,
		clock:       clock.NewMockClock(b.Now),
		store:       store.NewMemoryOrderStore(),
		codes:       &sequentialCodes{},
		settlement:  &settlementMock{},
		broadcaster: &recordingBroadcaster{},
		notifier:    &recordingNotifier{},
	}
	f.settlement.On("Enabled").Return(settlementEnabled)

	logger := discardLogger()
	f.fanout = commands.NewFanout(f.broadcaster, f.notifier, time.Second, logger)
	f.resolver = commands.NewResolver(f.store, f.fanout, f.clock, logger)
	f.cmds = commands.NewOrderCommands(b.BuildServicesWithClock(f.clock), f.store, f.codes, f.settlement, f.resolver, logger)
	return f
}
