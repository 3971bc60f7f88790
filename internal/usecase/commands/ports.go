package commands

import (
	"context"
	"time"

	"pos-checkout/internal/domain/order"

	"github.com/shopspring/decimal"
)

// OrderStore is the registry of pending orders keyed by settlement fingerprint.
type OrderStore interface {
	Put(ctx context.Context, o *order.PendingOrder) (replaced bool, err error)
	Get(ctx context.Context, fingerprint string) (*order.PendingOrder, bool)
	Remove(ctx context.Context, fingerprint string)
	// Take atomically removes and returns the record; only one concurrent caller wins.
	Take(ctx context.Context, fingerprint string) (*order.PendingOrder, bool)
	RemoveExpired(ctx context.Context, now time.Time) []*order.PendingOrder
	Len() int
}

type CodeMode string

const (
	CodeModeLive CodeMode = "live"
	CodeModeMock CodeMode = "mock"
)

type CodeRequest struct {
	Currency   order.Currency
	Amount     decimal.Decimal
	BillNumber string
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

type GeneratedCode struct {
	Payload     string
	Fingerprint string
	Mode        CodeMode
}

// CodeGenerator never fails checkout: when the live generator is unavailable
// it returns a mock code with Mode == CodeModeMock.
type CodeGenerator interface {
	Generate(ctx context.Context, req CodeRequest) GeneratedCode
}

type SettlementStatus int

const (
	NotYetSettled SettlementStatus = iota
	Settled
)

func (s SettlementStatus) String() string {
	if s == Settled {
		return "settled"
	}
	return "not_yet_settled"
}

// SettlementChecker queries the payment network once per call. Transport
// failures are reported as NotYetSettled.
type SettlementChecker interface {
	Enabled() bool
	CheckSettlement(ctx context.Context, fingerprint string) SettlementStatus
}

// Broadcaster delivers real-time events to connected clients, fire-and-forget.
type Broadcaster interface {
	PublishPaymentSuccess(fingerprint string)
}

type MessageNotifier interface {
	NotifySettlement(ctx context.Context, s Settlement) error
}

type Dispatcher interface {
	Dispatch(s Settlement)
}
