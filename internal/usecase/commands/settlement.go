package commands

import (
	"context"
	"log/slog"
	"time"

	"pos-checkout/internal/domain/order"
	"pos-checkout/internal/pkg/clock"
	"pos-checkout/internal/pkg/errs"

	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
)

// Settlement is the record handed to the fan-out once a payment has cleared.
type Settlement struct {
	Fingerprint string
	BillNumber  string
	Currency    order.Currency
	Total       decimal.Decimal
	Customer    order.Customer
	Seller      *order.Seller
	Items       []SettlementItem
	CreatedAt   time.Time
	SettledAt   time.Time
}

type SettlementItem struct {
	ProductRef string
	Name       string
	Quantity   int
	UnitPrice  decimal.Decimal
}

func NewSettlement(o *order.PendingOrder) (Settlement, error) {
	snap := o.Snapshot()
	var s Settlement
	if err := copier.Copy(&s, &snap); err != nil {
		return Settlement{}, errs.Wrap(err, "failed to snapshot settled order")
	}
	return s, nil
}

type SnapshotFunc func(*order.PendingOrder) (Settlement, error)

// Resolver owns the Pending -> Settled transition.
type Resolver struct {
	store      OrderStore
	dispatcher Dispatcher
	clock      clock.Clock
	snapshot   SnapshotFunc
	logger     *slog.Logger
}

func NewResolver(store OrderStore, dispatcher Dispatcher, clk clock.Clock, logger *slog.Logger) *Resolver {
	return &Resolver{store: store, dispatcher: dispatcher, clock: clk, snapshot: NewSettlement, logger: logger}
}

// WithSnapshot replaces the settlement snapshot builder. Used by tests to simulate copy failures.
func (r *Resolver) WithSnapshot(fn SnapshotFunc) *Resolver {
	r.snapshot = fn
	return r
}

// Resolve settles the order for fingerprint and reports whether this call
// performed the transition. Removal happens before dispatch, so a concurrent
// duplicate observes the record as absent and does nothing.
func (r *Resolver) Resolve(ctx context.Context, fingerprint string) bool {
	o, ok := r.store.Take(ctx, fingerprint)
	if !ok {
		r.logger.Debug("settlement for unknown or already resolved order ignored", "fingerprint", fingerprint)
		return false
	}

	if err := o.MarkSettled(r.clock.Now()); err != nil {
		r.logger.Error("order taken from store was already settled", "fingerprint", fingerprint, "error", err)
		return false
	}

	s, err := r.snapshot(o)
	if err != nil {
		// The transition is committed; clients still get the event, only the details are lost.
		r.logger.Error("settled order could not be snapshotted", "fingerprint", fingerprint, "error", err)
		r.dispatcher.Dispatch(Settlement{Fingerprint: fingerprint, SettledAt: o.SettledAt()})
		return true
	}

	r.logger.Info("payment settled",
		"fingerprint", fingerprint,
		"bill_number", s.BillNumber,
		"amount", s.Total.String(),
		"currency", s.Currency.String(),
	)
	r.dispatcher.Dispatch(s)
	return true
}
