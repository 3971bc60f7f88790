package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"pos-checkout/internal/pkg/clock"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart              = errors.New("cart is empty")
	ErrCustomerRequired       = errors.New("customer name is required")
	ErrInvalidQuantity        = errors.New("quantity must be positive")
	ErrPriceRequired          = errors.New("price is required in client pricing mode")
	ErrNegativePrice          = errors.New("price cannot be negative")
	ErrNonPositiveTotal       = errors.New("total must be positive")
	ErrAlreadySettled         = errors.New("order is already settled")
	ErrFingerprintRequired    = errors.New("fingerprint is required")
	ErrFingerprintAssigned    = errors.New("fingerprint is already assigned")
	ErrUnsupportedCurrency    = errors.New("unsupported currency")
	ErrUnsupportedPricingMode = errors.New("unsupported pricing mode")
)

type Services struct {
	Clock         clock.Clock
	PriceResolver PriceResolver
	BillNumbers   BillNumberGenerator
	Currency      Currency
	TTL           time.Duration
}

type NewOrderParams struct {
	Customer Customer
	Lines    []CartLine
	Seller   *Seller
}

// PendingOrder is the tracked state of one checkout awaiting settlement.
// The total is computed once at construction and never recomputed.
type PendingOrder struct {
	fingerprint string
	payload     string
	customer    Customer
	items       []LineItem
	currency    Currency
	total       decimal.Decimal
	billNumber  string
	seller      *Seller
	state       State
	createdAt   time.Time
	expiresAt   time.Time
	settledAt   time.Time
}

func NewPendingOrder(ctx context.Context, services *Services, params NewOrderParams) (*PendingOrder, error) {
	if strings.TrimSpace(params.Customer.Name) == "" {
		return nil, ErrCustomerRequired
	}
	if len(params.Lines) == 0 {
		return nil, ErrEmptyCart
	}
	for _, line := range params.Lines {
		if line.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	items, err := services.PriceResolver.Resolve(ctx, params.Lines)
	if err != nil {
		return nil, err
	}

	scale := services.Currency.Scale()
	total := decimal.Zero
	for i := range items {
		items[i].UnitPrice = items[i].UnitPrice.Round(scale)
		total = total.Add(items[i].Subtotal())
	}
	if !total.IsPositive() {
		return nil, ErrNonPositiveTotal
	}

	now := services.Clock.Now()
	var seller *Seller
	if !params.Seller.IsZero() {
		s := *params.Seller
		seller = &s
	}

	return &PendingOrder{
		customer:   params.Customer,
		items:      items,
		currency:   services.Currency,
		total:      total,
		billNumber: services.BillNumbers.Next(now.UnixMilli()),
		seller:     seller,
		state:      StatePending,
		createdAt:  now,
		expiresAt:  now.Add(services.TTL),
	}, nil
}

// AssignCode binds the generated payment code. It may only happen once.
func (o *PendingOrder) AssignCode(fingerprint, payload string) error {
	if fingerprint == "" {
		return ErrFingerprintRequired
	}
	if o.fingerprint != "" {
		return ErrFingerprintAssigned
	}
	o.fingerprint = fingerprint
	o.payload = payload
	return nil
}

// MarkSettled is the single Pending -> Settled transition.
func (o *PendingOrder) MarkSettled(now time.Time) error {
	if o.state == StateSettled {
		return ErrAlreadySettled
	}
	o.state = StateSettled
	o.settledAt = now
	return nil
}

// StateAt derives the expired state from the clock without mutating the order.
func (o *PendingOrder) StateAt(now time.Time) State {
	if o.state == StatePending && o.HasExpired(now) {
		return StateExpired
	}
	return o.state
}

func (o *PendingOrder) HasExpired(now time.Time) bool {
	return now.After(o.expiresAt)
}

// Snapshot is an immutable copy of the order for consumers outside the store.
type Snapshot struct {
	Fingerprint string
	BillNumber  string
	Currency    Currency
	Total       decimal.Decimal
	Customer    Customer
	Seller      *Seller
	Items       []LineItem
	CreatedAt   time.Time
	ExpiresAt   time.Time
	SettledAt   time.Time
}

func (o *PendingOrder) Snapshot() Snapshot {
	items := make([]LineItem, len(o.items))
	copy(items, o.items)
	var seller *Seller
	if o.seller != nil {
		s := *o.seller
		seller = &s
	}
	return Snapshot{
		Fingerprint: o.fingerprint,
		BillNumber:  o.billNumber,
		Currency:    o.currency,
		Total:       o.total,
		Customer:    o.customer,
		Seller:      seller,
		Items:       items,
		CreatedAt:   o.createdAt,
		ExpiresAt:   o.expiresAt,
		SettledAt:   o.settledAt,
	}
}

func (o *PendingOrder) Fingerprint() string    { return o.fingerprint }
func (o *PendingOrder) Payload() string        { return o.payload }
func (o *PendingOrder) Customer() Customer     { return o.customer }
func (o *PendingOrder) Items() []LineItem      { return o.items }
func (o *PendingOrder) Currency() Currency     { return o.currency }
func (o *PendingOrder) Total() decimal.Decimal { return o.total }
func (o *PendingOrder) BillNumber() string     { return o.billNumber }
func (o *PendingOrder) Seller() *Seller        { return o.seller }
func (o *PendingOrder) State() State           { return o.state }
func (o *PendingOrder) CreatedAt() time.Time   { return o.createdAt }
func (o *PendingOrder) ExpiresAt() time.Time   { return o.expiresAt }
func (o *PendingOrder) SettledAt() time.Time   { return o.settledAt }
