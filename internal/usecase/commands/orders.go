package commands

//go:generate mockgen -source=orders.go -destination=../../../tests/mock/commands/orders.go -package=commandsmock

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"pos-checkout/internal/domain/order"
	"pos-checkout/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var (
	// ErrValidation marks failures caused by the caller's input.
	ErrValidation = errs.New("validation failed")
	// ErrInternal marks unexpected failures that must not leak detail to callers.
	ErrInternal = errs.New("internal error")
)

var domainValidationErrors = []error{
	order.ErrEmptyCart,
	order.ErrCustomerRequired,
	order.ErrInvalidQuantity,
	order.ErrPriceRequired,
	order.ErrNegativePrice,
	order.ErrNonPositiveTotal,
}

type PaymentStatus string

const (
	PaymentSuccess PaymentStatus = "success"
	PaymentPending PaymentStatus = "pending"
)

type CreateOrderInput struct {
	Customer order.Customer
	Lines    []order.CartLine
	Seller   *order.Seller
}

type CreateOrderResult struct {
	QRString    string
	Fingerprint string
	Amount      decimal.Decimal
	Currency    order.Currency
	BillNumber  string
	ExpiresAt   time.Time
	Mode        CodeMode
}

type OrderCommands interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error)
	CheckStatus(ctx context.Context, fingerprint string) (PaymentStatus, error)
}

type orderCommandsImpl struct {
	services   *order.Services
	store      OrderStore
	codes      CodeGenerator
	settlement SettlementChecker
	resolver   *Resolver
	logger     *slog.Logger
}

func NewOrderCommands(
	services *order.Services,
	store OrderStore,
	codes CodeGenerator,
	settlement SettlementChecker,
	resolver *Resolver,
	logger *slog.Logger,
) OrderCommands {
	return &orderCommandsImpl{
		services:   services,
		store:      store,
		codes:      codes,
		settlement: settlement,
		resolver:   resolver,
		logger:     logger,
	}
}

func (c *orderCommandsImpl) CreateOrder(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error) {
	o, err := order.NewPendingOrder(ctx, c.services, order.NewOrderParams{
		Customer: in.Customer,
		Lines:    in.Lines,
		Seller:   in.Seller,
	})
	if err != nil {
		if isDomainValidation(err) {
			return nil, errs.Mark(err, ErrValidation)
		}
		return nil, errs.Mark(errs.Wrap(err, "failed to price order"), ErrInternal)
	}

	code := c.codes.Generate(ctx, CodeRequest{
		Currency:   o.Currency(),
		Amount:     o.Total(),
		BillNumber: o.BillNumber(),
		CreatedAt:  o.CreatedAt(),
		ExpiresAt:  o.ExpiresAt(),
	})

	if err := o.AssignCode(code.Fingerprint, code.Payload); err != nil {
		return nil, errs.Mark(errs.Wrap(err, "failed to bind payment code"), ErrInternal)
	}

	replaced, err := c.store.Put(ctx, o)
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "failed to store order"), ErrInternal)
	}
	if replaced {
		c.logger.Warn("fingerprint collision replaced a pending order", "fingerprint", o.Fingerprint())
	}

	c.logger.Info("order created",
		"fingerprint", o.Fingerprint(),
		"bill_number", o.BillNumber(),
		"amount", o.Total().String(),
		"currency", o.Currency().String(),
		"code_mode", string(code.Mode),
		"expires_at", o.ExpiresAt(),
	)

	return &CreateOrderResult{
		QRString:    o.Payload(),
		Fingerprint: o.Fingerprint(),
		Amount:      o.Total(),
		Currency:    o.Currency(),
		BillNumber:  o.BillNumber(),
		ExpiresAt:   o.ExpiresAt(),
		Mode:        code.Mode,
	}, nil
}

// CheckStatus is the only trigger of settlement resolution. It reports
// success to exactly one caller per fingerprint; every other call, including
// calls for fingerprints no longer in the store, sees pending.
func (c *orderCommandsImpl) CheckStatus(ctx context.Context, fingerprint string) (PaymentStatus, error) {
	fingerprint = strings.TrimSpace(fingerprint)
	if fingerprint == "" {
		return "", errs.Mark(order.ErrFingerprintRequired, ErrValidation)
	}

	if !c.settlement.Enabled() {
		return PaymentPending, nil
	}

	if _, ok := c.store.Get(ctx, fingerprint); !ok {
		return PaymentPending, nil
	}

	if c.settlement.CheckSettlement(ctx, fingerprint) != Settled {
		return PaymentPending, nil
	}

	if c.resolver.Resolve(ctx, fingerprint) {
		return PaymentSuccess, nil
	}
	return PaymentPending, nil
}

func isDomainValidation(err error) bool {
	for _, target := range domainValidationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
