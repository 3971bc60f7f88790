package order

import (
	"strings"

	"github.com/google/uuid"
)

type State string

const (
	StatePending State = "pending"
	StateSettled State = "settled"
	// StateExpired is logical only; expired records stay in the store until settled or swept.
	StateExpired State = "expired"
)

func (s State) String() string {
	return string(s)
}

type Currency string

const (
	CurrencyKHR Currency = "KHR"
	CurrencyUSD Currency = "USD"
)

func ParseCurrency(s string) (Currency, error) {
	switch c := Currency(strings.ToUpper(strings.TrimSpace(s))); c {
	case CurrencyKHR, CurrencyUSD:
		return c, nil
	default:
		return "", ErrUnsupportedCurrency
	}
}

// NumericCode is the ISO 4217 numeric code used in EMV payloads.
func (c Currency) NumericCode() string {
	switch c {
	case CurrencyUSD:
		return "840"
	default:
		return "116"
	}
}

// Scale is the number of decimal places amounts carry in this currency.
func (c Currency) Scale() int32 {
	if c == CurrencyUSD {
		return 2
	}
	return 0
}

func (c Currency) String() string {
	return string(c)
}

type PricingMode string

const (
	// PricingCatalog resolves unit prices from the trusted catalog.
	PricingCatalog PricingMode = "catalog"
	// PricingClient trusts the seller-entered price sent by the client.
	PricingClient PricingMode = "client"
)

func ParsePricingMode(s string) (PricingMode, error) {
	switch m := PricingMode(strings.ToLower(strings.TrimSpace(s))); m {
	case PricingCatalog, PricingClient:
		return m, nil
	default:
		return "", ErrUnsupportedPricingMode
	}
}

func (m PricingMode) String() string {
	return string(m)
}

// BillNumberGenerator issues human-readable invoice numbers.
type BillNumberGenerator interface {
	Next(now int64) string
}

// TimeBillNumbers derives bill numbers from the creation time in milliseconds
// plus a short random suffix so orders created in the same millisecond differ.
type TimeBillNumbers struct{}

func NewTimeBillNumbers() *TimeBillNumbers {
	return &TimeBillNumbers{}
}

func (TimeBillNumbers) Next(nowMillis int64) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return "INV-" + formatInt(nowMillis) + "-" + suffix
}
