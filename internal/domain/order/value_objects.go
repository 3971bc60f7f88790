package order

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type Customer struct {
	Name    string
	Phone   string
	Address string
}

func NewCustomer(name, phone, address string) (Customer, error) {
	c := Customer{
		Name:    strings.TrimSpace(name),
		Phone:   strings.TrimSpace(phone),
		Address: strings.TrimSpace(address),
	}
	if c.Name == "" {
		return Customer{}, ErrCustomerRequired
	}
	return c, nil
}

// Seller is optional attribution used only in notification content.
type Seller struct {
	Name       string
	Role       string
	ApprovedBy string
}

func (s *Seller) IsZero() bool {
	return s == nil || (s.Name == "" && s.Role == "" && s.ApprovedBy == "")
}

// CartLine is a requested line before pricing.
type CartLine struct {
	ProductRef string
	Name       string
	Quantity   int
	Price      *decimal.Decimal
}

type LineItem struct {
	ProductRef string
	Name       string
	Quantity   int
	UnitPrice  decimal.Decimal
}

func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
