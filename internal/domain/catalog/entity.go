package catalog

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product")
)

type Product struct {
	ID       string          `json:"id" yaml:"id"`
	Name     string          `json:"name" yaml:"name"`
	Category string          `json:"category" yaml:"category"`
	Price    decimal.Decimal `json:"price" yaml:"price"`
}

func NewProduct(id, name, category string, price decimal.Decimal) (*Product, error) {
	p := &Product{
		ID:       strings.TrimSpace(id),
		Name:     strings.TrimSpace(name),
		Category: strings.TrimSpace(category),
		Price:    price,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Product) Validate() error {
	if p.ID == "" || p.Name == "" {
		return ErrInvalidProduct
	}
	if p.Price.IsNegative() {
		return ErrInvalidProduct
	}
	return nil
}
