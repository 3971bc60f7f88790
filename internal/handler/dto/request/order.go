package request

import (
	"encoding/json"
	"strings"

	"pos-checkout/internal/domain/order"
	"pos-checkout/internal/pkg/errs"
	"pos-checkout/internal/usecase/commands"

	"github.com/shopspring/decimal"
)

type CreateOrderRequest struct {
	Customer *CustomerRequest  `json:"customer" binding:"required"`
	Cart     []CartItemRequest `json:"cart" binding:"required,min=1,dive"`
	Seller   *SellerRequest    `json:"seller,omitempty"`
}

type CustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type CartItemRequest struct {
	ID    ProductRef       `json:"id"`
	Ref   ProductRef       `json:"ref"`
	Name  string           `json:"name"`
	Qty   int              `json:"qty" binding:"required,gt=0"`
	Price *decimal.Decimal `json:"price,omitempty"`
}

type SellerRequest struct {
	Name       string `json:"name"`
	Role       string `json:"role"`
	ApprovedBy string `json:"approvedBy"`
}

type CheckStatusRequest struct {
	MD5 string `json:"md5"`
}

// ProductRef accepts both numeric and string product identifiers, since
// frontends send catalog ids as numbers.
type ProductRef string

func (r *ProductRef) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*r = ProductRef(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errs.Wrap(err, "product reference must be a string or number")
	}
	*r = ProductRef(n.String())
	return nil
}

func (i CartItemRequest) Reference() string {
	if i.ID != "" {
		return string(i.ID)
	}
	return string(i.Ref)
}

func (r CreateOrderRequest) ToInput() (commands.CreateOrderInput, error) {
	customer, err := order.NewCustomer(r.Customer.Name, r.Customer.Phone, r.Customer.Address)
	if err != nil {
		return commands.CreateOrderInput{}, err
	}

	lines := make([]order.CartLine, 0, len(r.Cart))
	for _, item := range r.Cart {
		lines = append(lines, order.CartLine{
			ProductRef: item.Reference(),
			Name:       strings.TrimSpace(item.Name),
			Quantity:   item.Qty,
			Price:      item.Price,
		})
	}

	var seller *order.Seller
	if r.Seller != nil {
		seller = &order.Seller{
			Name:       strings.TrimSpace(r.Seller.Name),
			Role:       strings.TrimSpace(r.Seller.Role),
			ApprovedBy: strings.TrimSpace(r.Seller.ApprovedBy),
		}
	}

	return commands.CreateOrderInput{
		Customer: customer,
		Lines:    lines,
		Seller:   seller,
	}, nil
}
