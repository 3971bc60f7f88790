package response

import (
	"encoding/json"

	"pos-checkout/internal/domain/catalog"
	"pos-checkout/internal/usecase/commands"
	"pos-checkout/internal/usecase/queries"
)

type CreateOrderResponse struct {
	QRString   string      `json:"qrString"`
	MD5        string      `json:"md5"`
	Amount     json.Number `json:"amount"`
	Currency   string      `json:"currency"`
	BillNumber string      `json:"billNumber"`
	ExpireAt   int64       `json:"expireAt"`
	Mode       string      `json:"mode"`
}

func FromCreateOrderResult(r *commands.CreateOrderResult) CreateOrderResponse {
	return CreateOrderResponse{
		QRString:   r.QRString,
		MD5:        r.Fingerprint,
		Amount:     json.Number(r.Amount.StringFixed(r.Currency.Scale())),
		Currency:   r.Currency.String(),
		BillNumber: r.BillNumber,
		ExpireAt:   r.ExpiresAt.UnixMilli(),
		Mode:       string(r.Mode),
	}
}

type CheckStatusResponse struct {
	Status string `json:"status"`
}

type ConfigResponse struct {
	MerchantName      string `json:"merchantName"`
	Currency          string `json:"currency"`
	PricingMode       string `json:"pricingMode"`
	SettlementEnabled bool   `json:"settlementEnabled"`
	NotifierEnabled   bool   `json:"notifierEnabled"`
	OrderTTLSeconds   int64  `json:"orderTtlSeconds"`
}

func FromPublicConfig(c queries.PublicConfig) ConfigResponse {
	return ConfigResponse{
		MerchantName:      c.MerchantName,
		Currency:          c.Currency.String(),
		PricingMode:       c.PricingMode.String(),
		SettlementEnabled: c.SettlementEnabled,
		NotifierEnabled:   c.NotifierEnabled,
		OrderTTLSeconds:   int64(c.OrderTTL.Seconds()),
	}
}

type ProductResponse struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Category string      `json:"category"`
	Price    json.Number `json:"price"`
}

func FromProducts(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, ProductResponse{
			ID:       p.ID,
			Name:     p.Name,
			Category: p.Category,
			Price:    json.Number(p.Price.String()),
		})
	}
	return out
}
