package khqr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"pos-checkout/internal/usecase/commands"

	"github.com/google/uuid"
)

// MockPayload is returned whenever a live code cannot be produced.
const MockPayload = "mock_qr_string_testing"

type EncodeFunc func(MerchantInfo, PaymentInfo) (payload, fingerprint string, err error)

// Generator produces live KHQR codes when the merchant is configured and
// falls back to mock codes otherwise. It never fails the checkout.
type Generator struct {
	merchant MerchantInfo
	live     bool
	encode   EncodeFunc
	logger   *slog.Logger
}

func NewGenerator(merchant MerchantInfo, live bool, logger *slog.Logger) *Generator {
	return &Generator{
		merchant: merchant,
		live:     live,
		encode:   Encode,
		logger:   logger,
	}
}

// WithEncoder replaces the payload encoder. Used by tests to simulate encoder failures.
func (g *Generator) WithEncoder(fn EncodeFunc) *Generator {
	g.encode = fn
	return g
}

func (g *Generator) Generate(ctx context.Context, req commands.CodeRequest) commands.GeneratedCode {
	if !g.live {
		g.logger.InfoContext(ctx, "issuing mock payment code", "reason", "live generation disabled", "bill_number", req.BillNumber)
		return mockCode(req)
	}

	payload, fingerprint, err := g.encode(g.merchant, PaymentInfo{
		Currency:   req.Currency,
		Amount:     req.Amount,
		BillNumber: req.BillNumber,
		CreatedAt:  req.CreatedAt,
		ExpiresAt:  req.ExpiresAt,
	})
	if err != nil || payload == "" || fingerprint == "" {
		g.logger.WarnContext(ctx, "issuing mock payment code",
			"reason", "live generation failed",
			"bill_number", req.BillNumber,
			"error", err,
		)
		return mockCode(req)
	}

	return commands.GeneratedCode{
		Payload:     payload,
		Fingerprint: fingerprint,
		Mode:        commands.CodeModeLive,
	}
}

func mockCode(req commands.CodeRequest) commands.GeneratedCode {
	return commands.GeneratedCode{
		Payload:     MockPayload,
		Fingerprint: fmt.Sprintf("mock_md5_%d_%s", req.CreatedAt.UnixMilli(), shortID()),
		Mode:        commands.CodeModeMock,
	}
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
