package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"pos-checkout/internal/pkg/errs"
	"pos-checkout/internal/usecase/commands"
)

var ErrSendFailed = errs.New("telegram sendMessage failed")

type Config struct {
	APIURL   string
	BotToken string
	ChatID   string
	Timeout  time.Duration
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Notifier posts settlement summaries to a Telegram chat. When no bot token or
// chat is configured it does nothing.
type Notifier struct {
	cfg     Config
	enabled bool
	http    *http.Client
	logger  *slog.Logger
}

func NewNotifier(cfg Config, enabled bool, logger *slog.Logger) *Notifier {
	return &Notifier{
		cfg:     cfg,
		enabled: enabled,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

func (n *Notifier) Enabled() bool {
	return n.enabled
}

func (n *Notifier) NotifySettlement(ctx context.Context, s commands.Settlement) error {
	if !n.enabled {
		return nil
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:    n.cfg.ChatID,
		Text:      FormatSettlement(s),
		ParseMode: "Markdown",
	})
	if err != nil {
		return errs.Wrap(err, "failed to encode message")
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(n.cfg.APIURL, "/"), n.cfg.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errs.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		// The URL embeds the bot token; keep it out of logs.
		return errs.Wrap(ErrSendFailed, "request failed")
	}
	defer resp.Body.Close()

	var out sendMessageResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &out)
	if resp.StatusCode != http.StatusOK || !out.OK {
		return errs.Wrapf(ErrSendFailed, "status %d: %s", resp.StatusCode, out.Description)
	}

	n.logger.DebugContext(ctx, "settlement notification sent", "fingerprint", s.Fingerprint)
	return nil
}

// FormatSettlement renders the chat message for a settled order.
func FormatSettlement(s commands.Settlement) string {
	var b strings.Builder
	b.WriteString("✅ *Payment Received!*\n")
	fmt.Fprintf(&b, "Total: %s %s\n", escape(s.Total.StringFixed(s.Currency.Scale())), s.Currency)
	fmt.Fprintf(&b, "From: %s\n", escape(s.Customer.Name))
	if s.Customer.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", escape(s.Customer.Phone))
	}
	if s.BillNumber != "" {
		fmt.Fprintf(&b, "Invoice: %s\n", escape(s.BillNumber))
	}
	if s.Seller != nil && s.Seller.Name != "" {
		fmt.Fprintf(&b, "Seller: %s", escape(s.Seller.Name))
		if s.Seller.Role != "" {
			fmt.Fprintf(&b, " (%s)", escape(s.Seller.Role))
		}
		b.WriteString("\n")
		if s.Seller.ApprovedBy != "" {
			fmt.Fprintf(&b, "Approved by: %s\n", escape(s.Seller.ApprovedBy))
		}
	}
	b.WriteString("\nItems:\n")
	for _, item := range s.Items {
		fmt.Fprintf(&b, "- %s (%d)\n", escape(item.Name), item.Quantity)
	}
	return strings.TrimRight(b.String(), "\n")
}

var markdownEscaper = strings.NewReplacer(
	"_", `\_`,
	"*", `\*`,
	"`", "\\`",
	"[", `\[`,
)

// escape neutralises legacy Markdown control characters in user-supplied text.
func escape(s string) string {
	return markdownEscaper.Replace(s)
}
