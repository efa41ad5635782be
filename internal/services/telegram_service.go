package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/models"
)

const (
	telegramAPIBase = "https://api.telegram.org"
	telegramTimeout = 10 * time.Second
)

// TelegramService sends order notifications to the admin chat. It
// implements OrderNotifier; each notification is sent on its own goroutine.
type TelegramService struct {
	botToken    string
	adminChatID string
	baseURL     string
	client      *http.Client
	pricing     PricingProvider
	logger      *zap.Logger
}

// NewTelegramService creates a TelegramService. pricing supplies the
// currency symbol and may be nil.
func NewTelegramService(botToken, adminChatID string, pricing PricingProvider, logger *zap.Logger) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
		baseURL:     telegramAPIBase,
		client:      &http.Client{Timeout: telegramTimeout},
		pricing:     pricing,
		logger:      logger,
	}
}

// Enabled reports whether both the bot token and admin chat are set.
func (s *TelegramService) Enabled() bool {
	return s.botToken != "" && s.adminChatID != ""
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage posts an HTML message to chatID.
func (s *TelegramService) SendMessage(ctx context.Context, chatID, text string) error {
	if s.botToken == "" {
		return nil
	}

	body, err := json.Marshal(telegramMessage{ChatID: chatID, Text: text, ParseMode: "HTML"})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}
	return nil
}

// OrderPlaced notifies the admin chat about a new order.
func (s *TelegramService) OrderPlaced(order models.Order) {
	s.notify("order_placed", order, func(currency string) string {
		return FormatNewOrderMessage(order, currency)
	})
}

// OrderPaid notifies the admin chat that an order has been paid.
func (s *TelegramService) OrderPaid(order models.Order) {
	s.notify("order_paid", order, func(currency string) string {
		return FormatOrderPaidMessage(order, currency)
	})
}

func (s *TelegramService) notify(event string, order models.Order, render func(currency string) string) {
	if !s.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), telegramTimeout)
		defer cancel()

		currency := DefaultPricingSettings().CurrencySymbol
		if s.pricing != nil {
			if settings, err := s.pricing.Pricing(ctx); err == nil {
				currency = settings.CurrencySymbol
			}
		}

		if err := s.SendMessage(ctx, s.adminChatID, render(currency)); err != nil {
			s.logger.Warn("telegram notification failed",
				zap.String("event", event),
				zap.String("order_number", order.OrderNumber),
				zap.Error(err))
		}
	}()
}

// FormatPrice renders an amount with thousand separators and two decimals,
// prefixed by the currency symbol.
func FormatPrice(amount decimal.Decimal, currency string) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	fixed := amount.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var grouped strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(digit)
	}
	return sign + currency + grouped.String() + "." + frac
}

// FormatNewOrderMessage renders the admin message for a placed order.
func FormatNewOrderMessage(order models.Order, currency string) string {
	var items strings.Builder
	for i, item := range order.Items {
		fmt.Fprintf(&items, "%d. <b>%s</b>\n   %d x %s = %s\n",
			i+1,
			html.EscapeString(item.ProductName),
			item.Quantity,
			FormatPrice(item.UnitPrice, currency),
			FormatPrice(item.Subtotal, currency),
		)
	}

	message := fmt.Sprintf(`<b>🛒 NEW ORDER</b>
<b>Order:</b> %s
<b>Customer:</b> %s
<b>Email:</b> %s
<b>Phone:</b> %s
<b>Items:</b>
%s
<b>Subtotal:</b> %s
<b>Tax:</b> %s
<b>Shipping:</b> %s
<b>Total:</b> %s
<b>Payment:</b> %s (%s)`,
		html.EscapeString(order.OrderNumber),
		html.EscapeString(order.CustomerName),
		html.EscapeString(order.CustomerEmail),
		html.EscapeString(order.CustomerPhone),
		items.String(),
		FormatPrice(order.Subtotal, currency),
		FormatPrice(order.Tax, currency),
		FormatPrice(order.ShippingCost, currency),
		FormatPrice(order.Total, currency),
		html.EscapeString(order.PaymentMethod),
		order.PaymentStatus,
	)
	return strings.TrimSpace(message)
}

// FormatOrderPaidMessage renders the admin message for a paid order.
func FormatOrderPaidMessage(order models.Order, currency string) string {
	message := fmt.Sprintf(`<b>✅ PAYMENT RECEIVED</b>
<b>Order:</b> %s
<b>Customer:</b> %s
<b>Amount:</b> %s
<b>Status:</b> %s`,
		html.EscapeString(order.OrderNumber),
		html.EscapeString(order.CustomerName),
		FormatPrice(order.Total, currency),
		order.Status,
	)
	return strings.TrimSpace(message)
}
