package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentlink"
	"github.com/stripe/stripe-go/v80/price"
	"github.com/stripe/stripe-go/v80/product"
	"github.com/stripe/stripe-go/v80/webhook"

	"github.com/example/storefront/internal/repository"
)

// StripeService creates Stripe payment links and verifies Stripe webhooks.
type StripeService struct {
	webhookKey string
	currency   string
}

// NewStripeService configures the Stripe client.
func NewStripeService(secretKey, webhookKey, currency string) *StripeService {
	stripe.Key = secretKey
	return &StripeService{webhookKey: webhookKey, currency: currency}
}

// CreatePaymentLink creates a product, a one-off price for the order total
// and a payment link that redirects back to the storefront.
func (s *StripeService) CreatePaymentLink(ctx context.Context, req PaymentLinkRequest) (repository.PaymentLinkRefs, error) {
	orderID := req.OrderID.String()

	productParams := &stripe.ProductParams{
		Name: stripe.String(fmt.Sprintf("Order %s", req.OrderNumber)),
	}
	productParams.Context = ctx
	productParams.AddMetadata("order_id", orderID)
	prod, err := product.New(productParams)
	if err != nil {
		return repository.PaymentLinkRefs{}, err
	}

	priceParams := &stripe.PriceParams{
		Currency:   stripe.String(s.currency),
		UnitAmount: stripe.Int64(req.Amount.Shift(2).Round(0).IntPart()),
		Product:    stripe.String(prod.ID),
	}
	priceParams.Context = ctx
	pr, err := price.New(priceParams)
	if err != nil {
		return repository.PaymentLinkRefs{}, err
	}

	linkParams := &stripe.PaymentLinkParams{
		LineItems: []*stripe.PaymentLinkLineItemParams{
			{Price: stripe.String(pr.ID), Quantity: stripe.Int64(1)},
		},
		AfterCompletion: &stripe.PaymentLinkAfterCompletionParams{
			Type: stripe.String(string(stripe.PaymentLinkAfterCompletionTypeRedirect)),
			Redirect: &stripe.PaymentLinkAfterCompletionRedirectParams{
				URL: stripe.String(req.RedirectURL),
			},
		},
	}
	linkParams.Context = ctx
	linkParams.AddMetadata("order_id", orderID)
	link, err := paymentlink.New(linkParams)
	if err != nil {
		return repository.PaymentLinkRefs{}, err
	}

	return repository.PaymentLinkRefs{
		ProductID:     prod.ID,
		PriceID:       pr.ID,
		PaymentLinkID: link.ID,
		URL:           link.URL,
	}, nil
}

// ParseEvent verifies the Stripe-Signature header and maps checkout
// session events to payment outcomes.
func (s *StripeService) ParseEvent(payload []byte, signature string) (PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookKey, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return PaymentEvent{}, err
	}
	return paymentEventFromStripe(event)
}

func paymentEventFromStripe(event stripe.Event) (PaymentEvent, error) {
	result := PaymentEvent{ID: event.ID, Type: string(event.Type)}

	switch event.Type {
	case "checkout.session.completed",
		"checkout.session.async_payment_succeeded",
		"checkout.session.async_payment_failed":
	default:
		return result, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return result, fmt.Errorf("decode checkout session: %w", err)
	}
	result.OrderID = sess.Metadata["order_id"]
	if sess.PaymentLink != nil {
		result.PaymentLinkID = sess.PaymentLink.ID
	}

	switch event.Type {
	case "checkout.session.completed":
		if sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
			result.Kind = PaymentEventSucceeded
		}
	case "checkout.session.async_payment_succeeded":
		result.Kind = PaymentEventSucceeded
	case "checkout.session.async_payment_failed":
		result.Kind = PaymentEventFailed
	}
	return result, nil
}
