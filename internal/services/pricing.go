package services

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Totals is the derived money breakdown of an order.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping_cost"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeTotals derives tax, shipping and total from a subtotal.
//
// A free shipping threshold of exactly zero waives shipping for every
// order. A positive threshold waives it once the subtotal reaches it.
// Amounts are rounded half away from zero to two places.
func ComputeTotals(subtotal, discount decimal.Decimal, settings PricingSettings) Totals {
	subtotal = subtotal.Round(2)
	discount = discount.Round(2)

	tax := subtotal.Mul(settings.TaxRate).Div(hundred).Round(2)
	shipping := ShippingFor(subtotal, settings)

	total := subtotal.Add(tax).Add(shipping).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Discount: discount,
		Total:    total.Round(2),
	}
}

// ShippingFor applies the free shipping threshold rule.
func ShippingFor(subtotal decimal.Decimal, settings PricingSettings) decimal.Decimal {
	threshold := settings.FreeShippingThreshold
	switch {
	case threshold.IsZero():
		return decimal.Zero
	case threshold.IsPositive() && subtotal.GreaterThanOrEqual(threshold):
		return decimal.Zero
	default:
		return settings.ShippingCost.Round(2)
	}
}
