package model

import "github.com/shopspring/decimal"

// Totals is the itemized pricing of a cart or order. Values are only ever
// produced by PricingPolicy.ComputeTotals and copied around as a whole.
type Totals struct {
	ItemsPrice    decimal.Decimal
	TaxPrice      decimal.Decimal
	ShippingPrice decimal.Decimal
	TotalPrice    decimal.Decimal
}

func ZeroTotals() Totals {
	return Totals{
		ItemsPrice:    decimal.Zero,
		TaxPrice:      decimal.Zero,
		ShippingPrice: decimal.Zero,
		TotalPrice:    decimal.Zero,
	}
}

type PricingPolicy struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
}

func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		TaxRate:               decimal.NewFromFloat(0.18),
		FreeShippingThreshold: decimal.NewFromInt(100),
		FlatShippingFee:       decimal.NewFromFloat(12.99),
	}
}

// ComputeTotals derives the itemized totals for the given line items.
// Each intermediate amount is rounded to two decimal places (half up)
// before it feeds into the next one.
func (p PricingPolicy) ComputeTotals(items []CartItem) Totals {
	if len(items) == 0 {
		return ZeroTotals()
	}

	itemsPrice := decimal.Zero
	for _, item := range items {
		itemsPrice = itemsPrice.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Qty))))
	}
	itemsPrice = itemsPrice.Round(2)

	shippingPrice := p.FlatShippingFee
	if itemsPrice.GreaterThan(p.FreeShippingThreshold) {
		shippingPrice = decimal.Zero
	}
	shippingPrice = shippingPrice.Round(2)

	taxPrice := itemsPrice.Mul(p.TaxRate).Round(2)

	totalPrice := itemsPrice.Add(taxPrice).Add(shippingPrice).Round(2)

	return Totals{
		ItemsPrice:    itemsPrice,
		TaxPrice:      taxPrice,
		ShippingPrice: shippingPrice,
		TotalPrice:    totalPrice,
	}
}
