package checkout

import "github.com/craftpack/packstore/internal/domain"

// Rates holds the fixed tax rate and shipping fee applied at checkout.
// The tax rate is in basis points (500 = 5%) so totals stay in integer
// cents; there is no dynamic rate lookup.
type Rates struct {
	TaxRateBps  int64
	ShippingFee int64
}

// ComputeTotals derives the totals block from a cart subtotal. Tax is
// rounded half up to the nearest cent.
func (r Rates) ComputeTotals(subtotal int64) domain.Totals {
	tax := (subtotal*r.TaxRateBps + 5000) / 10000
	return domain.Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: r.ShippingFee,
		Total:    subtotal + tax + r.ShippingFee,
	}
}
