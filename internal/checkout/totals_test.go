package checkout

import "testing"

func TestRates_ComputeTotals(t *testing.T) {
	rates := Rates{TaxRateBps: 500, ShippingFee: 500}

	t.Run("five percent tax rounds half up", func(t *testing.T) {
		// 1.99 x 3 + 2.49 x 2 = 10.95; 5% tax = 0.5475 -> 55 cents.
		totals := rates.ComputeTotals(1095)

		if totals.Subtotal != 1095 {
			t.Errorf("expected subtotal 1095, got %d", totals.Subtotal)
		}
		if totals.Tax != 55 {
			t.Errorf("expected tax 55, got %d", totals.Tax)
		}
		if totals.Shipping != 500 {
			t.Errorf("expected shipping 500, got %d", totals.Shipping)
		}
		if totals.Total != 1650 {
			t.Errorf("expected total 1650, got %d", totals.Total)
		}
	})

	t.Run("zero subtotal", func(t *testing.T) {
		totals := rates.ComputeTotals(0)
		if totals.Tax != 0 || totals.Total != 500 {
			t.Errorf("unexpected totals for empty subtotal: %+v", totals)
		}
	})

	t.Run("seven percent tax", func(t *testing.T) {
		totals := Rates{TaxRateBps: 700, ShippingFee: 0}.ComputeTotals(10000)
		if totals.Tax != 700 {
			t.Errorf("expected tax 700, got %d", totals.Tax)
		}
		if totals.Total != 10700 {
			t.Errorf("expected total 10700, got %d", totals.Total)
		}
	})
}
