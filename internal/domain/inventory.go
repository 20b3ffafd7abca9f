package domain

// StockLevel is the read-mostly inventory view consumed by the admin
// panel. Stock is decremented by the fulfillment worker after order
// creation, never by the checkout core itself.
type StockLevel struct {
	ProductID         string `json:"product_id"`
	Available         int    `json:"available"`
	LowStockThreshold int    `json:"low_stock_threshold"`
}

// LowStock reports whether the item should appear in the admin
// low-stock view.
func (s StockLevel) LowStock() bool {
	return s.Available <= s.LowStockThreshold
}
