// Package receipt turns orders and draft carts into display models.
// Everything here is a pure function of its input.
package receipt

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/craftpack/packstore/internal/domain"
)

// Business identity printed in the receipt header.
type Business struct {
	Name    string
	Address string
	Phone   string
}

type Line struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
}

// Receipt is the formatted, read-only presentation of an order or of a
// draft cart preview.
type Receipt struct {
	Business      Business  `json:"business"`
	OrderNumber   string    `json:"order_number,omitempty"`
	IssuedAt      time.Time `json:"issued_at"`
	Lines         []Line    `json:"lines"`
	Subtotal      string    `json:"subtotal"`
	Tax           string    `json:"tax"`
	Shipping      string    `json:"shipping"`
	Discount      string    `json:"discount,omitempty"`
	Total         string    `json:"total"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	PaymentStatus string    `json:"payment_status,omitempty"`
	Draft         bool      `json:"draft"`
}

// FromOrder formats a confirmed order.
func FromOrder(business Business, order *domain.Order) Receipt {
	r := Receipt{
		Business:      business,
		OrderNumber:   order.Number,
		IssuedAt:      order.CreatedAt,
		Lines:         formatLines(order.Items),
		Subtotal:      FormatCents(order.Subtotal),
		Tax:           FormatCents(order.Tax),
		Shipping:      FormatCents(order.Shipping),
		Total:         FormatCents(order.Total),
		PaymentMethod: string(order.PaymentMethod),
		PaymentStatus: string(order.PaymentStatus),
	}
	if order.Discount > 0 {
		r.Discount = FormatCents(order.Discount)
	}
	return r
}

// FromDraft formats a pre-confirmation preview of a cart and its totals.
func FromDraft(business Business, cart *domain.Cart, totals domain.Totals, now time.Time) Receipt {
	return Receipt{
		Business: business,
		IssuedAt: now,
		Lines:    formatLines(cart.Items),
		Subtotal: FormatCents(totals.Subtotal),
		Tax:      FormatCents(totals.Tax),
		Shipping: FormatCents(totals.Shipping),
		Total:    FormatCents(totals.Total),
		Draft:    true,
	}
}

// RenderText renders the receipt as plain text, used for the receipt
// email body.
func RenderText(r Receipt) string {
	var b strings.Builder

	b.WriteString(r.Business.Name + "\n")
	if r.Business.Address != "" {
		b.WriteString(r.Business.Address + "\n")
	}
	if r.OrderNumber != "" {
		fmt.Fprintf(&b, "Order %s\n", r.OrderNumber)
	}
	fmt.Fprintf(&b, "%s\n\n", r.IssuedAt.Format("2006-01-02 15:04"))

	for _, line := range r.Lines {
		fmt.Fprintf(&b, "%-30s %3d x %8s = %8s\n", line.Description, line.Quantity, line.UnitPrice, line.LineTotal)
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "Subtotal: %s\n", r.Subtotal)
	fmt.Fprintf(&b, "Tax:      %s\n", r.Tax)
	fmt.Fprintf(&b, "Shipping: %s\n", r.Shipping)
	if r.Discount != "" {
		fmt.Fprintf(&b, "Discount: -%s\n", r.Discount)
	}
	fmt.Fprintf(&b, "Total:    %s\n", r.Total)
	if r.PaymentMethod != "" {
		fmt.Fprintf(&b, "Paid by %s (%s)\n", r.PaymentMethod, r.PaymentStatus)
	}

	return b.String()
}

func formatLines(items []domain.LineItem) []Line {
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		description := item.Name
		if description == "" {
			description = item.ProductID
		}
		if len(item.Variant) > 0 {
			description += " (" + formatVariant(item.Variant) + ")"
		}
		lines = append(lines, Line{
			Description: description,
			Quantity:    item.Quantity,
			UnitPrice:   FormatCents(item.UnitPrice),
			LineTotal:   FormatCents(item.LineTotal()),
		})
	}
	return lines
}

func formatVariant(variant map[string]string) string {
	parts := make([]string, 0, len(variant))
	for k, v := range variant {
		parts = append(parts, k+": "+v)
	}
	// Deterministic output for identical input.
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

// FormatCents renders an amount of cents as a dollar string.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
