package domain

import "math"

// Tolerance is the absolute and relative slack allowed when comparing money amounts
const Tolerance = 1e-6

// Totals holds the derived amounts of an invoice
type Totals struct {
	Subtotal float64 `json:"subtotal" bson:"subtotal"`
	TaxTotal float64 `json:"taxTotal" bson:"tax_total"`
	Total    float64 `json:"total" bson:"total"`
}

// LineTotal returns the tax inclusive total of one line: quantity*unitPrice*(1+taxPercent/100).
// Negative inputs are not rejected here. A NaN or infinite tax percent counts as zero.
func LineTotal(quantity, unitPrice, taxPercent float64) float64 {
	net := quantity * unitPrice
	return net + net*normalizeTaxPercent(taxPercent)/100
}

// Aggregate sums items into invoice totals. An empty slice yields zeros.
func Aggregate(items []LineItem) Totals {
	var t Totals
	for _, item := range items {
		net := item.Quantity * item.UnitPrice
		t.Subtotal += net
		t.TaxTotal += net * normalizeTaxPercent(item.TaxPercent) / 100
	}
	t.Total = t.Subtotal + t.TaxTotal
	return t
}

// PriceItems turns item inputs into line items with server derived totals.
// Any total supplied by the client is ignored.
func PriceItems(inputs []ItemInput) []LineItem {
	items := make([]LineItem, 0, len(inputs))
	for _, in := range inputs {
		tax := normalizeTaxPercent(in.TaxPercent)
		items = append(items, LineItem{
			Description: in.Description,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			TaxPercent:  tax,
			Total:       LineTotal(in.Quantity, in.UnitPrice, tax),
		})
	}
	return items
}

// ApproxEqual compares two amounts within Tolerance, absolute or relative, whichever is looser.
func ApproxEqual(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	diff := math.Abs(a - b)
	scale := math.Max(math.Abs(a), math.Abs(b))
	return diff <= math.Max(Tolerance, Tolerance*scale)
}

func normalizeTaxPercent(t float64) float64 {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return 0
	}
	return t
}
