package domain

import (
	"strings"
	"time"
)

// DefaultPaymentTerms is applied when an invoice is created without terms
const DefaultPaymentTerms = "Net 15"

// Party is the issuer or the recipient of an invoice
type Party struct {
	Name    string `json:"name" bson:"name"`
	Email   string `json:"email,omitempty" bson:"email,omitempty"`
	Address string `json:"address,omitempty" bson:"address,omitempty"`
	Phone   string `json:"phone,omitempty" bson:"phone,omitempty"`
}

// LineItem represents a single billable entry in an invoice
type LineItem struct {
	Description string  `json:"description" bson:"description"`
	Quantity    float64 `json:"quantity" bson:"quantity"`
	UnitPrice   float64 `json:"unitPrice" bson:"unit_price"`
	TaxPercent  float64 `json:"taxPercent" bson:"tax_percent"`
	Total       float64 `json:"total" bson:"total"` // derived, never taken from input
}

// ItemInput is a line item as submitted, before pricing
type ItemInput struct {
	Description string
	Quantity    float64
	UnitPrice   float64
	TaxPercent  float64
}

// Invoice represents the core domain entity for an invoice
type Invoice struct {
	ID            string     `json:"id" bson:"_id"`
	OwnerID       string     `json:"ownerId" bson:"owner_id"`
	InvoiceNumber string     `json:"invoiceNumber" bson:"invoice_number"`
	InvoiceDate   time.Time  `json:"invoiceDate" bson:"invoice_date"`
	DueDate       *time.Time `json:"dueDate" bson:"due_date"`
	BillFrom      Party      `json:"billFrom" bson:"bill_from"`
	BillTo        Party      `json:"billTo" bson:"bill_to"`
	Items         []LineItem `json:"items" bson:"items"`
	Notes         string     `json:"notes,omitempty" bson:"notes,omitempty"`
	PaymentTerms  string     `json:"paymentTerms" bson:"payment_terms"`
	Status        Status     `json:"status" bson:"status"`
	Subtotal      float64    `json:"subtotal" bson:"subtotal"`
	TaxTotal      float64    `json:"taxTotal" bson:"tax_total"`
	Total         float64    `json:"total" bson:"total"`
	CreatedAt     time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" bson:"updated_at"`
}

// Draft carries everything needed to create an invoice
type Draft struct {
	InvoiceNumber string
	InvoiceDate   DateInput
	DueDate       DateInput
	BillFrom      Party
	BillTo        Party
	Items         []ItemInput
	Notes         string
	PaymentTerms  string
}

// Patch is a partial update. Nil pointers and absent dates leave the field untouched;
// a nil Items slice leaves items untouched while a non-nil one replaces them all.
type Patch struct {
	InvoiceNumber *string
	InvoiceDate   DateInput
	DueDate       DateInput
	BillFrom      *Party
	BillTo        *Party
	Items         []ItemInput
	Notes         *string
	PaymentTerms  *string
	Status        *string
}

// Totals returns the derived amounts currently stored on the invoice
func (i *Invoice) Totals() Totals {
	return Totals{Subtotal: i.Subtotal, TaxTotal: i.TaxTotal, Total: i.Total}
}

// Recalculate derives every line total and the invoice totals from the items
func (i *Invoice) Recalculate() {
	for idx := range i.Items {
		item := &i.Items[idx]
		item.TaxPercent = normalizeTaxPercent(item.TaxPercent)
		item.Total = LineTotal(item.Quantity, item.UnitPrice, item.TaxPercent)
	}
	t := Aggregate(i.Items)
	i.Subtotal = t.Subtotal
	i.TaxTotal = t.TaxTotal
	i.Total = t.Total
}

// Clone returns a deep copy so callers can mutate without touching stored state
func (i *Invoice) Clone() *Invoice {
	if i == nil {
		return nil
	}
	c := *i
	c.Items = append([]LineItem(nil), i.Items...)
	if i.DueDate != nil {
		d := *i.DueDate
		c.DueDate = &d
	}
	return &c
}

// IsOwnedBy reports whether ownerID owns the invoice
func (i *Invoice) IsOwnedBy(ownerID string) bool {
	return i.OwnerID == ownerID
}

// NewInvoiceFromDraft builds an unpaid invoice with derived totals. An absent
// invoice date defaults to now and an absent due date stays empty; a date that is
// present but cannot be resolved is reported as a field error.
func NewInvoiceFromDraft(ownerID string, d Draft, now time.Time, defaultTerms string) (*Invoice, ValidationErrors) {
	var errs ValidationErrors

	invoiceDate := now.UTC()
	if d.InvoiceDate.HasValue() {
		if t := NormalizeDate(d.InvoiceDate); t != nil {
			invoiceDate = *t
		} else {
			errs.Add("invoiceDate", "could not be parsed as a date")
		}
	}

	var dueDate *time.Time
	if d.DueDate.HasValue() {
		if dueDate = NormalizeDate(d.DueDate); dueDate == nil {
			errs.Add("dueDate", "could not be parsed as a date")
		}
	}

	terms := strings.TrimSpace(d.PaymentTerms)
	if terms == "" {
		terms = defaultTerms
	}
	if terms == "" {
		terms = DefaultPaymentTerms
	}

	inv := &Invoice{
		OwnerID:       ownerID,
		InvoiceNumber: strings.TrimSpace(d.InvoiceNumber),
		InvoiceDate:   invoiceDate,
		DueDate:       dueDate,
		BillFrom:      d.BillFrom,
		BillTo:        d.BillTo,
		Items:         PriceItems(d.Items),
		Notes:         d.Notes,
		PaymentTerms:  terms,
		Status:        StatusUnpaid,
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}
	inv.Recalculate()

	return inv, errs
}

// ApplyPatch merges the provided fields into the invoice. Totals are recomputed
// only when items are replaced. The owner can never change.
func (i *Invoice) ApplyPatch(p Patch, now time.Time) ValidationErrors {
	var errs ValidationErrors

	if p.InvoiceNumber != nil {
		i.InvoiceNumber = strings.TrimSpace(*p.InvoiceNumber)
	}

	if p.InvoiceDate.Provided() {
		if !p.InvoiceDate.HasValue() {
			errs.Add("invoiceDate", "cannot be cleared")
		} else if t := NormalizeDate(p.InvoiceDate); t != nil {
			i.InvoiceDate = *t
		} else {
			errs.Add("invoiceDate", "could not be parsed as a date")
		}
	}

	if p.DueDate.Provided() {
		if !p.DueDate.HasValue() {
			i.DueDate = nil
		} else if t := NormalizeDate(p.DueDate); t != nil {
			i.DueDate = t
		} else {
			errs.Add("dueDate", "could not be parsed as a date")
		}
	}

	if p.BillFrom != nil {
		i.BillFrom = *p.BillFrom
	}
	if p.BillTo != nil {
		i.BillTo = *p.BillTo
	}
	if p.Notes != nil {
		i.Notes = *p.Notes
	}
	if p.PaymentTerms != nil {
		i.PaymentTerms = strings.TrimSpace(*p.PaymentTerms)
	}

	if p.Status != nil {
		status, err := ParseStatus(*p.Status)
		if err != nil {
			errs.Add("status", "must be one of Unpaid, Paid")
		} else {
			i.Status = status
		}
	}

	if p.Items != nil {
		i.Items = PriceItems(p.Items)
		i.Recalculate()
	}

	i.UpdatedAt = now.UTC()
	return errs
}
