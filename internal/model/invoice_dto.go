package model

import (
	"github.com/ridwanfathin/invoice-service/internal/domain"
)

// LineItemRequest is a line item as sent by a client. Any total supplied is ignored.
type LineItemRequest struct {
	Description string   `json:"description" example:"Design work"`
	Quantity    float64  `json:"quantity" example:"2"`
	UnitPrice   float64  `json:"unitPrice" example:"150"`
	TaxPercent  float64  `json:"taxPercent" example:"10"`
	Total       *float64 `json:"total,omitempty" swaggerignore:"true"`
}

// CreateInvoiceRequest is the body of POST /v1/invoices
type CreateInvoiceRequest struct {
	InvoiceNumber string            `json:"invoiceNumber" example:"INV-001"`
	InvoiceDate   domain.DateInput  `json:"invoiceDate" swaggertype:"string" example:"2025-01-10"`
	DueDate       domain.DateInput  `json:"dueDate" swaggertype:"string" example:"25-01-2025"`
	BillFrom      domain.Party      `json:"billFrom"`
	BillTo        domain.Party      `json:"billTo"`
	Items         []LineItemRequest `json:"items"`
	Notes         string            `json:"notes"`
	PaymentTerms  string            `json:"paymentTerms" example:"Net 15"`
}

// UpdateInvoiceRequest is the body of PUT /v1/invoices/{invoiceId}. Omitted fields are kept;
// an items array replaces every item.
type UpdateInvoiceRequest struct {
	InvoiceNumber *string           `json:"invoiceNumber,omitempty"`
	InvoiceDate   domain.DateInput  `json:"invoiceDate" swaggertype:"string"`
	DueDate       domain.DateInput  `json:"dueDate" swaggertype:"string"`
	BillFrom      *domain.Party     `json:"billFrom,omitempty"`
	BillTo        *domain.Party     `json:"billTo,omitempty"`
	Items         []LineItemRequest `json:"items,omitempty"`
	Notes         *string           `json:"notes,omitempty"`
	PaymentTerms  *string           `json:"paymentTerms,omitempty"`
	Status        *string           `json:"status,omitempty" example:"Paid"`
}

// StatusRequest is the body of PATCH /v1/invoices/{invoiceId}/status
type StatusRequest struct {
	Status string `json:"status" binding:"required" example:"Paid"`
}

// ParseTextRequest is the body of POST /v1/ai/parse-text
type ParseTextRequest struct {
	Text string `json:"text" binding:"required" example:"Bill Acme for 2 design sessions at $150 each"`
}

// ReminderRequest is the body of POST /v1/ai/generate-reminder
type ReminderRequest struct {
	InvoiceID string `json:"invoiceId" binding:"required"`
}

// ReminderResponse carries the drafted reminder email
type ReminderResponse struct {
	Reminder string `json:"reminder"`
}

// InvoiceListResponse is a page of invoices
type InvoiceListResponse struct {
	Items  []*domain.Invoice `json:"items"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail represents detailed error information
type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

// ToDraft converts the request into a domain draft
func (r *CreateInvoiceRequest) ToDraft() domain.Draft {
	return domain.Draft{
		InvoiceNumber: r.InvoiceNumber,
		InvoiceDate:   r.InvoiceDate,
		DueDate:       r.DueDate,
		BillFrom:      r.BillFrom,
		BillTo:        r.BillTo,
		Items:         toItemInputs(r.Items),
		Notes:         r.Notes,
		PaymentTerms:  r.PaymentTerms,
	}
}

// ToPatch converts the request into a domain patch
func (r *UpdateInvoiceRequest) ToPatch() domain.Patch {
	return domain.Patch{
		InvoiceNumber: r.InvoiceNumber,
		InvoiceDate:   r.InvoiceDate,
		DueDate:       r.DueDate,
		BillFrom:      r.BillFrom,
		BillTo:        r.BillTo,
		Items:         toItemInputs(r.Items),
		Notes:         r.Notes,
		PaymentTerms:  r.PaymentTerms,
		Status:        r.Status,
	}
}

// toItemInputs keeps the nil/empty distinction: nil stays nil
func toItemInputs(items []LineItemRequest) []domain.ItemInput {
	if items == nil {
		return nil
	}
	out := make([]domain.ItemInput, len(items))
	for i, it := range items {
		out[i] = domain.ItemInput{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TaxPercent:  it.TaxPercent,
		}
	}
	return out
}
