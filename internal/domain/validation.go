package domain

import (
	"fmt"
	"math"
	"strings"
)

// ValidationPolicy makes the optional business checks explicit. The zero value
// accepts negative amounts, missing due dates and due dates before the invoice date.
type ValidationPolicy struct {
	RejectNegativeAmounts      bool
	RequireDueDate             bool
	RequireDueAfterInvoiceDate bool
}

// Check validates an assembled invoice against the structural invariants and the policy
func (p ValidationPolicy) Check(inv *Invoice) ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(inv.InvoiceNumber) == "" {
		errs.Add("invoiceNumber", "is required")
	}

	if len(inv.Items) == 0 {
		errs.Add("items", "at least one item is required")
	}

	for idx, item := range inv.Items {
		field := fmt.Sprintf("items[%d]", idx)
		if strings.TrimSpace(item.Description) == "" {
			errs.Add(field+".description", "is required")
		}
		if !isFinite(item.Quantity) {
			errs.Add(field+".quantity", "must be a finite number")
		}
		if !isFinite(item.UnitPrice) {
			errs.Add(field+".unitPrice", "must be a finite number")
		}
		if p.RejectNegativeAmounts {
			if item.Quantity <= 0 {
				errs.Add(field+".quantity", "must be greater than 0")
			}
			if item.UnitPrice < 0 {
				errs.Add(field+".unitPrice", "must not be negative")
			}
			if item.TaxPercent < 0 {
				errs.Add(field+".taxPercent", "must not be negative")
			}
		}
	}

	if !inv.Status.Valid() {
		errs.Add("status", "must be one of Unpaid, Paid")
	}

	if inv.DueDate == nil {
		if p.RequireDueDate {
			errs.Add("dueDate", "is required")
		}
	} else if p.RequireDueAfterInvoiceDate && inv.DueDate.Before(inv.InvoiceDate) {
		errs.Add("dueDate", "must not be before invoiceDate")
	}

	return errs
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
