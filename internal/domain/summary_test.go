package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	invoices := []*Invoice{
		{InvoiceNumber: "INV-3", Total: 50, Status: StatusUnpaid},
		{InvoiceNumber: "INV-2", Total: 100, Status: StatusPaid},
		{InvoiceNumber: "INV-1", Total: 25, Status: StatusUnpaid},
	}

	s := Summarize(invoices, 2)

	assert.Equal(t, 3, s.TotalInvoices)
	assert.Equal(t, 1, s.PaidInvoices)
	assert.Equal(t, 2, s.UnpaidInvoices)
	assert.InDelta(t, 175.0, s.TotalRevenue, Tolerance)
	assert.InDelta(t, 75.0, s.TotalOutstanding, Tolerance)
	assert.Equal(t, []InvoiceBrief{
		{InvoiceNumber: "INV-3", Total: 50, Status: StatusUnpaid},
		{InvoiceNumber: "INV-2", Total: 100, Status: StatusPaid},
	}, s.Recent)
	assert.Nil(t, s.Insights)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, 5)
	assert.Zero(t, s.TotalInvoices)
	assert.Empty(t, s.Recent)
}
