package domain

import "time"

// ReminderSummary is the already validated view of an invoice handed to the reminder drafter
type ReminderSummary struct {
	ClientName    string
	InvoiceNumber string
	AmountDue     float64
	DueDate       *time.Time
}

// InvoiceBrief is one line of the recent invoice list given to the insights generator
type InvoiceBrief struct {
	InvoiceNumber string
	Total         float64
	Status        Status
}

// DashboardSummary aggregates an owner's invoices for the dashboard
type DashboardSummary struct {
	TotalInvoices    int            `json:"totalInvoices"`
	PaidInvoices     int            `json:"paidInvoices"`
	UnpaidInvoices   int            `json:"unpaidInvoices"`
	TotalRevenue     float64        `json:"totalRevenue"`
	TotalOutstanding float64        `json:"totalOutstanding"`
	Recent           []InvoiceBrief `json:"-"`
	Insights         []string       `json:"insights"`
}

// Summarize folds invoices into a dashboard summary without insights.
// Recent keeps the first recentLimit invoices in the given order.
func Summarize(invoices []*Invoice, recentLimit int) DashboardSummary {
	s := DashboardSummary{TotalInvoices: len(invoices)}
	for idx, inv := range invoices {
		s.TotalRevenue += inv.Total
		switch inv.Status {
		case StatusPaid:
			s.PaidInvoices++
		case StatusUnpaid:
			s.UnpaidInvoices++
			s.TotalOutstanding += inv.Total
		}
		if idx < recentLimit {
			s.Recent = append(s.Recent, InvoiceBrief{
				InvoiceNumber: inv.InvoiceNumber,
				Total:         inv.Total,
				Status:        inv.Status,
			})
		}
	}
	return s
}
