package service

import (
	"context"

	"github.com/ridwanfathin/invoice-service/internal/domain"
)

// Extractor turns free text into untrusted invoice JSON
type Extractor interface {
	ExtractInvoice(ctx context.Context, text string) ([]byte, error)
}

// ReminderDrafter writes a reminder email from derived invoice values
type ReminderDrafter interface {
	DraftReminder(ctx context.Context, summary domain.ReminderSummary) (string, error)
}

// InsightsGenerator produces short observations about an owner's invoices
type InsightsGenerator interface {
	GenerateInsights(ctx context.Context, summary domain.DashboardSummary) ([]string, error)
}
