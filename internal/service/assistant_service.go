package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ridwanfathin/invoice-service/internal/domain"
	"github.com/ridwanfathin/invoice-service/internal/logger"
	"github.com/ridwanfathin/invoice-service/internal/repository"
)

const (
	defaultReminderClientName = "Valued Client"
	recentInvoicesForInsights = 5
	noInvoicesInsight         = "No invoices available yet. Start by creating your first invoice!"
)

// AssistantService drafts reminders and dashboard insights on top of the invoice operations
type AssistantService interface {
	DraftReminder(ctx context.Context, ownerID, invoiceID string) (string, error)
	DashboardSummary(ctx context.Context, ownerID string) (*domain.DashboardSummary, error)
}

// AssistantServiceImpl implements the AssistantService interface
type AssistantServiceImpl struct {
	invoices InvoiceService
	drafter  ReminderDrafter
	insights InsightsGenerator
	log      zerolog.Logger
}

// NewAssistantService creates a new AssistantService. Either collaborator may be nil.
func NewAssistantService(invoices InvoiceService, drafter ReminderDrafter, insights InsightsGenerator) *AssistantServiceImpl {
	return &AssistantServiceImpl{
		invoices: invoices,
		drafter:  drafter,
		insights: insights,
		log:      logger.WithComponent("assistant_service"),
	}
}

// DraftReminder writes a reminder for an owned invoice using only its derived values
func (s *AssistantServiceImpl) DraftReminder(ctx context.Context, ownerID, invoiceID string) (text string, err error) {
	defer recoverOperation("draft_reminder", &err)

	invoice, err := s.invoices.Get(ctx, ownerID, invoiceID)
	if err != nil {
		return "", err
	}

	if s.drafter == nil {
		return "", &domain.ExternalDependencyError{Op: "draft_reminder", Err: errors.New("no reminder drafter configured")}
	}

	clientName := strings.TrimSpace(invoice.BillTo.Name)
	if clientName == "" {
		clientName = defaultReminderClientName
	}

	text, err = s.drafter.DraftReminder(ctx, domain.ReminderSummary{
		ClientName:    clientName,
		InvoiceNumber: invoice.InvoiceNumber,
		AmountDue:     invoice.Total,
		DueDate:       invoice.DueDate,
	})
	if err != nil {
		return "", &domain.ExternalDependencyError{Op: "draft_reminder", Err: err}
	}

	return text, nil
}

// DashboardSummary totals the owner's invoices and attaches insights. AI insights
// are preferred; any failure falls back to locally computed ones.
func (s *AssistantServiceImpl) DashboardSummary(ctx context.Context, ownerID string) (summary *domain.DashboardSummary, err error) {
	defer recoverOperation("dashboard_summary", &err)

	invoices, err := s.invoices.ListByOwner(ctx, ownerID, repository.ListOptions{})
	if err != nil {
		return nil, err
	}

	result := domain.Summarize(invoices, recentInvoicesForInsights)
	if result.TotalInvoices == 0 {
		result.Insights = []string{noInvoicesInsight}
		return &result, nil
	}

	if s.insights != nil {
		insights, aiErr := s.insights.GenerateInsights(ctx, result)
		if aiErr == nil && len(insights) > 0 {
			result.Insights = insights
			return &result, nil
		}
		s.log.Warn().Err(aiErr).Str("owner_id", ownerID).Msg("AI insights unavailable, using fallback insights")
	}

	result.Insights = LocalInsights(result)
	return &result, nil
}

// LocalInsights derives insights from the summary numbers alone
func LocalInsights(s domain.DashboardSummary) []string {
	insights := []string{}

	if s.PaidInvoices > 0 && s.TotalInvoices > 0 {
		rate := float64(s.PaidInvoices) / float64(s.TotalInvoices) * 100
		insights = append(insights, fmt.Sprintf("Great! You have %.0f%% payment completion rate (%d of %d invoices paid).", rate, s.PaidInvoices, s.TotalInvoices))
	}

	if s.TotalOutstanding > 0 {
		insights = append(insights, fmt.Sprintf("You have $%.2f outstanding. Consider sending payment reminders to speed up collection.", s.TotalOutstanding))
	}

	if s.TotalRevenue > 0 {
		insights = append(insights, fmt.Sprintf("Your total revenue is $%.2f from %d invoices.", s.TotalRevenue, s.TotalInvoices))
	}

	if len(insights) == 0 {
		insights = append(insights, "Keep creating invoices to get more detailed insights about your business.")
	}

	return insights
}
