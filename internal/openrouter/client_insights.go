package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ridwanfathin/invoice-service/internal/domain"
)

const insightsPromptTemplate = `You are a friendly and insightful business analyst for a small business owner.
Based on the following invoice data summary, provide 2-3 concise and insightful observations.
The insights should be encouraging and helpful. Do not just repeat the data.
For example: if there is a high outstanding amount, suggest sending reminders; if revenue is high, be encouraging.

Data Summary:
- Total number of invoices: %d
- Total paid invoices: %d
- Total unpaid invoices: %d
- Total revenue from all invoices: $%.2f
- Total outstanding amount from unpaid invoices: $%.2f
- Recent invoices: %s

Return a JSON object with a single key "insights" containing an array of strings.
Example: { "insights": ["Your revenue is looking strong this month", "You have 5 unpaid invoices. Consider sending reminders to get paid faster."] }`

// GenerateInsights asks the model for short observations about an owner's invoices
func (c *Client) GenerateInsights(ctx context.Context, summary domain.DashboardSummary) ([]string, error) {
	recent := make([]string, 0, len(summary.Recent))
	for _, r := range summary.Recent {
		recent = append(recent, fmt.Sprintf("Invoice#%s - $%.2f - Status: %s", r.InvoiceNumber, r.Total, r.Status))
	}

	prompt := fmt.Sprintf(insightsPromptTemplate,
		summary.TotalInvoices, summary.PaidInvoices, summary.UnpaidInvoices,
		summary.TotalRevenue, summary.TotalOutstanding, strings.Join(recent, ", "))

	content, err := c.complete(ctx, "generate_insights", "", prompt)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Insights []string `json:"insights"`
	}
	if err := json.Unmarshal(cleanJSON(content), &parsed); err != nil {
		return nil, &OpenRouterError{Op: "generate_insights", Err: fmt.Errorf("failed to unmarshal insights: %w", err)}
	}

	insights := make([]string, 0, len(parsed.Insights))
	for _, s := range parsed.Insights {
		if s = strings.TrimSpace(s); s != "" {
			insights = append(insights, s)
		}
	}
	if len(insights) == 0 {
		return nil, &OpenRouterError{Op: "generate_insights", Err: fmt.Errorf("no insights in response")}
	}

	return insights, nil
}
