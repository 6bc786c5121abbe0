package openrouter

import (
	"context"
	"fmt"
	"strings"

	"github.com/ridwanfathin/invoice-service/internal/domain"
)

const reminderPromptTemplate = `You are a professional and polite accountant. Write a friendly reminder email to a client about an overdue or upcoming invoice.

Use the following invoice details to personalize the email:

- Client Name: %s
- Invoice Number: %s
- Amount Due: $%.2f
- Due Date: %s

The tone should be friendly but clear. Keep it concise. Start the email with "Subject:".`

// DraftReminder writes a payment reminder email. The reply always starts with a Subject line.
func (c *Client) DraftReminder(ctx context.Context, summary domain.ReminderSummary) (string, error) {
	dueDate := "Not specified"
	if summary.DueDate != nil {
		dueDate = summary.DueDate.Format("January 2, 2006")
	}

	prompt := fmt.Sprintf(reminderPromptTemplate, summary.ClientName, summary.InvoiceNumber, summary.AmountDue, dueDate)
	content, err := c.complete(ctx, "draft_reminder", "", prompt)
	if err != nil {
		return "", err
	}

	return ensureSubject(content, summary.InvoiceNumber), nil
}

// ensureSubject drops any preamble before the Subject line, or adds one if the model left it out
func ensureSubject(content, invoiceNumber string) string {
	content = strings.TrimSpace(strings.ReplaceAll(content, "**", ""))
	if idx := strings.Index(content, "Subject:"); idx >= 0 {
		return content[idx:]
	}
	return fmt.Sprintf("Subject: Payment reminder for invoice %s\n\n%s", invoiceNumber, content)
}
