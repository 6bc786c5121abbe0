package openrouter

import (
	"context"
	"fmt"
)

const extractionSystemPrompt = `You are an expert invoice data extraction AI. You only ever answer with a single valid JSON object and no other text.`

const extractionPromptTemplate = `Analyze the following text and extract the information needed to create an invoice.

The JSON object must have this structure:
{
  "billTo": {
    "businessName": "string",
    "email": "string (if available)",
    "address": "string (if available)",
    "phone": "string (if available)"
  },
  "items": [
    {
      "name": "string",
      "quantity": number,
      "unitPrice": number,
      "taxPercent": number (default 0),
      "total": number (quantity * unitPrice * (1 + taxPercent/100))
    }
  ]
}

--- TEXT START ---
%s
--- TEXT END ---
Provide only the JSON object.`

// ExtractInvoice asks the model to structure free text into invoice JSON.
// The returned bytes are untrusted and must be reconciled before use.
func (c *Client) ExtractInvoice(ctx context.Context, text string) ([]byte, error) {
	content, err := c.complete(ctx, "extract_invoice", extractionSystemPrompt, fmt.Sprintf(extractionPromptTemplate, text))
	if err != nil {
		return nil, err
	}
	return cleanJSON(content), nil
}
