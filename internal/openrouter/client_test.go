package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridwanfathin/invoice-service/internal/domain"
)

// newTestServer answers every chat completion with content and records the last request
func newTestServer(t *testing.T, status int, content string, lastPrompt *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		if lastPrompt != nil && len(req.Messages) > 0 {
			*lastPrompt = req.Messages[len(req.Messages)-1].Content
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"upstream unavailable","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "cmpl-1",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": content},
			}},
		})
	}))
}

func newTestClient(url string) *Client {
	return NewClient(&Config{APIKey: "test-key", BaseURL: url, ModelID: "test-model", Timeout: 5 * time.Second})
}

func TestExtractInvoice_StripsFences(t *testing.T) {
	var prompt string
	srv := newTestServer(t, http.StatusOK, "Here you go:\n```json\n{\"items\":[{\"name\":\"Logo\",\"quantity\":1,\"unitPrice\":500}]}\n```", &prompt)
	defer srv.Close()

	raw, err := newTestClient(srv.URL).ExtractInvoice(context.Background(), "one logo for 500")
	require.NoError(t, err)

	assert.JSONEq(t, `{"items":[{"name":"Logo","quantity":1,"unitPrice":500}]}`, string(raw))
	assert.Contains(t, prompt, "one logo for 500")
}

func TestExtractInvoice_UpstreamError(t *testing.T) {
	srv := newTestServer(t, http.StatusBadGateway, "", nil)
	defer srv.Close()

	_, err := newTestClient(srv.URL).ExtractInvoice(context.Background(), "anything")
	var orErr *OpenRouterError
	require.ErrorAs(t, err, &orErr)
	assert.Equal(t, "extract_invoice", orErr.Op)
}

func TestExtractInvoice_NotConfigured(t *testing.T) {
	c := NewClient(&Config{})
	assert.False(t, c.Configured())

	_, err := c.ExtractInvoice(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestDraftReminder(t *testing.T) {
	var prompt string
	srv := newTestServer(t, http.StatusOK, "Sure! Subject: Friendly reminder\n\nHi Acme,", &prompt)
	defer srv.Close()

	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	text, err := newTestClient(srv.URL).DraftReminder(context.Background(), domain.ReminderSummary{
		ClientName:    "Acme",
		InvoiceNumber: "INV-7",
		AmountDue:     220,
		DueDate:       &due,
	})
	require.NoError(t, err)

	assert.Equal(t, "Subject: Friendly reminder\n\nHi Acme,", text)
	assert.Contains(t, prompt, "Client Name: Acme")
	assert.Contains(t, prompt, "Amount Due: $220.00")
	assert.Contains(t, prompt, "Due Date: March 1, 2025")
}

func TestEnsureSubject_AddsMissingSubject(t *testing.T) {
	text := ensureSubject("Dear client, please pay.", "INV-9")
	assert.Equal(t, "Subject: Payment reminder for invoice INV-9\n\nDear client, please pay.", text)
}

func TestGenerateInsights(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, "```json\n{\"insights\": [\"Revenue is strong\", \" \", \"Send reminders\"]}\n```", nil)
	defer srv.Close()

	insights, err := newTestClient(srv.URL).GenerateInsights(context.Background(), domain.DashboardSummary{TotalInvoices: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Revenue is strong", "Send reminders"}, insights)
}

func TestGenerateInsights_Malformed(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, "I think you are doing great!", nil)
	defer srv.Close()

	_, err := newTestClient(srv.URL).GenerateInsights(context.Background(), domain.DashboardSummary{})
	assert.Error(t, err)
}

func TestCleanJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, string(cleanJSON("```json\n{\"a\":1}\n```")))
	assert.Equal(t, `{"a":1}`, string(cleanJSON("prefix {\"a\":1} suffix")))
	assert.Equal(t, `not json`, string(cleanJSON("not json")))
}
