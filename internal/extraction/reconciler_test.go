package extraction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridwanfathin/invoice-service/internal/clock"
	"github.com/ridwanfathin/invoice-service/internal/domain"
)

var now = time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

func newTestReconciler() *Reconciler {
	fc := clock.NewFakeClock(now)
	return NewReconciler(fc, domain.NewNumberGenerator(fc), Config{})
}

func TestReconcile_MapsNameAndBillTo(t *testing.T) {
	res, err := newTestReconciler().ReconcileJSON([]byte(`{
		"items": [{"name": "Design work", "quantity": 2, "unitPrice": 150}],
		"billTo": {"businessName": "Acme"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "Acme", res.BillTo.Name)
	require.Len(t, res.Items, 1)
	priced := domain.PriceItems(res.Items)
	assert.Equal(t, "Design work", priced[0].Description)
	assert.Equal(t, 300.0, priced[0].Total)
	assert.Equal(t, 0.0, priced[0].TaxPercent)
	assert.Equal(t, "Design work", res.Items[0].Description)

	assert.Equal(t, "INV-1738411200000", res.InvoiceNumber)
	assert.Equal(t, domain.DefaultPaymentTerms, res.PaymentTerms)

	invoiceDate := domain.NormalizeDate(res.InvoiceDate)
	dueDate := domain.NormalizeDate(res.DueDate)
	require.NotNil(t, invoiceDate)
	require.NotNil(t, dueDate)
	assert.Equal(t, now, *invoiceDate)
	assert.Equal(t, now.AddDate(0, 0, 30), *dueDate)
}

func TestReconcile_Defaults(t *testing.T) {
	res, err := newTestReconciler().ReconcileJSON([]byte(`{
		"invoiceNumber": "FROM-MODEL",
		"items": [{"description": "Hosting", "quantity": "3", "unitPrice": "10.5", "taxPercent": "n/a"}]
	}`))
	require.NoError(t, err)

	assert.Equal(t, DefaultClientName, res.BillTo.Name)
	assert.NotEqual(t, "FROM-MODEL", res.InvoiceNumber)
	assert.Equal(t, 3.0, res.Items[0].Quantity)
	assert.Equal(t, 10.5, res.Items[0].UnitPrice)
	assert.Equal(t, 0.0, res.Items[0].TaxPercent)
	assert.InDelta(t, 31.5, domain.PriceItems(res.Items)[0].Total, 1e-9)
}

func TestReconcile_IgnoresPayloadTotals(t *testing.T) {
	res, err := newTestReconciler().ReconcileJSON([]byte(`{
		"items": [
			{"name": "Consistent", "quantity": 2, "unitPrice": 100, "taxPercent": 10, "total": 220.0000001},
			{"name": "Inflated", "quantity": 1, "unitPrice": 100, "total": 999}
		]
	}`))
	require.NoError(t, err)

	priced := domain.PriceItems(res.Items)
	assert.InDelta(t, 220.0, priced[0].Total, 1e-9)
	assert.Equal(t, 100.0, priced[1].Total)
}

func TestReconcile_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{"no items", `{}`, "items"},
		{"items null", `{"items": null}`, "items"},
		{"items not a list", `{"items": {"name": "x"}}`, "items"},
		{"items empty", `{"items": []}`, "items"},
		{"item not an object", `{"items": ["x"]}`, "items[0]"},
		{"item without name", `{"items": [{"quantity": 1, "unitPrice": 1}]}`, "items[0].description"},
		{"missing quantity", `{"items": [{"name": "x", "unitPrice": 1}]}`, "items[0].quantity"},
		{"bad unit price", `{"items": [{"name": "x", "quantity": 1, "unitPrice": "cheap"}]}`, "items[0].unitPrice"},
		{"bill to not an object", `{"items": [{"name": "x", "quantity": 1, "unitPrice": 1}], "billTo": "Acme"}`, "billTo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestReconciler().ReconcileJSON([]byte(tt.input))
			var extractionErr *domain.ExtractionError
			require.ErrorAs(t, err, &extractionErr)
			assert.Equal(t, tt.field, extractionErr.Field)
		})
	}
}

func TestDecode_RejectsNonObjects(t *testing.T) {
	for _, raw := range []string{"not json", `[1,2]`, `"text"`, ``} {
		_, err := Decode([]byte(raw))
		var extractionErr *domain.ExtractionError
		assert.ErrorAs(t, err, &extractionErr, raw)
	}
}
