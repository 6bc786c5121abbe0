package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridwanfathin/invoice-service/internal/clock"
)

var testNow = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

func sampleDraft() Draft {
	return Draft{
		InvoiceNumber: "INV-1",
		InvoiceDate:   DateFromString("2025-01-10"),
		DueDate:       DateFromString("25-01-2025"),
		BillFrom:      Party{Name: "Studio"},
		BillTo:        Party{Name: "Acme"},
		Items:         []ItemInput{{Description: "A", Quantity: 2, UnitPrice: 100, TaxPercent: 10}},
	}
}

func TestNewInvoiceFromDraft(t *testing.T) {
	inv, errs := NewInvoiceFromDraft("owner-1", sampleDraft(), testNow, "")
	require.Empty(t, errs)

	assert.Equal(t, "owner-1", inv.OwnerID)
	assert.Equal(t, StatusUnpaid, inv.Status)
	assert.Equal(t, DefaultPaymentTerms, inv.PaymentTerms)
	assert.Equal(t, 200.0, inv.Subtotal)
	assert.Equal(t, 20.0, inv.TaxTotal)
	assert.Equal(t, 220.0, inv.Total)
	assert.Equal(t, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), inv.InvoiceDate)
	require.NotNil(t, inv.DueDate)
	assert.Equal(t, time.Date(2025, 1, 25, 0, 0, 0, 0, time.UTC), *inv.DueDate)
	assert.Equal(t, testNow, inv.CreatedAt)
	assert.Equal(t, testNow, inv.UpdatedAt)
}

func TestNewInvoiceFromDraft_Dates(t *testing.T) {
	d := sampleDraft()
	d.InvoiceDate = DateInput{}
	d.DueDate = DateInput{}

	inv, errs := NewInvoiceFromDraft("owner-1", d, testNow, "Net 30")
	require.Empty(t, errs)
	assert.Equal(t, testNow, inv.InvoiceDate)
	assert.Nil(t, inv.DueDate)
	assert.Equal(t, "Net 30", inv.PaymentTerms)

	d.InvoiceDate = DateFromString("someday")
	d.DueDate = DateFromString("later")
	_, errs = NewInvoiceFromDraft("owner-1", d, testNow, "")
	require.Len(t, errs, 2)
	assert.Equal(t, "invoiceDate", errs[0].Field)
	assert.Equal(t, "dueDate", errs[1].Field)
}

func TestApplyPatch_StatusOnlyKeepsItemsAndTotals(t *testing.T) {
	inv, _ := NewInvoiceFromDraft("owner-1", sampleDraft(), testNow, "")
	before := inv.Clone()

	paid := "paid"
	errs := inv.ApplyPatch(Patch{Status: &paid}, testNow.Add(time.Hour))
	require.Empty(t, errs)

	assert.Equal(t, StatusPaid, inv.Status)
	assert.Equal(t, before.Items, inv.Items)
	assert.Equal(t, before.Totals(), inv.Totals())
	assert.Equal(t, testNow.Add(time.Hour), inv.UpdatedAt)
	assert.Equal(t, before.CreatedAt, inv.CreatedAt)
}

func TestApplyPatch_ItemsRecompute(t *testing.T) {
	inv, _ := NewInvoiceFromDraft("owner-1", sampleDraft(), testNow, "")

	errs := inv.ApplyPatch(Patch{Items: []ItemInput{
		{Description: "X", Quantity: 1, UnitPrice: 40},
		{Description: "Y", Quantity: 3, UnitPrice: 10, TaxPercent: 50},
	}}, testNow)
	require.Empty(t, errs)

	assert.Len(t, inv.Items, 2)
	assert.Equal(t, 70.0, inv.Subtotal)
	assert.Equal(t, 15.0, inv.TaxTotal)
	assert.Equal(t, 85.0, inv.Total)
	assert.Equal(t, 45.0, inv.Items[1].Total)
}

func TestApplyPatch_ClearDueDateAndRejectBadInput(t *testing.T) {
	inv, _ := NewInvoiceFromDraft("owner-1", sampleDraft(), testNow, "")

	require.Empty(t, inv.ApplyPatch(Patch{DueDate: NullDate()}, testNow))
	assert.Nil(t, inv.DueDate)

	bogus := "overdue"
	errs := inv.ApplyPatch(Patch{Status: &bogus, InvoiceDate: NullDate()}, testNow)
	require.Len(t, errs, 2)
	assert.Equal(t, StatusUnpaid, inv.Status)
}

func TestValidationPolicy_Check(t *testing.T) {
	inv, _ := NewInvoiceFromDraft("owner-1", Draft{
		InvoiceDate: DateFromString("2025-01-10"),
		DueDate:     DateFromString("2025-01-01"),
		Items:       []ItemInput{{Description: " ", Quantity: -1, UnitPrice: -5, TaxPercent: -2}},
	}, testNow, "")

	lenient := ValidationPolicy{}.Check(inv)
	fields := fieldsOf(lenient)
	assert.ElementsMatch(t, []string{"invoiceNumber", "items[0].description"}, fields)

	strict := ValidationPolicy{RejectNegativeAmounts: true, RequireDueAfterInvoiceDate: true}.Check(inv)
	assert.ElementsMatch(t, []string{
		"invoiceNumber",
		"items[0].description",
		"items[0].quantity",
		"items[0].unitPrice",
		"items[0].taxPercent",
		"dueDate",
	}, fieldsOf(strict))

	inv.Items = nil
	inv.DueDate = nil
	errs := ValidationPolicy{RequireDueDate: true}.Check(inv)
	assert.Contains(t, fieldsOf(errs), "items")
	assert.Contains(t, fieldsOf(errs), "dueDate")

	var target ValidationErrors
	assert.True(t, errors.As(errs.OrNil(), &target))
}

func TestStatus(t *testing.T) {
	s, err := ParseStatus("PAID")
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, s)
	assert.True(t, s.Valid())
	assert.False(t, Status("paid").Valid())

	_, err = ParseStatus("void")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "status", ve.Field)
}

func TestNumberGenerator_Monotonic(t *testing.T) {
	fc := clock.NewFakeClock(time.UnixMilli(1700000000000))
	gen := NewNumberGenerator(fc)

	first := gen.Next()
	second := gen.Next()
	assert.Equal(t, "INV-1700000000000", first)
	assert.Equal(t, "INV-1700000000001", second)

	fc.Advance(time.Second)
	assert.Equal(t, "INV-1700000001000", gen.Next())
}

func fieldsOf(errs ValidationErrors) []string {
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	return fields
}

func TestBlankDatesCountAsAbsent(t *testing.T) {
	var payload struct {
		InvoiceDate DateInput `json:"invoiceDate"`
		DueDate     DateInput `json:"dueDate"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"invoiceDate":"","dueDate":"   "}`), &payload))
	assert.False(t, payload.DueDate.HasValue())

	d := sampleDraft()
	d.InvoiceDate = payload.InvoiceDate
	d.DueDate = payload.DueDate
	inv, errs := NewInvoiceFromDraft("owner-1", d, testNow, "")
	require.Empty(t, errs)
	assert.Equal(t, testNow, inv.InvoiceDate)
	assert.Nil(t, inv.DueDate)

	inv, _ = NewInvoiceFromDraft("owner-1", sampleDraft(), testNow, "")
	require.Empty(t, inv.ApplyPatch(Patch{DueDate: DateFromString("")}, testNow))
	assert.Nil(t, inv.DueDate)
}
