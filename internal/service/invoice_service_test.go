package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ridwanfathin/invoice-service/internal/clock"
	"github.com/ridwanfathin/invoice-service/internal/domain"
	"github.com/ridwanfathin/invoice-service/internal/repository"
)

var t0 = time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)

type fixture struct {
	clock     *clock.FakeClock
	repo      *repository.MemoryInvoiceRepository
	extractor *MockExtractor
	svc       *InvoiceServiceImpl
}

func newFixture(policy domain.ValidationPolicy) *fixture {
	fc := clock.NewFakeClock(t0)
	repo := repository.NewMemoryInvoiceRepository()
	extractor := new(MockExtractor)
	return &fixture{
		clock:     fc,
		repo:      repo,
		extractor: extractor,
		svc:       NewInvoiceService(repo, extractor, Options{Clock: fc, Policy: policy}),
	}
}

func validDraft(number string) domain.Draft {
	return domain.Draft{
		InvoiceNumber: number,
		InvoiceDate:   domain.DateFromString("2025-04-01"),
		DueDate:       domain.DateFromString("2025-04-16"),
		BillFrom:      domain.Party{Name: "Studio"},
		BillTo:        domain.Party{Name: "Acme", Email: "ap@acme.test"},
		Items:         []domain.ItemInput{{Description: "A", Quantity: 2, UnitPrice: 100, TaxPercent: 10}},
	}
}

func TestCreate_ComputesTotals(t *testing.T) {
	f := newFixture(domain.ValidationPolicy{})
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "owner-1", validDraft("INV-1"))
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 200.0, created.Subtotal)
	assert.Equal(t, 20.0, created.TaxTotal)
	assert.Equal(t, 220.0, created.Total)
	assert.Equal(t, domain.StatusUnpaid, created.Status)
	assert.Equal(t, "Net 15", created.PaymentTerms)

	fetched, err := f.svc.Get(ctx, "owner-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, fetched)
}

func TestCreate_WithoutDueDatePersists(t *testing.T) {
	f := newFixture(domain.ValidationPolicy{})
	draft := validDraft("INV-1")
	draft.DueDate = domain.DateInput{}

	created, err := f.svc.Create(context.Background(), "owner-1", draft)
	require.NoError(t, err)
	assert.Nil(t, created.DueDate)

	_, err = f.svc.Get(context.Background(), "owner-1", created.ID)
	assert.NoError(t, err)
}

func TestCreate_RequiresDueDateWhenPolicySaysSo(t *testing.T) {
	f := newFixture(domain.ValidationPolicy{RequireDueDate: true})
	draft := validDraft("INV-1")
	draft.DueDate = domain.DateInput{}

	_, err := f.svc.Create(context.Background(), "owner-1", draft)
	var errs domain.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "dueDate", errs[0].Field)
}

func TestCreate_ValidationFailuresPersistNothing(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *domain.Draft)
		field  string
	}{
		{"no items", func(d *domain.Draft) { d.Items = nil }, "items"},
		{"blank number", func(d *domain.Draft) { d.InvoiceNumber = "  " }, "invoiceNumber"},
		{"unparseable invoice date", func(d *domain.Draft) { d.InvoiceDate = domain.DateFromString("yesterday-ish") }, "invoiceDate"},
		{"unparseable due date", func(d *domain.Draft) { d.DueDate = domain.DateFromString("soon") }, "dueDate"},
		{"blank description", func(d *domain.Draft) { d.Items[0].Description = "" }, "items[0].description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(domain.ValidationPolicy{})
			draft := validDraft("INV-1")
			tt.mutate(&draft)

			_, err := f.svc.Create(context.Background(), "owner-1", draft)
			var errs domain.ValidationErrors
			require.ErrorAs(t, err, &errs)
			assert.Equal(t, tt.field, errs[0].Field)

			list, err := f.svc.ListByOwner(context.Background(), "owner-1", repository.ListOptions{})
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestCreate_NegativeAmountsFollowPolicy(t *testing.T) {
	draft := validDraft("INV-1")
	draft.Items[0].Quantity = -2

	lenient := newFixture(domain.ValidationPolicy{})
	created, err := lenient.svc.Create(context.Background(), "owner-1", draft)
	require.NoError(t, err)
	assert.Equal(t, -220.0, created.Total)

	strict := newFixture(domain.ValidationPolicy{RejectNegativeAmounts: true})
	_, err = strict.svc.Create(context.Background(), "owner-1", draft)
	var errs domain.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "items[0].quantity", errs[0].Field)
}

func TestCreate_DuplicateNumberPerOwner(t *testing.T) {
	f := newFixture(domain.ValidationPolicy{})
	ctx := context.Background()

	_, err := f.svc.Create(ctx, "owner-1", validDraft("INV-1"))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, "owner-1", validDraft("INV-1"))
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "invoiceNumber", ve.Field)

	_, err = f.svc.Create(ctx, "owner-2", validDraft("INV-1"))
	assert.NoError(t, err)
}

func TestUpdate_ItemsRecomputeTotals(t *testing.T) {
	f := newFixture(domain.ValidationPolicy{})
	ctx := context.Background()
	created, err := f.svc.Create(ctx, "owner-1", validDraft("INV-1"))
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	notes := "updated"
	updated, err := f.svc.Update(ctx, "owner-1", created.ID, domain.Patch{
		Notes: &notes,
		Items: []domain.ItemInput{{Description: "B", Quantity: 1, UnitPrice: 50, TaxPercent: 20}},
	})
	require.NoError(t, err)

	assert.Equal(t, 50.0, updated.Subtotal)
	assert.Equal(t, 10.0, updated.TaxTotal)
	assert.Equal(t, 60.0, updated.Total)
	assert.Equal(t, "updated", updated.Notes)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, t0.Add(time.Hour), updated.UpdatedAt)
	assert.Equal(t, "owner-1", updated.OwnerID)

	stored, err := f.repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, stored)
}

func TestUpdate_RejectsEmptyItemsWithoutPersisting(t *testing.T) {
	f := newFixture(domain.ValidationPolicy{})
	ctx := context.Background()
	created, err := f.svc.Create(ctx, "owner-1", validDraft("INV-1"))
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, "owner-1", created.ID, domain.Patch{Items: []domain.ItemInput{}})
	var errs domain.ValidationErrors
	require.ErrorAs(t, err, &errs)

	stored, err := f.repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, stored)
}

func TestChangeStatus_LeavesItemsAndTotals(t *testing.T) {
	f := newFixture(domain.ValidationPolicy{})
	ctx := context.Background()
	created, err := f.svc.Create(ctx, "owner-1", validDraft("INV-1"))
	require.NoError(t, err)

	paid, err := f.svc.ChangeStatus(ctx, "owner-1", created.ID, domain.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, paid.Status)
	assert.Equal(t, created.Items, paid.Items)
	assert.Equal(t, created.Totals(), paid.Totals())

	unpaid, err := f.svc.ChangeStatus(ctx, "owner-1", created.ID, domain.StatusUnpaid)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnpaid, unpaid.Status)

	_, err = f.svc.ChangeStatus(ctx, "owner-1", created.ID, domain.Status("Void"))
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
}

// zonedClock reports a fixed instant in a non-UTC location
type zonedClock struct{ now time.Time }

func (c zonedClock) Now() time.Time { return c.now }

func TestChangeStatus_StoresUTCTimestamps(t *testing.T) {
	repo := repository.NewMemoryInvoiceRepository()
	jakarta := time.FixedZone("WIB", 7*60*60)
	svc := NewInvoiceService(repo, nil, Options{Clock: zonedClock{now: t0.In(jakarta)}})
	ctx := context.Background()

	created, err := svc.Create(ctx, "owner-1", validDraft("INV-1"))
	require.NoError(t, err)

	paid, err := svc.ChangeStatus(ctx, "owner-1", created.ID, domain.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, paid.UpdatedAt.Location())
	assert.Equal(t, t0, paid.UpdatedAt)
	assert.Equal(t, created.CreatedAt, paid.CreatedAt)
}

func TestOwnership_NonOwnerIsForbidden(t *testing.T) {
	f := newFixture(domain.ValidationPolicy{})
	ctx := context.Background()
	created, err := f.svc.Create(ctx, "owner-1", validDraft("INV-1"))
	require.NoError(t, err)

	var forbidden *domain.ForbiddenError

	_, err = f.svc.Get(ctx, "intruder", created.ID)
	assert.ErrorAs(t, err, &forbidden)

	notes := "hijacked"
	_, err = f.svc.Update(ctx, "intruder", created.ID, domain.Patch{Notes: &notes})
	assert.ErrorAs(t, err, &forbidden)

	_, err = f.svc.ChangeStatus(ctx, "intruder", created.ID, domain.StatusPaid)
	assert.ErrorAs(t, err, &forbidden)

	err = f.svc.Delete(ctx, "intruder", created.ID)
	assert.ErrorAs(t, err, &forbidden)

	stored, err := f.svc.Get(ctx, "owner-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, stored)
}

func TestNotFound(t *testing.T) {
	f := newFixture(domain.ValidationPolicy{})
	ctx := context.Background()
	var notFound *domain.NotFoundError

	_, err := f.svc.Get(ctx, "owner-1", "missing")
	assert.ErrorAs(t, err, &notFound)

	err = f.svc.Delete(ctx, "owner-1", "missing")
	assert.ErrorAs(t, err, &notFound)
}

func TestDelete(t *testing.T) {
	f := newFixture(domain.ValidationPolicy{})
	ctx := context.Background()
	created, err := f.svc.Create(ctx, "owner-1", validDraft("INV-1"))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, "owner-1", created.ID))

	_, err = f.svc.Get(ctx, "owner-1", created.ID)
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestListByOwner_NewestFirstWithPaging(t *testing.T) {
	f := newFixture(domain.ValidationPolicy{})
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		_, err := f.svc.Create(ctx, "owner-1", validDraft(fmt.Sprintf("INV-%d", i)))
		require.NoError(t, err)
		f.clock.Advance(time.Minute)
	}
	_, err := f.svc.Create(ctx, "owner-2", validDraft("INV-9"))
	require.NoError(t, err)

	all, err := f.svc.ListByOwner(ctx, "owner-1", repository.ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "INV-3", all[0].InvoiceNumber)
	assert.Equal(t, "INV-1", all[2].InvoiceNumber)

	page, err := f.svc.ListByOwner(ctx, "owner-1", repository.ListOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "INV-2", page[0].InvoiceNumber)

	_, err = f.svc.ListByOwner(ctx, "owner-1", repository.ListOptions{Limit: -1})
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestCreateFromText(t *testing.T) {
	f := newFixture(domain.ValidationPolicy{})
	ctx := context.Background()
	f.extractor.On("ExtractInvoice", mock.Anything, "2 design sessions at 150 for Acme").
		Return([]byte(`{"items":[{"name":"Design work","quantity":2,"unitPrice":150}],"billTo":{"businessName":"Acme"}}`), nil)

	created, err := f.svc.CreateFromText(ctx, "owner-1", "2 design sessions at 150 for Acme")
	require.NoError(t, err)

	assert.Equal(t, "Acme", created.BillTo.Name)
	assert.Equal(t, "Design work", created.Items[0].Description)
	assert.Equal(t, 300.0, created.Total)
	assert.Equal(t, fmt.Sprintf("INV-%d", t0.UnixMilli()), created.InvoiceNumber)
	assert.Equal(t, t0, created.InvoiceDate)
	require.NotNil(t, created.DueDate)
	assert.Equal(t, t0.AddDate(0, 0, 30), *created.DueDate)
	assert.Equal(t, domain.StatusUnpaid, created.Status)
	f.extractor.AssertExpectations(t)
}

func TestCreateFromText_RetriesNumberClash(t *testing.T) {
	f := newFixture(domain.ValidationPolicy{})
	ctx := context.Background()

	_, err := f.svc.Create(ctx, "owner-1", validDraft(fmt.Sprintf("INV-%d", t0.UnixMilli())))
	require.NoError(t, err)

	f.extractor.On("ExtractInvoice", mock.Anything, mock.Anything).
		Return([]byte(`{"items":[{"name":"Hosting","quantity":1,"unitPrice":20}]}`), nil)

	created, err := f.svc.CreateFromText(ctx, "owner-1", "hosting")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("INV-%d", t0.UnixMilli()+1), created.InvoiceNumber)
}

func TestCreateFromText_Failures(t *testing.T) {
	t.Run("extractor error", func(t *testing.T) {
		f := newFixture(domain.ValidationPolicy{})
		f.extractor.On("ExtractInvoice", mock.Anything, mock.Anything).Return(nil, context.DeadlineExceeded)

		_, err := f.svc.CreateFromText(context.Background(), "owner-1", "text")
		var depErr *domain.ExternalDependencyError
		require.ErrorAs(t, err, &depErr)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("non json output", func(t *testing.T) {
		f := newFixture(domain.ValidationPolicy{})
		f.extractor.On("ExtractInvoice", mock.Anything, mock.Anything).Return([]byte("sorry, I cannot help"), nil)

		_, err := f.svc.CreateFromText(context.Background(), "owner-1", "text")
		var extractionErr *domain.ExtractionError
		assert.ErrorAs(t, err, &extractionErr)
	})

	t.Run("no items", func(t *testing.T) {
		f := newFixture(domain.ValidationPolicy{})
		f.extractor.On("ExtractInvoice", mock.Anything, mock.Anything).Return([]byte(`{}`), nil)

		_, err := f.svc.CreateFromText(context.Background(), "owner-1", "text")
		var extractionErr *domain.ExtractionError
		require.ErrorAs(t, err, &extractionErr)

		list, listErr := f.svc.ListByOwner(context.Background(), "owner-1", repository.ListOptions{})
		require.NoError(t, listErr)
		assert.Empty(t, list)
	})

	t.Run("blank text", func(t *testing.T) {
		f := newFixture(domain.ValidationPolicy{})
		_, err := f.svc.CreateFromText(context.Background(), "owner-1", "   ")
		var ve *domain.ValidationError
		assert.ErrorAs(t, err, &ve)
		f.extractor.AssertNotCalled(t, "ExtractInvoice", mock.Anything, mock.Anything)
	})
}

func TestRepositoryFailuresBecomeExternalDependencyErrors(t *testing.T) {
	fc := clock.NewFakeClock(t0)
	repo := &failingRepository{
		InvoiceRepository: repository.NewMemoryInvoiceRepository(),
		insertErr:         errors.New("connection reset"),
	}
	svc := NewInvoiceService(repo, nil, Options{Clock: fc})

	_, err := svc.Create(context.Background(), "owner-1", validDraft("INV-1"))
	var depErr *domain.ExternalDependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, "create_invoice", depErr.Op)

	repo.findPanic = true
	_, err = svc.Get(context.Background(), "owner-1", "any")
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, "get_invoice", depErr.Op)

	_, err = svc.CreateFromText(context.Background(), "owner-1", "text")
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, "extract_invoice", depErr.Op)
}
