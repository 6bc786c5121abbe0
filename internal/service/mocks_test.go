package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ridwanfathin/invoice-service/internal/domain"
	"github.com/ridwanfathin/invoice-service/internal/repository"
)

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) ExtractInvoice(ctx context.Context, text string) ([]byte, error) {
	args := m.Called(ctx, text)
	if b, ok := args.Get(0).([]byte); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockReminderDrafter struct {
	mock.Mock
}

func (m *MockReminderDrafter) DraftReminder(ctx context.Context, summary domain.ReminderSummary) (string, error) {
	args := m.Called(ctx, summary)
	return args.String(0), args.Error(1)
}

type MockInsightsGenerator struct {
	mock.Mock
}

func (m *MockInsightsGenerator) GenerateInsights(ctx context.Context, summary domain.DashboardSummary) ([]string, error) {
	args := m.Called(ctx, summary)
	if s, ok := args.Get(0).([]string); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

// failingRepository wraps a real repository and fails selected operations
type failingRepository struct {
	repository.InvoiceRepository
	insertErr error
	findPanic bool
}

func (r *failingRepository) Insert(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error) {
	if r.insertErr != nil {
		err := r.insertErr
		r.insertErr = nil
		return nil, err
	}
	return r.InvoiceRepository.Insert(ctx, invoice)
}

func (r *failingRepository) FindByID(ctx context.Context, id string) (*domain.Invoice, error) {
	if r.findPanic {
		panic("corrupted document")
	}
	return r.InvoiceRepository.FindByID(ctx, id)
}
