package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/ridwanfathin/invoice-service/internal/domain"
)

// MemoryInvoiceRepository keeps invoices in process memory. It is used for
// local development and tests; data does not survive a restart.
type MemoryInvoiceRepository struct {
	mutex    sync.RWMutex
	invoices map[string]*domain.Invoice
}

// NewMemoryInvoiceRepository creates an empty in-memory repository
func NewMemoryInvoiceRepository() *MemoryInvoiceRepository {
	return &MemoryInvoiceRepository{
		invoices: make(map[string]*domain.Invoice),
	}
}

// Insert stores a copy of the invoice
func (r *MemoryInvoiceRepository) Insert(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error) {
	if err := checkContext(ctx, "insert_invoice"); err != nil {
		return nil, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	stored := invoice.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if _, exists := r.invoices[stored.ID]; exists {
		return nil, &RepositoryError{Op: "insert_invoice", Err: fmt.Errorf("invoice id already exists: %s", stored.ID)}
	}
	if r.numberTaken(stored.OwnerID, stored.InvoiceNumber, "") {
		return nil, &RepositoryError{Op: "insert_invoice", Err: ErrDuplicateNumber}
	}

	r.invoices[stored.ID] = stored
	return stored.Clone(), nil
}

// FindByID retrieves a copy of the invoice
func (r *MemoryInvoiceRepository) FindByID(ctx context.Context, id string) (*domain.Invoice, error) {
	if err := checkContext(ctx, "find_invoice"); err != nil {
		return nil, err
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	invoice, ok := r.invoices[id]
	if !ok {
		return nil, ErrNotFound
	}
	return invoice.Clone(), nil
}

// FindByOwner lists an owner's invoices, newest first
func (r *MemoryInvoiceRepository) FindByOwner(ctx context.Context, ownerID string, opts ListOptions) ([]*domain.Invoice, error) {
	if err := checkContext(ctx, "list_invoices"); err != nil {
		return nil, err
	}

	r.mutex.RLock()
	owned := make([]*domain.Invoice, 0)
	for _, invoice := range r.invoices {
		if invoice.OwnerID == ownerID {
			owned = append(owned, invoice.Clone())
		}
	}
	r.mutex.RUnlock()

	sort.Slice(owned, func(i, j int) bool {
		if owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].ID > owned[j].ID
		}
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(owned) {
			return []*domain.Invoice{}, nil
		}
		owned = owned[opts.Offset:]
	}
	if opts.Limit > 0 && len(owned) > opts.Limit {
		owned = owned[:opts.Limit]
	}
	return owned, nil
}

// UpdateByID replaces the stored invoice
func (r *MemoryInvoiceRepository) UpdateByID(ctx context.Context, id string, invoice *domain.Invoice) (*domain.Invoice, error) {
	if err := checkContext(ctx, "update_invoice"); err != nil {
		return nil, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.invoices[id]; !ok {
		return nil, ErrNotFound
	}
	if r.numberTaken(invoice.OwnerID, invoice.InvoiceNumber, id) {
		return nil, &RepositoryError{Op: "update_invoice", Err: ErrDuplicateNumber}
	}

	stored := invoice.Clone()
	stored.ID = id
	r.invoices[id] = stored
	return stored.Clone(), nil
}

// DeleteByID removes the invoice
func (r *MemoryInvoiceRepository) DeleteByID(ctx context.Context, id string) (*domain.Invoice, error) {
	if err := checkContext(ctx, "delete_invoice"); err != nil {
		return nil, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	invoice, ok := r.invoices[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.invoices, id)
	return invoice, nil
}

// numberTaken must be called with the mutex held
func (r *MemoryInvoiceRepository) numberTaken(ownerID, number, exceptID string) bool {
	for id, invoice := range r.invoices {
		if id != exceptID && invoice.OwnerID == ownerID && invoice.InvoiceNumber == number {
			return true
		}
	}
	return false
}
