package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ridwanfathin/invoice-service/internal/domain"
)

var (
	// ErrNotFound is returned when no invoice has the requested id
	ErrNotFound = errors.New("invoice not found")

	// ErrDuplicateNumber is returned when an owner already has an invoice with the same number
	ErrDuplicateNumber = errors.New("invoice number already exists for this owner")
)

// ListOptions pages an owner's invoices. A zero Limit means no limit.
type ListOptions struct {
	Limit  int
	Offset int
}

// InvoiceRepository defines the interface for invoice data storage operations.
// Every method operates on a single document.
type InvoiceRepository interface {
	// Insert stores a new invoice and assigns its ID when empty
	Insert(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error)

	// FindByID retrieves an invoice by its ID regardless of owner
	FindByID(ctx context.Context, id string) (*domain.Invoice, error)

	// FindByOwner lists an owner's invoices, newest first
	FindByOwner(ctx context.Context, ownerID string, opts ListOptions) ([]*domain.Invoice, error)

	// UpdateByID replaces the stored invoice. Last write wins.
	UpdateByID(ctx context.Context, id string, invoice *domain.Invoice) (*domain.Invoice, error)

	// DeleteByID removes the invoice and returns what was stored
	DeleteByID(ctx context.Context, id string) (*domain.Invoice, error)
}

// RepositoryError represents an error that occurred within a repository
type RepositoryError struct {
	// Op is the operation that failed
	Op string

	// Err is the underlying error
	Err error
}

// Error returns a string representation of the error
func (e *RepositoryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

func checkContext(ctx context.Context, op string) error {
	select {
	case <-ctx.Done():
		return &RepositoryError{Op: op, Err: ctx.Err()}
	default:
		return nil
	}
}
