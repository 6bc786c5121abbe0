package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridwanfathin/invoice-service/internal/clock"
	"github.com/ridwanfathin/invoice-service/internal/database"
	"github.com/ridwanfathin/invoice-service/internal/domain"
	"github.com/ridwanfathin/invoice-service/internal/extraction"
	"github.com/ridwanfathin/invoice-service/internal/logger"
	"github.com/ridwanfathin/invoice-service/internal/repository"
)

const (
	resourceInvoice        = "invoice"
	duplicateNumberMessage = "already used by another invoice"

	// generatedNumberRetries bounds how often a clashing generated number is replaced
	generatedNumberRetries = 2
)

// InvoiceService defines the owner-scoped invoice operations
type InvoiceService interface {
	Create(ctx context.Context, ownerID string, draft domain.Draft) (*domain.Invoice, error)
	Update(ctx context.Context, ownerID, id string, patch domain.Patch) (*domain.Invoice, error)
	Delete(ctx context.Context, ownerID, id string) error
	Get(ctx context.Context, ownerID, id string) (*domain.Invoice, error)
	ListByOwner(ctx context.Context, ownerID string, opts repository.ListOptions) ([]*domain.Invoice, error)

	// ChangeStatus moves an invoice between Unpaid and Paid without touching items or totals
	ChangeStatus(ctx context.Context, ownerID, id string, status domain.Status) (*domain.Invoice, error)

	// CreateFromText extracts, reconciles and creates an invoice from free text
	CreateFromText(ctx context.Context, ownerID, text string) (*domain.Invoice, error)
}

// Options configures an InvoiceService. Zero values pick sensible defaults.
type Options struct {
	Clock               clock.Clock
	Policy              domain.ValidationPolicy
	DefaultPaymentTerms string
	ExtractionDueIn     time.Duration
	MaxWorkers          int
}

// InvoiceServiceImpl implements the InvoiceService interface
type InvoiceServiceImpl struct {
	repository   repository.InvoiceRepository
	extractor    Extractor
	reconciler   *extraction.Reconciler
	numbers      *domain.NumberGenerator
	clock        clock.Clock
	policy       domain.ValidationPolicy
	defaultTerms string
	workerPool   chan struct{}
	log          zerolog.Logger
}

// NewInvoiceService creates a new InvoiceService. extractor may be nil, in which
// case CreateFromText fails with an external dependency error.
func NewInvoiceService(repo repository.InvoiceRepository, extractor Extractor, opts Options) *InvoiceServiceImpl {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.DefaultPaymentTerms == "" {
		opts.DefaultPaymentTerms = domain.DefaultPaymentTerms
	}
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = 5
	}

	numbers := domain.NewNumberGenerator(opts.Clock)
	return &InvoiceServiceImpl{
		repository: repo,
		extractor:  extractor,
		reconciler: extraction.NewReconciler(opts.Clock, numbers, extraction.Config{
			DueIn:        opts.ExtractionDueIn,
			PaymentTerms: opts.DefaultPaymentTerms,
		}),
		numbers:      numbers,
		clock:        opts.Clock,
		policy:       opts.Policy,
		defaultTerms: opts.DefaultPaymentTerms,
		workerPool:   make(chan struct{}, opts.MaxWorkers),
		log:          logger.WithComponent("invoice_service"),
	}
}

// Create validates a draft, derives its totals and persists it as an unpaid invoice
func (s *InvoiceServiceImpl) Create(ctx context.Context, ownerID string, draft domain.Draft) (invoice *domain.Invoice, err error) {
	defer recoverOperation("create_invoice", &err)

	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	invoice, errs := domain.NewInvoiceFromDraft(ownerID, draft, s.clock.Now(), s.defaultTerms)
	errs = append(errs, s.policy.Check(invoice)...)
	if len(errs) > 0 {
		return nil, errs
	}

	stored, err := s.repository.Insert(ctx, invoice)
	if err != nil {
		return nil, s.mapWriteError("create_invoice", invoice.ID, err)
	}

	s.log.Info().
		Str("owner_id", ownerID).
		Str("invoice_id", stored.ID).
		Str("invoice_number", stored.InvoiceNumber).
		Float64("total", stored.Total).
		Msg("Invoice created")

	return stored, nil
}

// Update merges a partial update into an owned invoice. Replacing items recomputes every total.
func (s *InvoiceServiceImpl) Update(ctx context.Context, ownerID, id string, patch domain.Patch) (invoice *domain.Invoice, err error) {
	defer recoverOperation("update_invoice", &err)

	current, err := s.loadOwned(ctx, "update_invoice", ownerID, id)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	errs := next.ApplyPatch(patch, s.clock.Now())
	errs = append(errs, s.policy.Check(next)...)
	if len(errs) > 0 {
		return nil, errs
	}

	stored, err := s.repository.UpdateByID(ctx, id, next)
	if err != nil {
		return nil, s.mapWriteError("update_invoice", id, err)
	}

	s.log.Info().Str("owner_id", ownerID).Str("invoice_id", id).Bool("items_replaced", patch.Items != nil).Msg("Invoice updated")
	return stored, nil
}

// ChangeStatus sets the payment status; items and totals are left as stored
func (s *InvoiceServiceImpl) ChangeStatus(ctx context.Context, ownerID, id string, status domain.Status) (invoice *domain.Invoice, err error) {
	defer recoverOperation("change_status", &err)

	if !status.Valid() {
		return nil, domain.NewValidationError("status", "must be one of Unpaid, Paid")
	}

	current, err := s.loadOwned(ctx, "change_status", ownerID, id)
	if err != nil {
		return nil, err
	}
	next := current.Clone()
	next.Status = status
	next.UpdatedAt = s.clock.Now().UTC()

	stored, err := s.repository.UpdateByID(ctx, id, next)
	if err != nil {
		return nil, s.mapWriteError("change_status", id, err)
	}

	s.log.Info().Str("owner_id", ownerID).Str("invoice_id", id).Str("from", string(current.Status)).Str("to", string(status)).Msg("Invoice status changed")
	return stored, nil
}

// Delete removes an owned invoice
func (s *InvoiceServiceImpl) Delete(ctx context.Context, ownerID, id string) (err error) {
	defer recoverOperation("delete_invoice", &err)

	if _, err := s.loadOwned(ctx, "delete_invoice", ownerID, id); err != nil {
		return err
	}

	if _, err := s.repository.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &domain.NotFoundError{Resource: resourceInvoice, ID: id}
		}
		return &domain.ExternalDependencyError{Op: "delete_invoice", Err: err}
	}

	s.log.Info().Str("owner_id", ownerID).Str("invoice_id", id).Msg("Invoice deleted")
	return nil
}

// Get returns an owned invoice
func (s *InvoiceServiceImpl) Get(ctx context.Context, ownerID, id string) (invoice *domain.Invoice, err error) {
	defer recoverOperation("get_invoice", &err)
	return s.loadOwned(ctx, "get_invoice", ownerID, id)
}

// ListByOwner returns the owner's invoices, newest first
func (s *InvoiceServiceImpl) ListByOwner(ctx context.Context, ownerID string, opts repository.ListOptions) (invoices []*domain.Invoice, err error) {
	defer recoverOperation("list_invoices", &err)

	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if opts.Limit < 0 {
		return nil, domain.NewValidationError("limit", "must not be negative")
	}
	if opts.Offset < 0 {
		return nil, domain.NewValidationError("offset", "must not be negative")
	}

	invoices, err = s.repository.FindByOwner(ctx, ownerID, opts)
	if err != nil {
		return nil, &domain.ExternalDependencyError{Op: "list_invoices", Err: err}
	}
	return invoices, nil
}

// CreateFromText runs the extractor, reconciles its output and creates the invoice.
// A clash on the generated invoice number is retried with a fresh number.
func (s *InvoiceServiceImpl) CreateFromText(ctx context.Context, ownerID, text string) (invoice *domain.Invoice, err error) {
	defer recoverOperation("create_from_text", &err)

	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.NewValidationError("text", "is required")
	}
	if s.extractor == nil {
		return nil, &domain.ExternalDependencyError{Op: "extract_invoice", Err: errors.New("no extractor configured")}
	}

	raw, err := s.extract(ctx, text)
	if err != nil {
		return nil, err
	}

	reconciled, err := s.reconciler.ReconcileJSON(raw)
	if err != nil {
		s.log.Warn().Err(err).Str("owner_id", ownerID).Msg("Extraction output rejected")
		return nil, err
	}

	draft := *reconciled
	attempt := 0
	err = database.WithRetries(ctx, func() error {
		if attempt > 0 {
			draft.InvoiceNumber = s.numbers.Next()
		}
		attempt++

		created, createErr := s.Create(ctx, ownerID, draft)
		if createErr != nil {
			return createErr
		}
		invoice = created
		return nil
	}, generatedNumberRetries, isDuplicateNumber)
	if err != nil {
		return nil, err
	}

	return invoice, nil
}

// extract calls the extractor while holding a worker slot
func (s *InvoiceServiceImpl) extract(ctx context.Context, text string) ([]byte, error) {
	select {
	case s.workerPool <- struct{}{}:
		defer func() {
			<-s.workerPool
		}()
	case <-ctx.Done():
		return nil, &domain.ExternalDependencyError{Op: "acquire_worker", Err: ctx.Err()}
	}

	raw, err := s.extractor.ExtractInvoice(ctx, text)
	if err != nil {
		return nil, &domain.ExternalDependencyError{Op: "extract_invoice", Err: err}
	}
	return raw, nil
}

// loadOwned fetches an invoice and enforces ownership
func (s *InvoiceServiceImpl) loadOwned(ctx context.Context, op, ownerID, id string) (*domain.Invoice, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewValidationError("id", "is required")
	}

	invoice, err := s.repository.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &domain.NotFoundError{Resource: resourceInvoice, ID: id}
		}
		return nil, &domain.ExternalDependencyError{Op: op, Err: err}
	}

	if !invoice.IsOwnedBy(ownerID) {
		s.log.Warn().Str("owner_id", ownerID).Str("invoice_id", id).Str("op", op).Msg("Ownership check failed")
		return nil, &domain.ForbiddenError{Resource: resourceInvoice, ID: id}
	}

	return invoice, nil
}

func (s *InvoiceServiceImpl) mapWriteError(op, id string, err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateNumber):
		return domain.NewValidationError("invoiceNumber", duplicateNumberMessage)
	case errors.Is(err, repository.ErrNotFound):
		return &domain.NotFoundError{Resource: resourceInvoice, ID: id}
	default:
		s.log.Error().Err(err).Str("op", op).Msg("Repository write failed")
		return &domain.ExternalDependencyError{Op: op, Err: err}
	}
}

func isDuplicateNumber(err error) bool {
	var ve *domain.ValidationError
	return errors.As(err, &ve) && ve.Field == "invoiceNumber" && ve.Message == duplicateNumberMessage
}

func requireOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return domain.NewValidationError("ownerId", "is required")
	}
	return nil
}

// recoverOperation turns a panic inside an operation into an ExternalDependencyError
func recoverOperation(op string, err *error) {
	if r := recover(); r != nil {
		log := logger.WithComponent("invoice_service")
		log.Error().Str("op", op).Interface("panic", r).Msg("Recovered from panic")
		*err = &domain.ExternalDependencyError{Op: op, Err: fmt.Errorf("unexpected failure: %v", r)}
	}
}
