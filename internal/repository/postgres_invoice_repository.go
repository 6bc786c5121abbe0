package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ridwanfathin/invoice-service/internal/domain"
)

const uniqueViolationCode = "23505"

const invoiceColumns = `id, owner_id, invoice_number, invoice_date, due_date, bill_from, bill_to,
	notes, payment_terms, status, subtotal, tax_total, total, created_at, updated_at`

// PostgresInvoiceRepository implements InvoiceRepository using PostgreSQL
type PostgresInvoiceRepository struct {
	db *pgxpool.Pool
}

// NewPostgresInvoiceRepository creates a new PostgreSQL invoice repository
func NewPostgresInvoiceRepository(db *pgxpool.Pool) *PostgresInvoiceRepository {
	return &PostgresInvoiceRepository{
		db: db,
	}
}

// Insert saves a new invoice and its items in one transaction
func (r *PostgresInvoiceRepository) Insert(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error) {
	stored := invoice.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // Rollback if not committed

	_, err = tx.Exec(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, stored.ID, stored.OwnerID, stored.InvoiceNumber, stored.InvoiceDate, stored.DueDate,
		stored.BillFrom, stored.BillTo, stored.Notes, stored.PaymentTerms, string(stored.Status),
		stored.Subtotal, stored.TaxTotal, stored.Total, stored.CreatedAt, stored.UpdatedAt)
	if err != nil {
		return nil, mapWriteError("insert_invoice", err)
	}

	if err := insertItems(ctx, tx, stored.ID, stored.Items); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return stored, nil
}

// FindByID retrieves an invoice by its ID
func (r *PostgresInvoiceRepository) FindByID(ctx context.Context, id string) (*domain.Invoice, error) {
	row := r.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)

	invoice, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	items, err := r.loadItems(ctx, []string{invoice.ID})
	if err != nil {
		return nil, err
	}
	invoice.Items = items[invoice.ID]

	return invoice, nil
}

// FindByOwner lists an owner's invoices, newest first
func (r *PostgresInvoiceRepository) FindByOwner(ctx context.Context, ownerID string, opts ListOptions) ([]*domain.Invoice, error) {
	var limit any
	if opts.Limit > 0 {
		limit = opts.Limit
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, ownerID, limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	invoices := []*domain.Invoice{}
	ids := []string{}
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
		ids = append(ids, invoice.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}

	if len(ids) == 0 {
		return invoices, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, invoice := range invoices {
		invoice.Items = items[invoice.ID]
	}

	return invoices, nil
}

// UpdateByID replaces an invoice row and all of its items
func (r *PostgresInvoiceRepository) UpdateByID(ctx context.Context, id string, invoice *domain.Invoice) (*domain.Invoice, error) {
	stored := invoice.Clone()
	stored.ID = id

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // Rollback if not committed

	tag, err := tx.Exec(ctx, `
		UPDATE invoices
		SET invoice_number = $1, invoice_date = $2, due_date = $3, bill_from = $4, bill_to = $5,
			notes = $6, payment_terms = $7, status = $8, subtotal = $9, tax_total = $10, total = $11,
			updated_at = $12
		WHERE id = $13
	`, stored.InvoiceNumber, stored.InvoiceDate, stored.DueDate, stored.BillFrom, stored.BillTo,
		stored.Notes, stored.PaymentTerms, string(stored.Status), stored.Subtotal, stored.TaxTotal, stored.Total,
		stored.UpdatedAt, id)
	if err != nil {
		return nil, mapWriteError("update_invoice", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	// Delete existing items
	if _, err := tx.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to delete invoice items: %w", err)
	}

	if err := insertItems(ctx, tx, id, stored.Items); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return stored, nil
}

// DeleteByID removes an invoice; its items cascade
func (r *PostgresInvoiceRepository) DeleteByID(ctx context.Context, id string) (*domain.Invoice, error) {
	invoice, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	return invoice, nil
}

func (r *PostgresInvoiceRepository) loadItems(ctx context.Context, invoiceIDs []string) (map[string][]domain.LineItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT invoice_id, description, quantity, unit_price, tax_percent, total
		FROM invoice_items
		WHERE invoice_id = ANY($1)
		ORDER BY invoice_id, position
	`, invoiceIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice items: %w", err)
	}
	defer rows.Close()

	items := make(map[string][]domain.LineItem, len(invoiceIDs))
	for rows.Next() {
		var invoiceID string
		var item domain.LineItem
		if err := rows.Scan(&invoiceID, &item.Description, &item.Quantity, &item.UnitPrice, &item.TaxPercent, &item.Total); err != nil {
			return nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		items[invoiceID] = append(items[invoiceID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice items: %w", err)
	}

	return items, nil
}

func insertItems(ctx context.Context, tx pgx.Tx, invoiceID string, items []domain.LineItem) error {
	for i, item := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO invoice_items (invoice_id, position, description, quantity, unit_price, tax_percent, total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, invoiceID, i, item.Description, item.Quantity, item.UnitPrice, item.TaxPercent, item.Total)
		if err != nil {
			return fmt.Errorf("failed to insert invoice item: %w", err)
		}
	}
	return nil
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var invoice domain.Invoice
	var status string
	err := row.Scan(
		&invoice.ID, &invoice.OwnerID, &invoice.InvoiceNumber, &invoice.InvoiceDate, &invoice.DueDate,
		&invoice.BillFrom, &invoice.BillTo, &invoice.Notes, &invoice.PaymentTerms, &status,
		&invoice.Subtotal, &invoice.TaxTotal, &invoice.Total, &invoice.CreatedAt, &invoice.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	invoice.Status = domain.Status(status)
	invoice.InvoiceDate = invoice.InvoiceDate.UTC()
	invoice.CreatedAt = invoice.CreatedAt.UTC()
	invoice.UpdatedAt = invoice.UpdatedAt.UTC()
	if invoice.DueDate != nil {
		d := invoice.DueDate.UTC()
		invoice.DueDate = &d
	}
	invoice.Items = []domain.LineItem{}
	return &invoice, nil
}

func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return &RepositoryError{Op: op, Err: ErrDuplicateNumber}
	}
	return &RepositoryError{Op: op, Err: err}
}
