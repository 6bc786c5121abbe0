package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ridwanfathin/invoice-service/internal/database"
	"github.com/ridwanfathin/invoice-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InvoiceCollection is the MongoDB collection holding invoice documents
const InvoiceCollection = "invoices"

// MongoInvoiceRepository implements InvoiceRepository on a MongoDB collection.
// Items are embedded in the invoice document so every write is single-document.
type MongoInvoiceRepository struct {
	collection *mongo.Collection
}

// NewMongoInvoiceRepository creates a repository on the invoices collection of db
func NewMongoInvoiceRepository(db *mongo.Database) *MongoInvoiceRepository {
	return &MongoInvoiceRepository{
		collection: db.Collection(InvoiceCollection),
	}
}

// EnsureIndexes creates the per-owner unique invoice number index and the listing index
func (r *MongoInvoiceRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "invoice_number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("owner_invoice_number_unique"),
		},
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("owner_created_at"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create invoice indexes: %w", err)
	}
	return nil
}

// Insert stores a new invoice document
func (r *MongoInvoiceRepository) Insert(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error) {
	stored := invoice.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	if _, err := r.collection.InsertOne(ctx, stored); err != nil {
		if database.IsMongoDuplicateKeyError(err) {
			return nil, &RepositoryError{Op: "insert_invoice", Err: ErrDuplicateNumber}
		}
		return nil, &RepositoryError{Op: "insert_invoice", Err: err}
	}
	return stored, nil
}

// FindByID retrieves an invoice by its ID
func (r *MongoInvoiceRepository) FindByID(ctx context.Context, id string) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&invoice)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, &RepositoryError{Op: "find_invoice", Err: err}
	}
	return normalizeTimes(&invoice), nil
}

// FindByOwner lists an owner's invoices, newest first
func (r *MongoInvoiceRepository) FindByOwner(ctx context.Context, ownerID string, opts ListOptions) ([]*domain.Invoice, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		findOpts.SetSkip(int64(opts.Offset))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID}, findOpts)
	if err != nil {
		return nil, &RepositoryError{Op: "list_invoices", Err: err}
	}
	defer cursor.Close(ctx)

	invoices := []*domain.Invoice{}
	for cursor.Next(ctx) {
		var invoice domain.Invoice
		if err := cursor.Decode(&invoice); err != nil {
			return nil, &RepositoryError{Op: "list_invoices", Err: fmt.Errorf("failed to decode invoice: %w", err)}
		}
		invoices = append(invoices, normalizeTimes(&invoice))
	}
	if err := cursor.Err(); err != nil {
		return nil, &RepositoryError{Op: "list_invoices", Err: err}
	}
	return invoices, nil
}

// UpdateByID replaces the whole document
func (r *MongoInvoiceRepository) UpdateByID(ctx context.Context, id string, invoice *domain.Invoice) (*domain.Invoice, error) {
	stored := invoice.Clone()
	stored.ID = id

	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": id}, stored)
	if err != nil {
		if database.IsMongoDuplicateKeyError(err) {
			return nil, &RepositoryError{Op: "update_invoice", Err: ErrDuplicateNumber}
		}
		return nil, &RepositoryError{Op: "update_invoice", Err: err}
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return stored, nil
}

// DeleteByID removes the document and returns it
func (r *MongoInvoiceRepository) DeleteByID(ctx context.Context, id string) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&invoice)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, &RepositoryError{Op: "delete_invoice", Err: err}
	}
	return normalizeTimes(&invoice), nil
}

// normalizeTimes converts decoded BSON datetimes, which come back in local time, to UTC
func normalizeTimes(invoice *domain.Invoice) *domain.Invoice {
	invoice.InvoiceDate = invoice.InvoiceDate.UTC()
	invoice.CreatedAt = invoice.CreatedAt.UTC()
	invoice.UpdatedAt = invoice.UpdatedAt.UTC()
	if invoice.DueDate != nil {
		d := invoice.DueDate.UTC()
		invoice.DueDate = &d
	}
	return invoice
}
