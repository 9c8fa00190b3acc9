package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"library-backend/internal/domains/book/model"
)

// Repository is the book store contract. All methods return
// model.ErrBookNotFound when the id does not resolve.
type Repository interface {
	// WithTx returns a repository bound to the given transaction, so a
	// lending operation can span books and ledger atomically.
	WithTx(tx pgx.Tx) Repository

	Create(ctx context.Context, b *model.Book) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	// FindByIDForUpdate locks the book row for the rest of the
	// transaction, serializing competing borrow/return calls per book.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Book, error)
	FindAll(ctx context.Context) ([]model.Book, error)
	Search(ctx context.Context, q model.SearchBooksQuery) ([]model.Book, error)
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id uuid.UUID) error
}
