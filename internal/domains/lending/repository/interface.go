package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"library-backend/internal/domains/lending/model"
)

// Ledger is the borrowing ledger contract. The ledger is append-mostly:
// records are added at borrow time and updated exactly once to close them;
// nothing is ever deleted.
type Ledger interface {
	WithTx(tx pgx.Tx) Ledger

	Append(ctx context.Context, rec *model.BorrowingRecord) error
	// FindOpenByBook returns the open record for a book, or nil when the
	// book has no active loan. At most one open record exists per book.
	FindOpenByBook(ctx context.Context, bookID uuid.UUID) (*model.BorrowingRecord, error)
	// CountOpenByMember counts the member's active loans across all books.
	CountOpenByMember(ctx context.Context, memberID uuid.UUID) (int, error)
	// Update persists the closing mutation of an existing record; a
	// missing row is model.ErrRecordNotFound.
	Update(ctx context.Context, rec *model.BorrowingRecord) error
	// ListByMember returns the member's full borrowing history, newest first.
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]model.BorrowingRecord, error)
}
