package service

import (
	"context"

	"github.com/google/uuid"

	bookmodel "library-backend/internal/domains/book/model"
	"library-backend/internal/domains/lending/model"
)

// Service is the lending engine: it owns every loan state transition and
// keeps the book store and the borrowing ledger consistent with each other.
type Service interface {
	// BorrowBook lends a book to a member and returns the updated book.
	BorrowBook(ctx context.Context, bookID, memberID uuid.UUID) (*bookmodel.Book, error)
	// ReturnBook closes the active loan for a book, settling any late fee,
	// and returns the updated book.
	ReturnBook(ctx context.Context, bookID uuid.UUID) (*bookmodel.Book, error)
	// ListMemberLoans returns a member's borrowing history.
	ListMemberLoans(ctx context.Context, memberID uuid.UUID) ([]model.BorrowingRecord, error)
}
