package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Book is the catalog entity. BorrowedBy and DueDate are loan state: they
// are set together when a book is lent out and cleared together on return.
// Only the lending service may change them.
type Book struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	Title      string     `json:"title" db:"title"`
	Author     string     `json:"author" db:"author"`
	Available  bool       `json:"available" db:"available"`
	BorrowedBy *uuid.UUID `json:"borrowed_by,omitempty" db:"borrowed_by"`
	DueDate    *time.Time `json:"due_date,omitempty" db:"due_date"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// MarkBorrowed transitions the book into the lent-out state.
func (b *Book) MarkBorrowed(memberID uuid.UUID, dueDate time.Time) {
	b.Available = false
	b.BorrowedBy = &memberID
	b.DueDate = &dueDate
}

// MarkReturned transitions the book back to the shelf, clearing loan state.
func (b *Book) MarkReturned() {
	b.Available = true
	b.BorrowedBy = nil
	b.DueDate = nil
}

// ========================================
// DTOs
// ========================================

type CreateBookRequest struct {
	Title  string `json:"title" binding:"required"`
	Author string `json:"author" binding:"required"`
}

func (r CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, 500),
		),
		validation.Field(&r.Author,
			validation.Required.Error("author is required"),
			validation.Length(1, 255),
		),
	)
}

// UpdateBookRequest replaces the mutable fields of a book. Loan state
// (borrower, due date) is deliberately absent; it only changes through
// borrow/return.
type UpdateBookRequest struct {
	Title     string `json:"title" binding:"required"`
	Author    string `json:"author" binding:"required"`
	Available bool   `json:"available"`
}

func (r UpdateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, 500),
		),
		validation.Field(&r.Author,
			validation.Required.Error("author is required"),
			validation.Length(1, 255),
		),
	)
}

// SearchBooksQuery carries the optional search criteria. Supplied criteria
// are combined with AND; omitted ones do not filter.
type SearchBooksQuery struct {
	Title     *string `json:"title" form:"title"`
	Author    *string `json:"author" form:"author"`
	Available *bool   `json:"available" form:"available"`
}
