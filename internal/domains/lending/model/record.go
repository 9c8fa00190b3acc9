package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BorrowingRecord is one ledger entry per loan. A record is open while
// ReturnDate is nil; closing it sets the return date and the late fee in
// one step, after which the record never changes again.
type BorrowingRecord struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	BookID     uuid.UUID       `json:"book_id" db:"book_id"`
	MemberID   uuid.UUID       `json:"member_id" db:"member_id"`
	BorrowDate time.Time       `json:"borrow_date" db:"borrow_date"`
	DueDate    time.Time       `json:"due_date" db:"due_date"`
	ReturnDate *time.Time      `json:"return_date,omitempty" db:"return_date"`
	LateFee    decimal.Decimal `json:"late_fee" db:"late_fee"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func NewBorrowingRecord(bookID, memberID uuid.UUID, borrowDate, dueDate time.Time) *BorrowingRecord {
	now := time.Now()
	return &BorrowingRecord{
		ID:         uuid.New(),
		BookID:     bookID,
		MemberID:   memberID,
		BorrowDate: borrowDate,
		DueDate:    dueDate,
		LateFee:    decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Open reports whether the loan is still active.
func (r *BorrowingRecord) Open() bool {
	return r.ReturnDate == nil
}

// Close settles the loan on returnDate. Overdue days are charged at
// feePerDay; a return on or before the due date costs nothing.
func (r *BorrowingRecord) Close(returnDate time.Time, feePerDay decimal.Decimal) {
	r.ReturnDate = &returnDate
	if days := DaysOverdue(r.DueDate, returnDate); days > 0 {
		r.LateFee = feePerDay.Mul(decimal.NewFromInt(int64(days)))
	}
}

// DaysOverdue is the calendar-day difference between the due date and the
// return date, never negative. Both timestamps are reduced to dates first
// so time-of-day and zone offsets cannot skew the count.
func DaysOverdue(dueDate, returnDate time.Time) int {
	days := int(dateOf(returnDate).Sub(dateOf(dueDate)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// DateOf truncates a timestamp to its calendar date.
func DateOf(t time.Time) time.Time {
	return dateOf(t)
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ========================================
// DTOs
// ========================================

type BorrowBookRequest struct {
	MemberID uuid.UUID `json:"member_id" binding:"required"`
}

func (r BorrowBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.MemberID,
			validation.Required.Error("member_id is required"),
		),
	)
}
