package model

import "errors"

var (
	// Not Found
	ErrRecordNotFound = errors.New("borrowing record not found")

	// State conflicts
	ErrBookNotAvailable = errors.New("book is not available for borrowing")
	ErrNoActiveLoan     = errors.New("book is already available or has no active borrowing record")

	// Limit
	ErrBorrowingLimitExceeded = errors.New("member has reached the borrowing limit")
)
