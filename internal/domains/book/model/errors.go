package model

import "errors"

var (
	// Not Found
	ErrBookNotFound = errors.New("book not found")

	// State conflict: a book cannot be forced available while a loan
	// is still open in the ledger.
	ErrBookHasActiveLoan = errors.New("book has an active borrowing record")
)
