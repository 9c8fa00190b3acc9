package model

import "errors"

var (
	// Not Found
	ErrMemberNotFound = errors.New("member not found")

	// Conflict
	ErrEmailAlreadyExists = errors.New("email already exists")
)
