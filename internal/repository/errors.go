package repository

import "errors"

var (
	// ErrNotFound is returned when no record exists for the given key
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateUsername is returned when creating an identity whose
	// username is already taken
	ErrDuplicateUsername = errors.New("username already exists")
)
