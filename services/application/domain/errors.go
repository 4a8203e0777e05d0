package domain

import "errors"

// Sentinel errors for the application domain. Use errors.Is() to check these.
var (
	// ErrInvalidApplication indicates a create payload failed validation.
	ErrInvalidApplication = errors.New("invalid application")

	// ErrStoreOperation indicates the database rejected an operation: a
	// duplicate id on insert, a missing row on delete, or any other
	// server-reported constraint failure. Subtypes are not distinguished.
	ErrStoreOperation = errors.New("store operation failed")
)
