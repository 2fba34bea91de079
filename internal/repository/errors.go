package repository

import "errors"

// This file defines custom errors specific to the repository layer.
// This allows the repository to communicate outcomes in a database-agnostic way.
// The service layer checks for these and translates them into domain-level
// errors, decoupling business logic from the data access implementation.

var (
	// ErrNotFound is returned when a query for a single entity
	// (e.g., GetConversationBySession) finds no rows. It abstracts away the
	// underlying driver's error (e.g., `sql.ErrNoRows`).
	ErrNotFound = errors.New("repository: not found")

	// ErrDuplicate is returned when an insert violates a uniqueness
	// constraint, such as two concurrent creates racing on the same session
	// token. The caller is expected to re-fetch the winning row.
	ErrDuplicate = errors.New("repository: duplicate entry")
)
