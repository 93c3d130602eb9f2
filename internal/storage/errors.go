package storage

import "errors"

var (
	// ErrNotFound means no token request has the requested id.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey means a record with the same id was already written.
	// Token requests and validation events are never updated in place.
	ErrDuplicateKey = errors.New("duplicate key: records are write-once")

	// ErrInvalidInput means the record cannot be written as given: it is nil,
	// has no id, carries an unknown error kind, or the backend refused one of
	// its values.
	ErrInvalidInput = errors.New("invalid input")
)
