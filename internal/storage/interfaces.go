package storage

import (
	"context"

	"github.com/google/uuid"

	"memecoin-creator/internal/domain"
)

// TokenRequestStore provides access to token_requests storage.
type TokenRequestStore interface {
	// Insert adds a new request. Returns ErrDuplicateKey if id exists.
	Insert(ctx context.Context, r *domain.TokenRequest) error

	// GetByID retrieves a request by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TokenRequest, error)

	// GetBySymbol retrieves all requests for a symbol, ordered by created_at ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]*domain.TokenRequest, error)

	// ListRecent retrieves up to limit requests, newest first.
	ListRecent(ctx context.Context, limit int) ([]*domain.TokenRequest, error)
}

// ValidationEventStore provides access to validation_events storage.
type ValidationEventStore interface {
	// InsertBulk adds multiple events. Fails entire batch on duplicate id.
	InsertBulk(ctx context.Context, events []*domain.ValidationEvent) error

	// GetByTimeRange retrieves events within [start, end] (inclusive), ordered by occurred_at ASC.
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.ValidationEvent, error)

	// CountFieldErrors counts field errors by field and kind within [start, end] (inclusive).
	CountFieldErrors(ctx context.Context, start, end int64) (FieldErrorCounts, error)
}

// FieldErrorCounts holds error totals keyed by field, then kind.
type FieldErrorCounts map[domain.Field]map[domain.ErrorKind]int

// Add increments the counter for field/kind.
func (c FieldErrorCounts) Add(field domain.Field, kind domain.ErrorKind, n int) {
	byKind, ok := c[field]
	if !ok {
		byKind = make(map[domain.ErrorKind]int)
		c[field] = byKind
	}
	byKind[kind] += n
}
