package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"memecoin-creator/internal/domain"
	"memecoin-creator/internal/storage"
)

// ValidationEventStore is an in-memory implementation of storage.ValidationEventStore.
type ValidationEventStore struct {
	mu     sync.RWMutex
	ids    map[uuid.UUID]struct{}
	events []*domain.ValidationEvent
}

// NewValidationEventStore creates a new in-memory validation event store.
func NewValidationEventStore() *ValidationEventStore {
	return &ValidationEventStore{
		ids: make(map[uuid.UUID]struct{}),
	}
}

// InsertBulk adds multiple events atomically. Fails entire batch on any duplicate.
func (s *ValidationEventStore) InsertBulk(_ context.Context, events []*domain.ValidationEvent) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track ids in this batch to detect intra-batch duplicates
	batch := make(map[uuid.UUID]struct{}, len(events))
	for _, e := range events {
		if e == nil || e.ID == uuid.Nil || !e.Errors.Known() {
			return storage.ErrInvalidInput
		}
		if _, exists := s.ids[e.ID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batch[e.ID]; exists {
			return storage.ErrDuplicateKey
		}
		batch[e.ID] = struct{}{}
	}

	for _, e := range events {
		s.ids[e.ID] = struct{}{}
		s.events = append(s.events, copyEvent(e))
	}
	return nil
}

// GetByTimeRange retrieves events within [start, end] (inclusive), ordered by occurred_at ASC.
func (s *ValidationEventStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.ValidationEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ValidationEvent
	for _, e := range s.events {
		if e.OccurredAt >= start && e.OccurredAt <= end {
			result = append(result, copyEvent(e))
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].OccurredAt < result[j].OccurredAt
	})
	return result, nil
}

// CountFieldErrors counts field errors by field and kind within [start, end] (inclusive).
func (s *ValidationEventStore) CountFieldErrors(_ context.Context, start, end int64) (storage.FieldErrorCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(storage.FieldErrorCounts)
	for _, e := range s.events {
		if e.OccurredAt < start || e.OccurredAt > end {
			continue
		}
		for field, kind := range e.Errors {
			counts.Add(field, kind, 1)
		}
	}
	return counts, nil
}

func copyEvent(e *domain.ValidationEvent) *domain.ValidationEvent {
	c := *e
	if e.Errors != nil {
		c.Errors = make(domain.FieldErrors, len(e.Errors))
		for f, k := range e.Errors {
			c.Errors[f] = k
		}
	}
	return &c
}

var _ storage.ValidationEventStore = (*ValidationEventStore)(nil)
