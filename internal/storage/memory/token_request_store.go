package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"memecoin-creator/internal/domain"
	"memecoin-creator/internal/storage"
)

// TokenRequestStore is an in-memory implementation of storage.TokenRequestStore.
type TokenRequestStore struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*domain.TokenRequest
	seq  []uuid.UUID // insertion order
}

// NewTokenRequestStore creates a new in-memory token request store.
func NewTokenRequestStore() *TokenRequestStore {
	return &TokenRequestStore{
		byID: make(map[uuid.UUID]*domain.TokenRequest),
	}
}

// Insert adds a new request. Returns ErrDuplicateKey if id already exists.
func (s *TokenRequestStore) Insert(_ context.Context, r *domain.TokenRequest) error {
	if r == nil || r.ID == uuid.Nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[r.ID]; exists {
		return storage.ErrDuplicateKey
	}

	s.byID[r.ID] = copyRequest(r)
	s.seq = append(s.seq, r.ID)
	return nil
}

// GetByID retrieves a request by ID. Returns ErrNotFound if not exists.
func (s *TokenRequestStore) GetByID(_ context.Context, id uuid.UUID) (*domain.TokenRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.byID[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyRequest(r), nil
}

// GetBySymbol retrieves all requests for a symbol, ordered by created_at ASC.
func (s *TokenRequestStore) GetBySymbol(_ context.Context, symbol string) ([]*domain.TokenRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TokenRequest
	for _, id := range s.seq {
		r := s.byID[id]
		if r.Config.Basic.Symbol == symbol {
			result = append(result, copyRequest(r))
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt < result[j].CreatedAt
	})
	return result, nil
}

// ListRecent retrieves up to limit requests, newest first.
func (s *TokenRequestStore) ListRecent(_ context.Context, limit int) ([]*domain.TokenRequest, error) {
	if limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*domain.TokenRequest, 0, len(s.seq))
	for i := len(s.seq) - 1; i >= 0; i-- {
		all = append(all, s.byID[s.seq[i]])
	}

	// Newest first; ties keep reverse insertion order.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt > all[j].CreatedAt
	})
	if len(all) > limit {
		all = all[:limit]
	}

	result := make([]*domain.TokenRequest, len(all))
	for i, r := range all {
		result[i] = copyRequest(r)
	}
	return result, nil
}

// copyRequest deep-copies a request so callers cannot mutate stored state.
func copyRequest(r *domain.TokenRequest) *domain.TokenRequest {
	c := *r
	if r.Config.Advanced != nil {
		adv := *r.Config.Advanced
		c.Config.Advanced = &adv
	}
	if r.ChainID != nil {
		chainID := *r.ChainID
		c.ChainID = &chainID
	}
	if r.Owner != nil {
		owner := *r.Owner
		c.Owner = &owner
	}
	return &c
}

var _ storage.TokenRequestStore = (*TokenRequestStore)(nil)
