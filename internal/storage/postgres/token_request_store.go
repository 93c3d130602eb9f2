package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"memecoin-creator/internal/domain"
	"memecoin-creator/internal/storage"
)

// TokenRequestStore implements storage.TokenRequestStore using PostgreSQL.
type TokenRequestStore struct {
	pool *Pool
}

// NewTokenRequestStore creates a new TokenRequestStore.
func NewTokenRequestStore(pool *Pool) *TokenRequestStore {
	return &TokenRequestStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenRequestStore = (*TokenRequestStore)(nil)

const tokenRequestColumns = `
	id, name, symbol, initial_supply, decimals, advanced_enabled,
	can_burn, can_mint, can_pause, blacklist_enabled, deflation_enabled, super_deflation_enabled,
	chain_id, owner, created_at`

// Insert adds a new request. Returns ErrDuplicateKey if id exists and
// ErrInvalidInput if the server rejects the row's values.
func (s *TokenRequestStore) Insert(ctx context.Context, r *domain.TokenRequest) error {
	if r == nil || r.ID == uuid.Nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO token_requests (` + tokenRequestColumns + `
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	// Flags stay NULL for the basic variant.
	var canBurn, canMint, canPause, blacklist, deflation, superDeflation *bool
	if adv := r.Config.Advanced; adv != nil {
		canBurn = &adv.CanBurn
		canMint = &adv.CanMint
		canPause = &adv.CanPause
		blacklist = &adv.BlacklistEnabled
		deflation = &adv.DeflationEnabled
		superDeflation = &adv.SuperDeflationEnabled
	}

	var chainID *int64
	if r.ChainID != nil {
		v := int64(*r.ChainID)
		chainID = &v
	}

	_, err := s.pool.Exec(ctx, query,
		r.ID,
		r.Config.Basic.Name,
		r.Config.Basic.Symbol,
		r.Config.Basic.InitialSupply,
		int16(r.Config.Basic.Decimals),
		r.Config.AdvancedEnabled(),
		canBurn,
		canMint,
		canPause,
		blacklist,
		deflation,
		superDeflation,
		chainID,
		r.Owner,
		r.CreatedAt,
	)
	if err != nil {
		return writeError("insert token request", err)
	}
	return nil
}

// GetByID retrieves a request by its ID. Returns ErrNotFound if not exists.
func (s *TokenRequestStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.TokenRequest, error) {
	query := `SELECT ` + tokenRequestColumns + ` FROM token_requests WHERE id = $1`

	r, err := scanTokenRequest(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token request by id: %w", err)
	}
	return r, nil
}

// GetBySymbol retrieves all requests for a symbol, ordered by created_at ASC.
func (s *TokenRequestStore) GetBySymbol(ctx context.Context, symbol string) ([]*domain.TokenRequest, error) {
	query := `
		SELECT ` + tokenRequestColumns + `
		FROM token_requests
		WHERE symbol = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("get token requests by symbol: %w", err)
	}
	defer rows.Close()

	return scanTokenRequests(rows)
}

// ListRecent retrieves up to limit requests, newest first.
func (s *TokenRequestStore) ListRecent(ctx context.Context, limit int) ([]*domain.TokenRequest, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `
		SELECT ` + tokenRequestColumns + `
		FROM token_requests
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent token requests: %w", err)
	}
	defer rows.Close()

	return scanTokenRequests(rows)
}

// scanTokenRequest scans a single row into a TokenRequest.
func scanTokenRequest(row pgx.Row) (*domain.TokenRequest, error) {
	var (
		r               domain.TokenRequest
		b               domain.BasicFields
		decimals        int16
		advancedEnabled bool
		flags           [6]*bool
		chainID         *int64
	)

	err := row.Scan(
		&r.ID,
		&b.Name,
		&b.Symbol,
		&b.InitialSupply,
		&decimals,
		&advancedEnabled,
		&flags[0],
		&flags[1],
		&flags[2],
		&flags[3],
		&flags[4],
		&flags[5],
		&chainID,
		&r.Owner,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Decimals = uint8(decimals)
	if advancedEnabled {
		r.Config = domain.NewAdvancedConfig(b, domain.AdvancedFields{
			CanBurn:               deref(flags[0]),
			CanMint:               deref(flags[1]),
			CanPause:              deref(flags[2]),
			BlacklistEnabled:      deref(flags[3]),
			DeflationEnabled:      deref(flags[4]),
			SuperDeflationEnabled: deref(flags[5]),
		})
	} else {
		r.Config = domain.NewBasicConfig(b)
	}

	if chainID != nil {
		v := uint64(*chainID)
		r.ChainID = &v
	}

	return &r, nil
}

// scanTokenRequests scans multiple rows into a slice of TokenRequest.
func scanTokenRequests(rows pgx.Rows) ([]*domain.TokenRequest, error) {
	var requests []*domain.TokenRequest

	for rows.Next() {
		r, err := scanTokenRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan token request row: %w", err)
		}
		requests = append(requests, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate token request rows: %w", err)
	}

	return requests, nil
}

func deref(b *bool) bool {
	return b != nil && *b
}
