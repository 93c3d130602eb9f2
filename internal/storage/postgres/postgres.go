package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"memecoin-creator/internal/storage"
)

const applicationName = "memecoin-creator"

// Pool is the connection pool shared by the Postgres stores.
type Pool struct {
	*pgxpool.Pool
}

// NewPool connects to dsn and pings the server. The session is tagged with
// the service name unless the DSN sets application_name.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if _, ok := config.ConnConfig.RuntimeParams["application_name"]; !ok {
		config.ConnConfig.RuntimeParams["application_name"] = applicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// SQLSTATE codes mapped to storage errors.
const (
	pgErrUniqueViolation = "23505"
	pgErrCheckViolation  = "23514"
	pgErrStringTooLong   = "22001"
	pgErrBadCharacter    = "22021" // e.g. a NUL byte in a text value
)

// writeError maps a failed write to storage.ErrDuplicateKey or
// storage.ErrInvalidInput where the server rejected the row itself.
func writeError(op string, err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, err)
	}

	switch pgErr.Code {
	case pgErrUniqueViolation:
		return storage.ErrDuplicateKey
	case pgErrCheckViolation:
		return fmt.Errorf("%w: violates %s", storage.ErrInvalidInput, pgErr.ConstraintName)
	case pgErrStringTooLong, pgErrBadCharacter:
		return fmt.Errorf("%w: %s", storage.ErrInvalidInput, pgErr.Message)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func isNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
