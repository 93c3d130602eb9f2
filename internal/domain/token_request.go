package domain

import "github.com/google/uuid"

// TokenRequest is an accepted token-creation request.
// Corresponds to token_requests table in PostgreSQL.
type TokenRequest struct {
	ID        uuid.UUID   // PRIMARY KEY
	Config    TokenConfig // validated configuration
	ChainID   *uint64     // selected network (nullable)
	Owner     *string     // connected wallet address (nullable)
	CreatedAt int64       // record creation timestamp (ms)
}

// ValidationSource identifies where a validation call came from.
type ValidationSource string

const (
	ValidationSourceHTTP      ValidationSource = "HTTP"
	ValidationSourceWebSocket ValidationSource = "WEBSOCKET"
	ValidationSourceCLI       ValidationSource = "CLI"
)

// String returns the string representation of ValidationSource.
func (s ValidationSource) String() string {
	return string(s)
}

// ValidationEvent records the outcome of one validation call.
// Corresponds to validation_events table in ClickHouse.
type ValidationEvent struct {
	ID              uuid.UUID
	Source          ValidationSource
	Valid           bool
	Errors          FieldErrors // empty when Valid
	AdvancedEnabled bool
	OccurredAt      int64 // Unix timestamp in milliseconds
}
