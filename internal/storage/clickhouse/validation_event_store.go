package clickhouse

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"memecoin-creator/internal/domain"
	"memecoin-creator/internal/storage"
)

// ValidationEventStore implements storage.ValidationEventStore using ClickHouse.
type ValidationEventStore struct {
	conn *Conn
}

// NewValidationEventStore creates a new ValidationEventStore.
func NewValidationEventStore(conn *Conn) *ValidationEventStore {
	return &ValidationEventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ValidationEventStore = (*ValidationEventStore)(nil)

// InsertBulk adds multiple events. Fails entire batch on duplicate id.
func (s *ValidationEventStore) InsertBulk(ctx context.Context, events []*domain.ValidationEvent) error {
	if len(events) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[uuid.UUID]struct{}, len(events))
	ids := make([]string, 0, len(events))
	for _, e := range events {
		if e == nil || e.ID == uuid.Nil || !e.Errors.Known() {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[e.ID]; exists {
			return storage.ErrDuplicateKey
		}
		seen[e.ID] = struct{}{}
		ids = append(ids, e.ID.String())
	}

	// MergeTree does not enforce uniqueness, so check existing rows explicitly
	exists, err := s.anyExists(ctx, ids)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO validation_events (
			id, source, valid, error_fields, error_kinds, advanced_enabled, occurred_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, e := range events {
		fields, kinds := flattenErrors(e.Errors)
		err = batch.Append(
			e.ID, string(e.Source), boolToUInt8(e.Valid), fields, kinds,
			boolToUInt8(e.AdvancedEnabled), e.OccurredAt,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByTimeRange retrieves events within [start, end] (inclusive), ordered by occurred_at ASC.
func (s *ValidationEventStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.ValidationEvent, error) {
	query := `
		SELECT id, source, valid, error_fields, error_kinds, advanced_enabled, occurred_at
		FROM validation_events
		WHERE occurred_at >= ? AND occurred_at <= ?
		ORDER BY occurred_at ASC, id ASC
	`

	rows, err := s.conn.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanValidationEvents(rows)
}

// CountFieldErrors counts field errors by field and kind within [start, end] (inclusive).
func (s *ValidationEventStore) CountFieldErrors(ctx context.Context, start, end int64) (storage.FieldErrorCounts, error) {
	query := `
		SELECT field, kind, count() AS n
		FROM validation_events
		ARRAY JOIN error_fields AS field, error_kinds AS kind
		WHERE occurred_at >= ? AND occurred_at <= ?
		GROUP BY field, kind
	`

	rows, err := s.conn.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("count field errors: %w", err)
	}
	defer rows.Close()

	counts := make(storage.FieldErrorCounts)
	for rows.Next() {
		var field, kind string
		var n uint64
		if err := rows.Scan(&field, &kind, &n); err != nil {
			return nil, fmt.Errorf("scan field error count: %w", err)
		}
		counts.Add(domain.Field(field), domain.ErrorKind(kind), int(n))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate field error counts: %w", err)
	}

	return counts, nil
}

// anyExists reports whether any of ids is already stored.
func (s *ValidationEventStore) anyExists(ctx context.Context, ids []string) (bool, error) {
	query := `SELECT count(*) FROM validation_events WHERE toString(id) IN (?)`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, ids).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// flattenErrors turns FieldErrors into parallel arrays sorted by field.
func flattenErrors(fe domain.FieldErrors) ([]string, []string) {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)

	kinds := make([]string, len(fields))
	for i, f := range fields {
		kinds[i] = string(fe[domain.Field(f)])
	}
	return fields, kinds
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// scanValidationEvents scans multiple rows.
func scanValidationEvents(rows chRows) ([]*domain.ValidationEvent, error) {
	var events []*domain.ValidationEvent

	for rows.Next() {
		var e domain.ValidationEvent
		var source string
		var valid, advanced uint8
		var fields, kinds []string

		err := rows.Scan(&e.ID, &source, &valid, &fields, &kinds, &advanced, &e.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("scan validation event row: %w", err)
		}
		if len(fields) != len(kinds) {
			return nil, fmt.Errorf("validation event %s: %d fields but %d kinds", e.ID, len(fields), len(kinds))
		}

		e.Source = domain.ValidationSource(source)
		e.Valid = valid == 1
		e.AdvancedEnabled = advanced == 1
		if len(fields) > 0 {
			e.Errors = make(domain.FieldErrors, len(fields))
			for i, f := range fields {
				e.Errors[domain.Field(f)] = domain.ErrorKind(kinds[i])
			}
		}
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate validation event rows: %w", err)
	}

	return events, nil
}

type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}
