package api

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memecoin-creator/internal/domain"
	"memecoin-creator/internal/network"
	"memecoin-creator/internal/observability"
	"memecoin-creator/internal/storage/memory"
)

// captureRecorder keeps recorded events in memory.
type captureRecorder struct {
	mu     sync.Mutex
	events []*domain.ValidationEvent
}

func (r *captureRecorder) Record(e *domain.ValidationEvent) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return true
}

func (r *captureRecorder) recorded() []*domain.ValidationEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.ValidationEvent(nil), r.events...)
}

var fixedNow = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type serviceFixture struct {
	service  *TokenService
	recorder *captureRecorder
	metrics  *observability.Metrics
	requests *memory.TokenRequestStore
	events   *memory.ValidationEventStore
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		recorder: &captureRecorder{},
		metrics:  testMetrics(),
		requests: memory.NewTokenRequestStore(),
		events:   memory.NewValidationEventStore(),
	}
	f.service = NewTokenService(ServiceOptions{
		Requests: f.requests,
		Events:   f.events,
		Recorder: f.recorder,
		Metrics:  f.metrics,
		Now:      func() time.Time { return fixedNow },
	})
	return f
}

func validInput() domain.TokenConfigInput {
	return domain.TokenConfigInput{
		Name:          "Gold Token",
		Symbol:        "GLT",
		InitialSupply: "21000000",
		Decimals:      18,
	}
}

func boolPtr(b bool) *bool { return &b }

func TestTokenService_ValidateValid(t *testing.T) {
	f := newServiceFixture()

	result := f.service.Validate(domain.ValidationSourceHTTP, validInput())

	require.True(t, result.Valid)
	require.NotNil(t, result.Config)
	assert.Equal(t, "GLT", result.Config.Basic.Symbol)
	assert.False(t, result.Config.AdvancedEnabled())
	assert.Empty(t, result.Errors)
	assert.Equal(t, "21,000,000", result.ApproxTokenCount)

	events := f.recorder.recorded()
	require.Len(t, events, 1)
	assert.True(t, events[0].Valid)
	assert.Equal(t, domain.ValidationSourceHTTP, events[0].Source)
	assert.Equal(t, fixedNow.UnixMilli(), events[0].OccurredAt)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ValidationsTotal.WithLabelValues("HTTP", "valid")))
}

func TestTokenService_ValidateInvalid(t *testing.T) {
	f := newServiceFixture()

	input := validInput()
	input.Name = ""
	input.Decimals = 19

	result := f.service.Validate(domain.ValidationSourceWebSocket, input)

	assert.False(t, result.Valid)
	assert.Nil(t, result.Config)
	assert.True(t, result.Errors.Has(domain.FieldName, domain.ErrorEmptyField))
	assert.True(t, result.Errors.Has(domain.FieldDecimals, domain.ErrorOutOfRange))

	events := f.recorder.recorded()
	require.Len(t, events, 1)
	assert.False(t, events[0].Valid)
	assert.Len(t, events[0].Errors, 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.FieldErrorsTotal.WithLabelValues("name", "EmptyField")))
}

func TestTokenService_CreateStoresRequest(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	input := validInput()
	input.AdvancedEnabled = true
	input.CanBurn = boolPtr(true)
	chainID := uint64(network.PolygonAmoyID)
	owner := "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"

	tr, fieldErrs, err := f.service.Create(ctx, CreateRequest{
		TokenConfigInput: input,
		ChainID:          &chainID,
		Owner:            &owner,
	})
	require.NoError(t, err)
	require.Empty(t, fieldErrs)
	require.NotNil(t, tr)

	assert.True(t, tr.Config.Flags().CanBurn)
	assert.Equal(t, fixedNow.UnixMilli(), tr.CreatedAt)
	require.NotNil(t, tr.Owner)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", *tr.Owner)

	stored, err := f.service.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.True(t, stored.Config.Equal(tr.Config))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.TokenRequestsStored))
}

func TestTokenService_CreateInvalidStoresNothing(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	input := validInput()
	input.InitialSupply = "-5"

	tr, fieldErrs, err := f.service.Create(ctx, CreateRequest{TokenConfigInput: input})
	require.NoError(t, err)
	assert.Nil(t, tr)
	assert.True(t, fieldErrs.Has(domain.FieldInitialSupply, domain.ErrorNotPositive))

	recent, err := f.service.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestTokenService_CreateRejectsRequestErrors(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	unknownChain := uint64(1)
	_, _, err := f.service.Create(ctx, CreateRequest{TokenConfigInput: validInput(), ChainID: &unknownChain})
	assert.ErrorIs(t, err, ErrUnsupportedChain)

	badOwner := "not-an-address"
	_, _, err = f.service.Create(ctx, CreateRequest{TokenConfigInput: validInput(), Owner: &badOwner})
	assert.ErrorIs(t, err, ErrInvalidOwner)

	// Request errors are reported before validation runs.
	assert.Empty(t, f.recorder.recorded())
}

func TestTokenService_BySymbol(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, _, err := f.service.Create(ctx, CreateRequest{TokenConfigInput: validInput()})
		require.NoError(t, err)
	}

	requests, err := f.service.BySymbol(ctx, "GLT")
	require.NoError(t, err)
	assert.Len(t, requests, 2)
}

func TestTokenService_Decimals(t *testing.T) {
	f := newServiceFixture()

	tests := []struct {
		name     string
		current  int
		action   DecimalsAction
		value    string
		want     int
		rejected bool
		kind     domain.ErrorKind
	}{
		{"increment", 17, DecimalsIncrement, "", 18, false, ""},
		{"increment clamps at max", 18, DecimalsIncrement, "", 18, false, ""},
		{"decrement clamps at min", 1, DecimalsDecrement, "", 1, false, ""},
		{"enter in range", 18, DecimalsEnter, "6", 6, false, ""},
		{"enter above range", 6, DecimalsEnter, "25", 6, true, domain.ErrorOutOfRange},
		{"enter not numeric", 6, DecimalsEnter, "abc", 6, true, domain.ErrorNotNumeric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := f.service.Decimals(tt.current, tt.action, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Decimals)
			assert.Equal(t, tt.rejected, result.Rejected)
			assert.Equal(t, tt.kind, result.Kind)
		})
	}

	_, err := f.service.Decimals(6, DecimalsAction("reset"), "")
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.DecimalsActions.WithLabelValues("enter", "rejected")))
}

func TestTokenService_FieldErrorStats(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	require.NoError(t, f.events.InsertBulk(ctx, []*domain.ValidationEvent{
		{
			ID:         testEvent(0).ID,
			Source:     domain.ValidationSourceHTTP,
			Errors:     domain.FieldErrors{domain.FieldSymbol: domain.ErrorTooLong},
			OccurredAt: 1000,
		},
	}))

	counts, err := f.service.FieldErrorStats(ctx, 0, 2000)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[domain.FieldSymbol][domain.ErrorTooLong])

	noStats := NewTokenService(ServiceOptions{Requests: f.requests, Metrics: testMetrics()})
	_, err = noStats.FieldErrorStats(ctx, 0, 2000)
	assert.ErrorIs(t, err, ErrStatsUnavailable)
}
