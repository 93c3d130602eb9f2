package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"memecoin-creator/internal/domain"
	"memecoin-creator/internal/network"
	"memecoin-creator/internal/observability"
	"memecoin-creator/internal/storage"
	"memecoin-creator/internal/tokenconfig"
)

var (
	// ErrUnsupportedChain is returned when a request names an unknown chain id.
	ErrUnsupportedChain = errors.New("unsupported chain")
	// ErrInvalidOwner is returned when the owner is not an EVM address.
	ErrInvalidOwner = errors.New("owner is not a valid address")
	// ErrStatsUnavailable is returned when no event store is configured.
	ErrStatsUnavailable = errors.New("validation stats unavailable")
	// ErrUnknownAction is returned for an unrecognised decimals action.
	ErrUnknownAction = errors.New("unknown decimals action")
)

// ValidationResult is the outcome of validating one token form submission.
type ValidationResult struct {
	Valid            bool                `json:"valid"`
	Config           *domain.TokenConfig `json:"config,omitempty"`
	Errors           domain.FieldErrors  `json:"errors,omitempty"`
	ApproxTokenCount string              `json:"approxTokenCount"`
}

// CreateRequest is a token creation submission.
type CreateRequest struct {
	domain.TokenConfigInput
	ChainID *uint64 `json:"chainId,omitempty"`
	Owner   *string `json:"owner,omitempty"`
}

// DecimalsAction is one interaction with the decimals stepper.
type DecimalsAction string

const (
	DecimalsIncrement DecimalsAction = "increment"
	DecimalsDecrement DecimalsAction = "decrement"
	DecimalsEnter     DecimalsAction = "enter"
)

// DecimalsResult is the stepper state after an action.
type DecimalsResult struct {
	Decimals int              `json:"decimals"`
	Rejected bool             `json:"rejected"`
	Kind     domain.ErrorKind `json:"error,omitempty"`
}

// ServiceOptions configures TokenService.
type ServiceOptions struct {
	Requests  storage.TokenRequestStore
	Events    storage.ValidationEventStore // optional, for stats
	Recorder  EventRecorder                // optional
	Validator *tokenconfig.Validator       // Default: tokenconfig.New()
	Metrics   *observability.Metrics       // Default: observability.DefaultMetrics
	Logger    *zap.Logger                  // Default: no-op
	Now       func() time.Time             // Default: time.Now
}

// TokenService validates token configurations and stores accepted requests.
type TokenService struct {
	requests  storage.TokenRequestStore
	events    storage.ValidationEventStore
	recorder  EventRecorder
	validator *tokenconfig.Validator
	metrics   *observability.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewTokenService creates a TokenService.
func NewTokenService(opts ServiceOptions) *TokenService {
	s := &TokenService{
		requests:  opts.Requests,
		events:    opts.Events,
		recorder:  opts.Recorder,
		validator: opts.Validator,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if s.validator == nil {
		s.validator = tokenconfig.New()
	}
	if s.metrics == nil {
		s.metrics = observability.DefaultMetrics
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Validate checks input and records the outcome.
func (s *TokenService) Validate(source domain.ValidationSource, input domain.TokenConfigInput) ValidationResult {
	start := time.Now()
	cfg, errs := s.validator.Validate(input)
	s.metrics.RecordValidation(source, errs, time.Since(start))

	if s.recorder != nil {
		s.recorder.Record(&domain.ValidationEvent{
			ID:              uuid.New(),
			Source:          source,
			Valid:           len(errs) == 0,
			Errors:          errs,
			AdvancedEnabled: input.AdvancedEnabled,
			OccurredAt:      s.now().UnixMilli(),
		})
	}

	result := ValidationResult{
		Valid:            len(errs) == 0,
		ApproxTokenCount: tokenconfig.ApproxTokenCount(input.InitialSupply),
	}
	if result.Valid {
		result.Config = &cfg
	} else {
		result.Errors = errs
	}
	return result
}

// Create validates req and stores it when valid. Field errors are returned
// as a value; a non-nil error means the request itself could not be handled.
func (s *TokenService) Create(ctx context.Context, req CreateRequest) (*domain.TokenRequest, domain.FieldErrors, error) {
	if req.ChainID != nil {
		if _, ok := network.ByID(*req.ChainID); !ok {
			return nil, nil, fmt.Errorf("%w: %d", ErrUnsupportedChain, *req.ChainID)
		}
	}
	if req.Owner != nil && !common.IsHexAddress(*req.Owner) {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidOwner, *req.Owner)
	}

	result := s.Validate(domain.ValidationSourceHTTP, req.TokenConfigInput)
	if !result.Valid {
		return nil, result.Errors, nil
	}

	tr := &domain.TokenRequest{
		ID:        uuid.New(),
		Config:    *result.Config,
		ChainID:   req.ChainID,
		CreatedAt: s.now().UnixMilli(),
	}
	if req.Owner != nil {
		owner := common.HexToAddress(*req.Owner).Hex()
		tr.Owner = &owner
	}

	start := time.Now()
	err := s.requests.Insert(ctx, tr)
	s.metrics.RecordDBQuery("requests", "insert", time.Since(start), err)
	if err != nil {
		return nil, nil, fmt.Errorf("store token request: %w", err)
	}
	s.metrics.TokenRequestsStored.Inc()

	s.logger.Info("token request accepted",
		zap.String("id", tr.ID.String()),
		zap.String("name", tr.Config.Basic.Name),
		zap.String("symbol", tr.Config.Basic.Symbol),
		zap.String("initial_supply", tr.Config.Basic.InitialSupply),
		zap.Uint8("decimals", tr.Config.Basic.Decimals),
		zap.Bool("advanced", tr.Config.AdvancedEnabled()),
		zap.Any("flags", tr.Config.Flags()))

	return tr, nil, nil
}

// Get returns a stored request.
func (s *TokenService) Get(ctx context.Context, id uuid.UUID) (*domain.TokenRequest, error) {
	return s.requests.GetByID(ctx, id)
}

// BySymbol returns stored requests for symbol, oldest first.
func (s *TokenService) BySymbol(ctx context.Context, symbol string) ([]*domain.TokenRequest, error) {
	return s.requests.GetBySymbol(ctx, symbol)
}

// Recent returns up to limit stored requests, newest first.
func (s *TokenService) Recent(ctx context.Context, limit int) ([]*domain.TokenRequest, error) {
	return s.requests.ListRecent(ctx, limit)
}

// FieldErrorStats counts recorded field errors within [start, end] (ms).
func (s *TokenService) FieldErrorStats(ctx context.Context, start, end int64) (storage.FieldErrorCounts, error) {
	if s.events == nil {
		return nil, ErrStatsUnavailable
	}
	return s.events.CountFieldErrors(ctx, start, end)
}

// Decimals applies action to a stepper holding current.
func (s *TokenService) Decimals(current int, action DecimalsAction, value string) (DecimalsResult, error) {
	control := tokenconfig.NewDecimalsControl(current)

	var err error
	switch action {
	case DecimalsIncrement:
		control.Increment()
	case DecimalsDecrement:
		control.Decrement()
	case DecimalsEnter:
		_, err = control.Enter(value)
	default:
		return DecimalsResult{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	s.metrics.RecordDecimalsAction(string(action), err)

	result := DecimalsResult{Decimals: control.Value()}
	var rejection *tokenconfig.DecimalsRejection
	if errors.As(err, &rejection) {
		result.Rejected = true
		result.Kind = rejection.Kind
	}
	return result, nil
}
