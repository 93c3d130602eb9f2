// Package api provides the HTTP and WebSocket API for token configuration.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"memecoin-creator/internal/domain"
	"memecoin-creator/internal/logging"
	"memecoin-creator/internal/network"
	"memecoin-creator/internal/observability"
	"memecoin-creator/internal/storage"
	"memecoin-creator/internal/tokenconfig"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	maxBodyBytes     = 64 << 10
)

// RouterOptions configures the API router.
type RouterOptions struct {
	Service        *TokenService
	CORSOrigins    []string
	Metrics        *observability.Metrics // Default: observability.DefaultMetrics
	MetricsHandler http.Handler           // Default: observability.Handler()
	Logger         *zap.Logger            // Default: no-op
}

// Handler serves the token configuration API.
type Handler struct {
	service *TokenService
	metrics *observability.Metrics
	logger  *zap.Logger
	origins []string
}

// NewHandler creates a Handler.
func NewHandler(opts RouterOptions) *Handler {
	h := &Handler{
		service: opts.Service,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		origins: opts.CORSOrigins,
	}
	if h.metrics == nil {
		h.metrics = observability.DefaultMetrics
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	return h
}

// NewRouter builds the full API router.
func NewRouter(opts RouterOptions) http.Handler {
	h := NewHandler(opts)
	metricsHandler := opts.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = observability.Handler()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(h.instrument)

	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/v1", func(r chi.Router) {
		r.Mount("/tokens", h.Routes())
		r.Get("/networks", h.Networks)
		r.Get("/stats/field-errors", h.FieldErrorStats)
	})
	return r
}

// Routes returns a chi router with token routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/validate", h.Validate)
	r.Get("/validate/ws", h.ValidateWS)
	r.Post("/decimals", h.Decimals)
	r.Get("/supply-display", h.SupplyDisplay)
	r.Get("/defaults", h.Defaults)

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)

	return r
}

// instrument records request duration by route pattern and puts a logger
// tagged with the request id in the request context.
func (h *Handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := h.logger.With(zap.String("request_id", middleware.GetReqID(r.Context())))
		r = r.WithContext(logging.WithLogger(r.Context(), logger))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		h.metrics.HTTPRequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}

// ErrorResponse is the body of every non-validation error.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// TokenRequestResponse is the API format for a stored token request.
type TokenRequestResponse struct {
	ID        uuid.UUID          `json:"id"`
	Config    domain.TokenConfig `json:"config"`
	ChainID   *uint64            `json:"chainId,omitempty"`
	Owner     *string            `json:"owner,omitempty"`
	CreatedAt string             `json:"createdAt"`
}

func toTokenRequestResponse(tr *domain.TokenRequest) TokenRequestResponse {
	return TokenRequestResponse{
		ID:        tr.ID,
		Config:    tr.Config,
		ChainID:   tr.ChainID,
		Owner:     tr.Owner,
		CreatedAt: time.UnixMilli(tr.CreatedAt).UTC().Format(time.RFC3339Nano),
	}
}

// DecimalsRequest is the body of POST /v1/tokens/decimals.
type DecimalsRequest struct {
	Current int            `json:"current"`
	Action  DecimalsAction `json:"action"`
	Value   string         `json:"value,omitempty"`
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Validate handles POST /v1/tokens/validate.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var input domain.TokenConfigInput
	if !h.decode(w, r, &input) {
		return
	}

	result := h.service.Validate(domain.ValidationSourceHTTP, input)
	status := http.StatusOK
	if !result.Valid {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}

// Create handles POST /v1/tokens.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if !h.decode(w, r, &req) {
		return
	}

	tr, fieldErrs, err := h.service.Create(r.Context(), req)
	switch {
	case errors.Is(err, ErrUnsupportedChain), errors.Is(err, ErrInvalidOwner):
		h.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, storage.ErrInvalidInput):
		logging.FromContext(r.Context()).Warn("token request rejected by store", zap.Error(err))
		h.writeError(w, r, http.StatusBadRequest, "token request contains values that cannot be stored")
		return
	case err != nil:
		logging.FromContext(r.Context()).Error("create token request", zap.Error(err))
		h.writeError(w, r, http.StatusInternalServerError, "failed to store token request")
		return
	case len(fieldErrs) > 0:
		writeJSON(w, http.StatusUnprocessableEntity, ValidationResult{
			Valid:            false,
			Errors:           fieldErrs,
			ApproxTokenCount: tokenconfig.ApproxTokenCount(req.InitialSupply),
		})
		return
	}

	writeJSON(w, http.StatusCreated, toTokenRequestResponse(tr))
}

// Get handles GET /v1/tokens/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid token request id")
		return
	}

	tr, err := h.service.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		h.writeError(w, r, http.StatusNotFound, "token request not found")
		return
	}
	if err != nil {
		logging.FromContext(r.Context()).Error("get token request", zap.String("id", id.String()), zap.Error(err))
		h.writeError(w, r, http.StatusInternalServerError, "failed to load token request")
		return
	}
	writeJSON(w, http.StatusOK, toTokenRequestResponse(tr))
}

// List handles GET /v1/tokens. With ?symbol= it lists that symbol's
// requests oldest first; otherwise the most recent ones (?limit=, default 20).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var (
		requests []*domain.TokenRequest
		err      error
	)
	if symbol := r.URL.Query().Get("symbol"); symbol != "" {
		requests, err = h.service.BySymbol(r.Context(), symbol)
	} else {
		limit := defaultListLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err = strconv.Atoi(raw)
			if err != nil || limit < 1 || limit > maxListLimit {
				h.writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 100")
				return
			}
		}
		requests, err = h.service.Recent(r.Context(), limit)
	}
	if err != nil {
		logging.FromContext(r.Context()).Error("list token requests", zap.Error(err))
		h.writeError(w, r, http.StatusInternalServerError, "failed to list token requests")
		return
	}

	resp := make([]TokenRequestResponse, len(requests))
	for i, tr := range requests {
		resp[i] = toTokenRequestResponse(tr)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Decimals handles POST /v1/tokens/decimals.
func (h *Handler) Decimals(w http.ResponseWriter, r *http.Request) {
	var req DecimalsRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.Decimals(req.Current, req.Action, req.Value)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// SupplyDisplay handles GET /v1/tokens/supply-display.
func (h *Handler) SupplyDisplay(w http.ResponseWriter, r *http.Request) {
	supply := r.URL.Query().Get("initialSupply")
	writeJSON(w, http.StatusOK, map[string]string{
		"approxTokenCount": tokenconfig.ApproxTokenCount(supply),
	})
}

// Defaults handles GET /v1/tokens/defaults.
func (h *Handler) Defaults(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, tokenconfig.DefaultInput())
}

// Networks handles GET /v1/networks.
func (h *Handler) Networks(w http.ResponseWriter, _ *http.Request) {
	keys := network.Keys()
	chains := make([]network.Chain, 0, len(keys))
	for _, k := range keys {
		c, err := network.Lookup(k)
		if err != nil {
			continue
		}
		chains = append(chains, c)
	}
	writeJSON(w, http.StatusOK, chains)
}

// FieldErrorStats handles GET /v1/stats/field-errors?from=&to= (Unix ms).
// Without a range it covers the last 24 hours.
func (h *Handler) FieldErrorStats(w http.ResponseWriter, r *http.Request) {
	now := h.service.now().UnixMilli()
	from, err := queryInt64(r, "from", now-24*time.Hour.Milliseconds())
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "from must be a Unix timestamp in milliseconds")
		return
	}
	to, err := queryInt64(r, "to", now)
	if err != nil || to < from {
		h.writeError(w, r, http.StatusBadRequest, "to must be a Unix timestamp in milliseconds not before from")
		return
	}

	counts, err := h.service.FieldErrorStats(r.Context(), from, to)
	if errors.Is(err, ErrStatsUnavailable) {
		h.writeError(w, r, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err != nil {
		logging.FromContext(r.Context()).Error("count field errors", zap.Error(err))
		h.writeError(w, r, http.StatusInternalServerError, "failed to count field errors")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"from":   from,
		"to":     to,
		"counts": counts,
	})
}

func queryInt64(r *http.Request, key string, def int64) (int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

// decode reads a JSON body into v, writing a 400 on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:     msg,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
