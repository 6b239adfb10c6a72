package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ashita-ai/knapsack/internal/auth"
	"github.com/ashita-ai/knapsack/internal/ctxutil"
	"github.com/ashita-ai/knapsack/internal/model"
	"github.com/ashita-ai/knapsack/internal/service/problems"
	"github.com/ashita-ai/knapsack/internal/solver"
	"github.com/ashita-ai/knapsack/internal/storage"
)

// Handlers holds HTTP handler dependencies.
type Handlers struct {
	store               storage.Store
	jwtMgr              *auth.JWTManager
	problemSvc          *problems.Service
	logger              *slog.Logger
	startedAt           time.Time
	version             string
	storeName           string
	maxRequestBodyBytes int64
	openapiSpec         []byte
}

// HandlersDeps holds all dependencies for constructing Handlers.
type HandlersDeps struct {
	Store               storage.Store
	JWTMgr              *auth.JWTManager
	ProblemSvc          *problems.Service
	Logger              *slog.Logger
	Version             string
	StoreName           string
	MaxRequestBodyBytes int64
	OpenAPISpec         []byte
}

// NewHandlers creates a new Handlers with all dependencies.
func NewHandlers(d HandlersDeps) *Handlers {
	return &Handlers{
		store:               d.Store,
		jwtMgr:              d.JWTMgr,
		problemSvc:          d.ProblemSvc,
		logger:              d.Logger,
		startedAt:           time.Now(),
		version:             d.Version,
		storeName:           d.StoreName,
		maxRequestBodyBytes: d.MaxRequestBodyBytes,
		openapiSpec:         d.OpenAPISpec,
	}
}

// HandleOpenAPISpec serves the embedded OpenAPI document.
func (h *Handlers) HandleOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	if len(h.openapiSpec) == 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.openapiSpec)
}

// HandleHealth handles GET /api/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	storeStatus := "connected"
	httpStatus := http.StatusOK

	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Warn("health: store ping failed", "store", h.storeName, "error", err)
		status = "unhealthy"
		storeStatus = "disconnected"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, r, httpStatus, model.HealthResponse{
		Status:  status,
		Version: h.version,
		Store:   h.storeName + ":" + storeStatus,
		Uptime:  int64(time.Since(h.startedAt).Seconds()),
	})
}

// --- Shared helpers ---

// writeInternalError logs err and writes an opaque 500.
func (h *Handlers) writeInternalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(msg,
		"error", err,
		"request_id", ctxutil.RequestIDFromContext(r.Context()),
	)
	writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error")
}

// writeServiceError maps problems service errors onto HTTP responses.
func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *solver.ValidationError
	switch {
	case errors.As(err, &verr):
		writeErrorDetails(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, verr.Message,
			model.ValidationDetails{Kind: string(verr.Kind), Field: verr.Field, ItemID: verr.ItemID})
	case errors.Is(err, problems.ErrSolveTimeout):
		writeError(w, r, http.StatusServiceUnavailable, model.ErrCodeTimeout, "solve timed out")
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "problem not found")
	default:
		h.writeInternalError(w, r, op+" failed", err)
	}
}

// queryInt returns the integer query parameter key, defaultVal when absent.
func queryInt(r *http.Request, key string, defaultVal int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(key + " must be an integer")
	}
	return n, nil
}
