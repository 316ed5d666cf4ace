// Package handler provides HTTP handlers for the storefront status API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"storefront-tracker/internal/adapter"
	"storefront-tracker/internal/flight"
	"storefront-tracker/internal/model"
	"storefront-tracker/internal/reconcile"
	"storefront-tracker/internal/returns"
	"storefront-tracker/internal/tracking"
	"storefront-tracker/internal/webhook"
)

// Config tunes the services a Handler builds over its adapter.
type Config struct {
	Currency string        // Fallback display currency. Default: AED
	Timeout  time.Duration // Per upstream call. Default: 10s
	Now      func() time.Time
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	resolver  *reconcile.Resolver
	projector *tracking.Projector
	desk      *returns.Desk
	ingestor  *webhook.Ingestor
	logger    *slog.Logger
}

// New creates a Handler whose resolver, projector, return desk and webhook
// ingestor all read and write through a.
func New(a adapter.Adapter, cfg Config, logger *slog.Logger) *Handler {
	projector := tracking.NewDefaultProjector(a, tracking.Config{
		Timeout: cfg.Timeout,
		Returns: a,
		Logger:  logger,
	})

	return &Handler{
		resolver: reconcile.NewResolver(a, reconcile.Config{
			Currency: cfg.Currency,
			Timeout:  cfg.Timeout,
			Logger:   logger,
		}),
		projector: projector,
		desk:      returns.NewDesk(a, projector, logger),
		ingestor: webhook.NewIngestor(a, webhook.Config{
			Timeout: cfg.Timeout,
			Logger:  logger,
			Now:     cfg.Now,
		}),
		logger: logger,
	}
}

// RegisterRoutes registers all HTTP routes with the given ServeMux.
// Uses Go 1.22+ method routing patterns.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Payment redirect views
	mux.HandleFunc("GET /orders/{id}/status", h.handleOrderStatus)
	mux.HandleFunc("GET /orders/{id}/cancellation", h.handleCancellation)

	// Shipment tracking and returns
	mux.HandleFunc("GET /tracking/{identifier}", h.handleTracking)
	mux.HandleFunc("GET /returns/{tracking}", h.handleReturnStatus)
	mux.HandleFunc("POST /returns", h.handleSubmitReturn)

	// Gateway callbacks
	mux.HandleFunc("POST /webhooks/tabby", h.handleTabbyWebhook)
	mux.HandleFunc("POST /webhooks/tamara", h.handleTamaraWebhook)
	mux.HandleFunc("POST /webhooks/stripe", h.handleStripeWebhook)
	mux.HandleFunc("POST /orders/{id}/cod-confirmation", h.handleConfirmCOD)

	// MCP transport - JSON-RPC endpoint using official MCP SDK
	mux.Handle("/mcp", h.NewMCPHandler())

	// Health check
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /healthz", h.handleHealth)
}

// === Flight Delivery ===

// withView stamps view on the request's flight token when the client did not
// name one, so logs and abandonment reports carry the initiating view.
func withView(r *http.Request, view string) *http.Request {
	tok, ok := flight.FromContext(r.Context())
	if !ok {
		tok = flight.New(view)
	} else if tok.View == "" {
		tok.View = view
	} else {
		return r
	}
	return r.WithContext(flight.WithToken(r.Context(), tok))
}

// respond runs fn under the request's flight and writes its result.
// A result that arrives after the client went away is dropped, not written.
func respond[T any](h *Handler, w http.ResponseWriter, r *http.Request, status int, fn func(context.Context) (T, error)) {
	v, err := flight.Run(r.Context(), fn)
	if errors.Is(err, flight.ErrAbandoned) {
		h.logger.LogAttrs(r.Context(), slog.LevelDebug, "result discarded, request abandoned",
			append(flight.LogAttrs(r), slog.String("path", r.URL.Path))...)
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, status, v)
}

// === Response Helpers ===

// writeJSON sends a JSON response with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError sends an error response, extracting status/code from APIError if present.
// Uses errors.As() to unwrap error chains (e.g., fmt.Errorf wrapping).
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError

	if errors.As(err, &apiErr) {
		// Found APIError in error chain - use it
	} else {
		// Wrap unexpected errors
		apiErr = &model.APIError{
			Code:       "INTERNAL_ERROR",
			Message:    "an internal error occurred",
			StatusCode: http.StatusInternalServerError,
		}
		h.logger.Error("internal error", slog.String("error", err.Error()))
	}

	h.writeJSON(w, apiErr.StatusCode, errorResponse{
		Error: errorBody{
			Code:    apiErr.Code,
			Message: apiErr.Message,
		},
	})
}

// errorResponse is the JSON structure for error responses.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MaxRequestBodySize limits JSON request bodies to 1MB to prevent DoS.
const MaxRequestBodySize = 1 << 20 // 1MB

// MaxReturnBodySize fits five base64 images at returns.MaxImageBytes each.
const MaxReturnBodySize = 40 << 20

// decodeJSON reads JSON from request body into v.
// Limits body size to MaxRequestBodySize to prevent memory exhaustion.
// Returns an APIError if decoding fails.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return decodeJSONLimit(w, r, v, MaxRequestBodySize)
}

func decodeJSONLimit(w http.ResponseWriter, r *http.Request, v interface{}, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return model.NewValidationError("body", "request too large")
		}
		// Don't expose internal error details to client
		return model.NewValidationError("body", "invalid JSON")
	}
	return nil
}
