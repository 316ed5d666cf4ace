package handler

import (
	"context"
	"net/http"

	"storefront-tracker/internal/flight"
	"storefront-tracker/internal/model"
	"storefront-tracker/internal/reconcile"
)

// handleOrderStatus resolves the order a payment gateway redirected back for.
// GET /orders/{id}/status?key=wc_order_...
func (h *Handler) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	r = withView(r, flight.ViewOrderStatus)
	req := reconcile.ResolveRequest{
		OrderID:  r.PathValue("id"),
		OrderKey: r.URL.Query().Get("key"),
	}

	respond(h, w, r, http.StatusOK, func(ctx context.Context) (*model.ResolvedStatus, error) {
		return h.resolver.Resolve(ctx, req)
	})
}

// handleCancellation builds the view for a payment the customer cancelled.
// GET /orders/{id}/cancellation?reason=...
func (h *Handler) handleCancellation(w http.ResponseWriter, r *http.Request) {
	r = withView(r, flight.ViewCancellation)
	req := reconcile.CancelRequest{
		OrderID: r.PathValue("id"),
		Reason:  r.URL.Query().Get("reason"),
	}

	respond(h, w, r, http.StatusOK, func(ctx context.Context) (*model.ResolvedStatus, error) {
		return h.resolver.ResolveCancellation(ctx, req)
	})
}

// handleTracking projects carrier data for a tracking number or order reference.
// GET /tracking/{identifier}
func (h *Handler) handleTracking(w http.ResponseWriter, r *http.Request) {
	r = withView(r, flight.ViewTracking)
	identifier := r.PathValue("identifier")

	respond(h, w, r, http.StatusOK, func(ctx context.Context) (*model.Projection, error) {
		return h.projector.Project(ctx, identifier)
	})
}

// handleHealth returns a simple health check response.
// GET /health, GET /healthz
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

type healthResponse struct {
	Status string `json:"status"`
}
