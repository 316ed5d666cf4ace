package handler

import (
	"context"
	"net/http"

	"storefront-tracker/internal/flight"
	"storefront-tracker/internal/webhook"
)

// Gateway callbacks write to the order store. The write is finished even if
// the gateway hangs up first; the ingestor bounds it with its own timeout.

// handleTabbyWebhook applies a Tabby payment event.
// POST /webhooks/tabby
func (h *Handler) handleTabbyWebhook(w http.ResponseWriter, r *http.Request) {
	var ev webhook.TabbyEvent
	if err := decodeJSON(w, r, &ev); err != nil {
		h.writeError(w, err)
		return
	}
	h.applyWebhook(w, r, func(ctx context.Context) (*webhook.Result, error) {
		return h.ingestor.Tabby(ctx, &ev)
	})
}

// handleTamaraWebhook applies a Tamara payment event.
// POST /webhooks/tamara
func (h *Handler) handleTamaraWebhook(w http.ResponseWriter, r *http.Request) {
	var ev webhook.TamaraEvent
	if err := decodeJSON(w, r, &ev); err != nil {
		h.writeError(w, err)
		return
	}
	h.applyWebhook(w, r, func(ctx context.Context) (*webhook.Result, error) {
		return h.ingestor.Tamara(ctx, &ev)
	})
}

// handleStripeWebhook applies a Stripe checkout session event.
// POST /webhooks/stripe
func (h *Handler) handleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	var ev webhook.StripeEvent
	if err := decodeJSON(w, r, &ev); err != nil {
		h.writeError(w, err)
		return
	}
	h.applyWebhook(w, r, func(ctx context.Context) (*webhook.Result, error) {
		return h.ingestor.Stripe(ctx, &ev)
	})
}

// handleConfirmCOD marks a cash-on-delivery order as processing.
// POST /orders/{id}/cod-confirmation
func (h *Handler) handleConfirmCOD(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("id")
	h.applyWebhook(w, r, func(ctx context.Context) (*webhook.Result, error) {
		return h.ingestor.ConfirmCOD(ctx, orderID)
	})
}

func (h *Handler) applyWebhook(w http.ResponseWriter, r *http.Request, fn func(context.Context) (*webhook.Result, error)) {
	r = withView(r, flight.ViewWebhook)

	res, err := fn(context.WithoutCancel(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}
