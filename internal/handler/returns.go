package handler

import (
	"context"
	"net/http"

	"storefront-tracker/internal/flight"
	"storefront-tracker/internal/model"
)

// handleReturnStatus lists return/replacement requests already filed.
// GET /returns/{tracking}
func (h *Handler) handleReturnStatus(w http.ResponseWriter, r *http.Request) {
	r = withView(r, flight.ViewReturns)
	trackingNumber := r.PathValue("tracking")

	respond(h, w, r, http.StatusOK, func(ctx context.Context) (*model.ReturnStatus, error) {
		return h.desk.Status(ctx, trackingNumber)
	})
}

// handleSubmitReturn files a return or replacement for a delivered shipment.
// POST /returns
func (h *Handler) handleSubmitReturn(w http.ResponseWriter, r *http.Request) {
	r = withView(r, flight.ViewReturns)

	var req model.ReturnRequest
	if err := decodeJSONLimit(w, r, &req, MaxReturnBodySize); err != nil {
		h.writeError(w, err)
		return
	}

	respond(h, w, r, http.StatusCreated, func(ctx context.Context) (*model.ReturnReceipt, error) {
		return h.desk.Submit(ctx, &req)
	})
}
