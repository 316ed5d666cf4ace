// Package returns files post-delivery return and replacement requests and lists
// the requests already filed for a shipment.
//
// Requests are accepted only for shipments the tracking view marks
// return-eligible: a carrier record exists and the shipment was delivered.
// Eligibility is re-derived on every submission rather than trusted from the
// client. Submissions are sent once; a failed submission is reported to the
// caller, who may retry.
package returns

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"storefront-tracker/internal/adapter"
	"storefront-tracker/internal/model"
)

// Eligibility derives the tracking view used to gate submissions.
// Confirm must report a failed lookup as an error rather than a fallback view.
// *tracking.Projector satisfies it.
type Eligibility interface {
	Confirm(ctx context.Context, identifier string) (*model.Projection, error)
}

// Desk validates, gates and forwards return requests.
type Desk struct {
	store    adapter.ReturnDesk
	gate     Eligibility
	validate *validator.Validate
	logger   *slog.Logger
}

// NewDesk creates a Desk over the given return store and eligibility gate.
func NewDesk(store adapter.ReturnDesk, gate Eligibility, logger *slog.Logger) *Desk {
	if logger == nil {
		logger = slog.Default()
	}
	return &Desk{
		store:    store,
		gate:     gate,
		validate: newValidator(),
		logger:   logger,
	}
}

// Validate checks a request without submitting it.
func (d *Desk) Validate(req *model.ReturnRequest) error {
	if req == nil {
		return model.NewValidationError("request", "body is required")
	}
	if err := d.validate.Struct(req); err != nil {
		return toAPIError(err)
	}
	return nil
}

// Submit files a return or replacement request.
//
// The request is validated, then the tracking number is projected again; a
// shipment that is not return-eligible is rejected. When the carrier cannot
// be reached the submission fails with a retryable transport error. The stored request uses
// the carrier's airway-bill number and booked order reference.
func (d *Desk) Submit(ctx context.Context, req *model.ReturnRequest) (*model.ReturnReceipt, error) {
	if req == nil {
		return nil, model.NewValidationError("request", "body is required")
	}
	r := normalize(*req)
	if err := d.Validate(&r); err != nil {
		return nil, err
	}

	proj, err := d.gate.Confirm(ctx, r.TrackingNumber)
	if err != nil {
		return nil, err
	}
	if !proj.ReturnEligible || proj.Track == nil {
		d.logger.Info("return request rejected",
			slog.String("tracking_number", r.TrackingNumber),
			slog.String("state", string(proj.State)),
			slog.Bool("delivered", proj.Delivered),
		)
		return nil, model.NewReturnNotAvailableError()
	}

	r.TrackingNumber = proj.Track.AirWayBillNo
	if r.OrderID == "" {
		r.OrderID = proj.Track.OrderReference()
	}

	receipt, err := d.store.SubmitReturn(ctx, &r)
	if err != nil {
		d.logger.Warn("return submission failed",
			slog.String("tracking_number", r.TrackingNumber),
			slog.String("type", string(r.Type)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	d.logger.Info("return request filed",
		slog.String("tracking_number", r.TrackingNumber),
		slog.String("order_id", r.OrderID),
		slog.String("type", string(r.Type)),
		slog.String("request_id", receipt.RequestID),
		slog.Int("images", len(r.Images)),
	)
	return receipt, nil
}

// Status lists the requests already filed for a tracking number.
// Existing requests never block a new submission.
func (d *Desk) Status(ctx context.Context, trackingNumber string) (*model.ReturnStatus, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return nil, model.NewMissingIdentifierError("tracking number")
	}
	return d.store.ReturnStatus(ctx, trackingNumber)
}

func normalize(r model.ReturnRequest) model.ReturnRequest {
	r.TrackingNumber = strings.TrimSpace(r.TrackingNumber)
	r.OrderID = strings.TrimSpace(r.OrderID)
	r.Reason = strings.TrimSpace(r.Reason)
	r.Comments = strings.TrimSpace(r.Comments)
	r.CustomerName = strings.TrimSpace(r.CustomerName)
	r.CustomerEmail = strings.TrimSpace(r.CustomerEmail)
	r.CustomerPhone = strings.TrimSpace(r.CustomerPhone)
	return r
}
