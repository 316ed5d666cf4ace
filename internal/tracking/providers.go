package tracking

import (
	"context"

	"storefront-tracker/internal/adapter"
	"storefront-tracker/internal/model"
)

// CarrierProvider answers from the carrier's airway-bill record.
type CarrierProvider struct {
	Source adapter.ShipmentSource
}

func (c *CarrierProvider) Name() string { return "carrier" }

// Lookup returns a has_tracking_data projection, or nil when the carrier has no record.
func (c *CarrierProvider) Lookup(ctx context.Context, identifier string) (*model.Projection, error) {
	track, err := c.Source.TrackShipment(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if track == nil || track.AirWayBillNo == "" {
		return nil, nil
	}
	return FromTrack(track), nil
}

// ExistenceProvider answers from a boolean order-existence check.
type ExistenceProvider struct {
	Source adapter.ShipmentSource
}

func (e *ExistenceProvider) Name() string { return "order_exists" }

// Lookup returns an order_exists_only projection, or nil when no order matches.
func (e *ExistenceProvider) Lookup(ctx context.Context, identifier string) (*model.Projection, error) {
	exists, err := e.Source.OrderExists(ctx, identifier)
	if err != nil || !exists {
		return nil, err
	}
	return OrderExistsOnly(), nil
}
