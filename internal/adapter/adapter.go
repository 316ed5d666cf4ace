// Package adapter defines the collaborator interfaces the storefront core reads from.
// The WooCommerce package implements all of them against one WordPress host.
package adapter

import (
	"context"

	"storefront-tracker/internal/model"
)

// OrderStore is the backend of record for orders.
type OrderStore interface {
	// GetOrder reads one order by id.
	// Returns an error wrapping model.ErrNotFound when the store reports absence,
	// and model.ErrTransport for network-level failures.
	GetOrder(ctx context.Context, orderID string) (*model.Order, error)

	// UpdateOrder writes status and payment metadata. Only webhook ingestion
	// and COD confirmation call it; the status resolver never does.
	UpdateOrder(ctx context.Context, orderID string, update *model.OrderUpdate) (*model.Order, error)
}

// ShipmentSource answers tracking questions for an identifier.
type ShipmentSource interface {
	// TrackShipment asks the carrier for an airway-bill record.
	// A nil track with a nil error means the carrier does not know the identifier.
	TrackShipment(ctx context.Context, identifier string) (*model.ShipmentTrack, error)

	// OrderExists is a boolean-only existence check against the order store.
	OrderExists(ctx context.Context, identifier string) (bool, error)
}

// ReturnDesk files and lists post-delivery return and replacement requests.
type ReturnDesk interface {
	SubmitReturn(ctx context.Context, req *model.ReturnRequest) (*model.ReturnReceipt, error)
	ReturnStatus(ctx context.Context, trackingNumber string) (*model.ReturnStatus, error)
}

// Adapter is the full collaborator surface of one storefront backend.
type Adapter interface {
	OrderStore
	ShipmentSource
	ReturnDesk
}
