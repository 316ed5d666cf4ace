package adapter

import (
	"context"

	"storefront-tracker/internal/model"
)

// Mock implements Adapter for testing.
// Each method can be configured via function fields.
type Mock struct {
	GetOrderFunc      func(ctx context.Context, orderID string) (*model.Order, error)
	UpdateOrderFunc   func(ctx context.Context, orderID string, update *model.OrderUpdate) (*model.Order, error)
	TrackShipmentFunc func(ctx context.Context, identifier string) (*model.ShipmentTrack, error)
	OrderExistsFunc   func(ctx context.Context, identifier string) (bool, error)
	SubmitReturnFunc  func(ctx context.Context, req *model.ReturnRequest) (*model.ReturnReceipt, error)
	ReturnStatusFunc  func(ctx context.Context, trackingNumber string) (*model.ReturnStatus, error)
}

// GetOrder calls the configured GetOrderFunc or reports the order as missing.
func (m *Mock) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	if m.GetOrderFunc != nil {
		return m.GetOrderFunc(ctx, orderID)
	}
	return nil, model.NewNotFoundError("order")
}

// UpdateOrder calls the configured UpdateOrderFunc or reports the order as missing.
func (m *Mock) UpdateOrder(ctx context.Context, orderID string, update *model.OrderUpdate) (*model.Order, error) {
	if m.UpdateOrderFunc != nil {
		return m.UpdateOrderFunc(ctx, orderID, update)
	}
	return nil, model.NewNotFoundError("order")
}

// TrackShipment calls the configured TrackShipmentFunc or reports no carrier data.
func (m *Mock) TrackShipment(ctx context.Context, identifier string) (*model.ShipmentTrack, error) {
	if m.TrackShipmentFunc != nil {
		return m.TrackShipmentFunc(ctx, identifier)
	}
	return nil, nil
}

// OrderExists calls the configured OrderExistsFunc or returns false.
func (m *Mock) OrderExists(ctx context.Context, identifier string) (bool, error) {
	if m.OrderExistsFunc != nil {
		return m.OrderExistsFunc(ctx, identifier)
	}
	return false, nil
}

// SubmitReturn calls the configured SubmitReturnFunc or returns an error.
func (m *Mock) SubmitReturn(ctx context.Context, req *model.ReturnRequest) (*model.ReturnReceipt, error) {
	if m.SubmitReturnFunc != nil {
		return m.SubmitReturnFunc(ctx, req)
	}
	return nil, model.NewInternalError(nil)
}

// ReturnStatus calls the configured ReturnStatusFunc or returns an empty status.
func (m *Mock) ReturnStatus(ctx context.Context, trackingNumber string) (*model.ReturnStatus, error) {
	if m.ReturnStatusFunc != nil {
		return m.ReturnStatusFunc(ctx, trackingNumber)
	}
	return &model.ReturnStatus{Requests: []model.ReturnRecord{}}, nil
}

// Verify Mock implements Adapter interface at compile time.
var _ Adapter = (*Mock)(nil)
