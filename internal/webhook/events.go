package webhook

import "storefront-tracker/internal/model"

// TabbyEvent is the body Tabby posts on payment state changes.
type TabbyEvent struct {
	Event string     `json:"event"`
	Order TabbyOrder `json:"order"`
}

// TabbyOrder is the payment object inside a Tabby event.
// ReferenceID carries the store order id.
type TabbyOrder struct {
	ID          model.FlexString `json:"id"`
	ReferenceID model.FlexString `json:"reference_id"`
	Status      string           `json:"status"`
}

// TamaraEvent is the body Tamara posts on order state changes.
type TamaraEvent struct {
	OrderReferenceID model.FlexString `json:"order_reference_id"`
	OrderStatus      string           `json:"order_status"`
	OrderID          model.FlexString `json:"order_id"`
}

// StripeEvent is the subset of a Stripe event the storefront consumes.
type StripeEvent struct {
	Type string     `json:"type"`
	Data StripeData `json:"data"`
}

// StripeData wraps the event object.
type StripeData struct {
	Object StripeObject `json:"object"`
}

// StripeObject is a checkout session or charge.
// ClientReferenceID carries the store order id.
type StripeObject struct {
	ID                model.FlexString `json:"id"`
	ClientReferenceID model.FlexString `json:"client_reference_id"`
	PaymentStatus     string           `json:"payment_status"`
	Outcome           *StripeOutcome   `json:"outcome,omitempty"`
}

// StripeOutcome explains a charge decision.
type StripeOutcome struct {
	Reason string `json:"reason"`
}

// Result is the acknowledgement returned to the gateway.
type Result struct {
	Success   bool              `json:"success"`
	OrderID   string            `json:"order_id"`
	Status    model.OrderStatus `json:"status"`
	EventType string            `json:"event_type,omitempty"`
	Message   string            `json:"message"`
}
