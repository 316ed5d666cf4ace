// Package woocommerce implements the storefront adapter against a WordPress host:
// the WooCommerce REST API for orders and the custom/v1 plugin endpoints for
// carrier tracking and return requests.
package woocommerce

import (
	"encoding/json"
	"strings"

	"storefront-tracker/internal/model"
)

// === WooCommerce REST API Types ===

// WooOrder is the subset of a REST v3 order the storefront reads.
// Monetary fields are decimal strings ("99.00").
type WooOrder struct {
	ID                 int            `json:"id"`
	Status             string         `json:"status"`
	Currency           string         `json:"currency"`
	Total              string         `json:"total"`
	PaymentMethod      string         `json:"payment_method"`
	PaymentMethodTitle string         `json:"payment_method_title"`
	TransactionID      string         `json:"transaction_id"`
	DatePaid           *string        `json:"date_paid"` // null until payment is recorded
	OrderKey           string         `json:"order_key"`
	LineItems          []WooLineItem  `json:"line_items"`
	MetaData           []WooMetaEntry `json:"meta_data"`
}

// WooLineItem is one order line.
type WooLineItem struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Quantity int       `json:"quantity"`
	Total    string    `json:"total"`
	SKU      string    `json:"sku"`
	Image    *WooImage `json:"image,omitempty"`
}

// WooImage is a product image reference on a line item.
type WooImage struct {
	Src string `json:"src"`
}

// WooMetaEntry is one order meta row. Plugins store strings, numbers and
// nested objects under meta keys, so the value is kept raw.
type WooMetaEntry struct {
	ID    int             `json:"id,omitempty"`
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// StringValue renders the meta value as text.
// JSON strings are unquoted; other values keep their JSON form; null is empty.
func (m WooMetaEntry) StringValue() string {
	raw := strings.TrimSpace(string(m.Value))
	if raw == "" || raw == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(m.Value, &s); err == nil {
		return s
	}
	return raw
}

// WooErrorResponse is the error body returned by WordPress REST routes.
// Plugin routes sometimes put the text under "error" instead of "message".
type WooErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// text returns whichever error field the route populated.
func (e WooErrorResponse) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// === custom/v1 Plugin Types ===

// trackRequest is the body of POST custom/v1/track-c3x-reference.
type trackRequest struct {
	TrackingAWB string `json:"TrackingAWB"`
}

// trackResponse wraps the carrier's airway-bill list.
type trackResponse struct {
	AirwayBillTrackList []model.ShipmentTrack `json:"AirwayBillTrackList"`
}

// existsRequest is the body of POST custom/v1/check-order-exists.
type existsRequest struct {
	Tracking string `json:"tracking"`
}

// existsResponse reports order existence. Anything but a literal true means no.
type existsResponse struct {
	Exists bool `json:"exists"`
}

// submitResponse is the reply of POST custom/v1/submit-return-replacement.
type submitResponse struct {
	RequestID model.FlexString `json:"request_id"`
	Message   string           `json:"message"`
	Error     string           `json:"error"`
}
