// Package model defines the order, shipment and return types shared by the
// resolver, the tracking projector and the HTTP/MCP surfaces.
package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// === Order Store Types ===

// OrderStatus is the order-store status vocabulary.
// Only webhook ingestors and COD confirmation write it; the resolver only reads.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderOnHold     OrderStatus = "on-hold"
	OrderCompleted  OrderStatus = "completed"
	OrderFailed     OrderStatus = "failed"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

// PaymentMethodCOD is the cash-on-delivery payment method code.
const PaymentMethodCOD = "cod"

// paymentMethodLabels maps payment method codes to customer-facing names.
var paymentMethodLabels = map[string]string{
	"cod":    "Cash on Delivery",
	"card":   "Card",
	"tabby":  "Tabby",
	"tamara": "Tamara",
	"stripe": "Stripe",
	"paypal": "PayPal",
}

// PaymentMethodLabel returns the display name for a payment method code.
func PaymentMethodLabel(method string) string {
	if label, ok := paymentMethodLabels[strings.ToLower(method)]; ok {
		return label
	}
	return "Unknown"
}

// Order is the read-only view of an order-store record.
// Every field is optional on the wire; missing fields stay at their zero value.
type Order struct {
	ID                 string          `json:"id"`
	Status             OrderStatus     `json:"status"`
	PaymentMethod      string          `json:"payment_method"`
	PaymentMethodTitle string          `json:"payment_method_title,omitempty"`
	Paid               bool            `json:"paid"`
	Total              decimal.Decimal `json:"total"`
	Currency           string          `json:"currency"`
	OrderKey           string          `json:"-"`
	LineItems          []OrderLine     `json:"line_items"`
	Meta               []MetaEntry     `json:"-"`
}

// OrderLine is a single purchased item.
type OrderLine struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
	SKU      string          `json:"sku,omitempty"`
	ImageURL string          `json:"image_url,omitempty"`
}

// MetaEntry is a key/value annotation stored on an order by a gateway.
type MetaEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// IsCOD reports whether the order is paid in cash at delivery.
func (o *Order) IsCOD() bool {
	return strings.EqualFold(o.PaymentMethod, PaymentMethodCOD)
}

// MetaValue returns the first non-empty value stored under key.
func (o *Order) MetaValue(key string) string {
	for _, m := range o.Meta {
		if m.Key == key && m.Value != "" {
			return m.Value
		}
	}
	return ""
}

// GatewayError returns the first gateway error annotation (keys ending in "_error").
func (o *Order) GatewayError() string {
	for _, m := range o.Meta {
		if strings.HasSuffix(m.Key, "_error") && strings.TrimSpace(m.Value) != "" {
			return m.Value
		}
	}
	return ""
}

// OrderUpdate is the partial write issued to the order store by webhook ingestors.
type OrderUpdate struct {
	Status             OrderStatus `json:"status"`
	PaymentMethod      string      `json:"payment_method,omitempty"`
	PaymentMethodTitle string      `json:"payment_method_title,omitempty"`
	Meta               []MetaEntry `json:"meta_data,omitempty"`
}

// === Resolved Status View ===

// Outcome is the single user-facing classification of an order.
type Outcome string

const (
	// OutcomePending is the zero classification: not resolved yet.
	OutcomePending   Outcome = "pending"
	OutcomeSuccess   Outcome = "success"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeUnknown   Outcome = "unknown"
)

// Reason codes surfaced with failed, cancelled and unknown outcomes.
const (
	ReasonOrderNotFound    = "order not found"
	ReasonPaymentUnconfirm = "payment could not be confirmed"
	ReasonUserCancelled    = "Payment was cancelled by user"
)

// ResolvedStatus is the transient result of one status check.
type ResolvedStatus struct {
	OrderID    string        `json:"order_id"`
	Outcome    Outcome       `json:"outcome"`
	ReasonCode string        `json:"reason_code,omitempty"`
	Message    string        `json:"message"`
	Order      *OrderSummary `json:"order,omitempty"`
}

// OrderSummary is the display slice of an order shown on success and cancel views.
type OrderSummary struct {
	ID                 string        `json:"id"`
	Status             OrderStatus   `json:"status"`
	PaymentMethod      string        `json:"payment_method"`
	PaymentMethodLabel string        `json:"payment_method_label"`
	Total              string        `json:"total"`
	LineItems          []SummaryLine `json:"line_items"`
}

// SummaryLine is one purchased item with its total formatted for display.
type SummaryLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Total    string `json:"total"`
	ImageURL string `json:"image_url,omitempty"`
}

// Summarize builds the display summary for an order in the given currency.
// A nil order yields nil.
func Summarize(o *Order, currency string) *OrderSummary {
	if o == nil {
		return nil
	}
	cur := o.Currency
	if cur == "" {
		cur = currency
	}
	lines := make([]SummaryLine, 0, len(o.LineItems))
	for _, li := range o.LineItems {
		lines = append(lines, SummaryLine{
			Name:     li.Name,
			Quantity: li.Quantity,
			Total:    FormatAmount(li.Total, cur),
			ImageURL: li.ImageURL,
		})
	}
	return &OrderSummary{
		ID:                 o.ID,
		Status:             o.Status,
		PaymentMethod:      o.PaymentMethod,
		PaymentMethodLabel: PaymentMethodLabel(o.PaymentMethod),
		Total:              FormatAmount(o.Total, cur),
		LineItems:          lines,
	}
}
