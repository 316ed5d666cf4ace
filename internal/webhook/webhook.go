// Package webhook ingests payment gateway callbacks and writes the resulting
// order status to the order store.
//
// This is the only write path for payment state besides COD confirmation.
// The status resolver reads what these ingestors wrote; they share no state
// beyond the order store itself.
package webhook

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"storefront-tracker/internal/adapter"
	"storefront-tracker/internal/model"
)

// =============================================================================
// CANONICAL STATUS MAPPING
// =============================================================================
//
//   Tabby     APPROVED, CLOSED              → completed
//             PENDING                       → pending
//             REJECTED                      → failed
//             CANCELLED                     → cancelled
//   Tamara    APPROVED, CAPTURED            → completed
//             PENDING                       → pending
//             REJECTED                      → failed
//             CANCELLED                     → cancelled
//   Stripe    checkout.session.completed    → completed
//             charge.failed                 → failed
//             charge.refunded               → refunded
//   COD       confirmation                  → processing
//
// Unmapped values map to pending. A missing gateway status is PENDING.
// =============================================================================

var tabbyStatuses = map[string]model.OrderStatus{
	"APPROVED":  model.OrderCompleted,
	"CLOSED":    model.OrderCompleted,
	"PENDING":   model.OrderPending,
	"REJECTED":  model.OrderFailed,
	"CANCELLED": model.OrderCancelled,
}

var tamaraStatuses = map[string]model.OrderStatus{
	"APPROVED":  model.OrderCompleted,
	"CAPTURED":  model.OrderCompleted,
	"PENDING":   model.OrderPending,
	"REJECTED":  model.OrderFailed,
	"CANCELLED": model.OrderCancelled,
}

var stripeStatuses = map[string]model.OrderStatus{
	"checkout.session.completed": model.OrderCompleted,
	"charge.failed":              model.OrderFailed,
	"charge.refunded":            model.OrderRefunded,
}

// TabbyStatus maps a Tabby payment status to an order status.
func TabbyStatus(s string) model.OrderStatus { return lookup(tabbyStatuses, strings.ToUpper(s)) }

// TamaraStatus maps a Tamara order status to an order status.
func TamaraStatus(s string) model.OrderStatus { return lookup(tamaraStatuses, strings.ToUpper(s)) }

// StripeStatus maps a Stripe event type to an order status.
func StripeStatus(eventType string) model.OrderStatus { return lookup(stripeStatuses, eventType) }

func lookup(m map[string]model.OrderStatus, key string) model.OrderStatus {
	if st, ok := m[key]; ok {
		return st
	}
	return model.OrderPending
}

// defaultStripeError is stored when a failed charge carries no reason.
const defaultStripeError = "Payment failed"


// Config tunes an Ingestor.
type Config struct {
	Timeout time.Duration // Bound on the order write. Default: 10s
	Logger  *slog.Logger
	Now     func() time.Time // Clock for cod_confirmed. Default: time.Now
}

// Ingestor applies gateway callbacks to the order store.
type Ingestor struct {
	orders  adapter.OrderStore
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewIngestor creates an Ingestor writing to orders.
func NewIngestor(orders adapter.OrderStore, cfg Config) *Ingestor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Ingestor{
		orders:  orders,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
		now:     cfg.Now,
	}
}

// Tabby applies a Tabby payment event.
func (i *Ingestor) Tabby(ctx context.Context, ev *TabbyEvent) (*Result, error) {
	orderID, err := orderRef(string(ev.Order.ReferenceID))
	if err != nil {
		return nil, err
	}

	gatewayStatus := ev.Order.Status
	if gatewayStatus == "" {
		gatewayStatus = "PENDING"
	}
	status := TabbyStatus(gatewayStatus)

	return i.apply(ctx, "tabby", orderID, ev.Event, &model.OrderUpdate{
		Status:             status,
		PaymentMethod:      "tabby",
		PaymentMethodTitle: "Tabby",
		Meta: []model.MetaEntry{
			{Key: "tabby_order_id", Value: string(ev.Order.ID)},
			{Key: "tabby_status", Value: gatewayStatus},
		},
	}, "Tabby webhook processed successfully")
}

// Tamara applies a Tamara order event.
func (i *Ingestor) Tamara(ctx context.Context, ev *TamaraEvent) (*Result, error) {
	orderID, err := orderRef(string(ev.OrderReferenceID))
	if err != nil {
		return nil, err
	}

	gatewayStatus := ev.OrderStatus
	if gatewayStatus == "" {
		gatewayStatus = "PENDING"
	}
	status := TamaraStatus(gatewayStatus)

	return i.apply(ctx, "tamara", orderID, "", &model.OrderUpdate{
		Status:             status,
		PaymentMethod:      "tamara",
		PaymentMethodTitle: "Tamara",
		Meta: []model.MetaEntry{
			{Key: "tamara_order_id", Value: string(ev.OrderID)},
			{Key: "tamara_status", Value: gatewayStatus},
		},
	}, "Tamara webhook processed successfully")
}

// Stripe applies a Stripe checkout or charge event.
func (i *Ingestor) Stripe(ctx context.Context, ev *StripeEvent) (*Result, error) {
	obj := ev.Data.Object
	orderID, err := orderRef(string(obj.ClientReferenceID))
	if err != nil {
		return nil, err
	}

	status := StripeStatus(ev.Type)
	update := &model.OrderUpdate{
		Status:             status,
		PaymentMethod:      "stripe",
		PaymentMethodTitle: "Stripe",
	}
	switch status {
	case model.OrderCompleted:
		update.Meta = []model.MetaEntry{
			{Key: "stripe_session_id", Value: string(obj.ID)},
			{Key: "stripe_payment_status", Value: obj.PaymentStatus},
		}
	case model.OrderFailed:
		update.Meta = []model.MetaEntry{{Key: "stripe_error", Value: stripeError(obj.Outcome)}}
	}

	return i.apply(ctx, "stripe", orderID, ev.Type, update, "Stripe webhook processed successfully")
}

// ConfirmCOD marks a cash-on-delivery order as processing.
func (i *Ingestor) ConfirmCOD(ctx context.Context, orderID string) (*Result, error) {
	id, err := orderRef(orderID)
	if err != nil {
		return nil, err
	}

	return i.apply(ctx, "cod", id, "", &model.OrderUpdate{
		Status:             model.OrderProcessing,
		PaymentMethod:      model.PaymentMethodCOD,
		PaymentMethodTitle: model.PaymentMethodLabel(model.PaymentMethodCOD),
		Meta: []model.MetaEntry{
			{Key: "cod_confirmed", Value: i.now().UTC().Format(time.RFC3339)},
		},
	}, "COD order confirmed and awaiting delivery")
}

func (i *Ingestor) apply(ctx context.Context, gateway, orderID, eventType string, update *model.OrderUpdate, message string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	if _, err := i.orders.UpdateOrder(ctx, orderID, update); err != nil {
		i.logger.Warn("webhook order update failed",
			slog.String("gateway", gateway),
			slog.String("order_id", orderID),
			slog.String("status", string(update.Status)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	i.logger.Info("webhook processed",
		slog.String("gateway", gateway),
		slog.String("order_id", orderID),
		slog.String("event_type", eventType),
		slog.String("status", string(update.Status)),
	)

	return &Result{
		Success:   true,
		OrderID:   orderID,
		Status:    update.Status,
		EventType: eventType,
		Message:   message,
	}, nil
}

// orderRef validates a gateway's store order reference.
// WooCommerce order ids are positive integers.
func orderRef(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", model.NewMissingIdentifierError("order_id")
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return "", model.NewValidationError("order_id", "must be a positive integer")
	}
	return strconv.Itoa(n), nil
}

// stripeError is the decline reason stored on a failed order.
func stripeError(o *StripeOutcome) string {
	if o == nil || o.Reason == "" {
		return defaultStripeError
	}
	return o.Reason
}
