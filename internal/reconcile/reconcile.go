// Package reconcile resolves the single user-facing outcome of an order after a
// payment attempt. It reconciles what the order store recorded (status, paid
// flag, gateway annotations) into success, failed, cancelled or unknown.
//
// The resolver is read-only: it never writes to the order store, so repeated
// resolutions against unchanged backend state return the same outcome.
package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"storefront-tracker/internal/adapter"
	"storefront-tracker/internal/model"
)

// DefaultTimeout bounds the order read when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// User-facing messages per outcome.
const (
	MessageSuccess   = "Thank you. Your order has been received."
	MessageFailed    = "Your payment could not be completed. Please try again or choose another payment method."
	MessageCancelled = "Your payment was cancelled. You can try again at any time."
	MessageUnknown   = "We don't have information yet, please check back later."
)

// ResolveRequest identifies the order a payment redirect returned for.
type ResolveRequest struct {
	OrderID string

	// OrderKey is the "key" parameter gateways append to the return URL.
	// When set, it must match the stored order key.
	OrderKey string
}

// CancelRequest identifies an order whose payment the customer abandoned.
type CancelRequest struct {
	OrderID string
	Reason  string // Shown to the customer. Default: "Payment was cancelled by user"
}

// Config tunes a Resolver.
type Config struct {
	Currency string        // Fallback display currency. Default: AED
	Timeout  time.Duration // Bound on the order read. Default: 10s
	Logger   *slog.Logger
}

// Resolver classifies orders by reading the order store.
type Resolver struct {
	orders   adapter.OrderStore
	currency string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewResolver creates a Resolver over the given order store.
func NewResolver(orders adapter.OrderStore, cfg Config) *Resolver {
	if cfg.Currency == "" {
		cfg.Currency = model.DefaultCurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Resolver{
		orders:   orders,
		currency: cfg.Currency,
		timeout:  cfg.Timeout,
		logger:   cfg.Logger,
	}
}

// Resolve reads the order once and classifies it.
//
// Only a blank order id produces an error. Every collaborator failure
// (transport, timeout, not found, key mismatch) resolves to unknown with
// reason "order not found"; none of them is ever reported as failed.
func (r *Resolver) Resolve(ctx context.Context, req ResolveRequest) (*model.ResolvedStatus, error) {
	orderID := strings.TrimSpace(req.OrderID)
	if orderID == "" {
		return nil, model.NewMissingIdentifierError("order_id")
	}

	order, ok := r.lookup(ctx, orderID, strings.TrimSpace(req.OrderKey))
	if !ok {
		return unknown(orderID), nil
	}

	outcome, reason := Classify(order)

	status := &model.ResolvedStatus{
		OrderID:    orderID,
		Outcome:    outcome,
		ReasonCode: reason,
	}
	switch outcome {
	case model.OutcomeSuccess:
		status.Message = MessageSuccess
		status.Order = model.Summarize(order, r.currency)
	default:
		status.Message = MessageFailed
	}

	r.logger.Debug("order resolved",
		slog.String("order_id", orderID),
		slog.String("outcome", string(outcome)),
		slog.String("order_status", string(order.Status)),
		slog.String("payment_method", order.PaymentMethod),
		slog.Bool("paid", order.Paid),
	)

	return status, nil
}

// ResolveCancellation builds the view shown when a gateway redirects back after
// the customer cancelled. The order is read only to confirm it exists and to
// show what was in it; its stored status does not change the outcome.
func (r *Resolver) ResolveCancellation(ctx context.Context, req CancelRequest) (*model.ResolvedStatus, error) {
	orderID := strings.TrimSpace(req.OrderID)
	if orderID == "" {
		return nil, model.NewMissingIdentifierError("order_id")
	}

	order, ok := r.lookup(ctx, orderID, "")
	if !ok {
		return unknown(orderID), nil
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = model.ReasonUserCancelled
	}

	return &model.ResolvedStatus{
		OrderID:    orderID,
		Outcome:    model.OutcomeCancelled,
		ReasonCode: reason,
		Message:    MessageCancelled,
		Order:      model.Summarize(order, r.currency),
	}, nil
}

// Classify maps an order to its payment outcome and reason.
//
// Cash on delivery is success regardless of status: payment happens at the
// door. Any other method is success only when the store recorded a payment
// or moved the order to completed or processing. Everything else is failed,
// with the gateway's own error text when one was stored.
func Classify(o *model.Order) (model.Outcome, string) {
	if o.IsCOD() {
		return model.OutcomeSuccess, ""
	}
	if o.Paid || o.Status == model.OrderCompleted || o.Status == model.OrderProcessing {
		return model.OutcomeSuccess, ""
	}
	if msg := o.GatewayError(); msg != "" {
		return model.OutcomeFailed, msg
	}
	return model.OutcomeFailed, model.ReasonPaymentUnconfirm
}

// lookup reads the order within the resolver's timeout.
// It returns false for any failure, including a key mismatch.
func (r *Resolver) lookup(ctx context.Context, orderID, orderKey string) (*model.Order, bool) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	order, err := r.orders.GetOrder(ctx, orderID)
	if err != nil {
		level := slog.LevelError
		switch {
		case errors.Is(err, model.ErrNotFound):
			level = slog.LevelInfo
		case model.IsLookupFailure(err):
			level = slog.LevelWarn
		}
		r.logger.Log(ctx, level, "order lookup failed",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
		return nil, false
	}
	if order == nil {
		return nil, false
	}

	if orderKey != "" && order.OrderKey != "" && order.OrderKey != orderKey {
		r.logger.Warn("order key mismatch",
			slog.String("order_id", orderID),
		)
		return nil, false
	}

	return order, true
}

func unknown(orderID string) *model.ResolvedStatus {
	return &model.ResolvedStatus{
		OrderID:    orderID,
		Outcome:    model.OutcomeUnknown,
		ReasonCode: model.ReasonOrderNotFound,
		Message:    MessageUnknown,
	}
}
