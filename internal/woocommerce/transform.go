package woocommerce

import (
	"strconv"
	"strings"

	"storefront-tracker/internal/model"
)

// toOrder converts a REST order into the storefront's read-only order view.
// A nil input yields nil.
func toOrder(w *WooOrder) *model.Order {
	if w == nil {
		return nil
	}

	order := &model.Order{
		ID:                 strconv.Itoa(w.ID),
		Status:             model.OrderStatus(strings.ToLower(w.Status)),
		PaymentMethod:      w.PaymentMethod,
		PaymentMethodTitle: w.PaymentMethodTitle,
		Paid:               isPaid(w),
		Total:              model.ParseAmount(w.Total),
		Currency:           w.Currency,
		OrderKey:           w.OrderKey,
		LineItems:          make([]model.OrderLine, 0, len(w.LineItems)),
		Meta:               make([]model.MetaEntry, 0, len(w.MetaData)),
	}

	for _, li := range w.LineItems {
		order.LineItems = append(order.LineItems, toOrderLine(li))
	}
	for _, m := range w.MetaData {
		order.Meta = append(order.Meta, model.MetaEntry{Key: m.Key, Value: m.StringValue()})
	}

	return order
}

// isPaid reports whether WooCommerce recorded a payment date.
// The REST API has no boolean paid flag; date_paid is null until payment completes.
func isPaid(w *WooOrder) bool {
	return w.DatePaid != nil && strings.TrimSpace(*w.DatePaid) != ""
}

func toOrderLine(li WooLineItem) model.OrderLine {
	line := model.OrderLine{
		ID:       strconv.Itoa(li.ID),
		Name:     li.Name,
		Quantity: li.Quantity,
		Total:    model.ParseAmount(li.Total),
		SKU:      li.SKU,
	}
	if li.Image != nil {
		line.ImageURL = li.Image.Src
	}
	return line
}
