package woocommerce

import (
	"encoding/json"
	"testing"

	"storefront-tracker/internal/model"
)

func strPtr(s string) *string { return &s }

func TestToOrder(t *testing.T) {
	w := &WooOrder{
		ID:                 12345,
		Status:             "Processing",
		Currency:           "AED",
		Total:              "199.50",
		PaymentMethod:      "tabby",
		PaymentMethodTitle: "Pay in 4 with Tabby",
		DatePaid:           strPtr("2025-01-10T12:00:00"),
		OrderKey:           "wc_order_abc",
		LineItems: []WooLineItem{
			{ID: 7, Name: "Desk Lamp", Quantity: 2, Total: "199.50", SKU: "LAMP-1", Image: &WooImage{Src: "https://cdn.example.com/lamp.jpg"}},
		},
		MetaData: []WooMetaEntry{
			{Key: "tabby_status", Value: json.RawMessage(`"APPROVED"`)},
			{Key: "attempts", Value: json.RawMessage(`3`)},
		},
	}

	got := toOrder(w)

	if got.ID != "12345" {
		t.Errorf("ID = %q, want 12345", got.ID)
	}
	if got.Status != model.OrderProcessing {
		t.Errorf("Status = %q, want processing", got.Status)
	}
	if !got.Paid {
		t.Error("Paid = false, want true")
	}
	if got.Total.StringFixed(2) != "199.50" {
		t.Errorf("Total = %s, want 199.50", got.Total.StringFixed(2))
	}
	if got.OrderKey != "wc_order_abc" {
		t.Errorf("OrderKey = %q", got.OrderKey)
	}
	if len(got.LineItems) != 1 || got.LineItems[0].ImageURL != "https://cdn.example.com/lamp.jpg" {
		t.Errorf("LineItems = %+v", got.LineItems)
	}
	if v := got.MetaValue("tabby_status"); v != "APPROVED" {
		t.Errorf("MetaValue(tabby_status) = %q, want APPROVED", v)
	}
	if v := got.MetaValue("attempts"); v != "3" {
		t.Errorf("MetaValue(attempts) = %q, want 3", v)
	}
}

func TestToOrderNil(t *testing.T) {
	if got := toOrder(nil); got != nil {
		t.Errorf("toOrder(nil) = %+v, want nil", got)
	}
}

func TestIsPaid(t *testing.T) {
	tests := []struct {
		name     string
		datePaid *string
		want     bool
	}{
		{"null", nil, false},
		{"empty", strPtr(""), false},
		{"blank", strPtr("  "), false},
		{"set", strPtr("2025-01-10T12:00:00"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isPaid(&WooOrder{DatePaid: tt.datePaid}); got != tt.want {
				t.Errorf("isPaid = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWooMetaEntryStringValue(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"card declined"`, "card declined"},
		{`42`, "42"},
		{`true`, "true"},
		{`null`, ""},
		{``, ""},
		{`{"a":1}`, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			m := WooMetaEntry{Key: "k", Value: json.RawMessage(tt.raw)}
			if got := m.StringValue(); got != tt.want {
				t.Errorf("StringValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDatePaidNullDecodes(t *testing.T) {
	var w WooOrder
	if err := json.Unmarshal([]byte(`{"id":1,"status":"pending","date_paid":null}`), &w); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if w.DatePaid != nil {
		t.Errorf("DatePaid = %v, want nil", *w.DatePaid)
	}
	if toOrder(&w).Paid {
		t.Error("Paid = true for null date_paid")
	}
}
