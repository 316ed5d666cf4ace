//go:build integration
// +build integration

// Integration tests for WooCommerce client.
// Run with: go test -tags=integration ./internal/woocommerce/... -v
//
// Required environment variables:
//
//	WOOCOMMERCE_STORE_URL  - WooCommerce store URL (e.g., https://shop.example.com)
//	WOOCOMMERCE_API_KEY    - REST API consumer key
//	WOOCOMMERCE_API_SECRET - REST API consumer secret
//	WOOCOMMERCE_ORDER_ID   - Existing order ID to read (e.g., 12345)
//
// Optional:
//
//	WOOCOMMERCE_TRACKING_NUMBER - Airway bill or order reference for tracking tests
//
// These tests only read. They never write orders or file return requests.
package woocommerce

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"storefront-tracker/internal/model"
)

// testConfig holds integration test configuration loaded from environment.
type testConfig struct {
	StoreURL       string
	APIKey         string
	APISecret      string
	OrderID        string
	TrackingNumber string
}

// loadTestConfig loads integration test configuration from environment.
// Skips the test if required variables are not set.
func loadTestConfig(t *testing.T) *testConfig {
	t.Helper()

	storeURL := os.Getenv("WOOCOMMERCE_STORE_URL")
	apiKey := os.Getenv("WOOCOMMERCE_API_KEY")
	apiSecret := os.Getenv("WOOCOMMERCE_API_SECRET")
	orderID := os.Getenv("WOOCOMMERCE_ORDER_ID")

	if storeURL == "" || apiKey == "" || apiSecret == "" || orderID == "" {
		t.Skip("Skipping integration test: WOOCOMMERCE_* env vars not set")
		return nil
	}

	return &testConfig{
		StoreURL:       storeURL,
		APIKey:         apiKey,
		APISecret:      apiSecret,
		OrderID:        orderID,
		TrackingNumber: os.Getenv("WOOCOMMERCE_TRACKING_NUMBER"),
	}
}

// newTestClient creates a WooCommerce client for integration testing.
func newTestClient(t *testing.T, cfg *testConfig) *Client {
	t.Helper()

	client, err := New(Config{
		StoreURL:  cfg.StoreURL,
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
		Timeout:   15 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client
}

func TestIntegration_GetOrder(t *testing.T) {
	cfg := loadTestConfig(t)
	client := newTestClient(t, cfg)

	order, err := client.GetOrder(context.Background(), cfg.OrderID)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}

	t.Logf("Order %s: status=%s method=%s paid=%v total=%s",
		order.ID, order.Status, order.PaymentMethod, order.Paid,
		model.FormatAmount(order.Total, order.Currency))

	if order.ID != cfg.OrderID {
		t.Errorf("ID = %q, want %q", order.ID, cfg.OrderID)
	}
	if order.Status == "" {
		t.Error("Status is empty")
	}
}

func TestIntegration_GetOrder_NotFound(t *testing.T) {
	cfg := loadTestConfig(t)
	client := newTestClient(t, cfg)

	_, err := client.GetOrder(context.Background(), "999999999")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestIntegration_TrackShipment(t *testing.T) {
	cfg := loadTestConfig(t)
	if cfg.TrackingNumber == "" {
		t.Skip("WOOCOMMERCE_TRACKING_NUMBER not set")
	}
	client := newTestClient(t, cfg)

	track, err := client.TrackShipment(context.Background(), cfg.TrackingNumber)
	if err != nil {
		t.Fatalf("TrackShipment failed: %v", err)
	}
	if track == nil {
		exists, err := client.OrderExists(context.Background(), cfg.TrackingNumber)
		if err != nil {
			t.Fatalf("OrderExists failed: %v", err)
		}
		t.Logf("No carrier record; order exists: %v", exists)
		return
	}

	t.Logf("AWB %s: progress=%d logs=%d", track.AirWayBillNo, track.ShipmentProgress, len(track.TrackingLogDetails))
}

func TestIntegration_ReturnStatus(t *testing.T) {
	cfg := loadTestConfig(t)
	if cfg.TrackingNumber == "" {
		t.Skip("WOOCOMMERCE_TRACKING_NUMBER not set")
	}
	client := newTestClient(t, cfg)

	status, err := client.ReturnStatus(context.Background(), cfg.TrackingNumber)
	if err != nil {
		t.Fatalf("ReturnStatus failed: %v", err)
	}
	t.Logf("has_request=%v requests=%d", status.HasRequest, len(status.Requests))
}
