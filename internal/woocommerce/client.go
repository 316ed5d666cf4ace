package woocommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"storefront-tracker/internal/adapter"
	"storefront-tracker/internal/model"
	"storefront-tracker/internal/transport"
)

// =============================================================================
// ORDER STORE ACCESS
// =============================================================================
//
// Orders are read and written through the WooCommerce REST API
// (/wp-json/wc/{version}/orders/{id}) with consumer key/secret Basic auth.
// The storefront never caches order state: every status check is a fresh read.
//
// Concurrent reads of the same order id are coalesced with singleflight. A
// payment redirect page and its retry often land within milliseconds of each
// other; they share one upstream call and observe the same snapshot.
//
//   Resolve ──┐
//   Resolve ──┼─▶ singleflight("12345") ─▶ GET /wp-json/wc/v3/orders/12345
//   Resolve ──┘
//
// The shared call runs detached from any single caller's cancellation and is
// bounded by the upstream timeout instead. Each caller still returns as soon
// as its own context is done.
// =============================================================================

// DefaultTimeout bounds every upstream call when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// DefaultAPIVersion is the WooCommerce REST namespace version.
const DefaultAPIVersion = "v3"

// userAgent identifies this client to upstream servers.
// Required: the store's CDN/WAF rate-limits requests without User-Agent.
const userAgent = "Storefront-Tracker/1.0"

// Config holds WooCommerce-specific adapter configuration.
type Config struct {
	StoreURL   string
	APIKey     string
	APISecret  string
	APIVersion string        // Default: v3
	Timeout    time.Duration // Per upstream call. Default: 10s

	// Transport overrides the outbound RoundTripper.
	// Nil uses the Chrome-fingerprint transport.
	Transport http.RoundTripper

	Logger *slog.Logger
}

// Client implements adapter.Adapter for a WooCommerce store.
// Order reads and writes use the REST API; tracking and returns use the
// custom/v1 plugin routes (see plugin.go).
type Client struct {
	httpClient *http.Client
	storeURL   string
	ordersPath string
	apiKey     string
	apiSecret  string
	timeout    time.Duration
	logger     *slog.Logger

	reads  singleflight.Group
	plugin *pluginClient
}

// New creates a WooCommerce client with the given configuration.
func New(cfg Config) (*Client, error) {
	if cfg.StoreURL == "" {
		return nil, fmt.Errorf("store URL is required")
	}
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("API credentials are required")
	}

	version := cfg.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rt := cfg.Transport
	if rt == nil {
		rt = transport.New(transport.Options{DialTimeout: timeout, Fingerprint: true})
	}

	storeURL := strings.TrimSuffix(cfg.StoreURL, "/")

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: rt,
		},
		storeURL:   storeURL,
		ordersPath: "/wp-json/wc/" + version + "/orders/",
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		timeout:    timeout,
		logger:     logger,
		plugin:     newPluginClient(storeURL, rt, timeout, logger),
	}, nil
}

// GetOrder reads one order. Concurrent reads of the same id share one request.
// The returned order is shared between coalesced callers and must not be mutated.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	ch := c.reads.DoChan(orderID, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		var wo WooOrder
		if err := c.doOrderRequest(callCtx, http.MethodGet, orderID, nil, &wo); err != nil {
			return nil, err
		}
		return toOrder(&wo), nil
	})

	select {
	case <-ctx.Done():
		return nil, model.NewTransportError("WooCommerce", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.Order), nil
	}
}

// UpdateOrder writes status and payment metadata to an order.
func (c *Client) UpdateOrder(ctx context.Context, orderID string, update *model.OrderUpdate) (*model.Order, error) {
	if update == nil {
		return nil, model.NewValidationError("update", "body is required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var wo WooOrder
	if err := c.doOrderRequest(ctx, http.MethodPut, orderID, update, &wo); err != nil {
		return nil, err
	}

	// A write changes what the next read must see.
	c.reads.Forget(orderID)

	return toOrder(&wo), nil
}

// doOrderRequest executes a request against /orders/{id} and decodes the reply into out.
func (c *Client) doOrderRequest(ctx context.Context, method, orderID string, body, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method,
		c.storeURL+c.ordersPath+url.PathEscape(orderID), bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	c.setRESTHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.NewTransportError("WooCommerce", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.NewTransportError("WooCommerce", fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode >= 400 {
		return parseErrorResponse("order", resp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return model.NewUpstreamError("WooCommerce", fmt.Errorf("parsing response: %w", err))
	}
	return nil
}

// setRESTHeaders sets headers for WooCommerce REST API requests.
// Unlike the plugin routes, REST v3 requires Basic Auth.
func (c *Client) setRESTHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.apiKey, c.apiSecret)
}

// parseErrorResponse converts a WordPress error reply to APIError.
func parseErrorResponse(resource string, statusCode int, body []byte) error {
	var wcErr WooErrorResponse
	json.Unmarshal(body, &wcErr) // Best effort parse

	switch statusCode {
	case 404:
		return model.NewNotFoundError(resource)
	case 401, 403:
		return model.NewUnauthorizedError("WooCommerce authentication failed")
	case 400:
		msg := wcErr.text()
		if msg == "" {
			msg = "invalid request"
		}
		return model.NewValidationError("request", msg)
	case 429:
		return model.NewRateLimitError("WooCommerce")
	default:
		return model.NewUpstreamError("WooCommerce",
			fmt.Errorf("status %d: %s - %s", statusCode, wcErr.Code, wcErr.text()))
	}
}

// wrapTransport classifies a client-side failure. Errors already classified pass through.
func wrapTransport(service string, err error) error {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return err
	}
	return model.NewTransportError(service, err)
}

// Verify Client implements Adapter interface at compile time.
var _ adapter.Adapter = (*Client)(nil)
