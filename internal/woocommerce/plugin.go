package woocommerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"storefront-tracker/internal/model"
)

// =============================================================================
// CUSTOM/V1 PLUGIN ROUTES
// =============================================================================
//
// The merchant's WordPress plugin exposes four unauthenticated routes under
// /wp-json/custom/v1:
//
//   POST check-order-exists            {tracking}       → {exists}
//   POST track-c3x-reference           {TrackingAWB}    → {AirwayBillTrackList:[...]}
//   GET  check-return-status/{tracking}                 → {has_request, requests}
//   POST submit-return-replacement     ReturnRequest    → {request_id}
//
// track-c3x-reference proxies the carrier's API and is the slowest and least
// reliable of the four. It runs behind a circuit breaker: once it trips, the
// tracking projector falls through to the existence check immediately.
//
// The breaker must only see the carrier's own health. Carrier calls run
// detached from the caller's cancellation, bounded by the client timeout, so
// a customer leaving the tracking page never counts as a carrier failure.
// =============================================================================

const pluginPath = "/wp-json/custom/v1"

// carrierService names the carrier in errors and breaker logs.
const carrierService = "carrier"

type pluginClient struct {
	http    *resty.Client
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
}

func newPluginClient(storeURL string, rt http.RoundTripper, timeout time.Duration, logger *slog.Logger) *pluginClient {
	st := gobreaker.Settings{
		Name:        "CarrierTracking",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     20 * time.Second,
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}

	return &pluginClient{
		http: resty.New().
			SetBaseURL(storeURL+pluginPath).
			SetTransport(rt).
			SetTimeout(timeout).
			SetHeader("User-Agent", userAgent).
			SetHeader("Accept", "application/json"),
		cb:      gobreaker.NewCircuitBreaker(st),
		timeout: timeout,
	}
}

// TrackShipment asks the carrier for the airway-bill record of identifier.
// Only the first list element counts, and only when it carries an airway-bill number.
// Returns nil, nil when the carrier has no record.
//
// The caller returns as soon as ctx is done; the carrier call itself runs to
// completion or to the client timeout so the breaker records its real outcome.
func (c *Client) TrackShipment(ctx context.Context, identifier string) (*model.ShipmentTrack, error) {
	type result struct {
		track *model.ShipmentTrack
		err   error
	}
	ch := make(chan result, 1)

	go func() {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.plugin.timeout)
		defer cancel()
		track, err := c.plugin.track(callCtx, identifier)
		ch <- result{track, err}
	}()

	select {
	case <-ctx.Done():
		return nil, model.NewTransportError(carrierService, ctx.Err())
	case r := <-ch:
		return r.track, r.err
	}
}

// track runs one carrier lookup through the circuit breaker.
func (p *pluginClient) track(ctx context.Context, identifier string) (*model.ShipmentTrack, error) {
	res, err := p.cb.Execute(func() (interface{}, error) {
		resp, err := p.http.R().
			SetContext(ctx).
			SetBody(trackRequest{TrackingAWB: identifier}).
			Post("/track-c3x-reference")
		if err != nil {
			return nil, err
		}
		// Server-side failures count against the breaker; 4xx replies do not.
		if resp.StatusCode() >= 500 {
			return nil, parseErrorResponse("shipment", resp.StatusCode(), resp.Body())
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, model.NewTransportError(carrierService, err)
		}
		return nil, wrapTransport(carrierService, err)
	}

	resp := res.(*resty.Response)
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, nil
	case !resp.IsSuccess():
		return nil, parseErrorResponse("shipment", resp.StatusCode(), resp.Body())
	}

	var tr trackResponse
	if err := json.Unmarshal(resp.Body(), &tr); err != nil {
		return nil, model.NewUpstreamError(carrierService, fmt.Errorf("parsing tracking response: %w", err))
	}
	if len(tr.AirwayBillTrackList) == 0 {
		return nil, nil
	}
	first := tr.AirwayBillTrackList[0]
	if strings.TrimSpace(first.AirWayBillNo) == "" {
		return nil, nil
	}
	return &first, nil
}

// OrderExists asks the plugin whether any order matches identifier.
func (c *Client) OrderExists(ctx context.Context, identifier string) (bool, error) {
	p := c.plugin
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.http.R().
		SetContext(ctx).
		SetBody(existsRequest{Tracking: identifier}).
		Post("/check-order-exists")
	if err != nil {
		return false, model.NewTransportError("WooCommerce", err)
	}
	if !resp.IsSuccess() {
		return false, parseErrorResponse("order", resp.StatusCode(), resp.Body())
	}

	var er existsResponse
	if err := json.Unmarshal(resp.Body(), &er); err != nil {
		return false, model.NewUpstreamError("WooCommerce", fmt.Errorf("parsing exists response: %w", err))
	}
	return er.Exists, nil
}

// SubmitReturn files a return or replacement request. It is a single attempt.
func (c *Client) SubmitReturn(ctx context.Context, req *model.ReturnRequest) (*model.ReturnReceipt, error) {
	p := c.plugin
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.http.R().
		SetContext(ctx).
		SetBody(req).
		Post("/submit-return-replacement")
	if err != nil {
		return nil, model.NewTransportError("WooCommerce", err)
	}

	var sr submitResponse
	json.Unmarshal(resp.Body(), &sr) // Best effort parse; error bodies share the shape

	if !resp.IsSuccess() {
		msg := sr.Message
		if msg == "" {
			msg = sr.Error
		}
		if msg == "" {
			msg = "submission failed"
		}
		return nil, model.NewUpstreamError("WooCommerce", fmt.Errorf("status %d: %s", resp.StatusCode(), msg))
	}

	return &model.ReturnReceipt{RequestID: string(sr.RequestID)}, nil
}

// ReturnStatus lists earlier return and replacement requests for a tracking number.
func (c *Client) ReturnStatus(ctx context.Context, trackingNumber string) (*model.ReturnStatus, error) {
	p := c.plugin
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.http.R().
		SetContext(ctx).
		SetPathParam("tracking", trackingNumber).
		Get("/check-return-status/{tracking}")
	if err != nil {
		return nil, model.NewTransportError("WooCommerce", err)
	}
	if !resp.IsSuccess() {
		return nil, parseErrorResponse("return status", resp.StatusCode(), resp.Body())
	}

	var status model.ReturnStatus
	if err := json.Unmarshal(resp.Body(), &status); err != nil {
		return nil, model.NewUpstreamError("WooCommerce", fmt.Errorf("parsing return status: %w", err))
	}
	if status.Requests == nil {
		status.Requests = []model.ReturnRecord{}
	}
	if len(status.Requests) > 0 {
		status.HasRequest = true
	}
	return &status, nil
}
