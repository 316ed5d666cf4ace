// Package transport builds the outbound HTTP transports used to reach the
// WordPress host (WooCommerce REST and the custom/v1 plugin endpoints).
package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

// =============================================================================
// TLS FINGERPRINT TRANSPORT
// =============================================================================
//
// The store's WordPress host sits behind a CDN WAF that rate-limits clients
// with Go's default TLS fingerprint. Order lookups, tracking and return calls
// all go through this transport, which presents a Chrome ClientHello via uTLS
// and speaks HTTP/2 when ALPN negotiates it:
//
//   https://  → uTLS (HelloChrome_Auto) → h2, falling back to HTTP/1.1
//   http://   → plain HTTP/1.1 (local development, httptest servers)
//
// =============================================================================

// Options configures New.
type Options struct {
	// DialTimeout bounds TCP connect + TLS handshake.
	DialTimeout time.Duration

	// Fingerprint enables the Chrome TLS fingerprint for https targets.
	// When false, Go's standard TLS stack is used.
	Fingerprint bool
}

// New returns a RoundTripper for the given options.
// The zero Options value yields a standard transport with a 10s dial timeout.
func New(opts Options) http.RoundTripper {
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 10 * time.Second
	}
	dialer := &net.Dialer{Timeout: opts.DialTimeout}

	plain := &http.Transport{
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: opts.DialTimeout,
		MaxIdleConnsPerHost: 8,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   !opts.Fingerprint,
	}
	if !opts.Fingerprint {
		return plain
	}

	plain.DialTLSContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		return dialChromeTLS(ctx, dialer, network, addr)
	}

	return &chromeTransport{
		h2: &http2.Transport{
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				return dialChromeTLS(ctx, dialer, network, addr)
			},
		},
		h1: plain,
	}
}

// chromeTransport routes https through HTTP/2 over uTLS and everything else
// through the HTTP/1.1 transport.
type chromeTransport struct {
	h2 *http2.Transport
	h1 *http.Transport
}

// RoundTrip implements http.RoundTripper.
func (t *chromeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		return t.h1.RoundTrip(req)
	}

	resp, err := t.h2.RoundTrip(req)
	if err == nil {
		return resp, nil
	}

	// Server refused h2, or the connection died before a response.
	// Only replay requests whose body can be rewound.
	if req.Body != nil && req.Body != http.NoBody {
		if req.GetBody == nil {
			return nil, err
		}
		body, bodyErr := req.GetBody()
		if bodyErr != nil {
			return nil, err
		}
		req = req.Clone(req.Context())
		req.Body = body
	}
	return t.h1.RoundTrip(req)
}

// dialChromeTLS establishes a TLS connection with Chrome's fingerprint.
func dialChromeTLS(ctx context.Context, dialer *net.Dialer, network, addr string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	tlsConn := utls.UClient(conn, &utls.Config{ServerName: host}, utls.HelloChrome_Auto)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}

	return tlsConn, nil
}
