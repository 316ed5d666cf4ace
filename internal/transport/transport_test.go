package transport

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNew_DefaultIsStandardTransport(t *testing.T) {
	rt := New(Options{})
	if _, ok := rt.(*http.Transport); !ok {
		t.Errorf("New(Options{}) = %T, want *http.Transport", rt)
	}
}

func TestNew_FingerprintRoundTripsPlainHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	rt := New(Options{DialTimeout: 2 * time.Second, Fingerprint: true})
	if _, ok := rt.(*chromeTransport); !ok {
		t.Fatalf("New(Fingerprint) = %T, want *chromeTransport", rt)
	}

	client := &http.Client{Transport: rt, Timeout: 5 * time.Second}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Errorf("body = %q, want ok", body)
	}
}
