package flight

import (
	"log/slog"
	"net/http"
)

// Middleware attaches a flight token to every request context.
// A valid Storefront-Flight header is adopted; otherwise a fresh token is
// issued. The token is echoed on the response so clients can correlate.
func Middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(HeaderName)

			tok, err := ParseHeader(header)
			if err != nil {
				if header != "" {
					logger.Debug("ignoring invalid flight header",
						slog.String("header", header),
						slog.String("error", err.Error()))
				}
				tok = New("")
			}

			if echo, err := FormatHeader(tok); err == nil {
				w.Header().Set(HeaderName, echo)
			}

			next.ServeHTTP(w, r.WithContext(WithToken(r.Context(), tok)))
		})
	}
}

// LogAttrs returns the structured log attributes of the token in r, if any.
func LogAttrs(r *http.Request) []slog.Attr {
	tok, ok := FromContext(r.Context())
	if !ok {
		return nil
	}
	attrs := []slog.Attr{slog.String("flight_id", tok.ID)}
	if tok.View != "" {
		attrs = append(attrs, slog.String("flight_view", tok.View))
	}
	return attrs
}
