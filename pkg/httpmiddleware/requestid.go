package httpmiddleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// maxRequestIDLen caps accepted X-Request-ID values; anything longer is
// replaced rather than truncated.
const maxRequestIDLen = 128

type requestIDKey struct{}

// RequestIDFromContext extracts the request ID from the context.
// It returns an empty string if no request ID is present.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestID returns a middleware that tags every request with an identifier.
// A well-formed incoming X-Request-ID header propagates unchanged so callers
// can correlate across services; anything missing, oversized, or containing
// non-printable bytes is replaced with a fresh UUID v4. The resolved id is
// written back on the response header and stored in the request context.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := sanitizeRequestID(r.Header.Get("X-Request-ID"))
			if id == "" {
				id = uuid.New().String()
			}

			w.Header().Set("X-Request-ID", id)

			ctx := context.WithValue(r.Context(), requestIDKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sanitizeRequestID returns id if it is usable as-is, otherwise "".
// Usable means 1..128 bytes of printable ASCII.
func sanitizeRequestID(id string) string {
	if len(id) == 0 || len(id) > maxRequestIDLen {
		return ""
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x20 || id[i] > 0x7E {
			return ""
		}
	}
	return id
}
