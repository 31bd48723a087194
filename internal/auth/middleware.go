package auth

import (
	"encoding/json"
	"net/http"
	"strings"
)

// extractBearerToken pulls the credential out of an Authorization header.
func extractBearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// Require returns middleware that authenticates the request and stores the
// resolved Identity in the context. Every failure reason surfaces as a 401;
// the distinction is kept in the error chain for logging, not for clients.
func (g *Gate) Require() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractBearerToken(r.Header.Get("Authorization"))
			if !ok {
				respondUnauthenticated(w, "authorization header missing or invalid")
				return
			}

			id, err := g.Authenticate(r.Context(), token)
			if err != nil {
				respondUnauthenticated(w, "authentication failed")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// Optional returns middleware that resolves the Identity when a valid
// credential is present and passes the request through untouched otherwise.
func (g *Gate) Optional() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := extractBearerToken(r.Header.Get("Authorization")); ok {
				if id := g.AuthenticateOptional(r.Context(), token); id != nil {
					r = r.WithContext(WithIdentity(r.Context(), id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func respondUnauthenticated(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}
