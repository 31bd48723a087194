// Package auth converts inbound bearer credentials into trusted identities.
// Handlers downstream of its middleware receive an already-resolved Identity
// from the request context and never see raw credential material.
package auth

import "context"

// Identity captures the authenticated principal for one request.
type Identity struct {
	UserID string
}

type contextKey struct{}

// WithIdentity stores the identity within the context for downstream handlers.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFromContext retrieves the identity previously stored in context.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(*Identity)
	if !ok || id == nil {
		return nil, false
	}
	return id, true
}
