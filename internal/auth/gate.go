package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v4"

	"github.com/tradepost/tradepost/internal/domain/user"
)

// ErrUnauthenticated is the base error for every authentication failure.
// The specific reasons below all unwrap to it; callers branching on the
// reason can errors.Is against the narrow sentinel, while the API boundary
// only needs the base to map to a 401.
var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrCredentialMissing  = fmt.Errorf("%w: credential missing", ErrUnauthenticated)
	ErrCredentialInvalid  = fmt.Errorf("%w: credential invalid", ErrUnauthenticated)
	ErrCredentialExpired  = fmt.Errorf("%w: credential expired", ErrUnauthenticated)
	ErrAccountUnknown     = fmt.Errorf("%w: account unknown", ErrUnauthenticated)
	ErrAccountDeactivated = fmt.Errorf("%w: account deactivated", ErrUnauthenticated)
)

// Gate verifies HS256 bearer tokens issued by the external identity
// subsystem and confirms the subject still refers to a live account.
type Gate struct {
	secret []byte
	users  user.Repository
}

// NewGate constructs a Gate. The secret is the HMAC key shared with the
// credential issuer; users is consulted on every verification, so a token
// for a deactivated or deleted account is rejected even before expiry.
func NewGate(secret []byte, users user.Repository) *Gate {
	return &Gate{secret: secret, users: users}
}

// Authenticate verifies the raw credential and resolves it to an Identity.
func (g *Gate) Authenticate(ctx context.Context, credential string) (*Identity, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, ErrCredentialMissing
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(credential, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.Errorf("unexpected signing method %q", t.Method.Alg())
			}
			return g.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrCredentialExpired
		}
		return nil, ErrCredentialInvalid
	}

	if claims.Subject == "" {
		return nil, ErrCredentialInvalid
	}

	u, err := g.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrAccountUnknown
		}
		return nil, errors.Wrap(err, "resolve account")
	}
	if !u.Active() {
		return nil, ErrAccountDeactivated
	}

	return &Identity{UserID: u.ID}, nil
}

// AuthenticateOptional resolves the credential when one is present and
// valid, and returns nil otherwise. It never fails: read paths use it where
// identity only affects personalization, not access.
func (g *Gate) AuthenticateOptional(ctx context.Context, credential string) *Identity {
	id, err := g.Authenticate(ctx, credential)
	if err != nil {
		return nil
	}
	return id
}
