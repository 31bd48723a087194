// Package interaction implements like toggling and view counting. Counter
// mutation is delegated wholly to the catalog store, which applies it as an
// atomic field-level update; this service only orchestrates lookups and
// never caches or read-modify-writes a counter in process.
package interaction

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/tradepost/tradepost/internal/domain/catalog"
	"github.com/tradepost/tradepost/internal/domain/user"
)

// Service toggles per-user like state and records listing views.
type Service struct {
	catalog catalog.Repository
	users   user.Repository
}

// NewService creates an interaction Service over the given stores.
func NewService(store catalog.Repository, users user.Repository) *Service {
	return &Service{catalog: store, users: users}
}

// ToggleResult reports the like state after a toggle.
type ToggleResult struct {
	Liked bool
}

// ToggleLike flips the (user, product) like membership. Liking adds the
// product to the user's liked set and increments the listing's counter;
// unliking removes it and decrements, floored at zero. The two outcomes are
// decided by prior state, not by the caller.
func (s *Service) ToggleLike(ctx context.Context, userID, productID string) (*ToggleResult, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, errors.Wrap(err, "resolve user")
	}

	liked, err := s.catalog.ToggleLike(ctx, userID, productID)
	if err != nil {
		return nil, errors.Wrap(err, "toggle like")
	}
	return &ToggleResult{Liked: liked}, nil
}

// RecordView bumps the listing's view counter by exactly one and returns
// the record with the post-increment count. Every successful detail fetch
// counts; there is no per-viewer de-duplication.
func (s *Service) RecordView(ctx context.Context, productID string) (*catalog.Product, error) {
	p, err := s.catalog.IncrementViews(ctx, productID)
	if err != nil {
		return nil, errors.Wrap(err, "record view")
	}
	return p, nil
}

// HasLiked reports whether the user currently likes the listing. The caller
// supplies an already-authenticated user id, so no account lookup happens.
func (s *Service) HasLiked(ctx context.Context, userID, productID string) (bool, error) {
	liked, err := s.catalog.HasLiked(ctx, userID, productID)
	if err != nil {
		return false, errors.Wrap(err, "check like")
	}
	return liked, nil
}

// ListLiked resolves the user's liked set to full listings. Ids left
// dangling by deleted listings are filtered out rather than surfaced.
func (s *Service) ListLiked(ctx context.Context, userID string) ([]catalog.Product, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, errors.Wrap(err, "resolve user")
	}

	items, err := s.catalog.ListLiked(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list liked")
	}
	return items, nil
}
