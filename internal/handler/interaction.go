package handler

import (
	"net/http"

	"github.com/tradepost/tradepost/internal/domain/catalog"
)

type toggleLikeRequest struct {
	ProductID string `json:"productId"`
}

type toggleLikeResponse struct {
	Liked bool `json:"liked"`
}

// ToggleLike handles POST /interactions/like. The outcome is decided by
// prior state: liking when unliked, unliking when liked.
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req toggleLikeRequest
	if err := decodeStrict(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.ProductID == "" {
		respondError(w, r, &catalog.ValidationError{Fields: []string{"productId is required"}})
		return
	}

	result, err := h.interactions.ToggleLike(r.Context(), id.UserID, req.ProductID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	msg := "product liked"
	if !result.Liked {
		msg = "product unliked"
	}
	respond(w, http.StatusOK, msg, toggleLikeResponse{Liked: result.Liked})
}

// ListLiked handles POST /interactions/liked: the requester's liked
// listings, dangling references already filtered out.
func (h *Handler) ListLiked(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	items, err := h.interactions.ListLiked(r.Context(), id.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "liked products retrieved", map[string]any{
		"products": h.toViews(items),
	})
}
