package handler

import (
	"strings"
	"time"

	"github.com/tradepost/tradepost/internal/domain/catalog"
	"github.com/tradepost/tradepost/internal/search"
)

// productView is the JSON projection of a listing.
type productView struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Condition   string       `json:"condition"`
	Price       float64      `json:"price"`
	Location    locationView `json:"location"`
	Images      []string     `json:"images"`
	OwnerID     string       `json:"ownerId"`
	Status      string       `json:"status"`
	LikesCount  int          `json:"likesCount"`
	ViewsCount  int          `json:"viewsCount"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`

	// LikedByMe is only present on detail fetches made with a valid
	// credential.
	LikedByMe *bool `json:"likedByMe,omitempty"`
}

type locationView struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// pageView wraps one page of listings with its pagination envelope.
type pageView struct {
	Products   []productView  `json:"products"`
	Pagination paginationView `json:"pagination"`
}

type paginationView struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalCount int  `json:"totalCount"`
	HasNext    bool `json:"hasNext"`
}

// toView converts a domain listing into its response shape. Relative image
// paths are prefixed with the configured base URL.
func (h *Handler) toView(p catalog.Product) productView {
	images := make([]string, len(p.Images))
	for i, img := range p.Images {
		if h.imageBaseURL != "" && !strings.Contains(img, "://") {
			images[i] = h.imageBaseURL + img
		} else {
			images[i] = img
		}
	}

	return productView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    string(p.Category),
		Condition:   string(p.Condition),
		Price:       p.Price.InexactFloat64(),
		Location: locationView{
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
		},
		Images:     images,
		OwnerID:    p.OwnerID,
		Status:     string(p.Status),
		LikesCount: p.LikesCount,
		ViewsCount: p.ViewsCount,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func (h *Handler) toViews(items []catalog.Product) []productView {
	out := make([]productView, len(items))
	for i, p := range items {
		out[i] = h.toView(p)
	}
	return out
}

func (h *Handler) toPageView(page *search.Page) pageView {
	return pageView{
		Products: h.toViews(page.Items),
		Pagination: paginationView{
			Page:       page.Page,
			Limit:      page.Limit,
			TotalCount: page.TotalCount,
			HasNext:    page.HasNext,
		},
	}
}
