package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tradepost/tradepost/internal/auth"
	"github.com/tradepost/tradepost/internal/domain/catalog"
	"github.com/tradepost/tradepost/internal/search"
)

// BrowseProducts handles GET /products: browse mode with optional category,
// status, price range, and sort.
func (h *Handler) BrowseProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.search.Browse(r.Context(), search.BrowseRequest{
		Category: q.Get("category"),
		Status:   q.Get("status"),
		MinPrice: q.Get("minPrice"),
		MaxPrice: q.Get("maxPrice"),
		SortBy:   q.Get("sortBy"),
		Page:     q.Get("page"),
		Limit:    q.Get("limit"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "products retrieved", h.toPageView(page))
}

// SearchProducts handles GET /products/search: keyword search ranked by
// distance from the supplied location.
func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.search.Search(r.Context(), search.SearchRequest{
		Keyword:     q.Get("search"),
		Location:    q.Get("loc"),
		Category:    q.Get("category"),
		MaxDistance: q.Get("maxDistance"),
		Page:        q.Get("page"),
		Limit:       q.Get("limit"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "search results", h.toPageView(page))
}

// BrowseCategory handles GET /products/category/{category}: category-scoped
// browse, paginated.
func (h *Handler) BrowseCategory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.search.Browse(r.Context(), search.BrowseRequest{
		Category: chi.URLParam(r, "category"),
		SortBy:   q.Get("sortBy"),
		Page:     q.Get("page"),
		Limit:    q.Get("limit"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "products retrieved", h.toPageView(page))
}

// GetProduct handles GET /products/{id}. Every successful detail fetch
// records a view, so the returned record carries the post-increment count.
// Callers with a valid credential also learn their own like state.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.interactions.RecordView(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	view := h.toView(*p)
	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		liked, err := h.interactions.HasLiked(r.Context(), id.UserID, p.ID)
		if err != nil {
			respondError(w, r, err)
			return
		}
		view.LikedByMe = &liked
	}
	respond(w, http.StatusOK, "product retrieved", view)
}

// createProductRequest is the strict body schema for listing creation. The
// image references come from the external upload collaborator. Coordinates
// are pointers so an omitted value is distinguishable from 0,0.
type createProductRequest struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Condition   string      `json:"condition"`
	Price       json.Number `json:"price"`
	Latitude    *float64    `json:"latitude"`
	Longitude   *float64    `json:"longitude"`
	Images      []string    `json:"images"`
}

// CreateProduct handles POST /products.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req createProductRequest
	if err := decodeStrict(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	var fields []string
	price, err := decimal.NewFromString(req.Price.String())
	if err != nil {
		fields = append(fields, "price must be a decimal number")
	}
	if req.Latitude == nil {
		fields = append(fields, "latitude is required")
	}
	if req.Longitude == nil {
		fields = append(fields, "longitude is required")
	}
	if fields != nil {
		respondError(w, r, &catalog.ValidationError{Fields: fields})
		return
	}

	p := catalog.Product{
		Name:        req.Name,
		Description: req.Description,
		Category:    catalog.Category(req.Category),
		Condition:   catalog.Condition(req.Condition),
		Price:       price,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		Images:      req.Images,
		OwnerID:     id.UserID,
	}
	if err := h.catalog.Insert(r.Context(), &p); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "product created", h.toView(p))
}

// updateProductRequest is the strict body schema for owner edits. Absent
// fields are left unchanged; counters are not part of the shape at all.
type updateProductRequest struct {
	Name        *string      `json:"name"`
	Description *string      `json:"description"`
	Category    *string      `json:"category"`
	Condition   *string      `json:"condition"`
	Price       *json.Number `json:"price"`
	Latitude    *float64     `json:"latitude"`
	Longitude   *float64     `json:"longitude"`
	Images      []string     `json:"images"`
	Status      *string      `json:"status"`
}

// UpdateProduct handles PUT /products/{id}: owner-only partial update with
// merged-record revalidation.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req updateProductRequest
	if err := decodeStrict(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	upd := catalog.Update{
		Name:        req.Name,
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Images:      req.Images,
	}
	if req.Category != nil {
		c := catalog.Category(*req.Category)
		upd.Category = &c
	}
	if req.Condition != nil {
		c := catalog.Condition(*req.Condition)
		upd.Condition = &c
	}
	if req.Status != nil {
		s := catalog.Status(*req.Status)
		upd.Status = &s
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(req.Price.String())
		if err != nil {
			respondError(w, r, &catalog.ValidationError{Fields: []string{"price must be a decimal number"}})
			return
		}
		upd.Price = &price
	}

	p, err := h.catalog.UpdateFields(r.Context(), chi.URLParam(r, "id"), id.UserID, upd)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "product updated", h.toView(*p))
}

// DeleteProduct handles DELETE /products/{id}: owner-only.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.catalog.Delete(r.Context(), chi.URLParam(r, "id"), id.UserID); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "product deleted", nil)
}

// ListMine handles POST /products/mine: the requester's own listings in
// every status, newest first.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	q := r.URL.Query()
	page, err := h.search.ListOwned(r.Context(), id.UserID, q.Get("page"), q.Get("limit"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "products retrieved", h.toPageView(page))
}
