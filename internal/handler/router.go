package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tradepost/tradepost/internal/auth"
)

// Routes builds the API router. Read paths are public; mutating and
// interaction paths sit behind the identity gate.
func (h *Handler) Routes(gate *auth.Gate) http.Handler {
	r := chi.NewRouter()

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.BrowseProducts)
		r.Get("/search", h.SearchProducts)
		r.Get("/category/{category}", h.BrowseCategory)
		// Identity is optional on the detail route: anonymous fetches work,
		// authenticated ones additionally get their own like state.
		r.With(gate.Optional()).Get("/{id}", h.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(gate.Require())
			r.Post("/", h.CreateProduct)
			r.Put("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
			r.Post("/mine", h.ListMine)
		})
	})

	r.Route("/interactions", func(r chi.Router) {
		r.Use(gate.Require())
		r.Post("/like", h.ToggleLike)
		r.Post("/liked", h.ListLiked)
	})

	return r
}
