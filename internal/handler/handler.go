// Package handler is the HTTP boundary of the discovery engine. It decodes
// and strictly validates request shapes, dispatches to the search engine,
// interaction service, and catalog store, and is the only place where typed
// domain errors are mapped to transport statuses.
package handler

import (
	"github.com/tradepost/tradepost/internal/domain/catalog"
	"github.com/tradepost/tradepost/internal/interaction"
	"github.com/tradepost/tradepost/internal/search"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in listing
	// responses. When empty, paths are returned as stored.
	ImageBaseURL string
}

// Handler assembles API responses from the engine components.
type Handler struct {
	catalog      catalog.Repository
	search       *search.Engine
	interactions *interaction.Service
	imageBaseURL string
}

// NewHandler constructs a Handler with the required dependencies.
func NewHandler(
	cfg Config,
	store catalog.Repository,
	engine *search.Engine,
	interactions *interaction.Service,
) *Handler {
	return &Handler{
		catalog:      store,
		search:       engine,
		interactions: interactions,
		imageBaseURL: cfg.ImageBaseURL,
	}
}
