// Package search translates discovery parameters into catalog queries and
// ranked pages. Browse mode filters by category, status, and price range
// with a choice of sort orders; search mode matches a keyword against name,
// description, and category and always ranks by ascending distance from the
// caller's location. Matching is boolean membership, never relevance scored.
package search

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-faster/errors"

	"github.com/tradepost/tradepost/internal/domain/catalog"
)

// Page is one window of discovery results. TotalCount reflects the filtered
// count, not the window size.
type Page struct {
	Items      []catalog.Product
	TotalCount int
	Page       int
	Limit      int
	HasNext    bool
}

// Engine composes and executes discovery queries against the catalog store.
type Engine struct {
	catalog catalog.Repository
}

// NewEngine creates an Engine backed by the given catalog store.
func NewEngine(store catalog.Repository) *Engine {
	return &Engine{catalog: store}
}

// Browse runs a browse-mode query: active listings filtered by optional
// category, status, and price range, sorted by recency or price.
func (e *Engine) Browse(ctx context.Context, req BrowseRequest) (*Page, error) {
	window, fields := parsePage(req.Page, req.Limit)

	category, msg := parseCategory(req.Category)
	if msg != "" {
		fields = append(fields, msg)
	}

	status := catalog.StatusActive
	if req.Status != "" {
		status = catalog.Status(req.Status)
		if !status.Valid() {
			fields = append(fields, "status "+strconv.Quote(req.Status)+" is not recognized")
		}
	}

	minPrice, msg := parsePrice("minPrice", req.MinPrice)
	if msg != "" {
		fields = append(fields, msg)
	}
	maxPrice, msg := parsePrice("maxPrice", req.MaxPrice)
	if msg != "" {
		fields = append(fields, msg)
	}
	if minPrice != nil && maxPrice != nil && minPrice.GreaterThan(*maxPrice) {
		fields = append(fields, "minPrice must not exceed maxPrice")
	}

	sort := catalog.SortNewest
	if req.SortBy != "" {
		sort = catalog.Sort(req.SortBy)
		if !sort.Valid() {
			fields = append(fields, "sortBy "+strconv.Quote(req.SortBy)+" is not recognized")
		}
	}

	if fields != nil {
		return nil, &catalog.ValidationError{Fields: fields}
	}

	return e.run(ctx, catalog.Query{
		Status:   status,
		Category: category,
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Sort:     sort,
		Offset:   window.offset(),
		Limit:    window.limit,
	}, window)
}

// Search runs a search-mode query: a mandatory keyword matched against
// name, description, and category of active listings, ranked by ascending
// great-circle distance from the mandatory location and truncated beyond
// the distance cap.
func (e *Engine) Search(ctx context.Context, req SearchRequest) (*Page, error) {
	window, fields := parsePage(req.Page, req.Limit)

	keyword := strings.TrimSpace(req.Keyword)
	if keyword == "" {
		fields = append(fields, "search term is required")
	}

	var near *catalog.GeoPoint
	if strings.TrimSpace(req.Location) == "" {
		fields = append(fields, "location is required")
	} else {
		point, err := ParseLocation(req.Location)
		if err != nil {
			var ve *catalog.ValidationError
			if !errors.As(err, &ve) {
				return nil, err
			}
			fields = append(fields, ve.Fields...)
		} else {
			near = &point
		}
	}

	category, msg := parseCategory(req.Category)
	if msg != "" {
		fields = append(fields, msg)
	}

	maxDistance := float64(DefaultMaxDistanceMeters)
	if req.MaxDistance != "" {
		d, err := strconv.ParseFloat(req.MaxDistance, 64)
		if err != nil || d <= 0 || d > maxDistanceCeilingMeters {
			fields = append(fields, "maxDistance must be a positive number of meters")
		} else {
			maxDistance = d
		}
	}

	if fields != nil {
		return nil, &catalog.ValidationError{Fields: fields}
	}

	return e.run(ctx, catalog.Query{
		Status:            catalog.StatusActive,
		Category:          category,
		Keyword:           keyword,
		Near:              near,
		MaxDistanceMeters: maxDistance,
		Offset:            window.offset(),
		Limit:             window.limit,
	}, window)
}

// ListOwned pages through every listing of one owner, regardless of status,
// newest first.
func (e *Engine) ListOwned(ctx context.Context, ownerID, page, limit string) (*Page, error) {
	window, fields := parsePage(page, limit)
	if fields != nil {
		return nil, &catalog.ValidationError{Fields: fields}
	}

	return e.run(ctx, catalog.Query{
		OwnerID: ownerID,
		Sort:    catalog.SortNewest,
		Offset:  window.offset(),
		Limit:   window.limit,
	}, window)
}

func (e *Engine) run(ctx context.Context, q catalog.Query, window pageWindow) (*Page, error) {
	items, total, err := e.catalog.Query(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "query catalog")
	}

	return &Page{
		Items:      items,
		TotalCount: total,
		Page:       window.page,
		Limit:      window.limit,
		HasNext:    window.offset()+len(items) < total,
	}, nil
}
