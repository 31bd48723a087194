package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tradepost/tradepost/internal/domain/catalog"
)

// Pagination and proximity defaults. Out-of-range values are rejected, not
// clamped: a client asking for limit=500 gets a validation error instead of
// a silent 100.
const (
	DefaultLimit              = 20
	MaxLimit                  = 100
	DefaultMaxDistanceMeters  = 50_000
	maxDistanceCeilingMeters  = 20_000_000 // slightly over half the equator
)

// BrowseRequest carries the raw browse-mode query parameters. Empty strings
// mean the parameter was omitted.
type BrowseRequest struct {
	Category string
	Status   string
	MinPrice string
	MaxPrice string
	SortBy   string
	Page     string
	Limit    string
}

// SearchRequest carries the raw search-mode query parameters. Keyword and
// Location are mandatory; everything else is optional.
type SearchRequest struct {
	Keyword     string
	Location    string
	Category    string
	MaxDistance string
	Page        string
	Limit       string
}

// pageWindow is a validated page/limit pair.
type pageWindow struct {
	page  int
	limit int
}

func (w pageWindow) offset() int { return (w.page - 1) * w.limit }

// parsePage validates 1-based page and limit parameters, applying defaults
// for omitted values.
func parsePage(pageRaw, limitRaw string) (pageWindow, []string) {
	var fields []string

	page := 1
	if pageRaw != "" {
		n, err := strconv.Atoi(pageRaw)
		if err != nil || n < 1 {
			fields = append(fields, "page must be an integer >= 1")
		} else {
			page = n
		}
	}

	limit := DefaultLimit
	if limitRaw != "" {
		n, err := strconv.Atoi(limitRaw)
		if err != nil || n < 1 || n > MaxLimit {
			fields = append(fields, fmt.Sprintf("limit must be an integer between 1 and %d", MaxLimit))
		} else {
			limit = n
		}
	}

	return pageWindow{page: page, limit: limit}, fields
}

// ParseLocation parses a "lat,lng" pair and checks the coordinate ranges.
func ParseLocation(raw string) (catalog.GeoPoint, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return catalog.GeoPoint{}, &catalog.ValidationError{
			Fields: []string{`location must be "lat,lng"`},
		}
	}

	lat, latErr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, lngErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if latErr != nil || lngErr != nil {
		return catalog.GeoPoint{}, &catalog.ValidationError{
			Fields: []string{"location coordinates must be numbers"},
		}
	}

	if err := catalog.ValidatePoint(lat, lng); err != nil {
		return catalog.GeoPoint{}, err
	}
	return catalog.GeoPoint{Latitude: lat, Longitude: lng}, nil
}

func parseCategory(raw string) (catalog.Category, string) {
	if raw == "" {
		return "", ""
	}
	c := catalog.Category(raw)
	if !c.Valid() {
		return "", fmt.Sprintf("category %q is not recognized", raw)
	}
	return c, ""
}

func parsePrice(name, raw string) (*decimal.Decimal, string) {
	if raw == "" {
		return nil, ""
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Sprintf("%s must be a decimal number", name)
	}
	if d.IsNegative() {
		return nil, fmt.Sprintf("%s must not be negative", name)
	}
	return &d, ""
}
