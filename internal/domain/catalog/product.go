package catalog

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Category classifies a listing into one of the fixed marketplace sections.
type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryFurniture   Category = "Furniture"
	CategoryClothing    Category = "Clothing"
	CategoryBooks       Category = "Books"
	CategorySports      Category = "Sports"
	CategoryToys        Category = "Toys"
	CategoryVehicles    Category = "Vehicles"
	CategoryOther       Category = "Other"
)

// Categories lists every valid category in declaration order.
var Categories = []Category{
	CategoryElectronics,
	CategoryFurniture,
	CategoryClothing,
	CategoryBooks,
	CategorySports,
	CategoryToys,
	CategoryVehicles,
	CategoryOther,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Condition describes the physical state of a listed item.
type Condition string

const (
	ConditionNew     Condition = "new"
	ConditionLikeNew Condition = "like-new"
	ConditionGood    Condition = "good"
	ConditionFair    Condition = "fair"
	ConditionPoor    Condition = "poor"
)

// DefaultCondition is applied when the seller does not state one.
const DefaultCondition = ConditionGood

// Valid reports whether c is one of the known conditions.
func (c Condition) Valid() bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

// Status tracks a listing through its lifecycle.
type Status string

const (
	StatusActive   Status = "active"
	StatusSold     Status = "sold"
	StatusInactive Status = "inactive"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusSold, StatusInactive:
		return true
	}
	return false
}

// Product is a single marketplace listing. ID, OwnerID, and CreatedAt are
// immutable after insert. LikesCount and ViewsCount are only ever mutated
// through the interaction paths, never by owner edits.
type Product struct {
	ID          string
	Name        string
	Description string
	Category    Category
	Condition   Condition
	Price       decimal.Decimal
	Latitude    float64
	Longitude   float64
	Images      []string
	OwnerID     string
	Status      Status
	LikesCount  int
	ViewsCount  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Update carries a partial owner edit. Nil fields are left unchanged; the
// merged record is revalidated as a whole before it is written. Counter
// fields are deliberately absent.
type Update struct {
	Name        *string
	Description *string
	Category    *Category
	Condition   *Condition
	Price       *decimal.Decimal
	Latitude    *float64
	Longitude   *float64
	Images      []string
	Status      *Status
}

// Apply merges the update into a copy of p and returns the merged record.
func (p Product) Apply(u Update) Product {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Condition != nil {
		p.Condition = *u.Condition
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Latitude != nil {
		p.Latitude = *u.Latitude
	}
	if u.Longitude != nil {
		p.Longitude = *u.Longitude
	}
	if u.Images != nil {
		p.Images = u.Images
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	return p
}

// Sort enumerates the browse-mode orderings.
type Sort string

const (
	SortNewest    Sort = "newest"
	SortPriceAsc  Sort = "price-asc"
	SortPriceDesc Sort = "price-desc"
)

// Valid reports whether s is a supported sort key.
func (s Sort) Valid() bool {
	switch s {
	case SortNewest, SortPriceAsc, SortPriceDesc:
		return true
	}
	return false
}

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// Query describes a single catalog read. When Near is set the results are
// ordered by ascending great-circle distance from it (creation order breaks
// ties) and rows beyond MaxDistanceMeters are excluded; otherwise Sort
// applies. Keyword is matched case-insensitively against name, description,
// and category (boolean OR, no relevance scoring).
type Query struct {
	Status            Status
	Category          Category
	OwnerID           string
	Keyword           string
	MinPrice          *decimal.Decimal
	MaxPrice          *decimal.Decimal
	Near              *GeoPoint
	MaxDistanceMeters float64
	Sort              Sort
	Offset            int
	Limit             int
}

// Repository defines the catalog store contract. Implementations are the
// sole arbiter of atomicity for counter mutations: ToggleLike and
// IncrementViews must be applied as storage-level atomic updates, never as
// read-modify-write round-trips.
type Repository interface {
	// Insert validates p, assigns its ID and timestamps, and persists it.
	Insert(ctx context.Context, p *Product) error
	// GetByID returns the listing or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Product, error)
	// UpdateFields applies a partial owner edit. The merged record is
	// revalidated before writing. Returns ErrNotFound if the listing is
	// absent and ErrForbidden if requesterID is not the owner.
	UpdateFields(ctx context.Context, id, requesterID string, u Update) (*Product, error)
	// Delete removes the listing, with the same ownership contract as
	// UpdateFields. Liked-set entries referencing the listing are left in
	// place; readers filter them.
	Delete(ctx context.Context, id, requesterID string) error
	// Query returns one page of listings plus the total filtered count.
	Query(ctx context.Context, q Query) ([]Product, int, error)
	// ToggleLike flips the (userID, productID) like membership and adjusts
	// the likes counter atomically. Reports the resulting state.
	ToggleLike(ctx context.Context, userID, productID string) (liked bool, err error)
	// IncrementViews bumps the view counter by one and returns the listing
	// with the post-increment count.
	IncrementViews(ctx context.Context, id string) (*Product, error)
	// ListLiked resolves a user's liked set to full listings, dropping any
	// that no longer exist.
	ListLiked(ctx context.Context, userID string) ([]Product, error)
	// HasLiked reports whether the (userID, productID) like membership
	// exists. Dangling entries for deleted listings still count; callers
	// only ask about listings they already resolved.
	HasLiked(ctx context.Context, userID, productID string) (bool, error)
}
