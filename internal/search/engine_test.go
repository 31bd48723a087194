package search

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradepost/tradepost/internal/domain/catalog"
)

// catalogStub implements catalog.Repository for engine tests. Only Query is
// ever exercised here; the rest panic to catch accidental calls.
type catalogStub struct {
	queryFn func(ctx context.Context, q catalog.Query) ([]catalog.Product, int, error)
	calls   int
}

func (s *catalogStub) Query(ctx context.Context, q catalog.Query) ([]catalog.Product, int, error) {
	s.calls++
	return s.queryFn(ctx, q)
}

func (s *catalogStub) Insert(context.Context, *catalog.Product) error { panic("unexpected Insert") }
func (s *catalogStub) GetByID(context.Context, string) (*catalog.Product, error) {
	panic("unexpected GetByID")
}
func (s *catalogStub) UpdateFields(context.Context, string, string, catalog.Update) (*catalog.Product, error) {
	panic("unexpected UpdateFields")
}
func (s *catalogStub) Delete(context.Context, string, string) error { panic("unexpected Delete") }
func (s *catalogStub) ToggleLike(context.Context, string, string) (bool, error) {
	panic("unexpected ToggleLike")
}
func (s *catalogStub) IncrementViews(context.Context, string) (*catalog.Product, error) {
	panic("unexpected IncrementViews")
}
func (s *catalogStub) ListLiked(context.Context, string) ([]catalog.Product, error) {
	panic("unexpected ListLiked")
}
func (s *catalogStub) HasLiked(context.Context, string, string) (bool, error) {
	panic("unexpected HasLiked")
}

func products(n int) []catalog.Product {
	out := make([]catalog.Product, n)
	for i := range out {
		out[i] = catalog.Product{ID: "p" + string(rune('a'+i))}
	}
	return out
}

func TestBrowse_Defaults(t *testing.T) {
	store := &catalogStub{queryFn: func(_ context.Context, q catalog.Query) ([]catalog.Product, int, error) {
		assert.Equal(t, catalog.StatusActive, q.Status)
		assert.Empty(t, q.Category)
		assert.Nil(t, q.MinPrice)
		assert.Nil(t, q.MaxPrice)
		assert.Equal(t, catalog.SortNewest, q.Sort)
		assert.Equal(t, 0, q.Offset)
		assert.Equal(t, DefaultLimit, q.Limit)
		return products(3), 3, nil
	}}

	page, err := NewEngine(store).Browse(context.Background(), BrowseRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, 3, page.TotalCount)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultLimit, page.Limit)
	assert.False(t, page.HasNext)
}

func TestBrowse_FiltersAndPaging(t *testing.T) {
	store := &catalogStub{queryFn: func(_ context.Context, q catalog.Query) ([]catalog.Product, int, error) {
		assert.Equal(t, catalog.CategoryBooks, q.Category)
		assert.Equal(t, catalog.StatusSold, q.Status)
		require.NotNil(t, q.MinPrice)
		require.NotNil(t, q.MaxPrice)
		assert.True(t, q.MinPrice.Equal(decimal.RequireFromString("10")))
		assert.True(t, q.MaxPrice.Equal(decimal.RequireFromString("99.5")))
		assert.Equal(t, catalog.SortPriceAsc, q.Sort)
		assert.Equal(t, 10, q.Offset)
		assert.Equal(t, 5, q.Limit)
		return products(5), 23, nil
	}}

	page, err := NewEngine(store).Browse(context.Background(), BrowseRequest{
		Category: "Books",
		Status:   "sold",
		MinPrice: "10",
		MaxPrice: "99.5",
		SortBy:   "price-asc",
		Page:     "3",
		Limit:    "5",
	})
	require.NoError(t, err)
	assert.Equal(t, 23, page.TotalCount)
	assert.Equal(t, 3, page.Page)
	assert.True(t, page.HasNext)
}

func TestBrowse_LastPageHasNoNext(t *testing.T) {
	store := &catalogStub{queryFn: func(_ context.Context, q catalog.Query) ([]catalog.Product, int, error) {
		return products(3), 23, nil
	}}

	page, err := NewEngine(store).Browse(context.Background(), BrowseRequest{Page: "5", Limit: "5"})
	require.NoError(t, err)
	assert.False(t, page.HasNext)
}

func TestBrowse_Rejections(t *testing.T) {
	tests := []struct {
		name string
		req  BrowseRequest
		want string
	}{
		{"page zero", BrowseRequest{Page: "0"}, "page must be an integer >= 1"},
		{"page garbage", BrowseRequest{Page: "two"}, "page must be an integer >= 1"},
		{"limit zero", BrowseRequest{Limit: "0"}, "limit must be an integer between 1 and 100"},
		{"limit over cap", BrowseRequest{Limit: "101"}, "limit must be an integer between 1 and 100"},
		{"unknown category", BrowseRequest{Category: "Gadgets"}, `category "Gadgets" is not recognized`},
		{"unknown status", BrowseRequest{Status: "archived"}, `status "archived" is not recognized`},
		{"unknown sort", BrowseRequest{SortBy: "rating"}, `sortBy "rating" is not recognized`},
		{"bad minPrice", BrowseRequest{MinPrice: "cheap"}, "minPrice must be a decimal number"},
		{"negative maxPrice", BrowseRequest{MaxPrice: "-1"}, "maxPrice must not be negative"},
		{"inverted range", BrowseRequest{MinPrice: "50", MaxPrice: "10"}, "minPrice must not exceed maxPrice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &catalogStub{queryFn: func(context.Context, catalog.Query) ([]catalog.Product, int, error) {
				t.Fatal("query must not run on invalid input")
				return nil, 0, nil
			}}

			_, err := NewEngine(store).Browse(context.Background(), tt.req)

			var ve *catalog.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tt.want)
			assert.Zero(t, store.calls)
		})
	}
}

func TestSearch_Defaults(t *testing.T) {
	store := &catalogStub{queryFn: func(_ context.Context, q catalog.Query) ([]catalog.Product, int, error) {
		assert.Equal(t, "camera", q.Keyword)
		require.NotNil(t, q.Near)
		assert.InDelta(t, 28.6139, q.Near.Latitude, 1e-9)
		assert.InDelta(t, 77.209, q.Near.Longitude, 1e-9)
		assert.Equal(t, float64(DefaultMaxDistanceMeters), q.MaxDistanceMeters)
		assert.Equal(t, catalog.StatusActive, q.Status)
		return products(2), 2, nil
	}}

	page, err := NewEngine(store).Search(context.Background(), SearchRequest{
		Keyword:  " camera ",
		Location: "28.6139,77.209",
	})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
}

func TestSearch_CustomDistanceAndCategory(t *testing.T) {
	store := &catalogStub{queryFn: func(_ context.Context, q catalog.Query) ([]catalog.Product, int, error) {
		assert.Equal(t, 2500.0, q.MaxDistanceMeters)
		assert.Equal(t, catalog.CategoryElectronics, q.Category)
		return nil, 0, nil
	}}

	_, err := NewEngine(store).Search(context.Background(), SearchRequest{
		Keyword:     "camera",
		Location:    "28.6,77.2",
		Category:    "Electronics",
		MaxDistance: "2500",
	})
	require.NoError(t, err)
}

func TestSearch_Rejections(t *testing.T) {
	tests := []struct {
		name string
		req  SearchRequest
		want string
	}{
		{"missing keyword", SearchRequest{Location: "28.6,77.2"}, "search term is required"},
		{"blank keyword", SearchRequest{Keyword: "   ", Location: "28.6,77.2"}, "search term is required"},
		{"missing location", SearchRequest{Keyword: "camera"}, "location is required"},
		{"malformed location", SearchRequest{Keyword: "camera", Location: "28.6"}, `location must be "lat,lng"`},
		{"non-numeric location", SearchRequest{Keyword: "camera", Location: "here,there"}, "location coordinates must be numbers"},
		{"out-of-range location", SearchRequest{Keyword: "camera", Location: "1000,1000"}, "latitude must be between -90 and 90"},
		{"negative distance", SearchRequest{Keyword: "camera", Location: "28.6,77.2", MaxDistance: "-5"}, "maxDistance must be a positive number of meters"},
		{"absurd distance", SearchRequest{Keyword: "camera", Location: "28.6,77.2", MaxDistance: "1e12"}, "maxDistance must be a positive number of meters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &catalogStub{queryFn: func(context.Context, catalog.Query) ([]catalog.Product, int, error) {
				t.Fatal("query must not run on invalid input")
				return nil, 0, nil
			}}

			_, err := NewEngine(store).Search(context.Background(), tt.req)

			var ve *catalog.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tt.want)
			assert.Zero(t, store.calls)
		})
	}
}

func TestListOwned(t *testing.T) {
	store := &catalogStub{queryFn: func(_ context.Context, q catalog.Query) ([]catalog.Product, int, error) {
		assert.Equal(t, "owner-1", q.OwnerID)
		assert.Empty(t, q.Status)
		assert.Equal(t, catalog.SortNewest, q.Sort)
		assert.Equal(t, 20, q.Offset)
		return products(1), 21, nil
	}}

	page, err := NewEngine(store).ListOwned(context.Background(), "owner-1", "2", "")
	require.NoError(t, err)
	assert.Equal(t, 21, page.TotalCount)
	assert.False(t, page.HasNext)
}

func TestParseLocation(t *testing.T) {
	point, err := ParseLocation(" -33.87 , 151.21 ")
	require.NoError(t, err)
	assert.InDelta(t, -33.87, point.Latitude, 1e-9)
	assert.InDelta(t, 151.21, point.Longitude, 1e-9)

	_, err = ParseLocation("1,2,3")
	assert.Error(t, err)
}
