package catalog

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProduct() Product {
	return Product{
		Name:        "Mirrorless camera",
		Description: "Lightly used, comes with two lenses.",
		Category:    CategoryElectronics,
		Condition:   ConditionGood,
		Price:       decimal.RequireFromString("150.00"),
		Latitude:    28.6139,
		Longitude:   77.209,
		Images:      []string{"/uploads/cam-1.jpg"},
		OwnerID:     "u1",
		Status:      StatusActive,
	}
}

func TestValidate_OK(t *testing.T) {
	p := validProduct()
	require.NoError(t, Validate(&p))
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Product)
		wantMsg string
	}{
		{"empty name", func(p *Product) { p.Name = "  " }, "name is required"},
		{"name too long", func(p *Product) { p.Name = strings.Repeat("x", 101) }, "name must be at most 100"},
		{"empty description", func(p *Product) { p.Description = "" }, "description is required"},
		{"description too long", func(p *Product) { p.Description = strings.Repeat("x", 501) }, "description must be at most 500"},
		{"unknown category", func(p *Product) { p.Category = "Gadgets" }, "category"},
		{"unknown condition", func(p *Product) { p.Condition = "mint" }, "condition"},
		{"unknown status", func(p *Product) { p.Status = "archived" }, "status"},
		{"zero price", func(p *Product) { p.Price = decimal.Zero }, "price must be greater than 0"},
		{"negative price", func(p *Product) { p.Price = decimal.NewFromInt(-5) }, "price must be greater than 0"},
		{"latitude too high", func(p *Product) { p.Latitude = 1000 }, "latitude"},
		{"latitude too low", func(p *Product) { p.Latitude = -90.5 }, "latitude"},
		{"longitude too high", func(p *Product) { p.Longitude = 180.1 }, "longitude"},
		{"no images", func(p *Product) { p.Images = nil }, "at least one image"},
		{"no owner", func(p *Product) { p.OwnerID = "" }, "owner is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProduct()
			tt.mutate(&p)

			err := Validate(&p)
			require.Error(t, err)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Error(), tt.wantMsg)
		})
	}
}

func TestValidate_CountsCharactersNotBytes(t *testing.T) {
	// Multibyte text stays within the limits as long as the character
	// count does, matching the char_length checks in the schema.
	p := validProduct()
	p.Name = strings.Repeat("к", 100)
	p.Description = strings.Repeat("日", 500)
	require.NoError(t, Validate(&p))

	p.Name = strings.Repeat("к", 101)
	err := Validate(&p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name must be at most 100")
}

func TestValidate_BoundaryCoordinates(t *testing.T) {
	p := validProduct()
	p.Latitude, p.Longitude = -90, 180
	require.NoError(t, Validate(&p))

	p.Latitude, p.Longitude = 90, -180
	require.NoError(t, Validate(&p))
}

func TestApply_MergesOnlySetFields(t *testing.T) {
	p := validProduct()
	p.ID = "p1"
	p.LikesCount = 7

	name := "Camera body only"
	price := decimal.RequireFromString("99.99")
	merged := p.Apply(Update{Name: &name, Price: &price})

	assert.Equal(t, "Camera body only", merged.Name)
	assert.True(t, merged.Price.Equal(price))
	// Everything else is untouched.
	assert.Equal(t, p.Description, merged.Description)
	assert.Equal(t, p.Category, merged.Category)
	assert.Equal(t, p.OwnerID, merged.OwnerID)
	assert.Equal(t, 7, merged.LikesCount)
}

func TestApply_CannotTouchCounters(t *testing.T) {
	// Update has no counter fields at all; a full update leaves them alone.
	p := validProduct()
	p.LikesCount, p.ViewsCount = 3, 40

	status := StatusSold
	merged := p.Apply(Update{Status: &status})
	assert.Equal(t, 3, merged.LikesCount)
	assert.Equal(t, 40, merged.ViewsCount)
	assert.Equal(t, StatusSold, merged.Status)
}

func TestAuthorizeMutation(t *testing.T) {
	p := validProduct()
	p.OwnerID = "owner-1"

	require.NoError(t, AuthorizeMutation(&p, "owner-1"))
	assert.ErrorIs(t, AuthorizeMutation(&p, "someone-else"), ErrForbidden)
	assert.ErrorIs(t, AuthorizeMutation(&p, ""), ErrForbidden)
}
