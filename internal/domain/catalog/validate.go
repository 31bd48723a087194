package catalog

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	maxNameLen        = 100
	maxDescriptionLen = 500
)

// Coordinate bounds for a WGS84 point.
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// ValidatePoint checks a coordinate pair against the WGS84 bounds.
func ValidatePoint(lat, lng float64) error {
	var fields []string
	if lat < MinLatitude || lat > MaxLatitude {
		fields = append(fields, fmt.Sprintf("latitude must be between %g and %g", MinLatitude, MaxLatitude))
	}
	if lng < MinLongitude || lng > MaxLongitude {
		fields = append(fields, fmt.Sprintf("longitude must be between %g and %g", MinLongitude, MaxLongitude))
	}
	if fields != nil {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Validate checks every record invariant on p. It is called on insert and on
// the merged record of every partial update, so a partial edit can never
// leave an invalid combination behind.
func Validate(p *Product) error {
	var fields []string

	name := strings.TrimSpace(p.Name)
	if name == "" {
		fields = append(fields, "name is required")
	} else if utf8.RuneCountInString(p.Name) > maxNameLen {
		fields = append(fields, fmt.Sprintf("name must be at most %d characters", maxNameLen))
	}

	desc := strings.TrimSpace(p.Description)
	if desc == "" {
		fields = append(fields, "description is required")
	} else if utf8.RuneCountInString(p.Description) > maxDescriptionLen {
		fields = append(fields, fmt.Sprintf("description must be at most %d characters", maxDescriptionLen))
	}

	if !p.Category.Valid() {
		fields = append(fields, fmt.Sprintf("category %q is not recognized", p.Category))
	}
	if !p.Condition.Valid() {
		fields = append(fields, fmt.Sprintf("condition %q is not recognized", p.Condition))
	}
	if !p.Status.Valid() {
		fields = append(fields, fmt.Sprintf("status %q is not recognized", p.Status))
	}

	if !p.Price.IsPositive() {
		fields = append(fields, "price must be greater than 0")
	}

	if err := ValidatePoint(p.Latitude, p.Longitude); err != nil {
		fields = append(fields, err.(*ValidationError).Fields...)
	}

	if len(p.Images) == 0 {
		fields = append(fields, "at least one image is required")
	}

	if p.OwnerID == "" {
		fields = append(fields, "owner is required")
	}

	if fields != nil {
		return &ValidationError{Fields: fields}
	}
	return nil
}
