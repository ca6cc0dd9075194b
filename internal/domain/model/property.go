//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	maxLocationLen = 255

	// DefaultMaxPrice is the listing filter ceiling when none is given (5 crore).
	DefaultMaxPrice = 50_000_000
)

// PropertyType is the kind of listing.
type PropertyType string

const (
	PropertyTypeHouse     PropertyType = "House"
	PropertyTypeApartment PropertyType = "Apartment"
	PropertyTypeKothi     PropertyType = "Kothi"
	PropertyTypePlot      PropertyType = "Plot"
)

// Valid reports whether the property type is supported.
func (t PropertyType) Valid() bool {
	switch t {
	case PropertyTypeHouse, PropertyTypeApartment, PropertyTypeKothi, PropertyTypePlot:
		return true
	default:
		return false
	}
}

// PropertyStatus is the construction status of a listing.
type PropertyStatus string

const (
	PropertyStatusReady             PropertyStatus = "Ready to Move"
	PropertyStatusUnderConstruction PropertyStatus = "Under Construction"
)

// Valid reports whether the status is supported.
func (s PropertyStatus) Valid() bool {
	return s == PropertyStatusReady || s == PropertyStatusUnderConstruction
}

var facings = map[string]struct{}{
	"North": {}, "South": {}, "East": {}, "West": {},
	"North-East": {}, "North-West": {}, "South-East": {}, "South-West": {},
}

// ValidFacing reports whether the facing is one of the eight compass directions.
func ValidFacing(f string) bool {
	_, ok := facings[f]
	return ok
}

// Property is a catalog listing as served by the backend.
type Property struct {
	ID            string         `json:"_id"`
	Location      string         `json:"location"`
	Price         float64        `json:"price"`
	Description   string         `json:"description"`
	Bedrooms      int            `json:"bedrooms"`
	Bathrooms     int            `json:"bathrooms"`
	Type          PropertyType   `json:"type"`
	ImageURL      string         `json:"imageUrl"`
	Area          float64        `json:"area"`
	Status        PropertyStatus `json:"status"`
	Facing        string         `json:"facing"`
	Amenities     []string       `json:"amenities,omitempty"`
	GalleryImages []string       `json:"galleryImages,omitempty"`
}

// CreatePropertyRequest represents parameters to create a Property.
// Amenities and GalleryImages accept either JSON arrays or, through
// SplitList, a comma-separated form value.
type CreatePropertyRequest struct {
	Location      string         `json:"location"`
	Price         float64        `json:"price"`
	Description   string         `json:"description"`
	Bedrooms      int            `json:"bedrooms"`
	Bathrooms     int            `json:"bathrooms"`
	Type          PropertyType   `json:"type"`
	ImageURL      string         `json:"imageUrl"`
	Area          float64        `json:"area"`
	Status        PropertyStatus `json:"status"`
	Facing        string         `json:"facing"`
	Amenities     []string       `json:"amenities"`
	GalleryImages []string       `json:"galleryImages"`
}

// Validate validates CreatePropertyRequest and normalizes defaults.
func (r *CreatePropertyRequest) Validate() error {
	r.Location = strings.TrimSpace(r.Location)
	if r.Location == "" {
		return errors.New("location is required")
	}
	if utf8.RuneCountInString(r.Location) > maxLocationLen {
		return errors.New("location cannot exceed 255 characters")
	}
	if strings.TrimSpace(r.Description) == "" {
		return errors.New("description is required")
	}
	if strings.TrimSpace(r.ImageURL) == "" {
		return errors.New("imageUrl is required")
	}
	if r.Price <= 0 {
		return errors.New("price must be > 0")
	}
	if r.Area <= 0 {
		return errors.New("area must be > 0")
	}
	if r.Bedrooms < 0 || r.Bathrooms < 0 {
		return errors.New("bedrooms and bathrooms cannot be negative")
	}
	if r.Type == "" {
		r.Type = PropertyTypeHouse
	}
	if !r.Type.Valid() {
		return errors.New("invalid type")
	}
	if r.Status == "" {
		r.Status = PropertyStatusReady
	}
	if !r.Status.Valid() {
		return errors.New("invalid status")
	}
	if r.Facing == "" {
		r.Facing = "East"
	}
	if !ValidFacing(r.Facing) {
		return errors.New("invalid facing")
	}
	r.Amenities = compact(r.Amenities)
	r.GalleryImages = compact(r.GalleryImages)
	return nil
}

// SplitList turns "a, b,,c" into [a b c].
func SplitList(s string) []string {
	return compact(strings.Split(s, ","))
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		if v := strings.TrimSpace(item); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// PropertyFilter narrows the listing screen.
type PropertyFilter struct {
	MaxPrice float64
	Type     string // "All" or a PropertyType
}

// Match reports whether p passes the filter.
func (f PropertyFilter) Match(p Property) bool {
	maxPrice := f.MaxPrice
	if maxPrice <= 0 {
		maxPrice = DefaultMaxPrice
	}
	if p.Price > maxPrice {
		return false
	}
	return f.Type == "" || f.Type == "All" || string(p.Type) == f.Type
}
