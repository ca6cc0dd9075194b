//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateRequest() CreatePropertyRequest {
	return CreatePropertyRequest{
		Location:    "Sector 17, Chandigarh",
		Price:       7_500_000,
		Description: "Corner plot",
		Bedrooms:    3,
		Bathrooms:   2,
		ImageURL:    "https://img.example.com/p.jpg",
		Area:        1800,
	}
}

func TestCreatePropertyRequest_ValidateDefaults(t *testing.T) {
	req := validCreateRequest()
	req.Amenities = []string{" Park ", "", "Gym"}

	require.NoError(t, req.Validate())
	assert.Equal(t, PropertyTypeHouse, req.Type)
	assert.Equal(t, PropertyStatusReady, req.Status)
	assert.Equal(t, "East", req.Facing)
	assert.Equal(t, []string{"Park", "Gym"}, req.Amenities)
	assert.Empty(t, req.GalleryImages)
}

func TestCreatePropertyRequest_ValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *CreatePropertyRequest)
		want   string
	}{
		{"missing location", func(r *CreatePropertyRequest) { r.Location = "  " }, "location"},
		{"long location", func(r *CreatePropertyRequest) { r.Location = strings.Repeat("x", 256) }, "location"},
		{"missing description", func(r *CreatePropertyRequest) { r.Description = "" }, "description"},
		{"missing image", func(r *CreatePropertyRequest) { r.ImageURL = "" }, "imageUrl"},
		{"zero price", func(r *CreatePropertyRequest) { r.Price = 0 }, "price"},
		{"zero area", func(r *CreatePropertyRequest) { r.Area = 0 }, "area"},
		{"negative rooms", func(r *CreatePropertyRequest) { r.Bedrooms = -1 }, "bedrooms"},
		{"bad type", func(r *CreatePropertyRequest) { r.Type = "Castle" }, "type"},
		{"bad status", func(r *CreatePropertyRequest) { r.Status = "Sold" }, "status"},
		{"bad facing", func(r *CreatePropertyRequest) { r.Facing = "Up" }, "facing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(&req)
			err := req.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitList("a, b,,c , "))
	assert.Empty(t, SplitList(""))
}

func TestPropertyFilter_Match(t *testing.T) {
	house := Property{Price: 2_000_000, Type: PropertyTypeHouse}
	villa := Property{Price: 90_000_000, Type: PropertyTypeKothi}

	assert.True(t, PropertyFilter{}.Match(house))
	assert.False(t, PropertyFilter{}.Match(villa), "default ceiling is five crore")
	assert.True(t, PropertyFilter{MaxPrice: 100_000_000, Type: "All"}.Match(villa))
	assert.False(t, PropertyFilter{Type: "Plot"}.Match(house))
	assert.True(t, PropertyFilter{Type: "House"}.Match(house))
}
