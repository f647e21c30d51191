package images

import (
	"context"
	"strings"

	"travelplanner/internal/planner"
)

const defaultCategory = "experience"

// categoryImages maps lowercased categories to stock photos.
var categoryImages = map[string]string{
	"breakfast spot": "https://images.unsplash.com/photo-1495474472287-4d71bcdd2085?w=800&auto=format",
	"lunch":          "https://images.unsplash.com/photo-1555939594-58d7cb561ad1?w=800&auto=format",
	"dinner":         "https://images.unsplash.com/photo-1414235077428-338989a2e8c0?w=800&auto=format",
	"cafe":           "https://images.unsplash.com/photo-1501339847302-ac426a4a7cbb?w=800&auto=format",
	"attraction":     "https://images.unsplash.com/photo-1533929736458-ca588d08c8be?w=800&auto=format",
	"experience":     "https://images.unsplash.com/photo-1476514525535-07fb3b4ae5f1?w=800&auto=format",
	"shopping":       "https://images.unsplash.com/photo-1441986300917-64674bd600d8?w=800&auto=format",
}

// CategoryResolver picks a stock image by category.
type CategoryResolver struct {
	// Default replaces the built-in image for unknown categories.
	Default string
}

// Resolve implements planner.ImageResolver.
func (r CategoryResolver) Resolve(ctx context.Context, place planner.Place) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if url, ok := categoryImages[strings.ToLower(strings.TrimSpace(place.Category))]; ok {
		return url, nil
	}
	if r.Default != "" {
		return r.Default, nil
	}
	return categoryImages[defaultCategory], nil
}

// Placeholder returns the category image for place without a context, for use as a fallback.
func Placeholder(place planner.Place) string {
	url, _ := CategoryResolver{}.Resolve(context.Background(), place)
	return url
}
