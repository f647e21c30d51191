package planner

import (
	"context"
	"time"
)

// PlacesProvider discovers candidate places in a city.
type PlacesProvider interface {
	Find(ctx context.Context, city string, minRating float64) ([]Place, error)
}

// InsightProvider returns a short community-sourced remark about a place.
type InsightProvider interface {
	Fetch(ctx context.Context, city, placeName string) (string, error)
}

// ImageResolver returns an image URL for a place.
type ImageResolver interface {
	Resolve(ctx context.Context, place Place) (string, error)
}

// Cache is a shared read-through store for enrichment results. Implementations treat
// expired entries as misses and populate keys with an atomic insert-if-absent.
type Cache interface {
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) (string, error)) (string, error)
}
