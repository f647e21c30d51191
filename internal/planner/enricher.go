package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultMaxInFlight bounds simultaneous insight/image calls per run.
	DefaultMaxInFlight = 8
	// DefaultCallTimeout applies to each individual provider call.
	DefaultCallTimeout = 3 * time.Second
	// DefaultCacheTTL is used when the enricher has a cache but no TTL.
	DefaultCacheTTL = 6 * time.Hour

	// FallbackInsight replaces insights that could not be fetched.
	FallbackInsight = "Travelers recommend checking recent reviews before visiting."
	// FallbackImageURL replaces images that could not be resolved.
	FallbackImageURL = "https://images.unsplash.com/photo-1476514525535-07fb3b4ae5f1?w=800&auto=format"
)

const tracerName = "travelplanner/planner"

// Enricher joins places with insights and images under bounded concurrency.
// Failed calls degrade to fallback values; only caller cancellation fails a run.
type Enricher struct {
	Insights        InsightProvider
	Images          ImageResolver
	Cache           Cache
	MaxInFlight     int
	CallTimeout     time.Duration
	CacheTTL        time.Duration
	Retries         int
	FallbackInsight string
	FallbackImage   func(Place) string
	// Tracer defaults to the global provider's tracer.
	Tracer trace.Tracer
}

// NewEnricher returns an Enricher with default limits and a single retry.
func NewEnricher(insights InsightProvider, images ImageResolver, cache Cache) *Enricher {
	return &Enricher{
		Insights:    insights,
		Images:      images,
		Cache:       cache,
		MaxInFlight: DefaultMaxInFlight,
		CallTimeout: DefaultCallTimeout,
		CacheTTL:    DefaultCacheTTL,
		Retries:     1,
	}
}

// Enrich produces one candidate per place, in the order of places.
func (e *Enricher) Enrich(ctx context.Context, city string, places []Place) ([]Candidate, []Degradation, error) {
	if len(places) == 0 {
		return nil, nil, nil
	}

	insights := make([]string, len(places))
	images := make([]string, len(places))
	insightErrs := make([]error, len(places))
	imageErrs := make([]error, len(places))

	var g errgroup.Group
	g.SetLimit(e.maxInFlight())

	for i := range places {
		place := places[i]
		idx := i
		g.Go(func() error {
			insights[idx], insightErrs[idx] = e.insight(ctx, city, place)
			return nil
		})
		g.Go(func() error {
			images[idx], imageErrs[idx] = e.image(ctx, city, place)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	candidates := make([]Candidate, len(places))
	var degraded []Degradation
	for i, place := range places {
		candidate := Candidate{Place: place, Insight: insights[i], ImageURL: images[i], Order: i}
		if insightErrs[i] != nil {
			candidate.Insight = e.fallbackInsight()
			degraded = append(degraded, Degradation{Provider: "insight", PlaceID: place.ID, Place: place.Name, Err: insightErrs[i]})
		}
		if imageErrs[i] != nil {
			candidate.ImageURL = e.fallbackImage(place)
			degraded = append(degraded, Degradation{Provider: "image", PlaceID: place.ID, Place: place.Name, Err: imageErrs[i]})
		}
		candidates[i] = candidate
	}

	return candidates, degraded, nil
}

func (e *Enricher) insight(ctx context.Context, city string, place Place) (string, error) {
	if e.Insights == nil {
		return "", ErrProviderUnavailable
	}
	return e.lookup(ctx, "insight", city, place, func(ctx context.Context) (string, error) {
		return e.Insights.Fetch(ctx, city, place.Name)
	})
}

func (e *Enricher) image(ctx context.Context, city string, place Place) (string, error) {
	if e.Images == nil {
		return "", ErrProviderUnavailable
	}
	return e.lookup(ctx, "image", city, place, func(ctx context.Context) (string, error) {
		return e.Images.Resolve(ctx, place)
	})
}

func (e *Enricher) lookup(ctx context.Context, kind, city string, place Place, call func(context.Context) (string, error)) (string, error) {
	ctx, span := e.tracer().Start(ctx, "planner."+kind, trace.WithAttributes(
		attribute.String("city.name", city),
		attribute.String("place.name", place.Name),
	))
	defer span.End()

	load := func(ctx context.Context) (string, error) {
		return callWithRetry(ctx, e.Retries, func(ctx context.Context) (string, error) {
			callCtx, cancel := context.WithTimeout(ctx, e.callTimeout())
			defer cancel()
			value, err := call(callCtx)
			if err == nil && strings.TrimSpace(value) == "" {
				err = fmt.Errorf("%w: empty %s", ErrProviderUnavailable, kind)
			}
			return value, Classify(kind, "fetch", err)
		})
	}

	var (
		value string
		err   error
	)
	if e.Cache != nil {
		value, err = e.Cache.GetOrLoad(ctx, cacheKey(kind, city, place), e.cacheTTL(), load)
	} else {
		value, err = load(ctx)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, kind+" degraded")
		return "", err
	}
	return value, nil
}

func cacheKey(kind, city string, place Place) string {
	id := strings.TrimSpace(place.ID)
	if id == "" {
		id = strings.ToLower(strings.TrimSpace(place.Name))
	}
	return kind + ":" + strings.ToLower(strings.TrimSpace(city)) + ":" + id
}

func (e *Enricher) tracer() trace.Tracer {
	if e.Tracer != nil {
		return e.Tracer
	}
	return otel.Tracer(tracerName)
}

func (e *Enricher) maxInFlight() int {
	if e.MaxInFlight <= 0 {
		return DefaultMaxInFlight
	}
	return e.MaxInFlight
}

func (e *Enricher) callTimeout() time.Duration {
	if e.CallTimeout <= 0 {
		return DefaultCallTimeout
	}
	return e.CallTimeout
}

func (e *Enricher) cacheTTL() time.Duration {
	if e.CacheTTL <= 0 {
		return DefaultCacheTTL
	}
	return e.CacheTTL
}

func (e *Enricher) fallbackInsight() string {
	if e.FallbackInsight != "" {
		return e.FallbackInsight
	}
	return FallbackInsight
}

func (e *Enricher) fallbackImage(place Place) string {
	if e.FallbackImage != nil {
		if url := e.FallbackImage(place); url != "" {
			return url
		}
	}
	return FallbackImageURL
}
