package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Composer orchestrates place discovery, enrichment, filtering and scheduling.
type Composer struct {
	Places    PlacesProvider
	Enricher  *Enricher
	Scheduler Scheduler
	Logger    *slog.Logger
}

// NewComposer constructs a new Composer.
func NewComposer(places PlacesProvider, enricher *Enricher, scheduler Scheduler, logger *slog.Logger) (*Composer, error) {
	if places == nil {
		return nil, errors.New("composer requires a places provider")
	}
	if enricher == nil {
		return nil, errors.New("composer requires an enricher")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{Places: places, Enricher: enricher, Scheduler: scheduler, Logger: logger}, nil
}

// Compose runs the full pipeline for one request. Every returned error is a *ComposeError.
func (c *Composer) Compose(ctx context.Context, req Request) (Itinerary, error) {
	req, err := req.Validate()
	if err != nil {
		return Itinerary{}, err
	}

	started := time.Now()
	logger := c.Logger.With(
		"run_id", uuid.NewString(),
		"city", req.City,
		"date", req.Date,
		"min_rating", req.MinRating,
	)
	logger.Info("composition started")

	places, err := c.Places.Find(ctx, req.City, req.MinRating)
	if err != nil {
		logger.Error("places lookup failed", "error", err)
		return Itinerary{}, compositionFailed(req, fmt.Errorf("find places: %w", err))
	}
	places = atLeastRating(places, req.MinRating)
	if len(places) == 0 {
		logger.Info("composition finished", "outcome", "no_places", "elapsed", time.Since(started))
		return Itinerary{}, noPlacesError(req)
	}

	candidates, degraded, err := c.Enricher.Enrich(ctx, req.City, places)
	if err != nil {
		logger.Warn("composition aborted", "error", err, "elapsed", time.Since(started))
		return Itinerary{}, compositionFailed(req, fmt.Errorf("enrich candidates: %w", err))
	}
	for _, d := range degraded {
		logger.Warn("provider degraded", "provider", d.Provider, "place", d.Place, "place_id", d.PlaceID, "error", d.Err)
	}

	eligible := Filter(candidates, req.MinRating, req.prefs())
	if len(eligible) == 0 {
		logger.Info("composition finished", "outcome", "no_eligible_places", "candidates", len(candidates), "elapsed", time.Since(started))
		return Itinerary{}, noPlacesError(req)
	}

	itinerary := c.Scheduler.Schedule(req, eligible)
	if err := ctx.Err(); err != nil {
		return Itinerary{}, compositionFailed(req, err)
	}

	logger.Info("composition finished",
		"outcome", "ok",
		"candidates", len(candidates),
		"eligible", len(eligible),
		"scheduled", countActivities(itinerary),
		"degraded", len(degraded),
		"elapsed", time.Since(started),
	)
	return itinerary, nil
}

func atLeastRating(places []Place, minRating float64) []Place {
	out := places[:0:0]
	for _, p := range places {
		if p.Rating >= minRating {
			out = append(out, p)
		}
	}
	return out
}

func countActivities(it Itinerary) int {
	var n int
	for _, slot := range it.Slots {
		n += len(slot.Activities)
	}
	return n
}
