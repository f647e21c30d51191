package planner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

type fakePlaces struct {
	places []Place
	err    error
	calls  atomic.Int32
}

func (f *fakePlaces) Find(ctx context.Context, city string, minRating float64) ([]Place, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]Place, len(f.places))
	copy(out, f.places)
	return out, nil
}

// inFlight tracks concurrent provider calls shared by the insight and image fakes.
type inFlight struct {
	current atomic.Int32
	max     atomic.Int32
}

func (t *inFlight) enter() {
	n := t.current.Add(1)
	for {
		m := t.max.Load()
		if n <= m || t.max.CompareAndSwap(m, n) {
			return
		}
	}
}

func (t *inFlight) leave() { t.current.Add(-1) }

type fakeInsights struct {
	mu       sync.Mutex
	calls    map[string]int
	failFor  map[string]int
	delay    func(name string) time.Duration
	block    bool
	tracker  *inFlight
	started  chan struct{}
	startOne sync.Once
}

func (f *fakeInsights) Fetch(ctx context.Context, city, placeName string) (string, error) {
	if f.tracker != nil {
		f.tracker.enter()
		defer f.tracker.leave()
	}
	f.mu.Lock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[placeName]++
	attempt := f.calls[placeName]
	f.mu.Unlock()

	if f.started != nil {
		f.startOne.Do(func() { close(f.started) })
	}
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.delay != nil {
		select {
		case <-time.After(f.delay(placeName)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if fails, ok := f.failFor[placeName]; ok && (fails < 0 || attempt <= fails) {
		return "", errors.New("thread scrape failed")
	}
	return "Locals say: " + placeName + " is worth it", nil
}

func (f *fakeInsights) callsFor(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeInsights) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int
	for _, c := range f.calls {
		n += c
	}
	return n
}

type fakeImages struct {
	fail    map[string]bool
	tracker *inFlight
	delay   time.Duration
	calls   atomic.Int32
}

func (f *fakeImages) Resolve(ctx context.Context, place Place) (string, error) {
	f.calls.Add(1)
	if f.tracker != nil {
		f.tracker.enter()
		defer f.tracker.leave()
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.fail[place.Name] {
		return "", ErrNoImage
	}
	return "https://img.example.com/" + place.ID + ".jpg", nil
}

type mapCache struct {
	mu     sync.Mutex
	values map[string]string
}

func (c *mapCache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) (string, error)) (string, error) {
	c.mu.Lock()
	if v, ok := c.values[key]; ok {
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	v, err := load(ctx)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	if c.values == nil {
		c.values = map[string]string{}
	}
	if existing, ok := c.values[key]; ok {
		v = existing
	} else {
		c.values[key] = v
	}
	c.mu.Unlock()
	return v, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock() time.Time {
	return time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC)
}

func parisPlaces() []Place {
	return []Place{
		{ID: "p1", Name: "Café de Flore", Category: "Breakfast Spot", Rating: 4.5, PriceTier: TierExpensive, Currency: "€"},
		{ID: "p2", Name: "Louvre Museum", Category: "Attraction", Rating: 4.8, PriceTier: TierModerate, Currency: "€"},
		{ID: "p3", Name: "Le Comptoir du Relais", Category: "Dinner", Rating: 4.6, PriceTier: TierExpensive, Currency: "€"},
		{ID: "p4", Name: "Seine River Cruise", Category: "Experience", Rating: 4.5, PriceTier: TierModerate, Currency: "€"},
		{ID: "p5", Name: "Angelina Paris", Category: "Cafe", Rating: 4.7, PriceTier: TierExpensive, Currency: "€"},
	}
}

func newTestComposer(places PlacesProvider, insights InsightProvider, images ImageResolver) *Composer {
	enricher := NewEnricher(insights, images, nil)
	enricher.CallTimeout = time.Second
	composer, err := NewComposer(places, enricher, Scheduler{Currency: "$", Now: fixedClock}, discardLogger())
	if err != nil {
		panic(err)
	}
	return composer
}
