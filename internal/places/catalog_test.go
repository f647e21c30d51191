package places

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"travelplanner/internal/planner"
)

const catalogDoc = `{
  "cities": [
    {
      "name": "Paris",
      "country": "France",
      "timezone": "Europe/Paris",
      "currency": "€",
      "places": [
        {"id": "p1", "name": "Café de Flore", "category": "Breakfast Spot", "rating": 4.3, "priceLevel": 3, "period": "Morning", "durationMinutes": 60, "tips": ["Come early"], "tags": ["historic"]},
        {"id": "p2", "name": "Louvre Museum", "category": "Attraction", "rating": 4.8, "priceLevel": 2, "period": "Any", "tips": ["Book timed entry online"]},
        {"id": "p3", "name": "Seine River Cruise", "category": "Experience", "rating": 4.4, "priceLevel": 2, "bestTime": "20:30"}
      ]
    }
  ]
}`

func TestCatalogFind(t *testing.T) {
	catalog, err := DecodeCatalog([]byte(catalogDoc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	got, err := catalog.Find(context.Background(), "  paris ", 4.4)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 2 || got[0].ID != "p2" || got[1].ID != "p3" {
		t.Fatalf("unexpected places %+v", got)
	}
	if got[0].Currency != "€" || got[0].PriceTier != planner.TierModerate {
		t.Errorf("city currency and tier should be attached: %+v", got[0])
	}
	if got[1].EarliestStart != 20*60+30 {
		t.Errorf("expected bestTime to become 1230 minutes, got %d", got[1].EarliestStart)
	}

	none, err := catalog.Find(context.Background(), "Atlantis", 1.0)
	if err != nil || len(none) != 0 {
		t.Fatalf("unknown city should be empty, got %v %v", none, err)
	}
}

func TestCatalogTipsAndCities(t *testing.T) {
	catalog, err := DecodeCatalog([]byte(catalogDoc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tips := catalog.Tips("PARIS", "louvre museum"); len(tips) != 1 || tips[0] != "Book timed entry online" {
		t.Fatalf("unexpected tips %v", tips)
	}
	if tips := catalog.Tips("Paris", "Eiffel Tower"); tips != nil {
		t.Fatalf("unknown place should have no tips, got %v", tips)
	}
	if cities := catalog.Cities(); len(cities) != 1 || cities[0] != "Paris" {
		t.Fatalf("unexpected cities %v", cities)
	}
}

func TestDecodeCatalogRejectsUnknownFields(t *testing.T) {
	_, err := DecodeCatalog([]byte(`{"cities": [{"name": "Rome", "mayor": "x", "places": []}]}`))
	if err == nil || !strings.Contains(err.Error(), "unknown field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestDecodeCatalogValidatesPlaces(t *testing.T) {
	cases := []string{
		`{"cities": [{"name": "Rome", "places": [{"name": "X", "rating": 7}]}]}`,
		`{"cities": [{"name": "Rome", "places": [{"name": "X", "rating": 4, "priceLevel": 9}]}]}`,
		`{"cities": [{"name": "Rome", "places": [{"name": "X", "rating": 4, "bestTime": "25:00"}]}]}`,
		`{"cities": [{"name": "Rome", "places": []}, {"name": "rome", "places": []}]}`,
	}
	for _, doc := range cases {
		if _, err := DecodeCatalog([]byte(doc)); err == nil {
			t.Errorf("expected error for %s", doc)
		}
	}
}

func TestLoadSampleCatalog(t *testing.T) {
	catalog, err := LoadCatalog(filepath.Join("..", "..", "data", "sample_places.json"))
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	if len(catalog.Cities()) != 7 {
		t.Fatalf("expected 7 cities, got %v", catalog.Cities())
	}
	tokyo, err := catalog.Find(context.Background(), "Tokyo", 4.0)
	if err != nil || len(tokyo) == 0 {
		t.Fatalf("expected Tokyo places, got %v %v", tokyo, err)
	}
	for _, p := range tokyo {
		if p.ID == "" || p.Currency != "¥" {
			t.Fatalf("sample places need ids and the city currency: %+v", p)
		}
	}
}
