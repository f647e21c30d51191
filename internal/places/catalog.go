package places

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"travelplanner/internal/planner"
)

// Catalog serves curated places per city from a JSON document.
type Catalog struct {
	cities []catalogCity
	index  map[string]int
}

type catalogCity struct {
	Name     string
	Country  string
	Timezone string
	Currency string
	Places   []catalogPlace
}

type catalogPlace struct {
	place planner.Place
	tips  []string
}

type rawCatalog struct {
	Cities []rawCity `json:"cities"`
}

type rawCity struct {
	Name     string     `json:"name"`
	Country  string     `json:"country"`
	Timezone string     `json:"timezone"`
	Currency string     `json:"currency"`
	Places   []rawPlace `json:"places"`
}

type rawPlace struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Category        string            `json:"category"`
	Rating          float64           `json:"rating"`
	PriceLevel      int               `json:"priceLevel"`
	Period          string            `json:"period"`
	DurationMinutes int               `json:"durationMinutes"`
	BestTime        string            `json:"bestTime"`
	Description     string            `json:"description"`
	Tips            []string          `json:"tips"`
	Tags            []string          `json:"tags"`
	PhotoRef        string            `json:"photoRef"`
	Location        *planner.Location `json:"location"`
}

// LoadCatalog reads and decodes the catalog file at path.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return nil, errors.New("catalog requires a path")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	catalog, err := DecodeCatalog(raw)
	if err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	return catalog, nil
}

// DecodeCatalog parses a catalog document. Unknown fields are rejected.
func DecodeCatalog(data []byte) (*Catalog, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	var doc rawCatalog
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}

	catalog := &Catalog{index: make(map[string]int, len(doc.Cities))}
	for _, rc := range doc.Cities {
		name := strings.TrimSpace(rc.Name)
		if name == "" {
			continue
		}
		key := cityKey(name)
		if _, dup := catalog.index[key]; dup {
			return nil, fmt.Errorf("duplicate city %q", name)
		}

		city := catalogCity{Name: name, Country: rc.Country, Timezone: rc.Timezone, Currency: rc.Currency}
		for _, rp := range rc.Places {
			if strings.TrimSpace(rp.Name) == "" {
				continue
			}
			place, err := rp.toPlace(rc.Currency)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			city.Places = append(city.Places, catalogPlace{place: place, tips: rp.Tips})
		}

		catalog.index[key] = len(catalog.cities)
		catalog.cities = append(catalog.cities, city)
	}
	return catalog, nil
}

func (r rawPlace) toPlace(currency string) (planner.Place, error) {
	if r.Rating < 0 || r.Rating > 5 {
		return planner.Place{}, fmt.Errorf("place %q: rating %.1f out of range", r.Name, r.Rating)
	}
	if r.PriceLevel < 0 || r.PriceLevel > int(planner.TierVeryExpensive) {
		return planner.Place{}, fmt.Errorf("place %q: priceLevel %d out of range", r.Name, r.PriceLevel)
	}
	earliest, err := parseBestTime(r.BestTime)
	if err != nil {
		return planner.Place{}, fmt.Errorf("place %q: %w", r.Name, err)
	}
	var location *planner.Location
	if r.Location != nil {
		loc := *r.Location
		location = &loc
	}
	return planner.Place{
		ID:              r.ID,
		Name:            r.Name,
		Category:        r.Category,
		Rating:          r.Rating,
		PriceTier:       planner.PriceTier(r.PriceLevel),
		Currency:        currency,
		Location:        location,
		PhotoRef:        r.PhotoRef,
		Description:     r.Description,
		Tags:            r.Tags,
		Period:          r.Period,
		DurationMinutes: r.DurationMinutes,
		EarliestStart:   earliest,
	}, nil
}

// parseBestTime converts "HH:MM" into minutes after midnight.
func parseBestTime(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	hh, mm, ok := strings.Cut(value, ":")
	if !ok {
		return 0, fmt.Errorf("bestTime %q must be HH:MM", value)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("bestTime %q has an invalid hour", value)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("bestTime %q has invalid minutes", value)
	}
	return hour*60 + minute, nil
}

// Find returns the city's places rated at least minRating, in catalog order.
// Unknown cities yield an empty result.
func (c *Catalog) Find(ctx context.Context, city string, minRating float64) ([]planner.Place, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	entry, ok := c.city(city)
	if !ok {
		return nil, nil
	}
	var out []planner.Place
	for _, p := range entry.Places {
		if p.place.Rating >= minRating {
			place := p.place
			place.Tags = append([]string(nil), p.place.Tags...)
			out = append(out, place)
		}
	}
	return out, nil
}

// Tips returns the curated tips for a place, matched case-insensitively by name.
func (c *Catalog) Tips(city, name string) []string {
	entry, ok := c.city(city)
	if !ok {
		return nil
	}
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range entry.Places {
		if strings.ToLower(p.place.Name) == name {
			return append([]string(nil), p.tips...)
		}
	}
	return nil
}

// Cities lists the supported city names in catalog order.
func (c *Catalog) Cities() []string {
	out := make([]string, len(c.cities))
	for i, city := range c.cities {
		out[i] = city.Name
	}
	return out
}

// Currency returns the catalog currency of a city.
func (c *Catalog) Currency(city string) (string, bool) {
	entry, ok := c.city(city)
	if !ok {
		return "", false
	}
	return entry.Currency, entry.Currency != ""
}

func (c *Catalog) city(name string) (catalogCity, bool) {
	i, ok := c.index[cityKey(name)]
	if !ok {
		return catalogCity{}, false
	}
	return c.cities[i], true
}

func cityKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
