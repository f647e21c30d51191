package places

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"travelplanner/internal/planner"
)

const (
	defaultGoogleBaseURL = "https://places.googleapis.com/v1"
	googleFieldMask      = "places.id,places.displayName,places.rating,places.priceLevel,places.formattedAddress,places.location,places.photos,places.editorialSummary,places.types"
	defaultPageSize      = 10
)

// Query is one text search issued per city; Category labels its results.
type Query struct {
	Category string
	Template string
}

// DefaultQueries cover the three parts of a day.
var DefaultQueries = []Query{
	{Category: "Breakfast Spot", Template: "best breakfast in %s"},
	{Category: "Attraction", Template: "top attractions in %s"},
	{Category: "Dinner", Template: "best dinner restaurants in %s"},
}

// GoogleClient discovers places through the Places API (New) text search.
type GoogleClient struct {
	baseURL    string
	apiKey     string
	currency   string
	pageSize   int
	queries    []Query
	limiter    *rate.Limiter
	httpClient *http.Client
}

// NewGoogleClient constructs a client limited to rps requests per second.
func NewGoogleClient(apiKey string, rps float64, opts ...func(*GoogleClient)) (*GoogleClient, error) {
	if apiKey == "" {
		return nil, errors.New("google places: missing API key")
	}
	if rps <= 0 {
		rps = 5
	}
	c := &GoogleClient{
		baseURL:    defaultGoogleBaseURL,
		apiKey:     apiKey,
		pageSize:   defaultPageSize,
		queries:    DefaultQueries,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithGoogleBaseURL overrides the API base URL (useful for tests).
func WithGoogleBaseURL(url string) func(*GoogleClient) {
	return func(c *GoogleClient) {
		if url != "" {
			c.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithGoogleHTTPClient overrides the internal HTTP client.
func WithGoogleHTTPClient(hc *http.Client) func(*GoogleClient) {
	return func(c *GoogleClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithCurrency sets the currency symbol attached to returned places.
func WithCurrency(currency string) func(*GoogleClient) {
	return func(c *GoogleClient) {
		c.currency = currency
	}
}

// WithQueries replaces the per-city search queries.
func WithQueries(queries ...Query) func(*GoogleClient) {
	return func(c *GoogleClient) {
		if len(queries) > 0 {
			c.queries = queries
		}
	}
}

type searchTextRequest struct {
	TextQuery string  `json:"textQuery"`
	MinRating float64 `json:"minRating,omitempty"`
	PageSize  int     `json:"pageSize,omitempty"`
}

type searchTextResponse struct {
	Places []googlePlace `json:"places"`
}

type googlePlace struct {
	ID          string `json:"id"`
	DisplayName struct {
		Text string `json:"text"`
	} `json:"displayName"`
	Rating           float64  `json:"rating"`
	PriceLevel       string   `json:"priceLevel"`
	FormattedAddress string   `json:"formattedAddress"`
	Types            []string `json:"types"`
	Location         *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
	Photos []struct {
		Name string `json:"name"`
	} `json:"photos"`
	EditorialSummary *struct {
		Text string `json:"text"`
	} `json:"editorialSummary"`
}

// Find runs every configured query for city and merges the results by place id.
func (c *GoogleClient) Find(ctx context.Context, city string, minRating float64) ([]planner.Place, error) {
	seen := make(map[string]struct{})
	var out []planner.Place
	for _, q := range c.queries {
		places, err := c.search(ctx, fmt.Sprintf(q.Template, city), minRating)
		if err != nil {
			return nil, planner.Classify("google_places", "search", err)
		}
		for _, gp := range places {
			if gp.ID == "" || gp.DisplayName.Text == "" {
				continue
			}
			if _, dup := seen[gp.ID]; dup {
				continue
			}
			seen[gp.ID] = struct{}{}
			out = append(out, c.toPlace(gp, q.Category))
		}
	}
	return out, nil
}

func (c *GoogleClient) search(ctx context.Context, query string, minRating float64) ([]googlePlace, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(searchTextRequest{
		TextQuery: query,
		// The API accepts ratings in 0.5 steps; results are filtered exactly downstream.
		MinRating: math.Floor(minRating*2) / 2,
		PageSize:  c.pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/places:searchText", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", googleFieldMask)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var payload searchTextResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return payload.Places, nil
}

func (c *GoogleClient) toPlace(gp googlePlace, category string) planner.Place {
	place := planner.Place{
		ID:        gp.ID,
		Name:      gp.DisplayName.Text,
		Category:  category,
		Rating:    gp.Rating,
		PriceTier: priceTier(gp.PriceLevel),
		Currency:  c.currency,
		Tags:      gp.Types,
	}
	if gp.EditorialSummary != nil {
		place.Description = gp.EditorialSummary.Text
	}
	if len(gp.Photos) > 0 {
		place.PhotoRef = gp.Photos[0].Name
	}
	if gp.Location != nil {
		place.Location = &planner.Location{
			Lat:     gp.Location.Latitude,
			Lng:     gp.Location.Longitude,
			Address: gp.FormattedAddress,
		}
	}
	return place
}

func priceTier(level string) planner.PriceTier {
	switch level {
	case "PRICE_LEVEL_FREE":
		return planner.TierFree
	case "PRICE_LEVEL_INEXPENSIVE":
		return planner.TierInexpensive
	case "PRICE_LEVEL_EXPENSIVE":
		return planner.TierExpensive
	case "PRICE_LEVEL_VERY_EXPENSIVE":
		return planner.TierVeryExpensive
	default:
		return planner.TierModerate
	}
}
