package images

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"travelplanner/internal/planner"
)

const (
	defaultPhotoBaseURL = "https://places.googleapis.com/v1"
	defaultMaxWidth     = 800
)

// GooglePhotoResolver turns place photo references into public photo URLs.
type GooglePhotoResolver struct {
	baseURL    string
	apiKey     string
	maxWidth   int
	limiter    *rate.Limiter
	httpClient *http.Client
}

// NewGooglePhotoResolver constructs a resolver limited to rps requests per second.
func NewGooglePhotoResolver(apiKey string, rps float64, opts ...func(*GooglePhotoResolver)) (*GooglePhotoResolver, error) {
	if apiKey == "" {
		return nil, errors.New("google photos: missing API key")
	}
	if rps <= 0 {
		rps = 5
	}
	r := &GooglePhotoResolver{
		baseURL:    defaultPhotoBaseURL,
		apiKey:     apiKey,
		maxWidth:   defaultMaxWidth,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// WithBaseURL overrides the API base URL (useful for tests).
func WithBaseURL(u string) func(*GooglePhotoResolver) {
	return func(r *GooglePhotoResolver) {
		if u != "" {
			r.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient overrides the internal HTTP client.
func WithHTTPClient(hc *http.Client) func(*GooglePhotoResolver) {
	return func(r *GooglePhotoResolver) {
		if hc != nil {
			r.httpClient = hc
		}
	}
}

type photoMediaResponse struct {
	Name     string `json:"name"`
	PhotoURI string `json:"photoUri"`
}

// Resolve implements planner.ImageResolver.
func (r *GooglePhotoResolver) Resolve(ctx context.Context, place planner.Place) (string, error) {
	ref := strings.Trim(place.PhotoRef, "/")
	if ref == "" {
		return "", planner.ErrNoImage
	}
	if err := r.limiter.Wait(ctx); err != nil {
		return "", planner.Classify("google_photos", "media", err)
	}

	uri, err := r.fetch(ctx, ref)
	if err != nil {
		return "", planner.Classify("google_photos", "media", err)
	}
	return uri, nil
}

func (r *GooglePhotoResolver) fetch(ctx context.Context, ref string) (string, error) {
	q := url.Values{}
	q.Set("maxWidthPx", fmt.Sprint(r.maxWidth))
	q.Set("skipHttpRedirect", "true")
	endpoint := fmt.Sprintf("%s/%s/media?%s", r.baseURL, ref, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Goog-Api-Key", r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", planner.ErrNoImage
	}
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("api error %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var payload photoMediaResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if payload.PhotoURI == "" {
		return "", planner.ErrNoImage
	}
	return payload.PhotoURI, nil
}
