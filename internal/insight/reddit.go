package insight

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultRedditBaseURL = "https://old.reddit.com"
	defaultSubreddit     = "travel"
	defaultSnippetLimit  = 5
	userAgent            = "travelplanner/1.0 (itinerary insights)"
)

var scoreExpr = regexp.MustCompile(`-?\d[\d,]*`)

// Snippet is one community post matching a place.
type Snippet struct {
	Title string
	Body  string
	Score int
	URL   string
}

// Text returns the body when present, the title otherwise.
func (s Snippet) Text() string {
	if s.Body != "" {
		return s.Body
	}
	return s.Title
}

// RedditScraper searches a subreddit through the server-rendered old.reddit.com pages.
type RedditScraper struct {
	client    *http.Client
	baseURL   string
	subreddit string
	limit     int
}

// NewRedditScraper wires an HTTP client; empty arguments fall back to defaults.
func NewRedditScraper(client *http.Client, baseURL, subreddit string) *RedditScraper {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = defaultRedditBaseURL
	}
	if subreddit == "" {
		subreddit = defaultSubreddit
	}
	return &RedditScraper{
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		subreddit: strings.TrimPrefix(subreddit, "r/"),
		limit:     defaultSnippetLimit,
	}
}

// Search returns up to the configured number of snippets, highest score first
// as ranked by the page.
func (s *RedditScraper) Search(ctx context.Context, city, placeName string) ([]Snippet, error) {
	pageURL, err := s.searchURL(city, placeName)
	if err != nil {
		return nil, err
	}

	doc, err := s.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return s.extractSnippets(doc), nil
}

func (s *RedditScraper) searchURL(city, placeName string) (string, error) {
	u, err := url.Parse(fmt.Sprintf("%s/r/%s/search", s.baseURL, url.PathEscape(s.subreddit)))
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set("q", fmt.Sprintf("%q %s", placeName, city))
	q.Set("restrict_sr", "on")
	q.Set("sort", "top")
	q.Set("t", "all")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *RedditScraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func (s *RedditScraper) extractSnippets(doc *goquery.Document) []Snippet {
	var out []Snippet
	doc.Find("div.search-result").EachWithBreak(func(_ int, result *goquery.Selection) bool {
		if snippet, ok := parseResult(result); ok {
			out = append(out, snippet)
		}
		return len(out) < s.limit
	})
	return out
}

func parseResult(result *goquery.Selection) (Snippet, bool) {
	title := result.Find("a.search-title").First()
	snippet := Snippet{
		Title: collapse(title.Text()),
		Body:  collapse(result.Find("div.search-result-body").First().Text()),
	}
	if href, ok := title.Attr("href"); ok {
		snippet.URL = href
	}
	if m := scoreExpr.FindString(result.Find("span.search-score").First().Text()); m != "" {
		snippet.Score, _ = strconv.Atoi(strings.ReplaceAll(m, ",", ""))
	}
	if snippet.Title == "" && snippet.Body == "" {
		return Snippet{}, false
	}
	return snippet, true
}

func collapse(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
