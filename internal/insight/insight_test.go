package insight

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"travelplanner/internal/llm"
	"travelplanner/internal/planner"
)

const searchPage = `<html><body>
<div class="search-result search-result-link">
  <header><a class="search-title may-blank" href="https://old.reddit.com/r/travel/comments/1/louvre">Louvre tips?</a></header>
  <div class="search-result-meta"><span class="search-score">1,204 points</span></div>
  <div class="search-result-body"><p>Use the   Carrousel entrance,
  the line is way shorter.</p></div>
</div>
<div class="search-result search-result-link">
  <header><a class="search-title" href="/r/travel/comments/2/paris">Paris in three days</a></header>
  <div class="search-result-meta"><span class="search-score">87 points</span></div>
</div>
<div class="search-result search-result-link"><div class="search-result-meta"></div></div>
</body></html>`

type staticTips map[string][]string

func (s staticTips) Tips(city, name string) []string { return s[name] }

func TestTipsProviderIsDeterministic(t *testing.T) {
	provider := TipsProvider{Source: staticTips{"Louvre Museum": {"Book timed entry online", "Enter through Carrousel"}}}

	first, err := provider.Fetch(context.Background(), "Paris", "Louvre Museum")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, _ := provider.Fetch(context.Background(), "Paris", "Louvre Museum")
		if again != first {
			t.Fatalf("expected stable text, got %q then %q", first, again)
		}
	}
	if !strings.Contains(first, "Book timed entry online") && !strings.Contains(first, "Enter through Carrousel") {
		t.Fatalf("insight should quote a tip, got %q", first)
	}

	if _, err := provider.Fetch(context.Background(), "Paris", "Unknown"); !errors.Is(err, planner.ErrProviderUnavailable) {
		t.Fatalf("expected unavailable for missing tips, got %v", err)
	}
}

func TestRedditScraperParsesSearchResults(t *testing.T) {
	var gotQuery, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/r/travel/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("q")
		gotAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(searchPage))
	}))
	defer server.Close()

	scraper := NewRedditScraper(server.Client(), server.URL, "r/travel")
	snippets, err := scraper.Search(context.Background(), "Paris", "Louvre Museum")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if gotQuery != `"Louvre Museum" Paris` {
		t.Errorf("unexpected query %q", gotQuery)
	}
	if gotAgent == "" {
		t.Errorf("user agent required by reddit")
	}
	if len(snippets) != 2 {
		t.Fatalf("expected 2 snippets, got %+v", snippets)
	}
	if snippets[0].Score != 1204 || snippets[0].Body != "Use the Carrousel entrance, the line is way shorter." {
		t.Errorf("unexpected first snippet %+v", snippets[0])
	}
	if snippets[1].Text() != "Paris in three days" {
		t.Errorf("title should stand in for a missing body, got %q", snippets[1].Text())
	}
}

func TestRedditScraperReportsStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider := &Provider{Searcher: NewRedditScraper(server.Client(), server.URL, "")}
	_, err := provider.Fetch(context.Background(), "Paris", "Louvre Museum")
	if !errors.Is(err, planner.ErrProviderUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

type fakeSearcher struct {
	snippets []Snippet
	err      error
}

func (f fakeSearcher) Search(context.Context, string, string) ([]Snippet, error) {
	return f.snippets, f.err
}

type fakeChat struct {
	reply string
	err   error
	got   llm.ChatCompletionRequest
}

func (f *fakeChat) ChatCompletion(_ context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	resp := &llm.ChatCompletionResponse{Choices: make([]llm.Choice, 1)}
	resp.Choices[0].Message.Content = f.reply
	return resp, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProviderUsesSummary(t *testing.T) {
	chat := &fakeChat{reply: `"Skip the pyramid queue and use the Carrousel entrance."`}
	provider := &Provider{
		Searcher:   fakeSearcher{snippets: []Snippet{{Title: "Louvre tips?", Body: "Use the Carrousel entrance", Score: 10}}},
		Summarizer: LLMSummarizer{Client: chat, Model: "m", MaxSnippets: 3},
		Logger:     quietLogger(),
	}

	got, err := provider.Fetch(context.Background(), "Paris", "Louvre Museum")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got != "Skip the pyramid queue and use the Carrousel entrance." {
		t.Fatalf("unexpected summary %q", got)
	}
	if len(chat.got.Messages) != 2 || !strings.Contains(chat.got.Messages[1].Content, "Louvre Museum in Paris") {
		t.Fatalf("prompt should name the place: %+v", chat.got.Messages)
	}
}

func TestProviderFallsBackToTopSnippet(t *testing.T) {
	provider := &Provider{
		Searcher:   fakeSearcher{snippets: []Snippet{{Title: "Louvre tips?", Body: "Use the Carrousel entrance"}}},
		Summarizer: LLMSummarizer{Client: &fakeChat{err: errors.New("quota")}},
		Logger:     quietLogger(),
	}

	got, err := provider.Fetch(context.Background(), "Paris", "Louvre Museum")
	if err != nil {
		t.Fatalf("summary failure must not fail the insight: %v", err)
	}
	if got != "Reddit users say: Use the Carrousel entrance" {
		t.Fatalf("unexpected fallback %q", got)
	}
}

func TestProviderWithoutPostsIsUnavailable(t *testing.T) {
	provider := &Provider{Searcher: fakeSearcher{}}
	if _, err := provider.Fetch(context.Background(), "Paris", "Nowhere Cafe"); !errors.Is(err, planner.ErrProviderUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("word ", 100)
	got := truncate(long, 40)
	if len([]rune(got)) > 43 || !strings.HasSuffix(got, "...") {
		t.Fatalf("unexpected truncation %q", got)
	}
	if truncate("short", 40) != "short" {
		t.Fatalf("short values are kept")
	}
}
