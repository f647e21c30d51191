package insight

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"travelplanner/internal/planner"
)

const maxInsightRunes = 240

// Searcher finds community snippets about a place.
type Searcher interface {
	Search(ctx context.Context, city, placeName string) ([]Snippet, error)
}

// Summarizer condenses snippets into one insight sentence.
type Summarizer interface {
	Summarize(ctx context.Context, city, placeName string, snippets []Snippet) (string, error)
}

// Provider fetches community snippets and optionally summarises them. A failed
// summary falls back to the top snippet.
type Provider struct {
	Searcher   Searcher
	Summarizer Summarizer
	Logger     *slog.Logger
}

// Fetch implements planner.InsightProvider.
func (p *Provider) Fetch(ctx context.Context, city, placeName string) (string, error) {
	if p.Searcher == nil {
		return "", fmt.Errorf("%w: no searcher configured", planner.ErrProviderUnavailable)
	}
	snippets, err := p.Searcher.Search(ctx, city, placeName)
	if err != nil {
		return "", planner.Classify("reddit", "search", err)
	}
	if len(snippets) == 0 {
		return "", fmt.Errorf("%w: no community posts for %s", planner.ErrProviderUnavailable, placeName)
	}

	if p.Summarizer != nil {
		summary, err := p.Summarizer.Summarize(ctx, city, placeName, snippets)
		if err == nil && strings.TrimSpace(summary) != "" {
			return strings.TrimSpace(summary), nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		p.logger().Warn("insight summary fallback", "place", placeName, "error", err)
	}
	return "Reddit users say: " + truncate(snippets[0].Text(), maxInsightRunes), nil
}

func (p *Provider) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	cut := string(runes[:limit])
	if i := strings.LastIndex(cut, " "); i > limit/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "..."
}
