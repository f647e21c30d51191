package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"travelplanner/internal/llm"
)

// LLMSummarizer asks a chat model to turn snippets into a single traveller tip.
type LLMSummarizer struct {
	Client      llm.ChatClient
	Model       string
	Temperature float64
	MaxTokens   int
	MaxSnippets int
}

// Summarize implements Summarizer.
func (s LLMSummarizer) Summarize(ctx context.Context, city, placeName string, snippets []Snippet) (string, error) {
	if s.Client == nil {
		return "", errors.New("llm summarizer misconfigured")
	}
	if len(snippets) == 0 {
		return "", errors.New("nothing to summarize")
	}

	limited := snippets
	if s.MaxSnippets > 0 && len(limited) > s.MaxSnippets {
		limited = limited[:s.MaxSnippets]
	}

	maxTokens := s.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 120
	}

	resp, err := s.Client.ChatCompletion(ctx, llm.ChatCompletionRequest{
		Model:       s.Model,
		Messages:    buildPrompt(city, placeName, limited),
		Temperature: s.Temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("summarize %s: %w", placeName, err)
	}
	text := strings.Trim(resp.Text(), "\"")
	if text == "" {
		return "", errors.New("llm response missing content")
	}
	return text, nil
}

func buildPrompt(city, placeName string, snippets []Snippet) []llm.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Place: %s in %s\nCommunity posts:\n", placeName, city)
	for i, sn := range snippets {
		fmt.Fprintf(&b, "%d. [%d points] %s", i+1, sn.Score, sn.Title)
		if sn.Body != "" {
			fmt.Fprintf(&b, " - %s", truncate(sn.Body, 400))
		}
		b.WriteString("\n")
	}
	b.WriteString("Write one practical tip for a visitor, under 30 words, in the voice of a local. Reply with the tip only.")

	return []llm.Message{
		{Role: "system", Content: "You condense travel forum posts into short, concrete visitor advice. Never invent facts that are not in the posts."},
		{Role: "user", Content: b.String()},
	}
}
