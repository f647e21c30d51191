package insight

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"travelplanner/internal/planner"
)

var starters = []string{
	"Travelers recommend:",
	"Locals say:",
	"Reddit users rave:",
	"Pro tip from Reddit:",
	"Insider advice:",
}

// TipSource exposes curated tips per place.
type TipSource interface {
	Tips(city, name string) []string
}

// TipsProvider turns curated tips into insight text. The same place always
// yields the same text.
type TipsProvider struct {
	Source TipSource
}

// Fetch implements planner.InsightProvider.
func (p TipsProvider) Fetch(ctx context.Context, city, placeName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.Source == nil {
		return "", fmt.Errorf("%w: no tip source", planner.ErrProviderUnavailable)
	}
	tips := p.Source.Tips(city, placeName)
	if len(tips) == 0 {
		return "", fmt.Errorf("%w: no tips for %s", planner.ErrProviderUnavailable, placeName)
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(city + "|" + placeName)))
	sum := h.Sum32()
	starter := starters[sum%uint32(len(starters))]
	tip := tips[(sum/uint32(len(starters)))%uint32(len(tips))]
	return starter + " " + tip, nil
}
