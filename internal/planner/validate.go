package planner

import (
	"math"
	"strings"
	"time"
)

const (
	minAllowedRating = 1.0
	maxAllowedRating = 5.0
	dateLayout       = "2006-01-02"
)

// Validate checks the request at the boundary and returns a normalised copy.
func (r Request) Validate() (Request, error) {
	r.City = strings.TrimSpace(r.City)
	r.Date = strings.TrimSpace(r.Date)

	if r.City == "" {
		return Request{}, validationError("city", "city is required")
	}
	if r.Date == "" {
		return Request{}, validationError("date", "date is required")
	}
	if _, err := time.Parse(dateLayout, r.Date); err != nil {
		return Request{}, validationError("date", "date must be an ISO date (YYYY-MM-DD)")
	}
	if math.IsNaN(r.MinRating) || math.IsInf(r.MinRating, 0) ||
		r.MinRating < minAllowedRating || r.MinRating > maxAllowedRating {
		return Request{}, validationError("minRating", "minRating must be between 1.0 and 5.0")
	}

	if r.Preferences != nil {
		prefs := *r.Preferences
		prefs.Budget = Budget(strings.ToLower(strings.TrimSpace(string(prefs.Budget))))
		prefs.Pace = Pace(strings.ToLower(strings.TrimSpace(string(prefs.Pace))))
		if !prefs.Budget.valid() {
			return Request{}, validationError("preferences.budget", "budget must be one of low, medium, high")
		}
		if !prefs.Pace.valid() {
			return Request{}, validationError("preferences.pace", "pace must be one of relaxed, moderate, packed")
		}
		prefs.Interests = dedupeStrings(prefs.Interests)
		r.Preferences = &prefs
	}

	return r, nil
}

func dedupeStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
