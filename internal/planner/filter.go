package planner

import (
	"strings"
)

// categoryGroups lets interest tags such as "food" match concrete categories.
var categoryGroups = map[string]string{
	"breakfast spot": "food",
	"breakfast":      "food",
	"brunch":         "food",
	"bakery":         "food",
	"cafe":           "food",
	"lunch":          "food",
	"dinner":         "food",
	"restaurant":     "food",
	"attraction":     "sights",
	"museum":         "sights",
	"park":           "sights",
	"experience":     "experiences",
	"shopping":       "shopping",
	"bar":            "nightlife",
	"nightlife":      "nightlife",
}

// Filter narrows candidates to those eligible for scheduling.
func Filter(candidates []Candidate, minRating float64, prefs Preferences) []Candidate {
	eligible := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Place.Rating < minRating {
			continue
		}
		if prefs.Budget != "" && c.Place.PriceTier > prefs.Budget.MaxTier() {
			continue
		}
		eligible = append(eligible, c)
	}

	if len(prefs.Interests) > 0 {
		// Preferences that would leave nothing to schedule are relaxed.
		if matched := filterInterests(eligible, prefs.Interests); len(matched) > 0 {
			eligible = matched
		}
	}

	return dedupeCandidates(eligible)
}

func filterInterests(candidates []Candidate, interests []string) []Candidate {
	wanted := make(map[string]struct{}, len(interests))
	for _, interest := range interests {
		wanted[normalize(interest)] = struct{}{}
	}

	var out []Candidate
	for _, c := range candidates {
		if matchesInterest(c.Place, wanted) {
			out = append(out, c)
		}
	}
	return out
}

func matchesInterest(place Place, wanted map[string]struct{}) bool {
	category := normalize(place.Category)
	if _, ok := wanted[category]; ok {
		return true
	}
	if group, ok := categoryGroups[category]; ok {
		if _, ok := wanted[group]; ok {
			return true
		}
	}
	for _, tag := range place.Tags {
		if _, ok := wanted[normalize(tag)]; ok {
			return true
		}
	}
	return false
}

// dedupeCandidates keeps the highest-rated candidate per name and category,
// preferring the earliest one on equal ratings.
func dedupeCandidates(candidates []Candidate) []Candidate {
	index := make(map[string]int, len(candidates))
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		key := normalize(c.Place.Name) + "|" + normalize(c.Place.Category)
		if pos, ok := index[key]; ok {
			if c.Place.Rating > out[pos].Place.Rating {
				out[pos] = c
			}
			continue
		}
		index[key] = len(out)
		out = append(out, c)
	}
	return out
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
