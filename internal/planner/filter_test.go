package planner

import "testing"

func candidatesOf(places ...Place) []Candidate {
	out := make([]Candidate, len(places))
	for i, p := range places {
		out[i] = Candidate{Place: p, Order: i}
	}
	return out
}

func names(candidates []Candidate) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.Place.Name
	}
	return out
}

func TestFilterAppliesBudget(t *testing.T) {
	candidates := candidatesOf(
		Place{Name: "Street Tacos", Category: "Lunch", Rating: 4.6, PriceTier: TierInexpensive},
		Place{Name: "Park", Category: "Park", Rating: 4.7, PriceTier: TierFree},
		Place{Name: "Bistro", Category: "Dinner", Rating: 4.8, PriceTier: TierModerate},
		Place{Name: "Tasting Menu", Category: "Dinner", Rating: 4.9, PriceTier: TierVeryExpensive},
	)

	cases := map[Budget]int{BudgetLow: 2, BudgetMedium: 3, BudgetHigh: 4, "": 4}
	for budget, want := range cases {
		got := Filter(candidates, 1.0, Preferences{Budget: budget})
		if len(got) != want {
			t.Errorf("budget %q: expected %d candidates, got %v", budget, want, names(got))
		}
	}
}

func TestFilterMatchesInterestsByGroupAndTag(t *testing.T) {
	candidates := candidatesOf(
		Place{Name: "Bakery", Category: "Breakfast Spot", Rating: 4.5},
		Place{Name: "Museum", Category: "Attraction", Rating: 4.5},
		Place{Name: "Jazz Club", Category: "Experience", Rating: 4.5, Tags: []string{"Music"}},
	)

	got := Filter(candidates, 1.0, Preferences{Interests: []string{"food", "music"}})
	if len(got) != 2 || got[0].Place.Name != "Bakery" || got[1].Place.Name != "Jazz Club" {
		t.Fatalf("unexpected interest matches %v", names(got))
	}
}

func TestFilterRelaxesUnmatchedInterests(t *testing.T) {
	candidates := candidatesOf(
		Place{Name: "Bakery", Category: "Breakfast Spot", Rating: 4.5},
		Place{Name: "Museum", Category: "Attraction", Rating: 4.5},
	)

	got := Filter(candidates, 1.0, Preferences{Interests: []string{"skiing"}})
	if len(got) != 2 {
		t.Fatalf("expected interests to be relaxed, got %v", names(got))
	}
}

func TestFilterDropsBelowThreshold(t *testing.T) {
	candidates := candidatesOf(
		Place{Name: "Good", Category: "Dinner", Rating: 4.5},
		Place{Name: "Bad", Category: "Dinner", Rating: 4.4},
	)
	got := Filter(candidates, 4.5, Preferences{})
	if len(got) != 1 || got[0].Place.Name != "Good" {
		t.Fatalf("unexpected result %v", names(got))
	}
}

func TestDedupeCandidatesKeepsFirstOnTie(t *testing.T) {
	candidates := candidatesOf(
		Place{ID: "a", Name: "Louvre", Category: "Attraction", Rating: 4.8},
		Place{ID: "b", Name: "LOUVRE", Category: "attraction ", Rating: 4.8},
		Place{ID: "c", Name: "Louvre", Category: "Cafe", Rating: 4.1},
	)

	got := dedupeCandidates(candidates)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %v", names(got))
	}
	if got[0].Place.ID != "a" {
		t.Errorf("expected first on tie, got %s", got[0].Place.ID)
	}
	if got[1].Place.ID != "c" {
		t.Errorf("different category must survive, got %s", got[1].Place.ID)
	}
}
