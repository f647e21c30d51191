package planner

import (
	"errors"
	"math"
	"testing"
)

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name  string
		req   Request
		field string
	}{
		{"missing city", Request{City: "  ", Date: "2025-03-15", MinRating: 4}, "city"},
		{"missing date", Request{City: "Paris", MinRating: 4}, "date"},
		{"bad date", Request{City: "Paris", Date: "15/03/2025", MinRating: 4}, "date"},
		{"rating too high", Request{City: "Paris", Date: "2025-03-15", MinRating: 5.1}, "minRating"},
		{"rating too low", Request{City: "Paris", Date: "2025-03-15", MinRating: 0.5}, "minRating"},
		{"rating nan", Request{City: "Paris", Date: "2025-03-15", MinRating: math.NaN()}, "minRating"},
		{"bad budget", Request{City: "Paris", Date: "2025-03-15", MinRating: 4, Preferences: &Preferences{Budget: "lavish"}}, "preferences.budget"},
		{"bad pace", Request{City: "Paris", Date: "2025-03-15", MinRating: 4, Preferences: &Preferences{Pace: "frantic"}}, "preferences.pace"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.req.Validate()
			var composeErr *ComposeError
			if !errors.As(err, &composeErr) {
				t.Fatalf("expected ComposeError, got %v", err)
			}
			if composeErr.Kind != KindValidation {
				t.Fatalf("expected validation kind, got %v", composeErr.Kind)
			}
			if composeErr.Details["field"] != tc.field {
				t.Fatalf("expected field %s, got %v", tc.field, composeErr.Details["field"])
			}
		})
	}
}

func TestValidateNormalises(t *testing.T) {
	req := Request{
		City: " Tokyo ", Date: "2025-05-10", MinRating: 1,
		Preferences: &Preferences{Budget: " Medium", Pace: "PACKED", Interests: []string{"Food", " food", "", "art"}},
	}
	got, err := req.Validate()
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got.City != "Tokyo" {
		t.Errorf("expected trimmed city, got %q", got.City)
	}
	if got.Preferences.Budget != BudgetMedium || got.Preferences.Pace != PacePacked {
		t.Errorf("expected lowercased preferences, got %+v", got.Preferences)
	}
	if len(got.Preferences.Interests) != 2 || got.Preferences.Interests[0] != "Food" || got.Preferences.Interests[1] != "art" {
		t.Errorf("unexpected interests %v", got.Preferences.Interests)
	}
	if req.Preferences.Budget != " Medium" {
		t.Errorf("caller preferences must not be mutated")
	}
}

func TestValidateAcceptsBounds(t *testing.T) {
	for _, rating := range []float64{1.0, 5.0} {
		if _, err := (Request{City: "Rome", Date: "2025-01-01", MinRating: rating}).Validate(); err != nil {
			t.Errorf("rating %.1f should be accepted: %v", rating, err)
		}
	}
}
