package planner

import (
	"strings"
)

// Period is one of the three canonical parts of a day.
type Period string

const (
	Morning   Period = "Morning"
	Afternoon Period = "Afternoon"
	Evening   Period = "Evening"
)

// Periods returns the canonical slot order.
func Periods() []Period {
	return []Period{Morning, Afternoon, Evening}
}

func parsePeriod(value string) (Period, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "morning":
		return Morning, true
	case "afternoon":
		return Afternoon, true
	case "evening":
		return Evening, true
	}
	return "", false
}

// Budget restricts the most expensive price tier a traveller accepts.
type Budget string

const (
	BudgetLow    Budget = "low"
	BudgetMedium Budget = "medium"
	BudgetHigh   Budget = "high"
)

// MaxTier returns the highest price tier allowed by the budget.
func (b Budget) MaxTier() PriceTier {
	switch b {
	case BudgetLow:
		return TierInexpensive
	case BudgetMedium:
		return TierModerate
	default:
		return TierVeryExpensive
	}
}

func (b Budget) valid() bool {
	switch b {
	case "", BudgetLow, BudgetMedium, BudgetHigh:
		return true
	}
	return false
}

// Pace controls how many activities are scheduled per period.
type Pace string

const (
	PaceRelaxed  Pace = "relaxed"
	PaceModerate Pace = "moderate"
	PacePacked   Pace = "packed"
)

// PerPeriod returns the target activity count for a period. The zero value is moderate.
func (p Pace) PerPeriod() int {
	switch p {
	case PaceRelaxed:
		return 1
	case PacePacked:
		return 3
	default:
		return 2
	}
}

func (p Pace) valid() bool {
	switch p {
	case "", PaceRelaxed, PaceModerate, PacePacked:
		return true
	}
	return false
}

// PriceTier is an ordinal price level, 0 meaning free entry.
type PriceTier int

const (
	TierFree PriceTier = iota
	TierInexpensive
	TierModerate
	TierExpensive
	TierVeryExpensive
)

// Symbol renders the tier for display, e.g. "€€" or "Free".
func (t PriceTier) Symbol(currency string) string {
	if t <= TierFree {
		return "Free"
	}
	if currency == "" {
		currency = "$"
	}
	if t > TierVeryExpensive {
		t = TierVeryExpensive
	}
	return strings.Repeat(currency, int(t))
}

// Location is a geographic point attached to an activity.
type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

// Place is a candidate returned by a PlacesProvider before enrichment.
type Place struct {
	ID              string
	Name            string
	Category        string
	Rating          float64
	PriceTier       PriceTier
	Currency        string
	Location        *Location
	PhotoRef        string
	Description     string
	Tags            []string
	Period          string
	DurationMinutes int
	EarliestStart   int
}

// Candidate is a place joined with its community insight and image.
type Candidate struct {
	Place    Place
	Insight  string
	ImageURL string
	Order    int
}

// Activity is a single scheduled stop in a time slot.
type Activity struct {
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Rating      float64   `json:"rating"`
	Price       string    `json:"price"`
	Time        string    `json:"time"`
	Description string    `json:"description"`
	Insight     string    `json:"redditInsight"`
	Image       string    `json:"image"`
	Location    *Location `json:"location,omitempty"`
	PlaceID     string    `json:"placeId,omitempty"`
}

// TimeSlot groups the activities of one period in visiting order.
type TimeSlot struct {
	Period     Period     `json:"period"`
	Time       string     `json:"time"`
	Activities []Activity `json:"activities"`
}

// Metadata carries display-only aggregates of an itinerary.
type Metadata struct {
	TotalEstimatedCost string `json:"totalEstimatedCost,omitempty"`
	TotalDuration      string `json:"totalDuration,omitempty"`
	GeneratedAt        string `json:"generatedAt,omitempty"`
}

// Itinerary is the composed result for one request.
type Itinerary struct {
	City      string     `json:"city"`
	Date      string     `json:"date"`
	MinRating float64    `json:"minRating"`
	Slots     []TimeSlot `json:"slots"`
	Metadata  *Metadata  `json:"metadata,omitempty"`
}

// Preferences are optional traveller constraints.
type Preferences struct {
	Budget    Budget   `json:"budget,omitempty"`
	Interests []string `json:"interests,omitempty"`
	Pace      Pace     `json:"pace,omitempty"`
}

// Request is a validated itinerary composition request.
type Request struct {
	City        string       `json:"city"`
	Date        string       `json:"date"`
	MinRating   float64      `json:"minRating"`
	Preferences *Preferences `json:"preferences,omitempty"`
}

func (r Request) prefs() Preferences {
	if r.Preferences == nil {
		return Preferences{}
	}
	return *r.Preferences
}
