package planner

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type span struct {
	start int
	end   int
}

// Minutes after midnight.
var periodSpans = map[Period]span{
	Morning:   {start: 9 * 60, end: 12 * 60},
	Afternoon: {start: 12 * 60, end: 18 * 60},
	Evening:   {start: 18 * 60, end: 22 * 60},
}

const (
	transferGap = 30
	// minActivity is the shortest window an activity is squeezed into.
	minActivity = 30
)

var periodKeywords = []struct {
	period   Period
	keywords []string
}{
	{Morning, []string{"breakfast", "brunch", "bakery"}},
	{Afternoon, []string{"attraction", "museum", "lunch", "cafe", "café", "shopping", "park", "market", "gallery"}},
	{Evening, []string{"dinner", "restaurant", "bar", "nightlife", "theatre", "theater", "pub"}},
}

var defaultDurations = []struct {
	keyword string
	minutes int
}{
	{"breakfast", 60},
	{"lunch", 75},
	{"dinner", 120},
	{"attraction", 120},
	{"museum", 120},
	{"experience", 90},
	{"shopping", 90},
	{"cafe", 60},
}

// costPerTier is the per-person spend range assumed for each price tier.
var costPerTier = map[PriceTier][2]int{
	TierFree:          {0, 0},
	TierInexpensive:   {10, 20},
	TierModerate:      {20, 40},
	TierExpensive:     {40, 80},
	TierVeryExpensive: {80, 150},
}

// Scheduler assigns eligible candidates to the three periods of a day.
type Scheduler struct {
	// Currency is used when no scheduled place declares one.
	Currency string
	Now      func() time.Time
}

// Schedule builds an itinerary with exactly the three canonical slots.
func (s Scheduler) Schedule(req Request, candidates []Candidate) Itinerary {
	prefs := req.prefs()
	target := prefs.Pace.PerPeriod()

	pools := assignPeriods(rankCandidates(candidates))

	var scheduled []Candidate
	slots := make([]TimeSlot, 0, len(periodSpans))
	for _, period := range Periods() {
		activities, placed := s.layout(req.City, period, selectForPeriod(pools[period], target))
		scheduled = append(scheduled, placed...)
		slots = append(slots, TimeSlot{
			Period:     period,
			Time:       formatSpan(periodSpans[period]),
			Activities: activities,
		})
	}

	return Itinerary{
		City:      req.City,
		Date:      req.Date,
		MinRating: req.MinRating,
		Slots:     slots,
		Metadata: &Metadata{
			TotalEstimatedCost: s.estimateCost(scheduled),
			TotalDuration:      totalDuration(),
			GeneratedAt:        s.now().UTC().Format(time.RFC3339),
		},
	}
}

// rankCandidates orders by rating descending, keeping provider order on ties.
func rankCandidates(candidates []Candidate) []Candidate {
	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Place.Rating != ranked[j].Place.Rating {
			return ranked[i].Place.Rating > ranked[j].Place.Rating
		}
		return ranked[i].Order < ranked[j].Order
	})
	return ranked
}

// assignPeriods places each ranked candidate in its natural period; the rest
// go one at a time to whichever period currently holds the fewest candidates.
func assignPeriods(ranked []Candidate) map[Period][]Candidate {
	pools := make(map[Period][]Candidate, len(periodSpans))
	var floating []Candidate
	for _, c := range ranked {
		if period, ok := naturalPeriod(c.Place); ok {
			pools[period] = append(pools[period], c)
			continue
		}
		floating = append(floating, c)
	}

	for _, c := range floating {
		least := Morning
		for _, period := range Periods() {
			if len(pools[period]) < len(pools[least]) {
				least = period
			}
		}
		pools[least] = append(pools[least], c)
	}

	for period, pool := range pools {
		pools[period] = rankCandidates(pool)
	}
	return pools
}

func naturalPeriod(place Place) (Period, bool) {
	if period, ok := parsePeriod(place.Period); ok {
		return period, true
	}
	if normalize(place.Period) == "any" {
		return "", false
	}
	category := normalize(place.Category)
	if category == "" {
		return "", false
	}
	for _, group := range periodKeywords {
		for _, keyword := range group.keywords {
			if strings.Contains(category, keyword) {
				return group.period, true
			}
		}
	}
	return "", false
}

// selectForPeriod keeps up to target candidates from a ranked pool, taking the
// best of each distinct category before repeating a category.
func selectForPeriod(pool []Candidate, target int) []Candidate {
	if len(pool) <= target {
		return pool
	}

	picked := make([]bool, len(pool))
	seen := make(map[string]struct{})
	selected := make([]Candidate, 0, target)
	for i, c := range pool {
		if len(selected) == target {
			break
		}
		category := normalize(c.Place.Category)
		if _, ok := seen[category]; ok {
			continue
		}
		seen[category] = struct{}{}
		picked[i] = true
		selected = append(selected, c)
	}
	for i, c := range pool {
		if len(selected) == target {
			break
		}
		if !picked[i] {
			selected = append(selected, c)
		}
	}
	return rankCandidates(selected)
}

// layout places the selected candidates back to back inside the period span.
// Windows never leave the span: durations shrink to leave at least minActivity
// for every later candidate, and a candidate that cannot start in time is dropped.
func (s Scheduler) layout(city string, period Period, selected []Candidate) ([]Activity, []Candidate) {
	bounds := periodSpans[period]

	ordered := make([]Candidate, len(selected))
	copy(ordered, selected)
	sort.SliceStable(ordered, func(i, j int) bool {
		ei, ej := earliestStart(ordered[i].Place, bounds), earliestStart(ordered[j].Place, bounds)
		if ei != ej {
			return ei < ej
		}
		return ordered[i].Place.Rating > ordered[j].Place.Rating
	})

	activities := make([]Activity, 0, len(ordered))
	placed := make([]Candidate, 0, len(ordered))
	cursor := bounds.start
	for i, c := range ordered {
		start := cursor
		if earliest := earliestStart(c.Place, bounds); earliest > start {
			start = earliest
		}
		reserve := (len(ordered) - i - 1) * (minActivity + transferGap)
		available := bounds.end - reserve - start
		if available < minActivity {
			available = bounds.end - start
		}
		if available < minActivity {
			continue
		}
		end := start + min(duration(c.Place), available)
		cursor = end + transferGap

		activities = append(activities, s.activity(city, c, formatWindow(start, end)))
		placed = append(placed, c)
	}

	sort.SliceStable(activities, func(i, j int) bool {
		si, _ := parseWindowStart(activities[i].Time)
		sj, _ := parseWindowStart(activities[j].Time)
		if si != sj {
			return si < sj
		}
		return activities[i].Rating > activities[j].Rating
	})
	return activities, placed
}

func (s Scheduler) activity(city string, c Candidate, window string) Activity {
	place := c.Place
	description := place.Description
	if description == "" {
		description = fmt.Sprintf("Highly rated %s in %s.", strings.ToLower(place.Category), city)
	}
	currency := place.Currency
	if currency == "" {
		currency = s.Currency
	}
	var location *Location
	if place.Location != nil {
		loc := *place.Location
		location = &loc
	}
	return Activity{
		Name:        place.Name,
		Type:        place.Category,
		Rating:      place.Rating,
		Price:       place.PriceTier.Symbol(currency),
		Time:        window,
		Description: description,
		Insight:     c.Insight,
		Image:       c.ImageURL,
		Location:    location,
		PlaceID:     place.ID,
	}
}

func earliestStart(place Place, bounds span) int {
	if place.EarliestStart > bounds.start && place.EarliestStart < bounds.end {
		return place.EarliestStart
	}
	return bounds.start
}

func duration(place Place) int {
	if place.DurationMinutes > 0 {
		return place.DurationMinutes
	}
	category := normalize(place.Category)
	for _, d := range defaultDurations {
		if strings.Contains(category, d.keyword) {
			return d.minutes
		}
	}
	return 60
}

func (s Scheduler) estimateCost(scheduled []Candidate) string {
	currency := s.Currency
	for _, c := range scheduled {
		if c.Place.Currency != "" {
			currency = c.Place.Currency
			break
		}
	}
	if currency == "" {
		currency = "$"
	}

	var low, high int
	for _, c := range scheduled {
		tier := c.Place.PriceTier
		if tier > TierVeryExpensive {
			tier = TierVeryExpensive
		}
		r := costPerTier[tier]
		low += r[0]
		high += r[1]
	}
	if high == 0 {
		return "Free"
	}
	return fmt.Sprintf("%s%d-%d per person", currency, low, high)
}

func totalDuration() string {
	var minutes int
	for _, period := range Periods() {
		bounds := periodSpans[period]
		minutes += bounds.end - bounds.start
	}
	if minutes%60 == 0 {
		return fmt.Sprintf("%d hours", minutes/60)
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

func (s Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
