package planner

import (
	"fmt"
	"strconv"
	"strings"
)

// formatWindow renders an activity window such as "9:00 - 10:00 AM" or
// "10:30 AM - 12:00 PM"; the meridiem is written once when both ends share it.
func formatWindow(start, end int) string {
	sc, sm := clock(start)
	ec, em := clock(end)
	if sm == em {
		return fmt.Sprintf("%s - %s %s", sc, ec, em)
	}
	return fmt.Sprintf("%s %s - %s %s", sc, sm, ec, em)
}

// formatSpan renders a slot range with both meridiems, e.g. "12:00 PM - 6:00 PM".
func formatSpan(s span) string {
	sc, sm := clock(s.start)
	ec, em := clock(s.end)
	return fmt.Sprintf("%s %s - %s %s", sc, sm, ec, em)
}

func clock(minutes int) (string, string) {
	h24 := (minutes / 60) % 24
	meridiem := "AM"
	if h24 >= 12 {
		meridiem = "PM"
	}
	h12 := h24 % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d", h12, minutes%60), meridiem
}

// parseWindowStart returns the start of a window string in minutes after midnight.
func parseWindowStart(window string) (int, bool) {
	left, right, found := strings.Cut(window, " - ")
	if !found {
		return 0, false
	}
	left = strings.TrimSpace(left)
	right = strings.TrimSpace(right)

	clockPart, meridiem, hasMeridiem := strings.Cut(left, " ")
	if !hasMeridiem {
		fields := strings.Fields(right)
		if len(fields) == 0 {
			return 0, false
		}
		meridiem = fields[len(fields)-1]
	}

	hh, mm, ok := strings.Cut(clockPart, ":")
	if !ok {
		return 0, false
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 1 || hour > 12 {
		return 0, false
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}

	hour %= 12
	switch strings.ToUpper(meridiem) {
	case "AM":
	case "PM":
		hour += 12
	default:
		return 0, false
	}
	return hour*60 + minute, true
}
