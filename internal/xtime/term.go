package xtime

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

const termYearsToShow = 3

var (
	termsCached      []Term
	termsGeneratedAt time.Time
	termsMu          sync.Mutex
)

// Term is one academic semester, e.g. "Spring 2025" with value "spring-2025".
// Spring runs January through June, fall July through December.
type Term struct {
	Name  string
	Value string
}

// GetTerms returns the current and recent semesters, newest first.
func GetTerms() []Term {
	now := time.Now().UTC()
	currentYear := now.Year()
	currentMonth := now.Month()

	termsMu.Lock()
	defer termsMu.Unlock()
	if termsGeneratedAt.Year() == currentYear && termsGeneratedAt.Month() == currentMonth {
		return termsCached
	}

	var terms []Term
	for year := currentYear; year >= currentYear-termYearsToShow; year-- {
		for _, semester := range []string{"fall", "spring"} {
			// Only include semesters that have started.
			if year == currentYear && semester == "fall" && currentMonth < time.July {
				continue
			}
			terms = append(terms, Term{
				Name:  fmt.Sprintf("%s %d", strings.ToUpper(semester[:1])+semester[1:], year),
				Value: fmt.Sprintf("%s-%d", semester, year),
			})
		}
	}

	termsCached = terms
	termsGeneratedAt = now

	return terms
}

// GetRangeFromTerm parses a "spring-2025" style value into the semester's
// first and last day. Unknown values fall back to the current semester.
func GetRangeFromTerm(value string) (time.Time, time.Time) {
	value = strings.ToLower(value)

	parts := strings.SplitN(value, "-", 2)
	if len(parts) != 2 {
		return GetCurrentTermRange()
	}

	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return GetCurrentTermRange()
	}

	var startMonth time.Month
	switch parts[0] {
	case "spring":
		startMonth = time.January
	case "fall":
		startMonth = time.July
	default:
		return GetCurrentTermRange()
	}

	start := time.Date(year, startMonth, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 6, -1)
	return start, end
}

// GetCurrentTermRange returns the first and last day of the semester
// containing the current date.
func GetCurrentTermRange() (time.Time, time.Time) {
	now := time.Now().UTC()

	startMonth := time.January
	if now.Month() >= time.July {
		startMonth = time.July
	}

	start := time.Date(now.Year(), startMonth, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 6, -1)
	return start, end
}
