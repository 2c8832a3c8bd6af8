package xtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetRangeFromTerm(t *testing.T) {
	start, end := GetRangeFromTerm("spring-2025")
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC), end)

	start, end = GetRangeFromTerm("FALL-2024")
	assert.Equal(t, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC), end)
}

func TestGetRangeFromTerm_FallsBackToCurrent(t *testing.T) {
	wantStart, wantEnd := GetCurrentTermRange()

	for _, value := range []string{"", "spring", "winter-2025", "spring-two"} {
		start, end := GetRangeFromTerm(value)
		assert.Equal(t, wantStart, start, value)
		assert.Equal(t, wantEnd, end, value)
	}
}
