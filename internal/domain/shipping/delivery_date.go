package shipping

import (
	"strconv"
	"strings"
	"time"
)

// SameDay is the literal delivery window for same-day service.
const SameDay = "Same Day"

// Estimate texts returned by DateEstimator.
const (
	EstimateNotAvailable = "Not available"
	EstimateToday        = "Today"
)

// DateEstimator turns delivery windows ("3-4", "2", "Same Day") into
// calendar dates relative to today in a fixed time zone.
type DateEstimator struct {
	now      func() time.Time
	location *time.Location
}

// NewDateEstimator creates a DateEstimator. A nil clock means time.Now and a
// nil location means UTC.
func NewDateEstimator(now func() time.Time, location *time.Location) *DateEstimator {
	if now == nil {
		now = time.Now
	}
	if location == nil {
		location = time.UTC
	}
	return &DateEstimator{now: now, location: location}
}

// EstimateDeliveryDate formats a delivery window as dates.
//
//   - "N/A" or "" gives "Not available"
//   - "N-M" gives "{today+N} - {today+M}", earliest first
//   - anything containing "Same Day" gives "Today"
//   - "N" gives today+N
//   - anything else is returned unchanged
func (e *DateEstimator) EstimateDeliveryDate(days string, formatter DateFormatter) string {
	if days == "" || days == DaysNotAvailable {
		return EstimateNotAvailable
	}

	today := e.today()

	if lo, hi, found := strings.Cut(days, "-"); found {
		minDays, errMin := strconv.Atoi(strings.TrimSpace(lo))
		maxDays, errMax := strconv.Atoi(strings.TrimSpace(hi))
		if errMin != nil || errMax != nil {
			return days
		}
		if minDays > maxDays {
			minDays, maxDays = maxDays, minDays
		}
		return formatter.Format(today.AddDate(0, 0, minDays)) + " - " + formatter.Format(today.AddDate(0, 0, maxDays))
	}

	if strings.Contains(days, SameDay) {
		return EstimateToday
	}

	n, err := strconv.Atoi(strings.TrimSpace(days))
	if err != nil {
		return days
	}
	return formatter.Format(today.AddDate(0, 0, n))
}

func (e *DateEstimator) today() time.Time {
	now := e.now().In(e.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, e.location)
}
