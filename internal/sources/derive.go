package sources

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// DateKey formats t as a UTC calendar date.
func DateKey(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// DayName is the three-letter English weekday of t in UTC.
func DayName(t time.Time) string {
	return t.UTC().Weekday().String()[:3]
}

// CurrentStreak counts days with positive activity backward from the most
// recent entry (last element) and stops at the first day without activity.
func CurrentStreak(counts []int) int {
	streak := 0
	for i := len(counts) - 1; i >= 0; i-- {
		if counts[i] <= 0 {
			break
		}
		streak++
	}
	return streak
}

// LongestStreak is the longest run of consecutive positive days.
func LongestStreak(counts []int) int {
	longest, run := 0, 0
	for _, c := range counts {
		if c > 0 {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	return longest
}

// TrailingWeek returns the seven UTC calendar days ending on now's date,
// oldest first.
func TrailingWeek(now time.Time) []time.Time {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = today.AddDate(0, 0, i-6)
	}
	return days
}

// TimeAgo renders the distance from then to now as a short relative label.
func TimeAgo(now, then time.Time) string {
	seconds := int64(now.Sub(then) / time.Second)
	if seconds < 60 {
		return "just now"
	}
	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm ago", minutes)
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}
	days := hours / 24
	if days < 7 {
		return fmt.Sprintf("%dd ago", days)
	}
	return fmt.Sprintf("%dw ago", days/7)
}

// FormatSeconds renders a duration in seconds as "3h 5m" or "42m".
func FormatSeconds(totalSeconds float64) string {
	total := int64(totalSeconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
