package eligibility

import (
	"fmt"
	"time"
)

const dateOnlyLayout = "2006-01-02"

// NormalizeAsOf canonicalizes a reference date to a UTC-midnight instant so
// expiry and alert-window comparisons are stable across time zones.
//
// A strict YYYY-MM-DD input is interpreted as UTC midnight of that calendar
// day, never the caller's local midnight. Anything else is parsed as an
// RFC3339 timestamp and truncated to its UTC calendar day. Empty input means
// "now" under the same rule.
func NormalizeAsOf(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return truncateToUTCDay(now), nil
	}

	if len(raw) == len(dateOnlyLayout) {
		if t, err := time.ParseInLocation(dateOnlyLayout, raw, time.UTC); err == nil {
			return t, nil
		}
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return truncateToUTCDay(t), nil
}

func truncateToUTCDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole calendar days from a to b, both normalized to
// UTC midnight. Negative when b is before a.
func daysBetween(a, b time.Time) int {
	return int(truncateToUTCDay(b).Sub(truncateToUTCDay(a)).Hours() / 24)
}
