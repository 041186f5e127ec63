package util

import "time"

// ObsTimeLayout matches the minute precision timestamps weather providers report.
const ObsTimeLayout = "2006-01-02T15:04Z07:00"

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// FormatObsTime renders t in ObsTimeLayout.
func FormatObsTime(t time.Time) string {
	return t.Format(ObsTimeLayout)
}
