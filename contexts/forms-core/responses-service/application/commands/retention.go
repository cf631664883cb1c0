package commands

import "time"

// spamRetention is how long a response flagged as spam is kept before purge.
const spamRetention = 14 * 24 * time.Hour

// roundUpToDay rounds a timestamp up to the next UTC midnight so every
// response created on the same day under the same policy expires together.
func roundUpToDay(t time.Time) time.Time {
	day := t.UTC().Truncate(24 * time.Hour)
	if day.Equal(t.UTC()) {
		return day
	}
	return day.Add(24 * time.Hour)
}

// retentionExpiry computes the purge deadline for a retention policy of the
// given number of days. Zero or negative days means the response never expires.
func retentionExpiry(now time.Time, days int) *time.Time {
	if days <= 0 {
		return nil
	}
	deadline := roundUpToDay(now.UTC().Add(time.Duration(days) * 24 * time.Hour))
	return &deadline
}
