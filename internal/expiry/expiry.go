// Package expiry turns an expiry date and a reference instant into a bucket
// and a day count. Every view (dashboard, list, notifications) classifies
// through this package so they always agree at day boundaries.
package expiry

import (
	"fmt"
	"time"
)

const (
	// WarningDays is the horizon for the "expiring soon" card and for
	// session notifications.
	WarningDays = 3
	// SoonDays is the horizon under which list labels show a day count
	// instead of a date.
	SoonDays = 7

	day = 24 * time.Hour
)

// Bucket is a named range of days until expiry.
type Bucket string

const (
	BucketExpired     Bucket = "expired"
	BucketDueIn1Day   Bucket = "due_in_1_day"
	BucketDueIn3Days  Bucket = "due_in_3_days"
	BucketDueIn1Week  Bucket = "due_in_1_week"
	BucketDueIn2Weeks Bucket = "due_in_2_weeks"
	BucketSafe        Bucket = "safe"
)

// Status is the classification of one item at one instant.
type Status struct {
	Bucket        Bucket `json:"bucket"`
	DaysRemaining int    `json:"days_remaining"`
}

// DaysRemaining counts whole calendar days from now to expiry. Both instants
// are reduced to their calendar date in now's location first, so the time of
// day never matters and DST days of 23 or 25 hours still count as one.
func DaysRemaining(expiry, now time.Time) int {
	ey, em, ed := expiry.In(now.Location()).Date()
	ny, nm, nd := now.Date()
	e := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	n := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return int(e.Sub(n) / day)
}

// BucketFor maps a day count to its bucket. Thresholds are checked in order
// and the first match wins.
func BucketFor(days int) Bucket {
	switch {
	case days < 0:
		return BucketExpired
	case days <= 1:
		return BucketDueIn1Day
	case days <= 3:
		return BucketDueIn3Days
	case days <= 7:
		return BucketDueIn1Week
	case days <= 14:
		return BucketDueIn2Weeks
	default:
		return BucketSafe
	}
}

// Classify returns the bucket and day count for expiry as seen at now.
func Classify(expiry, now time.Time) Status {
	days := DaysRemaining(expiry, now)
	return Status{Bucket: BucketFor(days), DaysRemaining: days}
}

// Label renders the short text shown next to an item in the inventory list.
func Label(expiry, now time.Time) string {
	days := DaysRemaining(expiry, now)
	switch {
	case days < 0:
		return "Expired"
	case days <= SoonDays:
		return fmt.Sprintf("In %dd", days)
	default:
		return expiry.In(now.Location()).Format("2006-01-02")
	}
}

// Warn reports whether days falls in the notification window [0, warnDays].
func Warn(days, warnDays int) bool {
	return days >= 0 && days <= warnDays
}
