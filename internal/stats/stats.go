// Package stats derives dashboard figures from the item collection.
package stats

import (
	"time"

	"pantry/internal/expiry"
	"pantry/internal/model"
)

// BucketCounts holds the number of active items per expiry bucket.
type BucketCounts struct {
	Expired     int `json:"expired"`
	DueIn1Day   int `json:"due_in_1_day"`
	DueIn3Days  int `json:"due_in_3_days"`
	DueIn1Week  int `json:"due_in_1_week"`
	DueIn2Weeks int `json:"due_in_2_weeks"`
	Safe        int `json:"safe"`
}

// CategoryTotal is the summed quantity of one category.
type CategoryTotal struct {
	Category model.Category `json:"category"`
	Quantity int            `json:"quantity"`
	Color    string         `json:"color"`
}

// DerivedStats is recomputed from the collection on every request and never
// stored.
type DerivedStats struct {
	Total        int             `json:"total"`
	ExpiringSoon int             `json:"expiring_soon"`
	Buckets      BucketCounts    `json:"buckets"`
	Categories   []CategoryTotal `json:"categories"`
}

// Compute aggregates items in a single pass. Consumed items are ignored
// entirely. Category totals sum quantities, not item counts, and keep the
// order in which each category first appears.
func Compute(items []model.Item, now time.Time) DerivedStats {
	out := DerivedStats{Categories: make([]CategoryTotal, 0)}
	index := make(map[model.Category]int)

	for _, it := range items {
		if it.Consumed {
			continue
		}
		out.Total++

		st := expiry.Classify(it.ExpiryDate, now)
		out.Buckets.add(st.Bucket)
		if expiry.Warn(st.DaysRemaining, expiry.WarningDays) {
			out.ExpiringSoon++
		}

		i, ok := index[it.Category]
		if !ok {
			i = len(out.Categories)
			index[it.Category] = i
			out.Categories = append(out.Categories, CategoryTotal{
				Category: it.Category,
				Color:    it.Category.Color(),
			})
		}
		out.Categories[i].Quantity += it.Quantity
	}
	return out
}

func (b *BucketCounts) add(bucket expiry.Bucket) {
	switch bucket {
	case expiry.BucketExpired:
		b.Expired++
	case expiry.BucketDueIn1Day:
		b.DueIn1Day++
	case expiry.BucketDueIn3Days:
		b.DueIn3Days++
	case expiry.BucketDueIn1Week:
		b.DueIn1Week++
	case expiry.BucketDueIn2Weeks:
		b.DueIn2Weeks++
	default:
		b.Safe++
	}
}
