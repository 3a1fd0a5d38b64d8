package tracker

import (
	"slices"
	"time"

	"github.com/mmcdole/gofeed"
)

// Dated pairs a feed item with its parsed publish date.
type Dated struct {
	Published time.Time
	Item      *gofeed.Item
}

// Advance selects the items published strictly after watermark and returns
// them oldest first together with the new watermark. A zero watermark means
// every item is new.
//
// All items are compared against the same watermark, so items sharing a
// timestamp are either all kept or all dropped. Kept items are stably sorted
// by date; ties keep their input order. The returned watermark never moves
// backwards.
func Advance(items []Dated, watermark time.Time) (time.Time, []Dated) {
	var fresh []Dated
	next := watermark
	for _, d := range items {
		if !watermark.IsZero() && !d.Published.After(watermark) {
			continue
		}
		fresh = append(fresh, d)
		if d.Published.After(next) {
			next = d.Published
		}
	}
	slices.SortStableFunc(fresh, func(a, b Dated) int {
		return a.Published.Compare(b.Published)
	})
	return next, fresh
}
