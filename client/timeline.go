package client

import (
	"sort"
	"time"

	"github.com/jharmon/tripfolio/internal/domain"
)

// OrderTimeline returns the plan's items in chronological display order. Each
// item sorts on its effective date (check-in if set, else date, else creation
// time); the sort is stable, so items sharing an effective date keep their
// relative creation order. The input slice is not modified.
func OrderTimeline(items []domain.TravelItem) []domain.TravelItem {
	ordered := make([]domain.TravelItem, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].EffectiveDate().Before(ordered[j].EffectiveDate())
	})
	return ordered
}

// Window is the advisory date range for inserting a new item at a given
// position in an ordered timeline. A nil bound means the range is open on
// that side. Nothing enforces the window; a caller may schedule outside it.
type Window struct {
	Lower *time.Time
	Upper *time.Time
}

// InsertWindow computes the window for inserting at position pos in ordered
// (0 = before the first item, len(ordered) = after the last). The lower bound
// is the preceding item's effective date, falling back to the plan's start
// date before the first item; the upper bound is the following item's
// effective date, falling back to the plan's end date after the last.
func InsertWindow(plan domain.TravelPlan, ordered []domain.TravelItem, pos int) Window {
	if pos < 0 {
		pos = 0
	}
	if pos > len(ordered) {
		pos = len(ordered)
	}

	var w Window
	if pos > 0 {
		d := ordered[pos-1].EffectiveDate()
		w.Lower = &d
	} else {
		w.Lower = plan.StartDate
	}
	if pos < len(ordered) {
		d := ordered[pos].EffectiveDate()
		w.Upper = &d
	} else {
		w.Upper = plan.EndDate
	}
	return w
}
