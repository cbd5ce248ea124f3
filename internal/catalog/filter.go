// Package catalog implements the in-memory query layer over the event
// collection: conjunctive filtering, the canonical ordering, tag
// aggregation, and pagination. All operations work on an
// already-materialized snapshot and never touch shared mutable state, so
// they are safe to call concurrently from request handlers.
package catalog

import (
	"sort"
	"strings"

	"github.com/iventshq/ivents/internal/model"
)

// FilterAndSort applies the criteria's predicates conjunctively and returns
// the matches in the canonical ordering: featured events first, then
// created_at descending within each group. The sort is stable, so events
// with identical keys keep their input order.
//
// Invalid criteria (for example date_from after date_to) skip filtering
// entirely and return the full collection, still sorted. Degrading to the
// unfiltered list beats failing the whole page over one bad form field.
func FilterAndSort(events []model.Event, c model.SearchCriteria) []model.Event {
	if err := c.Validate(); err != nil {
		c = model.SearchCriteria{}
	}

	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if matches(ev, c) {
			out = append(out, ev)
		}
	}

	SortDefault(out)
	return out
}

// SortDefault orders events in place by the canonical ordering:
// featured before non-featured, then created_at descending. Stable.
func SortDefault(events []model.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].IsFeatured != events[j].IsFeatured {
			return events[i].IsFeatured
		}
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
}

func matches(ev model.Event, c model.SearchCriteria) bool {
	if c.Search != "" {
		q := strings.ToLower(c.Search)
		if !strings.Contains(strings.ToLower(ev.Title), q) &&
			!strings.Contains(strings.ToLower(ev.Description), q) {
			return false
		}
	}
	if c.Category != "" && ev.Category != c.Category {
		return false
	}
	if c.Status != "" && ev.Status != c.Status {
		return false
	}
	if c.Tag != "" && !hasTag(ev, c.Tag) {
		return false
	}
	if c.DateFrom != nil || c.DateTo != nil {
		if ev.ScheduledDate.IsZero() {
			return false
		}
		day := model.DateOnly(ev.ScheduledDate)
		if c.DateFrom != nil && day.Before(model.DateOnly(*c.DateFrom)) {
			return false
		}
		if c.DateTo != nil && day.After(model.DateOnly(*c.DateTo)) {
			return false
		}
	}
	return true
}

func hasTag(ev model.Event, tag string) bool {
	for _, t := range ev.TagList() {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
