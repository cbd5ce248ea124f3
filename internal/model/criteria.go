package model

import (
	"fmt"
	"time"
)

// SearchCriteria is the set of user-supplied filter predicates for the
// event list. Zero values mean "no filter" for the corresponding field.
//
// DateFrom and DateTo are inclusive bounds compared by calendar date only;
// their time-of-day components are ignored.
type SearchCriteria struct {
	Search   string     `json:"search"`
	Category Category   `json:"category"`
	Status   Status     `json:"status"`
	Tag      string     `json:"tag"`
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`
}

// Validate checks internal consistency of the criteria. Callers that receive
// an error are expected to degrade gracefully (treat the criteria as absent)
// rather than fail the request.
func (c SearchCriteria) Validate() error {
	if c.DateFrom != nil && c.DateTo != nil {
		from := DateOnly(*c.DateFrom)
		to := DateOnly(*c.DateTo)
		if from.After(to) {
			return fmt.Errorf("date_from must not be after date_to")
		}
	}
	if c.Category != "" && !ValidCategory(c.Category) {
		return fmt.Errorf("unknown category: %q", c.Category)
	}
	if c.Status != "" && !ValidStatus(c.Status) {
		return fmt.Errorf("unknown status: %q", c.Status)
	}
	return nil
}

// IsZero reports whether no criterion is set.
func (c SearchCriteria) IsZero() bool {
	return c.Search == "" && c.Category == "" && c.Status == "" &&
		c.Tag == "" && c.DateFrom == nil && c.DateTo == nil
}

// DateOnly truncates a timestamp to its calendar date in its own location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
