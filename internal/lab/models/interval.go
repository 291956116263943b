package models

import (
	"fmt"
	"time"
)

// Interval is a closed range of days. A nil Since means "since always"
// and a nil To means "still running".
type Interval struct {
	Since *time.Time
	To    *time.Time
}

// NewInterval truncates both bounds to days.
func NewInterval(since, to *time.Time) Interval {
	return Interval{Since: normalizeDay(since), To: normalizeDay(to)}
}

// Valid reports whether Since <= To when both are set.
func (i Interval) Valid() bool {
	if i.Since == nil || i.To == nil {
		return true
	}
	return !i.Since.After(*i.To)
}

// Contains reports whether day lies within the interval.
func (i Interval) Contains(day time.Time) bool {
	day = Day(day)
	if i.Since != nil && i.Since.After(day) {
		return false
	}
	if i.To != nil && i.To.Before(day) {
		return false
	}
	return true
}

// Overlaps reports whether the two intervals share at least one day.
func (i Interval) Overlaps(o Interval) bool {
	if i.To != nil && o.Since != nil && i.To.Before(*o.Since) {
		return false
	}
	if o.To != nil && i.Since != nil && o.To.Before(*i.Since) {
		return false
	}
	return true
}

func (i Interval) String() string {
	return fmt.Sprintf("[%s, %s]", formatBound(i.Since, "-inf"), formatBound(i.To, "+inf"))
}

func formatBound(t *time.Time, open string) string {
	if t == nil {
		return open
	}
	return t.Format(DateLayout)
}

// Equal reports whether both intervals have the same bounds.
func (i Interval) Equal(o Interval) bool {
	return sameDay(i.Since, o.Since) && sameDay(i.To, o.To)
}
