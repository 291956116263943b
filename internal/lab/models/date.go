package models

import "time"

// DateLayout is the wire format of membership bounds.
const DateLayout = time.DateOnly

// Day truncates t to its calendar day at UTC midnight. Membership bounds
// are whole days; the clock's time-of-day never takes part in a comparison.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayPtr returns a pointer to Day(t).
func DayPtr(t time.Time) *time.Time {
	d := Day(t)
	return &d
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

func normalizeDay(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	return DayPtr(*t)
}

func cloneDay(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func sameDay(a, b *time.Time) bool {
	switch {
	case a == nil && b == nil:
		return true
	case a == nil || b == nil:
		return false
	default:
		return a.Equal(*b)
	}
}
