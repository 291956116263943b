package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gallandarakhneorg/labmanager-sub016/pkg/domain"
	dErrors "github.com/gallandarakhneorg/labmanager-sub016/pkg/domain-errors"
)

func day(s string) *time.Time {
	d, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func TestInterval(t *testing.T) {
	t.Run("valid when a bound is open", func(t *testing.T) {
		assert.True(t, Interval{}.Valid())
		assert.True(t, Interval{Since: day("2023-01-01")}.Valid())
		assert.True(t, Interval{To: day("2023-01-01")}.Valid())
	})

	t.Run("single day is valid", func(t *testing.T) {
		assert.True(t, Interval{Since: day("2023-01-01"), To: day("2023-01-01")}.Valid())
	})

	t.Run("reversed bounds are invalid", func(t *testing.T) {
		assert.False(t, Interval{Since: day("2023-01-01"), To: day("2022-12-31")}.Valid())
	})

	t.Run("contains is inclusive on both ends", func(t *testing.T) {
		iv := Interval{Since: day("2023-01-01"), To: day("2023-01-31")}
		assert.True(t, iv.Contains(*day("2023-01-01")))
		assert.True(t, iv.Contains(*day("2023-01-31")))
		assert.False(t, iv.Contains(*day("2022-12-31")))
		assert.False(t, iv.Contains(*day("2023-02-01")))
	})

	t.Run("contains ignores the time of day", func(t *testing.T) {
		iv := Interval{To: day("2023-01-31")}
		late := time.Date(2023, 1, 31, 23, 59, 0, 0, time.UTC)
		assert.True(t, iv.Contains(late))
	})

	t.Run("overlap", func(t *testing.T) {
		tests := []struct {
			name string
			a, b Interval
			want bool
		}{
			{"both unbounded", Interval{}, Interval{}, true},
			{"touching on one day", Interval{To: day("2023-01-01")}, Interval{Since: day("2023-01-01")}, true},
			{"adjacent days", Interval{To: day("2022-12-31")}, Interval{Since: day("2023-01-01")}, false},
			{"nested", Interval{Since: day("2020-01-01")}, Interval{Since: day("2021-01-01"), To: day("2021-06-01")}, true},
			{"disjoint", Interval{Since: day("2020-01-01"), To: day("2020-12-31")}, Interval{Since: day("2022-01-01"), To: day("2022-12-31")}, false},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
				assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
			})
		}
	})
}

func TestNewMembership(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("truncates bounds to days", func(t *testing.T) {
		since := time.Date(2020, 1, 1, 15, 30, 0, 0, time.UTC)
		m, err := NewMembership(domain.NewMembershipID(), domain.NewPersonID(), domain.NewOrganizationID(), StatusResearcher, &since, nil, now)
		require.NoError(t, err)
		assert.Equal(t, *day("2020-01-01"), *m.Since)
		assert.Nil(t, m.To)
		assert.True(t, m.PermanentPosition)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, err := NewMembership(domain.NewMembershipID(), domain.NewPersonID(), domain.NewOrganizationID(), MemberStatus("wizard"), nil, nil, now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects missing person", func(t *testing.T) {
		_, err := NewMembership(domain.NewMembershipID(), domain.PersonID{}, domain.NewOrganizationID(), StatusResearcher, nil, nil, now)
		require.Error(t, err)
	})
}

func TestMembershipLifecycle(t *testing.T) {
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	m := &Membership{Since: day("2020-01-01"), To: day("2023-12-31")}

	assert.True(t, m.ActiveAt(*day("2022-05-05")))
	assert.True(t, m.IsFormer(now))
	assert.False(t, m.IsFuture(now))

	future := &Membership{Since: day("2025-01-01")}
	assert.True(t, future.IsFuture(now))
	assert.False(t, future.IsFormer(now))
	assert.False(t, future.ActiveAt(now))
}

func TestMembershipCloseAt(t *testing.T) {
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("ends on the pivot", func(t *testing.T) {
		m := &Membership{Since: day("2020-01-01")}
		m.CloseAt(*day("2023-05-31"), now)
		assert.Equal(t, *day("2020-01-01"), *m.Since)
		assert.Equal(t, *day("2023-05-31"), *m.To)
		assert.Equal(t, now, m.UpdatedAt)
	})

	t.Run("pulls a later start back to the pivot", func(t *testing.T) {
		m := &Membership{Since: day("2024-01-01")}
		m.CloseAt(*day("2023-05-31"), now)
		assert.Equal(t, *day("2023-05-31"), *m.Since)
		assert.Equal(t, *day("2023-05-31"), *m.To)
		assert.True(t, m.Interval().Valid())
	})

	t.Run("open start stays open", func(t *testing.T) {
		m := &Membership{}
		m.CloseAt(*day("2023-05-31"), now)
		assert.Nil(t, m.Since)
		assert.Equal(t, *day("2023-05-31"), *m.To)
	})
}

func TestMembershipClone(t *testing.T) {
	m := &Membership{Since: day("2020-01-01"), To: day("2021-01-01")}
	c := m.Clone()
	*c.Since = *day("1999-01-01")
	assert.Equal(t, *day("2020-01-01"), *m.Since)
}

func TestClassificationValid(t *testing.T) {
	assert.True(t, Classification{}.Valid())
	assert.True(t, Classification{CNUSection: 27, CoNRSSection: 6, FrenchBAP: "E"}.Valid())
	assert.False(t, Classification{FrenchBAP: "Z"}.Valid())
	assert.False(t, Classification{CNUSection: 120}.Valid())
}
