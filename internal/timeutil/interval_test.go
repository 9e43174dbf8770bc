package timeutil

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(h, m int) time.Time {
	return time.Date(2026, 3, 2, h, m, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                       string
		startA, endA, startB, endB time.Time
		want                       bool
	}{
		{"disjoint", at(9, 0), at(9, 30), at(10, 0), at(10, 30), false},
		{"touching", at(9, 0), at(9, 30), at(9, 30), at(10, 0), false},
		{"partial", at(10, 0), at(10, 30), at(9, 45), at(10, 15), true},
		{"contained", at(9, 0), at(12, 0), at(10, 0), at(10, 15), true},
		{"identical", at(9, 0), at(9, 30), at(9, 0), at(9, 30), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(tc.startA, tc.endA, tc.startB, tc.endB))
			assert.Equal(t, tc.want, Overlaps(tc.startB, tc.endB, tc.startA, tc.endA), "overlap must be symmetric")
		})
	}
}

func TestOverlapsSymmetryGrid(t *testing.T) {
	for a := 0; a < 12; a++ {
		for la := 1; la <= 4; la++ {
			for b := 0; b < 12; b++ {
				for lb := 1; lb <= 4; lb++ {
					sa, ea := at(9, a*15), at(9, (a+la)*15)
					sb, eb := at(9, b*15), at(9, (b+lb)*15)
					require.Equal(t, Overlaps(sa, ea, sb, eb), Overlaps(sb, eb, sa, ea))
				}
			}
		}
	}
}

func TestGenerateSlots(t *testing.T) {
	t.Run("inclusive end on step boundary", func(t *testing.T) {
		got := GenerateSlots(NewTimeOfDay(9, 0), NewTimeOfDay(10, 0), 30)
		assert.Equal(t, []TimeOfDay{NewTimeOfDay(9, 0), NewTimeOfDay(9, 30), NewTimeOfDay(10, 0)}, got)
	})

	t.Run("end off step boundary", func(t *testing.T) {
		got := GenerateSlots(NewTimeOfDay(9, 0), NewTimeOfDay(9, 50), 20)
		assert.Equal(t, []TimeOfDay{NewTimeOfDay(9, 0), NewTimeOfDay(9, 20), NewTimeOfDay(9, 40)}, got)
	})

	t.Run("start equals end", func(t *testing.T) {
		got := GenerateSlots(NewTimeOfDay(9, 0), NewTimeOfDay(9, 0), 15)
		assert.Equal(t, []TimeOfDay{NewTimeOfDay(9, 0)}, got)
	})

	t.Run("inverted range", func(t *testing.T) {
		assert.Empty(t, GenerateSlots(NewTimeOfDay(12, 0), NewTimeOfDay(9, 0), 15))
	})

	t.Run("non-positive step", func(t *testing.T) {
		assert.Empty(t, GenerateSlots(NewTimeOfDay(9, 0), NewTimeOfDay(12, 0), 0))
	})

	t.Run("late evening does not wrap", func(t *testing.T) {
		got := GenerateSlots(NewTimeOfDay(23, 0), NewTimeOfDay(23, 59), 30)
		assert.Equal(t, []TimeOfDay{NewTimeOfDay(23, 0), NewTimeOfDay(23, 30)}, got)
	})

	t.Run("restartable", func(t *testing.T) {
		a := GenerateSlots(NewTimeOfDay(8, 0), NewTimeOfDay(18, 0), 15)
		b := GenerateSlots(NewTimeOfDay(8, 0), NewTimeOfDay(18, 0), 15)
		assert.Equal(t, a, b)
		assert.Len(t, a, 41)
	})
}

func TestWeekBoundaries(t *testing.T) {
	// 2026-03-04 is a Wednesday.
	wed := NewDate(2026, time.March, 4)
	assert.Equal(t, NewDate(2026, time.March, 2), FirstDayOfWeek(wed))
	assert.Equal(t, NewDate(2026, time.March, 8), LastDayOfWeek(wed))

	mon := NewDate(2026, time.March, 2)
	assert.Equal(t, mon, FirstDayOfWeek(mon))

	sun := NewDate(2026, time.March, 8)
	assert.Equal(t, mon, FirstDayOfWeek(sun))

	// Across a month boundary.
	assert.Equal(t, NewDate(2026, time.March, 30), FirstDayOfWeek(NewDate(2026, time.April, 2)))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 1, DaysBetween(NewDate(2026, 3, 2), NewDate(2026, 3, 2)))
	assert.Equal(t, 7, DaysBetween(NewDate(2026, 3, 2), NewDate(2026, 3, 8)))
}

func TestIntervalOf(t *testing.T) {
	iv, err := IntervalOf(at(9, 0), 30)
	require.NoError(t, err)
	assert.Equal(t, at(9, 30), iv.End)

	_, err = IntervalOf(at(9, 0), 0)
	assert.True(t, errors.Is(err, ErrInvalidInterval))

	_, err = NewInterval(at(10, 0), at(10, 0))
	assert.ErrorIs(t, err, ErrInvalidInterval)
}
