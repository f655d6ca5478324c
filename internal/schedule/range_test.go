package schedule

import (
	"slices"
	"testing"
	"time"

	"github.com/2beens/betterlife/internal/apperrors"
	"github.com/2beens/betterlife/internal/days"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(year int, month time.Month, day int) days.Date {
	return days.New(year, month, day)
}

func TestRange_Days(t *testing.T) {
	r := Range{StartDate: d(2024, time.January, 30), EndDate: d(2024, time.March, 1)}
	require.NoError(t, r.Validate())

	first := r.DaySlice()
	second := slices.Collect(r.Days())
	assert.Equal(t, first, second)
	require.Len(t, first, 32)
	assert.Equal(t, 32, r.Len())
	assert.Equal(t, d(2024, time.January, 30), first[0])
	assert.Equal(t, d(2024, time.February, 29), first[30])
	assert.Equal(t, d(2024, time.March, 1), first[31])

	// early break
	n := 0
	for range r.Days() {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)

	assert.Empty(t, Range{}.DaySlice())
	assert.Zero(t, Range{}.Len())
}

func TestRange_WeekNumber(t *testing.T) {
	assert.Equal(t, 5, Range{StartDate: d(2024, 1, 1), EndDate: d(2024, 2, 5)}.WeekNumber())
	assert.Equal(t, 5, Range{StartDate: d(2024, 1, 1), EndDate: d(2024, 1, 31)}.WeekNumber())
	assert.Equal(t, 5, Range{StartDate: d(2024, 1, 1), EndDate: d(2024, 2, 4)}.WeekNumber())
	assert.Equal(t, 6, Range{StartDate: d(2024, 1, 1), EndDate: d(2024, 2, 6)}.WeekNumber())
	assert.Zero(t, Range{}.WeekNumber())
}

func TestRange_Validate(t *testing.T) {
	assert.ErrorIs(t, Range{StartDate: d(2024, 1, 1), EndDate: d(2024, 1, 20)}.Validate(), apperrors.ErrValidation)
	assert.ErrorIs(t, Range{StartDate: d(2024, 1, 1), EndDate: d(2024, 1, 30)}.Validate(), apperrors.ErrValidation)
	assert.NoError(t, Range{StartDate: d(2024, 1, 1), EndDate: d(2024, 1, 31)}.Validate())
	assert.NoError(t, Range{StartDate: d(2024, 1, 1), EndDate: d(2024, 2, 5)}.Validate())
	assert.ErrorIs(t, Range{StartDate: d(2024, 1, 1)}.Validate(), apperrors.ErrValidation)

	// two years at most
	assert.NoError(t, Range{StartDate: d(2024, 1, 1), EndDate: d(2024, 1, 1).AddDays(MaxDays)}.Validate())
	assert.ErrorIs(t, Range{StartDate: d(2024, 1, 1), EndDate: d(2024, 1, 1).AddDays(MaxDays + 1)}.Validate(), apperrors.ErrValidation)
	assert.ErrorIs(t, Range{StartDate: d(2024, 1, 1), EndDate: d(9999, 12, 31)}.Validate(), apperrors.ErrValidation)
}

func TestRange_Contains(t *testing.T) {
	r := Range{StartDate: d(2024, 1, 1), EndDate: d(2024, 2, 5)}
	assert.True(t, r.Contains(d(2024, 1, 1)))
	assert.True(t, r.Contains(d(2024, 2, 5)))
	assert.True(t, r.Contains(d(2024, 1, 15)))
	assert.False(t, r.Contains(d(2023, 12, 31)))
	assert.False(t, r.Contains(d(2024, 2, 6)))
}
