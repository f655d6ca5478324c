package schedule

import (
	"iter"
	"time"

	"github.com/2beens/betterlife/internal/apperrors"
	"github.com/2beens/betterlife/internal/days"
)

// MinDays is the shortest period a normal schedule may span.
const MinDays = 30

// MaxDays is the longest period a normal schedule may span.
const MaxDays = 731

// Range is the active normal schedule of a user, both ends inclusive.
type Range struct {
	ID        int64     `json:"id"`
	StartDate days.Date `json:"startDate"`
	EndDate   days.Date `json:"endDate"`
	CreatedAt time.Time `json:"createdAt"`
}

func validateGap(start, end days.Date) error {
	if end.Before(start) {
		return apperrors.Validationf("end date %s is before start date %s", end, start)
	}
	if days.Between(start, end) < MinDays {
		return apperrors.Validationf("please select a period of at least %d days", MinDays)
	}
	if days.Between(start, end) > MaxDays {
		return apperrors.Validationf("please select a period of at most %d days", MaxDays)
	}
	return nil
}

func (r Range) Validate() error {
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return apperrors.Validationf("select both start and end dates")
	}
	return validateGap(r.StartDate, r.EndDate)
}

// Days yields every date of the range in order. The sequence can be ranged over any number of times.
func (r Range) Days() iter.Seq[days.Date] {
	return func(yield func(days.Date) bool) {
		if r.StartDate.IsZero() || r.EndDate.Before(r.StartDate) {
			return
		}
		for d := r.StartDate; !d.After(r.EndDate); d = d.AddDays(1) {
			if !yield(d) {
				return
			}
		}
	}
}

func (r Range) DaySlice() []days.Date {
	out := make([]days.Date, 0, r.Len())
	for d := range r.Days() {
		out = append(out, d)
	}
	return out
}

// Len is the number of days in the range.
func (r Range) Len() int {
	if r.StartDate.IsZero() || r.EndDate.Before(r.StartDate) {
		return 0
	}
	return days.Between(r.StartDate, r.EndDate) + 1
}

// WeekNumber is the label shown above the schedule: the span in weeks, rounded up.
func (r Range) WeekNumber() int {
	gap := days.Between(r.StartDate, r.EndDate)
	if gap <= 0 {
		return 0
	}
	return (gap + 6) / 7
}

func (r Range) Contains(d days.Date) bool {
	return !d.Before(r.StartDate) && !d.After(r.EndDate)
}
