package schedule

import (
	"time"

	"github.com/2beens/betterlife/internal/apperrors"
	"github.com/2beens/betterlife/internal/days"
)

type State string

const (
	StateEmpty        State = "empty"
	StatePendingStart State = "pendingStart"
	StatePendingEnd   State = "pendingEnd"
	StateConfirmed    State = "confirmed"
)

// Selection is the working date pair a user picks on the calendar before
// confirming it as the active range.
type Selection struct {
	Start     *days.Date `json:"start,omitempty"`
	End       *days.Date `json:"end,omitempty"`
	Confirmed bool       `json:"confirmed,omitempty"`
}

func (s *Selection) State() State {
	switch {
	case s.Start != nil && s.End != nil:
		return StatePendingEnd
	case s.Start != nil:
		return StatePendingStart
	case s.Confirmed:
		return StateConfirmed
	default:
		return StateEmpty
	}
}

// Pick applies a calendar click. A date before the start, or any date once both
// ends are set, starts a fresh selection. An end date closer than MinDays to the
// start is rejected and leaves the selection untouched.
func (s *Selection) Pick(date days.Date) error {
	if s.Start == nil || s.End != nil || date.Before(*s.Start) {
		s.Start = &date
		s.End = nil
		s.Confirmed = false
		return nil
	}

	if err := validateGap(*s.Start, date); err != nil {
		return err
	}
	s.End = &date
	return nil
}

// Confirm turns the selection into a range and resets the selection.
func (s *Selection) Confirm(id int64, now time.Time) (Range, error) {
	if s.Start == nil || s.End == nil {
		return Range{}, apperrors.Validationf("select both start and end dates")
	}

	r := Range{
		ID:        id,
		StartDate: *s.Start,
		EndDate:   *s.End,
		CreatedAt: now.UTC(),
	}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}

	*s = Selection{Confirmed: true}
	return r, nil
}
