package workouts

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/2beens/betterlife/internal/days"
)

// SetTimeView is a recorded set time ready for display.
type SetTimeView struct {
	Set     int    `json:"set"`
	Time    string `json:"time"`
	Display string `json:"display"`
	Current bool   `json:"current"`
}

// AssignmentView is an assignment with its stats and set times, formatted for a day card.
type AssignmentView struct {
	Assignment
	Stats        *Stats        `json:"stats,omitempty"`
	StatsDisplay string        `json:"statsDisplay,omitempty"`
	Times        []SetTimeView `json:"times"`
	Current      bool          `json:"current"`
}

// Views loads every assignment of the day with its stats and times. On today's card the
// set closest to now is marked current, and so is the assignment holding it.
func (l *Ledger) Views(ctx context.Context, userID string, day days.Key, now time.Time) ([]AssignmentView, error) {
	list, err := l.List(ctx, userID, day)
	if err != nil {
		return nil, err
	}

	isToday := day.IsToday(now)
	views := make([]AssignmentView, 0, len(list))
	for _, a := range list {
		stats, err := l.Stats(ctx, userID, day, a.ID)
		if err != nil {
			return nil, err
		}
		times, err := l.SetTimes(ctx, userID, day, a.ID)
		if err != nil {
			return nil, err
		}

		v := AssignmentView{
			Assignment: a,
			Stats:      stats,
			Times:      []SetTimeView{},
		}
		if stats != nil {
			v.StatsDisplay = FormatStats(*stats)
		}

		closest, hasClosest := 0, false
		if isToday {
			closest, hasClosest = ClosestSet(times, now)
		}
		for _, set := range slices.Sorted(maps.Keys(times)) {
			display, err := FormatTime(times[set])
			if err != nil {
				continue
			}
			v.Times = append(v.Times, SetTimeView{
				Set:     set,
				Time:    times[set],
				Display: display,
				Current: hasClosest && set == closest,
			})
		}
		v.Current = hasClosest
		views = append(views, v)
	}
	return views, nil
}
