package workouts

import (
	"context"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/2beens/betterlife/internal/apperrors"
	"github.com/2beens/betterlife/internal/days"
	"github.com/2beens/betterlife/internal/kvstore"
	"github.com/2beens/betterlife/internal/schedule"
	"github.com/2beens/betterlife/internal/telemetry/metrics"
	"github.com/2beens/betterlife/internal/telemetry/tracing"
	"github.com/2beens/betterlife/pkg"

	log "github.com/sirupsen/logrus"
)

type StatsType string

const (
	StatsDistance StatsType = "distance"
	StatsReps     StatsType = "reps"
	StatsTime     StatsType = "time"
)

// Stats describe how much of an assigned workout is done. Sets of 0 or 1 both mean a single set.
type Stats struct {
	Type  StatsType `json:"type"`
	Value float64   `json:"value"`
	Sets  int       `json:"sets"`
}

func (s Stats) Validate() error {
	switch s.Type {
	case StatsDistance, StatsReps, StatsTime:
	default:
		return apperrors.Validationf("unknown stats type: %s", s.Type)
	}
	if s.Value < 0 {
		return apperrors.Validationf("stats value cannot be negative")
	}
	if s.Sets < 0 {
		return apperrors.Validationf("sets cannot be negative")
	}
	return nil
}

// SetCount is the number of sets a time can be recorded for.
func (s *Stats) SetCount() int {
	if s == nil || s.Sets < 1 {
		return 1
	}
	return s.Sets
}

// SetTimes maps a set number to the "HH:MM" time it is planned for.
type SetTimes map[int]string

// Assignment is a workout put on a calendar date or on a weekday of the fixed week.
type Assignment struct {
	ID        int64    `json:"id"`
	WorkoutID int64    `json:"workoutId"`
	Name      string   `json:"name"`
	Category  string   `json:"type"`
	Day       days.Key `json:"dayKey"`
}

// FixedWeek always holds all seven weekdays.
type FixedWeek map[days.Weekday][]Assignment

func newFixedWeek() FixedWeek {
	week := make(FixedWeek, len(days.Week))
	for _, wd := range days.Week {
		week[wd] = []Assignment{}
	}
	return week
}

type activeRangeGetter interface {
	Active(ctx context.Context, userID string) (*schedule.Range, error)
}

type Ledger struct {
	store          kvstore.Store
	ids            *pkg.IDGenerator
	schedules      activeRangeGetter
	metricsManager *metrics.Manager
}

func NewLedger(
	store kvstore.Store,
	ids *pkg.IDGenerator,
	schedules activeRangeGetter,
	metricsManager *metrics.Manager,
) *Ledger {
	return &Ledger{
		store:          store,
		ids:            ids,
		schedules:      schedules,
		metricsManager: metricsManager,
	}
}

func statsKey(userID string, day days.Key, id int64) kvstore.Key {
	return kvstore.AssignmentKey(kvstore.KindWorkoutStats, userID, day, strconv.FormatInt(id, 10))
}

func timesKey(userID string, day days.Key, id int64) kvstore.Key {
	return kvstore.AssignmentKey(kvstore.KindWorkoutTimes, userID, day, strconv.FormatInt(id, 10))
}

// Week returns the fixed weekly template.
func (l *Ledger) Week(ctx context.Context, userID string) (_ FixedWeek, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.ledger.week")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	stored := FixedWeek{}
	if _, err := kvstore.GetJSON(ctx, l.store, kvstore.UserKey(kvstore.KindFixedWorkouts, userID), &stored); err != nil {
		return nil, err
	}

	week := newFixedWeek()
	for wd, list := range stored {
		if wd.IsValid() && list != nil {
			week[wd] = list
		}
	}
	return week, nil
}

func (l *Ledger) List(ctx context.Context, userID string, day days.Key) (_ []Assignment, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.ledger.list")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if wd, ok := day.Weekday(); ok {
		week, err := l.Week(ctx, userID)
		if err != nil {
			return nil, err
		}
		return week[wd], nil
	}
	if !day.IsConcrete() {
		return nil, apperrors.Validationf("invalid day")
	}

	list := []Assignment{}
	if _, err := kvstore.GetJSON(ctx, l.store, kvstore.DayKey(kvstore.KindDayWorkouts, userID, day), &list); err != nil {
		return nil, err
	}
	return list, nil
}

// saveListOp writes the assignments of one day. Weekly days rewrite the whole template.
func (l *Ledger) saveListOp(ctx context.Context, userID string, day days.Key, list []Assignment) (kvstore.Op, error) {
	if wd, ok := day.Weekday(); ok {
		week, err := l.Week(ctx, userID)
		if err != nil {
			return kvstore.Op{}, err
		}
		week[wd] = list
		return kvstore.SetJSONOp(kvstore.UserKey(kvstore.KindFixedWorkouts, userID), week)
	}
	return kvstore.SetJSONOp(kvstore.DayKey(kvstore.KindDayWorkouts, userID, day), list)
}

func (l *Ledger) checkInActiveRange(ctx context.Context, userID string, day days.Key) error {
	date, ok := day.Date()
	if !ok {
		return nil
	}
	active, err := l.schedules.Active(ctx, userID)
	if err != nil {
		return err
	}
	if active == nil {
		return apperrors.Validationf("no active schedule, set up a schedule first")
	}
	if !active.Contains(date) {
		return apperrors.Validationf("%s is outside the active schedule %s - %s", date, active.StartDate, active.EndDate)
	}
	return nil
}

// Assign puts the workout on the day. A workout with the same name already on that day is a duplicate.
func (l *Ledger) Assign(ctx context.Context, userID string, day days.Key, w Workout) (_ *Assignment, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.ledger.assign")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if w.Name == "" {
		return nil, apperrors.Validationf("workout name is required")
	}
	if err := l.checkInActiveRange(ctx, userID, day); err != nil {
		return nil, err
	}

	list, err := l.List(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	if slices.ContainsFunc(list, func(a Assignment) bool { return a.Name == w.Name }) {
		return nil, apperrors.Duplicatef("%s is already assigned to %s", w.Name, day)
	}

	a := Assignment{
		ID:        l.ids.Next(),
		WorkoutID: w.ID,
		Name:      w.Name,
		Category:  w.Category,
		Day:       day,
	}
	op, err := l.saveListOp(ctx, userID, day, append(list, a))
	if err != nil {
		return nil, err
	}
	if err := l.store.Apply(ctx, op); err != nil {
		return nil, err
	}

	l.metricsManager.CounterAssignments.WithLabelValues("assign").Inc()
	log.Debugf("workout %s assigned to %s for user %s", w.Name, day, userID)
	return &a, nil
}

// Unassign removes the assignment together with its stats and set times in one batch.
func (l *Ledger) Unassign(ctx context.Context, userID string, day days.Key, assignmentID int64) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.ledger.unassign")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	list, err := l.List(ctx, userID, day)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(list, func(a Assignment) bool { return a.ID == assignmentID })
	if idx < 0 {
		return apperrors.NotFoundf("assignment %d not found on %s", assignmentID, day)
	}

	listOp, err := l.saveListOp(ctx, userID, day, slices.Delete(list, idx, idx+1))
	if err != nil {
		return err
	}
	if err := l.store.Apply(ctx,
		listOp,
		kvstore.DeleteOp(statsKey(userID, day, assignmentID).String()),
		kvstore.DeleteOp(timesKey(userID, day, assignmentID).String()),
	); err != nil {
		return err
	}

	l.metricsManager.CounterAssignments.WithLabelValues("unassign").Inc()
	return nil
}

func (l *Ledger) get(ctx context.Context, userID string, day days.Key, assignmentID int64) (*Assignment, error) {
	list, err := l.List(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == assignmentID {
			return &list[i], nil
		}
	}
	return nil, apperrors.NotFoundf("assignment %d not found on %s", assignmentID, day)
}

// SetStats overwrites the stats of the assignment as a whole. Times of sets
// beyond the new set count are dropped with it.
func (l *Ledger) SetStats(ctx context.Context, userID string, day days.Key, assignmentID int64, stats Stats) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.ledger.setStats")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if err := stats.Validate(); err != nil {
		return err
	}
	if _, err := l.get(ctx, userID, day, assignmentID); err != nil {
		return err
	}

	statsOp, err := kvstore.SetJSONOp(statsKey(userID, day, assignmentID), stats)
	if err != nil {
		return err
	}
	ops := []kvstore.Op{statsOp}

	times, err := l.SetTimes(ctx, userID, day, assignmentID)
	if err != nil {
		return err
	}
	before := len(times)
	maps.DeleteFunc(times, func(set int, _ string) bool { return set > stats.SetCount() })
	switch {
	case len(times) == before:
	case len(times) == 0:
		ops = append(ops, kvstore.DeleteOp(timesKey(userID, day, assignmentID).String()))
	default:
		timesOp, err := kvstore.SetJSONOp(timesKey(userID, day, assignmentID), times)
		if err != nil {
			return err
		}
		ops = append(ops, timesOp)
	}

	return l.store.Apply(ctx, ops...)
}

// Stats returns nil when none were recorded.
func (l *Ledger) Stats(ctx context.Context, userID string, day days.Key, assignmentID int64) (_ *Stats, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.ledger.stats")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	var stats Stats
	found, err := kvstore.GetJSON(ctx, l.store, statsKey(userID, day, assignmentID), &stats)
	if err != nil || !found {
		return nil, err
	}
	return &stats, nil
}

// SetTimes returns an empty map when no times were recorded.
func (l *Ledger) SetTimes(ctx context.Context, userID string, day days.Key, assignmentID int64) (_ SetTimes, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.ledger.setTimes")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	times := SetTimes{}
	if _, err := kvstore.GetJSON(ctx, l.store, timesKey(userID, day, assignmentID), &times); err != nil {
		return nil, err
	}
	return times, nil
}

// SetSetTime records the time of day a set is planned for. Set 0 means the single set.
func (l *Ledger) SetSetTime(ctx context.Context, userID string, day days.Key, assignmentID int64, setNumber int, hhmm string) (_ SetTimes, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.ledger.setSetTime")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	clock, err := parseClock(hhmm)
	if err != nil {
		return nil, err
	}
	if _, err := l.get(ctx, userID, day, assignmentID); err != nil {
		return nil, err
	}

	stats, err := l.Stats(ctx, userID, day, assignmentID)
	if err != nil {
		return nil, err
	}
	if setNumber == 0 {
		setNumber = 1
	}
	if setNumber < 1 || setNumber > stats.SetCount() {
		return nil, apperrors.Validationf("set number must be between 1 and %d", stats.SetCount())
	}

	times, err := l.SetTimes(ctx, userID, day, assignmentID)
	if err != nil {
		return nil, err
	}
	times[setNumber] = clock.Format(clockLayout)
	if err := kvstore.SetJSON(ctx, l.store, timesKey(userID, day, assignmentID), times); err != nil {
		return nil, err
	}
	return times, nil
}

// ClosestCurrentSet reports the set whose time is nearest to now, only when the day is today.
func (l *Ledger) ClosestCurrentSet(ctx context.Context, userID string, day days.Key, assignmentID int64, now time.Time) (int, bool, error) {
	if !day.IsToday(now) {
		return 0, false, nil
	}
	times, err := l.SetTimes(ctx, userID, day, assignmentID)
	if err != nil {
		return 0, false, err
	}
	set, ok := ClosestSet(times, now)
	return set, ok, nil
}

// ClosestSet picks the set with the smallest minute distance to now. Ties go to the lower set number.
func ClosestSet(times SetTimes, now time.Time) (int, bool) {
	nowMinute := minuteOfDay(now)
	best, bestDiff := 0, -1
	for _, set := range slices.Sorted(maps.Keys(times)) {
		clock, err := parseClock(times[set])
		if err != nil {
			log.Warnf("skipping malformed set time [%s]", times[set])
			continue
		}
		diff := minuteOfDay(clock) - nowMinute
		if diff < 0 {
			diff = -diff
		}
		if bestDiff < 0 || diff < bestDiff {
			best, bestDiff = set, diff
		}
	}
	return best, bestDiff >= 0
}
