package macros

import (
	"context"
	"testing"
	"time"

	"github.com/2beens/betterlife/internal/apperrors"
	"github.com/2beens/betterlife/internal/days"
	"github.com/2beens/betterlife/internal/kvstore"
	"github.com/2beens/betterlife/internal/profile"
	"github.com/2beens/betterlife/internal/schedule"
	"github.com/2beens/betterlife/internal/telemetry/metrics"
	"github.com/2beens/betterlife/pkg"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testToday = days.New(2024, time.March, 10)

func newTestService(t *testing.T) (*Service, *kvstore.MemoryStore, *metrics.Manager) {
	t.Helper()
	store := kvstore.NewMemoryStore()
	profiles := profile.NewRepo(store)
	_, err := profiles.Update(context.Background(), "u1", profile.Update{
		BirthDate: &profile.BirthDate{Year: 1990, Month: 5, Day: 17},
		Physique:  &profile.Physique{HeightCm: 182, WeightKg: 80, BasalMetabolicRate: 1850},
	}, testToday)
	require.NoError(t, err)

	// 2024-02-15 - 2024-03-31
	schedules := schedule.NewService(schedule.NewRepo(store), pkg.NewIDGenerator())
	_, err = schedules.SaveRange(context.Background(), "u1", days.New(2024, time.February, 15), days.New(2024, time.March, 31), testToday.Time())
	require.NoError(t, err)

	m := metrics.NewTestManager()
	return NewService(NewRepo(store), profiles, schedules, m), store, m
}

func TestService_Targets(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService(t)

	tg, err := s.Targets(ctx, "u1", testToday)
	require.NoError(t, err)
	assert.Equal(t, Targets{Calories: 3800, Protein: 160, Carbs: 520, Fat: 120}, tg)

	// nobody filled in anything yet
	tg, err = s.Targets(ctx, "u2", testToday)
	require.NoError(t, err)
	assert.Equal(t, Targets{}, tg)
}

func TestService_SetRecomputesCalories(t *testing.T) {
	ctx := context.Background()
	s, store, m := newTestService(t)
	date := days.New(2024, time.March, 1)

	saved, err := s.Set(ctx, "u1", date, Log{Protein: 100, Carbs: 200, Fat: 50, Calories: 1})
	require.NoError(t, err)
	assert.Equal(t, 100*4+200*4+50*9, saved.Calories)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterMacroWrites))

	raw, err := store.Get(ctx, "macros_u1_2024-03-01")
	require.NoError(t, err)
	assert.JSONEq(t, `{"protein":100,"carbs":200,"fat":50,"calories":1650}`, string(raw))

	_, err = s.Set(ctx, "u1", date, Log{Protein: -1})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterMacroWrites))
}

func TestService_AddIntake(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService(t)
	date := days.New(2024, time.March, 1)

	l, err := s.AddIntake(ctx, "u1", date, Protein, 30)
	require.NoError(t, err)
	assert.Equal(t, Log{Protein: 30, Calories: 120}, l)

	l, err = s.AddIntake(ctx, "u1", date, Protein, 25)
	require.NoError(t, err)
	assert.Equal(t, 55, l.Protein)

	l, err = s.AddIntake(ctx, "u1", date, Fat, 10)
	require.NoError(t, err)
	assert.Equal(t, Log{Protein: 55, Fat: 10, Calories: 55*4 + 10*9}, l)

	_, err = s.AddIntake(ctx, "u1", date, Calories, 100)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = s.AddIntake(ctx, "u1", date, Carbs, -5)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	got, err := s.Get(ctx, "u1", date)
	require.NoError(t, err)
	assert.Equal(t, l, got)
}

func TestService_DayStatus(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService(t)
	date := days.New(2024, time.March, 2)

	_, err := s.Set(ctx, "u1", date, Log{Protein: 150, Carbs: 485, Fat: 90})
	require.NoError(t, err)

	status, err := s.DayStatus(ctx, "u1", date, testToday)
	require.NoError(t, err)
	assert.Equal(t, date, status.Date)
	assert.Equal(t, Green, status.Colors[Protein])
	assert.Equal(t, Yellow, status.Colors[Carbs])
	assert.Equal(t, Red, status.Colors[Fat])
	assert.Len(t, status.Colors, 3)

	// a day without a log is all red
	status, err = s.DayStatus(ctx, "u1", date.AddDays(1), testToday)
	require.NoError(t, err)
	assert.Equal(t, Log{}, status.Log)
	for _, m := range Tracked {
		assert.Equal(t, Red, status.Colors[m])
	}
}

func TestService_WritesNeedActiveSchedule(t *testing.T) {
	ctx := context.Background()
	s, store, m := newTestService(t)

	// u2 never set up a schedule
	_, err := s.Set(ctx, "u2", days.New(2024, time.March, 1), Log{Protein: 10})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = s.AddIntake(ctx, "u2", days.New(2024, time.March, 1), Protein, 10)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = store.Get(ctx, "macros_u2_2024-03-01")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)

	for _, date := range []days.Date{
		days.New(2024, time.February, 14),
		days.New(2024, time.April, 1),
		days.New(2099, time.January, 1),
	} {
		_, err = s.Set(ctx, "u1", date, Log{Protein: 10})
		assert.ErrorIs(t, err, apperrors.ErrValidation, date.String())
		_, err = s.AddIntake(ctx, "u1", date, Carbs, 10)
		assert.ErrorIs(t, err, apperrors.ErrValidation, date.String())
		_, err = store.Get(ctx, "macros_u1_"+date.String())
		assert.ErrorIs(t, err, kvstore.ErrNotFound, date.String())
	}

	// both ends are part of the schedule
	_, err = s.Set(ctx, "u1", days.New(2024, time.February, 15), Log{Protein: 10})
	require.NoError(t, err)
	_, err = s.AddIntake(ctx, "u1", days.New(2024, time.March, 31), Fat, 5)
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CounterMacroWrites))
}
