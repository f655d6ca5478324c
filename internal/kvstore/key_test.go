package kvstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/betterlife/internal/days"
)

func TestKey_StringAndParse(t *testing.T) {
	date := days.Concrete(days.New(2024, time.January, 5))
	monday := days.Weekly(days.Monday)

	testCases := []struct {
		key Key
		raw string
	}{
		{UserKey(KindSchedules, "u1"), "schedules_u1"},
		{UserKey(KindScheduleSelection, "u1"), "scheduleSelection_u1"},
		{UserKey(KindWorkouts, "u1"), "workouts_u1"},
		{UserKey(KindCustomWorkouts, "u1"), "customWorkouts_u1"},
		{UserKey(KindFixedWorkouts, "u1"), "fixed_workouts_u1"},
		{DayKey(KindDayWorkouts, "u1", date), "dayWorkouts_u1_2024-01-05"},
		{AssignmentKey(KindWorkoutStats, "u1", date, "1704412800000"), "workoutStats_u1_2024-01-05_1704412800000"},
		{AssignmentKey(KindWorkoutStats, "u1", monday, "17"), "workoutStats_u1_fixed_monday_17"},
		{AssignmentKey(KindWorkoutTimes, "u1", monday, "17"), "workoutTimes_u1_fixed_monday_17"},
		{DayKey(KindMacros, "u1", date), "macros_u1_2024-01-05"},
		{UserKey(KindPhysique, "u1"), "physique_u1"},
		{UserKey(KindBirth, "u1"), "birth_u1"},
		{UserKey(KindName, "u1"), "name_u1"},
		{UserKey(KindMeasurements, "u1"), "measurements_u1"},
		{Key{Kind: KindMeasurements, UserID: "u1", Suffix: "before"}, "measurements_u1_before"},
		{UserKey(KindAccount, "6f1c-aa"), "account_6f1c-aa"},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			require.NoError(t, tc.key.Validate())
			assert.Equal(t, tc.raw, tc.key.String())

			parsed, err := ParseKey(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.key, parsed)
		})
	}
}

func TestParseKey_Invalid(t *testing.T) {
	for _, raw := range []string{
		"",
		"schedules",
		"unknown_u1",
		"schedules_u1_2024-01-05",
		"macros_u1",
		"macros_u1_fixed_monday",
		"dayWorkouts_u1_notadate",
		"workoutStats_u1_2024-01-05",
		"workoutStats_u1_fixed_funday_1",
		"physique__",
	} {
		_, err := ParseKey(raw)
		assert.Error(t, err, raw)
	}
}

func TestKey_Exportable(t *testing.T) {
	assert.True(t, UserKey(KindWorkouts, "u1").Exportable())
	assert.True(t, UserKey(KindFixedWorkouts, "u1").Exportable())
	assert.False(t, UserKey(KindAccount, "u1").Exportable())
	assert.False(t, UserKey(KindScheduleSelection, "u1").Exportable())
}

func TestKey_WithUser(t *testing.T) {
	k := AssignmentKey(KindWorkoutStats, "u1", days.Weekly(days.Friday), "9")
	moved := k.WithUser("u2")
	assert.Equal(t, "workoutStats_u2_fixed_friday_9", moved.String())
	assert.Equal(t, "u1", k.UserID)
}

func TestValidateUserID(t *testing.T) {
	assert.NoError(t, ValidateUserID("0b6d2f3c-9b5e-4b1e-8c8a-1f3d3c2a7e11"))
	for _, bad := range []string{"", "a_b", "a*", "a b", "50%"} {
		assert.Error(t, ValidateUserID(bad), bad)
	}
}
