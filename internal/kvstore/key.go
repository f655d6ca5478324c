package kvstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/2beens/betterlife/internal/days"
)

type Kind string

const (
	KindSchedules         Kind = "schedules"
	KindScheduleSelection Kind = "scheduleSelection"
	KindWorkouts          Kind = "workouts"
	KindCustomWorkouts    Kind = "customWorkouts"
	KindFixedWorkouts     Kind = "fixed_workouts"
	KindDayWorkouts       Kind = "dayWorkouts"
	KindWorkoutStats      Kind = "workoutStats"
	KindWorkoutTimes      Kind = "workoutTimes"
	KindMacros            Kind = "macros"
	KindPhysique          Kind = "physique"
	KindBirth             Kind = "birth"
	KindName              Kind = "name"
	KindMeasurements      Kind = "measurements"
	KindAccount           Kind = "account"
)

type dayMode int

const (
	noDay dayMode = iota
	concreteDay
	anyDay
)

type suffixMode int

const (
	noSuffix suffixMode = iota
	requiredSuffix
	optionalSuffix
)

type kindSpec struct {
	day        dayMode
	suffix     suffixMode
	exportable bool
}

var kinds = map[Kind]kindSpec{
	KindSchedules:         {exportable: true},
	KindScheduleSelection: {},
	KindWorkouts:          {exportable: true},
	KindCustomWorkouts:    {exportable: true},
	KindFixedWorkouts:     {exportable: true},
	KindDayWorkouts:       {day: concreteDay, exportable: true},
	KindWorkoutStats:      {day: anyDay, suffix: requiredSuffix, exportable: true},
	KindWorkoutTimes:      {day: anyDay, suffix: requiredSuffix, exportable: true},
	KindMacros:            {day: concreteDay, exportable: true},
	KindPhysique:          {exportable: true},
	KindBirth:             {exportable: true},
	KindName:              {exportable: true},
	KindMeasurements:      {suffix: optionalSuffix, exportable: true},
	KindAccount:           {},
}

// Key is the typed form of a storage key:
//
//	{kind}_{userID}[_{day}][_{suffix}]
//
// e.g. "workoutStats_42_fixed_monday_1704412800000" or "macros_42_2024-01-05".
type Key struct {
	Kind   Kind
	UserID string
	Day    days.Key
	Suffix string
}

func UserKey(kind Kind, userID string) Key {
	return Key{Kind: kind, UserID: userID}
}

func DayKey(kind Kind, userID string, day days.Key) Key {
	return Key{Kind: kind, UserID: userID, Day: day}
}

func AssignmentKey(kind Kind, userID string, day days.Key, assignmentID string) Key {
	return Key{Kind: kind, UserID: userID, Day: day, Suffix: assignmentID}
}

func (k Key) String() string {
	var sb strings.Builder
	sb.WriteString(string(k.Kind))
	sb.WriteByte('_')
	sb.WriteString(k.UserID)
	if !k.Day.IsZero() {
		sb.WriteByte('_')
		sb.WriteString(k.Day.String())
	}
	if k.Suffix != "" {
		sb.WriteByte('_')
		sb.WriteString(k.Suffix)
	}
	return sb.String()
}

// Exportable reports whether the key takes part in user data export and import.
func (k Key) Exportable() bool {
	return kinds[k.Kind].exportable
}

// WithUser returns the same key owned by another user.
func (k Key) WithUser(userID string) Key {
	k.UserID = userID
	return k
}

func (k Key) Validate() error {
	spec, ok := kinds[k.Kind]
	if !ok {
		return fmt.Errorf("unknown key kind: %s", k.Kind)
	}
	if err := ValidateUserID(k.UserID); err != nil {
		return err
	}

	switch spec.day {
	case noDay:
		if !k.Day.IsZero() {
			return fmt.Errorf("%s key takes no day", k.Kind)
		}
	case concreteDay:
		if !k.Day.IsConcrete() {
			return fmt.Errorf("%s key needs a calendar date", k.Kind)
		}
	case anyDay:
		if k.Day.IsZero() {
			return fmt.Errorf("%s key needs a day", k.Kind)
		}
	}

	switch spec.suffix {
	case noSuffix:
		if k.Suffix != "" {
			return fmt.Errorf("%s key takes no suffix", k.Kind)
		}
	case requiredSuffix:
		if k.Suffix == "" {
			return fmt.Errorf("%s key needs a suffix", k.Kind)
		}
	}
	if strings.Contains(k.Suffix, "_") {
		return fmt.Errorf("invalid key suffix: %s", k.Suffix)
	}

	return nil
}

// ValidateUserID rejects ids that would make keys ambiguous or break pattern matching.
func ValidateUserID(userID string) error {
	if userID == "" {
		return errors.New("empty user id")
	}
	if strings.ContainsAny(userID, "_*?[]\\% ") {
		return fmt.Errorf("invalid user id: %s", userID)
	}
	return nil
}

// ParseKey is the inverse of Key.String.
func ParseKey(raw string) (Key, error) {
	kind, rest, err := splitKind(raw)
	if err != nil {
		return Key{}, err
	}
	spec := kinds[kind]

	k := Key{Kind: kind}
	k.UserID, rest, _ = strings.Cut(rest, "_")

	if spec.day != noDay {
		var dayToken string
		if strings.HasPrefix(rest, "fixed_") {
			weekday, tail, _ := strings.Cut(strings.TrimPrefix(rest, "fixed_"), "_")
			dayToken, rest = "fixed_"+weekday, tail
		} else {
			dayToken, rest, _ = strings.Cut(rest, "_")
		}
		if dayToken != "" {
			k.Day, err = days.ParseKey(dayToken)
			if err != nil {
				return Key{}, fmt.Errorf("parse key [%s]: %w", raw, err)
			}
		}
	}
	k.Suffix = rest

	if err := k.Validate(); err != nil {
		return Key{}, fmt.Errorf("parse key [%s]: %w", raw, err)
	}
	return k, nil
}

func splitKind(raw string) (Kind, string, error) {
	// fixed_workouts is the only kind with an underscore of its own
	if rest, ok := strings.CutPrefix(raw, string(KindFixedWorkouts)+"_"); ok {
		return KindFixedWorkouts, rest, nil
	}
	prefix, rest, ok := strings.Cut(raw, "_")
	if !ok {
		return "", "", fmt.Errorf("malformed key: %s", raw)
	}
	kind := Kind(prefix)
	if _, known := kinds[kind]; !known {
		return "", "", fmt.Errorf("unknown key kind: %s", prefix)
	}
	return kind, rest, nil
}
