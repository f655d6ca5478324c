package workouts

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/2beens/betterlife/internal/apperrors"
)

const clockLayout = "15:04"

// FormatStats renders stats the way the day cards show them, e.g. "x12 3s",
// "5.5km" or "2m 30sec".
func FormatStats(s Stats) string {
	var out string
	switch s.Type {
	case StatsDistance:
		out = formatNumber(s.Value) + "km"
	case StatsTime:
		switch {
		case s.Value < 1:
			out = fmt.Sprintf("%dsec", roundHalfUp(s.Value*100))
		case s.Value == math.Trunc(s.Value):
			out = formatNumber(s.Value) + "m"
		default:
			out = fmt.Sprintf("%dm %dsec", int(math.Floor(s.Value)), roundHalfUp(math.Mod(s.Value, 1)*100))
		}
	case StatsReps:
		if s.Value < 1 {
			out = fmt.Sprintf("Till Failure + x%d", roundHalfUp(s.Value*10))
		} else {
			out = "x" + formatNumber(s.Value)
		}
	default:
		out = formatNumber(s.Value)
	}

	if s.Sets > 1 {
		out = fmt.Sprintf("%s %ds", out, s.Sets)
	}
	return out
}

// FormatTime turns "HH:MM" into the 12 hour form, "00:05" being "12:05 AM".
func FormatTime(hhmm string) (string, error) {
	t, err := parseClock(hhmm)
	if err != nil {
		return "", err
	}
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	ampm := "AM"
	if t.Hour() >= 12 {
		ampm = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", hour, t.Minute(), ampm), nil
}

func parseClock(hhmm string) (time.Time, error) {
	t, err := time.Parse(clockLayout, hhmm)
	if err != nil {
		return time.Time{}, apperrors.Validationf("invalid time of day [%s], expected HH:MM", hhmm)
	}
	return t, nil
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
