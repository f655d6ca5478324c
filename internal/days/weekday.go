package days

import (
	"fmt"
	"strings"
	"time"
)

type Weekday string

const (
	Sunday    Weekday = "sunday"
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
)

// Week lists the weekdays in the order the fixed schedule shows them.
var Week = [7]Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

func weekdayOf(wd time.Weekday) Weekday {
	return Week[int(wd)]
}

// WeekdayOf returns the weekday of t in t's own location.
func WeekdayOf(t time.Time) Weekday {
	return weekdayOf(t.Weekday())
}

func ParseWeekday(s string) (Weekday, error) {
	wd := Weekday(strings.ToLower(strings.TrimSpace(s)))
	if !wd.IsValid() {
		return "", fmt.Errorf("unknown weekday: %s", s)
	}
	return wd, nil
}

func (w Weekday) IsValid() bool {
	for _, wd := range Week {
		if wd == w {
			return true
		}
	}
	return false
}

// Title returns the display name, e.g. "Monday".
func (w Weekday) Title() string {
	if w == "" {
		return ""
	}
	return strings.ToUpper(string(w[:1])) + string(w[1:])
}

func (w Weekday) String() string {
	return string(w)
}
