package days

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const weeklyPrefix = "fixed_"

type KeyKind int

const (
	KindConcrete KeyKind = iota + 1
	KindWeekly
)

// Key identifies a schedulable day: either a concrete calendar date
// of the normal schedule or a weekday of the fixed weekly template.
type Key struct {
	kind    KeyKind
	date    Date
	weekday Weekday
}

func Concrete(d Date) Key {
	return Key{kind: KindConcrete, date: d}
}

func Weekly(w Weekday) Key {
	return Key{kind: KindWeekly, weekday: w}
}

// ParseKey accepts "2024-01-05", "fixed_monday" and a bare weekday name ("monday").
func ParseKey(s string) (Key, error) {
	if s == "" {
		return Key{}, errors.New("empty day key")
	}
	if strings.HasPrefix(s, weeklyPrefix) {
		wd, err := ParseWeekday(strings.TrimPrefix(s, weeklyPrefix))
		if err != nil {
			return Key{}, err
		}
		return Weekly(wd), nil
	}
	if wd, err := ParseWeekday(s); err == nil {
		return Weekly(wd), nil
	}
	d, err := Parse(s)
	if err != nil {
		return Key{}, fmt.Errorf("invalid day key [%s]", s)
	}
	return Concrete(d), nil
}

func (k Key) Kind() KeyKind {
	return k.kind
}

func (k Key) IsZero() bool {
	return k.kind == 0
}

func (k Key) IsConcrete() bool {
	return k.kind == KindConcrete
}

func (k Key) IsWeekly() bool {
	return k.kind == KindWeekly
}

func (k Key) Date() (Date, bool) {
	return k.date, k.kind == KindConcrete
}

func (k Key) Weekday() (Weekday, bool) {
	return k.weekday, k.kind == KindWeekly
}

// IsToday matches the concrete date, or the weekday name for weekly keys, against now.
func (k Key) IsToday(now time.Time) bool {
	switch k.kind {
	case KindConcrete:
		return k.date == FromTime(now)
	case KindWeekly:
		return k.weekday == WeekdayOf(now)
	default:
		return false
	}
}

// String is the storage encoding of the key.
func (k Key) String() string {
	switch k.kind {
	case KindConcrete:
		return k.date.String()
	case KindWeekly:
		return weeklyPrefix + string(k.weekday)
	default:
		return ""
	}
}

func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := ParseKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
