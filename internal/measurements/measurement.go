package measurements

import (
	"math"
	"time"

	"github.com/2beens/betterlife/internal/apperrors"
)

type Type string

const (
	Weight Type = "weight"
	Chest  Type = "chest"
	Waist  Type = "waist"
	Hips   Type = "hips"
	Biceps Type = "biceps"
	Thighs Type = "thighs"
	Calves Type = "calves"
)

var Types = []Type{Weight, Chest, Waist, Hips, Biceps, Thighs, Calves}

func (t Type) IsValid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Unit is kg for the weight and cm for every body part.
func (t Type) Unit() string {
	if t == Weight {
		return "kg"
	}
	return "cm"
}

type Measurement struct {
	ID    int64     `json:"id"`
	Type  Type      `json:"type"`
	Value float64   `json:"value"`
	Date  time.Time `json:"date"`
}

func (m Measurement) Validate() error {
	if !m.Type.IsValid() {
		return apperrors.Validationf("unknown measurement type: %s", m.Type)
	}
	if m.Value <= 0 || math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
		return apperrors.Validationf("please enter a valid value")
	}
	return nil
}

// Card is one of the before/after comparison cards.
type Card string

const (
	CardBefore Card = "before"
	CardAfter  Card = "after"
)

func ParseCard(s string) (Card, error) {
	switch c := Card(s); c {
	case CardBefore, CardAfter:
		return c, nil
	default:
		return "", apperrors.Validationf("unknown card: %s", s)
	}
}

// CardValues maps a measurement type to its value on a card.
type CardValues map[Type]float64

type Cards struct {
	Before     CardValues `json:"before"`
	After      CardValues `json:"after"`
	Difference CardValues `json:"difference"`
}

// difference is after minus before for every type on either card. A missing value counts as 0.
func difference(before, after CardValues) CardValues {
	diff := CardValues{}
	for t := range before {
		diff[t] = after[t] - before[t]
	}
	for t := range after {
		diff[t] = after[t] - before[t]
	}
	return diff
}
