package macros

import (
	"fmt"
	"math"
	"strings"

	"github.com/2beens/betterlife/internal/days"
)

type Macro string

const (
	Protein  Macro = "protein"
	Carbs    Macro = "carbs"
	Fat      Macro = "fat"
	Calories Macro = "calories"
)

// Tracked are the macros the user logs intake for. Calories are always derived.
var Tracked = []Macro{Protein, Carbs, Fat}

func ParseMacro(s string) (Macro, error) {
	m := Macro(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case Protein, Carbs, Fat, Calories:
		return m, nil
	default:
		return "", fmt.Errorf("unknown macro: %s", s)
	}
}

type Color string

const (
	Green  Color = "green"
	Yellow Color = "yellow"
	Red    Color = "red"
	// NoColor is returned for calories, which are display only.
	NoColor Color = ""
)

// slack is how far below the target the intake may be and still count as green or yellow
type slack struct {
	green  int
	yellow int
}

var slacks = map[Macro]slack{
	Protein: {green: 10, yellow: 20},
	Carbs:   {green: 25, yellow: 40},
	Fat:     {green: 5, yellow: 10},
}

type Targets struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
}

func (t Targets) Of(m Macro) int {
	switch m {
	case Protein:
		return t.Protein
	case Carbs:
		return t.Carbs
	case Fat:
		return t.Fat
	case Calories:
		return t.Calories
	default:
		return 0
	}
}

const carbsMultiplier = 6.5

// CalculateTargets returns the daily targets for the given age and body weight.
// Kids between 9 and 14 get lower fat and protein multipliers.
func CalculateTargets(ageYears int, weightKg float64) Targets {
	fatMultiplier, proteinMultiplier := 1.5, 2.0
	if ageYears >= 9 && ageYears <= 14 {
		fatMultiplier, proteinMultiplier = 1.30, 1.8
	}

	t := Targets{
		Fat:     roundHalfUp(weightKg * fatMultiplier),
		Protein: roundHalfUp(weightKg * proteinMultiplier),
		Carbs:   roundHalfUp(weightKg * carbsMultiplier),
	}
	t.Calories = CaloriesOf(t.Protein, t.Carbs, t.Fat)
	return t
}

func CaloriesOf(protein, carbs, fat int) int {
	return protein*4 + carbs*4 + fat*9
}

// Classify compares the intake of a macro against its target.
func Classify(m Macro, current, needed int) Color {
	s, ok := slacks[m]
	if !ok {
		return NoColor
	}
	switch {
	case current >= needed-s.green:
		return Green
	case current >= needed-s.yellow:
		return Yellow
	default:
		return Red
	}
}

// Age returns the whole years elapsed between birth and today.
func Age(birth, today days.Date) int {
	age := today.Year - birth.Year
	if today.Month < birth.Month || (today.Month == birth.Month && today.Day < birth.Day) {
		age--
	}
	return age
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
