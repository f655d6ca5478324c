package macros

import (
	"github.com/2beens/betterlife/internal/apperrors"
)

// Log is the intake logged for one diet day. Calories always follow from the
// other three and are recomputed on every write.
type Log struct {
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
	Calories int `json:"calories"`
}

func (l Log) Of(m Macro) int {
	switch m {
	case Protein:
		return l.Protein
	case Carbs:
		return l.Carbs
	case Fat:
		return l.Fat
	case Calories:
		return l.Calories
	default:
		return 0
	}
}

func (l Log) Validate() error {
	if l.Protein < 0 || l.Carbs < 0 || l.Fat < 0 {
		return apperrors.Validationf("macro values cannot be negative")
	}
	return nil
}

func (l Log) withDerivedCalories() Log {
	l.Calories = CaloriesOf(l.Protein, l.Carbs, l.Fat)
	return l
}

// Colors classifies every tracked macro of the log against the targets.
func (l Log) Colors(t Targets) map[Macro]Color {
	colors := make(map[Macro]Color, len(Tracked))
	for _, m := range Tracked {
		colors[m] = Classify(m, l.Of(m), t.Of(m))
	}
	return colors
}
