package macros

import (
	"context"

	"github.com/2beens/betterlife/internal/apperrors"
	"github.com/2beens/betterlife/internal/days"
	"github.com/2beens/betterlife/internal/profile"
	"github.com/2beens/betterlife/internal/schedule"
	"github.com/2beens/betterlife/internal/telemetry/metrics"
	"github.com/2beens/betterlife/internal/telemetry/tracing"
)

type profileReader interface {
	Get(ctx context.Context, userID string) (*profile.Profile, error)
}

type activeRangeGetter interface {
	Active(ctx context.Context, userID string) (*schedule.Range, error)
}

// DayStatus is the logged intake of a day next to the targets, with a colour per macro.
type DayStatus struct {
	Date    days.Date       `json:"date"`
	Log     Log             `json:"log"`
	Targets Targets         `json:"targets"`
	Colors  map[Macro]Color `json:"colors"`
}

type Service struct {
	repo           *Repo
	profiles       profileReader
	schedules      activeRangeGetter
	metricsManager *metrics.Manager
}

func NewService(repo *Repo, profiles profileReader, schedules activeRangeGetter, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:           repo,
		profiles:       profiles,
		schedules:      schedules,
		metricsManager: metricsManager,
	}
}

func (s *Service) Get(ctx context.Context, userID string, date days.Date) (Log, error) {
	return s.repo.Get(ctx, userID, date)
}

// Diet is only tracked on days of the active schedule.
func (s *Service) checkInActiveRange(ctx context.Context, userID string, date days.Date) error {
	active, err := s.schedules.Active(ctx, userID)
	if err != nil {
		return err
	}
	if active == nil {
		return apperrors.Validationf("no active schedule, set up a schedule first to track your diet")
	}
	if !active.Contains(date) {
		return apperrors.Validationf("%s is outside the active schedule %s - %s", date, active.StartDate, active.EndDate)
	}
	return nil
}

func (s *Service) Set(ctx context.Context, userID string, date days.Date, l Log) (Log, error) {
	if err := s.checkInActiveRange(ctx, userID, date); err != nil {
		return Log{}, err
	}
	saved, err := s.repo.Set(ctx, userID, date, l)
	if err != nil {
		return Log{}, err
	}
	s.metricsManager.CounterMacroWrites.Inc()
	return saved, nil
}

// AddIntake adds amount grams of the macro to what is already logged for the day.
func (s *Service) AddIntake(ctx context.Context, userID string, date days.Date, m Macro, amount int) (_ Log, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.macros.addIntake")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if amount < 0 {
		return Log{}, apperrors.Validationf("intake cannot be negative")
	}
	if err := s.checkInActiveRange(ctx, userID, date); err != nil {
		return Log{}, err
	}

	l, err := s.repo.Get(ctx, userID, date)
	if err != nil {
		return Log{}, err
	}

	switch m {
	case Protein:
		l.Protein += amount
	case Carbs:
		l.Carbs += amount
	case Fat:
		l.Fat += amount
	case Calories:
		return Log{}, apperrors.Validationf("calories are derived and cannot be edited")
	default:
		return Log{}, apperrors.Validationf("unknown macro: %s", m)
	}

	return s.Set(ctx, userID, date, l)
}

// Targets computes the daily targets from the user's age and weight. Without a
// birth date the adult multipliers apply, without a physique the targets are zero.
func (s *Service) Targets(ctx context.Context, userID string, today days.Date) (_ Targets, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.macros.targets")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return Targets{}, err
	}

	age := 0
	if p.BirthDate != nil {
		age = Age(p.BirthDate.Date(), today)
	}
	return CalculateTargets(age, p.WeightKg()), nil
}

func (s *Service) DayStatus(ctx context.Context, userID string, date, today days.Date) (_ *DayStatus, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.macros.dayStatus")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	targets, err := s.Targets(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	l, err := s.repo.Get(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	return &DayStatus{
		Date:    date,
		Log:     l,
		Targets: targets,
		Colors:  l.Colors(targets),
	}, nil
}
