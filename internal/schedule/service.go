package schedule

import (
	"context"
	"time"

	"github.com/2beens/betterlife/internal/apperrors"
	"github.com/2beens/betterlife/internal/days"
	"github.com/2beens/betterlife/internal/telemetry/tracing"
	"github.com/2beens/betterlife/pkg"

	log "github.com/sirupsen/logrus"
)

type SelectionView struct {
	Selection
	State State `json:"state"`
}

type Service struct {
	repo *Repo
	ids  *pkg.IDGenerator
}

func NewService(repo *Repo, ids *pkg.IDGenerator) *Service {
	return &Service{
		repo: repo,
		ids:  ids,
	}
}

// Active returns nil when the user has no schedule.
func (s *Service) Active(ctx context.Context, userID string) (*Range, error) {
	return s.repo.Active(ctx, userID)
}

// Delete removes the active range. An id that does not match it changes nothing.
func (s *Service) Delete(ctx context.Context, userID string, rangeID int64) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.schedule.delete")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	active, err := s.repo.Active(ctx, userID)
	if err != nil {
		return err
	}
	if active == nil || active.ID != rangeID {
		return apperrors.NotFoundf("schedule %d not found", rangeID)
	}
	if err := s.repo.Clear(ctx, userID); err != nil {
		return err
	}

	log.Debugf("schedule %d of user %s deleted", rangeID, userID)
	return nil
}

// SaveRange runs a fresh selection for start and end and confirms it.
func (s *Service) SaveRange(ctx context.Context, userID string, start, end days.Date, now time.Time) (_ *Range, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.schedule.saveRange")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	var sel Selection
	if err := sel.Pick(start); err != nil {
		return nil, err
	}
	if err := sel.Pick(end); err != nil {
		return nil, err
	}
	return s.confirm(ctx, userID, &sel, now)
}

func (s *Service) Selection(ctx context.Context, userID string) (*SelectionView, error) {
	sel, err := s.repo.Selection(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &SelectionView{Selection: sel, State: sel.State()}, nil
}

// Pick applies a calendar click to the stored selection. A rejected pick leaves it as it was.
func (s *Service) Pick(ctx context.Context, userID string, date days.Date) (_ *SelectionView, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.schedule.pick")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	sel, err := s.repo.Selection(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := sel.Pick(date); err != nil {
		return nil, err
	}
	if err := s.repo.SaveSelection(ctx, userID, sel); err != nil {
		return nil, err
	}
	return &SelectionView{Selection: sel, State: sel.State()}, nil
}

func (s *Service) Confirm(ctx context.Context, userID string, now time.Time) (_ *Range, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.schedule.confirm")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	sel, err := s.repo.Selection(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.confirm(ctx, userID, &sel, now)
}

func (s *Service) confirm(ctx context.Context, userID string, sel *Selection, now time.Time) (*Range, error) {
	rng, err := sel.Confirm(s.ids.Next(), now)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Replace(ctx, userID, rng, *sel); err != nil {
		return nil, err
	}

	log.Debugf("schedule %s - %s saved for user %s", rng.StartDate, rng.EndDate, userID)
	return &rng, nil
}
