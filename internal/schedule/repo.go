package schedule

import (
	"context"

	"github.com/2beens/betterlife/internal/kvstore"
	"github.com/2beens/betterlife/internal/telemetry/tracing"
)

// Repo keeps the active range as a list of at most one element, and the
// working calendar selection next to it.
type Repo struct {
	store kvstore.Store
}

func NewRepo(store kvstore.Store) *Repo {
	return &Repo{
		store: store,
	}
}

// Active returns nil when the user has no schedule.
func (r *Repo) Active(ctx context.Context, userID string) (_ *Range, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.schedule.active")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	var ranges []Range
	if _, err := kvstore.GetJSON(ctx, r.store, kvstore.UserKey(kvstore.KindSchedules, userID), &ranges); err != nil {
		return nil, err
	}
	if len(ranges) == 0 {
		return nil, nil
	}
	return &ranges[0], nil
}

func (r *Repo) saveRangesOp(userID string, ranges []Range) (kvstore.Op, error) {
	if ranges == nil {
		ranges = []Range{}
	}
	return kvstore.SetJSONOp(kvstore.UserKey(kvstore.KindSchedules, userID), ranges)
}

func (r *Repo) saveSelectionOp(userID string, sel Selection) (kvstore.Op, error) {
	return kvstore.SetJSONOp(kvstore.UserKey(kvstore.KindScheduleSelection, userID), sel)
}

// Replace overwrites the active range and the selection in one batch.
func (r *Repo) Replace(ctx context.Context, userID string, rng Range, sel Selection) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.schedule.replace")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	rangesOp, err := r.saveRangesOp(userID, []Range{rng})
	if err != nil {
		return err
	}
	selOp, err := r.saveSelectionOp(userID, sel)
	if err != nil {
		return err
	}
	return r.store.Apply(ctx, rangesOp, selOp)
}

func (r *Repo) Clear(ctx context.Context, userID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.schedule.clear")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	op, err := r.saveRangesOp(userID, nil)
	if err != nil {
		return err
	}
	return r.store.Apply(ctx, op)
}

func (r *Repo) Selection(ctx context.Context, userID string) (_ Selection, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.schedule.selection")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	var sel Selection
	if _, err := kvstore.GetJSON(ctx, r.store, kvstore.UserKey(kvstore.KindScheduleSelection, userID), &sel); err != nil {
		return Selection{}, err
	}
	return sel, nil
}

func (r *Repo) SaveSelection(ctx context.Context, userID string, sel Selection) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.schedule.saveSelection")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	return kvstore.SetJSON(ctx, r.store, kvstore.UserKey(kvstore.KindScheduleSelection, userID), sel)
}
