package macros

import (
	"context"

	"github.com/2beens/betterlife/internal/days"
	"github.com/2beens/betterlife/internal/kvstore"
	"github.com/2beens/betterlife/internal/telemetry/tracing"
)

type Repo struct {
	store kvstore.Store
}

func NewRepo(store kvstore.Store) *Repo {
	return &Repo{
		store: store,
	}
}

func logKey(userID string, date days.Date) kvstore.Key {
	return kvstore.DayKey(kvstore.KindMacros, userID, days.Concrete(date))
}

// Get returns the zero log for days nothing was logged on.
func (r *Repo) Get(ctx context.Context, userID string, date days.Date) (_ Log, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.macros.get")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	var l Log
	if _, err := kvstore.GetJSON(ctx, r.store, logKey(userID, date), &l); err != nil {
		return Log{}, err
	}
	return l.withDerivedCalories(), nil
}

func (r *Repo) Set(ctx context.Context, userID string, date days.Date, l Log) (_ Log, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.macros.set")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if err := l.Validate(); err != nil {
		return Log{}, err
	}
	l = l.withDerivedCalories()
	if err := kvstore.SetJSON(ctx, r.store, logKey(userID, date), l); err != nil {
		return Log{}, err
	}
	return l, nil
}
