package profile

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

func (r *Repo) Get(ctx context.Context, userID string) (_ *Profile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.profile.get")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	p := &Profile{UserID: userID}

	birth := &BirthDate{}
	if found, err := kvstore.GetJSON(ctx, r.store, kvstore.UserKey(kvstore.KindBirth, userID), birth); err != nil {
		return nil, err
	} else if found {
		p.BirthDate = birth
	}

	physique := &Physique{}
	if found, err := kvstore.GetJSON(ctx, r.store, kvstore.UserKey(kvstore.KindPhysique, userID), physique); err != nil {
		return nil, err
	} else if found {
		p.Physique = physique
	}

	name := &Name{}
	if found, err := kvstore.GetJSON(ctx, r.store, kvstore.UserKey(kvstore.KindName, userID), name); err != nil {
		return nil, err
	} else if found {
		p.Name = name
	}

	return p, nil
}

// Update validates and writes the given parts in a single batch, then returns the whole profile.
func (r *Repo) Update(ctx context.Context, userID string, update Update, today days.Date) (_ *Profile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.profile.update")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if err := update.Validate(today); err != nil {
		return nil, err
	}

	var ops []kvstore.Op
	add := func(kind kvstore.Kind, value any) error {
		op, err := kvstore.SetJSONOp(kvstore.UserKey(kind, userID), value)
		if err != nil {
			return err
		}
		ops = append(ops, op)
		return nil
	}

	if update.BirthDate != nil {
		if err := add(kvstore.KindBirth, update.BirthDate); err != nil {
			return nil, err
		}
	}
	if update.Physique != nil {
		if err := add(kvstore.KindPhysique, update.Physique); err != nil {
			return nil, err
		}
	}
	if update.Name != nil {
		if err := add(kvstore.KindName, update.Name); err != nil {
			return nil, err
		}
	}

	if err := r.store.Apply(ctx, ops...); err != nil {
		return nil, err
	}

	return r.Get(ctx, userID)
}
