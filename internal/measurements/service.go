package measurements

import (
	"context"
	"slices"
	"time"

	"github.com/2beens/betterlife/internal/apperrors"
	"github.com/2beens/betterlife/internal/kvstore"
	"github.com/2beens/betterlife/internal/telemetry/tracing"
	"github.com/2beens/betterlife/pkg"
)

type Service struct {
	store kvstore.Store
	ids   *pkg.IDGenerator
}

func NewService(store kvstore.Store, ids *pkg.IDGenerator) *Service {
	return &Service{
		store: store,
		ids:   ids,
	}
}

func logKey(userID string) kvstore.Key {
	return kvstore.UserKey(kvstore.KindMeasurements, userID)
}

func cardKey(userID string, card Card) kvstore.Key {
	return kvstore.Key{Kind: kvstore.KindMeasurements, UserID: userID, Suffix: string(card)}
}

func (s *Service) load(ctx context.Context, userID string) ([]Measurement, error) {
	list := []Measurement{}
	if _, err := kvstore.GetJSON(ctx, s.store, logKey(userID), &list); err != nil {
		return nil, err
	}
	return list, nil
}

// List returns the log, newest first.
func (s *Service) List(ctx context.Context, userID string) (_ []Measurement, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.measurements.list")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	list, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(list, func(a, b Measurement) int {
		return b.Date.Compare(a.Date)
	})
	return list, nil
}

// Save adds a new measurement when the id is 0, or replaces the one with the same id.
// A missing date is set to now.
func (s *Service) Save(ctx context.Context, userID string, m Measurement, now time.Time) (_ *Measurement, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.measurements.save")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if err := m.Validate(); err != nil {
		return nil, err
	}
	if m.Date.IsZero() {
		m.Date = now.UTC()
	}

	list, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if m.ID == 0 {
		m.ID = s.ids.Next()
		list = append(list, m)
	} else {
		idx := slices.IndexFunc(list, func(existing Measurement) bool { return existing.ID == m.ID })
		if idx < 0 {
			list = append(list, m)
		} else {
			list[idx] = m
		}
	}

	if err := kvstore.SetJSON(ctx, s.store, logKey(userID), list); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Service) Delete(ctx context.Context, userID string, id int64) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.measurements.delete")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	list, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(list, func(m Measurement) bool { return m.ID == id })
	if idx < 0 {
		return apperrors.NotFoundf("measurement %d not found", id)
	}
	return kvstore.SetJSON(ctx, s.store, logKey(userID), slices.Delete(list, idx, idx+1))
}

func (s *Service) card(ctx context.Context, userID string, card Card) (CardValues, error) {
	values := CardValues{}
	if _, err := kvstore.GetJSON(ctx, s.store, cardKey(userID, card), &values); err != nil {
		return nil, err
	}
	return values, nil
}

func (s *Service) SetCard(ctx context.Context, userID string, card Card, t Type, value float64) (_ *Cards, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.measurements.setCard")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if !t.IsValid() {
		return nil, apperrors.Validationf("unknown measurement type: %s", t)
	}
	if value < 0 {
		return nil, apperrors.Validationf("value cannot be negative")
	}

	values, err := s.card(ctx, userID, card)
	if err != nil {
		return nil, err
	}
	values[t] = value
	if err := kvstore.SetJSON(ctx, s.store, cardKey(userID, card), values); err != nil {
		return nil, err
	}
	return s.Cards(ctx, userID)
}

func (s *Service) Cards(ctx context.Context, userID string) (_ *Cards, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.measurements.cards")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	before, err := s.card(ctx, userID, CardBefore)
	if err != nil {
		return nil, err
	}
	after, err := s.card(ctx, userID, CardAfter)
	if err != nil {
		return nil, err
	}
	return &Cards{
		Before:     before,
		After:      after,
		Difference: difference(before, after),
	}, nil
}
