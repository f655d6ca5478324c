package measurements

import (
	"context"
	"testing"
	"time"

	"github.com/2beens/betterlife/internal/apperrors"
	"github.com/2beens/betterlife/internal/kvstore"
	"github.com/2beens/betterlife/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)

func newTestService() (*Service, *kvstore.MemoryStore) {
	store := kvstore.NewMemoryStore()
	return NewService(store, pkg.NewIDGeneratorWithClock(func() time.Time { return testNow })), store
}

func TestService_SaveListDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService()

	older, err := s.Save(ctx, "u1", Measurement{Type: Weight, Value: 82.5, Date: testNow.AddDate(0, 0, -7)}, testNow)
	require.NoError(t, err)
	assert.NotZero(t, older.ID)

	newer, err := s.Save(ctx, "u1", Measurement{Type: Waist, Value: 90}, testNow)
	require.NoError(t, err)
	assert.Equal(t, testNow, newer.Date)
	assert.NotEqual(t, older.ID, newer.ID)

	list, err := s.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)

	older.Value = 81
	_, err = s.Save(ctx, "u1", *older, testNow)
	require.NoError(t, err)
	list, err = s.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 81.0, list[1].Value)

	require.NoError(t, s.Delete(ctx, "u1", older.ID))
	assert.ErrorIs(t, s.Delete(ctx, "u1", older.ID), apperrors.ErrNotFound)

	list, err = s.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, Waist, list[0].Type)
}

func TestService_SaveInvalid(t *testing.T) {
	ctx := context.Background()
	s, store := newTestService()

	_, err := s.Save(ctx, "u1", Measurement{Type: Weight, Value: 0}, testNow)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = s.Save(ctx, "u1", Measurement{Type: "neck", Value: 40}, testNow)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Zero(t, store.Len())
}

func TestService_Cards(t *testing.T) {
	ctx := context.Background()
	s, store := newTestService()

	cards, err := s.Cards(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, cards.Before)
	assert.Empty(t, cards.After)
	assert.Empty(t, cards.Difference)

	_, err = s.SetCard(ctx, "u1", CardBefore, Weight, 90)
	require.NoError(t, err)
	_, err = s.SetCard(ctx, "u1", CardBefore, Waist, 100)
	require.NoError(t, err)
	_, err = s.SetCard(ctx, "u1", CardAfter, Weight, 84.5)
	require.NoError(t, err)
	cards, err = s.SetCard(ctx, "u1", CardAfter, Biceps, 38)
	require.NoError(t, err)

	assert.Equal(t, CardValues{Weight: 90, Waist: 100}, cards.Before)
	assert.Equal(t, CardValues{Weight: 84.5, Biceps: 38}, cards.After)
	assert.Equal(t, CardValues{Weight: -5.5, Waist: -100, Biceps: 38}, cards.Difference)

	_, err = s.SetCard(ctx, "u1", CardAfter, Weight, -1)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = s.SetCard(ctx, "u1", CardAfter, "neck", 1)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = store.Get(ctx, "measurements_u1_before")
	assert.NoError(t, err)
	_, err = store.Get(ctx, "measurements_u1_after")
	assert.NoError(t, err)
}

func TestParseCard(t *testing.T) {
	c, err := ParseCard("after")
	require.NoError(t, err)
	assert.Equal(t, CardAfter, c)

	_, err = ParseCard("during")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestType_Unit(t *testing.T) {
	assert.Equal(t, "kg", Weight.Unit())
	for _, typ := range Types[1:] {
		assert.Equal(t, "cm", typ.Unit())
	}
}
