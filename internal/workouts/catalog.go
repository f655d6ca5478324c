package workouts

import (
	"context"
	"slices"
	"strings"

	"github.com/2beens/betterlife/internal/apperrors"
	"github.com/2beens/betterlife/internal/kvstore"
	"github.com/2beens/betterlife/internal/telemetry/tracing"
	"github.com/2beens/betterlife/pkg"

	log "github.com/sirupsen/logrus"
)

// Workout is an entry of the user's own workout list.
type Workout struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"type"`
}

// CustomWorkouts maps a category name to the exercises the user added to it.
type CustomWorkouts map[string][]string

func (c CustomWorkouts) contains(name string) bool {
	for _, names := range c {
		if slices.Contains(names, name) {
			return true
		}
	}
	return false
}

type Catalog struct {
	store kvstore.Store
	ids   *pkg.IDGenerator
}

func NewCatalog(store kvstore.Store, ids *pkg.IDGenerator) *Catalog {
	return &Catalog{
		store: store,
		ids:   ids,
	}
}

func (c *Catalog) List(ctx context.Context, userID string) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	workouts := []Workout{}
	if _, err := kvstore.GetJSON(ctx, c.store, kvstore.UserKey(kvstore.KindWorkouts, userID), &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

func (c *Catalog) Get(ctx context.Context, userID string, id int64) (*Workout, error) {
	workouts, err := c.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range workouts {
		if workouts[i].ID == id {
			return &workouts[i], nil
		}
	}
	return nil, apperrors.NotFoundf("workout %d not found", id)
}

func (c *Catalog) Add(ctx context.Context, userID, name, category string) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.add")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	name = strings.TrimSpace(name)
	if name == "" || category == "" {
		return nil, apperrors.Validationf("workout name and category are required")
	}

	workouts, err := c.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if slices.ContainsFunc(workouts, func(w Workout) bool { return w.Name == name }) {
		return nil, apperrors.Duplicatef("workout %s already exists", name)
	}

	w := Workout{
		ID:       c.ids.Next(),
		Name:     name,
		Category: category,
	}
	workouts = append(workouts, w)
	if err := kvstore.SetJSON(ctx, c.store, kvstore.UserKey(kvstore.KindWorkouts, userID), workouts); err != nil {
		return nil, err
	}

	log.Debugf("workout %s [%s] added for user %s", name, category, userID)
	return &w, nil
}

func (c *Catalog) Delete(ctx context.Context, userID string, id int64) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	workouts, err := c.List(ctx, userID)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(workouts, func(w Workout) bool { return w.ID == id })
	if idx < 0 {
		return apperrors.NotFoundf("workout %d not found", id)
	}
	workouts = slices.Delete(workouts, idx, idx+1)
	return kvstore.SetJSON(ctx, c.store, kvstore.UserKey(kvstore.KindWorkouts, userID), workouts)
}

func (c *Catalog) Custom(ctx context.Context, userID string) (_ CustomWorkouts, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.custom")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	custom := CustomWorkouts{}
	if _, err := kvstore.GetJSON(ctx, c.store, kvstore.UserKey(kvstore.KindCustomWorkouts, userID), &custom); err != nil {
		return nil, err
	}
	return custom, nil
}

// AddCustom adds an exercise to one of the built-in categories. Names already in the
// built-in catalog, or in any custom category, are rejected.
func (c *Catalog) AddCustom(ctx context.Context, userID, category, name string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.addCustom")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.Validationf("workout name is required")
	}
	if _, ok := builtinCategory(category); !ok {
		return apperrors.Validationf("unknown category: %s", category)
	}
	if isBuiltinExercise(name) {
		return apperrors.Duplicatef("workout %s already exists", name)
	}

	custom, err := c.Custom(ctx, userID)
	if err != nil {
		return err
	}
	if custom.contains(name) {
		return apperrors.Duplicatef("workout %s already exists", name)
	}

	custom[category] = append(custom[category], name)
	return kvstore.SetJSON(ctx, c.store, kvstore.UserKey(kvstore.KindCustomWorkouts, userID), custom)
}

func (c *Catalog) DeleteCustom(ctx context.Context, userID, category, name string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.deleteCustom")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	custom, err := c.Custom(ctx, userID)
	if err != nil {
		return err
	}
	idx := slices.Index(custom[category], name)
	if idx < 0 {
		return apperrors.NotFoundf("custom workout %s not found in %s", name, category)
	}

	custom[category] = slices.Delete(custom[category], idx, idx+1)
	if len(custom[category]) == 0 {
		delete(custom, category)
	}
	return kvstore.SetJSON(ctx, c.store, kvstore.UserKey(kvstore.KindCustomWorkouts, userID), custom)
}

// Categories is the built-in catalog with the user's custom exercises appended to each category.
func (c *Catalog) Categories(ctx context.Context, userID string) ([]Category, error) {
	custom, err := c.Custom(ctx, userID)
	if err != nil {
		return nil, err
	}

	categories := BuiltinCategories()
	for i := range categories {
		categories[i].Exercises = append(categories[i].Exercises, custom[categories[i].Name]...)
	}
	return categories, nil
}
