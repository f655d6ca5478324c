package internal

import (
	"time"

	"github.com/2beens/betterlife/internal/kvstore"
	"github.com/2beens/betterlife/internal/macros"
	"github.com/2beens/betterlife/internal/measurements"
	"github.com/2beens/betterlife/internal/planner"
	"github.com/2beens/betterlife/internal/profile"
	"github.com/2beens/betterlife/internal/report"
	"github.com/2beens/betterlife/internal/schedule"
	"github.com/2beens/betterlife/internal/telemetry/metrics"
	"github.com/2beens/betterlife/internal/transfer"
	"github.com/2beens/betterlife/internal/workouts"
	"github.com/2beens/betterlife/pkg"
)

// Services holds every domain service, all sharing one store and one id generator.
type Services struct {
	Profiles     *profile.Repo
	Macros       *macros.Service
	Schedules    *schedule.Service
	Catalog      *workouts.Catalog
	Ledger       *workouts.Ledger
	Measurements *measurements.Service
	Planner      *planner.Planner
	Reporter     *report.Reporter
	Transfer     *transfer.Service
}

func NewServices(store kvstore.Store, metricsManager *metrics.Manager) *Services {
	ids := pkg.NewIDGenerator()

	profiles := profile.NewRepo(store)
	schedules := schedule.NewService(schedule.NewRepo(store), ids)
	macrosService := macros.NewService(macros.NewRepo(store), profiles, schedules, metricsManager)
	ledger := workouts.NewLedger(store, ids, schedules, metricsManager)

	return &Services{
		Profiles:     profiles,
		Macros:       macrosService,
		Schedules:    schedules,
		Catalog:      workouts.NewCatalog(store, ids),
		Ledger:       ledger,
		Measurements: measurements.NewService(store, ids),
		Planner:      planner.NewPlanner(schedules, ledger, macrosService),
		Reporter:     report.NewReporter(schedules, macrosService),
		Transfer:     transfer.NewService(store, metricsManager),
	}
}

type handlers struct {
	profile      *profile.Handler
	macros       *macros.Handler
	schedule     *schedule.Handler
	workouts     *workouts.Handler
	measurements *measurements.Handler
	planner      *planner.Handler
	report       *report.Handler
	transfer     *transfer.Handler
}

func (s *Services) handlers(now func() time.Time) *handlers {
	return &handlers{
		profile:      profile.NewHandler(s.Profiles, now),
		macros:       macros.NewHandler(s.Macros, now),
		schedule:     schedule.NewHandler(s.Schedules, now),
		workouts:     workouts.NewHandler(s.Catalog, s.Ledger, now),
		measurements: measurements.NewHandler(s.Measurements, now),
		planner:      planner.NewHandler(s.Planner, now),
		report:       report.NewHandler(s.Reporter, now),
		transfer:     transfer.NewHandler(s.Transfer, now),
	}
}
