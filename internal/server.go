package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/2beens/betterlife/internal/auth"
	"github.com/2beens/betterlife/internal/config"
	"github.com/2beens/betterlife/internal/middleware"
	"github.com/2beens/betterlife/internal/misc"
	"github.com/2beens/betterlife/internal/telemetry/metrics"
	"github.com/2beens/betterlife/internal/telemetry/tracing"
)

const sessionsCleanupInterval = 8 * time.Hour

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config      *config.Config
	storage     *Storage
	services    *Services
	authService *auth.Service
	now         func() time.Time

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	RedisPassword           string
	PostgresPassword        string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	storage, err := OpenStorage(ctx, StorageParams{
		Config:           params.Config,
		RedisPassword:    params.RedisPassword,
		PostgresPassword: params.PostgresPassword,
		TracingEnabled:   params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	promRegistry := metrics.SetupPrometheus(storage.Collectors...)
	metricsManager := metrics.NewManager("betterlife", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "betterlife-backend", storage.RedisClient)
	if err != nil {
		storage.Close()
		return nil, err
	}

	authService := auth.NewAuthService(
		time.Duration(params.Config.SessionTTLHours)*time.Hour,
		storage.Store,
	)

	return &Server{
		config:      params.Config,
		storage:     storage,
		services:    NewServices(storage.Store, metricsManager),
		authService: authService,
		versionInfo: params.VersionInfo,
		now:         time.Now,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	var reqRateLimiter middleware.RequestRateLimiter
	if s.storage.RedisClient != nil {
		reqRateLimiter = redis_rate.NewLimiter(s.storage.RedisClient)
	} else {
		log.Warnln("no redis client, account routes are not rate limited")
	}
	miscHandler := misc.NewHandler(s.versionInfo, s.authService, s.metricsManager)
	miscHandler.SetupRoutes(r, reqRateLimiter, s.config.LoginRateLimitAllowedPerMin)

	setupDomainRoutes(r, s.services.handlers(s.now))

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "DELETE", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.authService)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func setupDomainRoutes(r *mux.Router, h *handlers) {
	r.HandleFunc("/profile", h.profile.HandleGet).Methods("GET", "OPTIONS").Name("get-profile")
	r.HandleFunc("/profile", h.profile.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-profile")

	r.HandleFunc("/macros/targets", h.macros.HandleTargets).Methods("GET", "OPTIONS").Name("macro-targets")
	r.HandleFunc("/macros/summary", h.report.HandleSummary).Methods("GET", "OPTIONS").Name("macro-summary")
	r.HandleFunc("/macros/day/{date}", h.macros.HandleGetDay).Methods("GET", "OPTIONS").Name("get-day-macros")
	r.HandleFunc("/macros/day/{date}", h.macros.HandleSetDay).Methods("PUT", "OPTIONS").Name("set-day-macros")
	r.HandleFunc("/macros/day/{date}/intake", h.macros.HandleAddIntake).Methods("POST", "OPTIONS").Name("add-intake")

	r.HandleFunc("/schedule", h.schedule.HandleGet).Methods("GET", "OPTIONS").Name("get-schedule")
	r.HandleFunc("/schedule", h.schedule.HandleSave).Methods("POST", "OPTIONS").Name("save-schedule")
	r.HandleFunc("/schedule", h.schedule.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-schedule")
	r.HandleFunc("/schedule/selection", h.schedule.HandleGetSelection).Methods("GET", "OPTIONS").Name("get-selection")
	r.HandleFunc("/schedule/selection/pick", h.schedule.HandlePick).Methods("POST", "OPTIONS").Name("pick-date")
	r.HandleFunc("/schedule/selection/confirm", h.schedule.HandleConfirm).Methods("POST", "OPTIONS").Name("confirm-selection")
	r.HandleFunc("/schedule/plan", h.planner.HandlePlan).Methods("GET", "OPTIONS").Name("plan")
	r.HandleFunc("/schedule/fixed", h.planner.HandleFixedWeek).Methods("GET", "OPTIONS").Name("fixed-week")

	r.HandleFunc("/workouts", h.workouts.HandleList).Methods("GET", "OPTIONS").Name("list-workouts")
	r.HandleFunc("/workouts", h.workouts.HandleAdd).Methods("POST", "OPTIONS").Name("add-workout")
	r.HandleFunc("/workouts/categories", h.workouts.HandleCategories).Methods("GET", "OPTIONS").Name("categories")
	r.HandleFunc("/workouts/custom", h.workouts.HandleAddCustom).Methods("POST", "OPTIONS").Name("add-custom-workout")
	r.HandleFunc("/workouts/custom", h.workouts.HandleDeleteCustom).Methods("DELETE", "OPTIONS").Name("delete-custom-workout")
	r.HandleFunc("/workouts/{id}", h.workouts.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-workout")

	r.HandleFunc("/days/{day}/assignments", h.workouts.HandleListAssignments).Methods("GET", "OPTIONS").Name("list-assignments")
	r.HandleFunc("/days/{day}/assignments", h.workouts.HandleAssign).Methods("POST", "OPTIONS").Name("assign")
	r.HandleFunc("/days/{day}/assignments/{id}", h.workouts.HandleUnassign).Methods("DELETE", "OPTIONS").Name("unassign")
	r.HandleFunc("/days/{day}/assignments/{id}/stats", h.workouts.HandleSetStats).Methods("PUT", "OPTIONS").Name("set-stats")
	r.HandleFunc("/days/{day}/assignments/{id}/times", h.workouts.HandleSetTime).Methods("PUT", "OPTIONS").Name("set-time")

	r.HandleFunc("/measurements", h.measurements.HandleList).Methods("GET", "OPTIONS").Name("list-measurements")
	r.HandleFunc("/measurements", h.measurements.HandleSave).Methods("POST", "OPTIONS").Name("save-measurement")
	r.HandleFunc("/measurements/cards", h.measurements.HandleCards).Methods("GET", "OPTIONS").Name("measurement-cards")
	r.HandleFunc("/measurements/cards/{card}", h.measurements.HandleSetCard).Methods("PUT", "OPTIONS").Name("set-measurement-card")
	r.HandleFunc("/measurements/{id}", h.measurements.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-measurement")

	r.HandleFunc("/data/export", h.transfer.HandleExport).Methods("GET", "OPTIONS").Name("export")
	r.HandleFunc("/data/import", h.transfer.HandleImport).Methods("POST", "OPTIONS").Name("import")
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	go s.cleanSessions(ctx)

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) cleanSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionsCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.authService.ScanAndClean(ctx)
		}
	}
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
	}
	log.Warnln("metrics server shut down")

	s.otelShutdown()
	log.Trace("otel shut down ...")

	s.storage.Close()

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
