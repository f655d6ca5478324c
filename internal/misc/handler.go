package misc

import (
	"errors"
	"net/http"

	"github.com/2beens/betterlife/internal/apperrors"
	"github.com/2beens/betterlife/internal/auth"
	"github.com/2beens/betterlife/internal/middleware"
	"github.com/2beens/betterlife/internal/telemetry/metrics"
	"github.com/2beens/betterlife/internal/telemetry/tracing"
	"github.com/2beens/betterlife/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type Handler struct {
	versionInfo    string
	authService    *auth.Service
	metricsManager *metrics.Manager
}

func NewHandler(
	versionInfo string,
	authService *auth.Service,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		versionInfo:    versionInfo,
		authService:    authService,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	allowedPerMin int,
) {
	mainRouter.HandleFunc("/", handler.handleRoot).Methods("GET", "POST", "OPTIONS").Name("root")
	mainRouter.HandleFunc("/version", handler.handleGetVersionInfo).Methods("GET").Name("version")

	accountSubrouter := mainRouter.PathPrefix("/a").Subrouter()
	accountSubrouter.
		HandleFunc("/register", handler.handleRegister).
		Methods("POST", "OPTIONS").Name("register")
	accountSubrouter.
		HandleFunc("/login", handler.handleLogin).
		Methods("POST", "OPTIONS").Name("login")
	accountSubrouter.
		HandleFunc("/logout", handler.handleLogout).
		Methods("GET", "OPTIONS").Name("logout")

	// no redis, no rate limiting
	if rateLimiter != nil {
		accountSubrouter.Use(middleware.RateLimit(rateLimiter, "account", allowedPerMin, handler.metricsManager))
	}
}

func (handler *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteResponse(w, pkg.ContentType.Text, "I'm OK, thanks ;)", http.StatusOK)
}

func (handler *Handler) handleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteResponse(w, pkg.ContentType.Text, handler.versionInfo, http.StatusOK)
}

func readCredentials(w http.ResponseWriter, r *http.Request, action string) (*CredentialsRequest, bool) {
	var req CredentialsRequest
	if err := pkg.ReadJSON(r, &req); err != nil {
		log.Errorf("%s, read body: %s", action, err)
		http.Error(w, action+" failed", http.StatusBadRequest)
		return nil, false
	}
	if req.Email == "" {
		http.Error(w, "error, email empty", http.StatusBadRequest)
		return nil, false
	}
	if req.Password == "" {
		http.Error(w, "error, password empty", http.StatusBadRequest)
		return nil, false
	}
	return &req, true
}

func (handler *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.register")
	defer span.End()

	req, ok := readCredentials(w, r, "register")
	if !ok {
		return
	}

	account, err := handler.authService.Register(ctx, req.Email, req.Password)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		apperrors.WriteHTTP(w, err, "register")
		return
	}

	span.SetAttributes(attribute.String("user.id", account.UserID))
	pkg.WriteJSON(w, RegisterResponse{UserID: account.UserID, Email: account.Email}, http.StatusCreated)
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.login")
	defer span.End()

	req, ok := readCredentials(w, r, "login")
	if !ok {
		return
	}

	token, err := handler.authService.Login(ctx, req.Email, req.Password)
	if errors.Is(err, auth.ErrWrongPassword) {
		log.Tracef("failed login attempt for: %s", req.Email)
		handler.metricsManager.CounterLogins.WithLabelValues("failed").Inc()
		http.Error(w, "error, wrong credentials", http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Errorf("login failed: %s", err)
		span.SetStatus(codes.Error, err.Error())
		handler.metricsManager.CounterLogins.WithLabelValues("error").Inc()
		http.Error(w, "login error", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterLogins.WithLabelValues("ok").Inc()
	log.Trace("new login success")
	pkg.WriteJSON(w, LoginResponse{Token: token}, http.StatusOK)
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.logout")
	defer span.End()

	authToken := r.Header.Get(middleware.AuthTokenHeader)
	if authToken == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	loggedOut, err := handler.authService.Logout(ctx, authToken)
	if err != nil {
		log.Errorf("logout failed: %s", err)
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	if !loggedOut {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	pkg.WriteResponse(w, pkg.ContentType.Text, "logged-out", http.StatusOK)
}
