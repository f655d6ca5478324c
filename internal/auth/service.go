package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/betterlife/internal/apperrors"
	"github.com/2beens/betterlife/internal/kvstore"
	"github.com/2beens/betterlife/internal/telemetry/tracing"
)

const (
	DefaultTTL        = 24 * 7 * time.Hour
	sessionKeyPrefix  = "betterlife-session||"
	emailIndexPrefix  = "betterlife-account-email||"
	minPasswordLength = 6
	tokenLength       = 35
)

var (
	ErrWrongPassword   = errors.New("wrong email or password")
	ErrSessionNotFound = errors.New("session not found")
)

type Account struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

type session struct {
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Service struct {
	store        kvstore.Store
	ttl          time.Duration
	passwordCost int
	now          func() time.Time
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
	NewUserIDFunc  func() string
}

func NewAuthService(ttl time.Duration, store kvstore.Store) *Service {
	return &Service{
		store:          store,
		ttl:            ttl,
		passwordCost:   DefaultPasswordCost,
		now:            time.Now,
		RandStringFunc: randomToken,
		NewUserIDFunc:  uuid.NewString,
	}
}

// WithPasswordCost overrides the bcrypt cost, tests use bcrypt.MinCost.
func (as *Service) WithPasswordCost(cost int) *Service {
	as.passwordCost = cost
	return as
}

func (as *Service) WithClock(now func() time.Time) *Service {
	as.now = now
	return as
}

func (as *Service) Register(ctx context.Context, email, password string) (_ *Account, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.register")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.Validationf("invalid email: %s", email)
	}
	if len(password) < minPasswordLength {
		return nil, apperrors.Validationf("password must have at least %d characters", minPasswordLength)
	}

	if _, err := as.store.Get(ctx, emailIndexPrefix+email); err == nil {
		return nil, apperrors.Duplicatef("email %s already registered", email)
	} else if !errors.Is(err, kvstore.ErrNotFound) {
		return nil, fmt.Errorf("check email index: %w", err)
	}

	passwordHash, err := hashPassword(password, as.passwordCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &Account{
		UserID:       as.NewUserIDFunc(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    as.now(),
	}
	accountOp, err := kvstore.SetJSONOp(kvstore.UserKey(kvstore.KindAccount, account.UserID), account)
	if err != nil {
		return nil, err
	}

	if err := as.store.Apply(
		ctx,
		accountOp,
		kvstore.SetOp(emailIndexPrefix+email, []byte(account.UserID)),
	); err != nil {
		return nil, fmt.Errorf("save account: %w", err)
	}

	log.Infof("auth service, new account registered: %s", account.UserID)
	return account, nil
}

func (as *Service) Account(ctx context.Context, userID string) (*Account, error) {
	account := &Account{}
	found, err := kvstore.GetJSON(ctx, as.store, kvstore.UserKey(kvstore.KindAccount, userID), account)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NotFoundf("account %s", userID)
	}
	return account, nil
}

func (as *Service) Login(ctx context.Context, email, password string) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.login")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	userID, err := as.store.Get(ctx, emailIndexPrefix+normalizeEmail(email))
	if errors.Is(err, kvstore.ErrNotFound) {
		return "", ErrWrongPassword
	}
	if err != nil {
		return "", fmt.Errorf("get email index: %w", err)
	}

	account, err := as.Account(ctx, string(userID))
	if err != nil {
		return "", err
	}
	if !passwordMatches(password, account.PasswordHash) {
		return "", ErrWrongPassword
	}

	token, err := as.RandStringFunc(tokenLength)
	if err != nil {
		return "", err
	}

	sessionBytes, err := json.Marshal(session{UserID: account.UserID, CreatedAt: as.now()})
	if err != nil {
		return "", err
	}
	if err := as.store.Set(ctx, sessionKeyPrefix+token, sessionBytes); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}

	return token, nil
}

// UserIDs lists every registered account, sorted.
func (as *Service) UserIDs(ctx context.Context) ([]string, error) {
	rawKeys, err := as.store.Keys(ctx, string(kvstore.KindAccount)+"_*")
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	userIDs := make([]string, 0, len(rawKeys))
	for _, raw := range rawKeys {
		key, err := kvstore.ParseKey(raw)
		if err != nil || key.Kind != kvstore.KindAccount {
			log.Warnf("auth service, skipping unknown account key [%s]", raw)
			continue
		}
		userIDs = append(userIDs, key.UserID)
	}
	slices.Sort(userIDs)
	return userIDs, nil
}

// Logout reports false when there was no such session.
func (as *Service) Logout(ctx context.Context, token string) (bool, error) {
	sessionKey := sessionKeyPrefix + token
	if _, err := as.store.Get(ctx, sessionKey); errors.Is(err, kvstore.ErrNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}

	if err := as.store.Delete(ctx, sessionKey); err != nil {
		return false, err
	}
	return true, nil
}

func (as *Service) UserForToken(ctx context.Context, token string) (string, error) {
	s, err := as.getSession(ctx, token)
	if err != nil {
		return "", err
	}

	if as.now().Sub(s.CreatedAt) > as.ttl {
		if err := as.store.Delete(ctx, sessionKeyPrefix+token); err != nil {
			log.Errorf("auth service, delete expired session: %s", err)
		}
		return "", ErrSessionNotFound
	}

	return s.UserID, nil
}

func (as *Service) getSession(ctx context.Context, token string) (*session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	raw, err := as.store.Get(ctx, sessionKeyPrefix+token)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	s := &session{}
	if err := json.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return s, nil
}

// ScanAndClean will run through all sessions, check the TTL, and clean them if old
func (as *Service) ScanAndClean(ctx context.Context) {
	sessionKeys, err := as.store.Keys(ctx, sessionKeyPrefix+"*")
	if err != nil {
		log.Errorf("!!! auth service, scan and clean, get sessions: %s", err)
		return
	}

	if len(sessionKeys) == 0 {
		log.Debugln("=> auth service, scan and clean abort, no sessions")
		return
	}

	log.Debugf("=> auth service, scan and clean [%d sessions] start ...", len(sessionKeys))
	var toRemove []string
	for _, sessionKey := range sessionKeys {
		token := strings.TrimPrefix(sessionKey, sessionKeyPrefix)
		s, err := as.getSession(ctx, token)
		if err != nil {
			log.Errorf("=> auth service, scan and clean session %s: %s", sessionKey, err)
			continue
		}

		if as.now().Sub(s.CreatedAt) > as.ttl {
			toRemove = append(toRemove, sessionKey)
		}
	}

	if len(toRemove) == 0 {
		return
	}
	if err := as.store.Delete(ctx, toRemove...); err != nil {
		log.Errorf("=> auth service, clean sessions: %s", err)
		return
	}
	log.Infof("=> auth service, cleaned %d expired sessions", len(toRemove))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
