package auth

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/crypto/bcrypt"

	"github.com/2beens/betterlife/internal/apperrors"
	"github.com/2beens/betterlife/internal/kvstore"
)

const (
	testEmail    = "lifter@example.com"
	testPassword = "testpass"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func newTestService(store kvstore.Store, clock *testClock) *Service {
	s := NewAuthService(time.Hour, store).
		WithPasswordCost(bcrypt.MinCost).
		WithClock(clock.Now)
	s.NewUserIDFunc = func() string { return "user-1" }
	s.RandStringFunc = func(int) (string, error) { return "test_token", nil }
	return s
}

func TestAuthService_RegisterLoginLogout(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	clock := &testClock{now: time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)}
	authService := newTestService(store, clock)

	account, err := authService.Register(ctx, " Lifter@Example.com ", testPassword)
	require.NoError(t, err)
	assert.Equal(t, "user-1", account.UserID)
	assert.Equal(t, testEmail, account.Email)
	assert.NotEqual(t, testPassword, account.PasswordHash)

	_, err = authService.Register(ctx, testEmail, "another-pass")
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	_, err = authService.Login(ctx, testEmail, "invalid_pass")
	assert.ErrorIs(t, err, ErrWrongPassword)
	_, err = authService.Login(ctx, "nobody@example.com", testPassword)
	assert.ErrorIs(t, err, ErrWrongPassword)

	token, err := authService.Login(ctx, testEmail, testPassword)
	require.NoError(t, err)
	assert.Equal(t, "test_token", token)

	userID, err := authService.UserForToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	loggedOut, err := authService.Logout(ctx, token)
	require.NoError(t, err)
	assert.True(t, loggedOut)
	loggedOut, err = authService.Logout(ctx, token)
	require.NoError(t, err)
	assert.False(t, loggedOut)

	_, err = authService.UserForToken(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	ctx := context.Background()
	authService := newTestService(kvstore.NewMemoryStore(), &testClock{now: time.Now()})

	_, err := authService.Register(ctx, "not-an-email", testPassword)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = authService.Register(ctx, testEmail, "123")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestAuthService_SessionExpiry(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	clock := &testClock{now: time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)}
	authService := newTestService(store, clock)

	_, err := authService.Register(ctx, testEmail, testPassword)
	require.NoError(t, err)
	token, err := authService.Login(ctx, testEmail, testPassword)
	require.NoError(t, err)

	clock.now = clock.now.Add(59 * time.Minute)
	_, err = authService.UserForToken(ctx, token)
	require.NoError(t, err)

	clock.now = clock.now.Add(2 * time.Minute)
	_, err = authService.UserForToken(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// expired session was removed
	_, err = store.Get(ctx, sessionKeyPrefix+token)
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestAuthService_ScanAndClean(t *testing.T) {
	now := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	then := now.Add(-2 * time.Hour)

	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()
	authService := newTestService(kvstore.NewRedisStore(rdb), &testClock{now: now})

	oldSession, err := json.Marshal(session{UserID: "u1", CreatedAt: then})
	require.NoError(t, err)
	freshSession, err := json.Marshal(session{UserID: "u2", CreatedAt: now})
	require.NoError(t, err)

	k1, k2 := sessionKeyPrefix+"token1", sessionKeyPrefix+"token2"
	mock.ExpectScan(0, sessionKeyPrefix+"*", 100).SetVal([]string{k1, k2}, 0)
	mock.ExpectGet(k1).SetVal(string(oldSession))
	mock.ExpectGet(k2).SetVal(string(freshSession))
	// only the old session goes away
	mock.ExpectDel(k1).SetVal(1)

	authService.ScanAndClean(context.Background())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserIDContext(t *testing.T) {
	_, ok := UserIDFromContext(context.Background())
	assert.False(t, ok)

	ctx := ContextWithUserID(context.Background(), "u7")
	userID, ok := UserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u7", userID)
}

func TestAuthService_UserIDs(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	authService := newTestService(store, &testClock{now: time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)})

	ids := []string{"user-b", "user-a"}
	for i, id := range ids {
		authService.NewUserIDFunc = func() string { return id }
		_, err := authService.Register(ctx, []string{"b@example.com", "a@example.com"}[i], testPassword)
		require.NoError(t, err)
	}
	// session keys are not accounts
	_, err := authService.Login(ctx, "a@example.com", testPassword)
	require.NoError(t, err)

	userIDs, err := authService.UserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"user-a", "user-b"}, userIDs)
}
