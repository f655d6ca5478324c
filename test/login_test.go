package test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/betterlife/internal/misc"
)

func (s *IntegrationTestSuite) TestLogin() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const email = "login-user@example.com"
	resp := postCredentials(ctx, t, s.httpClient, "/a/register", email, testPassword)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	cases := map[string]struct {
		email              string
		password           string
		expectedStatusCode int
		assertFunc         func(t *testing.T, resp *http.Response)
	}{
		"good creds, then logout": {
			email:              email,
			password:           testPassword,
			expectedStatusCode: http.StatusOK,
			assertFunc: func(t *testing.T, resp *http.Response) {
				respBytes, err := io.ReadAll(resp.Body)
				require.NoError(t, err)

				var loginResp misc.LoginResponse
				require.NoError(t, json.Unmarshal(respBytes, &loginResp))
				assert.NotEmpty(t, loginResp.Token)

				profileResp := doAuthorized(ctx, t, s.httpClient, loginResp.Token, "GET", "/profile", nil)
				assert.Equal(t, http.StatusOK, profileResp.StatusCode)
				require.NoError(t, profileResp.Body.Close())

				logoutResp := doAuthorized(ctx, t, s.httpClient, loginResp.Token, "GET", "/a/logout", nil)
				assert.Equal(t, http.StatusOK, logoutResp.StatusCode)
				require.NoError(t, logoutResp.Body.Close())

				profileResp = doAuthorized(ctx, t, s.httpClient, loginResp.Token, "GET", "/profile", nil)
				assert.Equal(t, http.StatusUnauthorized, profileResp.StatusCode)
				require.NoError(t, profileResp.Body.Close())
			},
		},
		"bad password": {
			email:              email,
			password:           "bad-password",
			expectedStatusCode: http.StatusBadRequest,
			assertFunc: func(t *testing.T, resp *http.Response) {
				respBytes, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Equal(t, "error, wrong credentials", strings.TrimSpace(string(respBytes)))
			},
		},
		"unknown email": {
			email:              "nobody@example.com",
			password:           testPassword,
			expectedStatusCode: http.StatusBadRequest,
			assertFunc: func(t *testing.T, resp *http.Response) {
				respBytes, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Equal(t, "error, wrong credentials", strings.TrimSpace(string(respBytes)))
			},
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			require.NoError(t, s.rateLimitCleanup(ctx))

			resp := postCredentials(ctx, t, s.httpClient, "/a/login", tc.email, tc.password)
			defer resp.Body.Close()
			require.Equal(t, tc.expectedStatusCode, resp.StatusCode)

			tc.assertFunc(t, resp)
		})
	}

	t.Run("duplicate register", func(t *testing.T) {
		require.NoError(t, s.rateLimitCleanup(ctx))

		resp := postCredentials(ctx, t, s.httpClient, "/a/register", strings.ToUpper(email), testPassword)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("rate limiting", func(t *testing.T) {
		// simulate login requests brute force attack
		require.NoError(t, s.rateLimitCleanup(ctx))

		for i := 1; i <= loginAttemptsPerMin+5; i++ {
			resp := postCredentials(ctx, t, s.httpClient, "/a/login", email, "bad-password")

			if i <= loginAttemptsPerMin {
				require.Equal(t, http.StatusBadRequest, resp.StatusCode, "iteration: %d", i)
			} else {
				require.Equal(t, http.StatusTooManyRequests, resp.StatusCode, "iteration: %d", i)
				respBytes, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.True(t, strings.HasPrefix(string(respBytes), "retry after"), fmt.Sprintf("iteration: %d", i))
			}

			assert.NoError(t, resp.Body.Close())
		}

		require.NoError(t, s.rateLimitCleanup(ctx))
	})
}
