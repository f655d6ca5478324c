package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/2beens/betterlife/internal/middleware"
	"github.com/2beens/betterlife/internal/misc"
)

const testPassword = "testpass-123"

func postCredentials(ctx context.Context, t *testing.T, client *http.Client, path, email, password string) *http.Response {
	t.Helper()

	reqJson, err := json.Marshal(misc.CredentialsRequest{
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s%s", serverEndpoint, path), bytes.NewBuffer(reqJson))
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

// doRegisterAndLogin creates a fresh account and returns its session token.
func doRegisterAndLogin(ctx context.Context, t *testing.T, client *http.Client, email string) string {
	t.Helper()

	resp := postCredentials(ctx, t, client, "/a/register", email, testPassword)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	resp = postCredentials(ctx, t, client, "/a/login", email, testPassword)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NotEmpty(t, respBytes)

	var loginResp misc.LoginResponse
	require.NoError(t, json.Unmarshal(respBytes, &loginResp))
	require.NotEmpty(t, loginResp.Token)

	return loginResp.Token
}

func doAuthorized(ctx context.Context, t *testing.T, client *http.Client, token, method, path string, body []byte) *http.Response {
	t.Helper()

	req, err := http.NewRequestWithContext(ctx, method, fmt.Sprintf("%s%s", serverEndpoint, path), bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.AuthTokenHeader, token)

	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}
