package test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/betterlife/internal/planner"
	"github.com/2beens/betterlife/internal/transfer"
	"github.com/2beens/betterlife/internal/workouts"
)

func decodeBody[T any](resp *http.Response) (T, error) {
	var v T
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return v, err
	}
	err = json.Unmarshal(body, &v)
	return v, err
}

func (s *IntegrationTestSuite) TestScheduleFlow() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.rateLimitCleanup(ctx))
	token := doRegisterAndLogin(ctx, t, s.httpClient, "flow-user@example.com")

	resp := doAuthorized(ctx, t, s.httpClient, token, "PUT", "/profile",
		[]byte(`{"birthDate":{"year":1990,"month":5,"day":17},"physique":{"height":180,"weight":80,"metabolicRate":1800}}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	today := time.Now().UTC()
	start := today.AddDate(0, 0, -3).Format(time.DateOnly)
	end := today.AddDate(0, 0, 24).Format(time.DateOnly)
	resp = doAuthorized(ctx, t, s.httpClient, token, "POST", "/schedule",
		[]byte(`{"startDate":"`+start+`","endDate":"`+end+`"}`))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	resp = doAuthorized(ctx, t, s.httpClient, token, "POST", "/workouts",
		[]byte(`{"name":"Deadlift","category":"Full Body Workouts"}`))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	deadlift, err := decodeBody[workouts.Workout](resp)
	require.NoError(t, err)

	assign := []byte(`{"workoutId":` + strconv.FormatInt(deadlift.ID, 10) + `}`)
	resp = doAuthorized(ctx, t, s.httpClient, token, "POST", "/days/monday/assignments", assign)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	resp = doAuthorized(ctx, t, s.httpClient, token, "POST", "/days/monday/assignments", assign)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	resp = doAuthorized(ctx, t, s.httpClient, token, "POST", "/macros/day/"+today.Format(time.DateOnly)+"/intake",
		[]byte(`{"macro":"carbs","amount":120}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	resp = doAuthorized(ctx, t, s.httpClient, token, "GET", "/schedule/plan", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	plan, err := decodeBody[planner.Plan](resp)
	require.NoError(t, err)
	require.Len(t, plan.Days, 28)

	var todayPlan *planner.DayPlan
	for i := range plan.Days {
		if plan.Days[i].IsToday {
			todayPlan = &plan.Days[i]
		}
	}
	require.NotNil(t, todayPlan)
	require.NotNil(t, todayPlan.Macros)
	assert.Equal(t, 120, todayPlan.Macros.Carbs)

	resp = doAuthorized(ctx, t, s.httpClient, token, "GET", "/schedule/fixed", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	week, err := decodeBody[[]planner.DayPlan](resp)
	require.NoError(t, err)
	require.Len(t, week, 7)
	require.Len(t, week[1].Assignments, 1)
	assert.Equal(t, "Deadlift", week[1].Assignments[0].Name)

	// export everything, import it into a second account
	resp = doAuthorized(ctx, t, s.httpClient, token, "GET", "/data/export", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc, err := decodeBody[transfer.Document](resp)
	require.NoError(t, err)
	require.NotEmpty(t, doc.Data)
	for k := range doc.Data {
		assert.False(t, strings.HasPrefix(k, "account_"), k)
	}

	docBytes, err := json.Marshal(doc)
	require.NoError(t, err)

	require.NoError(t, s.rateLimitCleanup(ctx))
	otherToken := doRegisterAndLogin(ctx, t, s.httpClient, "flow-copy@example.com")
	resp = doAuthorized(ctx, t, s.httpClient, otherToken, "POST", "/data/import", docBytes)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	imported, err := decodeBody[transfer.ImportResponse](resp)
	require.NoError(t, err)
	assert.Equal(t, len(doc.Data), imported.Imported)

	resp = doAuthorized(ctx, t, s.httpClient, otherToken, "GET", "/days/monday/assignments", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	views, err := decodeBody[[]workouts.AssignmentView](resp)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Deadlift", views[0].Name)
}
