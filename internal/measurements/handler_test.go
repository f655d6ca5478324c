package measurements

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/2beens/betterlife/internal/auth"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest(method, body string, vars map[string]string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/", nil)
	} else {
		req = httptest.NewRequest(method, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req = req.WithContext(auth.ContextWithUserID(context.Background(), "u1"))
	return mux.SetURLVars(req, vars)
}

func TestHandler(t *testing.T) {
	s, _ := newTestService()
	h := NewHandler(s, func() time.Time { return testNow })

	rec := httptest.NewRecorder()
	h.HandleSave(rec, newRequest(http.MethodPost, `{"type":"chest","value":104.5}`, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var saved Measurement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Equal(t, Chest, saved.Type)
	assert.Equal(t, testNow, saved.Date)

	rec = httptest.NewRecorder()
	h.HandleSave(rec, newRequest(http.MethodPost, `{"type":"chest","value":-3}`, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.HandleList(rec, newRequest(http.MethodGet, "", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []Measurement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	rec = httptest.NewRecorder()
	h.HandleSetCard(rec, newRequest(http.MethodPut, `{"type":"weight","value":80}`, map[string]string{"card": "before"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"before":{"weight":80},"after":{},"difference":{"weight":-80}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.HandleSetCard(rec, newRequest(http.MethodPut, `{"type":"weight","value":80}`, map[string]string{"card": "middle"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.HandleCards(rec, newRequest(http.MethodGet, "", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	id := strconv.FormatInt(saved.ID, 10)
	rec = httptest.NewRecorder()
	h.HandleDelete(rec, newRequest(http.MethodDelete, "", map[string]string{"id": id}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deletedId":`+id+`}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.HandleDelete(rec, newRequest(http.MethodDelete, "", map[string]string{"id": id}))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.HandleDelete(rec, newRequest(http.MethodDelete, "", map[string]string{"id": "abc"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
