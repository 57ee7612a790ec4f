package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilianohg/dashone/internal/config"
	"github.com/emilianohg/dashone/internal/logging"
	"github.com/emilianohg/dashone/internal/models"
	"github.com/emilianohg/dashone/internal/provider"
	"github.com/emilianohg/dashone/internal/testutil"
)

func newServer(t *testing.T, src *testutil.StubSource) *httptest.Server {
	t.Helper()
	backend := &provider.Backend{
		Source: provider.Guard(src),
		Name:   config.BackendFixture,
		Demo:   true,
	}
	srv := httptest.NewServer(NewRouter(backend, logging.Discard()))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp
}

func TestHealth(t *testing.T) {
	srv := newServer(t, testutil.ExampleSource())

	var body map[string]string
	resp := getJSON(t, srv.URL+"/health", &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "fixture", body["backend"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestDashboard_All(t *testing.T) {
	srv := newServer(t, testutil.ExampleSource())

	var body DashboardResponse
	resp := getJSON(t, srv.URL+"/api/dashboard", &body)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.Demo)
	assert.Equal(t, "fixture", body.Backend)
	assert.Equal(t, 2, body.View.TotalSessions)
	assert.Equal(t, 75, body.View.TotalDurationMinutes)
	assert.Equal(t, []string{"All", "X", "Y"}, body.View.AvailablePrograms)
	require.Len(t, body.View.FilteredSessions, 2)
	assert.Equal(t, "Ann", body.View.FilteredSessions[0].Employee.FirstName)
	assert.Equal(t, "2024-05-02", body.View.FilteredSessions[0].SessionDate.String())
}

func TestDashboard_Filters(t *testing.T) {
	srv := newServer(t, testutil.ExampleSource())

	var bySearch DashboardResponse
	getJSON(t, srv.URL+"/api/dashboard?search=ANN", &bySearch)
	require.Len(t, bySearch.View.FilteredSessions, 1)
	assert.Equal(t, 30, bySearch.View.TotalDurationMinutes)
	assert.Equal(t, 1, bySearch.View.UniqueEmployeeCount)

	var byProgram DashboardResponse
	getJSON(t, srv.URL+"/api/dashboard?program=Y", &byProgram)
	require.Len(t, byProgram.View.FilteredSessions, 1)
	assert.Equal(t, "Kim", byProgram.View.FilteredSessions[0].Employee.LastName)
	assert.Equal(t, 45, byProgram.View.TotalDurationMinutes)
}

func TestDashboard_NoMatchIsNotAnError(t *testing.T) {
	srv := newServer(t, testutil.ExampleSource())

	var raw map[string]json.RawMessage
	resp := getJSON(t, srv.URL+"/api/dashboard?search=nobody", &raw)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw["view"], &view))
	assert.JSONEq(t, `[]`, string(view["filtered_sessions"]))
	assert.JSONEq(t, `0`, string(view["total_sessions"]))
}

func TestDashboard_LoadFailure(t *testing.T) {
	src := testutil.ExampleSource()
	src.SessionsErr = errors.New("relation \"sessions\" does not exist")
	srv := newServer(t, src)

	var body map[string]string
	resp := getJSON(t, srv.URL+"/api/dashboard", &body)

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, `relation "sessions" does not exist`, body["error"])
}

func TestEmployees(t *testing.T) {
	srv := newServer(t, testutil.ExampleSource())

	var body []models.Employee
	resp := getJSON(t, srv.URL+"/api/employees", &body)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body, 2)
	assert.Equal(t, models.ID("1"), body[0].ID)
	assert.Equal(t, "Ann Lee", body[0].FullName())
}

func TestEmployees_Failure(t *testing.T) {
	src := testutil.ExampleSource()
	src.RosterErr = errors.New("invalid API key")
	srv := newServer(t, src)

	var body map[string]string
	resp := getJSON(t, srv.URL+"/api/employees", &body)

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "invalid API key", body["error"])
}

func TestEmployees_EmptyRoster(t *testing.T) {
	srv := newServer(t, &testutil.StubSource{})

	resp, err := http.Get(srv.URL + "/api/employees")
	require.NoError(t, err)
	defer resp.Body.Close()

	var raw json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.JSONEq(t, `[]`, string(raw))
}

func TestRecovery(t *testing.T) {
	h := Recovery(logging.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}
