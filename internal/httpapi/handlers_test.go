package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DoyleJ11/gridclaim/internal/hub"
	"github.com/DoyleJ11/gridclaim/internal/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	rows     []results.GameResult
	err      error
	gotCode  string
	gotLimit int
}

func (f *fakeLister) Recent(_ context.Context, code string, limit int) ([]results.GameResult, error) {
	f.gotCode, f.gotLimit = code, limit
	return f.rows, f.err
}

func newRouter(t *testing.T, lister ResultLister) http.Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return SetupRoutes(Deps{Hub: hub.NewHub(ctx, hub.Config{}), Results: lister})
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode()
	require.NoError(t, err)
	assert.Len(t, code, codeLength)
	assert.Equal(t, strings.ToUpper(code), code)
}

func TestCreateThenGetSession(t *testing.T) {
	r := newRouter(t, nil)

	rec := do(t, r, http.MethodPost, "/sessions")
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	require.Len(t, created.Code, codeLength)

	rec = do(t, r, http.MethodGet, "/sessions/"+created.Code)
	require.Equal(t, http.StatusOK, rec.Code)
	var got sessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, created.Code, got.Code)
	assert.Equal(t, "lobby", got.State.Phase)
	assert.Equal(t, 0, got.Clients)
	assert.Len(t, got.State.OwnersByCell, 100)
}

func TestGetSession_NotFound(t *testing.T) {
	rec := do(t, newRouter(t, nil), http.MethodGet, "/sessions/NOPE")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListResults(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	row, err := results.NewGameResult("MAIN", "p", "Pat", 9, map[string]int{"p": 30, "computer1": 12}, at)
	require.NoError(t, err)
	lister := &fakeLister{rows: []results.GameResult{row}}

	rec := do(t, newRouter(t, lister), http.MethodGet, "/sessions/MAIN/results?limit=500")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MAIN", lister.gotCode)
	assert.Equal(t, maxResults, lister.gotLimit)

	var got []resultResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "Pat", got[0].WinnerName)
	assert.Equal(t, 12, got[0].Scores["computer1"])
	assert.True(t, at.Equal(got[0].FinishedAt))
}

func TestListResults_DisabledArchiveIsEmpty(t *testing.T) {
	rec := do(t, newRouter(t, nil), http.MethodGet, "/sessions/MAIN/results")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListResults_Errors(t *testing.T) {
	r := newRouter(t, &fakeLister{err: errors.New("db down")})

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/sessions/MAIN/results?limit=zero").Code)
	assert.Equal(t, http.StatusInternalServerError, do(t, r, http.MethodGet, "/sessions/MAIN/results").Code)
}

func TestHealthz(t *testing.T) {
	assert.Equal(t, http.StatusOK, do(t, newRouter(t, nil), http.MethodGet, "/healthz").Code)
}

func TestSessionRoutes_AfterHubShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := hub.NewHub(ctx, hub.Config{})
	r := SetupRoutes(Deps{Hub: h})

	h.Inbox() <- hub.ShutdownHub{}
	select {
	case <-h.Done():
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("hub did not stop")
	}

	assert.Equal(t, http.StatusServiceUnavailable, do(t, r, http.MethodGet, "/sessions/MAIN").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, r, http.MethodPost, "/sessions").Code)
}
