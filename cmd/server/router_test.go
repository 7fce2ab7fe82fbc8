package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tasktrack/internal/config"
	"github.com/phrazzld/tasktrack/internal/platform/logger"
)

const testSecret = "a-test-secret-that-is-at-least-32-chars"

// Wednesday 2026-03-11 14:30 UTC
var refNow = time.Date(2026, 3, 11, 14, 30, 0, 0, time.UTC)

// testClock is a settable clock shared by every component of a test application.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:            8080,
			LogLevel:        "debug",
			Timezone:        "UTC",
			ShutdownTimeout: time.Second,
		},
		Auth: config.AuthConfig{
			JWTSecret:            testSecret,
			TokenLifetimeMinutes: 60,
		},
		Cache: config.CacheConfig{
			ResultTTL:               5 * time.Minute,
			RegistryTTL:             24 * time.Hour,
			BreakerFailureThreshold: 5,
			BreakerTimeout:          30 * time.Second,
		},
	}
}

type testServer struct {
	t      *testing.T
	app    *application
	router http.Handler
	clock  *testClock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log, _ := logger.NewTestLogger()
	clock := &testClock{now: refNow}

	app, err := newApplication(context.Background(), testConfig(), log, storeMemory, clock.Now)
	require.NoError(t, err)
	t.Cleanup(app.cleanup)

	return &testServer{t: t, app: app, router: app.setupRouter(), clock: clock}
}

func (s *testServer) tokenFor(userID uuid.UUID) string {
	s.t.Helper()
	token, err := s.app.jwtService.GenerateToken(context.Background(), userID)
	require.NoError(s.t, err)
	return token
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

type taskBody struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	Completed bool   `json:"completed"`
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []taskBody {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Tasks []taskBody `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Tasks
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) taskBody {
	t.Helper()
	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Data    struct {
			Task taskBody `json:"task"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	return body.Data.Task
}

func titlesOf(tasks []taskBody) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Title
	}
	return out
}

func TestHealthAndMetricsNeedNoToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tasktrack_http_request_duration_seconds")
}

func TestTaskRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/tasks", "/api/tasks"} {
		rec := s.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))
	}

	rec := s.do(http.MethodGet, "/tasks", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCategoryAndOverdueScenario(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(uuid.New())

	rec := s.do(http.MethodPost, "/tasks", token, map[string]any{
		"title":    "Quarterly report",
		"category": "work",
		"deadline": refNow.Add(24 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeEnvelope(t, rec)

	assert.Empty(t, decodeList(t, s.do(http.MethodGet, "/tasks?category=personal", token, nil)))
	assert.Equal(t, []string{"Quarterly report"},
		titlesOf(decodeList(t, s.do(http.MethodGet, "/tasks?category=work", token, nil))))

	rec = s.do(http.MethodPatch, "/tasks/"+created.ID, token, map[string]any{"completed": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decodeEnvelope(t, rec).Completed)

	s.clock.Advance(48 * time.Hour)
	assert.Empty(t, decodeList(t, s.do(http.MethodGet, "/tasks?deadline=overdue", token, nil)))
	assert.Len(t, decodeList(t, s.do(http.MethodGet, "/tasks?completed=true", token, nil)), 1)
}

func TestOverdueIncludesIncompleteTaskOnceDeadlinePasses(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(uuid.New())

	rec := s.do(http.MethodPost, "/tasks", token, map[string]any{
		"title":    "Renew passport",
		"category": "personal",
		"deadline": refNow.Add(time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Empty(t, decodeList(t, s.do(http.MethodGet, "/tasks?deadline=overdue", token, nil)))

	// Cached lists live for the result TTL; move past it.
	s.clock.Advance(6 * time.Minute)
	s.clock.Advance(2 * time.Hour)
	assert.Equal(t, []string{"Renew passport"},
		titlesOf(decodeList(t, s.do(http.MethodGet, "/tasks?deadline=overdue", token, nil))))
}

func TestCreateWithPastDeadlineNamesDeadlineField(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(uuid.New())

	rec := s.do(http.MethodPost, "/tasks", token, map[string]any{
		"title":    "Too late",
		"category": "urgent",
		"deadline": refNow.Add(-time.Minute).Format(time.RFC3339),
	})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Deadline must be a future date and time", body.Message)
	assert.Contains(t, body.Errors, "deadline")
}

func TestMutationsRefreshCachedLists(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(uuid.New())

	create := func(title string, offset time.Duration) string {
		rec := s.do(http.MethodPost, "/api/tasks", token, map[string]any{
			"title":    title,
			"category": "work",
			"deadline": refNow.Add(offset).Format(time.RFC3339),
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		return decodeEnvelope(t, rec).ID
	}

	first := create("First", time.Hour)
	assert.Equal(t, []string{"First"}, titlesOf(decodeList(t, s.do(http.MethodGet, "/api/tasks", token, nil))))

	create("Second", 2*time.Hour)
	assert.Equal(t, []string{"First", "Second"},
		titlesOf(decodeList(t, s.do(http.MethodGet, "/api/tasks", token, nil))))

	rec := s.do(http.MethodPatch, "/api/tasks/"+first, token, map[string]any{"title": "Renamed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"Renamed", "Second"},
		titlesOf(decodeList(t, s.do(http.MethodGet, "/api/tasks", token, nil))))

	rec = s.do(http.MethodDelete, "/api/tasks/"+first, token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, []string{"Second"}, titlesOf(decodeList(t, s.do(http.MethodGet, "/api/tasks", token, nil))))
}

func TestNonOwnerIsForbidden(t *testing.T) {
	s := newTestServer(t)
	owner := s.tokenFor(uuid.New())
	intruder := s.tokenFor(uuid.New())

	rec := s.do(http.MethodPost, "/tasks", owner, map[string]any{
		"title":    "Private",
		"category": "personal",
		"deadline": refNow.Add(time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeEnvelope(t, rec).ID

	tests := []struct {
		method string
		body   any
	}{
		{http.MethodGet, nil},
		{http.MethodPatch, map[string]any{"title": ""}},
		{http.MethodDelete, nil},
	}
	for _, tc := range tests {
		t.Run(tc.method, func(t *testing.T) {
			rec := s.do(tc.method, "/tasks/"+id, intruder, tc.body)
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Contains(t, rec.Body.String(), `"message":"Unauthorised"`)
		})
	}

	assert.Empty(t, decodeList(t, s.do(http.MethodGet, "/tasks", intruder, nil)))
	assert.Len(t, decodeList(t, s.do(http.MethodGet, "/tasks", owner, nil)), 1)
}

func TestMissingTaskIsNotFound(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(uuid.New())

	for _, path := range []string{"/tasks/" + uuid.NewString(), "/tasks/not-a-uuid"} {
		rec := s.do(http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestNewApplicationRejectsUnknownStore(t *testing.T) {
	log, _ := logger.NewTestLogger()
	_, err := newApplication(context.Background(), testConfig(), log, "sqlite", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store")
}

func TestNewApplicationPostgresWithoutURL(t *testing.T) {
	log, _ := logger.NewTestLogger()
	_, err := newApplication(context.Background(), testConfig(), log, storePostgres, nil)
	assert.ErrorIs(t, err, errDatabaseURLRequired)
}
