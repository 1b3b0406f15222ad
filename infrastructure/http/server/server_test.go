package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complyance/governance/application/port/outbound"
	"github.com/complyance/governance/domain/entity"
	"github.com/complyance/governance/infrastructure/bootstrap"
	"github.com/complyance/governance/infrastructure/http/handler"
	"github.com/complyance/governance/infrastructure/http/middleware"
	"github.com/complyance/governance/infrastructure/service/jwt"
	"github.com/complyance/governance/infrastructure/service/logger"
	"github.com/complyance/governance/infrastructure/service/metrics"
)

type testServer struct {
	handler http.Handler
	clock   *testclock.Clock
	tokens  *jwt.JWTService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	clk := testclock.NewClock(time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC))
	log := logger.NewNopLogger()
	collector := metrics.NewCollector()
	registry := prometheus.NewRegistry()
	require.NoError(t, registry.Register(collector))

	tokens, err := jwt.NewJWTService("test-secret", time.Hour, clk)
	require.NoError(t, err)

	uc := bootstrap.NewUseCases(bootstrap.NewMemoryStorage(), bootstrap.Options{
		GracePeriod: 24 * time.Hour,
		Clock:       clk,
		Metrics:     collector,
		Logger:      log,
	})

	h := NewRouter(ServerConfig{
		CORSEnabled:    true,
		AllowedOrigins: []string{"https://console.example.com"},
	}, Dependencies{
		Users:       handler.NewUserHandler(uc.Users),
		Posts:       handler.NewPostHandler(uc.Posts),
		Preferences: handler.NewPreferenceHandler(uc.Preferences),
		System:      handler.NewSystemHandler(uc.System),
		Actor:       middleware.NewActorMiddleware(tokens),
		Metrics:     collector,
		Registry:    registry,
		Logger:      log,
	})

	return &testServer{handler: h, clock: clk, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env map[string]interface{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func asAdmin() map[string]string {
	return map[string]string{middleware.ActorHeader: "admin-1"}
}

func auditActions(t *testing.T, env map[string]interface{}) []string {
	t.Helper()
	data := env["data"].(map[string]interface{})
	var actions []string
	for _, e := range data["audit_trail"].([]interface{}) {
		actions = append(actions, e.(map[string]interface{})["action"].(string))
	}
	return actions
}

func TestUserLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPost, "/api/v1/users",
		`{"username":"alice","email":"Alice@Example.com","name":"Alice","roles":["USER"]}`, asAdmin())
	require.Equal(t, http.StatusCreated, rec.Code)
	userID := env["data"].(map[string]interface{})["id"].(string)
	assert.NotEmpty(t, rec.Header().Get(middleware.CorrelationIDHeader))

	rec, _ = s.do(t, http.MethodPost, "/api/v1/users/"+userID+"/posts", `{"title":"First","content":"Hello"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec, _ = s.do(t, http.MethodPut, "/api/v1/users/"+userID+"/preferences", `{"theme":"dark","language":"en"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodDelete, "/api/v1/users/"+userID, "", asAdmin())
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/users/"+userID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/users/"+userID+"/preferences", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = s.do(t, http.MethodPost, "/api/v1/users/"+userID+"/purge", "", asAdmin())
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "LIFECYCLE_2004", env["code"])

	s.clock.Advance(2 * time.Hour)
	rec, env = s.do(t, http.MethodPost, "/api/v1/users/"+userID+"/restore", "", asAdmin())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{entity.ActionCreate, entity.ActionSoftDelete, entity.ActionRestore}, auditActions(t, env))

	rec, env = s.do(t, http.MethodGet, "/api/v1/users/"+userID+"/posts", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, env["data"].(map[string]interface{})["posts"], 1)

	rec, _ = s.do(t, http.MethodDelete, "/api/v1/users/"+userID, "", asAdmin())
	require.Equal(t, http.StatusOK, rec.Code)

	s.clock.Advance(24 * time.Hour)
	rec, env = s.do(t, http.MethodPost, "/api/v1/users/"+userID+"/restore", "", asAdmin())
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "LIFECYCLE_2003", env["code"])

	rec, _ = s.do(t, http.MethodPost, "/api/v1/users/"+userID+"/purge", "", asAdmin())
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/users/"+userID+"/restore", "", asAdmin())
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = s.do(t, http.MethodGet, "/api/v1/system/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	collections := env["data"].(map[string]interface{})["collections"].(map[string]interface{})
	assert.Equal(t, 0.0, collections["users"])
	assert.Equal(t, 0.0, collections["posts"])
	assert.Equal(t, 0.0, collections["preferences"])
}

func TestActorResolution(t *testing.T) {
	s := newTestServer(t)

	token, err := s.tokens.GenerateAccessToken(outbound.TokenClaims{Subject: "auditor-9"})
	require.NoError(t, err)

	rec, env := s.do(t, http.MethodPost, "/api/v1/users",
		`{"username":"bob","email":"bob@example.com","name":"Bob","roles":["USER"]}`,
		map[string]string{"Authorization": "Bearer " + token, middleware.ActorHeader: "ignored"})
	require.Equal(t, http.StatusCreated, rec.Code)
	trail := env["data"].(map[string]interface{})["audit_trail"].([]interface{})
	require.Len(t, trail, 1)
	assert.Equal(t, "auditor-9", trail[0].(map[string]interface{})["performed_by"])

	rec, env = s.do(t, http.MethodPost, "/api/v1/users",
		`{"username":"carol","email":"carol@example.com","name":"Carol","roles":["USER"]}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	trail = env["data"].(map[string]interface{})["audit_trail"].([]interface{})
	assert.Equal(t, entity.SystemActor, trail[0].(map[string]interface{})["performed_by"])

	rec, _ = s.do(t, http.MethodGet, "/api/v1/users", "", map[string]string{"Authorization": "Bearer not-a-token"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSystemEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/api/v1/system/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "UP", env["data"].(map[string]interface{})["status"])

	s.do(t, http.MethodPost, "/api/v1/users", `{"username":"dave","email":"dave@example.com","name":"Dave","roles":["USER"]}`, nil)

	rec, _ = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `governance_lifecycle_transitions_total{action="CREATE",entity="user"} 1`)
	assert.Contains(t, rec.Body.String(), `governance_http_request_duration_seconds_count{method="POST",route="/api/v1/users",status="201"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodOptions, "/api/v1/users/abc/restore", "", map[string]string{
		"Origin":                        "https://console.example.com",
		"Access-Control-Request-Method": "POST",
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://console.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	rec, _ = s.do(t, http.MethodGet, "/api/v1/system/health", "", map[string]string{"Origin": "https://evil.example.com"})
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestOversizedPageIsRejected(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPost, "/api/v1/users",
		`{"username":"frank","email":"frank@example.com","name":"Frank","roles":["USER"]}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	userID := env["data"].(map[string]interface{})["id"].(string)

	for _, path := range []string{
		"/api/v1/users?page=461168601842738791",
		"/api/v1/users/" + userID + "/posts?page=461168601842738791",
	} {
		rec, _ = s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}
