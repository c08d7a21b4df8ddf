package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dreschagin/system-diagnostics/internal/application/dto"
	"github.com/dreschagin/system-diagnostics/internal/application/usecase"
	"github.com/dreschagin/system-diagnostics/internal/domain/entity"
	"github.com/dreschagin/system-diagnostics/internal/domain/service"
	"github.com/dreschagin/system-diagnostics/internal/domain/valueobject"
	"github.com/dreschagin/system-diagnostics/internal/infrastructure/cache"
	wsInfra "github.com/dreschagin/system-diagnostics/internal/infrastructure/notification/websocket"
	"github.com/dreschagin/system-diagnostics/internal/interfaces/http/handler"
	"github.com/dreschagin/system-diagnostics/internal/interfaces/http/middleware"
	"github.com/dreschagin/system-diagnostics/pkg/config"
	"github.com/dreschagin/system-diagnostics/pkg/logger"
)

type fakeGate struct {
	state  entity.PrivilegeState
	denyIf error
}

func (g *fakeGate) CurrentState() entity.PrivilegeState { return g.state }

func (g *fakeGate) RequestEscalation(ctx context.Context) (entity.PrivilegeState, error) {
	g.state.LastAttempt = time.Now()
	if g.denyIf != nil {
		g.state.Granted = false
		g.state.LastError = g.denyIf.Error()
		return g.state, g.denyIf
	}
	g.state.Granted = true
	g.state.LastError = ""
	return g.state, nil
}

func (g *fakeGate) AvailableFeatures() map[string]bool {
	return map[string]bool{"hardware_sensors": g.state.Granted}
}

type testEnv struct {
	cache  *cache.SnapshotCache
	server *httptest.Server
}

func newTestEnv(t *testing.T, gate *fakeGate, security config.SecurityConfig) *testEnv {
	t.Helper()
	log := logger.New("error")
	snapshotCache := cache.NewSnapshotCache()

	diagnosticsHandler := handler.NewDiagnosticsHandler(usecase.NewGetCurrentUseCase(snapshotCache, log), log)
	privilegeHandler := handler.NewPrivilegeHandler(usecase.NewRequestElevationUseCase(gate, log), log)
	historyHandler := handler.NewHistoryHandler(usecase.NewGetHistoryUseCase(nil, log), log)
	websocketHandler := handler.NewWebSocketHandler(wsInfra.NewHub(log), nil, middleware.AuthConfig{}, log)

	router := NewRouter(
		diagnosticsHandler,
		privilegeHandler,
		historyHandler,
		websocketHandler,
		snapshotCache,
		config.ServerConfig{RateLimitRPS: 1000, RateLimitBurst: 1000},
		security,
		log,
	)

	server := httptest.NewServer(router.Setup())
	t.Cleanup(server.Close)

	return &testEnv{cache: snapshotCache, server: server}
}

// publishCycle runs the analyzer over a hand-built snapshot and swaps it
// into the cache, the same way a scheduled cycle would.
func (e *testEnv) publishCycle(t *testing.T, values map[valueobject.Category]map[string]float64, degraded map[valueobject.Category]entity.DegradedReason) {
	t.Helper()
	readings := make(map[valueobject.Category]entity.CategoryReading)
	for category, v := range values {
		reading, err := entity.NewCategoryReading(category, v, nil)
		if err != nil {
			t.Fatalf("build reading: %v", err)
		}
		readings[category] = reading
	}
	snapshot := entity.NewSnapshot(time.Now(), map[string]string{"os": "linux"}, readings, degraded)
	result := service.NewAnalyzer().Analyze(snapshot, valueobject.DefaultThresholds())
	if err := e.cache.Set(snapshot, result); err != nil {
		t.Fatalf("publish cycle: %v", err)
	}
}

func getJSON(t *testing.T, url string, dest interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if dest != nil {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func TestCurrentBeforeFirstCycleIs503(t *testing.T) {
	env := newTestEnv(t, &fakeGate{}, config.SecurityConfig{})

	var body map[string]interface{}
	status := getJSON(t, env.server.URL+"/api/current", &body)

	if status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before first cycle, got %d", status)
	}
	if body["error"] == "" {
		t.Fatal("expected an error message in the 503 body")
	}
}

func TestCurrentServesLatestCycle(t *testing.T) {
	env := newTestEnv(t, &fakeGate{}, config.SecurityConfig{})
	env.publishCycle(t, map[valueobject.Category]map[string]float64{
		valueobject.CPU:    {"usage_percent": 25},
		valueobject.Memory: {"usage_percent": 50, "swap_percent": 1},
	}, nil)

	var body dto.DiagnosticsDTO
	status := getJSON(t, env.server.URL+"/api/current", &body)

	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body.Analysis.Status != "ok" {
		t.Fatalf("expected ok status, got %q", body.Analysis.Status)
	}
	if body.Analysis.Warnings == nil || len(body.Analysis.Warnings) != 0 {
		t.Fatalf("expected empty (not null) warnings, got %v", body.Analysis.Warnings)
	}
	if len(body.Diagnostics.Metrics) != 2 {
		t.Fatalf("expected 2 metric categories, got %d", len(body.Diagnostics.Metrics))
	}
	if body.SuggestAdmin {
		t.Fatal("suggest_admin must be false for a fully collected cycle")
	}
}

func TestCurrentDegradedCategorySetsSuggestAdmin(t *testing.T) {
	env := newTestEnv(t, &fakeGate{}, config.SecurityConfig{})
	env.publishCycle(t, map[valueobject.Category]map[string]float64{
		valueobject.CPU: {"usage_percent": 95},
	}, map[valueobject.Category]entity.DegradedReason{
		valueobject.Sensors: {Cause: "collect sensors: elevation required", ElevationRequired: true},
	})

	var body dto.DiagnosticsDTO
	status := getJSON(t, env.server.URL+"/api/current", &body)

	if status != http.StatusOK {
		t.Fatalf("degraded categories must not fail the request, got %d", status)
	}
	if !body.SuggestAdmin {
		t.Fatal("expected suggest_admin when a category needs elevation")
	}
	// The degraded category yields a note, never a warning.
	if len(body.Analysis.Warnings) != 1 {
		t.Fatalf("expected only the cpu warning, got %v", body.Analysis.Warnings)
	}
	if len(body.Analysis.Notes) != 1 {
		t.Fatalf("expected one sensors note, got %v", body.Analysis.Notes)
	}
	if _, ok := body.Diagnostics.Degraded["sensors"]; !ok {
		t.Fatal("expected sensors in the degraded map")
	}
}

func TestRetryWithAdminGrantsAndReports(t *testing.T) {
	env := newTestEnv(t, &fakeGate{}, config.SecurityConfig{})

	resp, err := http.Post(env.server.URL+"/api/retry_with_admin", "application/json", nil)
	if err != nil {
		t.Fatalf("POST retry_with_admin: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on grant, got %d", resp.StatusCode)
	}
	var body struct {
		Privilege dto.PrivilegeDTO `json:"privilege"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !body.Privilege.Granted {
		t.Fatal("expected granted privilege state")
	}
}

func TestRetryWithAdminDeniedIs403(t *testing.T) {
	gate := &fakeGate{denyIf: errors.New("sudo: a password is required")}
	env := newTestEnv(t, gate, config.SecurityConfig{})

	resp, err := http.Post(env.server.URL+"/api/retry_with_admin", "application/json", nil)
	if err != nil {
		t.Fatalf("POST retry_with_admin: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 on denial, got %d", resp.StatusCode)
	}
}

func TestRetryWithAdminRejectsGet(t *testing.T) {
	env := newTestEnv(t, &fakeGate{}, config.SecurityConfig{})

	status := getJSON(t, env.server.URL+"/api/retry_with_admin", nil)
	if status != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET, got %d", status)
	}
}

func TestReadyzTracksFirstCycle(t *testing.T) {
	env := newTestEnv(t, &fakeGate{}, config.SecurityConfig{})

	if status := getJSON(t, env.server.URL+"/readyz", nil); status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before first cycle, got %d", status)
	}
	if status := getJSON(t, env.server.URL+"/healthz", nil); status != http.StatusOK {
		t.Fatalf("liveness must not depend on cycles, got %d", status)
	}

	env.publishCycle(t, map[valueobject.Category]map[string]float64{
		valueobject.CPU: {"usage_percent": 10},
	}, nil)

	if status := getJSON(t, env.server.URL+"/readyz", nil); status != http.StatusOK {
		t.Fatalf("expected 200 after first cycle, got %d", status)
	}
}

func TestAuthProtectsDiagnosticsAPI(t *testing.T) {
	security := config.SecurityConfig{AuthEnabled: true, AuthToken: "secret-token"}
	env := newTestEnv(t, &fakeGate{}, security)
	env.publishCycle(t, map[valueobject.Category]map[string]float64{
		valueobject.CPU: {"usage_percent": 10},
	}, nil)

	if status := getJSON(t, env.server.URL+"/api/current", nil); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}

	req, _ := http.NewRequest(http.MethodGet, env.server.URL+"/api/current", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("authorized request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", resp.StatusCode)
	}

	// Probes stay open for the orchestrator.
	if status := getJSON(t, env.server.URL+"/healthz", nil); status != http.StatusOK {
		t.Fatalf("healthz must be unauthenticated, got %d", status)
	}
}

func TestHistoryWithoutRepositoryIs501(t *testing.T) {
	env := newTestEnv(t, &fakeGate{}, config.SecurityConfig{})

	if status := getJSON(t, env.server.URL+"/api/v1/history", nil); status != http.StatusNotImplemented {
		t.Fatalf("expected 501 without repository, got %d", status)
	}
}
