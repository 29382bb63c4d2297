package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/RollCut/internal/config"
	"github.com/piwi3910/RollCut/internal/model"
	"github.com/piwi3910/RollCut/internal/pool"
)

func newTestServer(t *testing.T, maxOrders int) *Server {
	t.Helper()
	p := pool.New(2)
	t.Cleanup(p.Close)

	base := model.DefaultPlanSettings()
	base.RollWidth = 100
	return New(config.ServerConfig{Addr: "127.0.0.1:0", MaxOrders: maxOrders}, base, p, nil)
}

func post(t *testing.T, s *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, 0)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPlan_TwoSquaresSideBySide(t *testing.T) {
	s := newTestServer(t, 0)
	rec := post(t, s, "/api/plan", `{
		"description": "two squares",
		"orders": [
			{"id": 1, "width": 50, "height": 50, "label": "A"},
			{"id": 2, "width": 50, "height": 50, "label": "B"}
		]
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp PlanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "two squares", resp.Description)
	assert.Equal(t, 100, resp.Settings.RollWidth)
	assert.Equal(t, 50, resp.Result.Height)
	assert.InDelta(t, 100.0, resp.Result.Utilization, 1e-9)
	assert.Len(t, resp.Result.Placed, 2)
	assert.Empty(t, resp.Result.Unplaced)
	assert.NotEmpty(t, resp.Result.RunID)
	assert.Empty(t, resp.Error)
}

func TestPlan_RequestOverridesSettings(t *testing.T) {
	s := newTestServer(t, 0)
	rec := post(t, s, "/api/plan", `{
		"roll_width": 40,
		"strategy": "par",
		"area_sort": false,
		"orders": [{"width": 50, "height": 30}]
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp PlanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 40, resp.Settings.RollWidth)
	assert.Equal(t, model.StrategyParallel, resp.Settings.Strategy)
	assert.False(t, resp.Settings.UseAreaSort)
	assert.Equal(t, 50, resp.Result.Height)
	require.Len(t, resp.Result.Placed, 1)
	assert.True(t, resp.Result.Placed[0].Rotated)
	assert.Equal(t, "Order 1", resp.Result.Placed[0].Label)
}

func TestPlan_InfeasibleReturnsPartialResult(t *testing.T) {
	s := newTestServer(t, 0)
	rec := post(t, s, "/api/plan", `{
		"roll_width": 40,
		"orders": [{"id": 1, "width": 50, "height": 50}]
	}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	var resp PlanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
	assert.Empty(t, resp.Result.Placed)
	assert.Len(t, resp.Result.Unplaced, 1)
}

func TestPlan_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed json", `{"orders": [`, http.StatusBadRequest},
		{"missing orders", `{"roll_width": 100}`, http.StatusBadRequest},
		{"zero width", `{"orders": [{"width": 0, "height": 5}]}`, http.StatusBadRequest},
		{"negative height", `{"orders": [{"width": 5, "height": -5}]}`, http.StatusBadRequest},
		{"duplicate ids", `{"orders": [{"id": 1, "width": 5, "height": 5}, {"id": 1, "width": 5, "height": 5}]}`, http.StatusBadRequest},
		{"bad strategy", `{"strategy": "random", "orders": []}`, http.StatusBadRequest},
		{"bad policy", `{"unplaced_policy": "ignore", "orders": []}`, http.StatusBadRequest},
		{"bad roll width", `{"roll_width": -1, "orders": []}`, http.StatusBadRequest},
	}
	s := newTestServer(t, 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, s, "/api/plan", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestPlan_TooManyOrders(t *testing.T) {
	s := newTestServer(t, 1)
	rec := post(t, s, "/api/plan", `{"orders": [{"width": 5, "height": 5}, {"width": 5, "height": 5}]}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestCompare(t *testing.T) {
	s := newTestServer(t, 0)
	rec := post(t, s, "/api/compare", `{
		"orders": [
			{"width": 20, "height": 20},
			{"width": 20, "height": 20},
			{"width": 20, "height": 20}
		]
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp CompareResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Scenarios)
	assert.Equal(t, "Current Settings", resp.Scenarios[0].Name)
	require.GreaterOrEqual(t, resp.Best, 0)
	assert.Equal(t, 3, resp.Scenarios[resp.Best].PlacedCount)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, 0)
	post(t, s, "/api/plan", `{"orders": [{"width": 10, "height": 10}]}`)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rollcut_planner_plans_total")
}

func TestPlanRequest_OrderIDs(t *testing.T) {
	req := PlanRequest{Orders: []OrderInput{
		{Width: 1, Height: 1},
		{ID: 5, Width: 1, Height: 1, Label: "five"},
		{Width: 1, Height: 1},
	}}
	orders := req.orders()
	require.Len(t, orders, 3)
	assert.Equal(t, 6, orders[0].ID)
	assert.Equal(t, 5, orders[1].ID)
	assert.Equal(t, 7, orders[2].ID)
	assert.Equal(t, "five", orders[1].Label)
	assert.Equal(t, "Order 6", orders[0].Label)
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, 0)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

