package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestManagerReport(t *testing.T) {
	m := NewManager("test")
	m.Register(NewPingChecker("database", func(context.Context) error { return nil }))

	report := m.Check(context.Background())
	if report.Status != StatusHealthy {
		t.Errorf("expected healthy, got %s", report.Status)
	}
	if len(report.Checks) != 1 || report.Checks[0].Message != "connected" {
		t.Errorf("unexpected checks %+v", report.Checks)
	}

	m.Register(NewPingChecker("redis", func(context.Context) error { return errors.New("refused") }))
	if got := m.Check(context.Background()).Status; got != StatusUnhealthy {
		t.Errorf("expected unhealthy, got %s", got)
	}
}

func TestReadyHandler(t *testing.T) {
	healthy := true
	m := NewManager("test")
	m.Register(NewPingChecker("database", func(context.Context) error {
		if healthy {
			return nil
		}
		return errors.New("down")
	}))

	rec := httptest.NewRecorder()
	m.ReadyHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	healthy = false
	rec = httptest.NewRecorder()
	m.ReadyHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	m.FullHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	var report Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("invalid report json: %v", err)
	}
	if report.Status != StatusUnhealthy || report.Version != "test" {
		t.Errorf("unexpected report %+v", report)
	}
}
