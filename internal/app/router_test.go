package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cabinet-suite-core/internal/app/config"

	"go.uber.org/zap"
)

func okProbe(name string, optional bool) Probe {
	return Probe{Name: name, Optional: optional, Check: func(context.Context) error { return nil }}
}

func failingProbe(name string, optional bool) Probe {
	return Probe{Name: name, Optional: optional, Check: func(context.Context) error { return errors.New("connection refused") }}
}

func newTestRouter(t *testing.T, probes Probes) http.Handler {
	t.Helper()
	cfg := &config.Config{Environment: "production"}
	cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	r, err := NewRouter(cfg, zap.NewNop(), probes)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return r
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("réponse non JSON: %s", w.Body.String())
	}
	return w, body
}

func TestReady(t *testing.T) {
	tests := []struct {
		name   string
		probes Probes
		code   int
		status string
	}{
		{"toutes disponibles", Probes{okProbe("postgres", false), okProbe("mongodb", true)}, http.StatusOK, "ready"},
		{"mongodb absent", Probes{okProbe("postgres", false), failingProbe("mongodb", true)}, http.StatusOK, "degraded"},
		{"postgres absent", Probes{failingProbe("postgres", false), failingProbe("mongodb", true)}, http.StatusServiceUnavailable, "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := get(t, newTestRouter(t, tt.probes), "/ready")
			if w.Code != tt.code {
				t.Fatalf("code = %d, attendu %d", w.Code, tt.code)
			}
			data := body["data"].(map[string]interface{})
			if data["status"] != tt.status {
				t.Errorf("status = %v, attendu %s", data["status"], tt.status)
			}
		})
	}
}

func TestHealthAndRequestID(t *testing.T) {
	w, body := get(t, newTestRouter(t, nil), "/health")
	if w.Code != http.StatusOK || body["success"] != true {
		t.Fatalf("health: %d %v", w.Code, body)
	}
	if w.Header().Get("X-Request-Id") == "" {
		t.Error("X-Request-Id absent")
	}
}

func TestUnknownRoute(t *testing.T) {
	w, body := get(t, newTestRouter(t, nil), "/api/v1/inconnu")
	if w.Code != http.StatusNotFound {
		t.Fatalf("code = %d", w.Code)
	}
	details := body["details"].(map[string]interface{})
	if details["code"] != "ROUTE_NOT_FOUND" {
		t.Errorf("details = %v", details)
	}
}
