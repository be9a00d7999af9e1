package health_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fishgalaxy/backend/internal/health"
)

func newHandler(deps map[string]error) *health.Handler {
	h := health.NewHandler("v2.1.0")
	for name, err := range deps {
		err := err
		h.RegisterChecker(name, health.NewSimpleChecker(name, func() error {
			return err
		}))
	}
	return h
}

func TestHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		deps       map[string]error
		wantCode   int
		wantStatus health.Status
	}{
		{
			name:       "all dependencies up",
			deps:       map[string]error{"postgres": nil, "kafka": nil},
			wantCode:   http.StatusOK,
			wantStatus: health.StatusHealthy,
		},
		{
			name:       "one dependency down",
			deps:       map[string]error{"postgres": nil, "kafka": errors.New("broker unreachable")},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: health.StatusUnhealthy,
		},
		{
			name:       "no checkers registered",
			deps:       nil,
			wantCode:   http.StatusOK,
			wantStatus: health.StatusHealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newHandler(tt.deps).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("status code = %d, want %d", rec.Code, tt.wantCode)
			}

			var resp health.Response
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("overall status = %s, want %s", resp.Status, tt.wantStatus)
			}
			if resp.Version != "v2.1.0" {
				t.Errorf("version = %s, want v2.1.0", resp.Version)
			}
			if len(resp.Checks) != len(tt.deps) {
				t.Errorf("got %d checks, want %d", len(resp.Checks), len(tt.deps))
			}
		})
	}
}

func TestHandler_ServeHTTP_CheckDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	newHandler(map[string]error{"postgres": errors.New("connection refused")}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var resp health.Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	check, ok := resp.Checks["postgres"]
	if !ok {
		t.Fatal("postgres check missing from response")
	}
	if check.Status != health.StatusUnhealthy {
		t.Errorf("check status = %s, want %s", check.Status, health.StatusUnhealthy)
	}
	if check.Message != "connection refused" {
		t.Errorf("check message = %q, want %q", check.Message, "connection refused")
	}
}

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	health.LivenessHandler(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status code = %d, want 200", rec.Code)
	}
}

func TestReadinessHandler(t *testing.T) {
	h := newHandler(map[string]error{"postgres": nil})

	rec := httptest.NewRecorder()
	h.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("ready status code = %d, want 200", rec.Code)
	}

	h.RegisterChecker("kafka", health.NewSimpleChecker("kafka", func() error {
		return errors.New("broker down")
	}))

	rec = httptest.NewRecorder()
	h.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("not-ready status code = %d, want 503", rec.Code)
	}
}
