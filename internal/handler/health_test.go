package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type mockDB struct {
	pingFunc func(ctx context.Context) error
}

func (m *mockDB) Ping(ctx context.Context) error {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}
	return nil
}

func fixedHandler(db *mockDB) *Handler {
	var h *Handler
	if db == nil {
		h = New(nil, "1.0.0")
	} else {
		h = New(db, "1.0.0")
	}
	h.now = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) }
	return h
}

func TestHealth_OK(t *testing.T) {
	h := fixedHandler(&mockDB{})
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()

	if err := h.Health(rec, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var resp healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("expected status=healthy, got %q", resp.Status)
	}
	if resp.Services["database"] != "connected" {
		t.Errorf("expected database=connected, got %q", resp.Services["database"])
	}
	if resp.Services["api"] != "running" {
		t.Errorf("expected api=running, got %q", resp.Services["api"])
	}
	if resp.Timestamp != "2026-03-01T09:30:00Z" {
		t.Errorf("unexpected timestamp %q", resp.Timestamp)
	}
}

func TestHealth_DatabaseDown(t *testing.T) {
	h := fixedHandler(&mockDB{
		pingFunc: func(ctx context.Context) error {
			return errors.New("connection refused")
		},
	})

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	_ = h.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var resp healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "degraded" {
		t.Errorf("expected status=degraded, got %q", resp.Status)
	}
	if resp.Services["database"] != "disconnected" {
		t.Errorf("expected database=disconnected, got %q", resp.Services["database"])
	}
}

func TestHealth_NoDatabase(t *testing.T) {
	h := fixedHandler(nil)
	rec := httptest.NewRecorder()
	_ = h.Health(rec, httptest.NewRequest("GET", "/health", nil))

	var resp healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Services["database"] != "disconnected" {
		t.Errorf("expected database=disconnected, got %q", resp.Services["database"])
	}
}

func TestHealth_PingHasDeadline(t *testing.T) {
	var hasDeadline bool
	h := fixedHandler(&mockDB{
		pingFunc: func(ctx context.Context) error {
			_, hasDeadline = ctx.Deadline()
			return nil
		},
	})
	_ = h.Health(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

	if !hasDeadline {
		t.Error("expected ping context to carry a deadline")
	}
}

func TestInfo(t *testing.T) {
	h := fixedHandler(&mockDB{})
	rec := httptest.NewRecorder()
	_ = h.Info(rec, httptest.NewRequest("GET", "/api/", nil))

	var resp infoResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Version != "1.0.0" || resp.Status != "healthy" || resp.Message == "" {
		t.Errorf("unexpected info: %+v", resp)
	}
}

func TestSecurityCheck(t *testing.T) {
	h := fixedHandler(&mockDB{})
	rec := httptest.NewRecorder()
	_ = h.SecurityCheck(rec, httptest.NewRequest("GET", "/api/security/check", nil))

	var resp securityCheckResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.RateLimiting || !resp.InputValidation || !resp.SecurityHeaders || !resp.SSLEnabled {
		t.Errorf("expected all checks enabled: %+v", resp)
	}
	if resp.Status != "secure" {
		t.Errorf("expected status=secure, got %q", resp.Status)
	}
	if resp.LastCheck != "2026-03-01T09:30:00Z" {
		t.Errorf("unexpected last_check %q", resp.LastCheck)
	}
}
