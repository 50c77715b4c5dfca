package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/webmatic/api/internal/model"
	"github.com/webmatic/api/internal/repository"
)

type mockStatusService struct {
	createFunc func(ctx context.Context, in model.StatusCheckInput, clientKey string) (*model.StatusCheck, error)
	listFunc   func(ctx context.Context, limit int) ([]*model.StatusCheck, error)
}

func (m *mockStatusService) Create(ctx context.Context, in model.StatusCheckInput, clientKey string) (*model.StatusCheck, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, in, clientKey)
	}
	return &model.StatusCheck{ID: "id-1", ClientName: in.ClientName, ClientKey: clientKey, Timestamp: time.Now().UTC()}, nil
}

func (m *mockStatusService) List(ctx context.Context, limit int) ([]*model.StatusCheck, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit)
	}
	return []*model.StatusCheck{}, nil
}

func TestStatusHandler_Create(t *testing.T) {
	h := NewStatusHandler(&mockStatusService{}, ClientKeyResolver{}, nil)
	req := httptest.NewRequest("POST", "/api/status", strings.NewReader(`{"client_name":"Boulangerie Dupont"}`))
	req.RemoteAddr = "192.0.2.44:9000"
	rec := httptest.NewRecorder()

	handle(h.Create).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got model.StatusCheck
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ClientName != "Boulangerie Dupont" {
		t.Errorf("client_name: got %q", got.ClientName)
	}
	if got.ClientKey != "192.0.2.44" {
		t.Errorf("client key: got %q", got.ClientKey)
	}
}

func TestStatusHandler_Create_Invalid(t *testing.T) {
	called := false
	svc := &mockStatusService{
		createFunc: func(ctx context.Context, in model.StatusCheckInput, clientKey string) (*model.StatusCheck, error) {
			called = true
			return nil, nil
		},
	}
	h := NewStatusHandler(svc, ClientKeyResolver{}, nil)
	req := httptest.NewRequest("POST", "/api/status", strings.NewReader(`{"client_name":"A"}`))
	rec := httptest.NewRecorder()

	handle(h.Create).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if called {
		t.Error("service must not be called for invalid input")
	}
}

func TestStatusHandler_List_PassesLimit(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 0},
		{"?limit=10", 10},
		{"?limit=5000", 5000},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var gotLimit int
			svc := &mockStatusService{
				listFunc: func(ctx context.Context, limit int) ([]*model.StatusCheck, error) {
					gotLimit = limit
					return []*model.StatusCheck{}, nil
				},
			}
			h := NewStatusHandler(svc, ClientKeyResolver{}, nil)
			rec := httptest.NewRecorder()
			handle(h.List).ServeHTTP(rec, httptest.NewRequest("GET", "/api/status"+tt.query, nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if gotLimit != tt.want {
				t.Errorf("limit: want %d, got %d", tt.want, gotLimit)
			}
		})
	}
}

func TestStatusHandler_List_EmptyArray(t *testing.T) {
	h := NewStatusHandler(&mockStatusService{}, ClientKeyResolver{}, nil)
	rec := httptest.NewRecorder()
	handle(h.List).ServeHTTP(rec, httptest.NewRequest("GET", "/api/status", nil))

	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("expected [], got %s", got)
	}
}

func TestStatusHandler_List_BadLimit(t *testing.T) {
	h := NewStatusHandler(&mockStatusService{}, ClientKeyResolver{}, nil)
	rec := httptest.NewRecorder()
	handle(h.List).ServeHTTP(rec, httptest.NewRequest("GET", "/api/status?limit=abc", nil))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"limit"`) {
		t.Errorf("expected limit failure, got %s", rec.Body.String())
	}
}

func TestStatusHandler_List_Error(t *testing.T) {
	svc := &mockStatusService{
		listFunc: func(ctx context.Context, limit int) ([]*model.StatusCheck, error) {
			return nil, fmt.Errorf("%w: find status checks: timeout", repository.ErrPersistence)
		},
	}
	h := NewStatusHandler(svc, ClientKeyResolver{}, nil)
	rec := httptest.NewRecorder()
	handle(h.List).ServeHTTP(rec, httptest.NewRequest("GET", "/api/status", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
