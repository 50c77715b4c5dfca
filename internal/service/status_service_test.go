package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/webmatic/api/internal/model"
	"github.com/webmatic/api/internal/repository"
)

type mockStatusCheckRepository struct {
	insertFunc      func(ctx context.Context, s *model.StatusCheck) error
	findLimitedFunc func(ctx context.Context, n int) ([]*model.StatusCheck, error)
}

func (m *mockStatusCheckRepository) Insert(ctx context.Context, s *model.StatusCheck) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, s)
	}
	return nil
}

func (m *mockStatusCheckRepository) FindLimited(ctx context.Context, n int) ([]*model.StatusCheck, error) {
	if m.findLimitedFunc != nil {
		return m.findLimitedFunc(ctx, n)
	}
	return nil, nil
}

func TestStatusService_Create(t *testing.T) {
	var stored *model.StatusCheck
	svc := &statusServiceImpl{
		repo: &mockStatusCheckRepository{insertFunc: func(ctx context.Context, s *model.StatusCheck) error {
			stored = s
			return nil
		}},
		now:   func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
		newID: func() string { return "status-1" },
	}

	got, err := svc.Create(context.Background(), model.StatusCheckInput{ClientName: "monitor"}, "10.1.1.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored != got {
		t.Fatal("expected returned check to be persisted")
	}
	if got.ID != "status-1" || got.ClientName != "monitor" || got.ClientKey != "10.1.1.1" {
		t.Errorf("unexpected check %+v", got)
	}
}

func TestStatusService_Create_PropagatesError(t *testing.T) {
	svc := NewStatusService(&mockStatusCheckRepository{
		insertFunc: func(ctx context.Context, s *model.StatusCheck) error { return repository.ErrPersistence },
	})
	if _, err := svc.Create(context.Background(), model.StatusCheckInput{ClientName: "x"}, ""); !errors.Is(err, repository.ErrPersistence) {
		t.Errorf("expected ErrPersistence, got %v", err)
	}
}

func TestStatusService_List_ClampsLimit(t *testing.T) {
	cases := map[int]int{0: DefaultStatusLimit, -5: DefaultStatusLimit, 10: 10, 5000: MaxStatusLimit}
	for in, want := range cases {
		var got int
		svc := NewStatusService(&mockStatusCheckRepository{
			findLimitedFunc: func(ctx context.Context, n int) ([]*model.StatusCheck, error) {
				got = n
				return nil, nil
			},
		})
		if _, err := svc.List(context.Background(), in); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("limit %d: want %d passed to repository, got %d", in, want, got)
		}
	}
}

func TestStatusService_List_EmptyIsNotNil(t *testing.T) {
	svc := NewStatusService(&mockStatusCheckRepository{})
	checks, err := svc.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if checks == nil {
		t.Error("expected empty slice, got nil")
	}
}
