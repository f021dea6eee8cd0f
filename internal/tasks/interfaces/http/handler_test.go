package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clientdesk/internal/auth"
	tasks "clientdesk/internal/tasks/domain"
	"clientdesk/internal/tasks/infrastructure/memory"
)

type stubChecker struct {
	err error
}

func (s stubChecker) EnsureRecordOwner(_ context.Context, _ string, _ auth.RecordKind, _ string) error {
	return s.err
}

func authed(r *http.Request, userID string) *http.Request {
	return r.WithContext(auth.WithIdentity(r.Context(), userID, ""))
}

func seedTask(t *testing.T, repo *memory.Repository, userID string, day time.Time, status string) tasks.Task {
	t.Helper()
	task := tasks.Task{
		ID:          tasks.NewID(),
		UserID:      userID,
		Title:       "call client",
		ScheduledOn: day,
		Status:      status,
	}
	if err := repo.Create(context.Background(), &task); err != nil {
		t.Fatalf("seed task: %v", err)
	}
	return task
}

func TestTasksHandler_CreateAndList(t *testing.T) {
	repo := memory.NewRepository()
	handler, err := NewHandler(repo, stubChecker{}, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	body := `{"title":"prepare proposal","scheduled_on":"2024-05-02"}`
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/tasks", strings.NewReader(body)), "user-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created taskResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Status != tasks.StatusPending {
		t.Fatalf("expected pending status, got %q", created.Status)
	}
	if created.ScheduledOn != "2024-05-02" {
		t.Fatalf("expected scheduled_on 2024-05-02, got %q", created.ScheduledOn)
	}

	req = authed(httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil), "user-1")
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var list []taskResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 task, got %d", len(list))
	}
}

func TestTasksHandler_ListRangeFilter(t *testing.T) {
	repo := memory.NewRepository()
	seedTask(t, repo, "user-1", time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), tasks.StatusPending)
	seedTask(t, repo, "user-1", time.Date(2024, time.May, 9, 0, 0, 0, 0, time.UTC), tasks.StatusPending)
	seedTask(t, repo, "user-2", time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), tasks.StatusPending)

	handler, _ := NewHandler(repo, stubChecker{}, nil)

	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/tasks?from=2024-05-01&to=2024-05-07", nil), "user-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var list []taskResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 task in range, got %d", len(list))
	}
}

func TestTasksHandler_Complete(t *testing.T) {
	repo := memory.NewRepository()
	task := seedTask(t, repo, "user-1", time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), tasks.StatusPending)

	handler, _ := NewHandler(repo, stubChecker{}, nil)

	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/tasks/"+task.ID+"/complete", nil), "user-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	stored, _ := repo.Get(context.Background(), task.ID)
	if stored == nil || stored.Status != tasks.StatusCompleted {
		t.Fatalf("expected completed status, got %+v", stored)
	}
}

func TestTasksHandler_CompleteForeignTaskForbidden(t *testing.T) {
	repo := memory.NewRepository()
	task := seedTask(t, repo, "user-2", time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), tasks.StatusPending)

	handler, _ := NewHandler(repo, stubChecker{err: auth.ErrOwnershipMismatch}, nil)

	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/tasks/"+task.ID+"/complete", nil), "user-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}

	stored, _ := repo.Get(context.Background(), task.ID)
	if stored == nil || stored.Status != tasks.StatusPending {
		t.Fatal("expected task left untouched")
	}
}

func TestTasksHandler_Delete(t *testing.T) {
	repo := memory.NewRepository()
	task := seedTask(t, repo, "user-1", time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), tasks.StatusPending)

	handler, _ := NewHandler(repo, stubChecker{}, nil)

	req := authed(httptest.NewRequest(http.MethodDelete, "/api/v1/tasks/"+task.ID, nil), "user-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}

	stored, _ := repo.Get(context.Background(), task.ID)
	if stored != nil {
		t.Fatal("expected task removed")
	}
}

func TestTasksHandler_CreateRejectsBadDate(t *testing.T) {
	repo := memory.NewRepository()
	handler, _ := NewHandler(repo, stubChecker{}, nil)

	body := `{"title":"x","scheduled_on":"05/02/2024"}`
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/tasks", strings.NewReader(body)), "user-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
