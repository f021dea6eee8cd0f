package http

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clientdesk/internal/auth"
	implementations "clientdesk/internal/implementations/domain"
	"clientdesk/internal/revenue/application"
)

type fakeImpls struct {
	list []implementations.Implementation
}

func (f *fakeImpls) ListByOwner(_ context.Context, _ string) ([]implementations.Implementation, error) {
	return f.list, nil
}

func authed(r *http.Request, userID string) *http.Request {
	return r.WithContext(auth.WithIdentity(r.Context(), userID, ""))
}

func newService(t *testing.T) *application.Service {
	t.Helper()
	start := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	impls := []implementations.Implementation{
		{
			ID:              "impl-1",
			UserID:          "user-1",
			ClientName:      "Acme",
			RecurringAmount: 120,
			Status:          implementations.StatusActive,
			StartDate:       &start,
			CreatedAt:       start,
		},
	}
	clock := func() time.Time { return time.Date(2024, time.May, 20, 9, 0, 0, 0, time.UTC) }
	service, err := application.NewService(&fakeImpls{list: impls}, clock)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return service
}

func TestStatementHandler_ServesJSON(t *testing.T) {
	handler := NewStatementHandler(newService(t), nil)

	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/revenue/statement?month=2024-05", nil), "user-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body statementResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Month != "2024-05" {
		t.Fatalf("expected month 2024-05, got %s", body.Month)
	}
	if len(body.Lines) != 1 || body.Lines[0].ClientName != "Acme" {
		t.Fatalf("unexpected lines: %+v", body.Lines)
	}
	if body.Lines[0].EffectiveStart != "2024-01-10" {
		t.Fatalf("expected effective start 2024-01-10, got %s", body.Lines[0].EffectiveStart)
	}
	if body.Total != 120 {
		t.Fatalf("expected total 120, got %v", body.Total)
	}
}

func TestStatementHandler_RejectsBadMonth(t *testing.T) {
	handler := NewStatementHandler(newService(t), nil)

	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/revenue/statement?month=05-2024", nil), "user-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestStatementHandler_RequiresIdentity(t *testing.T) {
	handler := NewStatementHandler(newService(t), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/revenue/statement", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestExportHandler_CSV(t *testing.T) {
	handler := NewExportHandler(newService(t), nil, nil)

	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/exports/revenue.csv?month=2024-05", nil), "user-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if got := resp.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/csv") {
		t.Fatalf("expected text/csv, got %s", got)
	}
	if got := resp.Header().Get("Content-Disposition"); !strings.Contains(got, "revenue-2024-05.csv") {
		t.Fatalf("expected filename in disposition, got %s", got)
	}

	records, err := csv.NewReader(resp.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	// Header, one line, total row.
	if len(records) != 3 {
		t.Fatalf("expected 3 csv rows, got %d", len(records))
	}
	if records[1][1] != "Acme" || records[1][2] != "120" {
		t.Fatalf("unexpected line row: %v", records[1])
	}
	if records[2][0] != "total" || records[2][2] != "120" {
		t.Fatalf("unexpected total row: %v", records[2])
	}
}

func TestExportHandler_XLSX(t *testing.T) {
	handler := NewExportHandler(newService(t), nil, nil)

	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/exports/revenue.xlsx", nil), "user-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !bytes.HasPrefix(resp.Body.Bytes(), []byte("PK")) {
		t.Fatal("expected zip container")
	}
}

func TestExportHandler_PDF(t *testing.T) {
	handler := NewExportHandler(newService(t), nil, nil)

	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/exports/revenue.pdf", nil), "user-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("expected application/pdf, got %s", got)
	}
	if !bytes.HasPrefix(resp.Body.Bytes(), []byte("%PDF")) {
		t.Fatal("expected pdf header")
	}
}

func TestExportHandler_UnknownFormat(t *testing.T) {
	handler := NewExportHandler(newService(t), nil, nil)

	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/exports/revenue.txt", nil), "user-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
