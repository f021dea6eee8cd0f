package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"clientdesk/internal/auth"
	dashboard "clientdesk/internal/dashboard/domain"
	"clientdesk/internal/observability/metrics"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// SnapshotService assembles a user's dashboard snapshot.
type SnapshotService interface {
	Snapshot(ctx context.Context, userID string) (*dashboard.Snapshot, error)
}

// Handler serves GET /api/v1/dashboard.
type Handler struct {
	service SnapshotService
	logger  *log.Logger
}

// NewHandler constructs a Handler.
func NewHandler(service SnapshotService, logger *log.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.service == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	started := time.Now()
	snapshot, err := h.service.Snapshot(r.Context(), userID)
	if err != nil {
		metrics.ObserveDashboard(metrics.ResultError, time.Since(started))
		if h.logger != nil {
			h.logger.Printf("dashboard: snapshot batch failed for user %s: %v", userID, err)
		}
		http.Error(w, "dashboard temporarily unavailable", http.StatusBadGateway)
		return
	}
	metrics.ObserveDashboard(metrics.ResultSuccess, time.Since(started))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toResponse(*snapshot))
}

type statsResponse struct {
	TasksDueToday          int     `json:"tasks_due_today"`
	TasksCompletedToday    int     `json:"tasks_completed_today"`
	TasksCompletedThisWeek int     `json:"tasks_completed_this_week"`
	NewProspectsThisMonth  int     `json:"new_prospects_this_month"`
	ConvertedProspects     int     `json:"converted_prospects"`
	ConversionRatePct      int     `json:"conversion_rate_pct"`
	MonthlyRecurringTotal  float64 `json:"monthly_recurring_total"`
	DeliveriesPending      int     `json:"deliveries_pending"`
}

type completionPointResponse struct {
	Label string `json:"label"`
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type revenuePointResponse struct {
	Label string  `json:"label"`
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

type snapshotResponse struct {
	Stats                statsResponse             `json:"stats"`
	TaskCompletionSeries []completionPointResponse `json:"task_completion_series"`
	RevenueTrendSeries   []revenuePointResponse    `json:"revenue_trend_series"`
	GeneratedAt          string                    `json:"generated_at"`
}

func toResponse(snapshot dashboard.Snapshot) snapshotResponse {
	resp := snapshotResponse{
		Stats: statsResponse{
			TasksDueToday:          snapshot.Stats.TasksDueToday,
			TasksCompletedToday:    snapshot.Stats.TasksCompletedToday,
			TasksCompletedThisWeek: snapshot.Stats.TasksCompletedThisWeek,
			NewProspectsThisMonth:  snapshot.Stats.NewProspectsThisMonth,
			ConvertedProspects:     snapshot.Stats.ConvertedProspects,
			ConversionRatePct:      snapshot.Stats.ConversionRatePct,
			MonthlyRecurringTotal:  snapshot.Stats.MonthlyRecurringTotal,
			DeliveriesPending:      snapshot.Stats.DeliveriesPending,
		},
		TaskCompletionSeries: make([]completionPointResponse, 0, len(snapshot.TaskCompletionSeries)),
		RevenueTrendSeries:   make([]revenuePointResponse, 0, len(snapshot.RevenueTrendSeries)),
		GeneratedAt:          snapshot.GeneratedAt.UTC().Format(time.RFC3339),
	}
	for _, point := range snapshot.TaskCompletionSeries {
		resp.TaskCompletionSeries = append(resp.TaskCompletionSeries, completionPointResponse{
			Label: point.Label,
			Date:  point.Date.Format(dateLayout),
			Count: point.Count,
		})
	}
	for _, point := range snapshot.RevenueTrendSeries {
		resp.RevenueTrendSeries = append(resp.RevenueTrendSeries, revenuePointResponse{
			Label: point.Label,
			Month: point.Month.Format(monthLayout),
			Total: point.Total,
		})
	}
	return resp
}
