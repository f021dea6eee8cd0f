package audit

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"clientdesk/internal/auth"
)

// Lister reads back a user's audit trail.
type Lister interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]Entry, error)
}

// Handler serves GET /api/v1/audit: the authenticated user's most
// recent entries, newest first.
type Handler struct {
	lister Lister
	logger *log.Logger
}

// NewHandler constructs a Handler.
func NewHandler(lister Lister, logger *log.Logger) *Handler {
	return &Handler{lister: lister, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.lister == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	entries, err := h.lister.ListByUser(r.Context(), userID, limit)
	if err != nil {
		if h.logger != nil {
			h.logger.Printf("audit: list failed for user %s: %v", userID, err)
		}
		http.Error(w, "audit trail unavailable", http.StatusInternalServerError)
		return
	}

	responses := make([]entryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, toEntryResponse(entry))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(responses)
}

type entryResponse struct {
	ID        string `json:"id"`
	Action    string `json:"action"`
	Entity    string `json:"entity"`
	EntityID  string `json:"entity_id,omitempty"`
	Detail    string `json:"detail,omitempty"`
	IP        string `json:"ip,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toEntryResponse(entry Entry) entryResponse {
	return entryResponse{
		ID:        entry.ID,
		Action:    entry.Action,
		Entity:    entry.Entity,
		EntityID:  entry.EntityID,
		Detail:    entry.Detail,
		IP:        entry.IP,
		CreatedAt: entry.CreatedAt.UTC().Format(time.RFC3339),
	}
}
