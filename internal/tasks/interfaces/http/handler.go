package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"clientdesk/internal/audit"
	"clientdesk/internal/auth"
	tasks "clientdesk/internal/tasks/domain"
)

const dateLayout = "2006-01-02"

// Handler provides task HTTP endpoints.
type Handler struct {
	repo        tasks.Repository
	checker     auth.OwnerChecker
	auditLogger audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(repo tasks.Repository, checker auth.OwnerChecker, auditLogger audit.Logger) (*Handler, error) {
	if repo == nil {
		return nil, errors.New("tasks handler: nil repository")
	}
	return &Handler{repo: repo, checker: checker, auditLogger: auditLogger}, nil
}

// ServeHTTP handles /api/v1/tasks and subroutes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/tasks":
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleCreate(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	case strings.HasPrefix(r.URL.Path, "/api/v1/tasks/"):
		h.handleItem(w, r)
		return
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	from, err := parseDateQuery(r, "from")
	if err != nil {
		http.Error(w, "from must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	to, err := parseDateQuery(r, "to")
	if err != nil {
		http.Error(w, "to must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if from != nil && to != nil && to.Before(*from) {
		http.Error(w, "to must not precede from", http.StatusBadRequest)
		return
	}

	list, err := h.repo.ListByOwner(r.Context(), userID, from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	responses := make([]taskResponse, 0, len(list))
	for _, task := range list {
		responses = append(responses, toResponse(task))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(responses)
}

type createRequest struct {
	Title       string `json:"title"`
	Notes       string `json:"notes"`
	ScheduledOn string `json:"scheduled_on"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	scheduledOn, err := time.Parse(dateLayout, req.ScheduledOn)
	if err != nil {
		http.Error(w, "scheduled_on must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	task := tasks.Task{
		ID:          tasks.NewID(),
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Notes:       req.Notes,
		ScheduledOn: scheduledOn.UTC(),
		Status:      tasks.StatusPending,
	}
	if err := h.repo.Create(r.Context(), &task); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toResponse(task))

	h.logAudit(r, userID, "task.create", task.ID, task.Title)
}

func (h *Handler) handleItem(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/tasks/")
	parts := strings.Split(path, "/")
	switch {
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.handleDelete(w, r, userID, parts[0])
	case len(parts) == 2 && r.Method == http.MethodPost:
		h.handleStatusAction(w, r, userID, parts[0], parts[1])
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleStatusAction(w http.ResponseWriter, r *http.Request, userID, id, action string) {
	var status string
	switch action {
	case "complete":
		status = tasks.StatusCompleted
	case "reopen":
		status = tasks.StatusPending
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if err := h.ensureOwner(r, userID, id); err != nil {
		respondOwnershipError(w, err)
		return
	}

	if err := h.repo.SetStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, tasks.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	task, err := h.repo.Get(r.Context(), id)
	if err != nil || task == nil {
		http.Error(w, "task unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toResponse(*task))

	h.logAudit(r, userID, "task."+action, id, task.Title)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request, userID, id string) {
	if err := h.ensureOwner(r, userID, id); err != nil {
		respondOwnershipError(w, err)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, tasks.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)

	h.logAudit(r, userID, "task.delete", id, "")
}

func (h *Handler) ensureOwner(r *http.Request, userID, id string) error {
	if h.checker == nil {
		return nil
	}
	return h.checker.EnsureRecordOwner(r.Context(), userID, auth.KindTask, id)
}

func (h *Handler) logAudit(r *http.Request, userID, action, entityID, detail string) {
	if h.auditLogger == nil || userID == "" {
		return
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		UserID:   userID,
		Action:   action,
		Entity:   "task",
		EntityID: entityID,
		Detail:   detail,
		IP:       audit.ClientIP(r),
	})
}

func respondOwnershipError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, auth.ErrOwnershipMismatch) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if errors.Is(err, auth.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	http.Error(w, "ownership check failed", http.StatusInternalServerError)
}

type taskResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Notes       string `json:"notes,omitempty"`
	ScheduledOn string `json:"scheduled_on"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toResponse(task tasks.Task) taskResponse {
	return taskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Notes:       task.Notes,
		ScheduledOn: task.ScheduledOn.Format(dateLayout),
		Status:      task.Status,
		CreatedAt:   task.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   task.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func parseDateQuery(r *http.Request, key string) (*time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, err
	}
	parsed = parsed.UTC()
	return &parsed, nil
}
