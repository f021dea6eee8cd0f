package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"clientdesk/internal/audit"
	"clientdesk/internal/auth"
	prospects "clientdesk/internal/prospects/domain"
)

// Handler provides prospect HTTP endpoints.
type Handler struct {
	repo        prospects.Repository
	checker     auth.OwnerChecker
	auditLogger audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(repo prospects.Repository, checker auth.OwnerChecker, auditLogger audit.Logger) (*Handler, error) {
	if repo == nil {
		return nil, errors.New("prospects handler: nil repository")
	}
	return &Handler{repo: repo, checker: checker, auditLogger: auditLogger}, nil
}

// ServeHTTP handles /api/v1/prospects and subroutes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/prospects":
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleCreate(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	case strings.HasPrefix(r.URL.Path, "/api/v1/prospects/"):
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

	status := r.URL.Query().Get("status")
	if status != "" && !prospects.ValidStatus(status) {
		http.Error(w, "invalid status filter", http.StatusBadRequest)
		return
	}

	list, err := h.repo.ListByOwner(r.Context(), userID, status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	responses := make([]prospectResponse, 0, len(list))
	for _, prospect := range list {
		responses = append(responses, toResponse(prospect))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(responses)
}

type createRequest struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Status  string `json:"status"`
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
	status := req.Status
	if status == "" {
		status = prospects.StatusNew
	}

	prospect := prospects.Prospect{
		ID:      prospects.NewID(),
		UserID:  userID,
		Name:    strings.TrimSpace(req.Name),
		Company: strings.TrimSpace(req.Company),
		Status:  status,
	}
	if err := h.repo.Create(r.Context(), &prospect); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toResponse(prospect))

	h.logAudit(r, userID, "prospect.create", prospect.ID, prospect.Name)
}

func (h *Handler) handleItem(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/prospects/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[1] != "status" || r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	h.handleStatusUpdate(w, r, userID, parts[0])
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleStatusUpdate(w http.ResponseWriter, r *http.Request, userID, id string) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if !prospects.ValidStatus(req.Status) {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}

	if err := h.ensureOwner(r, userID, id); err != nil {
		respondOwnershipError(w, err)
		return
	}

	if err := h.repo.UpdateStatus(r.Context(), id, req.Status); err != nil {
		if errors.Is(err, prospects.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	prospect, err := h.repo.Get(r.Context(), id)
	if err != nil || prospect == nil {
		http.Error(w, "prospect unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toResponse(*prospect))

	h.logAudit(r, userID, "prospect.status", id, req.Status)
}

func (h *Handler) ensureOwner(r *http.Request, userID, id string) error {
	if h.checker == nil {
		return nil
	}
	return h.checker.EnsureRecordOwner(r.Context(), userID, auth.KindProspect, id)
}

func (h *Handler) logAudit(r *http.Request, userID, action, entityID, detail string) {
	if h.auditLogger == nil || userID == "" {
		return
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		UserID:   userID,
		Action:   action,
		Entity:   "prospect",
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

type prospectResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Company   string `json:"company,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toResponse(prospect prospects.Prospect) prospectResponse {
	return prospectResponse{
		ID:        prospect.ID,
		Name:      prospect.Name,
		Company:   prospect.Company,
		Status:    prospect.Status,
		CreatedAt: prospect.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: prospect.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
