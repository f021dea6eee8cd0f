package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"clientdesk/internal/audit"
	"clientdesk/internal/auth"
	implementations "clientdesk/internal/implementations/domain"
)

const dateLayout = "2006-01-02"

// Handler provides implementation HTTP endpoints.
type Handler struct {
	repo        implementations.Repository
	checker     auth.OwnerChecker
	auditLogger audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(repo implementations.Repository, checker auth.OwnerChecker, auditLogger audit.Logger) (*Handler, error) {
	if repo == nil {
		return nil, errors.New("implementations handler: nil repository")
	}
	return &Handler{repo: repo, checker: checker, auditLogger: auditLogger}, nil
}

// ServeHTTP handles /api/v1/implementations and subroutes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/implementations":
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleCreate(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	case strings.HasPrefix(r.URL.Path, "/api/v1/implementations/"):
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

	list, err := h.repo.ListByOwner(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	responses := make([]implementationResponse, 0, len(list))
	for _, impl := range list {
		responses = append(responses, toResponse(impl))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(responses)
}

type createRequest struct {
	ClientName        string  `json:"client_name"`
	RecurringAmount   float64 `json:"recurring_amount"`
	Status            string  `json:"status"`
	StartDate         string  `json:"start_date"`
	EndDate           string  `json:"end_date"`
	DeliveryCompleted bool    `json:"delivery_completed"`
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
	if req.Status == "" {
		req.Status = implementations.StatusActive
	}

	startDate, err := parseOptionalDate(req.StartDate)
	if err != nil {
		http.Error(w, "start_date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		http.Error(w, "end_date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	impl := implementations.Implementation{
		ID:                implementations.NewID(),
		UserID:            userID,
		ClientName:        strings.TrimSpace(req.ClientName),
		RecurringAmount:   req.RecurringAmount,
		Status:            req.Status,
		StartDate:         startDate,
		EndDate:           endDate,
		DeliveryCompleted: req.DeliveryCompleted,
	}
	if err := h.repo.Create(r.Context(), &impl); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toResponse(impl))

	h.logAudit(r, userID, "implementation.create", impl.ID, impl.ClientName)
}

func (h *Handler) handleItem(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/implementations/")
	parts := strings.Split(path, "/")
	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleGet(w, r, userID, parts[0])
	case len(parts) == 1 && r.Method == http.MethodPatch:
		h.handlePatch(w, r, userID, parts[0])
	case len(parts) == 2 && parts[1] == "delivery-complete" && r.Method == http.MethodPost:
		h.handleDeliveryComplete(w, r, userID, parts[0])
	case len(parts) == 1 || (len(parts) == 2 && parts[1] == "delivery-complete"):
		w.WriteHeader(http.StatusMethodNotAllowed)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, userID, id string) {
	impl, err := h.repo.Get(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if impl == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err := auth.EnsureOwner(userID, impl.UserID); err != nil {
		respondOwnershipError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toResponse(*impl))
}

type patchRequest struct {
	ClientName        *string  `json:"client_name"`
	RecurringAmount   *float64 `json:"recurring_amount"`
	Status            *string  `json:"status"`
	StartDate         *string  `json:"start_date"`
	EndDate           *string  `json:"end_date"`
	DeliveryCompleted *bool    `json:"delivery_completed"`
}

func (h *Handler) handlePatch(w http.ResponseWriter, r *http.Request, userID, id string) {
	if err := h.ensureOwner(r, userID, id); err != nil {
		respondOwnershipError(w, err)
		return
	}

	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	impl, err := h.repo.Get(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if impl == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if req.ClientName != nil {
		impl.ClientName = strings.TrimSpace(*req.ClientName)
	}
	if req.RecurringAmount != nil {
		impl.RecurringAmount = *req.RecurringAmount
	}
	if req.Status != nil {
		impl.Status = *req.Status
	}
	if req.StartDate != nil {
		date, err := parseOptionalDate(*req.StartDate)
		if err != nil {
			http.Error(w, "start_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		impl.StartDate = date
	}
	if req.EndDate != nil {
		date, err := parseOptionalDate(*req.EndDate)
		if err != nil {
			http.Error(w, "end_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		impl.EndDate = date
	}
	if req.DeliveryCompleted != nil {
		impl.DeliveryCompleted = *req.DeliveryCompleted
	}

	if err := h.repo.Update(r.Context(), impl); err != nil {
		if errors.Is(err, implementations.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toResponse(*impl))

	h.logAudit(r, userID, "implementation.update", impl.ID, impl.ClientName)
}

func (h *Handler) handleDeliveryComplete(w http.ResponseWriter, r *http.Request, userID, id string) {
	if err := h.ensureOwner(r, userID, id); err != nil {
		respondOwnershipError(w, err)
		return
	}

	impl, err := h.repo.Get(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if impl == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	impl.DeliveryCompleted = true
	if err := h.repo.Update(r.Context(), impl); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toResponse(*impl))

	h.logAudit(r, userID, "implementation.delivery_complete", impl.ID, impl.ClientName)
}

func (h *Handler) ensureOwner(r *http.Request, userID, id string) error {
	if h.checker == nil {
		return nil
	}
	return h.checker.EnsureRecordOwner(r.Context(), userID, auth.KindImplementation, id)
}

func (h *Handler) logAudit(r *http.Request, userID, action, entityID, detail string) {
	if h.auditLogger == nil || userID == "" {
		return
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		UserID:   userID,
		Action:   action,
		Entity:   "implementation",
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

type implementationResponse struct {
	ID                string  `json:"id"`
	ClientName        string  `json:"client_name"`
	RecurringAmount   float64 `json:"recurring_amount"`
	Status            string  `json:"status"`
	StartDate         string  `json:"start_date,omitempty"`
	EndDate           string  `json:"end_date,omitempty"`
	DeliveryCompleted bool    `json:"delivery_completed"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

func toResponse(impl implementations.Implementation) implementationResponse {
	resp := implementationResponse{
		ID:                impl.ID,
		ClientName:        impl.ClientName,
		RecurringAmount:   impl.RecurringAmount,
		Status:            impl.Status,
		DeliveryCompleted: impl.DeliveryCompleted,
		CreatedAt:         impl.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:         impl.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if impl.StartDate != nil {
		resp.StartDate = impl.StartDate.Format(dateLayout)
	}
	if impl.EndDate != nil {
		resp.EndDate = impl.EndDate.Format(dateLayout)
	}
	return resp
}

func parseOptionalDate(value string) (*time.Time, error) {
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
