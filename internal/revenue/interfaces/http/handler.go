package http

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"clientdesk/internal/audit"
	"clientdesk/internal/auth"
	"clientdesk/internal/observability/metrics"
	"clientdesk/internal/revenue/application"
	revenue "clientdesk/internal/revenue/domain"
	"clientdesk/internal/revenue/interfaces"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// StatementService derives revenue statements.
type StatementService interface {
	Statement(ctx context.Context, userID, month string) (*revenue.Statement, error)
}

// StatementHandler serves GET /api/v1/revenue/statement.
type StatementHandler struct {
	service StatementService
	logger  *log.Logger
}

// NewStatementHandler constructs a StatementHandler.
func NewStatementHandler(service StatementService, logger *log.Logger) *StatementHandler {
	return &StatementHandler{service: service, logger: logger}
}

func (h *StatementHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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
	stmt, err := h.service.Statement(r.Context(), userID, r.URL.Query().Get("month"))
	if err != nil {
		metrics.ObserveStatementGenerate(metrics.ResultError, time.Since(started))
		if errors.Is(err, application.ErrInvalidMonth) {
			http.Error(w, "month must be YYYY-MM", http.StatusBadRequest)
			return
		}
		if h.logger != nil {
			h.logger.Printf("revenue: statement build failed for user %s: %v", userID, err)
		}
		http.Error(w, "statement unavailable", http.StatusInternalServerError)
		return
	}
	metrics.ObserveStatementGenerate(metrics.ResultSuccess, time.Since(started))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toStatementResponse(*stmt))
}

// ExportHandler serves GET /api/v1/exports/revenue.{csv,xlsx,pdf}.
type ExportHandler struct {
	service     StatementService
	auditLogger audit.Logger
	logger      *log.Logger
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(service StatementService, auditLogger audit.Logger, logger *log.Logger) *ExportHandler {
	return &ExportHandler{service: service, auditLogger: auditLogger, logger: logger}
}

func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	format := strings.TrimPrefix(r.URL.Path, "/api/v1/exports/revenue.")
	switch format {
	case "csv", "xlsx", "pdf":
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}

	started := time.Now()
	stmt, err := h.service.Statement(r.Context(), userID, r.URL.Query().Get("month"))
	if err != nil {
		metrics.ObserveExport(format, metrics.ResultError, time.Since(started))
		if errors.Is(err, application.ErrInvalidMonth) {
			http.Error(w, "month must be YYYY-MM", http.StatusBadRequest)
			return
		}
		if h.logger != nil {
			h.logger.Printf("revenue: export %s failed for user %s: %v", format, userID, err)
		}
		http.Error(w, "statement unavailable", http.StatusInternalServerError)
		return
	}

	filename := "revenue-" + stmt.Month.Format(monthLayout) + "." + format
	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		writeStatementCSV(w, stmt)
	case "xlsx":
		data, err := interfaces.BuildStatementXLSX(stmt)
		if err != nil {
			metrics.ObserveExport(format, metrics.ResultError, time.Since(started))
			http.Error(w, "export failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		_, _ = w.Write(data)
	case "pdf":
		data, err := interfaces.BuildStatementPDF(stmt)
		if err != nil {
			metrics.ObserveExport(format, metrics.ResultError, time.Since(started))
			http.Error(w, "export failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		_, _ = w.Write(data)
	}
	metrics.ObserveExport(format, metrics.ResultSuccess, time.Since(started))

	if h.auditLogger != nil {
		_ = h.auditLogger.Log(r.Context(), audit.Entry{
			UserID:   userID,
			Action:   "statement.export",
			Entity:   "statement",
			EntityID: stmt.Month.Format(monthLayout),
			Detail:   format,
			IP:       audit.ClientIP(r),
		})
	}
}

func writeStatementCSV(w http.ResponseWriter, stmt *revenue.Statement) {
	writer := csv.NewWriter(w)
	_ = writer.Write([]string{
		"implementation_id",
		"client_name",
		"amount",
		"effective_start",
		"end_date",
	})
	for _, line := range stmt.Lines {
		end := ""
		if line.EndDate != nil {
			end = line.EndDate.Format(dateLayout)
		}
		_ = writer.Write([]string{
			line.ImplementationID,
			line.ClientName,
			formatFloat(line.Amount),
			line.EffectiveStart.Format(dateLayout),
			end,
		})
	}
	_ = writer.Write([]string{"total", "", formatFloat(stmt.Total), "", ""})
	writer.Flush()
}

type lineResponse struct {
	ImplementationID string  `json:"implementation_id"`
	ClientName       string  `json:"client_name"`
	Amount           float64 `json:"amount"`
	EffectiveStart   string  `json:"effective_start"`
	EndDate          string  `json:"end_date,omitempty"`
}

type statementResponse struct {
	Month       string         `json:"month"`
	Lines       []lineResponse `json:"lines"`
	Total       float64        `json:"total"`
	GeneratedAt string         `json:"generated_at"`
}

func toStatementResponse(stmt revenue.Statement) statementResponse {
	resp := statementResponse{
		Month:       stmt.Month.Format(monthLayout),
		Lines:       make([]lineResponse, 0, len(stmt.Lines)),
		Total:       stmt.Total,
		GeneratedAt: stmt.GeneratedAt.UTC().Format(time.RFC3339),
	}
	for _, line := range stmt.Lines {
		item := lineResponse{
			ImplementationID: line.ImplementationID,
			ClientName:       line.ClientName,
			Amount:           line.Amount,
			EffectiveStart:   line.EffectiveStart.Format(dateLayout),
		}
		if line.EndDate != nil {
			item.EndDate = line.EndDate.Format(dateLayout)
		}
		resp.Lines = append(resp.Lines, item)
	}
	return resp
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
