package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dreschagin/system-diagnostics/internal/application/usecase"
	"github.com/dreschagin/system-diagnostics/internal/interfaces/http/middleware"
	"github.com/dreschagin/system-diagnostics/pkg/logger"
)

// HistoryHandler serves persisted cycles from the repository.
type HistoryHandler struct {
	historyUC *usecase.GetHistoryUseCase
	logger    *logger.Logger
}

func NewHistoryHandler(historyUC *usecase.GetHistoryUseCase, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{
		historyUC: historyUC,
		logger:    log,
	}
}

// GetHistory handles GET /api/v1/history?from=RFC3339&to=RFC3339&limit=N.
// All parameters are optional; the default window is the last hour.
func (h *HistoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.historyUC.Enabled() {
		middleware.WriteJSON(w, http.StatusNotImplemented, map[string]interface{}{
			"error": "history persistence is not configured",
		})
		return
	}

	var from, to time.Time
	var err error
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = time.Parse(time.RFC3339, v); err != nil {
			http.Error(w, "Invalid 'from' timestamp, expected RFC3339", http.StatusBadRequest)
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = time.Parse(time.RFC3339, v); err != nil {
			http.Error(w, "Invalid 'to' timestamp, expected RFC3339", http.StatusBadRequest)
			return
		}
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			http.Error(w, "Invalid 'limit'", http.StatusBadRequest)
			return
		}
	}

	records, err := h.historyUC.Execute(r.Context(), from, to, limit)
	if err != nil {
		h.logger.Error("Failed to serve history", err)
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(records),
		"cycles": records,
	})
}
