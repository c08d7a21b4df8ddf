package handler

import (
	"errors"
	"net/http"

	"github.com/dreschagin/system-diagnostics/internal/application/usecase"
	"github.com/dreschagin/system-diagnostics/internal/interfaces/http/middleware"
	"github.com/dreschagin/system-diagnostics/pkg/logger"
)

// DiagnosticsHandler serves the current evaluated snapshot.
type DiagnosticsHandler struct {
	getCurrentUC *usecase.GetCurrentUseCase
	logger       *logger.Logger
}

func NewDiagnosticsHandler(getCurrentUC *usecase.GetCurrentUseCase, log *logger.Logger) *DiagnosticsHandler {
	return &DiagnosticsHandler{
		getCurrentUC: getCurrentUC,
		logger:       log,
	}
}

// GetCurrent handles GET /api/current. Serves only from the cache; before
// the first cycle completes it answers 503 so clients can distinguish "still
// warming up" from "healthy with no data".
func (h *DiagnosticsHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	view, err := h.getCurrentUC.Execute()
	if err != nil {
		if errors.Is(err, usecase.ErrNotReady) {
			middleware.WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"error": "no snapshot collected yet, try again shortly",
			})
			return
		}
		h.logger.Error("Failed to serve current snapshot", err)
		middleware.WriteJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error":         "internal error",
			"suggest_admin": true,
		})
		return
	}

	middleware.WriteJSON(w, http.StatusOK, view)
}
