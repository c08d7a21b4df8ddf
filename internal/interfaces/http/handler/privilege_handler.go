package handler

import (
	"net/http"

	"github.com/dreschagin/system-diagnostics/internal/application/usecase"
	"github.com/dreschagin/system-diagnostics/internal/interfaces/http/middleware"
	"github.com/dreschagin/system-diagnostics/pkg/logger"
)

// PrivilegeHandler exposes the privilege gate: current state plus the
// escalation trigger.
type PrivilegeHandler struct {
	elevationUC *usecase.RequestElevationUseCase
	logger      *logger.Logger
}

func NewPrivilegeHandler(elevationUC *usecase.RequestElevationUseCase, log *logger.Logger) *PrivilegeHandler {
	return &PrivilegeHandler{
		elevationUC: elevationUC,
		logger:      log,
	}
}

// RetryWithAdmin handles POST /api/retry_with_admin. It requests escalation
// and returns the resulting state; the next scheduled cycle collects with
// the new privilege level, so the response carries no fresh snapshot.
func (h *PrivilegeHandler) RetryWithAdmin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	state, err := h.elevationUC.Execute(r.Context())
	if err != nil {
		// Denial is an expected outcome, not a server fault.
		middleware.WriteJSON(w, http.StatusForbidden, map[string]interface{}{
			"error":     err.Error(),
			"privilege": state,
		})
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"privilege": state,
	})
}

// GetState handles GET /api/privilege.
func (h *PrivilegeHandler) GetState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"privilege": h.elevationUC.State(),
	})
}
