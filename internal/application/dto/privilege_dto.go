package dto

import (
	"time"

	"github.com/dreschagin/system-diagnostics/internal/domain/entity"
)

// PrivilegeDTO is the external representation of the privilege gate's state,
// including which monitoring features the current level unlocks.
type PrivilegeDTO struct {
	Granted     bool            `json:"granted"`
	LastAttempt *time.Time      `json:"last_attempt,omitempty"`
	LastError   string          `json:"last_error,omitempty"`
	Features    map[string]bool `json:"features,omitempty"`
}

func FromPrivilegeState(state entity.PrivilegeState, features map[string]bool) *PrivilegeDTO {
	d := &PrivilegeDTO{
		Granted:   state.Granted,
		LastError: state.LastError,
		Features:  features,
	}
	if !state.LastAttempt.IsZero() {
		t := state.LastAttempt
		d.LastAttempt = &t
	}
	return d
}
