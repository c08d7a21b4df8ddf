package entity

import "time"

// PrivilegeState describes whether the process currently holds elevated host
// access. Only the privilege gate mutates it; everyone else receives copies.
type PrivilegeState struct {
	Granted bool `json:"granted"`
	// LastAttempt is zero when escalation was never requested.
	LastAttempt time.Time `json:"last_attempt,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
}
