package valueobject

import "errors"

// HealthStatus is the overall verdict of one analysis pass (Value Object).
type HealthStatus string

const (
	StatusOK       HealthStatus = "ok"
	StatusWarning  HealthStatus = "warning"
	StatusCritical HealthStatus = "critical"
)

func (s HealthStatus) Validate() error {
	switch s {
	case StatusOK, StatusWarning, StatusCritical:
		return nil
	default:
		return errors.New("invalid health status")
	}
}

func (s HealthStatus) String() string {
	return string(s)
}

// rank orders statuses so that the worst one wins when combining.
func (s HealthStatus) rank() int {
	switch s {
	case StatusCritical:
		return 2
	case StatusWarning:
		return 1
	default:
		return 0
	}
}

// Worse returns the more severe of the two statuses.
func (s HealthStatus) Worse(other HealthStatus) HealthStatus {
	if other.rank() > s.rank() {
		return other
	}
	return s
}

// Severity classifies a single threshold breach (Value Object).
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

func (s Severity) String() string {
	return string(s)
}

// Status maps a breach severity to the health status it implies.
func (s Severity) Status() HealthStatus {
	if s == SeverityCritical {
		return StatusCritical
	}
	return StatusWarning
}
