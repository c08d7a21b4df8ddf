package entity

import (
	"time"

	"github.com/dreschagin/system-diagnostics/internal/domain/valueobject"
)

// Breach is one threshold violation found during analysis.
type Breach struct {
	Category valueobject.Category
	Severity valueobject.Severity
	Message  string
}

// AnalysisResult is the outcome of evaluating exactly one snapshot against
// the configured thresholds. It is a pure derivation: same snapshot plus same
// thresholds always produce the same result.
//
// Warnings contains the breach messages in category declaration order. Notes
// carries informational lines about degraded categories; those never count as
// warnings and never affect the status.
type AnalysisResult struct {
	snapshotID  string
	status      valueobject.HealthStatus
	warnings    []string
	notes       []string
	breaches    []Breach
	evaluatedAt time.Time
}

func NewAnalysisResult(
	snapshotID string,
	status valueobject.HealthStatus,
	warnings []string,
	notes []string,
	breaches []Breach,
	evaluatedAt time.Time,
) *AnalysisResult {
	return &AnalysisResult{
		snapshotID:  snapshotID,
		status:      status,
		warnings:    append([]string(nil), warnings...),
		notes:       append([]string(nil), notes...),
		breaches:    append([]Breach(nil), breaches...),
		evaluatedAt: evaluatedAt,
	}
}

// SnapshotID identifies the snapshot this result was computed from. The
// snapshot cache refuses pairs where the IDs do not match.
func (a *AnalysisResult) SnapshotID() string {
	return a.snapshotID
}

func (a *AnalysisResult) Status() valueobject.HealthStatus {
	return a.status
}

func (a *AnalysisResult) Warnings() []string {
	return append([]string(nil), a.warnings...)
}

func (a *AnalysisResult) Notes() []string {
	return append([]string(nil), a.notes...)
}

func (a *AnalysisResult) Breaches() []Breach {
	return append([]Breach(nil), a.breaches...)
}

// HasBreach reports whether the result contains a breach for the given
// category and severity pair. The alert dispatcher uses this to decide
// whether a breach is new relative to the previous cycle.
func (a *AnalysisResult) HasBreach(category valueobject.Category, severity valueobject.Severity) bool {
	if a == nil {
		return false
	}
	for _, b := range a.breaches {
		if b.Category == category && b.Severity == severity {
			return true
		}
	}
	return false
}

func (a *AnalysisResult) EvaluatedAt() time.Time {
	return a.evaluatedAt
}
