package dto

import (
	"time"

	"github.com/dreschagin/system-diagnostics/internal/domain/entity"
)

// DiagnosticsDTO is the external representation of one evaluated snapshot.
// It is what /api/current returns and what the WebSocket hub broadcasts.
type DiagnosticsDTO struct {
	Timestamp    time.Time       `json:"timestamp"`
	Diagnostics  DiagnosticsBody `json:"diagnostics"`
	Analysis     AnalysisBody    `json:"analysis"`
	SuggestAdmin bool            `json:"suggest_admin,omitempty"`
}

type DiagnosticsBody struct {
	SystemInfo map[string]string      `json:"system_info"`
	Metrics    map[string]CategoryDTO `json:"metrics"`
	Degraded   map[string]DegradedDTO `json:"degraded,omitempty"`
}

type CategoryDTO struct {
	Values  map[string]float64     `json:"values"`
	Details map[string]interface{} `json:"details,omitempty"`
}

type DegradedDTO struct {
	Cause             string `json:"cause"`
	ElevationRequired bool   `json:"elevation_required"`
}

type AnalysisBody struct {
	Status      string    `json:"status"`
	Warnings    []string  `json:"warnings"`
	Notes       []string  `json:"notes,omitempty"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// FromCycle converts one snapshot/result pair into the transport shape.
func FromCycle(snapshot *entity.Snapshot, result *entity.AnalysisResult) *DiagnosticsDTO {
	metrics := make(map[string]CategoryDTO)
	for category, reading := range snapshot.Readings() {
		metrics[category.String()] = CategoryDTO{
			Values:  reading.Values(),
			Details: reading.Details(),
		}
	}

	degraded := make(map[string]DegradedDTO)
	for category, reason := range snapshot.Degraded() {
		degraded[category.String()] = DegradedDTO{
			Cause:             reason.Cause,
			ElevationRequired: reason.ElevationRequired,
		}
	}
	if len(degraded) == 0 {
		degraded = nil
	}

	warnings := result.Warnings()
	if warnings == nil {
		warnings = []string{}
	}

	return &DiagnosticsDTO{
		Timestamp: snapshot.Timestamp(),
		Diagnostics: DiagnosticsBody{
			SystemInfo: snapshot.SystemInfo(),
			Metrics:    metrics,
			Degraded:   degraded,
		},
		Analysis: AnalysisBody{
			Status:      result.Status().String(),
			Warnings:    warnings,
			Notes:       result.Notes(),
			EvaluatedAt: result.EvaluatedAt(),
		},
		SuggestAdmin: snapshot.SuggestAdmin(),
	}
}
