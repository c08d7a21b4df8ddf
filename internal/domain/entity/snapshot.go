package entity

import (
	"time"

	"github.com/dreschagin/system-diagnostics/internal/domain/valueobject"
	"github.com/google/uuid"
)

// DegradedReason records why a category is missing from a snapshot.
type DegradedReason struct {
	Cause             string
	ElevationRequired bool
}

// Snapshot is one timestamped bundle of all collected host metrics
// (Aggregate Root). It is immutable once constructed: the collecting cycle
// owns it until it is handed to the snapshot cache, and readers only ever see
// copies of its maps.
type Snapshot struct {
	id           string
	timestamp    time.Time
	systemInfo   map[string]string
	readings     map[valueobject.Category]CategoryReading
	degraded     map[valueobject.Category]DegradedReason
	suggestAdmin bool
}

// NewSnapshot assembles a snapshot from one collection cycle. suggestAdmin is
// derived: it is set when any degraded category failed for lack of elevation.
func NewSnapshot(
	timestamp time.Time,
	systemInfo map[string]string,
	readings map[valueobject.Category]CategoryReading,
	degraded map[valueobject.Category]DegradedReason,
) *Snapshot {
	info := make(map[string]string, len(systemInfo))
	for k, v := range systemInfo {
		info[k] = v
	}

	reads := make(map[valueobject.Category]CategoryReading, len(readings))
	for k, v := range readings {
		reads[k] = v
	}

	deg := make(map[valueobject.Category]DegradedReason, len(degraded))
	suggestAdmin := false
	for k, v := range degraded {
		deg[k] = v
		if v.ElevationRequired {
			suggestAdmin = true
		}
	}

	return &Snapshot{
		id:           uuid.New().String(),
		timestamp:    timestamp,
		systemInfo:   info,
		readings:     reads,
		degraded:     deg,
		suggestAdmin: suggestAdmin,
	}
}

func (s *Snapshot) ID() string {
	return s.id
}

func (s *Snapshot) Timestamp() time.Time {
	return s.timestamp
}

func (s *Snapshot) SystemInfo() map[string]string {
	result := make(map[string]string, len(s.systemInfo))
	for k, v := range s.systemInfo {
		result[k] = v
	}
	return result
}

// Reading returns the collected reading for one category, if present.
func (s *Snapshot) Reading(category valueobject.Category) (CategoryReading, bool) {
	r, ok := s.readings[category]
	return r, ok
}

func (s *Snapshot) Readings() map[valueobject.Category]CategoryReading {
	result := make(map[valueobject.Category]CategoryReading, len(s.readings))
	for k, v := range s.readings {
		result[k] = v
	}
	return result
}

// IsDegraded reports whether the category failed or was denied this cycle.
func (s *Snapshot) IsDegraded(category valueobject.Category) (DegradedReason, bool) {
	r, ok := s.degraded[category]
	return r, ok
}

func (s *Snapshot) Degraded() map[valueobject.Category]DegradedReason {
	result := make(map[valueobject.Category]DegradedReason, len(s.degraded))
	for k, v := range s.degraded {
		result[k] = v
	}
	return result
}

// SuggestAdmin reports whether retrying after privilege escalation could
// recover at least one degraded category.
func (s *Snapshot) SuggestAdmin() bool {
	return s.suggestAdmin
}
