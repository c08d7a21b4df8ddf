package valueobject

import "errors"

// Thresholds holds the per-category maxima the analyzer evaluates readings
// against (Value Object). Immutable after construction.
type Thresholds struct {
	CPUUsageMax    float64
	CPUTempMax     float64
	MemoryUsageMax float64
	DiskUsageMax   float64
	SensorTempMax  float64
}

// DefaultThresholds mirrors the shipped configuration defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CPUUsageMax:    90,
		CPUTempMax:     85,
		MemoryUsageMax: 90,
		DiskUsageMax:   90,
		SensorTempMax:  85,
	}
}

func (t Thresholds) Validate() error {
	values := []float64{t.CPUUsageMax, t.CPUTempMax, t.MemoryUsageMax, t.DiskUsageMax, t.SensorTempMax}
	for _, v := range values {
		if v <= 0 {
			return errors.New("thresholds must be positive")
		}
	}
	return nil
}
