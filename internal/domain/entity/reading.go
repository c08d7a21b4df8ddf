package entity

import (
	"github.com/dreschagin/system-diagnostics/internal/domain/valueobject"
)

// CategoryReading holds one category's collected values for a single cycle.
// Values carries the numeric readings the analyzer evaluates; the keys are
// category-specific:
//
//	cpu:     usage_percent, optionally temperature_c
//	memory:  usage_percent, swap_percent
//	disk:    one key per mountpoint, value is used percent
//	network: sent_kbps, recv_kbps
//	sensors: one key per sensor/zone, value is degrees Celsius
//
// Details carries non-evaluated metadata (core counts, byte totals, ...).
type CategoryReading struct {
	category valueobject.Category
	values   map[string]float64
	details  map[string]interface{}
}

// NewCategoryReading copies both maps so the reading is immutable afterwards.
func NewCategoryReading(category valueobject.Category, values map[string]float64, details map[string]interface{}) (CategoryReading, error) {
	if err := category.Validate(); err != nil {
		return CategoryReading{}, err
	}

	copied := make(map[string]float64, len(values))
	for k, v := range values {
		copied[k] = v
	}

	copiedDetails := make(map[string]interface{}, len(details))
	for k, v := range details {
		copiedDetails[k] = v
	}

	return CategoryReading{
		category: category,
		values:   copied,
		details:  copiedDetails,
	}, nil
}

func (r CategoryReading) Category() valueobject.Category {
	return r.category
}

// Value returns a single named reading.
func (r CategoryReading) Value(key string) (float64, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Values returns a copy of all numeric readings.
func (r CategoryReading) Values() map[string]float64 {
	result := make(map[string]float64, len(r.values))
	for k, v := range r.values {
		result[k] = v
	}
	return result
}

// Details returns a copy of the metadata map.
func (r CategoryReading) Details() map[string]interface{} {
	result := make(map[string]interface{}, len(r.details))
	for k, v := range r.details {
		result[k] = v
	}
	return result
}
