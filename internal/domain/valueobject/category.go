package valueobject

import "errors"

// Category identifies one group of host metrics (Value Object).
type Category string

const (
	CPU     Category = "cpu"
	Memory  Category = "memory"
	Disk    Category = "disk"
	Network Category = "network"
	Sensors Category = "sensors"
)

// Validate checks that the category is one of the known variants.
func (c Category) Validate() error {
	switch c {
	case CPU, Memory, Disk, Network, Sensors:
		return nil
	default:
		return errors.New("invalid metric category")
	}
}

func (c Category) String() string {
	return string(c)
}

// AllCategories returns every category in declaration order. The analyzer
// walks this slice so that warning output is deterministic regardless of
// collection order.
func AllCategories() []Category {
	return []Category{CPU, Memory, Disk, Network, Sensors}
}
