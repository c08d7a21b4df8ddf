package port

import (
	"context"
	"time"

	"github.com/dreschagin/system-diagnostics/internal/domain/valueobject"
)

// AlertNotification is the channel-independent payload of one alert.
type AlertNotification struct {
	Category  valueobject.Category `json:"category"`
	Severity  valueobject.Severity `json:"severity"`
	Message   string               `json:"message"`
	Timestamp time.Time            `json:"timestamp"`
}

// AlertChannel delivers alerts over one transport (Port). Delivery is
// at-least-once with no retry loop: a failed send surfaces as an error on the
// alert record and the next breach transition is the retry path.
type AlertChannel interface {
	Name() string
	Send(ctx context.Context, notification AlertNotification) error
}
