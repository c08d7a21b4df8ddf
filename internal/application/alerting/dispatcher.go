package alerting

import (
	"context"
	"time"

	"github.com/dreschagin/system-diagnostics/internal/application/port"
	"github.com/dreschagin/system-diagnostics/internal/domain/entity"
	"github.com/dreschagin/system-diagnostics/pkg/logger"
)

// Dispatcher turns analysis breaches into notifications on the configured
// channels. Alerts are edge-triggered: a breach fires only when the previous
// cycle did not contain the same (category, severity) pair, so a condition
// that stays bad produces one alert when it starts and nothing while it
// persists. Once the breach clears for a cycle, the next occurrence fires
// again.
//
// The dispatcher is stateless; the caller supplies the previous result. It
// runs on the collection goroutine, so Dispatch is never called concurrently.
type Dispatcher struct {
	channels    []port.AlertChannel
	sendTimeout time.Duration
	logger      *logger.Logger
}

func NewDispatcher(channels []port.AlertChannel, sendTimeout time.Duration, log *logger.Logger) *Dispatcher {
	if sendTimeout <= 0 {
		sendTimeout = 15 * time.Second
	}
	return &Dispatcher{
		channels:    channels,
		sendTimeout: sendTimeout,
		logger:      log,
	}
}

// Dispatch sends alerts for every breach in result that is new relative to
// previous. previous may be nil (first cycle); then every breach is new.
// Channel failures are recorded on the returned records, never returned as
// errors: one dead SMTP server must not block the webhook.
func (d *Dispatcher) Dispatch(ctx context.Context, result *entity.AnalysisResult, previous *entity.AnalysisResult) []entity.AlertRecord {
	if result == nil || len(d.channels) == 0 {
		return nil
	}

	var records []entity.AlertRecord
	seen := make(map[string]bool)

	for _, breach := range result.Breaches() {
		key := entity.AlertDedupKey(breach.Category, breach.Severity)
		if seen[key] {
			// Multiple breaches can share a (category, severity) pair,
			// e.g. two mounts over the disk threshold. One alert per pair
			// per cycle.
			continue
		}
		seen[key] = true

		if previous.HasBreach(breach.Category, breach.Severity) {
			d.logger.Debug("Breach still active, alert suppressed", "key", key)
			continue
		}

		records = append(records, d.send(ctx, breach)...)
	}

	return records
}

// send delivers one breach to every channel independently.
func (d *Dispatcher) send(ctx context.Context, breach entity.Breach) []entity.AlertRecord {
	notification := port.AlertNotification{
		Category:  breach.Category,
		Severity:  breach.Severity,
		Message:   breach.Message,
		Timestamp: time.Now(),
	}

	records := make([]entity.AlertRecord, 0, len(d.channels))
	for _, ch := range d.channels {
		sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
		err := ch.Send(sendCtx, notification)
		cancel()

		if err != nil {
			d.logger.Error("Alert delivery failed", err, "channel", ch.Name(), "category", breach.Category.String())
		} else {
			d.logger.Info("Alert sent", "channel", ch.Name(), "category", breach.Category.String(), "severity", breach.Severity.String())
		}
		records = append(records, entity.NewAlertRecord(ch.Name(), breach, notification.Timestamp, err))
	}
	return records
}
