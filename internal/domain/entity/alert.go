package entity

import (
	"fmt"
	"time"

	"github.com/dreschagin/system-diagnostics/internal/domain/valueobject"
	"github.com/google/uuid"
)

// AlertRecord documents one delivery attempt of one alert to one channel.
// Records are append-only: once created they are never mutated.
type AlertRecord struct {
	ID       string               `json:"id"`
	Channel  string               `json:"channel"`
	Category valueobject.Category `json:"category"`
	Severity valueobject.Severity `json:"severity"`
	Message  string               `json:"message"`
	DedupKey string               `json:"dedup_key"`
	SentAt   time.Time            `json:"sent_at"`
	// DeliveryError is empty when the channel accepted the alert.
	DeliveryError string `json:"delivery_error,omitempty"`
}

// NewAlertRecord stamps a record for one channel delivery attempt.
func NewAlertRecord(channel string, breach Breach, sentAt time.Time, deliveryErr error) AlertRecord {
	rec := AlertRecord{
		ID:       uuid.New().String(),
		Channel:  channel,
		Category: breach.Category,
		Severity: breach.Severity,
		Message:  breach.Message,
		DedupKey: AlertDedupKey(breach.Category, breach.Severity),
		SentAt:   sentAt,
	}
	if deliveryErr != nil {
		rec.DeliveryError = deliveryErr.Error()
	}
	return rec
}

// AlertDedupKey is the suppression identity of a breach: alerts for the same
// (category, severity) pair are deduplicated until the breach clears.
func AlertDedupKey(category valueobject.Category, severity valueobject.Severity) string {
	return fmt.Sprintf("%s:%s", category, severity)
}

// Delivered reports whether the channel accepted the alert.
func (r AlertRecord) Delivered() bool {
	return r.DeliveryError == ""
}
