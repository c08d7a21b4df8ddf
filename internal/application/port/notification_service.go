package port

import (
	"github.com/dreschagin/system-diagnostics/internal/application/dto"
	"github.com/dreschagin/system-diagnostics/internal/domain/entity"
)

// NotificationService pushes live updates to connected dashboard clients
// (Port). Implemented by the WebSocket hub in the infrastructure layer.
type NotificationService interface {
	// Broadcast pushes the latest evaluated snapshot to every client.
	Broadcast(snapshot *dto.DiagnosticsDTO)

	// BroadcastAlert pushes one alert record to every client.
	BroadcastAlert(record entity.AlertRecord)

	// ClientCount returns the number of connected clients.
	ClientCount() int
}
