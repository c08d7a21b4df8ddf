package websocket

import (
	"sync"

	"github.com/dreschagin/system-diagnostics/internal/application/dto"
	"github.com/dreschagin/system-diagnostics/internal/domain/entity"
	"github.com/dreschagin/system-diagnostics/pkg/logger"
)

// Hub fans evaluated snapshots and alerts out to connected dashboard
// clients. Implements port.NotificationService.
type Hub struct {
	clients map[*Client]bool

	broadcast      chan *dto.DiagnosticsDTO
	broadcastAlert chan entity.AlertRecord

	register   chan *Client
	unregister chan *Client

	// Protects the clients map
	mu sync.RWMutex

	logger *logger.Logger
}

func NewHub(logger *logger.Logger) *Hub {
	return &Hub{
		clients:        make(map[*Client]bool),
		broadcast:      make(chan *dto.DiagnosticsDTO, 256),
		broadcastAlert: make(chan entity.AlertRecord, 256),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		logger:         logger,
	}
}

// Run drives the hub's event loop. Must run in its own goroutine.
func (h *Hub) Run() {
	h.logger.Info("WebSocket hub started")

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("Client registered", "total_clients", h.ClientCount())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Debug("Client unregistered", "total_clients", h.ClientCount())

		case snapshot := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- Message{Type: "snapshot", Data: snapshot}:
				default:
					// Client can't keep up; drop it
					close(client.send)
					delete(h.clients, client)
					h.logger.Warn("Client channel full, disconnected")
				}
			}
			h.mu.Unlock()

		case record := <-h.broadcastAlert:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- Message{Type: "alert", Data: record}:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
			h.logger.Debug("Alert broadcasted to clients", "severity", record.Severity.String())
		}
	}
}

// Register adds a new client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Broadcast pushes the latest evaluated snapshot to every client.
// Never blocks the collection cycle: if the hub is backed up, the snapshot
// is dropped and clients catch up on the next cycle.
func (h *Hub) Broadcast(snapshot *dto.DiagnosticsDTO) {
	select {
	case h.broadcast <- snapshot:
	default:
		h.logger.Warn("Broadcast channel full, dropping snapshot")
	}
}

// BroadcastAlert pushes one alert record to every client.
func (h *Hub) BroadcastAlert(record entity.AlertRecord) {
	select {
	case h.broadcastAlert <- record:
	default:
		h.logger.Warn("Broadcast alert channel full, dropping alert")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Message is the envelope pushed to clients.
type Message struct {
	Type string      `json:"type"` // "snapshot" or "alert"
	Data interface{} `json:"data"`
}
