package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"gundetect/internal/config"
	"gundetect/internal/dto"
	"gundetect/internal/logger"

	"github.com/gorilla/websocket"
)

// writeWait bounds a single write to one viewer.
const writeWait = 10 * time.Second

// HubService fans alert events out to every connected viewer.
type HubService struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	mutex      sync.RWMutex
	writeWait  time.Duration
	logger     *logger.Logger
}

func NewHubService(config *config.Config, logger *logger.Logger) *HubService {
	buffer := config.AlertFeedBuffer
	if buffer < 1 {
		buffer = 1
	}

	return &HubService{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, buffer),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		writeWait:  writeWait,
		logger:     logger,
	}
}

// Run processes registrations and broadcasts until Stop is called.
func (h *HubService) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Viewer connected. Total: %d", count)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Viewer disconnected. Total: %d", count)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				client.SetWriteDeadline(time.Now().Add(h.writeWait))
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					h.logger.Error("Error sending alert to viewer: %v", err)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mutex.Unlock()

		case <-h.done:
			h.mutex.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return
		}
	}
}

// Stop ends Run and closes every viewer connection.
func (h *HubService) Stop() {
	close(h.done)
}

func (h *HubService) Register(client *websocket.Conn) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

func (h *HubService) Unregister(client *websocket.Conn) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues a message for all viewers. When the queue is full the
// message is dropped so request handling never waits on slow viewers.
func (h *HubService) Broadcast(message []byte) bool {
	select {
	case h.broadcast <- message:
		return true
	default:
		h.logger.Warning("Alert feed queue full - dropping message")
		return false
	}
}

// PublishAlert encodes an alert event and broadcasts it.
func (h *HubService) PublishAlert(event dto.AlertEvent) {
	message, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Error encoding alert event %s: %v", event.ID, err)
		return
	}
	h.Broadcast(message)
}
