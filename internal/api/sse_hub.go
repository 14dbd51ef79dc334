package api

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"gorepness/app"
	"gorepness/internal"
	"gorepness/internal/errors"

	"github.com/gin-gonic/gin"
)

// SSEHub fans analysis state changes out to Server-Sent Events clients
type SSEHub struct {
	clients    map[chan app.CalculationEvent]bool
	clientsMu  sync.RWMutex
	register   chan chan app.CalculationEvent
	unregister chan chan app.CalculationEvent
	broadcast  chan app.CalculationEvent
	done       chan struct{}
	logger     *internal.Logger
}

// NewSSEHub creates a hub and starts its dispatch loop
func NewSSEHub() *SSEHub {
	hub := &SSEHub{
		clients:    make(map[chan app.CalculationEvent]bool),
		register:   make(chan chan app.CalculationEvent, 10),
		unregister: make(chan chan app.CalculationEvent, 10),
		broadcast:  make(chan app.CalculationEvent, 100),
		done:       make(chan struct{}),
		logger:     internal.DefaultLogger.Component("SSE"),
	}

	go hub.run()
	return hub
}

func (h *SSEHub) run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			h.clients[client] = true
			h.logger.Debug("client registered (total clients: %d)", len(h.clients))
			h.clientsMu.Unlock()

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if h.clients[client] {
				delete(h.clients, client)
				close(client)
				h.logger.Debug("client unregistered (remaining clients: %d)", len(h.clients))
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			for client := range h.clients {
				select {
				case client <- event:
				default:
					h.logger.Warn("client channel full, skipping %s event", event.State)
				}
			}
			h.clientsMu.RUnlock()

		case <-h.done:
			return
		}
	}
}

// Close stops the dispatch loop
func (h *SSEHub) Close() {
	close(h.done)
}

// Broadcast queues an event for every connected client
func (h *SSEHub) Broadcast(event app.CalculationEvent) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("broadcast channel full, dropping %s event", event.State)
	}
}

// CalculationChanged lets the hub listen to the manager directly
func (h *SSEHub) CalculationChanged(event app.CalculationEvent) {
	h.Broadcast(event)
}

// HandleSSE streams analysis events until the client disconnects
func (h *SSEHub) HandleSSE(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	clientChan := make(chan app.CalculationEvent, 10)
	select {
	case h.register <- clientChan:
	default:
		respondError(c, errors.InternalError("SSE hub registration failed"))
		return
	}
	defer func() {
		select {
		case h.unregister <- clientChan:
		default:
		}
	}()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-clientChan:
			if !ok {
				return false
			}
			data, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("failed to marshal event: %v", err)
				return true
			}
			c.SSEvent("analysis", string(data))
			return true

		case <-time.After(30 * time.Second):
			c.SSEvent("ping", `{"status":"alive"}`)
			return true

		case <-ctx.Done():
			return false
		}
	})
}

// ClientCount returns the number of connected clients
func (h *SSEHub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}
