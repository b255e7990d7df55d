package websocket

import (
	"context"
	"sync"

	"portfolio/internal/logger"
	"portfolio/internal/rotor"
)

type broadcastMessage struct {
	data  []byte
	event *rotor.Event
}

// HubService keeps track of connected viewers and fans messages and rotor
// events out to all of them.
type HubService struct {
	clients    map[*Viewer]bool
	broadcast  chan broadcastMessage
	register   chan *Viewer
	unregister chan *Viewer
	mutex      sync.RWMutex
	logger     *logger.Logger
	done       chan struct{}
}

func NewHubService(logger *logger.Logger) *HubService {
	return &HubService{
		clients:    make(map[*Viewer]bool),
		broadcast:  make(chan broadcastMessage),
		register:   make(chan *Viewer),
		unregister: make(chan *Viewer),
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Run serves registrations and broadcasts until ctx is cancelled, then
// closes every remaining viewer. Viewers dropped while running are closed on
// their own goroutine, outside the lock.
func (h *HubService) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			remaining := make([]*Viewer, 0, len(h.clients))
			for client := range h.clients {
				delete(h.clients, client)
				remaining = append(remaining, client)
			}
			h.mutex.Unlock()

			var wg sync.WaitGroup
			for _, client := range remaining {
				wg.Add(1)
				go func(v *Viewer) {
					defer wg.Done()
					v.Close()
				}(client)
			}
			wg.Wait()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Viewer %s connected. Total: %d", client.ID(), total)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			go client.Close()
			h.logger.Info("Viewer %s disconnected. Total: %d", client.ID(), total)

		case msg := <-h.broadcast:
			var slow []*Viewer
			h.mutex.Lock()
			for client := range h.clients {
				ok := true
				if msg.data != nil {
					ok = client.Enqueue(msg.data)
				}
				if ok && msg.event != nil {
					ok = client.Dispatch(*msg.event)
				}
				if !ok {
					h.logger.Warning("Dropping slow viewer %s", client.ID())
					delete(h.clients, client)
					slow = append(slow, client)
				}
			}
			h.mutex.Unlock()

			for _, client := range slow {
				go client.Close()
			}
		}
	}
}

// Register adds a viewer. If the hub has stopped the viewer is closed.
func (h *HubService) Register(client *Viewer) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

// Unregister removes and closes a viewer.
func (h *HubService) Unregister(client *Viewer) {
	select {
	case h.unregister <- client:
	case <-h.done:
		client.Close()
	}
}

// Broadcast sends data to every viewer and, when event is non-nil, feeds
// the event to every viewer's rotor.
func (h *HubService) Broadcast(data []byte, event *rotor.Event) {
	select {
	case h.broadcast <- broadcastMessage{data: data, event: event}:
	case <-h.done:
	}
}

// GetClientCount returns the number of registered viewers.
func (h *HubService) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Done is closed when Run returns.
func (h *HubService) Done() <-chan struct{} {
	return h.done
}
