package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	gws "github.com/gorilla/websocket"

	"portfolio/internal/dto"
	"portfolio/internal/logger"
	"portfolio/internal/model"
	"portfolio/internal/rotor"
	"portfolio/internal/service/websocket"
	"portfolio/internal/service/works"
)

// Manager holds the current gallery items and connects viewers to their
// rotors.
type Manager struct {
	source        works.Source
	hub           *websocket.HubService
	rotorConfig   rotor.Config
	frameInterval time.Duration
	logger        *logger.Logger

	mu    sync.RWMutex
	works []model.WorkItem
	items []rotor.Item
}

func NewManager(source works.Source, hub *websocket.HubService, rotorConfig rotor.Config, frameInterval time.Duration, logger *logger.Logger) *Manager {
	return &Manager{
		source:        source,
		hub:           hub,
		rotorConfig:   rotorConfig,
		frameInterval: frameInterval,
		logger:        logger,
	}
}

// Reload fetches the work items from the source and pushes them to every
// connected viewer. On error the previous items stay in place.
func (m *Manager) Reload(ctx context.Context) error {
	list, err := m.source.Load(ctx)
	if err != nil {
		m.logger.Error("Failed to load work items from %s: %v", m.source.Name(), err)
		return fmt.Errorf("failed to load work items: %w", err)
	}

	items := toRotorItems(list)
	msg, err := dto.NewItems(m.displayItems(items))
	if err != nil {
		return fmt.Errorf("failed to encode items: %w", err)
	}

	// held through the broadcast so Attach sees either the old list and
	// this broadcast, or the new list
	m.mu.Lock()
	defer m.mu.Unlock()

	m.works = list
	m.items = items
	m.logger.Info("Loaded %d work items from %s", len(list), m.source.Name())

	m.hub.Broadcast(msg, &rotor.Event{Kind: rotor.EventItems, Items: items})
	return nil
}

// Items returns the current gallery items, before placeholder fallback.
func (m *Manager) Items() []rotor.Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]rotor.Item(nil), m.items...)
}

// Works returns the current work items.
func (m *Manager) Works() []model.WorkItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.WorkItem(nil), m.works...)
}

// Attach starts a viewer session on conn: hello and items messages, a
// running rotor, and hub registration. The caller runs ReadPump and then
// Detach.
func (m *Manager) Attach(ctx context.Context, conn *gws.Conn) (*websocket.Viewer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	viewer := websocket.NewViewer(conn, m.logger)
	r := rotor.New(append([]rotor.Item(nil), m.items...), m.rotorConfig)

	hello, err := dto.NewHello(viewer.ID(), r.Config())
	if err != nil {
		return nil, fmt.Errorf("failed to encode hello: %w", err)
	}
	items, err := dto.NewItems(r.Items())
	if err != nil {
		return nil, fmt.Errorf("failed to encode items: %w", err)
	}

	// queued before the loop starts so they precede the first frame
	viewer.Enqueue(hello)
	viewer.Enqueue(items)

	viewer.Start(ctx, r, m.frameInterval)
	m.hub.Register(viewer)
	return viewer, nil
}

// Detach unregisters and closes a viewer.
func (m *Manager) Detach(viewer *websocket.Viewer) {
	m.hub.Unregister(viewer)
}

// ViewerCount returns the number of connected viewers.
func (m *Manager) ViewerCount() int {
	return m.hub.GetClientCount()
}

func (m *Manager) displayItems(items []rotor.Item) []rotor.Item {
	if len(items) == 0 {
		return rotor.PlaceholderItems()
	}
	return items
}

func toRotorItems(list []model.WorkItem) []rotor.Item {
	items := make([]rotor.Item, 0, len(list))
	for _, w := range list {
		items = append(items, rotor.Item{ImageURL: w.ImageURL, URL: w.URL})
	}
	return items
}
