package instance

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/screen-relay/internal/protocol"
)

// Status is the lifecycle state of a desktop instance (or one of its
// screens).
type Status string

const (
	StatusCreating  Status = "creating"
	StatusConnected Status = "connected"
	StatusStreaming Status = "streaming"
	StatusError     Status = "error"
)

// screenState tracks one screen inside an instance.
type screenState struct {
	status               Status
	producerConnectionID string
}

// desktopInstance is one tracked instance.
type desktopInstance struct {
	id        string
	status    Status
	screens   map[string]*screenState
	createdAt time.Time
}

// Manager owns the desktop-instance table.
type Manager struct {
	logger *slog.Logger

	mu        sync.RWMutex
	instances map[string]*desktopInstance
}

// NewManager creates an empty Manager.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		logger:    logger,
		instances: make(map[string]*desktopInstance),
	}
}

// Create inserts a new instance with status "creating". An empty id is
// replaced with a generated one. Creating an id that already exists is
// a no-op (idempotent on retry); the returned bool reports whether a
// record was inserted.
func (m *Manager) Create(id string) (string, bool) {
	if id == "" {
		id = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.instances[id]; ok {
		return id, false
	}

	m.instances[id] = &desktopInstance{
		id:        id,
		status:    StatusCreating,
		screens:   make(map[string]*screenState),
		createdAt: time.Now(),
	}
	m.logger.Info("desktop instance created", "desktop_id", id)
	return id, true
}

// Remove deletes an instance. Removing an absent id is a no-op; the
// returned bool reports whether a record was deleted.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.instances[id]; !ok {
		return false
	}
	delete(m.instances, id)
	m.logger.Info("desktop instance removed", "desktop_id", id)
	return true
}

// UpdateStatus mutates the matching instance's status and, when
// screenID is given, its screen-level entry. Updates for unknown
// instances are dropped; the returned bool reports whether a record
// was mutated.
func (m *Manager) UpdateStatus(id, screenID string, status Status, producerConnID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.instances[id]
	if !ok {
		m.logger.Warn("status update for unknown desktop instance", "desktop_id", id)
		return false
	}

	inst.status = status
	if screenID != "" {
		screen, ok := inst.screens[screenID]
		if !ok {
			screen = &screenState{}
			inst.screens[screenID] = screen
		}
		screen.status = status
		if producerConnID != "" {
			screen.producerConnectionID = producerConnID
		}
	}
	return true
}

// List returns snapshots of all instances, oldest first.
func (m *Manager) List() []protocol.DesktopInstanceSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snaps := make([]protocol.DesktopInstanceSnapshot, 0, len(m.instances))
	for _, inst := range m.instances {
		screens := make(map[string]protocol.DesktopInstanceScreen, len(inst.screens))
		for sid, s := range inst.screens {
			screens[sid] = protocol.DesktopInstanceScreen{
				Status:               string(s.status),
				ProducerConnectionID: s.producerConnectionID,
			}
		}
		snaps = append(snaps, protocol.DesktopInstanceSnapshot{
			DesktopID: inst.id,
			Status:    string(inst.status),
			Screens:   screens,
			CreatedAt: inst.createdAt.UnixMilli(),
		})
	}

	sort.Slice(snaps, func(i, j int) bool {
		if snaps[i].CreatedAt != snaps[j].CreatedAt {
			return snaps[i].CreatedAt < snaps[j].CreatedAt
		}
		return snaps[i].DesktopID < snaps[j].DesktopID
	})
	return snaps
}

// Len returns the number of tracked instances.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.instances)
}
