package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/amgst/mapapp2/internal/catalog"
	"github.com/amgst/mapapp2/internal/design"
	"github.com/amgst/mapapp2/internal/errors"
)

// Manager multiplexes builder sessions for the HTTP and MCP surfaces
// and keeps the preview registry: saved designs addressable by the
// opaque preview id a completed save hands out.
type Manager struct {
	catalog   *catalog.Catalog
	saveDelay time.Duration

	mu       sync.Mutex
	sessions map[string]*Controller
	previews map[string]Snapshot
}

// NewManager creates a Manager. saveDelay applies to every session
// that does not set its own.
func NewManager(cat *catalog.Catalog, saveDelay time.Duration) *Manager {
	return &Manager{
		catalog:   cat,
		saveDelay: saveDelay,
		sessions:  make(map[string]*Controller),
		previews:  make(map[string]Snapshot),
	}
}

// Create starts a new session and returns its id. Missing Config
// fields are filled from the Manager's defaults; each session gets its
// own element store.
func (m *Manager) Create(cfg Config) (string, *Controller) {
	if cfg.Catalog == nil {
		cfg.Catalog = m.catalog
	}
	if cfg.Store == nil {
		cfg.Store = design.NewStore()
	}
	if cfg.SaveDelay == 0 {
		cfg.SaveDelay = m.saveDelay
	}
	ctrl := New(cfg)
	id := uuid.NewString()

	m.mu.Lock()
	m.sessions[id] = ctrl
	m.mu.Unlock()
	return id, ctrl
}

// Get resolves a session id.
func (m *Manager) Get(id string) (*Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctrl, ok := m.sessions[id]
	if !ok {
		return nil, errors.NewNotFound(id)
	}
	return ctrl, nil
}

// Save completes a session's save and, when it routes to a local
// preview, records the finished design under the new preview id.
func (m *Manager) Save(ctx context.Context, id string) (SaveResult, error) {
	ctrl, err := m.Get(id)
	if err != nil {
		return SaveResult{}, err
	}

	result, err := ctrl.Save(ctx)
	if err != nil {
		return SaveResult{}, err
	}
	if result.Outcome == OutcomePreview {
		snap := ctrl.State()
		m.mu.Lock()
		m.previews[result.PreviewSessionID] = snap
		m.mu.Unlock()
	}
	return result, nil
}

// Preview resolves a preview id handed out by a completed save.
func (m *Manager) Preview(previewID string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap, ok := m.previews[previewID]
	if !ok {
		return Snapshot{}, errors.NewNotFound(previewID)
	}
	return snap, nil
}

// Close discards a session. The preview registry is kept: previews
// outlive the editing session that produced them.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
