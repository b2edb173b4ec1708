package form

import (
	"sync"

	"github.com/glowpoint/salon-scheduler/internal/grid"
	"github.com/glowpoint/salon-scheduler/internal/model"
)

// Manager hands out one form controller per browsing user so concurrent
// sessions never see each other's half-filled forms.
type Manager struct {
	api  Creator
	inv  Invalidator
	grid grid.Config

	mu    sync.Mutex
	forms map[int]*Controller
}

// NewManager returns a manager producing controllers over the shared
// collaborators.
func NewManager(api Creator, inv Invalidator, g grid.Config) *Manager {
	return &Manager{api: api, inv: inv, grid: g, forms: make(map[int]*Controller)}
}

// For returns the form controller of the session's user, creating it on
// first use.
func (m *Manager) For(sess model.Session) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.forms[sess.UserID]
	if !ok {
		c = New(m.api, m.inv, m.grid)
		m.forms[sess.UserID] = c
	}
	return c
}
