package selection

import (
	"sync"

	"github.com/glowpoint/salon-scheduler/internal/model"
)

// Manager hands out one selection controller per browsing user. Each user has
// at most one open detail view; users never share selections.
type Manager struct {
	deleter     Deleter
	invalidator Invalidator

	mu          sync.Mutex
	controllers map[int]*Controller
}

// NewManager returns a manager producing controllers over the shared
// collaborators.
func NewManager(deleter Deleter, invalidator Invalidator) *Manager {
	return &Manager{
		deleter:     deleter,
		invalidator: invalidator,
		controllers: make(map[int]*Controller),
	}
}

// For returns the selection controller of the session's user, creating it on
// first use.
func (m *Manager) For(sess model.Session) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.controllers[sess.UserID]
	if !ok {
		c = New(m.deleter, m.invalidator)
		m.controllers[sess.UserID] = c
	}
	return c
}
