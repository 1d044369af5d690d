package app

import (
	"sync"

	"github.com/dkeye/Boxcall/internal/domain"
)

// Memberships records the single topic each connection is bound to.
// The orchestrator keeps it in step with the rooms.
type Memberships struct {
	mu     sync.RWMutex
	byConn map[domain.ConnID]domain.Membership
}

func NewMemberships() *Memberships {
	return &Memberships{byConn: make(map[domain.ConnID]domain.Membership)}
}

func (m *Memberships) Get(id domain.ConnID) (domain.Membership, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ms, ok := m.byConn[id]
	return ms, ok
}

// Set stores ms and returns the binding it replaced, if any.
func (m *Memberships) Set(id domain.ConnID, ms domain.Membership) (domain.Membership, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.byConn[id]
	m.byConn[id] = ms
	return prev, ok
}

// Remove deletes the binding of id. Only one caller ever observes ok == true.
func (m *Memberships) Remove(id domain.ConnID) (domain.Membership, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.byConn[id]
	if ok {
		delete(m.byConn, id)
	}
	return ms, ok
}

// RemoveIf deletes the binding of id only when it points at topic.
func (m *Memberships) RemoveIf(id domain.ConnID, topic domain.TopicName) (domain.Membership, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.byConn[id]
	if !ok || ms.Topic != topic {
		return domain.Membership{}, false
	}
	delete(m.byConn, id)
	return ms, true
}

func (m *Memberships) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byConn)
}
