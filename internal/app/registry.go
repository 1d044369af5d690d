package app

import (
	"context"
	"sync"
	"time"

	"github.com/dkeye/Boxcall/internal/core"
	"github.com/dkeye/Boxcall/internal/domain"
	"github.com/rs/zerolog/log"
)

type connEntry struct {
	Conn        core.SignalConnection
	Cancel      context.CancelFunc
	ClientToken string
	ConnectedAt time.Time
}

// Registry holds the transport endpoint of every live connection.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ConnID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[domain.ConnID]*connEntry),
	}
}

func (r *Registry) Bind(conn core.SignalConnection, clientToken string, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn.ID()] = &connEntry{
		Conn:        conn,
		Cancel:      cancel,
		ClientToken: clientToken,
		ConnectedAt: time.Now(),
	}
	log.Info().Str("module", "app.registry").Str("conn", string(conn.ID())).Str("client_token", clientToken).Msg("bound signal")
}

func (r *Registry) Get(id domain.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[id]; ok {
		return e.Conn, true
	}
	return nil, false
}

// Unbind forgets id and reports whether it was bound.
func (r *Registry) Unbind(id domain.ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[id]; !ok {
		return false
	}
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("unbind signal")
	return true
}

// Cancel stops the pumps of id; the read pump then runs the disconnect path.
func (r *Registry) Cancel(id domain.ConnID) bool {
	r.mu.RLock()
	e, ok := r.conns[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("canceled connection")
	return true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
