package app

import (
	"sort"
	"sync"

	"github.com/dkeye/Boxcall/internal/domain"
	"github.com/rs/zerolog/log"
)

// Presence maps live connections to the name they announced.
// One instance tracks human users, another tracks devices.
type Presence struct {
	kind   string
	mu     sync.RWMutex
	byConn map[domain.ConnID]string
}

func NewPresence(kind string) *Presence {
	return &Presence{
		kind:   kind,
		byConn: make(map[domain.ConnID]string),
	}
}

// Add records name for id. The first write wins; Add reports whether it inserted.
func (p *Presence) Add(id domain.ConnID, name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.byConn[id]; ok {
		return false
	}
	p.byConn[id] = name
	log.Info().Str("module", "app.presence").Str("kind", p.kind).Str("conn", string(id)).Str("name", name).Msg("online")
	return true
}

func (p *Presence) Remove(id domain.ConnID) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	name, ok := p.byConn[id]
	if !ok {
		return "", false
	}
	delete(p.byConn, id)
	log.Info().Str("module", "app.presence").Str("kind", p.kind).Str("conn", string(id)).Str("name", name).Msg("offline")
	return name, true
}

func (p *Presence) Get(id domain.ConnID) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	name, ok := p.byConn[id]
	return name, ok
}

// Values returns the distinct names, sorted.
func (p *Presence) Values() []string {
	p.mu.RLock()
	set := make(map[string]struct{}, len(p.byConn))
	for _, name := range p.byConn {
		set[name] = struct{}{}
	}
	p.mu.RUnlock()

	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (p *Presence) Contains(name string) bool {
	_, ok := p.Lookup(name)
	return ok
}

// Lookup finds a connection registered under name. With several matches
// the smallest id is returned so the answer is stable.
func (p *Presence) Lookup(name string) (domain.ConnID, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var found domain.ConnID
	for id, n := range p.byConn {
		if n != name {
			continue
		}
		if found == "" || id < found {
			found = id
		}
	}
	return found, found != ""
}

// Entries is a full snapshot ordered by connection id.
func (p *Presence) Entries() []domain.PresenceEntry {
	p.mu.RLock()
	out := make([]domain.PresenceEntry, 0, len(p.byConn))
	for id, name := range p.byConn {
		out = append(out, domain.PresenceEntry{ID: id, Name: name})
	}
	p.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IDs lists every connection currently present.
func (p *Presence) IDs() []domain.ConnID {
	p.mu.RLock()
	out := make([]domain.ConnID, 0, len(p.byConn))
	for id := range p.byConn {
		out = append(out, id)
	}
	p.mu.RUnlock()
	return out
}

func (p *Presence) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.byConn)
}
