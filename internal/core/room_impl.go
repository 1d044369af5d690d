package core

import (
	"maps"
	"sort"
	"sync"

	"github.com/dkeye/Boxcall/internal/domain"
	"github.com/rs/zerolog/log"
)

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	room    *domain.Room
	mu      sync.RWMutex
	members map[domain.ConnID]SignalConnection
}

func NewRoomService(room *domain.Room) RoomService {
	return &roomImpl{
		room:    room,
		members: make(map[domain.ConnID]SignalConnection),
	}
}

func (r *roomImpl) Room() *domain.Room { return r.room }

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

func (r *roomImpl) Has(id domain.ConnID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[id]
	return ok
}

func (r *roomImpl) Members() []domain.ConnID {
	r.mu.RLock()
	out := make([]domain.ConnID, 0, len(r.members))
	for id := range r.members {
		out = append(out, id)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r *roomImpl) AddMember(conn SignalConnection) {
	r.mu.Lock()
	r.members[conn.ID()] = conn
	r.mu.Unlock()
	log.Debug().Str("module", "core.room").Str("topic", string(r.room.Name)).Str("conn", string(conn.ID())).Msg("member added")
}

func (r *roomImpl) RemoveMember(id domain.ConnID) bool {
	r.mu.Lock()
	_, ok := r.members[id]
	delete(r.members, id)
	r.mu.Unlock()
	if ok {
		log.Debug().Str("module", "core.room").Str("topic", string(r.room.Name)).Str("conn", string(id)).Msg("member removed")
	}
	return ok
}

func (r *roomImpl) Broadcast(from domain.ConnID, data Frame, includeSelf bool) PublishResult {
	r.mu.RLock()
	snapshot := maps.Clone(r.members)
	r.mu.RUnlock()

	// Sends happen outside the lock; TrySend never blocks on a slow peer.
	res := PublishResult{}
	for id, m := range snapshot {
		if id == from && !includeSelf {
			continue
		}
		if err := m.TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, m)
			continue
		}
		res.SendTo++
		res.Reached = append(res.Reached, id)
	}
	log.Debug().Str("module", "core.room").Str("topic", string(r.room.Name)).Str("from", string(from)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}
