package app

import (
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dkeye/Boxcall/internal/domain"
)

var (
	ErrAckTimeout = errors.New("ack timeout")
	ErrNoPeers    = errors.New("no peers to acknowledge")
)

type pendingAck struct {
	ch    chan json.RawMessage
	peers map[domain.ConnID]struct{}
}

// AckTracker correlates server-issued ack ids with the first reply for each.
// Only the peers an id was issued to may answer it.
type AckTracker struct {
	next    atomic.Uint64
	mu      sync.Mutex
	pending map[uint64]*pendingAck
}

func NewAckTracker() *AckTracker {
	return &AckTracker{pending: make(map[uint64]*pendingAck)}
}

// Register reserves a fresh id answerable by peers. The returned channel
// receives at most one value. The caller must Cancel the id once it stops waiting.
func (a *AckTracker) Register(peers []domain.ConnID) (uint64, <-chan json.RawMessage) {
	id := a.next.Add(1)
	p := &pendingAck{ch: make(chan json.RawMessage, 1), peers: peerSet(peers)}
	a.mu.Lock()
	a.pending[id] = p
	a.mu.Unlock()
	return id, p.ch
}

// Restrict narrows the peers of id to those the request actually reached.
func (a *AckTracker) Restrict(id uint64, reached []domain.ConnID) {
	a.mu.Lock()
	if p, ok := a.pending[id]; ok {
		p.peers = peerSet(reached)
	}
	a.mu.Unlock()
}

// Resolve delivers data to the waiter of id. Replies for unknown, expired
// or already answered ids, and replies from outside the peer set, report false.
func (a *AckTracker) Resolve(from domain.ConnID, id uint64, data json.RawMessage) bool {
	a.mu.Lock()
	p, ok := a.pending[id]
	if ok {
		if _, peer := p.peers[from]; !peer {
			a.mu.Unlock()
			return false
		}
		delete(a.pending, id)
	}
	a.mu.Unlock()
	if !ok {
		return false
	}
	p.ch <- data
	return true
}

func (a *AckTracker) Cancel(id uint64) {
	a.mu.Lock()
	delete(a.pending, id)
	a.mu.Unlock()
}

func (a *AckTracker) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

func peerSet(ids []domain.ConnID) map[domain.ConnID]struct{} {
	set := make(map[domain.ConnID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
