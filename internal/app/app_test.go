package app

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/dkeye/Boxcall/internal/core"
	"github.com/dkeye/Boxcall/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connID(s string) domain.ConnID { return domain.ConnID(s) }

type stubConn struct {
	id     domain.ConnID
	mu     sync.Mutex
	frames []core.Frame
	closed bool
}

func (c *stubConn) ID() domain.ConnID { return c.id }

func (c *stubConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("closed")
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *stubConn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func TestMembershipsSetReturnsPrevious(t *testing.T) {
	m := NewMemberships()
	_, had := m.Set("c1", domain.Membership{Topic: "cam1", Origin: "c1"})
	require.False(t, had)

	prev, had := m.Set("c1", domain.Membership{Topic: "cam2", Origin: "d2"})
	require.True(t, had)
	assert.Equal(t, domain.TopicName("cam1"), prev.Topic)

	_, ok := m.RemoveIf("c1", "cam1")
	assert.False(t, ok)
	ms, ok := m.RemoveIf("c1", "cam2")
	require.True(t, ok)
	assert.Equal(t, domain.ConnID("d2"), ms.Origin)

	_, ok = m.Remove("c1")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestAckTrackerFirstReplyWins(t *testing.T) {
	a := NewAckTracker()
	id, ch := a.Register([]domain.ConnID{"p1", "p2"})

	require.True(t, a.Resolve("p1", id, json.RawMessage(`1`)))
	require.False(t, a.Resolve("p2", id, json.RawMessage(`2`)))
	assert.JSONEq(t, `1`, string(<-ch))
	assert.Equal(t, 0, a.Pending())
}

func TestAckTrackerRejectsNonPeers(t *testing.T) {
	a := NewAckTracker()
	id, ch := a.Register([]domain.ConnID{"sender-peer", "slow"})
	a.Restrict(id, []domain.ConnID{"sender-peer"})

	assert.False(t, a.Resolve("outsider", id, json.RawMessage(`"forged"`)))
	assert.False(t, a.Resolve("slow", id, json.RawMessage(`"dropped"`)))
	assert.Equal(t, 1, a.Pending())

	require.True(t, a.Resolve("sender-peer", id, json.RawMessage(`"ok"`)))
	assert.JSONEq(t, `"ok"`, string(<-ch))
}

func TestAckTrackerCancel(t *testing.T) {
	a := NewAckTracker()
	id, _ := a.Register([]domain.ConnID{"p"})
	id2, _ := a.Register([]domain.ConnID{"p"})
	assert.NotEqual(t, id, id2)

	a.Cancel(id)
	assert.False(t, a.Resolve("p", id, nil))
	assert.Equal(t, 1, a.Pending())
}

func TestRoomManagerDropsEmptyRooms(t *testing.T) {
	rm := NewRoomManager()
	rm.Join("cam1", &stubConn{id: "a"})
	rm.Join("cam1", &stubConn{id: "b"})
	rm.GetOrCreate("cam2")

	list := rm.List()
	require.Len(t, list, 2)
	assert.Equal(t, domain.TopicName("cam1"), list[0].Name)
	assert.Equal(t, 2, list[0].MemberCount)

	assert.True(t, rm.Leave("cam1", "a"))
	assert.False(t, rm.Leave("cam1", "a"))
	assert.True(t, rm.Leave("cam1", "b"))
	_, ok := rm.Get("cam1")
	assert.False(t, ok)
	assert.False(t, rm.Leave("missing", "a"))
}

func TestRegistryBindUnbind(t *testing.T) {
	r := NewRegistry()
	canceled := false
	r.Bind(&stubConn{id: "c1"}, "tok", func() { canceled = true })

	conn, ok := r.Get("c1")
	require.True(t, ok)
	assert.Equal(t, domain.ConnID("c1"), conn.ID())

	assert.True(t, r.Cancel("c1"))
	assert.True(t, canceled)
	assert.True(t, r.Unbind("c1"))
	assert.False(t, r.Unbind("c1"))
	assert.False(t, r.Cancel("c1"))
}

func TestPolicyFor(t *testing.T) {
	assert.Equal(t, KickMember, PolicyFor("kick").OnBackPressure(nil))
	assert.Equal(t, DropFrame, PolicyFor("drop").OnBackPressure(nil))
	assert.Equal(t, DropFrame, PolicyFor("").OnBackPressure(nil))
}
