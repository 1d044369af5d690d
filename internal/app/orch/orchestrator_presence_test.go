package orch

import (
	"encoding/json"
	"testing"

	"github.com/dkeye/Boxcall/internal/core"
	"github.com/dkeye/Boxcall/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifyNotifiesOthers(t *testing.T) {
	o := newTestOrch(t)
	alice, bob := connect(o), connect(o)
	require.NoError(t, o.Identify(alice.id, "alice"))
	alice.reset()

	require.NoError(t, o.Identify(bob.id, "bob"))

	online := alice.events(t, core.EventUserOnline)
	require.Len(t, online, 1)
	var entry domain.PresenceEntry
	require.NoError(t, json.Unmarshal(online[0].Data, &entry))
	assert.Equal(t, domain.PresenceEntry{ID: bob.id, Name: "bob"}, entry)

	assert.Empty(t, bob.events(t, core.EventUserOnline))
	refresh := bob.events(t, core.EventRefreshUsers)
	require.Len(t, refresh, 1)
	var snapshot []domain.PresenceEntry
	require.NoError(t, json.Unmarshal(refresh[0].Data, &snapshot))
	assert.Len(t, snapshot, 2)
}

func TestIdentifyTwiceAnnouncesStoredName(t *testing.T) {
	o := newTestOrch(t)
	alice, bob := connect(o), connect(o)
	require.NoError(t, o.Identify(alice.id, "alice"))
	require.NoError(t, o.Identify(bob.id, "bob"))
	alice.reset()

	require.NoError(t, o.Identify(bob.id, "robert"))

	online := alice.events(t, core.EventUserOnline)
	require.Len(t, online, 1)
	var entry domain.PresenceEntry
	require.NoError(t, json.Unmarshal(online[0].Data, &entry))
	assert.Equal(t, domain.PresenceEntry{ID: bob.id, Name: "bob"}, entry)

	name, ok := o.Users.Get(bob.id)
	require.True(t, ok)
	assert.Equal(t, "bob", name)
}

func TestIdentifyRejectsDeviceAndInvalidName(t *testing.T) {
	o := newTestOrch(t)
	dev := connect(o)
	require.NoError(t, o.Find(dev.id, "cam"))
	require.ErrorIs(t, o.Identify(dev.id, "bob"), ErrRoleConflict)
	require.ErrorIs(t, o.Identify(dev.id, ""), domain.ErrUsernameEmpty)
	assert.Equal(t, 0, o.Users.Len())

	user := connect(o)
	require.NoError(t, o.Identify(user.id, "bob"))
	require.ErrorIs(t, o.Find(user.id, "cam2"), ErrRoleConflict)
	assert.False(t, o.Devices.Contains("cam2"))
}

func TestSignoutNotifiesOthers(t *testing.T) {
	o := newTestOrch(t)
	alice, bob := connect(o), connect(o)
	require.NoError(t, o.Identify(alice.id, "alice"))
	require.NoError(t, o.Identify(bob.id, "bob"))

	o.Signout(bob.id)
	o.Signout(bob.id)

	off := alice.events(t, core.EventUserOffline)
	require.Len(t, off, 1)
	assert.JSONEq(t, `"`+string(bob.id)+`"`, string(off[0].Data))
	assert.Empty(t, bob.events(t, core.EventUserOffline))
	assert.Equal(t, 1, o.Users.Len())
}

func TestWhoAmI(t *testing.T) {
	o := newTestOrch(t)
	dev := connect(o)
	assert.Equal(t, Identity{ID: dev.id}, o.WhoAmI(dev.id))

	require.NoError(t, o.Find(dev.id, "cam"))
	assert.Equal(t, Identity{ID: dev.id, Device: "cam", Topic: "cam"}, o.WhoAmI(dev.id))
}
