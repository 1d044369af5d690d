package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnIDShape(t *testing.T) {
	seen := make(map[ConnID]struct{})
	for i := 0; i < 100; i++ {
		id := NewConnID()
		require.Len(t, string(id), ConnIDLen)
		require.True(t, ValidConnID(string(id)))
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestValidConnID(t *testing.T) {
	assert.False(t, ValidConnID(""))
	assert.False(t, ValidConnID("short"))
	assert.False(t, ValidConnID(strings.Repeat("a", 17)))
	assert.True(t, ValidConnID(strings.Repeat("a", 16)))
}

func TestValidateUsername(t *testing.T) {
	assert.ErrorIs(t, ValidateUsername("  "), ErrUsernameEmpty)
	assert.ErrorIs(t, ValidateUsername(strings.Repeat("x", MaxUsernameLen+1)), ErrUsernameTooLong)
	assert.NoError(t, ValidateUsername("alice"))
}

func TestValidateDevice(t *testing.T) {
	assert.ErrorIs(t, ValidateDevice(""), ErrDeviceEmpty)
	assert.ErrorIs(t, ValidateDevice(strings.Repeat("x", MaxDeviceLen+1)), ErrDeviceTooLong)
	assert.NoError(t, ValidateDevice("cam1"))
}
