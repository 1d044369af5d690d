package rtc

import (
	"encoding/json"
	"testing"

	"github.com/dkeye/Boxcall/internal/config"
	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestICEConfigDefaults(t *testing.T) {
	assert.Equal(t, DefaultWebRTCConfig(), ICEConfig(nil))
}

func TestICEConfigWithCredentials(t *testing.T) {
	cfg := ICEConfig([]config.ICEServer{
		{URLs: []string{"stun:stun.example.com:3478"}},
		{URLs: []string{"turn:turn.example.com:3478"}, Username: "u", Credential: "p"},
	})
	require.Len(t, cfg.ICEServers, 2)
	assert.Empty(t, cfg.ICEServers[0].Username)
	assert.Equal(t, "u", cfg.ICEServers[1].Username)
	assert.Equal(t, "p", cfg.ICEServers[1].Credential)
	assert.Equal(t, webrtc.ICECredentialTypePassword, cfg.ICEServers[1].CredentialType)

	require.NoError(t, Validate(cfg))
}

func TestValidateRejectsBadURL(t *testing.T) {
	cfg := ICEConfig([]config.ICEServer{{URLs: []string{"http://not-ice"}}})
	require.Error(t, Validate(cfg))
}

func TestClientConfigJSON(t *testing.T) {
	body, err := json.Marshal(NewClientConfig(DefaultWebRTCConfig()))
	require.NoError(t, err)

	var decoded struct {
		ICEServers []struct {
			URLs []string `json:"urls"`
		} `json:"iceServers"`
	}
	require.NoError(t, json.Unmarshal(body, &decoded))
	require.Len(t, decoded.ICEServers, 1)
	assert.Equal(t, []string{"stun:stun.l.google.com:19302"}, decoded.ICEServers[0].URLs)
}
