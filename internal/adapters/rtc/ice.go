package rtc

import (
	"fmt"

	"github.com/dkeye/Boxcall/internal/config"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

func DefaultWebRTCConfig() webrtc.Configuration {
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{
				URLs: []string{"stun:stun.l.google.com:19302"},
			},
		},
	}
}

// ICEConfig converts configured servers, falling back to the public STUN server.
func ICEConfig(servers []config.ICEServer) webrtc.Configuration {
	if len(servers) == 0 {
		return DefaultWebRTCConfig()
	}
	cfg := webrtc.Configuration{ICEServers: make([]webrtc.ICEServer, 0, len(servers))}
	for _, s := range servers {
		srv := webrtc.ICEServer{URLs: s.URLs}
		if s.Username != "" || s.Credential != "" {
			srv.Username = s.Username
			srv.Credential = s.Credential
			srv.CredentialType = webrtc.ICECredentialTypePassword
		}
		cfg.ICEServers = append(cfg.ICEServers, srv)
	}
	return cfg
}

// Validate builds a throwaway peer connection so bad server URLs fail at startup.
func Validate(cfg webrtc.Configuration) error {
	pc, err := webrtc.NewPeerConnection(cfg)
	if err != nil {
		return fmt.Errorf("invalid ice configuration: %w", err)
	}
	if err := pc.Close(); err != nil {
		log.Warn().Err(err).Str("module", "webrtc").Msg("close probe peer connection")
	}
	return nil
}

// ClientConfig is what browsers pass to RTCPeerConnection.
type ClientConfig struct {
	ICEServers []webrtc.ICEServer `json:"iceServers"`
}

func NewClientConfig(cfg webrtc.Configuration) ClientConfig {
	return ClientConfig{ICEServers: cfg.ICEServers}
}
