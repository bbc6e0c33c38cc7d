package rtc

import (
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/voicerooms/internal/config"
)

// DefaultICEServers is used when the configuration lists none.
func DefaultICEServers() []webrtc.ICEServer {
	return []webrtc.ICEServer{
		{
			URLs: []string{"stun:stun.l.google.com:19302"},
		},
	}
}

// FromConfig converts configured ICE servers into the shape handed to
// browsers in the your-id message and /api/ice-servers.
func FromConfig(servers []config.ICEServer) []webrtc.ICEServer {
	if len(servers) == 0 {
		return DefaultICEServers()
	}
	out := make([]webrtc.ICEServer, 0, len(servers))
	for _, s := range servers {
		srv := webrtc.ICEServer{
			URLs: append([]string(nil), s.URLs...),
		}
		if s.Username != "" || s.Credential != "" {
			srv.Username = s.Username
			srv.Credential = s.Credential
		}
		out = append(out, srv)
	}
	log.Debug().Str("module", "webrtc").Int("count", len(out)).Msg("ICE servers configured")
	return out
}
