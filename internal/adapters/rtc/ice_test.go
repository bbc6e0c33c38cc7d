package rtc

import (
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/voicerooms/internal/config"
)

func TestFromConfigEmptyFallsBack(t *testing.T) {
	assert.Equal(t, DefaultICEServers(), FromConfig(nil))
}

func TestFromConfigCopiesCredentials(t *testing.T) {
	in := []config.ICEServer{
		{URLs: []string{"stun:stun.example.com:3478"}},
		{URLs: []string{"turn:turn.example.com:3478"}, Username: "u", Credential: "p"},
	}
	out := FromConfig(in)
	require.Len(t, out, 2)
	assert.Empty(t, out[0].Username)
	assert.Empty(t, out[0].Credential)
	assert.Equal(t, "u", out[1].Username)
	assert.Equal(t, "p", out[1].Credential)

	in[0].URLs[0] = "stun:changed"
	assert.Equal(t, "stun:stun.example.com:3478", out[0].URLs[0])
}

func TestConfigurationAcceptedByPion(t *testing.T) {
	servers := FromConfig([]config.ICEServer{
		{URLs: []string{"turn:turn.example.com:3478?transport=udp"}, Username: "u", Credential: "p"},
	})
	api := webrtc.NewAPI()
	pc, err := api.NewPeerConnection(webrtc.Configuration{ICEServers: servers})
	require.NoError(t, err)
	assert.NoError(t, pc.Close())
}
