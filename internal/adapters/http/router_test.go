package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/voicerooms/internal/adapters/rtc"
	"github.com/dkeye/voicerooms/internal/adapters/signal"
	"github.com/dkeye/voicerooms/internal/app"
	"github.com/dkeye/voicerooms/internal/app/orch"
	"github.com/dkeye/voicerooms/internal/config"
	"github.com/dkeye/voicerooms/internal/core"
	"github.com/dkeye/voicerooms/internal/domain"
)

type nopConn struct{}

func (nopConn) TrySend(core.Frame) error { return nil }
func (nopConn) Close()                   {}

func newTestRouter(t *testing.T, adminToken string) (*gin.Engine, *orch.Orchestrator) {
	t.Helper()
	static := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(static, "index.html"), []byte("<html>voice</html>"), 0o600))
	return newTestRouterWithStatic(t, adminToken, static)
}

func newTestRouterWithStatic(t *testing.T, adminToken, static string) (*gin.Engine, *orch.Orchestrator) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Mode:       "test",
		StaticPath: static,
		Secret:     "test-secret",
		AdminToken: adminToken,
	}
	sessions := app.NewRegistry()
	policy := app.SimplePolicy{Action: app.DisconnectMember}
	o := &orch.Orchestrator{
		Sessions:   sessions,
		Rooms:      core.NewRegistry(),
		Presence:   &app.Presence{Policy: policy},
		Relay:      &app.Relay{Sessions: sessions, Policy: policy},
		Profile:    domain.DefaultProfile(),
		ICEServers: rtc.DefaultICEServers(),
	}
	ctrl := signal.NewSignalWSController(o, signal.Settings{
		ReadLimit:    1 << 16,
		PingPeriod:   30 * time.Second,
		PongWait:     60 * time.Second,
		WriteWait:    5 * time.Second,
		SendBuffer:   16,
		RateLimit:    100,
		RateInterval: time.Second,
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return SetupRouter(ctx, cfg, o, ctrl), o
}

func seat(t *testing.T, o *orch.Orchestrator, room domain.RoomID, name string) domain.ParticipantID {
	t.Helper()
	sid := o.Connect(nopConn{}, func() {})
	_, err := o.Join(context.Background(), sid, room, name, "")
	require.NoError(t, err)
	return sid
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRootRedirectsToFreshRoom(t *testing.T) {
	r, _ := newTestRouter(t, "")
	w := do(r, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	loc := w.Header().Get("Location")
	assert.True(t, strings.HasPrefix(loc, "/room/"), loc)
	assert.True(t, domain.RoomID(strings.TrimPrefix(loc, "/room/")).Valid())
	assert.Contains(t, w.Header().Get("Set-Cookie"), clientTokenCookie+"=")
}

func TestRoomPageServesIndex(t *testing.T) {
	r, _ := newTestRouter(t, "")
	w := do(r, httptest.NewRequest(http.MethodGet, "/room/abc-defg-hij", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "voice")
}

func TestRoomPageWithoutClient(t *testing.T) {
	r, _ := newTestRouterWithStatic(t, "", t.TempDir())

	w := do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusFound, w.Code)

	w = do(r, httptest.NewRequest(http.MethodGet, w.Header().Get("Location"), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "web client not installed")

	w = do(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t, "")
	w := do(r, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestListRoomsAndMembers(t *testing.T) {
	r, o := newTestRouter(t, "")
	owner := seat(t, o, "room-1", "alice")
	seat(t, o, "room-1", "bob")

	w := do(r, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var rooms struct {
		Rooms []core.RoomInfo `json:"rooms"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rooms))
	require.Len(t, rooms.Rooms, 1)
	assert.Equal(t, domain.RoomID("room-1"), rooms.Rooms[0].ID)
	assert.Equal(t, 2, rooms.Rooms[0].MemberCount)
	assert.Equal(t, owner, rooms.Rooms[0].OwnerID)

	w = do(r, httptest.NewRequest(http.MethodGet, "/api/rooms/room-1/members", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var members struct {
		Members []app.RosterEntry `json:"members"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &members))
	require.Len(t, members.Members, 2)
	assert.Equal(t, "alice", members.Members[0].Name)
	assert.True(t, members.Members[0].IsOwner)
	assert.False(t, members.Members[1].IsOwner)

	w = do(r, httptest.NewRequest(http.MethodGet, "/api/rooms/nope/members", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"room not found"}`, w.Body.String())
}

func TestEvictRoomRequiresAdminToken(t *testing.T) {
	r, o := newTestRouter(t, "")
	seat(t, o, "room-1", "alice")

	w := do(r, httptest.NewRequest(http.MethodDelete, "/api/rooms/room-1", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Len(t, o.Rooms.List(), 1)
}

func TestEvictRoom(t *testing.T) {
	r, o := newTestRouter(t, "s3cret")
	seat(t, o, "room-1", "alice")
	seat(t, o, "room-1", "bob")

	req := httptest.NewRequest(http.MethodDelete, "/api/rooms/room-1", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/rooms/room-1", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	w := do(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"roomId":"room-1","evicted":2}`, w.Body.String())
	assert.Empty(t, o.Rooms.List())
	assert.Equal(t, 0, o.Sessions.Count())

	req = httptest.NewRequest(http.MethodDelete, "/api/rooms/room-1", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	assert.Equal(t, http.StatusNotFound, do(r, req).Code)
}

func TestICEServers(t *testing.T) {
	r, _ := newTestRouter(t, "")
	w := do(r, httptest.NewRequest(http.MethodGet, "/api/ice-servers", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stun:stun.l.google.com:19302")
}

func TestStoreProfile(t *testing.T) {
	r, _ := newTestRouter(t, "")

	w := do(r, httptest.NewRequest(http.MethodPost, "/api/profile", strings.NewReader("nope")))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/profile",
		strings.NewReader(`{"name":"  dave  ","icon":"https://example.com/d.png"}`))
	req.Header.Set("Content-Type", "application/json")
	w = do(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"name":"dave","icon":"https://example.com/d.png"}`, w.Body.String())
	found := false
	for _, c := range w.Result().Cookies() {
		if c.Name == "VoiceSessions" {
			found = true
		}
	}
	assert.True(t, found, "session cookie written")
}

func TestSignalEndpointUpgrades(t *testing.T) {
	r, o := newTestRouter(t, "")
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/signal"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "join", "roomId": "room-ws", "name": "eve"}))
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var m map[string]any
	require.NoError(t, ws.ReadJSON(&m))
	assert.Equal(t, app.TypeYourID, m["type"])
	assert.Eventually(t, func() bool { return len(o.Rooms.List()) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestJoinFallsBackToStoredProfile(t *testing.T) {
	r, _ := newTestRouter(t, "")
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	client := &http.Client{Jar: jar}
	resp, err := client.Post(srv.URL+"/api/profile", "application/json",
		strings.NewReader(`{"name":"carol","icon":"https://example.com/c.png"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	d := websocket.Dialer{Jar: jar, HandshakeTimeout: 2 * time.Second}
	ws, _, err := d.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/ws/signal", nil)
	require.NoError(t, err)
	defer ws.Close()

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "join", "roomId": "room-p"}))
	var roster struct {
		Type    string            `json:"type"`
		Members []app.RosterEntry `json:"members"`
	}
	for roster.Type != app.TypeRoster {
		require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, ws.ReadJSON(&roster))
	}
	require.Len(t, roster.Members, 1)
	assert.Equal(t, "carol", roster.Members[0].Name)
	assert.Equal(t, "https://example.com/c.png", roster.Members[0].Icon)
	assert.True(t, roster.Members[0].IsOwner)
}
