package http

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/voicerooms/internal/adapters/signal"
	"github.com/dkeye/voicerooms/internal/app"
	"github.com/dkeye/voicerooms/internal/app/orch"
	"github.com/dkeye/voicerooms/internal/domain"
)

type handlers struct {
	orch       *orch.Orchestrator
	adminToken string
}

type profileRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

func (h *handlers) redirectToNewRoom(c *gin.Context) {
	c.Redirect(http.StatusFound, "/room/"+string(domain.NewRoomID()))
}

// roomPage serves the browser client. The client is deployed separately
// into static_path; without it the API and signaling still work.
func (h *handlers) roomPage(index string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := os.Stat(index); err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error":  "web client not installed",
				"roomId": c.Param("roomId"),
			})
			return
		}
		c.File(index)
	}
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) listRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.orch.Rooms.List()})
}

func (h *handlers) roomMembers(c *gin.Context) {
	roomID := domain.RoomID(c.Param("id"))
	members, err := h.orch.Rooms.Snapshot(roomID)
	if errors.Is(err, domain.ErrRoomNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"roomId": roomID, "members": app.RosterOf(members)})
}

// evictRoom answers 404 unless an admin token is configured.
func (h *handlers) evictRoom(c *gin.Context) {
	if h.adminToken == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(h.adminToken)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	roomID := domain.RoomID(c.Param("id"))
	n, err := h.orch.EvictRoom(c.Request.Context(), roomID)
	if errors.Is(err, domain.ErrRoomNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	log.Info().Str("module", "adapters.http").Str("room", string(roomID)).Int("evicted", n).Msg("room evicted by admin")
	c.JSON(http.StatusOK, gin.H{"roomId": roomID, "evicted": n})
}

func (h *handlers) iceServers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"iceServers": h.orch.ICEServers})
}

func (h *handlers) storeProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_payload"})
		return
	}
	p := domain.NewParticipant("", req.Name, req.Icon, h.orch.Profile)
	if err := signal.StoreProfile(c, signal.Profile{Name: p.DisplayName, Icon: p.Icon}); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("store profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": p.DisplayName, "icon": p.Icon})
}
