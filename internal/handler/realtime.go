package handler

import (
	"net/http"

	"github.com/martapiotrowska257/projekt-psw/internal/middleware"
	"github.com/martapiotrowska257/projekt-psw/internal/util"
	"github.com/martapiotrowska257/projekt-psw/internal/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RealtimeHandler upgrades authenticated clients to a websocket subscribed
// to every session they belong to.
type RealtimeHandler struct {
	DB  *gorm.DB
	Hub *ws.Hub
}

func NewRealtimeHandler(db *gorm.DB, hub *ws.Hub) *RealtimeHandler {
	return &RealtimeHandler{DB: db, Hub: hub}
}

// memberSessionIDs returns the ids of every session the user owns or joined.
func (h *RealtimeHandler) memberSessionIDs(userID uint) ([]uint, error) {
	var owned []uint
	if err := h.DB.Table("sessions").
		Where("owner_id = ?", userID).
		Pluck("id", &owned).Error; err != nil {
		return nil, err
	}

	var joined []uint
	if err := h.DB.Table("session_members").
		Where("user_id = ?", userID).
		Pluck("session_id", &joined).Error; err != nil {
		return nil, err
	}

	seen := make(map[uint]struct{}, len(owned)+len(joined))
	ids := make([]uint, 0, len(owned)+len(joined))
	for _, id := range append(owned, joined...) {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

// Connect handles GET /ws.
func (h *RealtimeHandler) Connect(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	ids, err := h.memberSessionIDs(user.ID)
	if err != nil {
		util.ServerError(c, "failed to resolve sessions")
		return
	}

	if err := h.Hub.Serve(c.Writer, c.Request, ids); err != nil {
		// Upgrade already wrote its own error response
		return
	}
}
