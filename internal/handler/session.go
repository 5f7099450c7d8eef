package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/martapiotrowska257/projekt-psw/internal/middleware"
	"github.com/martapiotrowska257/projekt-psw/internal/models"
	"github.com/martapiotrowska257/projekt-psw/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SessionHandler manages todo-list sessions: creation, listing, membership
// and the caller's current-session selection.
type SessionHandler struct {
	DB *gorm.DB
}

func NewSessionHandler(db *gorm.DB) *SessionHandler {
	return &SessionHandler{DB: db}
}

type createSessionReq struct {
	Name string `json:"name" form:"name"`
	Type string `json:"type" form:"type"`
}

type sessionResp struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	IsPrivate bool   `json:"is_private"`
	OwnerID   uint   `json:"owner_id"`
}

func toSessionResp(s *models.Session) sessionResp {
	return sessionResp{
		ID:        s.ID,
		Name:      s.Name,
		IsPrivate: s.IsPrivate,
		OwnerID:   s.OwnerID,
	}
}

// isMember reports whether the user owns the session or sits in its
// joined-members set.
func isMember(db *gorm.DB, session *models.Session, userID uint) (bool, error) {
	if session.OwnerID == userID {
		return true, nil
	}
	var count int64
	err := db.Table("session_members").
		Where("session_id = ? AND user_id = ?", session.ID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateSession creates a private or group todo list. A private session
// immediately becomes the owner's current session; a group session starts
// with the owner as its only member.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var req createSessionReq
	if err := c.ShouldBind(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := util.ValidateSessionName(req.Name); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "session name is required")
		return
	}
	if err := util.ValidateSessionType(req.Type); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "type must be private or group")
		return
	}

	session := models.Session{
		Name:      req.Name,
		IsPrivate: req.Type == util.SessionTypePrivate,
		OwnerID:   user.ID,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&session).Error; err != nil {
			return err
		}
		if session.IsPrivate {
			// a fresh private session becomes the owner's current session
			return tx.Model(user).Update("current_session_id", session.ID).Error
		}
		return tx.Model(&session).Association("Members").Append(user)
	})
	if err != nil {
		util.ServerError(c, "failed to create session")
		return
	}

	c.JSON(http.StatusCreated, toSessionResp(&session))
}

// ListSessions returns every group session plus every session the caller
// owns, in insertion order.
func (h *SessionHandler) ListSessions(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var sessions []models.Session
	if err := h.DB.
		Where("is_private = ? OR owner_id = ?", false, user.ID).
		Order("id ASC").
		Find(&sessions).Error; err != nil {
		util.ServerError(c, "failed to list sessions")
		return
	}

	resp := make([]sessionResp, 0, len(sessions))
	for i := range sessions {
		resp = append(resp, toSessionResp(&sessions[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// JoinSession adds the caller to a group session's member set. It does not
// change the caller's current session; that is SelectSession's job.
func (h *SessionHandler) JoinSession(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	session, ok := h.findSession(c)
	if !ok {
		return
	}

	if session.IsPrivate {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "cannot join a private session")
		return
	}

	member, err := isMember(h.DB, session, user.ID)
	if err != nil {
		util.ServerError(c, "failed to check membership")
		return
	}
	if member {
		util.Error(c, http.StatusBadRequest, util.CodeAlreadyMember, "already a member of this session")
		return
	}

	if err := h.DB.Model(session).Association("Members").Append(user); err != nil {
		util.ServerError(c, "failed to join session")
		return
	}

	c.JSON(http.StatusOK, toSessionResp(session))
}

// SelectSession makes a session the caller's current one. Owners and joined
// members only.
func (h *SessionHandler) SelectSession(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	session, ok := h.findSession(c)
	if !ok {
		return
	}

	member, err := isMember(h.DB, session, user.ID)
	if err != nil {
		util.ServerError(c, "failed to check membership")
		return
	}
	if !member {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "not a member of this session")
		return
	}

	if err := h.DB.Model(user).Update("current_session_id", session.ID).Error; err != nil {
		util.ServerError(c, "failed to select session")
		return
	}

	c.JSON(http.StatusOK, toSessionResp(session))
}

// DeleteSession removes a session the caller owns, its tasks and its
// membership rows, and clears any dangling current-session pointers.
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	session, ok := h.findSession(c)
	if !ok {
		return
	}

	if session.OwnerID != user.ID {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "only the owner may delete a session")
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", session.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM session_members WHERE session_id = ?", session.ID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).
			Where("current_session_id = ?", session.ID).
			Update("current_session_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(session).Error
	})
	if err != nil {
		util.ServerError(c, "failed to delete session")
		return
	}

	c.JSON(http.StatusOK, toSessionResp(session))
}

// findSession resolves the :id route parameter. On failure it writes the
// error response itself and returns ok=false.
func (h *SessionHandler) findSession(c *gin.Context) (*models.Session, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid session id")
		return nil, false
	}

	var session models.Session
	if err := h.DB.First(&session, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "session not found")
		} else {
			util.ServerError(c, "failed to load session")
		}
		return nil, false
	}
	return &session, true
}
