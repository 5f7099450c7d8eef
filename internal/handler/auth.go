package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/martapiotrowska257/projekt-psw/internal/middleware"
	"github.com/martapiotrowska257/projekt-psw/internal/models"
	"github.com/martapiotrowska257/projekt-psw/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler implements register / login / logout.
type AuthHandler struct {
	DB         *gorm.DB
	JWTSecret  string
	CookieName string
	TokenTTL   time.Duration
	BcryptCost int
}

func NewAuthHandler(db *gorm.DB, jwtSecret, cookieName string, ttlHours, bcryptCost int) *AuthHandler {
	if ttlHours <= 0 {
		ttlHours = 7 * 24
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthHandler{
		DB:         db,
		JWTSecret:  jwtSecret,
		CookieName: cookieName,
		TokenTTL:   time.Duration(ttlHours) * time.Hour,
		BcryptCost: bcryptCost,
	}
}

type credentialsReq struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Register creates a new user. Usernames are case-sensitive unique.
func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBind(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if err := util.ValidateUsername(req.Username); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "username and password are required")
		return
	}
	if err := util.ValidatePassword(req.Password); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "username and password are required")
		return
	}

	var count int64
	if err := h.DB.Model(&models.User{}).
		Where("username = ?", req.Username).
		Count(&count).Error; err != nil {
		util.ServerError(c, "failed to check username")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusBadRequest, util.CodeDuplicate, "username already taken")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
	if err != nil {
		util.ServerError(c, "failed to hash password")
		return
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
	}
	if err := h.DB.Create(&user).Error; err != nil {
		util.ServerError(c, "failed to create user")
		return
	}

	c.Redirect(http.StatusFound, "/login")
}

// Login verifies credentials, opens a 7-day login session and sets the auth
// cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBind(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	req.Username = strings.TrimSpace(req.Username)

	var user models.User
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			// same message as a bad password, do not leak which usernames exist
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "wrong username or password")
		} else {
			util.ServerError(c, "failed to load user")
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "wrong username or password")
		return
	}

	now := time.Now()
	login := models.LoginSession{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(h.TokenTTL),
	}
	if err := h.DB.Create(&login).Error; err != nil {
		util.ServerError(c, "failed to create login session")
		return
	}

	token, err := util.GenerateToken(h.JWTSecret, user.ID, login.ID, h.TokenTTL)
	if err != nil {
		util.ServerError(c, "failed to sign token")
		return
	}

	user.LastLoginAt = &now
	user.LastLoginIP = c.ClientIP()
	_ = h.DB.Model(&user).Updates(map[string]interface{}{
		"last_login_at": user.LastLoginAt,
		"last_login_ip": user.LastLoginIP,
	}).Error

	c.SetCookie(h.CookieName, token, int(h.TokenTTL.Seconds()), "/", "", false, true)
	c.Redirect(http.StatusFound, "/sessions")
}

// Logout revokes the caller's login session and clears the cookie. It never
// reports an error to the client.
func (h *AuthHandler) Logout(c *gin.Context) {
	if v, ok := c.Get(middleware.CtxLoginSession); ok {
		if login, ok := v.(*models.LoginSession); ok && login != nil {
			_ = h.DB.Model(login).Update("revoked", true).Error
		}
	}
	c.SetCookie(h.CookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/login")
}
