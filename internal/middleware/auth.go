package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/martapiotrowska257/projekt-psw/internal/models"
	"github.com/martapiotrowska257/projekt-psw/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// context keys set by Auth
const (
	CtxUser         = "currentUser"
	CtxLoginSession = "loginSession"
)

// Auth verifies the request token and puts the current user and its login
// session row into the gin context. The token is read from the auth cookie
// first (the normal browser flow), then the Authorization header, then the
// token query parameter (websocket clients cannot set headers).
func Auth(jwtSecret, cookieName string, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		if cookie, err := c.Cookie(cookieName); err == nil {
			tokenStr = cookie
		}

		if tokenStr == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
					tokenStr = parts[1]
				}
			}
		}

		if tokenStr == "" {
			tokenStr = c.Query("token")
		}

		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
			c.Abort()
			return
		}

		claims, err := util.ParseToken(jwtSecret, tokenStr)
		if err != nil || claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "login expired, please sign in again")
			c.Abort()
			return
		}

		// the token alone is not enough: the login session row must still be
		// live, so an explicit logout invalidates outstanding tokens
		var login models.LoginSession
		if err := db.First(&login, "id = ?", claims.SessionID).Error; err != nil {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "login expired, please sign in again")
			c.Abort()
			return
		}
		if login.Revoked || login.ExpiresAt.Before(time.Now()) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "login expired, please sign in again")
			c.Abort()
			return
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				util.Error(c, http.StatusUnauthorized, util.CodeAuth, "user does not exist")
			} else {
				util.ServerError(c, "failed to load user")
			}
			c.Abort()
			return
		}

		c.Set(CtxUser, &user)
		c.Set(CtxLoginSession, &login)
		c.Next()
	}
}

// CurrentUser pulls the authenticated user out of the context.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(CtxUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}
