package router

import (
	"net/http"

	"github.com/martapiotrowska257/projekt-psw/internal/config"
	"github.com/martapiotrowska257/projekt-psw/internal/handler"
	"github.com/martapiotrowska257/projekt-psw/internal/middleware"
	"github.com/martapiotrowska257/projekt-psw/internal/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures Gin engine, templates and static resources.
// The API paths are fixed: existing frontends depend on them.
func SetupRouter(cfg *config.Config, db *gorm.DB, hub *ws.Hub) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// static files and templates
	r.Static("/static", "./web/static")
	r.LoadHTMLGlob("web/templates/*")

	r.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "login.html", gin.H{
			"title": "Todo - sign in",
		})
	})
	r.GET("/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "login.html", gin.H{
			"title": "Todo - sign in",
		})
	})
	r.GET("/sessions", func(c *gin.Context) {
		c.HTML(http.StatusOK, "sessions.html", gin.H{
			"title": "Todo - choose a list",
		})
	})
	r.GET("/board", func(c *gin.Context) {
		c.HTML(http.StatusOK, "board.html", gin.H{
			"title": "Todo - tasks",
		})
	})

	jwtSecret := cfg.JWT.Secret
	cookieName := cfg.JWT.CookieName

	authHandler := handler.NewAuthHandler(db, jwtSecret, cookieName, cfg.JWT.ExpireHours, cfg.Security.BcryptCost)
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)

	// everything below needs a live login session
	protected := r.Group("")
	protected.Use(
		middleware.Auth(jwtSecret, cookieName, db),
		middleware.Audit(db),
	)

	protected.GET("/logout", authHandler.Logout)

	sessionHandler := handler.NewSessionHandler(db)
	protected.GET("/sessionslist", sessionHandler.ListSessions)
	protected.POST("/sessions", sessionHandler.CreateSession)
	protected.POST("/sessions/:id/join", sessionHandler.JoinSession)
	protected.POST("/sessions/:id/select", sessionHandler.SelectSession)
	protected.DELETE("/sessions/:id", sessionHandler.DeleteSession)

	taskHandler := handler.NewTaskHandler(db, hub)
	protected.POST("/todos", taskHandler.CreateTask)
	protected.GET("/todoslist", taskHandler.ListTasks)
	protected.GET("/todos/:id", taskHandler.GetTask)
	protected.PUT("/todos/:id", taskHandler.UpdateTask)
	protected.DELETE("/todos/:id", taskHandler.DeleteTask)

	exportHandler := handler.NewExportHandler(db)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	realtimeHandler := handler.NewRealtimeHandler(db, hub)
	protected.GET("/ws", realtimeHandler.Connect)

	return r
}
