package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/martapiotrowska257/projekt-psw/internal/database"
	"github.com/martapiotrowska257/projekt-psw/internal/middleware"
	"github.com/martapiotrowska257/projekt-psw/internal/ws"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testSecret = "test-secret"
	testCookie = "psw_token"
)

// testEnv is one service instance over an in-memory database.
type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	hub    *ws.Hub
}

// newTestEnv wires the real handlers and middleware against a fresh
// in-memory SQLite database, without the page/static layer.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// a named shared in-memory db, isolated per test
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	hub := ws.NewHub()

	r := gin.New()
	authHandler := NewAuthHandler(db, testSecret, testCookie, 168, bcrypt.MinCost)
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)

	protected := r.Group("", middleware.Auth(testSecret, testCookie, db))
	protected.GET("/logout", authHandler.Logout)

	sessionHandler := NewSessionHandler(db)
	protected.GET("/sessionslist", sessionHandler.ListSessions)
	protected.POST("/sessions", sessionHandler.CreateSession)
	protected.POST("/sessions/:id/join", sessionHandler.JoinSession)
	protected.POST("/sessions/:id/select", sessionHandler.SelectSession)
	protected.DELETE("/sessions/:id", sessionHandler.DeleteSession)

	taskHandler := NewTaskHandler(db, hub)
	protected.POST("/todos", taskHandler.CreateTask)
	protected.GET("/todoslist", taskHandler.ListTasks)
	protected.GET("/todos/:id", taskHandler.GetTask)
	protected.PUT("/todos/:id", taskHandler.UpdateTask)
	protected.DELETE("/todos/:id", taskHandler.DeleteTask)

	exportHandler := NewExportHandler(db)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	realtimeHandler := NewRealtimeHandler(db, hub)
	protected.GET("/ws", realtimeHandler.Connect)

	return &testEnv{router: r, db: db, hub: hub}
}

// do performs one request. A non-empty token is sent as the auth cookie,
// a non-nil body as JSON.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// signup registers a user and logs in, returning the auth token.
func (e *testEnv) signup(t *testing.T, username, password string) string {
	t.Helper()

	w := e.do(t, http.MethodPost, "/register", "", map[string]string{
		"username": username,
		"password": password,
	})
	if w.Code != http.StatusFound {
		t.Fatalf("register %q: status = %d, want 302 (%s)", username, w.Code, w.Body.String())
	}

	return e.login(t, username, password)
}

// login authenticates an existing user, returning the auth token.
func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()

	w := e.do(t, http.MethodPost, "/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if w.Code != http.StatusFound {
		t.Fatalf("login %q: status = %d, want 302 (%s)", username, w.Code, w.Body.String())
	}

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == testCookie && cookie.Value != "" {
			return cookie.Value
		}
	}
	t.Fatalf("login %q: no %s cookie set", username, testCookie)
	return ""
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

// createSession makes a todo-list session and returns its id.
func (e *testEnv) createSession(t *testing.T, token, name, sessionType string) uint {
	t.Helper()

	w := e.do(t, http.MethodPost, "/sessions", token, map[string]string{
		"name": name,
		"type": sessionType,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create session %q: status = %d, want 201 (%s)", name, w.Code, w.Body.String())
	}

	var resp sessionResp
	decode(t, w, &resp)
	return resp.ID
}

// sessionPath builds /sessions/:id[/op] routes.
func sessionPath(id uint, op string) string {
	path := fmt.Sprintf("/sessions/%d", id)
	if op != "" {
		path += "/" + op
	}
	return path
}

// taskPath builds /todos/:id routes.
func taskPath(id uint) string {
	return fmt.Sprintf("/todos/%d", id)
}

// createTask adds a task to the caller's current session and returns it.
func (e *testEnv) createTask(t *testing.T, token, title string) taskResp {
	t.Helper()

	w := e.do(t, http.MethodPost, "/todos", token, map[string]string{"title": title})
	if w.Code != http.StatusCreated {
		t.Fatalf("create task %q: status = %d, want 201 (%s)", title, w.Code, w.Body.String())
	}

	var resp taskResp
	decode(t, w, &resp)
	return resp
}
