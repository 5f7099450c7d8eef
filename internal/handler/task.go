package handler

import (
	"net/http"
	"strconv"

	"github.com/martapiotrowska257/projekt-psw/internal/middleware"
	"github.com/martapiotrowska257/projekt-psw/internal/models"
	"github.com/martapiotrowska257/projekt-psw/internal/util"
	"github.com/martapiotrowska257/projekt-psw/internal/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TaskHandler implements task CRUD inside the caller's current session and
// publishes a change event after every successful mutation.
type TaskHandler struct {
	DB  *gorm.DB
	Hub *ws.Hub
}

func NewTaskHandler(db *gorm.DB, hub *ws.Hub) *TaskHandler {
	return &TaskHandler{DB: db, Hub: hub}
}

type createTaskReq struct {
	Title string `json:"title" form:"title"`
}

// pointers so an omitted field is distinguishable from a zero value
type updateTaskReq struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

type taskResp struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

func toTaskResp(t *models.Task) taskResp {
	return taskResp{
		ID:        t.ID,
		Title:     t.Title,
		Completed: t.Completed,
	}
}

func toTaskPayload(t *models.Task) ws.TaskPayload {
	return ws.TaskPayload{
		ID:        t.ID,
		Title:     t.Title,
		Completed: t.Completed,
		SessionID: t.SessionID,
	}
}

// resolveCurrentSession resolves the caller's active todo-list session. On
// failure it writes the error response itself and returns ok=false.
func resolveCurrentSession(c *gin.Context, db *gorm.DB) (*models.User, *models.Session, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return nil, nil, false
	}
	if user.CurrentSessionID == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeNoSession, "no active session, create or select one first")
		return nil, nil, false
	}

	var session models.Session
	if err := db.First(&session, *user.CurrentSessionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			// the selected session was deleted from under the user
			util.Error(c, http.StatusUnauthorized, util.CodeNoSession, "no active session, create or select one first")
		} else {
			util.ServerError(c, "failed to load session")
		}
		return nil, nil, false
	}
	return user, &session, true
}

// findTask loads the :id task scoped to the given session. Tasks outside
// the session are reported as not found, not as forbidden.
func (h *TaskHandler) findTask(c *gin.Context, sessionID uint) (*models.Task, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "task not found")
		return nil, false
	}

	var task models.Task
	if err := h.DB.Where("id = ? AND session_id = ?", id, sessionID).First(&task).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "task not found")
		} else {
			util.ServerError(c, "failed to load task")
		}
		return nil, false
	}
	return &task, true
}

// CreateTask adds a task to the caller's current session.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	_, session, ok := resolveCurrentSession(c, h.DB)
	if !ok {
		return
	}

	var req createTaskReq
	if err := c.ShouldBind(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "task title is required")
		return
	}
	if err := util.ValidateTaskTitle(req.Title); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "task title is required")
		return
	}

	task := models.Task{
		Title:     req.Title,
		SessionID: session.ID,
	}
	if err := h.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&task).Error
	}); err != nil {
		util.ServerError(c, "failed to create task")
		return
	}

	h.Hub.Publish(ws.EventTaskCreated, toTaskPayload(&task))
	c.JSON(http.StatusCreated, toTaskResp(&task))
}

// ListTasks returns the current session's tasks in insertion order.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	_, session, ok := resolveCurrentSession(c, h.DB)
	if !ok {
		return
	}

	var tasks []models.Task
	if err := h.DB.
		Where("session_id = ?", session.ID).
		Order("id ASC").
		Find(&tasks).Error; err != nil {
		util.ServerError(c, "failed to list tasks")
		return
	}

	resp := make([]taskResp, 0, len(tasks))
	for i := range tasks {
		resp = append(resp, toTaskResp(&tasks[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetTask returns a single task from the current session.
func (h *TaskHandler) GetTask(c *gin.Context) {
	_, session, ok := resolveCurrentSession(c, h.DB)
	if !ok {
		return
	}

	task, ok := h.findTask(c, session.ID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toTaskResp(task))
}

// UpdateTask applies a partial update: only the supplied fields change. An
// explicitly empty title is rejected rather than silently ignored.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	_, session, ok := resolveCurrentSession(c, h.DB)
	if !ok {
		return
	}

	var req updateTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}
	if req.Title != nil {
		if err := util.ValidateTaskTitle(*req.Title); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "task title must not be empty")
			return
		}
	}

	task, ok := h.findTask(c, session.ID)
	if !ok {
		return
	}

	if err := h.DB.Transaction(func(tx *gorm.DB) error {
		if req.Title != nil {
			task.Title = *req.Title
		}
		if req.Completed != nil {
			task.Completed = *req.Completed
		}
		return tx.Save(task).Error
	}); err != nil {
		util.ServerError(c, "failed to update task")
		return
	}

	h.Hub.Publish(ws.EventTaskUpdated, toTaskPayload(task))
	c.JSON(http.StatusOK, toTaskResp(task))
}

// DeleteTask removes a task and returns its last-known representation.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	_, session, ok := resolveCurrentSession(c, h.DB)
	if !ok {
		return
	}

	task, ok := h.findTask(c, session.ID)
	if !ok {
		return
	}

	if err := h.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Delete(task).Error
	}); err != nil {
		util.ServerError(c, "failed to delete task")
		return
	}

	h.Hub.Publish(ws.EventTaskDeleted, toTaskPayload(task))
	c.JSON(http.StatusOK, toTaskResp(task))
}
