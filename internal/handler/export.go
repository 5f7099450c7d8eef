package handler

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/martapiotrowska257/projekt-psw/internal/models"
	"github.com/martapiotrowska257/projekt-psw/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler downloads the current session's tasks as CSV or XLSX.
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

func (h *ExportHandler) sessionTasks(c *gin.Context) (*models.Session, []models.Task, bool) {
	_, session, ok := resolveCurrentSession(c, h.DB)
	if !ok {
		return nil, nil, false
	}

	var tasks []models.Task
	if err := h.DB.
		Where("session_id = ?", session.ID).
		Order("id ASC").
		Find(&tasks).Error; err != nil {
		util.ServerError(c, "failed to list tasks")
		return nil, nil, false
	}
	return session, tasks, true
}

// ExportCSV streams the task list as a CSV attachment.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	_, tasks, ok := h.sessionTasks(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"tasks_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	_ = writer.Write([]string{"id", "title", "completed", "created_at"})
	for _, t := range tasks {
		_ = writer.Write([]string{
			strconv.FormatUint(uint64(t.ID), 10),
			t.Title,
			strconv.FormatBool(t.Completed),
			t.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// ExportXLSX streams the task list as an Excel workbook.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	session, tasks, ok := h.sessionTasks(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Tasks"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		util.ServerError(c, "failed to build workbook")
		return
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{"ID", "Title", "Completed", "Created"}
	for i, head := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, head)
	}

	for row, t := range tasks {
		values := []interface{}{t.ID, t.Title, t.Completed, t.CreatedAt.Format("2006-01-02 15:04:05")}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s_tasks_%s.xlsx\"",
		session.Name, time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.ServerError(c, "failed to write workbook")
		return
	}
}
