package handlers

import (
	"net/http"
	"strconv"

	"scrumboard-api/internal/database"
	"scrumboard-api/internal/middleware"
	"scrumboard-api/internal/models"
	"scrumboard-api/internal/pipeline"

	"github.com/gin-gonic/gin"
)

func taskService() *pipeline.TaskService {
	return pipeline.NewTaskService(database.GetDB())
}

// UpdateTaskStatusRequest represents a minimal request to change status
type UpdateTaskStatusRequest struct {
	Status models.TaskStatus `json:"status" binding:"required"`
}

// LockFieldRequest names the field to lock or unlock
type LockFieldRequest struct {
	Field string `json:"field" binding:"required"`
}

/*
*
GetTasks handles GET /api/tasks
Returns board tasks in position order.
Optional query params: group_id filter, page (default 1), limit.
*/
func GetTasks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	tasks, total, err := taskService().List(pipeline.ListTasksQuery{
		GroupID: c.Query("group_id"),
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"count": len(tasks),
		"total": total,
		"page":  page,
	})
}

// GetTaskByID handles GET /api/tasks/:id
func GetTaskByID(c *gin.Context) {
	task, err := taskService().Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

/*
*
CreateTask handles POST /api/tasks
Creates a task in a group; the owner is the authenticated user.
*/
func CreateTask(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var req pipeline.CreateTaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := taskService().Create(actor, req)
	if err != nil {
		respondError(c, err)
		return
	}

	broadcastEvent("task_created", gin.H{"taskId": task.ID, "groupId": task.GroupID})
	c.JSON(http.StatusCreated, task)
}

// UpdateTask handles PUT /api/tasks/:id
// Applies a multi-field edit; rejected fields abort the whole save.
func UpdateTask(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var req pipeline.UpdateTaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := taskService().Update(actor, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	broadcastEvent("task_updated", gin.H{"taskId": task.ID})
	c.JSON(http.StatusOK, task)
}

// UpdateTaskStatus handles PATCH /api/tasks/:id/status
// The Done value is re-checked server-side; the UI hiding the option
// is not enforcement.
func UpdateTaskStatus(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var req UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := taskService().SetStatus(actor, c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	broadcastEvent("task_status_changed", gin.H{"taskId": task.ID, "status": task.Status})
	c.JSON(http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/:id
func DeleteTask(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	taskID := c.Param("id")
	if err := taskService().Delete(actor, taskID); err != nil {
		respondError(c, err)
		return
	}

	broadcastEvent("task_deleted", gin.H{"taskId": taskID})
	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
		"id":      taskID,
	})
}

// LockTaskField handles POST /api/tasks/:id/lock
func LockTaskField(c *gin.Context) {
	setTaskFieldLock(c, true)
}

// UnlockTaskField handles POST /api/tasks/:id/unlock
func UnlockTaskField(c *gin.Context) {
	setTaskFieldLock(c, false)
}

func setTaskFieldLock(c *gin.Context, locked bool) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var req LockFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := taskService()
	var task *models.Task
	var err error
	if locked {
		task, err = svc.LockField(actor, c.Param("id"), req.Field)
	} else {
		task, err = svc.UnlockField(actor, c.Param("id"), req.Field)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	event := "task_field_locked"
	if !locked {
		event = "task_field_unlocked"
	}
	broadcastEvent(event, gin.H{"taskId": task.ID, "field": req.Field})
	c.JSON(http.StatusOK, task)
}
