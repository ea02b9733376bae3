package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zyzzzz-123/TECHIN510-project/app/core/intent"
	"github.com/zyzzzz-123/TECHIN510-project/app/core/store"
)

type createTaskRequest struct {
	UserID    int64  `json:"user_id" binding:"required"`
	Text      string `json:"text" binding:"required"`
	DueDate   string `json:"due_date"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Type      string `json:"type"`
	Status    string `json:"status"`
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	task := store.Task{
		UserID: req.UserID,
		Text:   req.Text,
		Status: req.Status,
		Type:   req.Type,
	}
	for _, field := range []struct {
		name string
		raw  string
		dest *int64
	}{
		{"due_date", req.DueDate, &task.DueDate},
		{"start_date", req.StartDate, &task.StartDate},
		{"end_date", req.EndDate, &task.EndDate},
	} {
		if field.raw == "" {
			continue
		}
		parsed, err := intent.ParseTimestamp(field.raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid " + field.name})
			return
		}
		*field.dest = parsed
	}

	created, err := s.tasks.Create(c.Request.Context(), task)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTaskView(created))
}

type updateTaskRequest struct {
	Text      *string `json:"text"`
	Status    *string `json:"status"`
	Type      *string `json:"type"`
	DueDate   *string `json:"due_date"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid task id"})
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	update := store.TaskUpdate{
		Text:   req.Text,
		Status: req.Status,
		Type:   req.Type,
	}
	for _, field := range []struct {
		name string
		raw  *string
		dest **int64
	}{
		{"due_date", req.DueDate, &update.DueDate},
		{"start_date", req.StartDate, &update.StartDate},
		{"end_date", req.EndDate, &update.EndDate},
	} {
		if field.raw == nil {
			continue
		}
		if *field.raw == "" {
			var cleared int64
			*field.dest = &cleared
			continue
		}
		parsed, err := intent.ParseTimestamp(*field.raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid " + field.name})
			return
		}
		*field.dest = &parsed
	}

	updated, err := s.tasks.UpdateFields(c.Request.Context(), id, currentUserID(c), update)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskView(updated))
}

func (s *Server) handleListUserTasks(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid user id"})
		return
	}

	tasks, err := s.tasks.ListForUser(c.Request.Context(), userID, c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskViews(tasks))
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid task id"})
		return
	}

	if err := s.tasks.Delete(c.Request.Context(), id, currentUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type taskIntentRequest struct {
	Message  string `json:"message" binding:"required"`
	Provider string `json:"provider"`
}

// handleTaskIntent turns a chat message into an intent; query intents also
// run immediately and return their matching tasks.
func (s *Server) handleTaskIntent(c *gin.Context) {
	var req taskIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	user, _ := currentUser(c)

	parsed := s.parser.Parse(c.Request.Context(), req.Message, req.Provider)
	resp := gin.H{"intent": parsed.ToJSON()}
	if parsed.IsQuery() {
		params := s.resolver.ResolveFilters(c.Request.Context(), req.Message, req.Provider)
		tasks := s.resolver.Run(c.Request.Context(), user.ID, params)
		resp["tasks"] = taskViews(tasks)
	}
	c.JSON(http.StatusOK, resp)
}

type executeIntentRequest struct {
	Intent map[string]interface{} `json:"intent" binding:"required"`
}

func (s *Server) handleExecuteIntent(c *gin.Context) {
	var req executeIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	user, _ := currentUser(c)

	result, err := s.executor.Execute(c.Request.Context(), user.ID, intent.FromJSON(req.Intent))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := gin.H{"success": result.Success, "message": result.Message}
	if result.Task != nil {
		resp["task"] = newTaskView(*result.Task)
	}
	c.JSON(http.StatusOK, resp)
}
