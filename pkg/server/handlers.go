package server

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/model"
	enginesync "github.com/aimanagement-dev/archipielago-production-sub001/pkg/sync"
	"github.com/gin-gonic/gin"
)

// POST /sync/outbound
// With a task list in the body, syncs exactly those. With an empty
// body, syncs every schedulable task in the store and deletes events
// of previously synced tasks that are schedulable no longer.
func (s *Server) syncOutbound(c *gin.Context) {
	var req struct {
		Tasks []model.Task `json:"tasks"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	ctx := c.Request.Context()
	tasks := req.Tasks
	var unscheduled []model.Task

	if tasks == nil {
		all, err := s.store.List(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		for _, t := range all {
			if t.Schedulable() {
				tasks = append(tasks, t)
			} else {
				unscheduled = append(unscheduled, t)
			}
		}
	}

	result := s.engine.SyncToCalendar(ctx, tasks)

	for _, t := range unscheduled {
		deleted, err := s.engine.DeleteIfExists(ctx, t.ID)
		if err != nil {
			result.Errors = append(result.Errors, model.ItemError{ID: t.ID, Message: err.Error()})
			continue
		}
		if deleted {
			result.Deleted++
		}
	}

	log.Printf("[sync][outbound] created=%d updated=%d deleted=%d skipped=%d errors=%d",
		result.Created, result.Updated, result.Deleted, result.Skipped, len(result.Errors))
	c.JSON(http.StatusOK, result)
}

// GET /sync/inbound?timeMin=...&timeMax=... (RFC3339)
func (s *Server) syncInbound(c *gin.Context) {
	timeMin, err := time.Parse(time.RFC3339, c.Query("timeMin"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid timeMin: " + err.Error()})
		return
	}
	timeMax, err := time.Parse(time.RFC3339, c.Query("timeMax"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid timeMax: " + err.Error()})
		return
	}
	if !timeMax.After(timeMin) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "timeMax must be after timeMin"})
		return
	}

	result := s.engine.SyncFromCalendar(c.Request.Context(), timeMin, timeMax)
	log.Printf("[sync][inbound] found=%d updated=%d created=%d errors=%d",
		result.TasksFound, result.Updated, result.Created, len(result.Errors))
	c.JSON(http.StatusOK, result)
}

// POST /import
func (s *Server) importBatch(c *gin.Context) {
	var req struct {
		Candidates []model.Candidate `json:"candidates" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.reconciler.ImportBatch(c.Request.Context(), req.Candidates)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Printf("[import] created=%d skipped=%d errors=%d", len(result.Created), result.Skipped, len(result.Errors))
	c.JSON(http.StatusOK, result)
}

// POST /attendee-response
func (s *Server) attendeeResponse(c *gin.Context) {
	var req struct {
		TaskID   string `json:"taskId" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Response string `json:"response" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	responses, err := s.engine.RecordResponse(c.Request.Context(), req.TaskID, req.Email, model.ResponseStatus(req.Response))
	if err != nil {
		if errors.Is(err, enginesync.ErrInvalidResponse) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"attendeeResponses": responses})
}
