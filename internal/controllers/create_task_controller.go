package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mfagundes/taskfan/internal/services"
	"github.com/mfagundes/taskfan/pkg/domain"
)

type createTaskController struct{ svc services.TaskService }

func NewCreateTaskController(svc services.TaskService) *createTaskController {
	return &createTaskController{svc}
}

type createTaskReq struct {
	Name  string `json:"name" binding:"required"`
	Count *int   `json:"count" binding:"required"`
}

func (h *createTaskController) Handle(c *gin.Context) {
	var req createTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: name and count are required"})
		return
	}

	session, err := h.svc.RunTask(c.Request.Context(), req.Name, *req.Count)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrNoWorkers):
			c.JSON(http.StatusBadRequest, gin.H{"error": "no workers available; register one via POST /api/workers/register first"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, session)
}
