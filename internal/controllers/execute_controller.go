package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mfagundes/taskfan/internal/executor"
	"github.com/mfagundes/taskfan/pkg/domain"
)

// executeController is the worker-process endpoint backing POST /execute.
type executeController struct{ exec *executor.Executor }

func NewExecuteController(exec *executor.Executor) *executeController {
	return &executeController{exec}
}

type executeReq struct {
	TaskID string `json:"taskId"`
	Name   string `json:"name" binding:"required"`
	Count  *int   `json:"count" binding:"required"`
}

func (h *executeController) Handle(c *gin.Context) {
	var req executeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, domain.ExecuteResponse{Error: "invalid body: name and count are required"})
		return
	}
	if *req.Count < 0 {
		c.JSON(http.StatusBadRequest, domain.ExecuteResponse{Error: "count must be >= 0"})
		return
	}

	resp := h.exec.Execute(domain.ExecuteRequest{TaskID: req.TaskID, Name: req.Name, Count: *req.Count})
	if resp.Error != "" {
		// Partial completedCount rides along so the control plane can keep it.
		c.JSON(http.StatusInternalServerError, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
