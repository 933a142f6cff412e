package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mfagundes/taskfan/internal/repository"
	"github.com/mfagundes/taskfan/pkg/domain"
)

type registerWorkerController struct{ registry repository.WorkerRegistry }

func NewRegisterWorkerController(registry repository.WorkerRegistry) *registerWorkerController {
	return &registerWorkerController{registry}
}

type registerWorkerReq struct {
	URL   string `json:"url" binding:"required"`
	Label string `json:"label"`
}

func (h *registerWorkerController) Handle(c *gin.Context) {
	var req registerWorkerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: url is required"})
		return
	}
	if req.Label == "" {
		req.Label = "worker"
	}

	worker, err := h.registry.Register(req.Label, req.URL, domain.SourceRegister)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "worker": worker})
}
