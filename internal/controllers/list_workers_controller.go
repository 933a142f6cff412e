package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mfagundes/taskfan/internal/repository"
)

type listWorkersController struct{ registry repository.WorkerRegistry }

func NewListWorkersController(registry repository.WorkerRegistry) *listWorkersController {
	return &listWorkersController{registry}
}

func (h *listWorkersController) Handle(c *gin.Context) {
	workers := h.registry.List()
	c.JSON(http.StatusOK, gin.H{"ok": true, "count": len(workers), "workers": workers})
}
