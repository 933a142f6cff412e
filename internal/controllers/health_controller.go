package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// healthController answers liveness probes for both processes; label is empty
// on the control plane.
type healthController struct{ label string }

func NewHealthController(label string) *healthController {
	return &healthController{label}
}

func (h *healthController) Handle(c *gin.Context) {
	body := gin.H{"ok": true, "time": time.Now().UnixMilli()}
	if h.label != "" {
		body["label"] = h.label
	}
	c.JSON(http.StatusOK, body)
}
