package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) users(c *gin.Context) {
	c.JSON(http.StatusOK, h.orch.Users.Entries())
}

func (h *handlers) devices(c *gin.Context) {
	c.JSON(http.StatusOK, h.orch.Devices.Entries())
}

func (h *handlers) rooms(c *gin.Context) {
	c.JSON(http.StatusOK, h.orch.Rooms.List())
}

func (h *handlers) iceServers(c *gin.Context) {
	c.JSON(http.StatusOK, h.ice)
}
