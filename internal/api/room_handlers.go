package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// roomMembers is a read-only view over the registry for dashboards and
// diagnostics. Rooms have no stored entity; an unknown id simply yields
// an empty member list.
func (d Deps) roomMembers(c *gin.Context) {
	roomID := c.Param("id")
	members := d.Hub.Registry().ListByRoom(roomID)
	c.JSON(http.StatusOK, gin.H{
		"roomId":  roomID,
		"count":   len(members),
		"members": members,
	})
}
