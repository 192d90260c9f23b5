package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"enbapp/internal/enbapi"
)

func GetInvitationUsage(c *gin.Context) {
	app := c.MustGet("app").(*enbapi.App)
	code := c.Param("invitationCode")

	var inviter enbapi.Account
	res := app.Db.Where("invitation_code = ?", code).First(&inviter)
	if res.RowsAffected != 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": "invitation code not found"})
		return
	}
	c.JSON(http.StatusOK, enbapi.GetInvitationStats(app.Db, inviter))
}
