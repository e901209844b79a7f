package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSettingsRoutes registers the machine availability routes
func RegisterSettingsRoutes(router *gin.RouterGroup) {
	settings := router.Group("/settings")
	{
		settings.GET("", getSettings)
		settings.POST("", saveSetting)
	}
}

func getSettings(c *gin.Context) {
	setting, err := deps.Settings.Get()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

func saveSetting(c *gin.Context) {
	var input struct {
		Key   string `json:"key" binding:"required"`
		Value *bool  `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "message": err.Error()})
		return
	}

	setting, err := deps.Settings.Save(input.Key, *input.Value)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, setting)
}
