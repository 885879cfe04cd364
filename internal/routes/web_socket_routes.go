package routes

import (
	"smart_tracker/internal/controllers"
	"github.com/gin-gonic/gin"
)

func WebSocketRoutes(r *gin.Engine, hub *controllers.ActivityHub) {
	wsRoutes := r.Group("/ws")
	{
		wsRoutes.GET("/activities", hub.HandleActivityWebSocket)
	}
}
