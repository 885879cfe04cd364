package routes

import (
	"smart_tracker/internal/controllers"

	"github.com/gin-gonic/gin"
)

func ActivityRoutes(api *gin.RouterGroup, ac *controllers.ActivityController, guard gin.HandlerFunc) {
	activities := api.Group("/activities")
	{
		activities.GET("", ac.ListActivities)
		activities.GET("/search/:query", ac.SearchActivities)
		activities.GET("/recent/:limit", ac.RecentActivities)
		activities.GET("/:id", ac.GetActivity)

		activities.POST("", guard, ac.CreateActivity)
		activities.PUT("/:id", guard, ac.UpdateActivity)
		activities.DELETE("/:id", guard, ac.DeleteActivity)
	}

	api.GET("/geojson/activities", ac.ActivitiesGeoJSON)
}
