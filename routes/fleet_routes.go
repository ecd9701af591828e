package routes

import (
	"mediroute/internal/handlers"
	"mediroute/internal/middleware"
	"mediroute/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupAmbulanceRoutes sets up routes for the vehicle fleet
func SetupAmbulanceRoutes(r *gin.RouterGroup, ambulanceHandler *handlers.AmbulanceHandler, dispatchHandler *handlers.DispatchHandler) {
	ambulances := r.Group("/ambulances")
	ambulances.Use(middleware.ActorMiddleware())
	{
		ambulances.GET("/", ambulanceHandler.GetAmbulances)
		ambulances.GET("/:id", ambulanceHandler.GetAmbulance)
		ambulances.GET("/:id/token", dispatchHandler.GetActiveTokenForAmbulance)

		ambulanceSide := ambulances.Group("")
		ambulanceSide.Use(middleware.RequireRole(models.RoleAmbulanceOperator))
		{
			ambulanceSide.POST("/", ambulanceHandler.Register)
			ambulanceSide.PUT("/:id/location", ambulanceHandler.UpdateLocation)
		}

		// Force-release is a dispatcher-side escape hatch.
		hospitalSide := ambulances.Group("")
		hospitalSide.Use(middleware.RequireRole(models.RoleHospitalOperator))
		{
			hospitalSide.PUT("/:id/release", dispatchHandler.ReleaseAmbulance)
		}
	}
}

// SetupHospitalRoutes sets up routes for the facility directory
func SetupHospitalRoutes(r *gin.RouterGroup, hospitalHandler *handlers.HospitalHandler) {
	hospitals := r.Group("/hospitals")
	hospitals.Use(middleware.ActorMiddleware())
	{
		hospitals.GET("/", hospitalHandler.GetHospitals)
		hospitals.GET("/nearby", hospitalHandler.GetNearbyHospitals)
		hospitals.GET("/capacities", hospitalHandler.GetAllCapacities)
		hospitals.GET("/:id", hospitalHandler.GetHospital)
		hospitals.GET("/:id/updates", hospitalHandler.GetUpdates)
		hospitals.GET("/:id/capacity", hospitalHandler.GetCapacity)

		hospitalSide := hospitals.Group("")
		hospitalSide.Use(middleware.RequireRole(models.RoleHospitalOperator))
		{
			hospitalSide.POST("/", hospitalHandler.CreateHospital)
			hospitalSide.PUT("/:id", hospitalHandler.UpdateHospital)
			hospitalSide.POST("/:id/updates", hospitalHandler.RecordUpdate)
		}
	}
}
