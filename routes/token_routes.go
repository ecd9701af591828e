package routes

import (
	"mediroute/internal/handlers"
	"mediroute/internal/middleware"
	"mediroute/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupTokenRoutes sets up routes for the emergency-token lifecycle
func SetupTokenRoutes(r *gin.RouterGroup, dispatchHandler *handlers.DispatchHandler) {
	tokens := r.Group("/tokens")
	tokens.Use(middleware.ActorMiddleware())
	{
		tokens.GET("/", dispatchHandler.ListTokens)
		tokens.GET("/:id", dispatchHandler.GetToken)
		tokens.GET("/code/:code", dispatchHandler.GetTokenByCode)

		// Ambulance-side lifecycle
		ambulanceSide := tokens.Group("")
		ambulanceSide.Use(middleware.RequireRole(models.RoleAmbulanceOperator))
		{
			ambulanceSide.POST("/", dispatchHandler.CreateToken)
			ambulanceSide.PUT("/:id/start", dispatchHandler.StartJourney)
			ambulanceSide.PUT("/:id/arrive", dispatchHandler.ArriveAtPatient)
			ambulanceSide.PUT("/:id/depart", dispatchHandler.DepartForHospital)
			ambulanceSide.PUT("/:id/complete", dispatchHandler.CompleteToken)
		}

		// Hospital-side operations
		hospitalSide := tokens.Group("")
		hospitalSide.Use(middleware.RequireRole(models.RoleHospitalOperator))
		{
			hospitalSide.POST("/hospital", dispatchHandler.CreateTokenByHospital)
			hospitalSide.PUT("/:id/assign", dispatchHandler.AssignHospital)
			hospitalSide.PUT("/:id/decline", dispatchHandler.DeclineToken)
		}

		// Cancellation is open to both sides
		tokens.PUT("/:id/cancel", dispatchHandler.CancelToken)
	}

	recommendations := r.Group("/recommendations")
	recommendations.Use(middleware.ActorMiddleware())
	{
		recommendations.GET("/hospitals", dispatchHandler.RecommendHospitals)
	}
}
