package middleware

import (
	"net/http"

	"mediroute/internal/models"
	"mediroute/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	actorIDHeader   = "X-Actor-ID"
	actorRoleHeader = "X-Actor-Role"

	ActorContextKey = "actor"
)

// ActorMiddleware resolves the caller identity set by the upstream gateway.
// The dispatch core trusts the headers; authentication happens before
// traffic reaches this service.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.GetHeader(actorIDHeader))
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "MISSING_ACTOR", "actor identity headers are required")
			c.Abort()
			return
		}

		role := models.ActorRole(c.GetHeader(actorRoleHeader))
		switch role {
		case models.RoleAmbulanceOperator, models.RoleHospitalOperator, models.RoleAdmin:
		default:
			utils.ErrorResponse(c, http.StatusUnauthorized, "INVALID_ROLE", "unknown actor role")
			c.Abort()
			return
		}

		c.Set(ActorContextKey, models.Actor{ID: id, Role: role})
		c.Set("actor_id", id)
		c.Set("actor_role", string(role))
		c.Next()
	}
}

// RequireRole gates a route group to specific roles. Admin always passes.
func RequireRole(roles ...models.ActorRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		if actor.IsAdmin() {
			c.Next()
			return
		}
		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}

		utils.ForbiddenResponse(c)
		c.Abort()
	}
}

func GetActor(c *gin.Context) (models.Actor, bool) {
	v, exists := c.Get(ActorContextKey)
	if !exists {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}
