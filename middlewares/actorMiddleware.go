package middlewares

import (
	"strconv"

	"github.com/basma-app/maintenance_backend/utils"
	"github.com/gin-gonic/gin"
)

// ActorMiddleware copies the verified actor identity into the request
// context. Token verification happens upstream (API gateway / auth
// service); this layer only trusts the identity headers it forwards.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if idHeader := c.Request.Header.Get("X-User-Id"); idHeader != "" {
			if userId, err := strconv.Atoi(idHeader); err == nil {
				ctx = utils.SetUserIdInContext(ctx, userId)
			}
		}
		if name := c.Request.Header.Get("X-User-Name"); name != "" {
			ctx = utils.SetUserNameInContext(ctx, name)
		}
		if role := c.Request.Header.Get("X-User-Role"); role != "" {
			ctx = utils.SetUserRoleInContext(ctx, role)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
