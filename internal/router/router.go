package router

import (
	"github.com/gin-gonic/gin"
	"github.com/pageza/nutriwise/backend/internal/api"
	"github.com/pageza/nutriwise/backend/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(deps api.Deps, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestLogger(deps.Logger),
		middleware.Recovery(deps.Logger),
		middleware.CORS(allowedOrigins),
	)

	api.RegisterRoutes(router, deps)
	return router
}
