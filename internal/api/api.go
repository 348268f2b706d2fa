package api

import (
	"github.com/gin-gonic/gin"
	"github.com/pageza/nutriwise/backend/internal/middleware"
	"github.com/pageza/nutriwise/backend/internal/service"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps holds everything the HTTP layer needs. Redis and RateLimiter are
// optional.
type Deps struct {
	DB          *gorm.DB
	Redis       *redis.Client
	Auth        service.IAuthService
	Profiles    service.IProfileService
	Nutrition   service.NutritionService
	MealPlans   service.MealPlanService
	History     HistoryReader
	RateLimiter *middleware.RateLimiter
	Logger      *zap.Logger
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Deps) {
	health := NewHealthHandler(deps.DB, deps.Redis)
	router.GET("/health", health.HealthCheck)
	router.GET("/api/health", health.HealthCheck)

	v1 := router.Group("/api/v1")
	NewAuthHandler(deps.Auth, deps.Logger).RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Auth))
	{
		var limits []gin.HandlerFunc
		if deps.RateLimiter != nil {
			limits = append(limits, deps.RateLimiter.RateLimitMiddleware())
		} else {
			deps.Logger.Warn("rate limiting disabled for oracle endpoints")
		}
		NewDietHandler(deps.Nutrition, deps.MealPlans, deps.Profiles, deps.Logger).RegisterRoutes(protected, limits...)
		NewHistoryHandler(deps.History, deps.Logger).RegisterRoutes(protected)
		NewProfileHandler(deps.Profiles, deps.Logger).RegisterRoutes(protected)
	}
}
