package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pageza/nutriwise/backend/internal/extract"
	"github.com/pageza/nutriwise/backend/internal/service"
	"github.com/pageza/nutriwise/backend/internal/types"
	"go.uber.org/zap"
)

// DietHandler serves the two oracle-backed endpoints.
type DietHandler struct {
	nutrition service.NutritionService
	mealPlans service.MealPlanService
	profiles  service.IProfileService
	logger    *zap.Logger
}

func NewDietHandler(nutrition service.NutritionService, mealPlans service.MealPlanService, profiles service.IProfileService, logger *zap.Logger) *DietHandler {
	return &DietHandler{
		nutrition: nutrition,
		mealPlans: mealPlans,
		profiles:  profiles,
		logger:    logger.Named("api.diet"),
	}
}

// RegisterRoutes expects router to be authenticated already. Extra handlers,
// such as a rate limiter, run before each endpoint.
func (h *DietHandler) RegisterRoutes(router *gin.RouterGroup, extra ...gin.HandlerFunc) {
	router.POST("/analysis", chain(extra, h.Analyze)...)
	router.POST("/meal-plans", chain(extra, h.GenerateMealPlan)...)
}

func chain(extra []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(extra)+1)
	return append(append(out, extra...), h)
}

func (h *DietHandler) Analyze(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req types.AnalyzeFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.FoodName) == "" {
		details := ""
		if err != nil {
			details = err.Error()
		}
		respondFailure(c, extract.NewFailure(extract.InputFailure, "Food name is required", details))
		return
	}

	rec, failure := h.nutrition.Analyze(c.Request.Context(), userID, req.FoodName)
	if failure != nil {
		respondFailure(c, failure)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *DietHandler) GenerateMealPlan(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req types.MealPlanRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondFailure(c, extract.NewFailure(extract.InputFailure, "Invalid request body", err.Error()))
			return
		}
	}

	prefs := req.Preferences
	if !req.IgnoreProfile && h.profiles != nil {
		merged, err := h.profiles.ApplyProfile(c.Request.Context(), userID, prefs)
		if err != nil {
			h.logger.Warn("failed to load dietary profile", zap.String("user_id", userID.String()), zap.Error(err))
		} else {
			prefs = merged
		}
	}

	plan, failure := h.mealPlans.GenerateMealPlan(c.Request.Context(), userID, prefs)
	if failure != nil {
		respondFailure(c, failure)
		return
	}
	c.JSON(http.StatusOK, plan)
}
