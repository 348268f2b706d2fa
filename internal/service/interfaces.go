package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/nutriwise/backend/internal/extract"
	"github.com/pageza/nutriwise/backend/internal/models"
	"github.com/pageza/nutriwise/backend/internal/prompt"
	"github.com/pageza/nutriwise/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, email, password, username string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	ValidateToken(token string) (*types.TokenClaims, error)
	GenerateToken(claims *types.TokenClaims) (string, error)
	TokenFor(user *models.User) (string, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// IProfileService defines the interface for dietary profile operations
type IProfileService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.DietaryProfile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateDietaryProfileRequest) (*models.DietaryProfile, error)
	ApplyProfile(ctx context.Context, userID uuid.UUID, p prompt.Preferences) (prompt.Preferences, error)
}

// NutritionService analyses single food items.
type NutritionService interface {
	Analyze(ctx context.Context, userID uuid.UUID, foodName string) (*extract.NutritionRecord, *extract.Failure)
}

// MealPlanService produces weekly meal plans.
type MealPlanService interface {
	GenerateMealPlan(ctx context.Context, userID uuid.UUID, prefs prompt.Preferences) (*extract.MealPlan, *extract.Failure)
}

// HistoryStore is the part of the history repository the diet flows write
// to.
type HistoryStore interface {
	Create(ctx context.Context, userID uuid.UUID, promptType models.PromptType, subject, text string) (*models.Prompt, error)
	UpdateResponse(ctx context.Context, id, userID uuid.UUID, response string, status models.PromptStatus) error
}
