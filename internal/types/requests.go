package types

import (
	"github.com/google/uuid"
	"github.com/pageza/nutriwise/backend/internal/prompt"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

type UserInfo struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// AnalyzeFoodRequest asks for the nutrition facts of one food item.
type AnalyzeFoodRequest struct {
	FoodName string `json:"food_name" binding:"required,max=200"`
}

// MealPlanRequest carries per-request preferences. Blank fields fall back to
// the saved dietary profile.
type MealPlanRequest struct {
	prompt.Preferences
	// IgnoreProfile skips the saved dietary profile entirely.
	IgnoreProfile bool `json:"ignore_profile"`
}

type UpdateDietaryProfileRequest struct {
	Restrictions     *string `json:"restrictions" binding:"omitempty,max=255"`
	Allergies        *string `json:"allergies" binding:"omitempty,max=255"`
	HealthConditions *string `json:"health_conditions" binding:"omitempty,max=255"`
	ActivityLevel    *string `json:"activity_level" binding:"omitempty,max=50"`
	TastePreferences *string `json:"taste_preferences" binding:"omitempty,max=255"`
	CalorieTarget    *string `json:"calorie_target" binding:"omitempty,max=100"`
	MealCount        *int    `json:"meal_count" binding:"omitempty,min=0,max=6"`
}
