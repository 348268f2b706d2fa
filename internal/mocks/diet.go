package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/nutriwise/backend/internal/extract"
	"github.com/pageza/nutriwise/backend/internal/models"
	"github.com/pageza/nutriwise/backend/internal/prompt"
	"github.com/pageza/nutriwise/backend/internal/types"
	"github.com/stretchr/testify/mock"
)

// MockDietService implements both service.NutritionService and
// service.MealPlanService.
type MockDietService struct {
	mock.Mock
}

func (m *MockDietService) Analyze(ctx context.Context, userID uuid.UUID, foodName string) (*extract.NutritionRecord, *extract.Failure) {
	args := m.Called(ctx, userID, foodName)
	rec, _ := args.Get(0).(*extract.NutritionRecord)
	f, _ := args.Get(1).(*extract.Failure)
	return rec, f
}

func (m *MockDietService) GenerateMealPlan(ctx context.Context, userID uuid.UUID, prefs prompt.Preferences) (*extract.MealPlan, *extract.Failure) {
	args := m.Called(ctx, userID, prefs)
	plan, _ := args.Get(0).(*extract.MealPlan)
	f, _ := args.Get(1).(*extract.Failure)
	return plan, f
}

// MockProfileService is a mock implementation of service.IProfileService
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.DietaryProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DietaryProfile), args.Error(1)
}

func (m *MockProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateDietaryProfileRequest) (*models.DietaryProfile, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DietaryProfile), args.Error(1)
}

func (m *MockProfileService) ApplyProfile(ctx context.Context, userID uuid.UUID, p prompt.Preferences) (prompt.Preferences, error) {
	args := m.Called(ctx, userID, p)
	return args.Get(0).(prompt.Preferences), args.Error(1)
}
