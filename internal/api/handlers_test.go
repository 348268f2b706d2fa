package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pageza/nutriwise/backend/internal/extract"
	"github.com/pageza/nutriwise/backend/internal/middleware"
	"github.com/pageza/nutriwise/backend/internal/mocks"
	"github.com/pageza/nutriwise/backend/internal/models"
	"github.com/pageza/nutriwise/backend/internal/prompt"
	"github.com/pageza/nutriwise/backend/internal/service"
	"github.com/pageza/nutriwise/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func withUser(id uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, id)
		c.Next()
	}
}

func serve(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func newDietRouter(userID uuid.UUID, diet *mocks.MockDietService, profiles *mocks.MockProfileService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewDietHandler(diet, diet, profiles, zap.NewNop())
	h.RegisterRoutes(r.Group("/", withUser(userID)))
	return r
}

func TestDietHandler_AnalyzeFailureStatus(t *testing.T) {
	tests := []struct {
		name   string
		kind   extract.FailureKind
		status int
	}{
		{"input", extract.InputFailure, http.StatusBadRequest},
		{"parse", extract.ParseFailure, http.StatusBadGateway},
		{"shape", extract.ShapeFailure, http.StatusBadGateway},
		{"transport", extract.TransportFailure, http.StatusBadGateway},
		{"store", extract.StoreFailure, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID := uuid.New()
			diet := new(mocks.MockDietService)
			diet.On("Analyze", mock.Anything, userID, "kale").
				Return(nil, extract.NewFailure(tt.kind, "boom", ""))

			w := serve(newDietRouter(userID, diet, nil), http.MethodPost, "/analysis", gin.H{"food_name": "kale"})

			assert.Equal(t, tt.status, w.Code)
			var body extract.Failure
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.True(t, body.Error)
			assert.Equal(t, "boom", body.Message)
			diet.AssertExpectations(t)
		})
	}
}

func TestDietHandler_AnalyzeRejectsBlankFood(t *testing.T) {
	diet := new(mocks.MockDietService)

	for _, body := range []any{gin.H{"food_name": "   "}, gin.H{}, nil} {
		w := serve(newDietRouter(uuid.New(), diet, nil), http.MethodPost, "/analysis", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var failure extract.Failure
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &failure), w.Body.String())
		assert.True(t, failure.Error)
		assert.Equal(t, "Food name is required", failure.Message)
	}
	diet.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything, mock.Anything)
}

func TestDietHandler_MealPlanRejectsMalformedBody(t *testing.T) {
	diet := new(mocks.MockDietService)
	r := newDietRouter(uuid.New(), diet, new(mocks.MockProfileService))

	req := httptest.NewRequest(http.MethodPost, "/meal-plans", strings.NewReader(`{"meal_count":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"error":true`)
	assert.Contains(t, w.Body.String(), `"message":"Invalid request body"`)
	diet.AssertNotCalled(t, "GenerateMealPlan", mock.Anything, mock.Anything, mock.Anything)
}

func TestDietHandler_MealPlanMergesProfile(t *testing.T) {
	userID := uuid.New()
	requested := prompt.Preferences{Allergies: "shellfish"}
	merged := prompt.Preferences{Allergies: "shellfish", Restrictions: "vegan", MealCount: 4}

	diet := new(mocks.MockDietService)
	profiles := new(mocks.MockProfileService)
	profiles.On("ApplyProfile", mock.Anything, userID, requested).Return(merged, nil)
	diet.On("GenerateMealPlan", mock.Anything, userID, merged).Return(&extract.MealPlan{}, nil)

	w := serve(newDietRouter(userID, diet, profiles), http.MethodPost, "/meal-plans", gin.H{"allergies": "shellfish"})

	assert.Equal(t, http.StatusOK, w.Code)
	profiles.AssertExpectations(t)
	diet.AssertExpectations(t)
}

func TestDietHandler_MealPlanIgnoreProfile(t *testing.T) {
	userID := uuid.New()
	diet := new(mocks.MockDietService)
	profiles := new(mocks.MockProfileService)
	diet.On("GenerateMealPlan", mock.Anything, userID, prompt.Preferences{MealCount: 2}).Return(&extract.MealPlan{}, nil)

	w := serve(newDietRouter(userID, diet, profiles), http.MethodPost, "/meal-plans",
		gin.H{"meal_count": 2, "ignore_profile": true})

	assert.Equal(t, http.StatusOK, w.Code)
	profiles.AssertNotCalled(t, "ApplyProfile", mock.Anything, mock.Anything, mock.Anything)
	diet.AssertExpectations(t)
}

func TestDietHandler_MealPlanProfileErrorFallsBack(t *testing.T) {
	userID := uuid.New()
	diet := new(mocks.MockDietService)
	profiles := new(mocks.MockProfileService)
	profiles.On("ApplyProfile", mock.Anything, userID, prompt.Preferences{}).
		Return(prompt.Preferences{}, errors.New("db down"))
	diet.On("GenerateMealPlan", mock.Anything, userID, prompt.Preferences{}).Return(&extract.MealPlan{}, nil)

	w := serve(newDietRouter(userID, diet, profiles), http.MethodPost, "/meal-plans", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	diet.AssertExpectations(t)
}

func newAuthRouter(auth *mocks.MockAuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewAuthHandler(auth, zap.NewNop()).RegisterRoutes(r.Group("/"))
	return r
}

func TestAuthHandler_RegisterConflict(t *testing.T) {
	auth := new(mocks.MockAuthService)
	auth.On("Register", mock.Anything, "ann@example.com", "password123", "ann").
		Return(nil, service.ErrUserExists)

	w := serve(newAuthRouter(auth), http.MethodPost, "/auth/register", gin.H{
		"username": "ann", "email": "ann@example.com", "password": "password123",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	auth.AssertExpectations(t)
}

func TestAuthHandler_LoginTokenError(t *testing.T) {
	user := &models.User{ID: uuid.New(), Username: "ann", Email: "ann@example.com"}
	auth := new(mocks.MockAuthService)
	auth.On("Login", mock.Anything, "ann@example.com", "password123").Return(user, nil)
	auth.On("TokenFor", user).Return("", errors.New("signing failed"))

	w := serve(newAuthRouter(auth), http.MethodPost, "/auth/login", gin.H{
		"email": "ann@example.com", "password": "password123",
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	auth.AssertExpectations(t)
}

func TestAuthHandler_MeUnknownUser(t *testing.T) {
	auth := new(mocks.MockAuthService)
	userID := uuid.New()
	auth.On("ValidateToken", "tok").Return(&types.TokenClaims{UserID: userID}, nil)
	auth.On("GetUserByID", mock.Anything, userID).Return(nil, service.ErrUserNotFound)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	newAuthRouter(auth).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	auth.AssertExpectations(t)
}
