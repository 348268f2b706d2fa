package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/nutriwise/backend/internal/prompt"
	"github.com/pageza/nutriwise/backend/internal/service"
	"github.com/pageza/nutriwise/backend/internal/testdb"
	"github.com/pageza/nutriwise/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestProfileService_GetEmpty(t *testing.T) {
	svc := service.NewProfileService(testdb.SQLite(t).DB)
	userID := uuid.New()

	p, err := svc.GetProfile(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, p.UserID)
	assert.Equal(t, uuid.Nil, p.ID)
	assert.Empty(t, p.Restrictions)
}

func TestProfileService_Update(t *testing.T) {
	svc := service.NewProfileService(testdb.SQLite(t).DB)
	ctx := context.Background()
	userID := uuid.New()

	p, err := svc.UpdateProfile(ctx, userID, &types.UpdateDietaryProfileRequest{
		Restrictions: strPtr(" vegetarian "),
		Allergies:    strPtr("peanuts"),
		MealCount:    intPtr(4),
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, "vegetarian", p.Restrictions)

	// Partial update keeps untouched fields.
	p2, err := svc.UpdateProfile(ctx, userID, &types.UpdateDietaryProfileRequest{
		Allergies: strPtr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, p.ID, p2.ID)
	assert.Equal(t, "vegetarian", p2.Restrictions)
	assert.Empty(t, p2.Allergies)
	assert.Equal(t, 4, p2.MealCount)

	got, err := svc.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestProfileService_ApplyProfile(t *testing.T) {
	svc := service.NewProfileService(testdb.SQLite(t).DB)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.UpdateProfile(ctx, userID, &types.UpdateDietaryProfileRequest{
		Restrictions:  strPtr("vegan"),
		ActivityLevel: strPtr("High"),
		MealCount:     intPtr(5),
	})
	require.NoError(t, err)

	got, err := svc.ApplyProfile(ctx, userID, prompt.Preferences{ActivityLevel: "Low"})
	require.NoError(t, err)
	assert.Equal(t, "vegan", got.Restrictions)
	assert.Equal(t, "Low", got.ActivityLevel, "request values win")
	assert.Equal(t, 5, got.MealCount)
	assert.Empty(t, got.Allergies)

	// A user without a profile gets the request back unchanged.
	in := prompt.Preferences{CalorieTarget: "1800"}
	got, err = svc.ApplyProfile(ctx, uuid.New(), in)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}
