package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/nutriwise/backend/internal/models"
	"github.com/pageza/nutriwise/backend/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUser(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	u := models.User{
		Username:     "user-" + uuid.NewString()[:8],
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&u).Error)
	return u.ID
}

func TestStore_CreateAndGet(t *testing.T) {
	db := testdb.SQLite(t).DB
	store := NewStore(db)
	ctx := context.Background()
	user := newUser(t, db)

	p, err := store.Create(ctx, user, models.PromptTypeFoodAnalysis, " banana ", "  analyse banana  ")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, models.PromptStatusPending, p.Status)
	assert.Equal(t, "banana", p.Subject)
	assert.Equal(t, "analyse banana", p.PromptText)
	assert.Nil(t, p.Response)

	got, err := store.Get(ctx, p.ID, user)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, models.PromptTypeFoodAnalysis, got.PromptType)

	_, err = store.Get(ctx, p.ID, newUser(t, db))
	assert.ErrorIs(t, err, ErrNotFound, "other users cannot read the prompt")
}

func TestStore_CreateValidation(t *testing.T) {
	store := NewStore(testdb.SQLite(t).DB)
	ctx := context.Background()
	user := uuid.New()

	_, err := store.Create(ctx, uuid.Nil, models.PromptTypeMealPlan, "", "plan")
	assert.ErrorIs(t, err, ErrUserRequired)

	_, err = store.Create(ctx, user, models.PromptType("recipe"), "", "plan")
	assert.ErrorIs(t, err, ErrInvalidType)

	_, err = store.Create(ctx, user, models.PromptTypeMealPlan, "", "   ")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
}

func TestStore_UpdateResponse(t *testing.T) {
	db := testdb.SQLite(t).DB
	store := NewStore(db)
	ctx := context.Background()
	user := newUser(t, db)

	p, err := store.Create(ctx, user, models.PromptTypeMealPlan, "", "weekly plan")
	require.NoError(t, err)

	require.NoError(t, store.UpdateResponse(ctx, p.ID, user, `{"weekPlan":[]}`, models.PromptStatusCompleted))
	got, err := store.Get(ctx, p.ID, user)
	require.NoError(t, err)
	require.NotNil(t, got.Response)
	assert.Equal(t, `{"weekPlan":[]}`, *got.Response)
	assert.Equal(t, models.PromptStatusCompleted, got.Status)

	err = store.UpdateResponse(ctx, p.ID, user, "x", models.PromptStatusPending)
	assert.ErrorIs(t, err, ErrInvalidState)

	err = store.UpdateResponse(ctx, p.ID, uuid.New(), "x", models.PromptStatusFailed)
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.UpdateResponse(ctx, uuid.Nil, user, "x", models.PromptStatusFailed)
	assert.ErrorIs(t, err, ErrIDRequired)
}

func TestStore_ListByUser(t *testing.T) {
	db := testdb.SQLite(t).DB
	store := NewStore(db)
	ctx := context.Background()
	user := newUser(t, db)
	other := newUser(t, db)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		p, err := store.Create(ctx, user, models.PromptTypeFoodAnalysis, fmt.Sprintf("food %d", i), "analyse")
		require.NoError(t, err)
		require.NoError(t, db.Model(p).UpdateColumn("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
		ids = append(ids, p.ID)
	}
	_, err := store.Create(ctx, other, models.PromptTypeFoodAnalysis, "other", "analyse")
	require.NoError(t, err)

	all, err := store.ListByUser(ctx, user, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i, p := range all {
		assert.Equal(t, ids[4-i], p.ID, "newest first")
		assert.Equal(t, user, p.UserID)
	}

	page, err := store.ListByUser(ctx, user, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID)
	assert.Equal(t, ids[1], page[1].ID)

	page, err = store.ListByUser(ctx, user, 10, -5)
	require.NoError(t, err)
	assert.Len(t, page, 5)

	_, err = store.ListByUser(ctx, uuid.Nil, 10, 0)
	assert.ErrorIs(t, err, ErrUserRequired)
}

func TestStore_Delete(t *testing.T) {
	db := testdb.SQLite(t).DB
	store := NewStore(db)
	ctx := context.Background()
	user := newUser(t, db)

	p, err := store.Create(ctx, user, models.PromptTypeFoodAnalysis, "kiwi", "analyse kiwi")
	require.NoError(t, err)

	assert.ErrorIs(t, store.Delete(ctx, p.ID, uuid.New()), ErrNotFound)
	require.NoError(t, store.Delete(ctx, p.ID, user))
	assert.ErrorIs(t, store.Delete(ctx, p.ID, user), ErrNotFound)

	_, err = store.Get(ctx, p.ID, user)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Postgres(t *testing.T) {
	db := testdb.Postgres(t).DB
	store := NewStore(db)
	ctx := context.Background()
	user := newUser(t, db)

	p, err := store.Create(ctx, user, models.PromptTypeMealPlan, "", "weekly plan")
	require.NoError(t, err)
	require.NoError(t, store.UpdateResponse(ctx, p.ID, user, `{"error":true}`, models.PromptStatusFailed))

	list, err := store.ListByUser(ctx, user, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.PromptStatusFailed, list[0].Status)

	_, err = store.Create(ctx, uuid.New(), models.PromptTypeMealPlan, "", "orphan")
	assert.Error(t, err, "prompts reference an existing user")
}
