// Package history persists the prompts users sent to the oracle and what
// came back.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/nutriwise/backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("prompt not found")
	ErrUserRequired = errors.New("user ID is required")
	ErrIDRequired   = errors.New("prompt ID and user ID are required")
	ErrEmptyPrompt  = errors.New("prompt text cannot be empty")
	ErrInvalidType  = errors.New("invalid prompt type")
	ErrInvalidState = errors.New("invalid prompt status")
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Store is the gorm-backed history repository. Every query is scoped to the
// owning user.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create records a new pending prompt.
func (s *Store) Create(ctx context.Context, userID uuid.UUID, promptType models.PromptType, subject, text string) (*models.Prompt, error) {
	if userID == uuid.Nil {
		return nil, ErrUserRequired
	}
	if !promptType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, promptType)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyPrompt
	}

	p := &models.Prompt{
		UserID:     userID,
		PromptType: promptType,
		Subject:    strings.TrimSpace(subject),
		PromptText: text,
		Status:     models.PromptStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, fmt.Errorf("failed to save prompt: %w", err)
	}
	return p, nil
}

// UpdateResponse stores the oracle outcome for a prompt owned by userID.
func (s *Store) UpdateResponse(ctx context.Context, id, userID uuid.UUID, response string, status models.PromptStatus) error {
	if id == uuid.Nil || userID == uuid.Nil {
		return ErrIDRequired
	}
	if status != models.PromptStatusCompleted && status != models.PromptStatusFailed {
		return fmt.Errorf("%w: %q", ErrInvalidState, status)
	}

	res := s.db.WithContext(ctx).
		Model(&models.Prompt{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"response": response, "status": status})
	if res.Error != nil {
		return fmt.Errorf("failed to update prompt: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser returns the user's prompts, newest first.
func (s *Store) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Prompt, error) {
	if userID == uuid.Nil {
		return nil, ErrUserRequired
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	var prompts []models.Prompt
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&prompts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prompts: %w", err)
	}
	return prompts, nil
}

// Get returns one prompt owned by userID.
func (s *Store) Get(ctx context.Context, id, userID uuid.UUID) (*models.Prompt, error) {
	if id == uuid.Nil || userID == uuid.Nil {
		return nil, ErrIDRequired
	}
	var p models.Prompt
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prompt: %w", err)
	}
	return &p, nil
}

// Delete removes a prompt owned by userID.
func (s *Store) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if id == uuid.Nil || userID == uuid.Nil {
		return ErrIDRequired
	}
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Prompt{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete prompt: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
