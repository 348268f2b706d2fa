package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/nutriwise/backend/internal/models"
	"github.com/pageza/nutriwise/backend/internal/prompt"
	"github.com/pageza/nutriwise/backend/internal/types"
	"gorm.io/gorm"
)

// ProfileService manages the saved dietary profile of each user.
type ProfileService struct {
	db *gorm.DB
}

var _ IProfileService = (*ProfileService)(nil)

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// GetProfile returns the user's profile. A user who never saved one gets an
// empty profile.
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.DietaryProfile, error) {
	var profile models.DietaryProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.DietaryProfile{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load dietary profile: %w", err)
	}
	return &profile, nil
}

// UpdateProfile applies the provided fields, creating the profile on first
// use.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateDietaryProfileRequest) (*models.DietaryProfile, error) {
	var profile models.DietaryProfile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", userID).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			profile = models.DietaryProfile{UserID: userID}
		} else if err != nil {
			return err
		}

		setString(&profile.Restrictions, req.Restrictions)
		setString(&profile.Allergies, req.Allergies)
		setString(&profile.HealthConditions, req.HealthConditions)
		setString(&profile.ActivityLevel, req.ActivityLevel)
		setString(&profile.TastePreferences, req.TastePreferences)
		setString(&profile.CalorieTarget, req.CalorieTarget)
		if req.MealCount != nil {
			profile.MealCount = *req.MealCount
		}
		return tx.Save(&profile).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save dietary profile: %w", err)
	}
	return &profile, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// ApplyProfile fills the blank fields of p from the user's saved profile.
func (s *ProfileService) ApplyProfile(ctx context.Context, userID uuid.UUID, p prompt.Preferences) (prompt.Preferences, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return p, err
	}
	fill := func(dst *string, saved string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = saved
		}
	}
	fill(&p.Restrictions, profile.Restrictions)
	fill(&p.Allergies, profile.Allergies)
	fill(&p.HealthConditions, profile.HealthConditions)
	fill(&p.ActivityLevel, profile.ActivityLevel)
	fill(&p.TastePreferences, profile.TastePreferences)
	fill(&p.CalorieTarget, profile.CalorieTarget)
	if p.MealCount <= 0 {
		p.MealCount = profile.MealCount
	}
	return p, nil
}
