package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DietaryProfile holds the saved meal-planning preferences of a user. Meal
// plan requests fall back to these values for any field they leave blank.
type DietaryProfile struct {
	ID               uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID           uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	Restrictions     string    `gorm:"size:255" json:"restrictions"`
	Allergies        string    `gorm:"size:255" json:"allergies"`
	HealthConditions string    `gorm:"size:255" json:"health_conditions"`
	ActivityLevel    string    `gorm:"size:50" json:"activity_level"`
	TastePreferences string    `gorm:"size:255" json:"taste_preferences"`
	CalorieTarget    string    `gorm:"size:100" json:"calorie_target"`
	MealCount        int       `gorm:"not null;default:0" json:"meal_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (DietaryProfile) TableName() string {
	return "dietary_profiles"
}

func (p *DietaryProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
