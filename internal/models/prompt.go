package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PromptType identifies which oracle request a history entry records.
type PromptType string

const (
	PromptTypeMealPlan     PromptType = "meal_plan"
	PromptTypeFoodAnalysis PromptType = "food_analysis"
)

func (t PromptType) Valid() bool {
	return t == PromptTypeMealPlan || t == PromptTypeFoodAnalysis
}

type PromptStatus string

const (
	PromptStatusPending   PromptStatus = "pending"
	PromptStatusCompleted PromptStatus = "completed"
	PromptStatusFailed    PromptStatus = "failed"
)

// Prompt is one request sent to the oracle together with what came back.
// Response holds the validated JSON on success or the failure JSON otherwise.
type Prompt struct {
	ID         uuid.UUID    `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID     uuid.UUID    `gorm:"type:varchar(36);not null;index:idx_prompts_user_created,priority:1" json:"user_id"`
	PromptType PromptType   `gorm:"size:20;not null" json:"prompt_type"`
	Subject    string       `gorm:"size:255" json:"subject"`
	PromptText string       `gorm:"type:text;not null" json:"prompt_text"`
	Response   *string      `gorm:"type:text" json:"response"`
	Status     PromptStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	CreatedAt  time.Time    `gorm:"index:idx_prompts_user_created,priority:2,sort:desc" json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

func (Prompt) TableName() string {
	return "prompts"
}

func (p *Prompt) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
