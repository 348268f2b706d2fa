// Package prompt renders the instructions sent to the oracle.
package prompt

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"
)

// ErrEmptyPrompt is returned when there is nothing to ask the oracle.
var ErrEmptyPrompt = errors.New("prompt text must not be empty")

const (
	DefaultRestrictions     = "None"
	DefaultAllergies        = "None"
	DefaultHealthConditions = "None"
	DefaultActivityLevel    = "Moderate"
	DefaultTastePreferences = "Balanced"
	DefaultCalorieTarget    = "Standard based on activity level"
	DefaultMealCount        = 3
	MaxMealCount            = 6
)

//go:embed nutrition_prompt.md
var nutritionPrompt string

//go:embed mealplan_prompt.md
var mealPlanPrompt string

var (
	nutritionTmpl = template.Must(template.New("nutrition").Parse(nutritionPrompt))
	mealPlanTmpl  = template.Must(template.New("mealplan").Parse(mealPlanPrompt))
)

// Preferences describe the person a meal plan is written for. Blank fields
// fall back to neutral defaults.
type Preferences struct {
	Restrictions     string `json:"restrictions"`
	Allergies        string `json:"allergies"`
	HealthConditions string `json:"health_conditions"`
	ActivityLevel    string `json:"activity_level"`
	TastePreferences string `json:"taste_preferences"`
	CalorieTarget    string `json:"calorie_target"`
	MealCount        int    `json:"meal_count"`
}

// Normalize trims every field and fills in defaults.
func (p Preferences) Normalize() Preferences {
	return Preferences{
		Restrictions:     orDefault(p.Restrictions, DefaultRestrictions),
		Allergies:        orDefault(p.Allergies, DefaultAllergies),
		HealthConditions: orDefault(p.HealthConditions, DefaultHealthConditions),
		ActivityLevel:    orDefault(p.ActivityLevel, DefaultActivityLevel),
		TastePreferences: orDefault(p.TastePreferences, DefaultTastePreferences),
		CalorieTarget:    orDefault(p.CalorieTarget, DefaultCalorieTarget),
		MealCount:        mealCount(p.MealCount),
	}
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

func mealCount(n int) int {
	switch {
	case n <= 0:
		return DefaultMealCount
	case n > MaxMealCount:
		return MaxMealCount
	}
	return n
}

// NormalizeFood trims and lower-cases a food name the way it is sent to the
// oracle.
func NormalizeFood(food string) string {
	return strings.ToLower(strings.TrimSpace(food))
}

// Nutrition renders the single-food analysis prompt.
func Nutrition(food string) (string, error) {
	food = NormalizeFood(food)
	if food == "" {
		return "", ErrEmptyPrompt
	}
	return render(nutritionTmpl, struct{ Food string }{food})
}

// MealPlan renders the weekly meal plan prompt.
func MealPlan(p Preferences) (string, error) {
	return render(mealPlanTmpl, p.Normalize())
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", t.Name(), err)
	}
	out := strings.TrimSpace(buf.String())
	if out == "" {
		return "", ErrEmptyPrompt
	}
	return out, nil
}
