package extract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Shape selects which domain object the extractor validates against.
type Shape string

const (
	ShapeNutrition Shape = "nutrition"
	ShapeMealPlan  Shape = "mealplan"
)

// ParseShape maps user input onto a Shape. "meal_plan" and "meal-plan" are
// accepted as aliases of "mealplan".
func ParseShape(s string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nutrition", "food_analysis":
		return ShapeNutrition, nil
	case "mealplan", "meal_plan", "meal-plan":
		return ShapeMealPlan, nil
	}
	return "", fmt.Errorf("unknown shape %q", s)
}

// Macronutrients are grams per 100g.
type Macronutrients struct {
	Protein float64 `json:"protein"`
	Fat     float64 `json:"fat"`
	Carbs   float64 `json:"carbs"`
}

type Micronutrient struct {
	Name       string     `json:"name"`
	Amount     FlexString `json:"amount"`
	DailyValue FlexString `json:"dailyValue"`
}

// NutritionRecord is the analysis of a single food item.
type NutritionRecord struct {
	Name           string          `json:"name"`
	Calories       float64         `json:"calories"`
	Macronutrients Macronutrients  `json:"macronutrients"`
	Micronutrients []Micronutrient `json:"micronutrients"`
	Benefits       []string        `json:"benefits"`
	Concerns       []string        `json:"concerns"`
}

type MealType string

const (
	MealBreakfast MealType = "Breakfast"
	MealLunch     MealType = "Lunch"
	MealDinner    MealType = "Dinner"
	MealSnack     MealType = "Snack"
)

// Valid reports whether t is one of the four known meal types.
func (t MealType) Valid() bool {
	switch t {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	}
	return false
}

// MealMacros holds unit-suffixed gram amounts such as "21g".
type MealMacros struct {
	Protein Grams `json:"protein"`
	Fat     Grams `json:"fat"`
	Carbs   Grams `json:"carbs"`
}

type Meal struct {
	Type         MealType   `json:"type"`
	Name         string     `json:"name"`
	Calories     float64    `json:"calories"`
	Macros       MealMacros `json:"macros"`
	Ingredients  []string   `json:"ingredients"`
	Recipe       string     `json:"recipe"`
	DietaryNotes string     `json:"dietaryNotes,omitempty"`
}

type DayPlan struct {
	Day   string `json:"day"`
	Meals []Meal `json:"meals"`
}

// MacroRatio holds percentage strings such as "22%".
type MacroRatio struct {
	Protein Percent `json:"protein"`
	Fat     Percent `json:"fat"`
	Carbs   Percent `json:"carbs"`
}

type NutritionSummary struct {
	AverageDailyCalories float64    `json:"averageDailyCalories"`
	MacroRatio           MacroRatio `json:"macroRatio"`
	AdheresToPreferences string     `json:"adheresToPreferences,omitempty"`
}

// MealPlan is a weekly plan. WeekPlan may hold fewer than seven days when
// the model truncates its answer.
type MealPlan struct {
	WeekPlan         []DayPlan           `json:"weekPlan"`
	GroceryList      map[string][]string `json:"groceryList"`
	NutritionSummary NutritionSummary    `json:"nutritionSummary"`
}

// FlexString accepts either a JSON string or a JSON number.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	s, err := flexText(data)
	if err != nil {
		return err
	}
	*f = FlexString(s)
	return nil
}

// Grams accepts "21g" as well as a bare 21, which is stored as "21g".
type Grams string

func (g *Grams) UnmarshalJSON(data []byte) error {
	s, err := flexSuffixed(data, "g")
	if err != nil {
		return err
	}
	*g = Grams(s)
	return nil
}

// Percent accepts "22%" as well as a bare 22, which is stored as "22%".
type Percent string

func (p *Percent) UnmarshalJSON(data []byte) error {
	s, err := flexSuffixed(data, "%")
	if err != nil {
		return err
	}
	*p = Percent(s)
	return nil
}

func flexText(data []byte) (string, error) {
	if string(data) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s, nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return "", fmt.Errorf("expected string or number, got %s", data)
	}
	return strconv.FormatFloat(n, 'f', -1, 64), nil
}

func flexSuffixed(data []byte, suffix string) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s, nil
	}
	text, err := flexText(data)
	if err != nil || text == "" {
		return text, err
	}
	return text + suffix, nil
}
