package extract

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// The decoders below run on candidates that already passed shape
// validation. Optional fields of the wrong type are coerced where the intent
// is clear and dropped otherwise, so one odd field never sinks a record.

func decodeNutrition(doc gjson.Result) *NutritionRecord {
	macros := doc.Get("macronutrients")
	rec := &NutritionRecord{
		Name:     doc.Get("name").Str,
		Calories: doc.Get("calories").Num,
		Macronutrients: Macronutrients{
			Protein: macros.Get("protein").Num,
			Fat:     macros.Get("fat").Num,
			Carbs:   macros.Get("carbs").Num,
		},
		Benefits: stringList(doc.Get("benefits")),
		Concerns: stringList(doc.Get("concerns")),
	}
	if micros := doc.Get("micronutrients"); micros.IsArray() {
		rec.Micronutrients = []Micronutrient{}
		for _, m := range micros.Array() {
			if !m.IsObject() {
				continue
			}
			rec.Micronutrients = append(rec.Micronutrients, Micronutrient{
				Name:       text(m.Get("name")),
				Amount:     FlexString(text(m.Get("amount"))),
				DailyValue: FlexString(text(m.Get("dailyValue"))),
			})
		}
	}
	return rec
}

func decodeMealPlan(doc gjson.Result) *MealPlan {
	plan := &MealPlan{GroceryList: map[string][]string{}}
	for _, d := range doc.Get("weekPlan").Array() {
		if !d.IsObject() {
			continue
		}
		day := DayPlan{Day: text(d.Get("day"))}
		if meals := d.Get("meals"); meals.IsArray() {
			day.Meals = []Meal{}
			for _, m := range meals.Array() {
				if m.IsObject() {
					day.Meals = append(day.Meals, decodeMeal(m))
				}
			}
		}
		plan.WeekPlan = append(plan.WeekPlan, day)
	}

	doc.Get("groceryList").ForEach(func(k, v gjson.Result) bool {
		if items := stringList(v); items != nil {
			plan.GroceryList[k.String()] = items
		}
		return true
	})

	summary := doc.Get("nutritionSummary")
	ratio := summary.Get("macroRatio")
	plan.NutritionSummary = NutritionSummary{
		AverageDailyCalories: number(summary.Get("averageDailyCalories")),
		MacroRatio: MacroRatio{
			Protein: Percent(suffixed(ratio.Get("protein"), "%")),
			Fat:     Percent(suffixed(ratio.Get("fat"), "%")),
			Carbs:   Percent(suffixed(ratio.Get("carbs"), "%")),
		},
		AdheresToPreferences: text(summary.Get("adheresToPreferences")),
	}
	return plan
}

func decodeMeal(m gjson.Result) Meal {
	macros := m.Get("macros")
	return Meal{
		Type:     MealType(text(m.Get("type"))),
		Name:     text(m.Get("name")),
		Calories: number(m.Get("calories")),
		Macros: MealMacros{
			Protein: Grams(suffixed(macros.Get("protein"), "g")),
			Fat:     Grams(suffixed(macros.Get("fat"), "g")),
			Carbs:   Grams(suffixed(macros.Get("carbs"), "g")),
		},
		Ingredients:  stringList(m.Get("ingredients")),
		Recipe:       text(m.Get("recipe")),
		DietaryNotes: text(m.Get("dietaryNotes")),
	}
}

// text renders scalars as strings. Objects, arrays and null become "".
func text(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case gjson.True, gjson.False:
		return v.Raw
	}
	return ""
}

func suffixed(v gjson.Result, suffix string) string {
	if v.Type == gjson.Number {
		return text(v) + suffix
	}
	return text(v)
}

// number accepts a JSON number or a string holding one, such as "450".
func number(v gjson.Result) float64 {
	switch v.Type {
	case gjson.Number:
		return v.Num
	case gjson.String:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err == nil {
			return n
		}
	}
	return 0
}

// stringList keeps the scalar entries of an array. A lone non-empty string
// becomes a one-element list.
func stringList(v gjson.Result) []string {
	switch {
	case v.IsArray():
		out := []string{}
		for _, item := range v.Array() {
			if s := text(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case v.Type == gjson.String && strings.TrimSpace(v.Str) != "":
		return []string{v.Str}
	}
	return nil
}
