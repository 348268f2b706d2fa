package extract

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const bananaJSON = `{"name":"banana","calories":105,"macronutrients":{"protein":1.3,"fat":0.4,"carbs":27}}`

const mealPlanJSON = `{
  "weekPlan": [
    {
      "day": "Monday",
      "meals": [
        {
          "type": "Breakfast",
          "name": "Greek Yogurt with Berries",
          "calories": 320,
          "macros": {"protein": "21g", "fat": "9g", "carbs": "41g"},
          "ingredients": ["Greek yogurt", "Mixed berries"],
          "recipe": "Mix and serve.",
          "dietaryNotes": "Vegetarian"
        },
        {
          "type": "Dinner",
          "name": "Baked Salmon",
          "calories": 490,
          "macros": {"protein": "36g", "fat": "24g", "carbs": "28g"},
          "ingredients": ["Salmon fillet", "Broccoli"],
          "recipe": "Bake at 200C for 15 minutes."
        }
      ]
    }
  ],
  "groceryList": {
    "produce": ["Mixed berries", "Broccoli"],
    "protein": ["Salmon fillet"],
    "dairy": ["Greek yogurt"],
    "grains": [],
    "other": []
  },
  "nutritionSummary": {
    "averageDailyCalories": 1430,
    "macroRatio": {"protein": "22%", "fat": "35%", "carbs": "43%"},
    "adheresToPreferences": "Low in refined sugar"
  }
}`

func TestExtractNutrition_Scenario(t *testing.T) {
	res := ExtractNutrition(bananaJSON, "banana")
	require.Nil(t, res.Failure)
	require.NotNil(t, res.Value)

	assert.Equal(t, "Banana", res.Value.Name)
	assert.Equal(t, 105.0, res.Value.Calories)
	assert.Equal(t, Macronutrients{Protein: 1.3, Fat: 0.4, Carbs: 27}, res.Value.Macronutrients)
	assert.JSONEq(t, bananaJSON, string(res.Raw))
}

func TestExtractNutrition_NameFromCallerInput(t *testing.T) {
	raw := `{"name":"BANANAS (RAW)","calories":89,"macronutrients":{"protein":1.1,"fat":0.3,"carbs":22.8}}`

	res := ExtractNutrition(raw, "  green   PLANTAIN ")
	require.True(t, res.OK())
	assert.Equal(t, "Green Plantain", res.Value.Name)

	res = ExtractNutrition(raw, "")
	require.True(t, res.OK())
	assert.Equal(t, "Bananas (raw)", res.Value.Name)
}

func TestExtractMealPlan_RoundTrip(t *testing.T) {
	res := ExtractMealPlan(mealPlanJSON)
	require.Nil(t, res.Failure)
	require.NotNil(t, res.Value)

	out, err := json.Marshal(res.Value)
	require.NoError(t, err)
	assert.JSONEq(t, mealPlanJSON, string(out))
}

func TestExtractMealPlan_FencedWithProse(t *testing.T) {
	bare := ExtractMealPlan(mealPlanJSON)
	require.True(t, bare.OK())

	wrapped := "Here is the data:\n```json\n" + mealPlanJSON + "\n```\nEnjoy!"
	res := ExtractMealPlan(wrapped)
	require.Nil(t, res.Failure)
	assert.Equal(t, bare.Value, res.Value)
}

func TestExtract_Recovery(t *testing.T) {
	bare := ExtractNutrition(bananaJSON, "banana")
	require.True(t, bare.OK())

	tests := []struct {
		name string
		raw  string
	}{
		{"trailing comma before brace", `{"name":"banana","calories":105,"macronutrients":{"protein":1.3,"fat":0.4,"carbs":27,},}`},
		{"trailing comma before bracket", `{"name":"banana","calories":105,"macronutrients":{"protein":1.3,"fat":0.4,"carbs":27},"benefits":["potassium",],"concerns":[]}`},
		{"prose without fence", "Sure, here you go: " + bananaJSON + " Let me know if you need more."},
		{"comments", "{\n\"name\":\"banana\", // the fruit\n\"calories\":105, /* per 100g */\n\"macronutrients\":{\"protein\":1.3,\"fat\":0.4,\"carbs\":27}\n}"},
		{"untagged fence", "```\n" + bananaJSON + "\n```"},
		{"unterminated fence", "```json\n" + bananaJSON},
		{"prose braces before fence", "Use {curly} braces:\n```json\n" + bananaJSON + "\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ExtractNutrition(tt.raw, "banana")
			require.Nil(t, res.Failure, "failure: %+v", res.Failure)
			assert.Equal(t, bare.Value.Name, res.Value.Name)
			assert.Equal(t, bare.Value.Calories, res.Value.Calories)
			assert.Equal(t, bare.Value.Macronutrients, res.Value.Macronutrients)
		})
	}
}

func TestExtractMealPlan_EllipsisPlaceholders(t *testing.T) {
	raw := "```json\n{\"weekPlan\":[{\"day\":\"Monday\",\"meals\":[]}, ...],\"groceryList\":{\"produce\":[\"Kale\",]},\"nutritionSummary\":{\"averageDailyCalories\":1800,\"macroRatio\":{\"protein\":30,\"fat\":30,\"carbs\":40}}}\n```"

	res := ExtractMealPlan(raw)
	require.Nil(t, res.Failure, "failure: %+v", res.Failure)
	assert.Len(t, res.Value.WeekPlan, 1)
	assert.Equal(t, []string{"Kale"}, res.Value.GroceryList["produce"])
	assert.Equal(t, MacroRatio{Protein: "30%", Fat: "30%", Carbs: "40%"}, res.Value.NutritionSummary.MacroRatio)
}

func TestExtract_Failures(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		shape Shape
		kind  FailureKind
	}{
		{"empty string", "", ShapeNutrition, ParseFailure},
		{"whitespace only", " \n\t", ShapeMealPlan, ParseFailure},
		{"no braces at all", "I'm sorry, I can't help with that.", ShapeNutrition, ParseFailure},
		{"unbalanced object", `{"name":"banana","calories":`, ShapeNutrition, ParseFailure},
		{"json array", `[1,2,3]`, ShapeMealPlan, ShapeFailure},
		{"missing nutrition summary", `{"weekPlan":[{"day":"Monday","meals":[]}],"groceryList":{}}`, ShapeMealPlan, ShapeFailure},
		{"empty week plan", `{"weekPlan":[],"groceryList":{},"nutritionSummary":{}}`, ShapeMealPlan, ShapeFailure},
		{"missing macronutrients", `{"name":"banana","calories":105}`, ShapeNutrition, ShapeFailure},
		{"string calories", `{"name":"banana","calories":"105","macronutrients":{"protein":1,"fat":0,"carbs":27}}`, ShapeNutrition, ShapeFailure},
		{"negative calories", `{"name":"banana","calories":-1,"macronutrients":{"protein":1,"fat":0,"carbs":27}}`, ShapeNutrition, ShapeFailure},
		{"blank name", `{"name":" ","calories":1,"macronutrients":{"protein":1,"fat":0,"carbs":27}}`, ShapeNutrition, ShapeFailure},
		{"week plan without days", `{"weekPlan":[1,"two"],"groceryList":{},"nutritionSummary":{}}`, ShapeMealPlan, ShapeFailure},
		{"nutrition asked of a meal plan", mealPlanJSON, ShapeNutrition, ShapeFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res Result[any]
			require.NotPanics(t, func() { res = Extract(tt.raw, tt.shape, "banana") })
			require.Nil(t, res.Value)
			require.NotNil(t, res.Failure)
			assert.True(t, res.Failure.Error)
			assert.NotEmpty(t, res.Failure.Message)
			assert.Equal(t, tt.kind, res.Failure.Kind)
		})
	}
}

func TestExtractNutrition_MistypedOptionalFields(t *testing.T) {
	raw := `{"name":"green apple","calories":52,"macronutrients":{"protein":0.3,"fat":0.2,"carbs":14},` +
		`"benefits":"good source of fibre","concerns":{"sugar":"high"},` +
		`"micronutrients":[{"name":"Vitamin C","amount":4.6,"dailyValue":"8%"},"iron",{"name":"Potassium","amount":true}]}`

	res := ExtractNutrition(raw, "green apple")
	require.Nil(t, res.Failure, "failure: %+v", res.Failure)
	assert.Equal(t, "Green Apple", res.Value.Name)
	assert.Equal(t, []string{"good source of fibre"}, res.Value.Benefits)
	assert.Nil(t, res.Value.Concerns)
	assert.Equal(t, []Micronutrient{
		{Name: "Vitamin C", Amount: "4.6", DailyValue: "8%"},
		{Name: "Potassium", Amount: "true"},
	}, res.Value.Micronutrients)
}

func TestExtractMealPlan_MistypedMealFields(t *testing.T) {
	raw := `{"weekPlan":[` +
		`{"day":"Monday","meals":[{"type":"Lunch","name":"Lentil Soup","calories":"450","macros":{"protein":18,"fat":"7g","carbs":null},"ingredients":"lentils"}]},` +
		`{"day":"Tuesday","meals":[{"type":"Dinner","name":"Tofu Stir Fry","calories":"about 500","ingredients":["tofu",3,{"x":1}]}]},` +
		`"Wednesday"],` +
		`"groceryList":{"pantry":["lentils"],"other":"salt"},` +
		`"nutritionSummary":{"averageDailyCalories":"1800","macroRatio":{"protein":25,"fat":"30%","carbs":45},"adheresToPreferences":true}}`

	res := ExtractMealPlan(raw)
	require.Nil(t, res.Failure, "failure: %+v", res.Failure)
	require.Len(t, res.Value.WeekPlan, 2)

	lunch := res.Value.WeekPlan[0].Meals[0]
	assert.Equal(t, 450.0, lunch.Calories)
	assert.Equal(t, MealMacros{Protein: "18g", Fat: "7g"}, lunch.Macros)
	assert.Equal(t, []string{"lentils"}, lunch.Ingredients)

	dinner := res.Value.WeekPlan[1].Meals[0]
	assert.Zero(t, dinner.Calories)
	assert.Equal(t, []string{"tofu", "3"}, dinner.Ingredients)

	assert.Equal(t, map[string][]string{"pantry": {"lentils"}, "other": {"salt"}}, res.Value.GroceryList)
	assert.Equal(t, NutritionSummary{
		AverageDailyCalories: 1800,
		MacroRatio:           MacroRatio{Protein: "25%", Fat: "30%", Carbs: "45%"},
		AdheresToPreferences: "true",
	}, res.Value.NutritionSummary)
}

func TestExtract_ShapeFailureNamesShapeOnly(t *testing.T) {
	res := ExtractMealPlan(`{"weekPlan":[{"day":"Monday"}],"groceryList":{}}`)
	require.NotNil(t, res.Failure)
	assert.Equal(t, "response does not match the expected mealplan shape", res.Failure.Message)
	assert.NotContains(t, res.Failure.Message, "nutritionSummary")
}

func TestExtract_Dispatch(t *testing.T) {
	res := Extract(bananaJSON, ShapeNutrition, "banana")
	require.Nil(t, res.Failure)
	rec, ok := (*res.Value).(*NutritionRecord)
	require.True(t, ok)
	assert.Equal(t, "Banana", rec.Name)

	res = Extract(mealPlanJSON, ShapeMealPlan, "")
	require.Nil(t, res.Failure)
	_, ok = (*res.Value).(*MealPlan)
	assert.True(t, ok)

	res = Extract(bananaJSON, Shape("recipe"), "")
	require.NotNil(t, res.Failure)
}

func TestFailure_JSON(t *testing.T) {
	f := NewFailure(ParseFailure, "response is not valid JSON", "unexpected end of JSON input")
	assert.JSONEq(t, `{"error":true,"message":"response is not valid JSON","details":"unexpected end of JSON input"}`, f.JSON())

	f = NewFailure(ShapeFailure, "bad shape", "")
	assert.JSONEq(t, `{"error":true,"message":"bad shape"}`, f.JSON())

	got, ok := AsFailure(f.Err())
	require.True(t, ok)
	assert.Same(t, f, got)
	assert.Contains(t, f.Err().Error(), "shape failure")
}

func TestExtractor_LogsRejectedCandidates(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := New(zap.New(core))

	res := e.MealPlan("not json {at all")
	require.NotNil(t, res.Failure)

	res = e.MealPlan(`{"weekPlan":[]}`)
	require.NotNil(t, res.Failure)
	assert.NotZero(t, logs.FilterMessage("candidate does not match shape").Len())
}

func TestExtract_ConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				res := ExtractNutrition(bananaJSON, "banana")
				assert.True(t, res.OK())
				return
			}
			res := ExtractMealPlan("```json\n" + mealPlanJSON + "\n```")
			assert.True(t, res.OK())
		}(i)
	}
	wg.Wait()
}

func TestFormatFoodName(t *testing.T) {
	tests := map[string]string{
		"banana":            "Banana",
		"  GREEN   apple  ": "Green Apple",
		"crème brûlée":      "Crème Brûlée",
		"":                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatFoodName(in), "input %q", in)
	}
}

func TestParseShape(t *testing.T) {
	for _, in := range []string{"mealplan", "meal_plan", "Meal-Plan"} {
		s, err := ParseShape(in)
		require.NoError(t, err)
		assert.Equal(t, ShapeMealPlan, s)
	}
	s, err := ParseShape("nutrition")
	require.NoError(t, err)
	assert.Equal(t, ShapeNutrition, s)

	_, err = ParseShape("recipe")
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "recipe"))
}

func TestFailure_WithMessage(t *testing.T) {
	f := NewFailure(ParseFailure, "response is not valid JSON", "unexpected end of JSON input")
	g := f.WithMessage("Try again")
	assert.Equal(t, "Try again", g.Message)
	assert.Equal(t, "response is not valid JSON: unexpected end of JSON input", g.Details)
	assert.Equal(t, ParseFailure, g.Kind)
	assert.Equal(t, "response is not valid JSON", f.Message, "receiver is untouched")

	h := NewFailure(ShapeFailure, "bad shape", "").WithMessage("Try again")
	assert.Equal(t, "bad shape", h.Details)
}
