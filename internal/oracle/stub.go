package oracle

import (
	"context"
	"strings"
	"sync/atomic"
)

// StubClient answers every prompt with canned data. It is used in demo mode
// and in tests.
type StubClient struct {
	calls atomic.Int64
}

func NewStubClient() *StubClient {
	return &StubClient{}
}

// Generate returns a canned meal plan when the prompt asks for one, and a
// canned nutrition analysis otherwise.
func (s *StubClient) Generate(ctx context.Context, prompt string, _ ...CallOption) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.calls.Add(1)

	body := demoNutrition
	if strings.Contains(prompt, "weekPlan") {
		body = demoMealPlan
	}
	text := "Here is the requested data:\n```json\n" + body + "\n```"
	return &Response{
		Text: text,
		Usage: Usage{
			PromptTokens:     len(prompt) / 4,
			CompletionTokens: len(text) / 4,
			TotalTokens:      (len(prompt) + len(text)) / 4,
			Model:            "demo",
		},
	}, nil
}

// Calls reports how many prompts the stub has answered.
func (s *StubClient) Calls() int64 { return s.calls.Load() }

func (s *StubClient) Close() error { return nil }

const demoNutrition = `{
  "name": "demo food",
  "calories": 135,
  "macronutrients": { "protein": 3.5, "fat": 0.4, "carbs": 27.4 },
  "micronutrients": [
    { "name": "Vitamin C", "amount": "14.8mg", "dailyValue": "16%" },
    { "name": "Potassium", "amount": "422mg", "dailyValue": "9%" },
    { "name": "Vitamin B6", "amount": "0.4mg", "dailyValue": "31%" },
    { "name": "Manganese", "amount": "0.3mg", "dailyValue": "15%" }
  ],
  "benefits": [
    "Good source of energy",
    "Supports digestive health",
    "Contains antioxidants that may reduce inflammation",
    "Helps maintain healthy blood pressure"
  ],
  "concerns": [
    "May contribute to blood sugar spikes in some individuals",
    "Some people may have allergies"
  ]
}`

const demoMealPlan = `{
  "weekPlan": [
    {
      "day": "Monday",
      "meals": [
        {
          "type": "Breakfast",
          "name": "Greek Yogurt with Berries and Granola",
          "calories": 320,
          "macros": { "protein": "21g", "fat": "9g", "carbs": "41g" },
          "ingredients": ["Greek yogurt", "Mixed berries", "Low-sugar granola", "Honey"],
          "recipe": "Mix 1 cup of Greek yogurt with 1/2 cup mixed berries, top with 1/4 cup granola and a drizzle of honey."
        },
        {
          "type": "Lunch",
          "name": "Mediterranean Quinoa Bowl",
          "calories": 420,
          "macros": { "protein": "15g", "fat": "18g", "carbs": "52g" },
          "ingredients": ["Quinoa", "Cucumber", "Cherry tomatoes", "Kalamata olives", "Feta cheese", "Olive oil", "Lemon juice"],
          "recipe": "Cook 1 cup quinoa. Mix with diced cucumber, halved cherry tomatoes, olives, and crumbled feta. Dress with olive oil and lemon juice."
        },
        {
          "type": "Dinner",
          "name": "Baked Salmon with Roasted Vegetables",
          "calories": 490,
          "macros": { "protein": "36g", "fat": "24g", "carbs": "28g" },
          "ingredients": ["Salmon fillet", "Broccoli", "Bell peppers", "Red onion", "Olive oil", "Garlic", "Herbs"],
          "recipe": "Bake salmon at 400F for 15 minutes. Roast vegetables tossed in olive oil, garlic and herbs for 20-25 minutes."
        },
        {
          "type": "Snack",
          "name": "Apple with Almond Butter",
          "calories": 200,
          "macros": { "protein": "5g", "fat": "16g", "carbs": "15g" },
          "ingredients": ["Apple", "Almond butter"],
          "recipe": "Slice one apple and serve with 2 tablespoons of almond butter."
        }
      ]
    },
    // remaining days follow the same pattern
    ...
  ],
  "groceryList": {
    "produce": ["Apples", "Mixed berries", "Cucumber", "Cherry tomatoes", "Broccoli", "Bell peppers", "Red onion"],
    "protein": ["Greek yogurt", "Salmon fillets", "Feta cheese"],
    "dairy": ["Feta cheese", "Greek yogurt"],
    "grains": ["Quinoa", "Low-sugar granola"],
    "other": ["Almond butter", "Kalamata olives", "Olive oil", "Honey", "Garlic", "Herbs"]
  },
  "nutritionSummary": {
    "averageDailyCalories": 1430,
    "macroRatio": { "protein": "22%", "fat": "35%", "carbs": "43%" }
  }
}`
