// Package extract turns free-form model output into validated nutrition
// records and meal plans.
//
// Every entry point returns a Result; malformed, truncated or hostile input
// produces a Failure value and never a panic.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Extractor carries optional diagnostics. The zero value is not usable; use
// New or the package-level functions.
type Extractor struct {
	logger *zap.Logger
}

// New returns an Extractor that reports rejected candidates at debug level.
func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger.Named("extract")}
}

var std = New(nil)

// Extract dispatches on shape. foodName is only consulted for nutrition.
func Extract(raw string, shape Shape, foodName string) Result[any] {
	return std.Extract(raw, shape, foodName)
}

// ExtractNutrition extracts a NutritionRecord whose name is derived from
// foodName.
func ExtractNutrition(raw, foodName string) Result[NutritionRecord] {
	return std.Nutrition(raw, foodName)
}

// ExtractMealPlan extracts a MealPlan.
func ExtractMealPlan(raw string) Result[MealPlan] {
	return std.MealPlan(raw)
}

func (e *Extractor) Extract(raw string, shape Shape, foodName string) Result[any] {
	switch shape {
	case ShapeNutrition:
		return widen(e.Nutrition(raw, foodName))
	case ShapeMealPlan:
		return widen(e.MealPlan(raw))
	}
	return fail[any](NewFailure(ParseFailure, fmt.Sprintf("unknown response shape %q", shape), ""))
}

func widen[T any](r Result[T]) Result[any] {
	out := Result[any]{Failure: r.Failure, Raw: r.Raw}
	if r.Value != nil {
		var v any = r.Value
		out.Value = &v
	}
	return out
}

func (e *Extractor) Nutrition(raw, foodName string) Result[NutritionRecord] {
	res := run[NutritionRecord](e, raw, ShapeNutrition, validNutrition, decodeNutrition)
	if res.Value == nil {
		return res
	}
	name := foodName
	if strings.TrimSpace(name) == "" {
		name = res.Value.Name
	}
	res.Value.Name = FormatFoodName(name)
	return res
}

func (e *Extractor) MealPlan(raw string) Result[MealPlan] {
	return run[MealPlan](e, raw, ShapeMealPlan, validMealPlan, decodeMealPlan)
}

// run tries each candidate in order and returns the first one that both
// parses and satisfies valid, decoded with decode.
func run[T any](e *Extractor, raw string, shape Shape, valid func(gjson.Result) bool, decode func(gjson.Result) *T) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("extraction panicked", zap.String("shape", string(shape)), zap.Any("panic", r))
			res = fail[T](NewFailure(ParseFailure, shapeMessage(shape), fmt.Sprint(r)))
		}
	}()

	if strings.TrimSpace(raw) == "" {
		return fail[T](NewFailure(ParseFailure, "empty response", ""))
	}

	var (
		lastErr     error
		shapeMissed bool
	)
	for _, c := range candidates(raw) {
		if !json.Valid([]byte(c)) {
			var v any
			lastErr = json.Unmarshal([]byte(c), &v)
			e.logger.Debug("candidate rejected", zap.String("shape", string(shape)), zap.Error(lastErr))
			continue
		}
		doc := gjson.Parse(c)
		if !doc.IsObject() || !valid(doc) {
			shapeMissed = true
			e.logger.Debug("candidate does not match shape", zap.String("shape", string(shape)))
			continue
		}
		return succeed(decode(doc), c)
	}

	if shapeMissed {
		details := ""
		if lastErr != nil {
			details = lastErr.Error()
		}
		return fail[T](NewFailure(ShapeFailure, shapeMessage(shape), details))
	}
	details := "no JSON object found in response"
	if lastErr != nil {
		details = lastErr.Error()
	}
	return fail[T](NewFailure(ParseFailure, "response is not valid JSON", details))
}

func shapeMessage(shape Shape) string {
	return fmt.Sprintf("response does not match the expected %s shape", shape)
}

// candidates lists the strings worth parsing, most literal first: the raw
// text, the fenced block, then the first balanced object. Everything but the
// raw text is sanitized.
func candidates(raw string) []string {
	out := []string{raw}
	seen := map[string]bool{raw: true}
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	if fenced, ok := FindFencedJSON(raw); ok {
		add(Sanitize(fenced))
		if obj, ok := FindBalancedObject(fenced); ok {
			add(Sanitize(obj))
		}
	}
	if obj, ok := FindBalancedObject(raw); ok {
		add(Sanitize(obj))
	}
	return out
}

func validNutrition(doc gjson.Result) bool {
	name := doc.Get("name")
	if name.Type != gjson.String || strings.TrimSpace(name.Str) == "" {
		return false
	}
	if !nonNegative(doc.Get("calories")) {
		return false
	}
	macros := doc.Get("macronutrients")
	if !macros.IsObject() {
		return false
	}
	for _, k := range []string{"protein", "fat", "carbs"} {
		if !nonNegative(macros.Get(k)) {
			return false
		}
	}
	return true
}

func validMealPlan(doc gjson.Result) bool {
	week := doc.Get("weekPlan")
	if !week.IsArray() {
		return false
	}
	days := 0
	for _, d := range week.Array() {
		if d.IsObject() {
			days++
		}
	}
	if days == 0 {
		return false
	}
	return doc.Get("groceryList").IsObject() && doc.Get("nutritionSummary").IsObject()
}

func nonNegative(v gjson.Result) bool {
	return v.Type == gjson.Number && v.Num >= 0
}

// FormatFoodName capitalises the first letter of every whitespace-separated
// word and lower-cases the rest, collapsing runs of whitespace.
func FormatFoodName(name string) string {
	words := strings.Fields(strings.ToLower(name))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
