package services

import (
	"strings"
	"testing"

	"github.com/Elephante152/mealgenie-magic/internal/models"
)

func buildRecipes(titles ...string) []models.Recipe {
	recipes := make([]models.Recipe, 0, len(titles))
	for i, title := range titles {
		recipes = append(recipes, models.Recipe{ID: int64(i + 1), Title: title})
	}
	return recipes
}

func TestFormatPlanContentEmpty(t *testing.T) {
	got := FormatPlanContent(nil, models.PlanParameters{NumDays: 7, MealsPerDay: 3})
	if got != "No recipes in this meal plan yet." {
		t.Fatalf("expected empty plan message, got %q", got)
	}
}

func TestFormatPlanContentTwoDaysTwoMeals(t *testing.T) {
	recipes := buildRecipes("Oatmeal", "Lentil Soup", "Omelette", "Pasta")
	got := FormatPlanContent(recipes, models.PlanParameters{NumDays: 2, MealsPerDay: 2})

	want := "Day 1:\n\n" +
		"Breakfast:\n- Oatmeal\n\n" +
		"Lunch:\n- Lentil Soup\n\n" +
		"Day 2:\n\n" +
		"Breakfast:\n- Omelette\n\n" +
		"Lunch:\n- Pasta\n\n"
	if got != want {
		t.Fatalf("unexpected formatted plan:\n%q\nwant:\n%q", got, want)
	}
}

func TestFormatPlanContentFillsMissingSlots(t *testing.T) {
	recipes := buildRecipes("Oatmeal")
	got := FormatPlanContent(recipes, models.PlanParameters{NumDays: 1, MealsPerDay: 3})

	if !strings.Contains(got, "Breakfast:\n- Oatmeal") {
		t.Fatalf("expected first slot filled, got:\n%s", got)
	}
	if count := strings.Count(got, "Recipe coming soon"); count != 2 {
		t.Fatalf("expected 2 placeholder slots, got %d:\n%s", count, got)
	}
	if !strings.Contains(got, "Dinner:\n- Recipe coming soon") {
		t.Fatalf("expected dinner placeholder, got:\n%s", got)
	}
}

func TestFormatPlanContentNumbersExtraSlots(t *testing.T) {
	recipes := buildRecipes("A", "B", "C", "D", "E")
	got := FormatPlanContent(recipes, models.PlanParameters{NumDays: 1, MealsPerDay: 5})

	for _, label := range []string{"Breakfast:", "Lunch:", "Dinner:", "Meal 4:", "Meal 5:"} {
		if !strings.Contains(got, label) {
			t.Fatalf("expected label %q in output:\n%s", label, got)
		}
	}
}

func TestFormatPlanContentConsumesSequentially(t *testing.T) {
	recipes := buildRecipes("A", "B", "C", "D", "E", "F")
	got := FormatPlanContent(recipes, models.PlanParameters{NumDays: 2, MealsPerDay: 3})

	if count := strings.Count(got, "Day "); count != 2 {
		t.Fatalf("expected 2 day headers, got %d", count)
	}
	dayTwo := got[strings.Index(got, "Day 2:"):]
	if !strings.Contains(dayTwo, "- D") || !strings.Contains(dayTwo, "- F") {
		t.Fatalf("expected day 2 to hold recipes D through F:\n%s", dayTwo)
	}
	if strings.Contains(dayTwo, "- A") {
		t.Fatalf("recipe A should belong to day 1:\n%s", dayTwo)
	}
}
