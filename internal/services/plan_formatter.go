package services

import (
	"fmt"
	"strings"

	"github.com/Elephante152/mealgenie-magic/internal/models"
)

const missingRecipeTitle = "Recipe coming soon"

// FormatPlanContent renders a recipe list into the day-by-day text shown on
// plan cards. Recipes are consumed strictly in order, one per meal slot
// across days; slots left over once the list runs out get a placeholder
// instead of truncating the output.
func FormatPlanContent(recipes []models.Recipe, params models.PlanParameters) string {
	if len(recipes) == 0 {
		return "No recipes in this meal plan yet."
	}

	var sb strings.Builder
	recipeIndex := 0

	for day := 1; day <= params.NumDays; day++ {
		fmt.Fprintf(&sb, "Day %d:\n\n", day)

		for slot := 0; slot < params.MealsPerDay; slot++ {
			title := missingRecipeTitle
			if recipeIndex < len(recipes) {
				title = recipes[recipeIndex].Title
			}
			fmt.Fprintf(&sb, "%s:\n- %s\n\n", mealSlotLabel(slot), title)
			recipeIndex++
		}
	}

	return sb.String()
}

// The first three slots carry the names the product has always used; the
// original UI never defined labels past dinner, so extra slots are numbered.
func mealSlotLabel(slot int) string {
	switch slot {
	case 0:
		return "Breakfast"
	case 1:
		return "Lunch"
	case 2:
		return "Dinner"
	default:
		return fmt.Sprintf("Meal %d", slot+1)
	}
}
