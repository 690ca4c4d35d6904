package models

import "time"

type MealPlan struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	PlanName    string     `json:"plan_name"`
	RecipeIDs   []int64    `json:"recipe_ids"`
	IsFavorited bool       `json:"is_favorited"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// MealPlanDetail carries the plan together with its resolved recipes and the
// formatted day-by-day rendering. Recipes are ordered by their position in
// RecipeIDs; deleted recipes are simply absent and the formatter fills the
// gap with a placeholder.
type MealPlanDetail struct {
	MealPlan
	Recipes       []Recipe `json:"recipes"`
	FormattedPlan string   `json:"formatted_plan"`
}
