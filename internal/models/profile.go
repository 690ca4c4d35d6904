package models

import "time"

// Default values applied wherever preferences are read with fields unset.
// Every consumer goes through PlanParameters / Normalize instead of
// re-deriving its own fallbacks.
const (
	DefaultMealsPerDay   = 3
	DefaultNumDays       = 7
	DefaultCalorieIntake = 2000
	DefaultCredits       = 100
)

type Profile struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	Diet               *string   `json:"diet"`
	Cuisines           *[]string `json:"cuisines"`
	Allergies          *[]string `json:"allergies"`
	ActivityLevel      *string   `json:"activity_level"`
	CalorieIntake      *int      `json:"calorie_intake"`
	MealsPerDay        *int      `json:"meals_per_day"`
	CookingTools       *[]string `json:"cooking_tools"`
	Credits            int       `json:"credits"`
	OnboardingComplete bool      `json:"onboarding_complete"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// PlanParameters is the canonical, fully-defaulted view of the preference
// fields the planner and formatter care about.
type PlanParameters struct {
	Diet          string   `json:"diet"`
	Cuisines      []string `json:"cuisines"`
	Allergies     []string `json:"allergies"`
	CalorieIntake int      `json:"calorie_intake"`
	MealsPerDay   int      `json:"meals_per_day"`
	NumDays       int      `json:"num_days"`
}

// PlanParams normalizes a profile into PlanParameters, applying defaults for
// anything unset. numDays is a per-request value, not a stored preference;
// pass 0 to use the default.
func (p *Profile) PlanParams(numDays int) PlanParameters {
	params := PlanParameters{
		CalorieIntake: DefaultCalorieIntake,
		MealsPerDay:   DefaultMealsPerDay,
		NumDays:       DefaultNumDays,
	}
	if p == nil {
		return params
	}
	if p.Diet != nil {
		params.Diet = *p.Diet
	}
	if p.Cuisines != nil {
		params.Cuisines = *p.Cuisines
	}
	if p.Allergies != nil {
		params.Allergies = *p.Allergies
	}
	if p.CalorieIntake != nil && *p.CalorieIntake > 0 {
		params.CalorieIntake = *p.CalorieIntake
	}
	if p.MealsPerDay != nil && *p.MealsPerDay > 0 {
		params.MealsPerDay = *p.MealsPerDay
	}
	if numDays > 0 {
		params.NumDays = numDays
	}
	return params
}
