package repository

import (
	"context"

	"github.com/Elephante152/mealgenie-magic/internal/models"
)

type ProfileRepository struct {
	db DBTX
}

func NewProfileRepository(db DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, user_id, diet, cuisines, allergies, activity_level, calorie_intake,
	   meals_per_day, cooking_tools, credits, onboarding_complete, created_at, updated_at`

func (r *ProfileRepository) CreateEmpty(ctx context.Context, userID int64) error {
	query := `INSERT INTO profiles (user_id) VALUES ($1)`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE user_id = $1
	`
	return r.scanProfile(ctx, query, userID)
}

type OnboardingInput struct {
	Diet          string
	Cuisines      []string
	Allergies     []string
	ActivityLevel string
	CalorieIntake int
	MealsPerDay   int
	CookingTools  []string
}

func (r *ProfileRepository) UpdateOnboarding(ctx context.Context, userID int64, req OnboardingInput) (*models.Profile, error) {
	query := `
		UPDATE profiles
		SET diet = $1,
			cuisines = $2,
			allergies = $3,
			activity_level = $4,
			calorie_intake = $5,
			meals_per_day = $6,
			cooking_tools = $7,
			onboarding_complete = TRUE,
			updated_at = NOW()
		WHERE user_id = $8
		RETURNING ` + profileColumns + `
	`
	return r.scanProfile(ctx, query,
		req.Diet,
		req.Cuisines,
		req.Allergies,
		req.ActivityLevel,
		req.CalorieIntake,
		req.MealsPerDay,
		req.CookingTools,
		userID,
	)
}

type UpdateProfileInput struct {
	Diet          *string
	Cuisines      *[]string
	Allergies     *[]string
	ActivityLevel *string
	CalorieIntake *int
	MealsPerDay   *int
	CookingTools  *[]string
}

func (r *ProfileRepository) UpdatePartial(ctx context.Context, userID int64, req UpdateProfileInput) (*models.Profile, error) {
	query := `
		UPDATE profiles
		SET diet = COALESCE($1, diet),
			cuisines = COALESCE($2, cuisines),
			allergies = COALESCE($3, allergies),
			activity_level = COALESCE($4, activity_level),
			calorie_intake = COALESCE($5, calorie_intake),
			meals_per_day = COALESCE($6, meals_per_day),
			cooking_tools = COALESCE($7, cooking_tools),
			updated_at = NOW()
		WHERE user_id = $8
		RETURNING ` + profileColumns + `
	`
	return r.scanProfile(ctx, query,
		req.Diet,
		req.Cuisines,
		req.Allergies,
		req.ActivityLevel,
		req.CalorieIntake,
		req.MealsPerDay,
		req.CookingTools,
		userID,
	)
}

// DebitCredits atomically subtracts amount from the user's balance, but only
// when the balance still covers it. Returns pgx.ErrNoRows when it does not;
// the balance can never go negative because the condition and the write are
// one statement.
func (r *ProfileRepository) DebitCredits(ctx context.Context, userID int64, amount int) (int, error) {
	query := `
		UPDATE profiles
		SET credits = credits - $2,
			updated_at = NOW()
		WHERE user_id = $1 AND credits >= $2
		RETURNING credits
	`
	var remaining int
	if err := r.db.QueryRow(ctx, query, userID, amount).Scan(&remaining); err != nil {
		return 0, err
	}
	return remaining, nil
}

func (r *ProfileRepository) scanProfile(ctx context.Context, query string, args ...any) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Diet,
		&profile.Cuisines,
		&profile.Allergies,
		&profile.ActivityLevel,
		&profile.CalorieIntake,
		&profile.MealsPerDay,
		&profile.CookingTools,
		&profile.Credits,
		&profile.OnboardingComplete,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
