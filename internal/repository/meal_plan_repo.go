package repository

import (
	"context"
	"time"

	"github.com/Elephante152/mealgenie-magic/internal/models"
)

type MealPlanRepository struct {
	db DBTX
}

func NewMealPlanRepository(db DBTX) *MealPlanRepository {
	return &MealPlanRepository{db: db}
}

type CreateMealPlanInput struct {
	UserID    int64
	PlanName  string
	RecipeIDs []int64
	StartDate *time.Time
	EndDate   *time.Time
}

const mealPlanColumns = `id, user_id, plan_name, recipe_ids, is_favorited, start_date, end_date, created_at`

func (r *MealPlanRepository) Create(ctx context.Context, input CreateMealPlanInput) (*models.MealPlan, error) {
	query := `
		INSERT INTO meal_plans (user_id, plan_name, recipe_ids, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + mealPlanColumns + `
	`
	recipeIDs := input.RecipeIDs
	if recipeIDs == nil {
		recipeIDs = []int64{}
	}
	return r.scanPlan(r.db.QueryRow(ctx, query,
		input.UserID, input.PlanName, recipeIDs, input.StartDate, input.EndDate))
}

func (r *MealPlanRepository) GetByID(ctx context.Context, id int64) (*models.MealPlan, error) {
	query := `SELECT ` + mealPlanColumns + ` FROM meal_plans WHERE id = $1`
	return r.scanPlan(r.db.QueryRow(ctx, query, id))
}

func (r *MealPlanRepository) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]models.MealPlan, int, error) {
	query := `
		SELECT ` + mealPlanColumns + `
		FROM meal_plans
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	plans := []models.MealPlan{}
	for rows.Next() {
		var plan models.MealPlan
		if err := rows.Scan(
			&plan.ID,
			&plan.UserID,
			&plan.PlanName,
			&plan.RecipeIDs,
			&plan.IsFavorited,
			&plan.StartDate,
			&plan.EndDate,
			&plan.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM meal_plans WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	return plans, total, nil
}

func (r *MealPlanRepository) UpdateFavorite(ctx context.Context, id, userID int64, favorited bool) (*models.MealPlan, error) {
	query := `
		UPDATE meal_plans
		SET is_favorited = $3
		WHERE id = $1 AND user_id = $2
		RETURNING ` + mealPlanColumns + `
	`
	return r.scanPlan(r.db.QueryRow(ctx, query, id, userID, favorited))
}

func (r *MealPlanRepository) Delete(ctx context.Context, id, userID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM meal_plans WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *MealPlanRepository) scanPlan(row rowScanner) (*models.MealPlan, error) {
	var plan models.MealPlan
	err := row.Scan(
		&plan.ID,
		&plan.UserID,
		&plan.PlanName,
		&plan.RecipeIDs,
		&plan.IsFavorited,
		&plan.StartDate,
		&plan.EndDate,
		&plan.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}
