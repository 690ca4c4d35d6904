package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Elephante152/mealgenie-magic/internal/models"
	"github.com/Elephante152/mealgenie-magic/internal/repository"
)

const generationDebitReason = "meal_plan_generation"

// PgGenerationStore persists a generation attempt in a single transaction.
// The advisory lock serializes concurrent generations by the same user (two
// browser tabs), and the conditional debit is the last write: if the balance
// no longer covers the cost, the rollback removes every row the attempt
// created, so no orphaned recipes or plans survive a lost race.
type PgGenerationStore struct {
	db *pgxpool.Pool
}

func NewPgGenerationStore(db *pgxpool.Pool) *PgGenerationStore {
	return &PgGenerationStore{db: db}
}

func (s *PgGenerationStore) SaveGeneration(
	ctx context.Context,
	userID int64,
	cost int,
	plan parsedPlan,
) (*models.MealPlan, []models.Recipe, int, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, 0, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", userID); err != nil {
		return nil, nil, 0, err
	}

	txRecipeRepo := repository.NewRecipeRepository(tx)
	txPlanRepo := repository.NewMealPlanRepository(tx)
	txLedgerRepo := repository.NewCreditLedgerRepository(tx)
	txProfileRepo := repository.NewProfileRepository(tx)

	recipes := make([]models.Recipe, 0, len(plan.Recipes))
	recipeIDs := make([]int64, 0, len(plan.Recipes))
	for _, generated := range plan.Recipes {
		recipe, err := txRecipeRepo.Create(ctx, repository.CreateRecipeInput{
			UserID:       &userID,
			Title:        generated.Title,
			Ingredients:  generated.Ingredients,
			Instructions: generated.Instructions,
			IsPublic:     false,
		})
		if err != nil {
			return nil, nil, 0, err
		}
		recipes = append(recipes, *recipe)
		recipeIDs = append(recipeIDs, recipe.ID)
	}

	mealPlan, err := txPlanRepo.Create(ctx, repository.CreateMealPlanInput{
		UserID:    userID,
		PlanName:  plan.PlanName,
		RecipeIDs: recipeIDs,
	})
	if err != nil {
		return nil, nil, 0, err
	}

	if _, err := txLedgerRepo.Create(ctx, repository.CreateCreditEntryInput{
		UserID:     userID,
		MealPlanID: &mealPlan.ID,
		Amount:     -cost,
		Reason:     generationDebitReason,
	}); err != nil {
		return nil, nil, 0, err
	}

	remaining, err := txProfileRepo.DebitCredits(ctx, userID, cost)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, 0, ErrInsufficientCredits
		}
		return nil, nil, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, 0, err
	}

	return mealPlan, recipes, remaining, nil
}
