package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/Elephante152/mealgenie-magic/internal/models"
	"github.com/Elephante152/mealgenie-magic/internal/repository"
)

var (
	testDBOnce sync.Once
	testDBPool *pgxpool.Pool
	testDBErr  error
)

func TestPgGenerationStoreSavesPlanAndDebits(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	store := NewPgGenerationStore(pool)

	userID := createGenerationTestUser(t, ctx, pool)
	t.Cleanup(func() { cleanupGenerationTestUsers(t, ctx, pool, userID) })

	plan := parsedPlan{
		PlanName: "Integration Week",
		Recipes: []parsedRecipe{
			{Title: "Test Oatmeal", Ingredients: []string{"50g oats"}, Instructions: "Boil."},
			{Title: "Test Salad", Ingredients: []string{"1 cucumber"}, Instructions: "Chop."},
		},
	}

	mealPlan, recipes, remaining, err := store.SaveGeneration(ctx, userID, GenerationCost, plan)
	if err != nil {
		t.Fatalf("SaveGeneration: %v", err)
	}

	if mealPlan.PlanName != "Integration Week" || mealPlan.UserID != userID {
		t.Fatalf("unexpected meal plan %+v", mealPlan)
	}
	if len(recipes) != 2 || len(mealPlan.RecipeIDs) != 2 {
		t.Fatalf("expected 2 recipes, got %d recipes and %d refs", len(recipes), len(mealPlan.RecipeIDs))
	}
	if recipes[0].ID != mealPlan.RecipeIDs[0] || recipes[1].ID != mealPlan.RecipeIDs[1] {
		t.Fatalf("recipe ids out of order: %+v vs %+v", recipes, mealPlan.RecipeIDs)
	}
	if remaining != models.DefaultCredits-GenerationCost {
		t.Fatalf("expected remaining %d, got %d", models.DefaultCredits-GenerationCost, remaining)
	}

	entries, err := repository.NewCreditLedgerRepository(pool).ListByUserID(ctx, userID, 10)
	if err != nil {
		t.Fatalf("ListByUserID ledger: %v", err)
	}
	if len(entries) != 1 || entries[0].Amount != -GenerationCost {
		t.Fatalf("expected one debit entry of %d, got %+v", -GenerationCost, entries)
	}
	if entries[0].MealPlanID == nil || *entries[0].MealPlanID != mealPlan.ID {
		t.Fatalf("expected ledger entry referencing plan %d, got %+v", mealPlan.ID, entries[0])
	}
}

func TestPgGenerationStoreRollsBackWhenBalanceTooLow(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	store := NewPgGenerationStore(pool)

	userID := createGenerationTestUser(t, ctx, pool)
	t.Cleanup(func() { cleanupGenerationTestUsers(t, ctx, pool, userID) })

	if _, err := pool.Exec(ctx, "UPDATE profiles SET credits = $2 WHERE user_id = $1", userID, GenerationCost-1); err != nil {
		t.Fatalf("set low balance: %v", err)
	}

	plan := parsedPlan{
		PlanName: "Should Not Exist",
		Recipes:  []parsedRecipe{{Title: "Orphan", Ingredients: []string{"x"}, Instructions: "y"}},
	}

	_, _, _, err := store.SaveGeneration(ctx, userID, GenerationCost, plan)
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}

	var planCount, recipeCount, ledgerCount int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM meal_plans WHERE user_id = $1", userID).Scan(&planCount); err != nil {
		t.Fatalf("count plans: %v", err)
	}
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM recipes WHERE user_id = $1", userID).Scan(&recipeCount); err != nil {
		t.Fatalf("count recipes: %v", err)
	}
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM credit_ledger WHERE user_id = $1", userID).Scan(&ledgerCount); err != nil {
		t.Fatalf("count ledger: %v", err)
	}
	if planCount != 0 || recipeCount != 0 || ledgerCount != 0 {
		t.Fatalf("expected full rollback, got %d plans, %d recipes, %d ledger rows", planCount, recipeCount, ledgerCount)
	}

	var credits int
	if err := pool.QueryRow(ctx, "SELECT credits FROM profiles WHERE user_id = $1", userID).Scan(&credits); err != nil {
		t.Fatalf("read credits: %v", err)
	}
	if credits != GenerationCost-1 {
		t.Fatalf("expected untouched balance %d, got %d", GenerationCost-1, credits)
	}
}

func integrationTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	testDBOnce.Do(func() {
		_ = godotenv.Load(".env")
		_ = godotenv.Load(filepath.Join("..", "..", ".env"))

		dbURL := os.Getenv("DB_URL")
		if dbURL == "" {
			testDBErr = fmt.Errorf("DB_URL is not set")
			return
		}

		cfg, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			testDBErr = err
			return
		}

		testDBPool, testDBErr = pgxpool.NewWithConfig(context.Background(), cfg)
		if testDBErr != nil {
			return
		}
		testDBErr = testDBPool.Ping(context.Background())
	})

	if testDBErr != nil {
		t.Skipf("skipping integration test: %v", testDBErr)
	}
	return testDBPool
}

func createGenerationTestUser(t *testing.T, ctx context.Context, pool *pgxpool.Pool) int64 {
	t.Helper()

	userRepo := repository.NewUserRepository(pool)
	user := &models.User{
		Email:        fmt.Sprintf("generation-test-%d@example.com", time.Now().UnixNano()),
		PasswordHash: "test-hash",
		Role:         "user",
	}
	if err := userRepo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := repository.NewProfileRepository(pool).CreateEmpty(ctx, user.ID); err != nil {
		t.Fatalf("CreateEmpty profile: %v", err)
	}
	return user.ID
}

func cleanupGenerationTestUsers(t *testing.T, ctx context.Context, pool *pgxpool.Pool, userIDs ...int64) {
	t.Helper()

	if len(userIDs) == 0 {
		return
	}

	if _, err := pool.Exec(ctx, "DELETE FROM credit_ledger WHERE user_id = ANY($1)", userIDs); err != nil {
		t.Fatalf("cleanup ledger: %v", err)
	}
	if _, err := pool.Exec(ctx, "DELETE FROM meal_plans WHERE user_id = ANY($1)", userIDs); err != nil {
		t.Fatalf("cleanup meal plans: %v", err)
	}
	if _, err := pool.Exec(ctx, "DELETE FROM recipes WHERE user_id = ANY($1)", userIDs); err != nil {
		t.Fatalf("cleanup recipes: %v", err)
	}
	if _, err := pool.Exec(ctx, "DELETE FROM users WHERE id = ANY($1)", userIDs); err != nil {
		t.Fatalf("cleanup users: %v", err)
	}
}
