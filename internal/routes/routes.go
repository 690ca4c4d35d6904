package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Elephante152/mealgenie-magic/internal/config"
	"github.com/Elephante152/mealgenie-magic/internal/handlers"
	"github.com/Elephante152/mealgenie-magic/internal/llm"
	"github.com/Elephante152/mealgenie-magic/internal/middleware"
	"github.com/Elephante152/mealgenie-magic/internal/repository"
	"github.com/Elephante152/mealgenie-magic/internal/services"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool, rdb *redis.Client, textGen llm.TextGenerator) error {
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	mealPlanRepo := repository.NewMealPlanRepository(db)
	ledgerRepo := repository.NewCreditLedgerRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)

	var storageService services.StorageService
	if cfg.SupabaseURL != "" && cfg.SupabaseBucket != "" && cfg.SupabaseServiceKey != "" {
		storageService = services.NewSupabaseStorageService(cfg.SupabaseURL, cfg.SupabaseBucket, cfg.SupabaseServiceKey)
	}

	generationStore := services.NewPgGenerationStore(db)
	planService := services.NewPlanService(mealPlanRepo, recipeRepo, profileRepo, rdb)
	generationService := services.NewGenerationService(profileRepo, generationStore, textGen, planService, storageService)
	recommendationService := services.NewRecommendationService(recipeRepo)
	importer := services.NewRecipeImporter(recipeRepo, textGen)

	authHandler := handlers.NewAuthHandler(db, userRepo, profileRepo, cfg.JWTSecret)
	onboardingHandler := handlers.NewOnboardingHandler(profileRepo)
	profileHandler := handlers.NewProfileHandler(profileRepo, ledgerRepo, storageService)
	generationHandler := handlers.NewGenerationHandler(generationService)
	mealPlanHandler := handlers.NewMealPlanHandler(planService)
	recipeHandler := handlers.NewRecipeHandler(recipeRepo, profileRepo, recommendationService, importer)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackRepo)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	users := authProtected.Group("/users")
	users.Post("/onboarding", onboardingHandler.Complete)
	users.Get("/onboarding", onboardingHandler.Status)
	users.Get("/profile", profileHandler.GetProfile)
	users.Put("/profile", profileHandler.UpdateProfile)
	users.Get("/credits", profileHandler.GetCredits)
	users.Post("/uploads/ingredient-image", profileHandler.UploadIngredientImage)

	mealPlans := authProtected.Group("/meal-plans")
	mealPlans.Post("/generate", generationHandler.Generate)
	mealPlans.Get("", mealPlanHandler.ListPlans)
	mealPlans.Get("/:id", mealPlanHandler.GetPlan)
	mealPlans.Put("/:id/favorite", mealPlanHandler.SetFavorite)
	mealPlans.Delete("/:id", mealPlanHandler.DeletePlan)

	recipes := authProtected.Group("/recipes")
	recipes.Post("", recipeHandler.CreateRecipe)
	recipes.Get("", recipeHandler.ListMyRecipes)
	recipes.Get("/public", recipeHandler.ListPublicRecipes)
	recipes.Get("/recommended", recipeHandler.GetRecommendedRecipes)
	recipes.Post("/import", recipeHandler.ImportRecipe)
	recipes.Get("/:id", recipeHandler.GetRecipe)
	recipes.Delete("/:id", recipeHandler.DeleteRecipe)

	authProtected.Post("/feedback", feedbackHandler.SubmitFeedback)

	return registerDocsRoutes(app, cfg)
}
