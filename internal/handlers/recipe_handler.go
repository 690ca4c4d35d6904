package handlers

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/Elephante152/mealgenie-magic/internal/repository"
	"github.com/Elephante152/mealgenie-magic/internal/services"
)

const defaultRecommendationLimit = 20

type RecipeHandler struct {
	recipeRepo            *repository.RecipeRepository
	profileRepo           *repository.ProfileRepository
	recommendationService *services.RecommendationService
	importer              *services.RecipeImporter
}

func NewRecipeHandler(
	recipeRepo *repository.RecipeRepository,
	profileRepo *repository.ProfileRepository,
	recommendationService *services.RecommendationService,
	importer *services.RecipeImporter,
) *RecipeHandler {
	return &RecipeHandler{
		recipeRepo:            recipeRepo,
		profileRepo:           profileRepo,
		recommendationService: recommendationService,
		importer:              importer,
	}
}

type createRecipeRequest struct {
	Title        string   `json:"title"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
	ImageURL     *string  `json:"image_url"`
	IsPublic     bool     `json:"is_public"`
	Tags         []string `json:"tags"`
}

func (h *RecipeHandler) CreateRecipe(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createRecipeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Title is required"})
	}
	if strings.TrimSpace(req.Instructions) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Instructions are required"})
	}

	recipe, err := h.recipeRepo.Create(c.Context(), repository.CreateRecipeInput{
		UserID:       &userID,
		Title:        req.Title,
		Ingredients:  cleanStringList(req.Ingredients),
		Instructions: req.Instructions,
		ImageURL:     req.ImageURL,
		IsPublic:     req.IsPublic,
		Tags:         cleanStringList(req.Tags),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to create recipe"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"recipe": recipe})
}

func (h *RecipeHandler) ListMyRecipes(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	page, limit := parsePagination(c)
	recipes, total, err := h.recipeRepo.ListByUserID(c.Context(), userID, limit, (page-1)*limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to fetch recipes"})
	}

	return c.JSON(fiber.Map{
		"recipes":    recipes,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *RecipeHandler) ListPublicRecipes(c *fiber.Ctx) error {
	page, limit := parsePagination(c)
	recipes, total, err := h.recipeRepo.ListPublic(c.Context(), limit, (page-1)*limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to fetch recipes"})
	}

	return c.JSON(fiber.Map{
		"recipes":    recipes,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *RecipeHandler) GetRecipe(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	recipeID, err := c.ParamsInt("id")
	if err != nil || recipeID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid recipe id"})
	}

	recipe, err := h.recipeRepo.GetByID(c.Context(), int64(recipeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Recipe not found"})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to fetch recipe"})
	}

	if !recipe.IsPublic && (recipe.UserID == nil || *recipe.UserID != userID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not your recipe"})
	}

	return c.JSON(fiber.Map{"recipe": recipe})
}

// GetRecommendedRecipes ranks the public catalog against the caller's
// stored preferences.
func (h *RecipeHandler) GetRecommendedRecipes(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	profile, err := h.profileRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to fetch profile"})
	}

	limit := defaultRecommendationLimit
	if raw := c.QueryInt("limit"); raw > 0 && raw <= maxPageLimit {
		limit = raw
	}

	recommended, err := h.recommendationService.GetRecommendedRecipes(c.Context(), profile, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to fetch recommendations"})
	}

	return c.JSON(fiber.Map{"recipes": recommended})
}

type importRecipeRequest struct {
	URL string `json:"url"`
}

// ImportRecipe fetches an external recipe page and extracts it into a
// private recipe owned by the caller.
func (h *RecipeHandler) ImportRecipe(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req importRecipeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	recipe, err := h.importer.ImportFromURL(c.Context(), userID, req.URL)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidImportURL):
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"error": "url must be an absolute http or https URL"})
		case errors.Is(err, services.ErrUpstreamGeneration):
			log.Printf("recipe import extraction failure for user %d: %v", userID, err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error":   "Recipe import failed",
				"details": "The page could not be read as a recipe",
			})
		default:
			log.Printf("recipe import failure for user %d: %v", userID, err)
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"error": "Failed to import recipe"})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"recipe": recipe})
}

func (h *RecipeHandler) DeleteRecipe(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	recipeID, err := c.ParamsInt("id")
	if err != nil || recipeID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid recipe id"})
	}

	deleted, err := h.recipeRepo.Delete(c.Context(), int64(recipeID), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to delete recipe"})
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Recipe not found"})
	}

	return c.JSON(fiber.Map{"message": "Recipe deleted"})
}
