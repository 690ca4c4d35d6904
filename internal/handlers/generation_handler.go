package handlers

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/Elephante152/mealgenie-magic/internal/services"
)

const maxGenerationDays = 14

type GenerationHandler struct {
	service planGenerationService
}

type planGenerationService interface {
	GenerateMealPlan(ctx context.Context, userID int64, input services.GenerateInput) (*services.GenerationResult, error)
}

func NewGenerationHandler(service *services.GenerationService) *GenerationHandler {
	return &GenerationHandler{service: service}
}

type generateRequest struct {
	AdditionalRequirements string `json:"additional_requirements"`
	IngredientImageURL     string `json:"ingredient_image_url"`
	NumDays                int    `json:"num_days"`
}

// Generate runs the plan generation workflow and returns the stored plan,
// its recipes and the balance left after the debit.
func (h *GenerationHandler) Generate(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req generateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.NumDays < 0 || req.NumDays > maxGenerationDays {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "num_days must be between 1 and 14"})
	}

	result, err := h.service.GenerateMealPlan(c.Context(), userID, services.GenerateInput{
		AdditionalRequirements: req.AdditionalRequirements,
		IngredientImageURL:     req.IngredientImageURL,
		NumDays:                req.NumDays,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInsufficientCredits):
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
				"error":   "Insufficient credits",
				"details": "Plan generation costs 10 credits",
			})
		case errors.Is(err, services.ErrProfileNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error":   "Profile not found",
				"details": "Complete onboarding before generating a meal plan",
			})
		case errors.Is(err, services.ErrUpstreamGeneration):
			log.Printf("generation upstream failure for user %d: %v", userID, err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error":   "Meal plan generation failed",
				"details": "The generation service returned an unusable response, please try again",
			})
		default:
			log.Printf("generation persistence failure for user %d: %v", userID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to save generated plan",
				"details": "No credits were charged, please try again",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}
