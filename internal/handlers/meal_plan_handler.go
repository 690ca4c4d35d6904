package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/Elephante152/mealgenie-magic/internal/models"
	"github.com/Elephante152/mealgenie-magic/internal/services"
)

type MealPlanHandler struct {
	service planApplicationService
}

type planApplicationService interface {
	ListPlans(ctx context.Context, userID int64, limit, offset int) (*services.PlanPage, error)
	GetPlanDetail(ctx context.Context, userID, planID int64) (*models.MealPlanDetail, error)
	SetFavorite(ctx context.Context, userID, planID int64, favorited bool) (*models.MealPlan, error)
	DeletePlan(ctx context.Context, userID, planID int64) error
}

func NewMealPlanHandler(service *services.PlanService) *MealPlanHandler {
	return &MealPlanHandler{service: service}
}

func (h *MealPlanHandler) ListPlans(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	page, limit := parsePagination(c)
	result, err := h.service.ListPlans(c.Context(), userID, limit, (page-1)*limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to fetch meal plans"})
	}

	return c.JSON(fiber.Map{
		"meal_plans": result.Plans,
		"pagination": buildPaginationMeta(page, limit, result.Total),
	})
}

func (h *MealPlanHandler) GetPlan(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	planID, err := c.ParamsInt("id")
	if err != nil || planID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid meal plan id"})
	}

	detail, err := h.service.GetPlanDetail(c.Context(), userID, int64(planID))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows), errors.Is(err, services.ErrPlanNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Meal plan not found"})
		case errors.Is(err, services.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not your meal plan"})
		default:
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"error": "Failed to fetch meal plan"})
		}
	}

	return c.JSON(detail)
}

type favoriteRequest struct {
	IsFavorited bool `json:"is_favorited"`
}

func (h *MealPlanHandler) SetFavorite(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	planID, err := c.ParamsInt("id")
	if err != nil || planID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid meal plan id"})
	}

	var req favoriteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	plan, err := h.service.SetFavorite(c.Context(), userID, int64(planID), req.IsFavorited)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Meal plan not found"})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to update meal plan"})
	}

	return c.JSON(fiber.Map{"meal_plan": plan})
}

func (h *MealPlanHandler) DeletePlan(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	planID, err := c.ParamsInt("id")
	if err != nil || planID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid meal plan id"})
	}

	if err := h.service.DeletePlan(c.Context(), userID, int64(planID)); err != nil {
		if errors.Is(err, services.ErrPlanNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Meal plan not found"})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to delete meal plan"})
	}

	return c.JSON(fiber.Map{"message": "Meal plan deleted"})
}
