package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/Elephante152/mealgenie-magic/internal/models"
	"github.com/Elephante152/mealgenie-magic/internal/repository"
)

type onboardingProfileStore interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Profile, error)
	UpdateOnboarding(ctx context.Context, userID int64, req repository.OnboardingInput) (*models.Profile, error)
}

type OnboardingHandler struct {
	profileRepo onboardingProfileStore
}

func NewOnboardingHandler(profileRepo *repository.ProfileRepository) *OnboardingHandler {
	return &OnboardingHandler{profileRepo: profileRepo}
}

type onboardingRequest struct {
	Diet          string   `json:"diet"`
	Cuisines      []string `json:"cuisines"`
	Allergies     []string `json:"allergies"`
	ActivityLevel string   `json:"activity_level"`
	CalorieIntake int      `json:"calorie_intake"`
	MealsPerDay   int      `json:"meals_per_day"`
	CookingTools  []string `json:"cooking_tools"`
}

// Complete stores the full preference set and marks onboarding done. All
// fields are required here; partial edits go through the profile update
// endpoint instead.
func (h *OnboardingHandler) Complete(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req onboardingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	diet, err := validateDiet(req.Diet)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	activity, err := validateActivityLevel(req.ActivityLevel)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validateMealsPerDay(req.MealsPerDay); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validateCalorieIntake(req.CalorieIntake); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	profile, err := h.profileRepo.UpdateOnboarding(c.Context(), userID, repository.OnboardingInput{
		Diet:          diet,
		Cuisines:      cleanStringList(req.Cuisines),
		Allergies:     cleanStringList(req.Allergies),
		ActivityLevel: activity,
		CalorieIntake: req.CalorieIntake,
		MealsPerDay:   req.MealsPerDay,
		CookingTools:  cleanStringList(req.CookingTools),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to save preferences"})
	}

	return c.JSON(fiber.Map{
		"message": "Onboarding complete",
		"profile": profile,
	})
}

// Status reports whether the user has completed onboarding.
func (h *OnboardingHandler) Status(c *fiber.Ctx) error {
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

	return c.JSON(fiber.Map{"onboarding_complete": profile.OnboardingComplete})
}
