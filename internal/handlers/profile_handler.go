package handlers

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/Elephante152/mealgenie-magic/internal/models"
	"github.com/Elephante152/mealgenie-magic/internal/repository"
	"github.com/Elephante152/mealgenie-magic/internal/services"
)

const maxUploadSize = 5 << 20 // 5 MiB

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".heic": true,
}

type profileStore interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Profile, error)
	UpdatePartial(ctx context.Context, userID int64, req repository.UpdateProfileInput) (*models.Profile, error)
}

type creditLedgerStore interface {
	ListByUserID(ctx context.Context, userID int64, limit int) ([]models.CreditEntry, error)
}

type ProfileHandler struct {
	profileRepo    profileStore
	ledgerRepo     creditLedgerStore
	storageService services.StorageService
}

func NewProfileHandler(
	profileRepo *repository.ProfileRepository,
	ledgerRepo *repository.CreditLedgerRepository,
	storageService services.StorageService,
) *ProfileHandler {
	return &ProfileHandler{
		profileRepo:    profileRepo,
		ledgerRepo:     ledgerRepo,
		storageService: storageService,
	}
}

func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
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

	return c.JSON(fiber.Map{"profile": profile})
}

type updateProfileRequest struct {
	Diet          *string   `json:"diet"`
	Cuisines      *[]string `json:"cuisines"`
	Allergies     *[]string `json:"allergies"`
	ActivityLevel *string   `json:"activity_level"`
	CalorieIntake *int      `json:"calorie_intake"`
	MealsPerDay   *int      `json:"meals_per_day"`
	CookingTools  *[]string `json:"cooking_tools"`
}

// UpdateProfile applies a partial preference edit; absent fields keep their
// stored values.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	input := repository.UpdateProfileInput{
		CalorieIntake: req.CalorieIntake,
		MealsPerDay:   req.MealsPerDay,
	}
	if req.Diet != nil {
		diet, err := validateDiet(*req.Diet)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		input.Diet = &diet
	}
	if req.ActivityLevel != nil {
		activity, err := validateActivityLevel(*req.ActivityLevel)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		input.ActivityLevel = &activity
	}
	if req.MealsPerDay != nil {
		if err := validateMealsPerDay(*req.MealsPerDay); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}
	if req.CalorieIntake != nil {
		if err := validateCalorieIntake(*req.CalorieIntake); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}
	if req.Cuisines != nil {
		cleaned := cleanStringList(*req.Cuisines)
		input.Cuisines = &cleaned
	}
	if req.Allergies != nil {
		cleaned := cleanStringList(*req.Allergies)
		input.Allergies = &cleaned
	}
	if req.CookingTools != nil {
		cleaned := cleanStringList(*req.CookingTools)
		input.CookingTools = &cleaned
	}

	profile, err := h.profileRepo.UpdatePartial(c.Context(), userID, input)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to update profile"})
	}

	return c.JSON(fiber.Map{"profile": profile})
}

// GetCredits returns the current balance plus recent ledger entries.
func (h *ProfileHandler) GetCredits(c *fiber.Ctx) error {
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

	entries, err := h.ledgerRepo.ListByUserID(c.Context(), userID, 50)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to fetch credit history"})
	}

	return c.JSON(fiber.Map{
		"credits": profile.Credits,
		"history": entries,
	})
}

// UploadIngredientImage accepts a multipart photo of ingredients and returns
// the stored URL for use in a later generation request.
func (h *ProfileHandler) UploadIngredientImage(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	if h.storageService == nil {
		return c.Status(fiber.StatusServiceUnavailable).
			JSON(fiber.Map{"error": "File storage is not configured"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing file"})
	}
	if fileHeader.Size > maxUploadSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).
			JSON(fiber.Map{"error": "File exceeds 5MB limit"})
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedImageExtensions[ext] {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "Unsupported file type, expected an image"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read file"})
	}
	defer file.Close()

	filename := fmt.Sprintf("u%d-%d%s", userID, time.Now().UnixNano(), ext)
	url, err := h.storageService.UploadFile(c.Context(), file, filename, "ingredient-images")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to store file"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": url})
}
