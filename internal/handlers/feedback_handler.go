package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Elephante152/mealgenie-magic/internal/repository"
)

const maxFeedbackLength = 2000

type FeedbackHandler struct {
	feedbackRepo *repository.FeedbackRepository
}

func NewFeedbackHandler(feedbackRepo *repository.FeedbackRepository) *FeedbackHandler {
	return &FeedbackHandler{feedbackRepo: feedbackRepo}
}

type feedbackRequest struct {
	RecipeID *int64 `json:"recipe_id"`
	Message  string `json:"message"`
	Rating   *int   `json:"rating"`
}

func (h *FeedbackHandler) SubmitFeedback(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req feedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Message is required"})
	}
	if len(req.Message) > maxFeedbackLength {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "Message exceeds 2000 characters"})
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "Rating must be between 1 and 5"})
	}

	feedback, err := h.feedbackRepo.Create(c.Context(), repository.CreateFeedbackInput{
		UserID:   &userID,
		RecipeID: req.RecipeID,
		Message:  req.Message,
		Rating:   req.Rating,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to save feedback"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"feedback": feedback})
}
