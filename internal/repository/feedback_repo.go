package repository

import (
	"context"

	"github.com/Elephante152/mealgenie-magic/internal/models"
)

type CreateFeedbackInput struct {
	UserID   *int64
	RecipeID *int64
	Message  string
	Rating   *int
}

type FeedbackRepository struct {
	db DBTX
}

func NewFeedbackRepository(db DBTX) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) Create(ctx context.Context, input CreateFeedbackInput) (*models.Feedback, error) {
	query := `
		INSERT INTO feedback (user_id, recipe_id, message, rating)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, recipe_id, message, rating, created_at
	`
	var feedback models.Feedback
	err := r.db.QueryRow(ctx, query, input.UserID, input.RecipeID, input.Message, input.Rating).Scan(
		&feedback.ID,
		&feedback.UserID,
		&feedback.RecipeID,
		&feedback.Message,
		&feedback.Rating,
		&feedback.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &feedback, nil
}
