package repository

import (
	"context"

	"github.com/Elephante152/mealgenie-magic/internal/models"
)

type CreateCreditEntryInput struct {
	UserID     int64
	MealPlanID *int64
	Amount     int
	Reason     string
}

type CreditLedgerRepository struct {
	db DBTX
}

func NewCreditLedgerRepository(db DBTX) *CreditLedgerRepository {
	return &CreditLedgerRepository{db: db}
}

func (r *CreditLedgerRepository) Create(ctx context.Context, input CreateCreditEntryInput) (*models.CreditEntry, error) {
	query := `
		INSERT INTO credit_ledger (user_id, meal_plan_id, amount, reason)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, meal_plan_id, amount, reason, created_at
	`
	var entry models.CreditEntry
	err := r.db.QueryRow(ctx, query, input.UserID, input.MealPlanID, input.Amount, input.Reason).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.MealPlanID,
		&entry.Amount,
		&entry.Reason,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *CreditLedgerRepository) ListByUserID(ctx context.Context, userID int64, limit int) ([]models.CreditEntry, error) {
	query := `
		SELECT id, user_id, meal_plan_id, amount, reason, created_at
		FROM credit_ledger
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.CreditEntry{}
	for rows.Next() {
		var entry models.CreditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.MealPlanID,
			&entry.Amount,
			&entry.Reason,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
