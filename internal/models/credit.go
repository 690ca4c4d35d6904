package models

import "time"

// CreditEntry is one row of the credit ledger. Amount is negative for
// debits; generation debits reference the plan they paid for.
type CreditEntry struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	MealPlanID *int64    `json:"meal_plan_id,omitempty"`
	Amount     int       `json:"amount"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}
