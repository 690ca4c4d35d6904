package models

import "time"

type Recipe struct {
	ID           int64     `json:"id"`
	UserID       *int64    `json:"user_id,omitempty"`
	Title        string    `json:"title"`
	Ingredients  []string  `json:"ingredients"`
	Instructions string    `json:"instructions"`
	ImageURL     *string   `json:"image_url,omitempty"`
	IsPublic     bool      `json:"is_public"`
	Tags         []string  `json:"tags,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type RecipeWithScore struct {
	Recipe
	MatchScore int `json:"match_score"`
}
