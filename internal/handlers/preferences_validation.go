package handlers

import (
	"fmt"
	"strings"
)

var allowedDiets = map[string]bool{
	"omnivore":    true,
	"vegetarian":  true,
	"vegan":       true,
	"pescatarian": true,
	"keto":        true,
	"paleo":       true,
	"gluten-free": true,
}

var allowedActivityLevels = map[string]bool{
	"sedentary":   true,
	"light":       true,
	"moderate":    true,
	"active":      true,
	"very_active": true,
}

const (
	minMealsPerDay   = 1
	maxMealsPerDay   = 6
	minCalorieIntake = 800
	maxCalorieIntake = 6000
)

func validateDiet(diet string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(diet))
	if !allowedDiets[normalized] {
		return "", fmt.Errorf("unsupported diet %q", diet)
	}
	return normalized, nil
}

func validateActivityLevel(level string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if !allowedActivityLevels[normalized] {
		return "", fmt.Errorf("unsupported activity level %q", level)
	}
	return normalized, nil
}

func validateMealsPerDay(n int) error {
	if n < minMealsPerDay || n > maxMealsPerDay {
		return fmt.Errorf("meals_per_day must be between %d and %d", minMealsPerDay, maxMealsPerDay)
	}
	return nil
}

func validateCalorieIntake(n int) error {
	if n < minCalorieIntake || n > maxCalorieIntake {
		return fmt.Errorf("calorie_intake must be between %d and %d", minCalorieIntake, maxCalorieIntake)
	}
	return nil
}

// cleanStringList trims entries and drops empties, preserving order.
func cleanStringList(values []string) []string {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
