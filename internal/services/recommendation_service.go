package services

import (
	"context"
	"sort"
	"strings"

	"github.com/Elephante152/mealgenie-magic/internal/models"
)

type recipeCatalog interface {
	ListAllPublic(ctx context.Context) ([]models.Recipe, error)
}

// RecommendationService ranks public recipes against a user's stored
// preferences. Recipes containing a declared allergen are dropped outright;
// the rest are scored and sorted.
type RecommendationService struct {
	recipeRepo recipeCatalog
}

func NewRecommendationService(recipeRepo recipeCatalog) *RecommendationService {
	return &RecommendationService{recipeRepo: recipeRepo}
}

func (s *RecommendationService) GetRecommendedRecipes(
	ctx context.Context,
	profile *models.Profile,
	limit int,
) ([]models.RecipeWithScore, error) {
	recipes, err := s.recipeRepo.ListAllPublic(ctx)
	if err != nil {
		return nil, err
	}

	params := profile.PlanParams(0)

	matched := make([]models.RecipeWithScore, 0, len(recipes))
	for _, recipe := range recipes {
		if containsAllergen(&recipe, params.Allergies) {
			continue
		}
		matched = append(matched, models.RecipeWithScore{
			Recipe:     recipe,
			MatchScore: calculateRecipeScore(&recipe, params),
		})
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].MatchScore == matched[j].MatchScore {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].MatchScore > matched[j].MatchScore
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, nil
}

func calculateRecipeScore(recipe *models.Recipe, params models.PlanParameters) int {
	score := 0
	tags := normalizeSet(recipe.Tags)

	for _, cuisine := range params.Cuisines {
		if _, ok := tags[normalizeTag(cuisine)]; ok {
			score += 40
			break
		}
	}

	if diet := normalizeTag(params.Diet); diet != "" {
		if _, ok := tags[diet]; ok {
			score += 25
		}
	}

	if len(recipe.Tags) > 0 {
		score += 10
	}
	if recipe.ImageURL != nil && *recipe.ImageURL != "" {
		score += 10
	}

	return score
}

// containsAllergen matches declared allergens by substring against every
// ingredient line and tag; ingredient lines are free text ("2 tbsp peanut
// butter"), so substring is the only workable match.
func containsAllergen(recipe *models.Recipe, allergies []string) bool {
	for _, allergen := range allergies {
		needle := strings.ToLower(strings.TrimSpace(allergen))
		if needle == "" {
			continue
		}
		for _, ingredient := range recipe.Ingredients {
			if strings.Contains(strings.ToLower(ingredient), needle) {
				return true
			}
		}
		for _, tag := range recipe.Tags {
			if strings.Contains(strings.ToLower(tag), needle) {
				return true
			}
		}
	}
	return false
}

func normalizeSet(values []string) map[string]struct{} {
	normalized := make(map[string]struct{}, len(values))
	for _, value := range values {
		if key := normalizeTag(value); key != "" {
			normalized[key] = struct{}{}
		}
	}
	return normalized
}

func normalizeTag(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	value = strings.ReplaceAll(value, " ", "_")
	value = strings.ReplaceAll(value, "-", "_")
	return value
}
