package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Elephante152/mealgenie-magic/internal/llm"
	"github.com/Elephante152/mealgenie-magic/internal/models"
)

var (
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrUpstreamGeneration  = errors.New("upstream generation failed")
	ErrPersistence         = errors.New("failed to persist generated plan")
	ErrProfileNotFound     = errors.New("profile not found")
)

// GenerationCost is the credit price of one generation. Generation is
// refused outright below this balance.
const GenerationCost = 10

const generationSystemInstruction = `You are a professional meal planner. ` +
	`Respond with a single JSON object and nothing else, using exactly this structure: ` +
	`{"plan_name": string, "recipes": [{"title": string, "ingredients": [string], "instructions": string}]}. ` +
	`Each ingredients entry is a quantity plus name, e.g. "2 tbsp olive oil". ` +
	`Do not wrap the JSON in markdown fences or add commentary.`

type generationProfileReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Profile, error)
}

// generationStore persists one generation attempt: all recipes, the plan,
// the ledger row and the credit debit, atomically. Implementations return
// ErrInsufficientCredits when the conditional debit loses a race.
type generationStore interface {
	SaveGeneration(ctx context.Context, userID int64, cost int, plan parsedPlan) (*models.MealPlan, []models.Recipe, int, error)
}

// planCacheInvalidator drops cached plan list pages once a new plan exists.
type planCacheInvalidator interface {
	InvalidateUserPlans(ctx context.Context, userID int64)
}

type GenerationService struct {
	profileRepo generationProfileReader
	store       generationStore
	textGen     llm.TextGenerator
	cache       planCacheInvalidator
	storage     StorageService
}

// NewGenerationService builds the generation workflow. cache and storage are
// optional: nil skips list-cache invalidation and ingredient photo cleanup.
func NewGenerationService(
	profileRepo generationProfileReader,
	store generationStore,
	textGen llm.TextGenerator,
	cache planCacheInvalidator,
	storage StorageService,
) *GenerationService {
	return &GenerationService{
		profileRepo: profileRepo,
		store:       store,
		textGen:     textGen,
		cache:       cache,
		storage:     storage,
	}
}

type GenerateInput struct {
	AdditionalRequirements string
	IngredientImageURL     string
	NumDays                int
}

type GenerationResult struct {
	MealPlan         *models.MealPlan `json:"meal_plan"`
	Recipes          []models.Recipe  `json:"recipes"`
	RemainingCredits int              `json:"remaining_credits"`
}

// GenerateMealPlan runs the full generation workflow: credit gate, prompt
// construction, upstream call, strict response validation, then atomic
// persistence plus debit. Nothing is written before the upstream response
// validates, so upstream failures are always safe to retry.
func (s *GenerationService) GenerateMealPlan(ctx context.Context, userID int64, input GenerateInput) (*GenerationResult, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, ErrProfileNotFound
	}
	if profile.Credits < GenerationCost {
		return nil, ErrInsufficientCredits
	}

	params := profile.PlanParams(input.NumDays)
	prompt := buildGenerationPrompt(params, input)

	raw, err := s.textGen.GenerateContent(ctx, generationSystemInstruction, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamGeneration, err)
	}

	plan, err := parseGeneratedPlan(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamGeneration, err)
	}

	mealPlan, recipes, remaining, err := s.store.SaveGeneration(ctx, userID, GenerationCost, plan)
	if err != nil {
		if errors.Is(err, ErrInsufficientCredits) {
			return nil, ErrInsufficientCredits
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if s.cache != nil {
		s.cache.InvalidateUserPlans(ctx, userID)
	}
	if s.storage != nil {
		if url := strings.TrimSpace(input.IngredientImageURL); url != "" {
			// The photo served its purpose; failing to remove it only
			// leaves a stray object behind.
			if err := s.storage.DeleteFile(ctx, url); err != nil {
				log.Printf("failed to delete ingredient photo %s: %v", url, err)
			}
		}
	}

	return &GenerationResult{
		MealPlan:         mealPlan,
		Recipes:          recipes,
		RemainingCredits: remaining,
	}, nil
}

func buildGenerationPrompt(params models.PlanParameters, input GenerateInput) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Create a meal plan covering %d days with %d meals per day (%d recipes in total).\n",
		params.NumDays, params.MealsPerDay, params.NumDays*params.MealsPerDay)
	fmt.Fprintf(&sb, "Target roughly %d calories per day.\n", params.CalorieIntake)

	if params.Diet != "" {
		fmt.Fprintf(&sb, "Dietary restriction: every recipe must be %s.\n", params.Diet)
	}
	if len(params.Allergies) > 0 {
		fmt.Fprintf(&sb, "Strictly exclude these allergens from all recipes: %s.\n", strings.Join(params.Allergies, ", "))
	}
	if len(params.Cuisines) > 0 {
		fmt.Fprintf(&sb, "Preferred cuisines: %s.\n", strings.Join(params.Cuisines, ", "))
	}
	if req := strings.TrimSpace(input.AdditionalRequirements); req != "" {
		fmt.Fprintf(&sb, "Additional requirements from the user: %s\n", req)
	}
	if url := strings.TrimSpace(input.IngredientImageURL); url != "" {
		fmt.Fprintf(&sb, "The user uploaded a photo of ingredients they have on hand: %s. Prefer recipes using them.\n", url)
	}

	sb.WriteString("Order the recipes day by day: breakfast first, then lunch, then dinner.")
	return sb.String()
}

type parsedRecipe struct {
	Title        string   `json:"title"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
}

type parsedPlan struct {
	PlanName string         `json:"plan_name"`
	Recipes  []parsedRecipe `json:"recipes"`
}

// parseGeneratedPlan enforces the response contract. Anything that is not
// the exact expected shape is an upstream error, never a partial success.
// An empty recipes array is accepted and yields an empty plan.
func parseGeneratedPlan(raw string) (parsedPlan, error) {
	var plan parsedPlan
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &plan); err != nil {
		return parsedPlan{}, fmt.Errorf("response is not valid JSON: %v", err)
	}

	if strings.TrimSpace(plan.PlanName) == "" {
		return parsedPlan{}, fmt.Errorf("response is missing plan_name")
	}
	if plan.Recipes == nil {
		return parsedPlan{}, fmt.Errorf("response is missing recipes")
	}
	for i, recipe := range plan.Recipes {
		if strings.TrimSpace(recipe.Title) == "" {
			return parsedPlan{}, fmt.Errorf("recipe %d is missing a title", i+1)
		}
		if recipe.Ingredients == nil {
			return parsedPlan{}, fmt.Errorf("recipe %q is missing ingredients", recipe.Title)
		}
		if strings.TrimSpace(recipe.Instructions) == "" {
			return parsedPlan{}, fmt.Errorf("recipe %q is missing instructions", recipe.Title)
		}
	}

	return plan, nil
}

// stripCodeFences unwraps a ```json ... ``` block if the model added one
// despite the instruction not to.
func stripCodeFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
