package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/Elephante152/mealgenie-magic/internal/models"
)

type stubProfileReader struct {
	profile *models.Profile
	err     error
}

func (s *stubProfileReader) GetByUserID(_ context.Context, _ int64) (*models.Profile, error) {
	return s.profile, s.err
}

type stubTextGenerator struct {
	response   string
	err        error
	calls      int
	lastPrompt string
}

func (s *stubTextGenerator) GenerateContent(_ context.Context, _, prompt string) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	return s.response, s.err
}

type spyGenerationStore struct {
	calls      int
	lastUserID int64
	lastCost   int
	lastPlan   parsedPlan
	err        error
}

func (s *spyGenerationStore) SaveGeneration(_ context.Context, userID int64, cost int, plan parsedPlan) (*models.MealPlan, []models.Recipe, int, error) {
	s.calls++
	s.lastUserID = userID
	s.lastCost = cost
	s.lastPlan = plan
	if s.err != nil {
		return nil, nil, 0, s.err
	}

	recipes := make([]models.Recipe, 0, len(plan.Recipes))
	ids := make([]int64, 0, len(plan.Recipes))
	for i, r := range plan.Recipes {
		recipes = append(recipes, models.Recipe{
			ID:           int64(i + 1),
			Title:        r.Title,
			Ingredients:  r.Ingredients,
			Instructions: r.Instructions,
		})
		ids = append(ids, int64(i+1))
	}
	return &models.MealPlan{ID: 7, UserID: userID, PlanName: plan.PlanName, RecipeIDs: ids}, recipes, 90, nil
}

func profileWithCredits(credits int) *models.Profile {
	diet := "vegan"
	meals := 2
	return &models.Profile{
		UserID:      1,
		Diet:        &diet,
		MealsPerDay: &meals,
		Credits:     credits,
	}
}

const validGenerationResponse = `{
	"plan_name": "Vegan Week",
	"recipes": [
		{"title": "Tofu Scramble", "ingredients": ["200g tofu", "1 tsp turmeric"], "instructions": "Crumble and fry."},
		{"title": "Chickpea Curry", "ingredients": ["1 can chickpeas"], "instructions": "Simmer in coconut milk."}
	]
}`

func TestGenerateMealPlanRefusesBelowCost(t *testing.T) {
	textGen := &stubTextGenerator{response: validGenerationResponse}
	store := &spyGenerationStore{}
	service := NewGenerationService(&stubProfileReader{profile: profileWithCredits(GenerationCost - 1)}, store, textGen, nil, nil)

	_, err := service.GenerateMealPlan(context.Background(), 1, GenerateInput{})
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
	if textGen.calls != 0 {
		t.Fatalf("expected no upstream call, got %d", textGen.calls)
	}
	if store.calls != 0 {
		t.Fatalf("expected no store call, got %d", store.calls)
	}
}

func TestGenerateMealPlanSuccess(t *testing.T) {
	textGen := &stubTextGenerator{response: validGenerationResponse}
	store := &spyGenerationStore{}
	service := NewGenerationService(&stubProfileReader{profile: profileWithCredits(GenerationCost)}, store, textGen, nil, nil)

	result, err := service.GenerateMealPlan(context.Background(), 1, GenerateInput{NumDays: 1})
	if err != nil {
		t.Fatalf("GenerateMealPlan: %v", err)
	}

	if store.calls != 1 || store.lastUserID != 1 || store.lastCost != GenerationCost {
		t.Fatalf("unexpected store call: calls=%d user=%d cost=%d", store.calls, store.lastUserID, store.lastCost)
	}
	if result.MealPlan.PlanName != "Vegan Week" {
		t.Fatalf("expected plan name from response, got %q", result.MealPlan.PlanName)
	}
	if len(result.Recipes) != 2 || result.Recipes[0].Title != "Tofu Scramble" {
		t.Fatalf("expected recipes in response order, got %+v", result.Recipes)
	}
	if result.RemainingCredits != 90 {
		t.Fatalf("expected remaining credits from store, got %d", result.RemainingCredits)
	}
}

func TestGenerateMealPlanPromptCarriesPreferences(t *testing.T) {
	textGen := &stubTextGenerator{response: validGenerationResponse}
	store := &spyGenerationStore{}
	allergies := []string{"peanuts"}
	profile := profileWithCredits(50)
	profile.Allergies = &allergies
	service := NewGenerationService(&stubProfileReader{profile: profile}, store, textGen, nil, nil)

	_, err := service.GenerateMealPlan(context.Background(), 1, GenerateInput{
		AdditionalRequirements: "high protein",
	})
	if err != nil {
		t.Fatalf("GenerateMealPlan: %v", err)
	}

	for _, fragment := range []string{"vegan", "peanuts", "high protein", "2 meals per day"} {
		if !containsFold(textGen.lastPrompt, fragment) {
			t.Fatalf("expected prompt to mention %q, got:\n%s", fragment, textGen.lastPrompt)
		}
	}
}

func TestGenerateMealPlanUpstreamError(t *testing.T) {
	textGen := &stubTextGenerator{err: errors.New("timeout")}
	store := &spyGenerationStore{}
	service := NewGenerationService(&stubProfileReader{profile: profileWithCredits(100)}, store, textGen, nil, nil)

	_, err := service.GenerateMealPlan(context.Background(), 1, GenerateInput{})
	if !errors.Is(err, ErrUpstreamGeneration) {
		t.Fatalf("expected ErrUpstreamGeneration, got %v", err)
	}
	if store.calls != 0 {
		t.Fatalf("upstream failure must not reach the store, got %d calls", store.calls)
	}
}

func TestGenerateMealPlanMalformedResponse(t *testing.T) {
	textGen := &stubTextGenerator{response: `{"foo": "bar"}`}
	store := &spyGenerationStore{}
	service := NewGenerationService(&stubProfileReader{profile: profileWithCredits(100)}, store, textGen, nil, nil)

	_, err := service.GenerateMealPlan(context.Background(), 1, GenerateInput{})
	if !errors.Is(err, ErrUpstreamGeneration) {
		t.Fatalf("expected ErrUpstreamGeneration, got %v", err)
	}
	if store.calls != 0 {
		t.Fatalf("malformed response must not reach the store, got %d calls", store.calls)
	}
}

func TestGenerateMealPlanAcceptsEmptyRecipeList(t *testing.T) {
	textGen := &stubTextGenerator{response: `{"plan_name": "Empty Week", "recipes": []}`}
	store := &spyGenerationStore{}
	service := NewGenerationService(&stubProfileReader{profile: profileWithCredits(100)}, store, textGen, nil, nil)

	result, err := service.GenerateMealPlan(context.Background(), 1, GenerateInput{})
	if err != nil {
		t.Fatalf("GenerateMealPlan: %v", err)
	}
	if len(result.Recipes) != 0 {
		t.Fatalf("expected zero recipes, got %d", len(result.Recipes))
	}
	if store.calls != 1 {
		t.Fatalf("empty plan is still persisted and charged, got %d store calls", store.calls)
	}
}

func TestGenerateMealPlanDebitRaceSurfacesInsufficientCredits(t *testing.T) {
	textGen := &stubTextGenerator{response: validGenerationResponse}
	store := &spyGenerationStore{err: ErrInsufficientCredits}
	service := NewGenerationService(&stubProfileReader{profile: profileWithCredits(GenerationCost)}, store, textGen, nil, nil)

	_, err := service.GenerateMealPlan(context.Background(), 1, GenerateInput{})
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits from a lost debit race, got %v", err)
	}
}

func TestGenerateMealPlanStripsCodeFences(t *testing.T) {
	textGen := &stubTextGenerator{response: "```json\n" + validGenerationResponse + "\n```"}
	store := &spyGenerationStore{}
	service := NewGenerationService(&stubProfileReader{profile: profileWithCredits(100)}, store, textGen, nil, nil)

	result, err := service.GenerateMealPlan(context.Background(), 1, GenerateInput{})
	if err != nil {
		t.Fatalf("GenerateMealPlan: %v", err)
	}
	if result.MealPlan.PlanName != "Vegan Week" {
		t.Fatalf("expected fenced response to parse, got %q", result.MealPlan.PlanName)
	}
}

func TestGenerateMealPlanProfileMissing(t *testing.T) {
	service := NewGenerationService(
		&stubProfileReader{err: errors.New("no rows")},
		&spyGenerationStore{},
		&stubTextGenerator{response: validGenerationResponse},
		nil,
		nil,
	)

	_, err := service.GenerateMealPlan(context.Background(), 1, GenerateInput{})
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

type spyPlanCache struct {
	calls      int
	lastUserID int64
}

func (s *spyPlanCache) InvalidateUserPlans(_ context.Context, userID int64) {
	s.calls++
	s.lastUserID = userID
}

type spyStorage struct {
	uploadErr   error
	deleteErr   error
	deleteCalls int
	lastDeleted string
}

func (s *spyStorage) UploadFile(_ context.Context, _ multipart.File, filename, folder string) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	return "https://files.example.com/" + folder + "/" + filename, nil
}

func (s *spyStorage) DeleteFile(_ context.Context, fileURL string) error {
	s.deleteCalls++
	s.lastDeleted = fileURL
	return s.deleteErr
}

func TestGenerateMealPlanInvalidatesCachedLists(t *testing.T) {
	cache := &spyPlanCache{}
	service := NewGenerationService(
		&stubProfileReader{profile: profileWithCredits(100)},
		&spyGenerationStore{},
		&stubTextGenerator{response: validGenerationResponse},
		cache,
		nil,
	)

	if _, err := service.GenerateMealPlan(context.Background(), 42, GenerateInput{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.calls != 1 {
		t.Fatalf("expected one cache invalidation, got %d", cache.calls)
	}
	if cache.lastUserID != 42 {
		t.Fatalf("expected invalidation for user 42, got %d", cache.lastUserID)
	}
}

func TestGenerateMealPlanSkipsInvalidationOnStoreFailure(t *testing.T) {
	cache := &spyPlanCache{}
	service := NewGenerationService(
		&stubProfileReader{profile: profileWithCredits(100)},
		&spyGenerationStore{err: errors.New("connection reset")},
		&stubTextGenerator{response: validGenerationResponse},
		cache,
		nil,
	)

	if _, err := service.GenerateMealPlan(context.Background(), 42, GenerateInput{}); !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if cache.calls != 0 {
		t.Fatalf("expected no cache invalidation after failed save, got %d", cache.calls)
	}
}

func TestGenerateMealPlanDeletesIngredientPhoto(t *testing.T) {
	storage := &spyStorage{}
	service := NewGenerationService(
		&stubProfileReader{profile: profileWithCredits(100)},
		&spyGenerationStore{},
		&stubTextGenerator{response: validGenerationResponse},
		nil,
		storage,
	)

	input := GenerateInput{IngredientImageURL: "https://files.example.com/ingredient-images/u42-1.jpg"}
	if _, err := service.GenerateMealPlan(context.Background(), 42, input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if storage.deleteCalls != 1 {
		t.Fatalf("expected one delete call, got %d", storage.deleteCalls)
	}
	if storage.lastDeleted != input.IngredientImageURL {
		t.Fatalf("deleted wrong file: %s", storage.lastDeleted)
	}
}

func TestGenerateMealPlanKeepsPhotoWithoutURL(t *testing.T) {
	storage := &spyStorage{}
	service := NewGenerationService(
		&stubProfileReader{profile: profileWithCredits(100)},
		&spyGenerationStore{},
		&stubTextGenerator{response: validGenerationResponse},
		nil,
		storage,
	)

	if _, err := service.GenerateMealPlan(context.Background(), 1, GenerateInput{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if storage.deleteCalls != 0 {
		t.Fatalf("expected no delete call, got %d", storage.deleteCalls)
	}
}

func TestGenerateMealPlanSucceedsWhenPhotoDeleteFails(t *testing.T) {
	storage := &spyStorage{deleteErr: errors.New("object not found")}
	service := NewGenerationService(
		&stubProfileReader{profile: profileWithCredits(100)},
		&spyGenerationStore{},
		&stubTextGenerator{response: validGenerationResponse},
		nil,
		storage,
	)

	input := GenerateInput{IngredientImageURL: "https://files.example.com/ingredient-images/u1-1.jpg"}
	result, err := service.GenerateMealPlan(context.Background(), 1, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.MealPlan == nil {
		t.Fatal("expected a meal plan despite cleanup failure")
	}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
