package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/Elephante152/mealgenie-magic/internal/models"
	"github.com/Elephante152/mealgenie-magic/internal/repository"
)

type stubProfileRepo struct {
	profile             *models.Profile
	lastOnboardingInput repository.OnboardingInput
	lastUpdatePartial   repository.UpdateProfileInput
	onboardingCalls     int
}

func (s *stubProfileRepo) GetByUserID(_ context.Context, _ int64) (*models.Profile, error) {
	return s.profile, nil
}

func (s *stubProfileRepo) UpdateOnboarding(_ context.Context, _ int64, req repository.OnboardingInput) (*models.Profile, error) {
	s.onboardingCalls++
	s.lastOnboardingInput = req
	if s.profile == nil {
		s.profile = &models.Profile{UserID: 42, Credits: models.DefaultCredits}
	}
	s.profile.Diet = &req.Diet
	s.profile.Cuisines = &req.Cuisines
	s.profile.Allergies = &req.Allergies
	s.profile.ActivityLevel = &req.ActivityLevel
	s.profile.CalorieIntake = &req.CalorieIntake
	s.profile.MealsPerDay = &req.MealsPerDay
	s.profile.CookingTools = &req.CookingTools
	s.profile.OnboardingComplete = true
	return s.profile, nil
}

func (s *stubProfileRepo) UpdatePartial(_ context.Context, _ int64, req repository.UpdateProfileInput) (*models.Profile, error) {
	s.lastUpdatePartial = req
	if s.profile == nil {
		s.profile = &models.Profile{UserID: 42, Credits: models.DefaultCredits}
	}
	if req.Diet != nil {
		s.profile.Diet = req.Diet
	}
	if req.MealsPerDay != nil {
		s.profile.MealsPerDay = req.MealsPerDay
	}
	return s.profile, nil
}

type stubLedgerRepo struct {
	entries []models.CreditEntry
}

func (s *stubLedgerRepo) ListByUserID(_ context.Context, _ int64, _ int) ([]models.CreditEntry, error) {
	return s.entries, nil
}

func newProfileTestApp(profileRepo *stubProfileRepo, ledgerRepo *stubLedgerRepo) *fiber.App {
	if ledgerRepo == nil {
		ledgerRepo = &stubLedgerRepo{}
	}
	onboardingHandler := &OnboardingHandler{profileRepo: profileRepo}
	profileHandler := &ProfileHandler{profileRepo: profileRepo, ledgerRepo: ledgerRepo}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "42")
		c.Locals("role", "user")
		return c.Next()
	})
	app.Post("/api/v1/users/onboarding", onboardingHandler.Complete)
	app.Get("/api/v1/users/onboarding", onboardingHandler.Status)
	app.Put("/api/v1/users/profile", profileHandler.UpdateProfile)
	app.Get("/api/v1/users/credits", profileHandler.GetCredits)
	app.Post("/api/v1/users/uploads/ingredient-image", profileHandler.UploadIngredientImage)
	return app
}

func TestOnboardingCompleteStoresPreferences(t *testing.T) {
	repo := &stubProfileRepo{}
	app := newProfileTestApp(repo, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/onboarding", strings.NewReader(`{
		"diet": "Vegan",
		"cuisines": ["thai", " italian "],
		"allergies": ["peanuts"],
		"activity_level": "moderate",
		"calorie_intake": 2200,
		"meals_per_day": 3,
		"cooking_tools": ["oven", ""]
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if repo.lastOnboardingInput.Diet != "vegan" {
		t.Fatalf("expected normalized diet, got %q", repo.lastOnboardingInput.Diet)
	}
	if got := repo.lastOnboardingInput.Cuisines; len(got) != 2 || got[1] != "italian" {
		t.Fatalf("expected trimmed cuisines, got %v", got)
	}
	if got := repo.lastOnboardingInput.CookingTools; len(got) != 1 {
		t.Fatalf("expected empty tool entry dropped, got %v", got)
	}

	var body struct {
		Profile models.Profile `json:"profile"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Profile.OnboardingComplete {
		t.Fatalf("expected onboarding_complete true in response")
	}
}

func TestOnboardingCompleteRejectsInvalidPreferences(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"unknown diet", `{"diet": "carnivore", "activity_level": "moderate", "calorie_intake": 2000, "meals_per_day": 3}`},
		{"unknown activity", `{"diet": "vegan", "activity_level": "extreme", "calorie_intake": 2000, "meals_per_day": 3}`},
		{"meals out of range", `{"diet": "vegan", "activity_level": "moderate", "calorie_intake": 2000, "meals_per_day": 9}`},
		{"calories out of range", `{"diet": "vegan", "activity_level": "moderate", "calorie_intake": 100, "meals_per_day": 3}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &stubProfileRepo{}
			app := newProfileTestApp(repo, nil)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/users/onboarding", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", resp.StatusCode)
			}
			if repo.onboardingCalls != 0 {
				t.Fatalf("expected no store call on invalid input")
			}
		})
	}
}

func TestUpdateProfilePassesOnlyProvidedFields(t *testing.T) {
	repo := &stubProfileRepo{profile: &models.Profile{UserID: 42, Credits: 80}}
	app := newProfileTestApp(repo, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/profile", strings.NewReader(`{"meals_per_day": 4}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if repo.lastUpdatePartial.MealsPerDay == nil || *repo.lastUpdatePartial.MealsPerDay != 4 {
		t.Fatalf("expected meals_per_day 4, got %+v", repo.lastUpdatePartial.MealsPerDay)
	}
	if repo.lastUpdatePartial.Diet != nil {
		t.Fatalf("expected untouched diet to stay nil, got %v", *repo.lastUpdatePartial.Diet)
	}
}

func TestGetCreditsReturnsBalanceAndHistory(t *testing.T) {
	planID := int64(7)
	repo := &stubProfileRepo{profile: &models.Profile{UserID: 42, Credits: 90}}
	ledger := &stubLedgerRepo{entries: []models.CreditEntry{
		{ID: 1, UserID: 42, MealPlanID: &planID, Amount: -10, Reason: "meal_plan_generation"},
	}}
	app := newProfileTestApp(repo, ledger)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/credits", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	var body struct {
		Credits int                  `json:"credits"`
		History []models.CreditEntry `json:"history"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Credits != 90 {
		t.Fatalf("expected credits 90, got %d", body.Credits)
	}
	if len(body.History) != 1 || body.History[0].Amount != -10 {
		t.Fatalf("expected one debit entry, got %+v", body.History)
	}
}

func TestUploadIngredientImageWithoutStorageConfigured(t *testing.T) {
	repo := &stubProfileRepo{profile: &models.Profile{UserID: 42, Credits: 100}}
	app := newProfileTestApp(repo, nil)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "fridge.jpg")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("not really a jpeg")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/uploads/ingredient-image", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "File storage is not configured" {
		t.Fatalf("unexpected error message: %q", body["error"])
	}
}
