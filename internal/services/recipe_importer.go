package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Elephante152/mealgenie-magic/internal/llm"
	"github.com/Elephante152/mealgenie-magic/internal/models"
	"github.com/Elephante152/mealgenie-magic/internal/repository"
)

var ErrInvalidImportURL = errors.New("import url must be an absolute http or https url")

const importSystemInstruction = `You are a recipe extraction expert. ` +
	`Respond with a single JSON object and nothing else, using exactly this structure: ` +
	`{"title": string, "ingredients": [string], "steps": [string]}. ` +
	`Do not wrap the JSON in markdown fences or add commentary.`

const maxImportContentChars = 20000

type recipeCreator interface {
	Create(ctx context.Context, input repository.CreateRecipeInput) (*models.Recipe, error)
}

// RecipeImporter clips a recipe from a web page: fetch, strip the page down
// to text, have the model extract the structured recipe, persist it as a
// private recipe owned by the caller.
type RecipeImporter struct {
	recipeRepo recipeCreator
	textGen    llm.TextGenerator
	httpClient *http.Client
}

func NewRecipeImporter(recipeRepo recipeCreator, textGen llm.TextGenerator) *RecipeImporter {
	return &RecipeImporter{
		recipeRepo: recipeRepo,
		textGen:    textGen,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type extractedRecipe struct {
	Title       string   `json:"title"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
}

func (s *RecipeImporter) ImportFromURL(ctx context.Context, userID int64, rawURL string) (*models.Recipe, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !parsed.IsAbs() || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, ErrInvalidImportURL
	}

	content, err := s.fetchPageText(ctx, parsed.String())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}

	prompt := fmt.Sprintf("Extract the recipe from the following page content.\n\nPage content:\n%s", content)
	llmResponse, err := s.textGen.GenerateContent(ctx, importSystemInstruction, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamGeneration, err)
	}

	var extracted extractedRecipe
	if err := json.Unmarshal([]byte(stripCodeFences(llmResponse)), &extracted); err != nil {
		return nil, fmt.Errorf("%w: failed to parse extraction: %v", ErrUpstreamGeneration, err)
	}
	if strings.TrimSpace(extracted.Title) == "" || len(extracted.Ingredients) == 0 || len(extracted.Steps) == 0 {
		return nil, fmt.Errorf("%w: extraction is missing title, ingredients or steps", ErrUpstreamGeneration)
	}

	var instructions strings.Builder
	for i, step := range extracted.Steps {
		fmt.Fprintf(&instructions, "%d. %s\n", i+1, strings.TrimSpace(step))
	}

	recipe, err := s.recipeRepo.Create(ctx, repository.CreateRecipeInput{
		UserID:       &userID,
		Title:        extracted.Title,
		Ingredients:  extracted.Ingredients,
		Instructions: instructions.String(),
		IsPublic:     false,
		Tags:         []string{"imported"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return recipe, nil
}

func (s *RecipeImporter) fetchPageText(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Strip noise before handing the page to the model.
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(_ int, sel *goquery.Selection) {
		sel.Remove()
	})

	text := strings.TrimSpace(doc.Find("body").Text())
	if len(text) > maxImportContentChars {
		text = text[:maxImportContentChars]
	}
	return text, nil
}
