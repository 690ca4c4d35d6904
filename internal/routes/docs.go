package routes

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Elephante152/mealgenie-magic/internal/config"
)

const docsIndexHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ .Title }}</title>
  <style>
    body { margin: 0; font-family: Georgia, "Times New Roman", serif; color: #132019; background: #f6f7f4; }
    main { max-width: 880px; margin: 0 auto; padding: 48px 20px 64px; }
    h1 { font-size: clamp(2rem, 5vw, 3rem); margin: 0 0 12px; }
    p { color: #536258; line-height: 1.6; }
    a { color: #1f6f4a; }
    pre { background: #0f172a; color: #e2e8f0; padding: 20px; border-radius: 12px; overflow-x: auto; font-size: 0.85rem; }
  </style>
</head>
<body>
  <main>
    <h1>{{ .Title }}</h1>
    <p>Loaded {{ .LoadedAt }}. The raw spec is at <a href="/docs/openapi.yaml">/docs/openapi.yaml</a>.</p>
    <pre>{{ .Spec }}</pre>
  </main>
</body>
</html>
`

const openAPISpec = `openapi: 3.0.3
info:
  title: MealGenie API
  description: Meal planning backend with credit-gated AI plan generation.
  version: 1.0.0
paths:
  /api/auth/register:
    post:
      summary: Register a new account with a fresh profile and starting credits.
  /api/auth/login:
    post:
      summary: Exchange email and password for a JWT.
  /api/auth/me:
    get:
      summary: Current user, profile and onboarding state.
  /api/v1/users/onboarding:
    post:
      summary: Store the full preference set and mark onboarding complete.
    get:
      summary: Whether onboarding has been completed.
  /api/v1/users/profile:
    get:
      summary: Fetch the profile with preferences and credit balance.
    put:
      summary: Partially update preferences.
  /api/v1/users/credits:
    get:
      summary: Credit balance plus recent ledger entries.
  /api/v1/users/uploads/ingredient-image:
    post:
      summary: Upload an ingredient photo, returns the stored URL.
  /api/v1/meal-plans/generate:
    post:
      summary: Generate a meal plan (10 credits, debited only on success).
  /api/v1/meal-plans:
    get:
      summary: List saved meal plans, newest first.
  /api/v1/meal-plans/{id}:
    get:
      summary: Plan detail with recipes and the formatted day-by-day text.
    delete:
      summary: Delete a plan.
  /api/v1/meal-plans/{id}/favorite:
    put:
      summary: Set or clear the favorite flag.
  /api/v1/recipes:
    post:
      summary: Create a recipe.
    get:
      summary: List the caller's recipes.
  /api/v1/recipes/public:
    get:
      summary: Browse the public recipe catalog.
  /api/v1/recipes/recommended:
    get:
      summary: Public recipes ranked against the caller's preferences.
  /api/v1/recipes/import:
    post:
      summary: Import a recipe from an external URL.
  /api/v1/recipes/{id}:
    get:
      summary: Fetch one recipe.
    delete:
      summary: Delete an owned recipe.
  /api/v1/feedback:
    post:
      summary: Submit feedback, optionally tied to a recipe.
`

type docsPageData struct {
	Title    string
	LoadedAt string
	Spec     string
}

func registerDocsRoutes(app fiber.Router, cfg *config.Config) error {
	if !cfg.DocsEnabled() {
		return nil
	}

	indexTemplate, err := template.New("docs-index").Parse(docsIndexHTML)
	if err != nil {
		return fmt.Errorf("parse docs template: %w", err)
	}

	pageData := docsPageData{
		Title:    "MealGenie API Docs",
		LoadedAt: time.Now().UTC().Format(time.RFC3339),
		Spec:     openAPISpec,
	}

	indexHandler := func(c *fiber.Ctx) error {
		applyDocsBaseHeaders(c, fiber.MIMETextHTMLCharsetUTF8)
		c.Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; base-uri 'none'; form-action 'none'; frame-ancestors 'none'")

		var body bytes.Buffer
		if err := indexTemplate.Execute(&body, pageData); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render api docs")
		}

		return c.Status(fiber.StatusOK).Send(body.Bytes())
	}

	app.Get("/docs", indexHandler)
	app.Get("/docs/", indexHandler)
	app.Get("/docs/openapi.yaml", func(c *fiber.Ctx) error {
		applyDocsBaseHeaders(c, "application/yaml; charset=utf-8")
		c.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'none'")
		c.Set(fiber.HeaderContentDisposition, `inline; filename="openapi.yaml"`)
		return c.Status(fiber.StatusOK).SendString(openAPISpec)
	})

	return nil
}

func applyDocsBaseHeaders(c *fiber.Ctx, contentType string) {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "no-store, max-age=0")
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	c.Set(fiber.HeaderXFrameOptions, "DENY")
	c.Set("Referrer-Policy", "no-referrer")
	c.Set("X-Robots-Tag", "noindex, nofollow")
}
