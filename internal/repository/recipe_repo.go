package repository

import (
	"context"

	"github.com/Elephante152/mealgenie-magic/internal/models"
)

type RecipeRepository struct {
	db DBTX
}

func NewRecipeRepository(db DBTX) *RecipeRepository {
	return &RecipeRepository{db: db}
}

type CreateRecipeInput struct {
	UserID       *int64
	Title        string
	Ingredients  []string
	Instructions string
	ImageURL     *string
	IsPublic     bool
	Tags         []string
}

func (r *RecipeRepository) Create(ctx context.Context, input CreateRecipeInput) (*models.Recipe, error) {
	query := `
		INSERT INTO recipes (user_id, title, ingredients, instructions, image_url, is_public)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, title, ingredients, instructions, image_url, is_public, created_at
	`
	ingredients := input.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}

	var recipe models.Recipe
	err := r.db.QueryRow(ctx, query,
		input.UserID,
		input.Title,
		ingredients,
		input.Instructions,
		input.ImageURL,
		input.IsPublic,
	).Scan(
		&recipe.ID,
		&recipe.UserID,
		&recipe.Title,
		&recipe.Ingredients,
		&recipe.Instructions,
		&recipe.ImageURL,
		&recipe.IsPublic,
		&recipe.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	for _, tag := range input.Tags {
		if _, err := r.db.Exec(ctx,
			`INSERT INTO recipe_tags (recipe_id, tag) VALUES ($1, $2)`,
			recipe.ID, tag,
		); err != nil {
			return nil, err
		}
	}
	recipe.Tags = input.Tags

	return &recipe, nil
}

func (r *RecipeRepository) GetByID(ctx context.Context, id int64) (*models.Recipe, error) {
	query := `
		SELECT id, user_id, title, ingredients, instructions, image_url, is_public, created_at
		FROM recipes
		WHERE id = $1
	`
	var recipe models.Recipe
	err := r.db.QueryRow(ctx, query, id).Scan(
		&recipe.ID,
		&recipe.UserID,
		&recipe.Title,
		&recipe.Ingredients,
		&recipe.Instructions,
		&recipe.ImageURL,
		&recipe.IsPublic,
		&recipe.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// ListByIDs returns the recipes for the given ids, ordered by their position
// in ids. Missing rows are skipped rather than reported; callers render a
// placeholder for the gaps.
func (r *RecipeRepository) ListByIDs(ctx context.Context, ids []int64) ([]models.Recipe, error) {
	if len(ids) == 0 {
		return []models.Recipe{}, nil
	}

	query := `
		SELECT id, user_id, title, ingredients, instructions, image_url, is_public, created_at
		FROM recipes
		WHERE id = ANY($1)
	`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[int64]models.Recipe, len(ids))
	for rows.Next() {
		var recipe models.Recipe
		if err := rows.Scan(
			&recipe.ID,
			&recipe.UserID,
			&recipe.Title,
			&recipe.Ingredients,
			&recipe.Instructions,
			&recipe.ImageURL,
			&recipe.IsPublic,
			&recipe.CreatedAt,
		); err != nil {
			return nil, err
		}
		byID[recipe.ID] = recipe
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ordered := make([]models.Recipe, 0, len(ids))
	for _, id := range ids {
		if recipe, ok := byID[id]; ok {
			ordered = append(ordered, recipe)
		}
	}
	return ordered, nil
}

func (r *RecipeRepository) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]models.Recipe, int, error) {
	query := `
		SELECT id, user_id, title, ingredients, instructions, image_url, is_public, created_at
		FROM recipes
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	recipes, err := r.listRecipes(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM recipes WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

func (r *RecipeRepository) ListPublic(ctx context.Context, limit, offset int) ([]models.Recipe, int, error) {
	query := `
		SELECT id, user_id, title, ingredients, instructions, image_url, is_public, created_at
		FROM recipes
		WHERE is_public = TRUE
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	recipes, err := r.listRecipes(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM recipes WHERE is_public = TRUE`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// ListAllPublic returns every public recipe with its tags attached, for the
// recommendation scorer.
func (r *RecipeRepository) ListAllPublic(ctx context.Context) ([]models.Recipe, error) {
	query := `
		SELECT r.id, r.user_id, r.title, r.ingredients, r.instructions, r.image_url, r.is_public, r.created_at,
			   COALESCE(array_agg(t.tag) FILTER (WHERE t.tag IS NOT NULL), '{}')
		FROM recipes r
		LEFT JOIN recipe_tags t ON t.recipe_id = r.id
		WHERE r.is_public = TRUE
		GROUP BY r.id
		ORDER BY r.created_at DESC, r.id DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipes []models.Recipe
	for rows.Next() {
		var recipe models.Recipe
		if err := rows.Scan(
			&recipe.ID,
			&recipe.UserID,
			&recipe.Title,
			&recipe.Ingredients,
			&recipe.Instructions,
			&recipe.ImageURL,
			&recipe.IsPublic,
			&recipe.CreatedAt,
			&recipe.Tags,
		); err != nil {
			return nil, err
		}
		recipes = append(recipes, recipe)
	}
	return recipes, rows.Err()
}

func (r *RecipeRepository) Delete(ctx context.Context, id, userID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM recipes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *RecipeRepository) listRecipes(ctx context.Context, query string, args ...any) ([]models.Recipe, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipes := []models.Recipe{}
	for rows.Next() {
		var recipe models.Recipe
		if err := rows.Scan(
			&recipe.ID,
			&recipe.UserID,
			&recipe.Title,
			&recipe.Ingredients,
			&recipe.Instructions,
			&recipe.ImageURL,
			&recipe.IsPublic,
			&recipe.CreatedAt,
		); err != nil {
			return nil, err
		}
		recipes = append(recipes, recipe)
	}
	return recipes, rows.Err()
}
