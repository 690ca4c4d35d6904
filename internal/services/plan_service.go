package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Elephante152/mealgenie-magic/internal/models"
)

var (
	ErrForbidden    = errors.New("forbidden")
	ErrPlanNotFound = errors.New("meal plan not found")
)

const (
	planListCacheTTL   = 5 * time.Minute
	planDetailCacheTTL = 30 * time.Minute
)

type planReader interface {
	GetByID(ctx context.Context, id int64) (*models.MealPlan, error)
	ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]models.MealPlan, int, error)
	UpdateFavorite(ctx context.Context, id, userID int64, favorited bool) (*models.MealPlan, error)
	Delete(ctx context.Context, id, userID int64) (bool, error)
}

type planRecipeReader interface {
	ListByIDs(ctx context.Context, ids []int64) ([]models.Recipe, error)
}

// PlanService serves saved meal plans: listing, detail with the formatted
// rendering, favorite toggling and deletion. Reads go through an optional
// redis cache invalidated on every write.
type PlanService struct {
	planRepo    planReader
	recipeRepo  planRecipeReader
	profileRepo generationProfileReader
	redis       *redis.Client
}

func NewPlanService(planRepo planReader, recipeRepo planRecipeReader, profileRepo generationProfileReader, rdb *redis.Client) *PlanService {
	return &PlanService{
		planRepo:    planRepo,
		recipeRepo:  recipeRepo,
		profileRepo: profileRepo,
		redis:       rdb,
	}
}

type PlanPage struct {
	Plans []models.MealPlan `json:"meal_plans"`
	Total int               `json:"total"`
}

func (s *PlanService) ListPlans(ctx context.Context, userID int64, limit, offset int) (*PlanPage, error) {
	cacheKey := fmt.Sprintf("meal_plans:u%d:l%d:o%d", userID, limit, offset)
	if cached, ok := s.cacheGet(ctx, cacheKey); ok {
		var page PlanPage
		if err := json.Unmarshal(cached, &page); err == nil {
			return &page, nil
		}
	}

	plans, total, err := s.planRepo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	page := &PlanPage{Plans: plans, Total: total}
	s.cacheSet(ctx, cacheKey, page, planListCacheTTL)
	return page, nil
}

func (s *PlanService) GetPlanDetail(ctx context.Context, userID, planID int64) (*models.MealPlanDetail, error) {
	cacheKey := fmt.Sprintf("meal_plan:%d", planID)
	if cached, ok := s.cacheGet(ctx, cacheKey); ok {
		var detail models.MealPlanDetail
		if err := json.Unmarshal(cached, &detail); err == nil {
			if detail.UserID != userID {
				return nil, ErrForbidden
			}
			return &detail, nil
		}
	}

	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.UserID != userID {
		return nil, ErrForbidden
	}

	recipes, err := s.recipeRepo.ListByIDs(ctx, plan.RecipeIDs)
	if err != nil {
		return nil, err
	}

	detail := &models.MealPlanDetail{
		MealPlan:      *plan,
		Recipes:       recipes,
		FormattedPlan: FormatPlanContent(alignToPlan(plan.RecipeIDs, recipes), s.planParams(ctx, userID, plan)),
	}

	s.cacheSet(ctx, cacheKey, detail, planDetailCacheTTL)
	return detail, nil
}

func (s *PlanService) SetFavorite(ctx context.Context, userID, planID int64, favorited bool) (*models.MealPlan, error) {
	plan, err := s.planRepo.UpdateFavorite(ctx, planID, userID, favorited)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID, planID)
	return plan, nil
}

func (s *PlanService) DeletePlan(ctx context.Context, userID, planID int64) error {
	deleted, err := s.planRepo.Delete(ctx, planID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrPlanNotFound
	}
	s.invalidate(ctx, userID, planID)
	return nil
}

// planParams picks the formatter parameters for a stored plan: meals per day
// from the owner's preferences, day count derived from how many recipes the
// plan actually references so old plans render their own length rather than
// the current preference.
func (s *PlanService) planParams(ctx context.Context, userID int64, plan *models.MealPlan) models.PlanParameters {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		profile = nil
	}
	params := profile.PlanParams(0)

	if count := len(plan.RecipeIDs); count > 0 {
		params.NumDays = (count + params.MealsPerDay - 1) / params.MealsPerDay
	}
	return params
}

// alignToPlan rebuilds the recipe sequence in plan order, substituting a
// placeholder for references whose recipe row was deleted so positions
// downstream do not shift.
func alignToPlan(ids []int64, recipes []models.Recipe) []models.Recipe {
	byID := make(map[int64]models.Recipe, len(recipes))
	for _, recipe := range recipes {
		byID[recipe.ID] = recipe
	}

	aligned := make([]models.Recipe, 0, len(ids))
	for _, id := range ids {
		if recipe, ok := byID[id]; ok {
			aligned = append(aligned, recipe)
		} else {
			aligned = append(aligned, models.Recipe{Title: missingRecipeTitle})
		}
	}
	return aligned
}

func (s *PlanService) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if s.redis == nil {
		return nil, false
	}
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (s *PlanService) cacheSet(ctx context.Context, key string, value any, ttl time.Duration) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("failed to cache %s: %v", key, err)
	}
}

func (s *PlanService) invalidate(ctx context.Context, userID, planID int64) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, fmt.Sprintf("meal_plan:%d", planID)).Err(); err != nil {
		log.Printf("failed to invalidate plan cache: %v", err)
	}
	s.InvalidateUserPlans(ctx, userID)
}

// InvalidateUserPlans drops every cached plan list page for the user. Called
// on any write that changes what the list shows, including plan creation by
// the generation workflow.
func (s *PlanService) InvalidateUserPlans(ctx context.Context, userID int64) {
	if s.redis == nil {
		return
	}

	iter := s.redis.Scan(ctx, 0, fmt.Sprintf("meal_plans:u%d:*", userID), 0).Iterator()
	for iter.Next(ctx) {
		if err := s.redis.Del(ctx, iter.Val()).Err(); err != nil {
			log.Printf("failed to invalidate plan list cache: %v", err)
		}
	}
	if err := iter.Err(); err != nil {
		log.Printf("failed to scan plan list cache: %v", err)
	}
}
