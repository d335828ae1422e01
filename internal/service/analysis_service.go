package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/saxenaraghav20/nutritionist-ai/internal/config"
	"github.com/saxenaraghav20/nutritionist-ai/internal/domain"
	"github.com/saxenaraghav20/nutritionist-ai/internal/lookup"
	"github.com/saxenaraghav20/nutritionist-ai/internal/normalize"
	"github.com/saxenaraghav20/nutritionist-ai/internal/nutrition"
	"github.com/saxenaraghav20/nutritionist-ai/internal/recipe"
	"github.com/saxenaraghav20/nutritionist-ai/internal/vision"
)

// AnalysisService runs one photo through classification, name normalization
// and the nutrition and recipe lookups.
type AnalysisService struct {
	classifier  vision.Classifier
	nutrition   nutrition.Source
	recipes     recipe.Source
	recipeLimit int
	logger      *slog.Logger
}

// NewAnalysisService builds the pipeline. nutritionSrc and recipeSrc may be
// nil, in which case that lookup always comes back empty.
func NewAnalysisService(
	classifier vision.Classifier,
	nutritionSrc nutrition.Source,
	recipeSrc recipe.Source,
	recipeLimit int,
	logger *slog.Logger,
) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		classifier:  classifier,
		nutrition:   nutritionSrc,
		recipes:     recipeSrc,
		recipeLimit: recipeLimit,
		logger:      logger,
	}
}

// Run analyzes one image. The only errors it returns are a
// *config.MissingCredentialError for the classifier, a
// *vision.UnsupportedMediaError, or ctx's error when the request is cancelled
// between stages. Every other failure is folded into the result.
func (s *AnalysisService) Run(ctx context.Context, image []byte, mimeType, hint string) (*domain.AnalysisResult, error) {
	s.logger.Info("analysis started", "stage", "classifying", "mime_type", mimeType, "bytes", len(image))

	preds, err := s.classifier.Classify(ctx, image, mimeType, hint)
	if err != nil {
		var credErr *config.MissingCredentialError
		var mediaErr *vision.UnsupportedMediaError
		switch {
		case errors.As(err, &credErr), errors.As(err, &mediaErr):
			return nil, err
		case ctx.Err() != nil:
			return nil, ctx.Err()
		}
		s.logger.Warn("classification failed", "stage", "classifying", "error", err)
		return domain.IdentificationFailed(), nil
	}
	if len(preds) == 0 {
		s.logger.Info("classifier returned no predictions", "stage", "classifying")
		return domain.IdentificationFailed(), nil
	}
	top := preds[0]
	s.logger.Info("classification complete", "stage", "classifying", "label", top.Label, "confidence", top.Confidence)

	name := normalize.Normalize(top.Label)
	if name == "" {
		s.logger.Info("label normalized to empty name", "stage", "normalizing", "label", top.Label)
		return domain.IdentificationFailed(), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &domain.AnalysisResult{
		Outcome:         domain.OutcomeIdentified,
		PredictionLabel: name,
		DisplayName:     normalize.Display(name),
		Confidence:      top.Confidence,
		Analysis:        top.Description,
		Recipes:         []domain.RecipeSummary{},
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		result.Nutrition = s.lookupNutrition(ctx, name)
	}()
	go func() {
		defer wg.Done()
		result.Recipes = s.searchRecipes(ctx, name)
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Info("analysis complete",
		"label", name,
		"nutrition_found", result.Nutrition != nil,
		"recipes", len(result.Recipes),
	)
	return result, nil
}

func (s *AnalysisService) lookupNutrition(ctx context.Context, name string) *domain.NutritionRecord {
	if s.nutrition == nil {
		return nil
	}
	rec, err := s.nutrition.Lookup(ctx, name)
	if err != nil {
		s.logLookupFailure("fetching_nutrition", name, err)
		return nil
	}
	if rec == nil {
		s.logger.Info("lookup found no match", "stage", "fetching_nutrition", "label", name)
		return nil
	}
	s.logger.Info("nutrition found", "stage", "fetching_nutrition", "label", name, "calories", rec.Calories)
	return rec
}

func (s *AnalysisService) searchRecipes(ctx context.Context, name string) []domain.RecipeSummary {
	if s.recipes == nil {
		return []domain.RecipeSummary{}
	}
	list, err := s.recipes.Search(ctx, name, s.recipeLimit)
	if err != nil {
		s.logLookupFailure("fetching_recipes", name, err)
		return []domain.RecipeSummary{}
	}
	list = recipe.Truncate(list, s.recipeLimit)
	s.logger.Info("recipes found", "stage", "fetching_recipes", "label", name, "count", len(list))
	return list
}

func (s *AnalysisService) logLookupFailure(stage, name string, err error) {
	kind := lookup.KindOf(err)
	if kind == lookup.KindNoMatch {
		s.logger.Info("lookup found no match", "stage", stage, "label", name, "error", err)
		return
	}
	s.logger.Warn("lookup failed", "stage", stage, "label", name, "kind", kind.String(), "error", err)
}
