package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saxenaraghav20/nutritionist-ai/internal/config"
	"github.com/saxenaraghav20/nutritionist-ai/internal/db"
	"github.com/saxenaraghav20/nutritionist-ai/internal/domain"
	"github.com/saxenaraghav20/nutritionist-ai/internal/lookup"
	"github.com/saxenaraghav20/nutritionist-ai/internal/nutrition/local"
	"github.com/saxenaraghav20/nutritionist-ai/internal/store"
	"github.com/saxenaraghav20/nutritionist-ai/internal/vision"
)

// stubClassifier returns fixed predictions for tests.
type stubClassifier struct {
	preds []domain.Prediction
	err   error
	calls atomic.Int32
}

func (s *stubClassifier) Classify(_ context.Context, _ []byte, _, _ string) ([]domain.Prediction, error) {
	s.calls.Add(1)
	return s.preds, s.err
}

type stubNutrition struct {
	rec   *domain.NutritionRecord
	err   error
	calls atomic.Int32
	names chan string
}

func (s *stubNutrition) Lookup(_ context.Context, name string) (*domain.NutritionRecord, error) {
	s.calls.Add(1)
	if s.names != nil {
		s.names <- name
	}
	return s.rec, s.err
}

type stubRecipes struct {
	list  []domain.RecipeSummary
	err   error
	calls atomic.Int32
}

func (s *stubRecipes) Search(_ context.Context, _ string, _ int) ([]domain.RecipeSummary, error) {
	s.calls.Add(1)
	return s.list, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr(f float64) *float64 { return &f }

func twoRecipes() []domain.RecipeSummary {
	return []domain.RecipeSummary{
		{Title: "Classic Cheese Pizza", ThumbnailURL: "https://img/1.jpg", SourceURL: "https://example.com/1", CaloriesPerServing: ptr(75)},
		{Title: "Four Cheese Pizza", ThumbnailURL: "https://img/2.jpg", SourceURL: "https://example.com/2"},
	}
}

func TestRunRoundTrip(t *testing.T) {
	classifier := &stubClassifier{preds: []domain.Prediction{{Label: "cheese_pizza", Confidence: 0.87}}}
	nutr := &stubNutrition{rec: &domain.NutritionRecord{Name: "cheese pizza", Calories: 285, ProteinG: 12, CarbsG: 36, FatsG: 10}}
	recipes := &stubRecipes{list: twoRecipes()}

	svc := NewAnalysisService(classifier, nutr, recipes, 3, discardLogger())
	result, err := svc.Run(context.Background(), []byte("img"), "image/jpeg", "")
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeIdentified, result.Outcome)
	assert.Contains(t, result.PredictionLabel, "cheese pizza")
	assert.Equal(t, "Cheese Pizza", result.DisplayName)
	assert.InDelta(t, 0.87, result.Confidence, 1e-9)
	require.NotNil(t, result.Nutrition)
	assert.Equal(t, 285.0, result.Nutrition.Calories)
	assert.Len(t, result.Recipes, 2)
}

func TestRunIdempotent(t *testing.T) {
	classifier := &stubClassifier{preds: []domain.Prediction{{Label: "cheese_pizza", Confidence: 0.87}}}
	nutr := &stubNutrition{rec: &domain.NutritionRecord{Name: "cheese pizza", Calories: 285}}
	recipes := &stubRecipes{list: twoRecipes()}
	svc := NewAnalysisService(classifier, nutr, recipes, 3, discardLogger())

	first, err := svc.Run(context.Background(), []byte("img"), "image/jpeg", "")
	require.NoError(t, err)
	second, err := svc.Run(context.Background(), []byte("img"), "image/jpeg", "")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRunUsesTopPrediction(t *testing.T) {
	classifier := &stubClassifier{preds: []domain.Prediction{
		{Label: "ramen", Confidence: 0.6},
		{Label: "pho", Confidence: 0.3},
	}}
	nutr := &stubNutrition{err: lookup.NoMatch("stub", "ramen"), names: make(chan string, 1)}

	svc := NewAnalysisService(classifier, nutr, nil, 3, discardLogger())
	result, err := svc.Run(context.Background(), []byte("img"), "image/png", "")
	require.NoError(t, err)

	assert.Equal(t, "ramen", <-nutr.names)
	assert.Equal(t, "ramen", result.PredictionLabel)
	assert.Nil(t, result.Nutrition)
	assert.NotNil(t, result.Recipes)
	assert.Empty(t, result.Recipes)
}

func TestRunCarriesGenerativeAnalysis(t *testing.T) {
	text := "Dish: Chicken Tikka Masala\nAbout 650 kcal in total."
	classifier := &stubClassifier{preds: vision.ParseGenerative(text)}

	svc := NewAnalysisService(classifier, nil, nil, 3, discardLogger())
	result, err := svc.Run(context.Background(), []byte("img"), "image/jpeg", "")
	require.NoError(t, err)

	assert.Equal(t, "Chicken Tikka Masala", result.PredictionLabel)
	assert.Equal(t, text, result.Analysis)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestRunIdentificationFailed(t *testing.T) {
	tests := []struct {
		name       string
		classifier *stubClassifier
	}{
		{"classification error", &stubClassifier{err: &vision.ClassificationError{Backend: "stub", Err: errors.New("connection reset")}}},
		{"unexpected error", &stubClassifier{err: errors.New("boom")}},
		{"no predictions", &stubClassifier{preds: []domain.Prediction{}}},
		{"label normalizes to empty", &stubClassifier{preds: []domain.Prediction{{Label: "___ --", Confidence: 0.9}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nutr := &stubNutrition{rec: &domain.NutritionRecord{Calories: 1}}
			recipes := &stubRecipes{list: twoRecipes()}
			svc := NewAnalysisService(tt.classifier, nutr, recipes, 3, discardLogger())

			result, err := svc.Run(context.Background(), []byte("img"), "image/jpeg", "")
			require.NoError(t, err)

			assert.Equal(t, domain.OutcomeIdentificationFailed, result.Outcome)
			assert.Nil(t, result.Nutrition)
			assert.NotNil(t, result.Recipes)
			assert.Empty(t, result.Recipes)
			assert.Equal(t, int32(0), nutr.calls.Load())
			assert.Equal(t, int32(0), recipes.calls.Load())
		})
	}
}

func TestRunPartialFailure(t *testing.T) {
	classifier := &stubClassifier{preds: []domain.Prediction{{Label: "cheese_pizza", Confidence: 0.87}}}
	transportErr := &lookup.Error{Provider: "stub", Kind: lookup.KindTransport, Err: errors.New("dial tcp: timeout")}

	t.Run("nutrition fails", func(t *testing.T) {
		nutr := &stubNutrition{err: transportErr}
		recipes := &stubRecipes{list: twoRecipes()}
		svc := NewAnalysisService(classifier, nutr, recipes, 3, discardLogger())

		result, err := svc.Run(context.Background(), []byte("img"), "image/jpeg", "")
		require.NoError(t, err)
		assert.Nil(t, result.Nutrition)
		assert.Len(t, result.Recipes, 2)
	})

	t.Run("recipes fail", func(t *testing.T) {
		nutr := &stubNutrition{rec: &domain.NutritionRecord{Name: "cheese pizza", Calories: 285}}
		recipes := &stubRecipes{err: transportErr}
		svc := NewAnalysisService(classifier, nutr, recipes, 3, discardLogger())

		result, err := svc.Run(context.Background(), []byte("img"), "image/jpeg", "")
		require.NoError(t, err)
		require.NotNil(t, result.Nutrition)
		assert.Equal(t, 285.0, result.Nutrition.Calories)
		assert.NotNil(t, result.Recipes)
		assert.Empty(t, result.Recipes)
	})
}

func TestRunTruncatesRecipes(t *testing.T) {
	classifier := &stubClassifier{preds: []domain.Prediction{{Label: "pizza", Confidence: 0.5}}}
	recipes := &stubRecipes{list: append(twoRecipes(), twoRecipes()...)}

	svc := NewAnalysisService(classifier, nil, recipes, 3, discardLogger())
	result, err := svc.Run(context.Background(), []byte("img"), "image/jpeg", "")
	require.NoError(t, err)
	assert.Len(t, result.Recipes, 3)
}

func TestRunPropagatesTypedErrors(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(t *testing.T, err error)
	}{
		{
			name: "missing credential",
			err:  &config.MissingCredentialError{Names: []string{"GOOGLE_API_KEY"}},
			check: func(t *testing.T, err error) {
				var credErr *config.MissingCredentialError
				assert.ErrorAs(t, err, &credErr)
			},
		},
		{
			name: "unsupported media",
			err:  &vision.UnsupportedMediaError{MimeType: "image/gif", Reason: "format not supported"},
			check: func(t *testing.T, err error) {
				var mediaErr *vision.UnsupportedMediaError
				assert.ErrorAs(t, err, &mediaErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nutr := &stubNutrition{}
			recipes := &stubRecipes{}
			svc := NewAnalysisService(&stubClassifier{err: tt.err}, nutr, recipes, 3, discardLogger())

			result, err := svc.Run(context.Background(), []byte("img"), "image/gif", "")
			assert.Nil(t, result)
			require.Error(t, err)
			tt.check(t, err)
			assert.Equal(t, int32(0), nutr.calls.Load())
			assert.Equal(t, int32(0), recipes.calls.Load())
		})
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	classifier := &stubClassifier{err: context.Canceled}
	svc := NewAnalysisService(classifier, &stubNutrition{}, &stubRecipes{}, 3, discardLogger())

	result, err := svc.Run(ctx, []byte("img"), "image/jpeg", "")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunWithLocalNutrition(t *testing.T) {
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	classifier := &stubClassifier{preds: []domain.Prediction{{Label: "Hamburger_Steak", Confidence: 0.71}}}
	svc := NewAnalysisService(classifier, local.NewLocalSource(store.NewFoodStore(d)), nil, 3, discardLogger())

	result, err := svc.Run(context.Background(), []byte("img"), "image/jpeg", "")
	require.NoError(t, err)
	require.NotNil(t, result.Nutrition)
	assert.Equal(t, "hamburger steak", result.Nutrition.Name)
	assert.Equal(t, 385.0, result.Nutrition.Calories)
}
