package recipe

import (
	"context"
	"math"

	"github.com/saxenaraghav20/nutritionist-ai/internal/domain"
)

// Source searches recipes by normalized food name, keeping the provider's
// relevance order and returning at most limit results. An empty result comes
// with a lookup error describing why.
type Source interface {
	Search(ctx context.Context, name string, limit int) ([]domain.RecipeSummary, error)
}

// PerServing converts a whole-recipe calorie total into a rounded
// per-serving figure. It returns nil when yield is not positive.
func PerServing(total, yield float64) *float64 {
	if yield <= 0 || math.IsNaN(total) || math.IsNaN(yield) {
		return nil
	}
	v := math.Round(total / yield)
	return &v
}

// Truncate returns the first limit recipes of list, never nil.
func Truncate(list []domain.RecipeSummary, limit int) []domain.RecipeSummary {
	if limit < 0 {
		limit = 0
	}
	if len(list) > limit {
		list = list[:limit]
	}
	if list == nil {
		return []domain.RecipeSummary{}
	}
	return list
}
