// Package mealdb searches recipes by name with TheMealDB. The free API needs
// no key and reports no calorie data.
package mealdb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/saxenaraghav20/nutritionist-ai/internal/domain"
	"github.com/saxenaraghav20/nutritionist-ai/internal/lookup"
	"github.com/saxenaraghav20/nutritionist-ai/internal/recipe"
)

const (
	provider       = "themealdb"
	defaultBaseURL = "https://www.themealdb.com"
)

// meals is null, not an empty list, when nothing matches.
type searchResponse struct {
	Meals []struct {
		ID        string `json:"idMeal"`
		Name      string `json:"strMeal"`
		Thumbnail string `json:"strMealThumb"`
		Source    string `json:"strSource"`
		Category  string `json:"strCategory"`
	} `json:"meals"`
}

type MealDBSource struct {
	client  *http.Client
	baseURL string
}

func NewMealDBSource() *MealDBSource {
	return &MealDBSource{
		client:  &http.Client{},
		baseURL: defaultBaseURL,
	}
}

func (s *MealDBSource) Search(ctx context.Context, name string, limit int) ([]domain.RecipeSummary, error) {
	req, err := http.NewRequest(http.MethodGet,
		s.baseURL+"/api/json/v1/1/search.php?s="+url.QueryEscape(name), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var sr searchResponse
	if err := lookup.GetJSON(ctx, s.client, req, provider, &sr); err != nil {
		return nil, err
	}
	if len(sr.Meals) == 0 {
		return nil, lookup.NoMatch(provider, name)
	}

	recipes := make([]domain.RecipeSummary, 0, len(sr.Meals))
	for _, m := range sr.Meals {
		source := m.Source
		if source == "" && m.ID != "" {
			source = defaultBaseURL + "/meal/" + m.ID
		}
		recipes = append(recipes, domain.RecipeSummary{
			Title:        m.Name,
			ThumbnailURL: m.Thumbnail,
			SourceURL:    source,
			Category:     m.Category,
		})
	}
	return recipe.Truncate(recipes, limit), nil
}
