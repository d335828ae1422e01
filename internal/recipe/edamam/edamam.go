// Package edamam searches recipes with the Edamam Recipe Search API v2, which
// reports calories for the whole recipe together with its yield.
package edamam

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/saxenaraghav20/nutritionist-ai/internal/config"
	"github.com/saxenaraghav20/nutritionist-ai/internal/domain"
	"github.com/saxenaraghav20/nutritionist-ai/internal/lookup"
	"github.com/saxenaraghav20/nutritionist-ai/internal/recipe"
)

const (
	provider       = "edamam-recipes"
	defaultBaseURL = "https://api.edamam.com"
)

type searchResponse struct {
	Hits []struct {
		Recipe struct {
			Label       string   `json:"label"`
			Image       string   `json:"image"`
			URL         string   `json:"url"`
			Calories    *float64 `json:"calories"`
			Yield       float64  `json:"yield"`
			DishType    []string `json:"dishType"`
			CuisineType []string `json:"cuisineType"`
		} `json:"recipe"`
	} `json:"hits"`
}

type EdamamSource struct {
	appID, appKey string
	client        *http.Client
	baseURL       string
}

func NewEdamamSource(appID, appKey string) *EdamamSource {
	return &EdamamSource{
		appID:   appID,
		appKey:  appKey,
		client:  &http.Client{},
		baseURL: defaultBaseURL,
	}
}

func (s *EdamamSource) Search(ctx context.Context, name string, limit int) ([]domain.RecipeSummary, error) {
	if err := (config.Credentials{
		"EDAMAM_RECIPE_APP_ID":  s.appID,
		"EDAMAM_RECIPE_APP_KEY": s.appKey,
	}).Require("EDAMAM_RECIPE_APP_ID", "EDAMAM_RECIPE_APP_KEY"); err != nil {
		return nil, lookup.Credential(provider, err)
	}

	q := url.Values{}
	q.Set("type", "public")
	q.Set("q", name)
	q.Set("app_id", s.appID)
	q.Set("app_key", s.appKey)

	req, err := http.NewRequest(http.MethodGet, s.baseURL+"/api/recipes/v2?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var sr searchResponse
	if err := lookup.GetJSON(ctx, s.client, req, provider, &sr); err != nil {
		return nil, err
	}

	recipes := make([]domain.RecipeSummary, 0, len(sr.Hits))
	for _, hit := range sr.Hits {
		r := hit.Recipe
		if r.Label == "" {
			continue
		}
		summary := domain.RecipeSummary{
			Title:        r.Label,
			ThumbnailURL: r.Image,
			SourceURL:    r.URL,
			Category:     category(r.DishType, r.CuisineType),
		}
		if r.Calories != nil {
			summary.CaloriesPerServing = recipe.PerServing(*r.Calories, r.Yield)
		}
		recipes = append(recipes, summary)
	}
	if len(recipes) == 0 {
		return nil, lookup.NoMatch(provider, name)
	}
	return recipe.Truncate(recipes, limit), nil
}

func category(dishType, cuisineType []string) string {
	if len(dishType) > 0 {
		return dishType[0]
	}
	if len(cuisineType) > 0 {
		return strings.Join(cuisineType, ", ")
	}
	return ""
}
