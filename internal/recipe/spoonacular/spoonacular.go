// Package spoonacular searches recipes with Spoonacular's complexSearch
// endpoint. Its nutrition block is already per serving.
package spoonacular

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/saxenaraghav20/nutritionist-ai/internal/config"
	"github.com/saxenaraghav20/nutritionist-ai/internal/domain"
	"github.com/saxenaraghav20/nutritionist-ai/internal/lookup"
	"github.com/saxenaraghav20/nutritionist-ai/internal/recipe"
)

const (
	provider       = "spoonacular"
	defaultBaseURL = "https://api.spoonacular.com"
)

type searchResponse struct {
	Results []struct {
		Title     string   `json:"title"`
		Image     string   `json:"image"`
		SourceURL string   `json:"sourceUrl"`
		DishTypes []string `json:"dishTypes"`
		Nutrition *struct {
			Nutrients []struct {
				Name   string  `json:"name"`
				Amount float64 `json:"amount"`
				Unit   string  `json:"unit"`
			} `json:"nutrients"`
		} `json:"nutrition"`
	} `json:"results"`
}

type SpoonacularSource struct {
	apiKey  string
	client  *http.Client
	baseURL string
}

func NewSpoonacularSource(apiKey string) *SpoonacularSource {
	return &SpoonacularSource{
		apiKey:  apiKey,
		client:  &http.Client{},
		baseURL: defaultBaseURL,
	}
}

func (s *SpoonacularSource) Search(ctx context.Context, name string, limit int) ([]domain.RecipeSummary, error) {
	if err := config.RequireCredential("SPOONACULAR_API_KEY", s.apiKey); err != nil {
		return nil, lookup.Credential(provider, err)
	}

	q := url.Values{}
	q.Set("query", name)
	q.Set("number", strconv.Itoa(max(limit, 1)))
	q.Set("addRecipeInformation", "true")
	q.Set("addRecipeNutrition", "true")
	q.Set("apiKey", s.apiKey)

	req, err := http.NewRequest(http.MethodGet, s.baseURL+"/recipes/complexSearch?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var sr searchResponse
	if err := lookup.GetJSON(ctx, s.client, req, provider, &sr); err != nil {
		return nil, err
	}
	if len(sr.Results) == 0 {
		return nil, lookup.NoMatch(provider, name)
	}

	recipes := make([]domain.RecipeSummary, 0, len(sr.Results))
	for _, r := range sr.Results {
		summary := domain.RecipeSummary{
			Title:        r.Title,
			ThumbnailURL: r.Image,
			SourceURL:    r.SourceURL,
		}
		if len(r.DishTypes) > 0 {
			summary.Category = r.DishTypes[0]
		}
		if r.Nutrition != nil {
			for _, n := range r.Nutrition.Nutrients {
				if strings.EqualFold(n.Name, "Calories") {
					kcal := n.Amount
					summary.CaloriesPerServing = &kcal
					break
				}
			}
		}
		recipes = append(recipes, summary)
	}
	return recipe.Truncate(recipes, limit), nil
}
