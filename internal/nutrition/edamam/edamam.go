// Package edamam looks up nutrition facts with the Edamam Nutrition Analysis
// API.
package edamam

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/saxenaraghav20/nutritionist-ai/internal/config"
	"github.com/saxenaraghav20/nutritionist-ai/internal/domain"
	"github.com/saxenaraghav20/nutritionist-ai/internal/lookup"
	"github.com/saxenaraghav20/nutritionist-ai/internal/nutrition"
)

const (
	provider       = "edamam-nutrition"
	defaultBaseURL = "https://api.edamam.com"
)

type nutrient struct {
	Quantity *float64 `json:"quantity"`
}

type nutritionDataResponse struct {
	Calories       *float64            `json:"calories"`
	TotalWeight    float64             `json:"totalWeight"`
	TotalNutrients map[string]nutrient `json:"totalNutrients"`
	Ingredients    []struct {
		Parsed []struct {
			Food string `json:"food"`
		} `json:"parsed"`
	} `json:"ingredients"`
}

type EdamamSource struct {
	appID, appKey string
	qualifier     string
	client        *http.Client
	baseURL       string
}

func NewEdamamSource(appID, appKey, qualifier string) *EdamamSource {
	return &EdamamSource{
		appID:     appID,
		appKey:    appKey,
		qualifier: qualifier,
		client:    &http.Client{},
		baseURL:   defaultBaseURL,
	}
}

func (s *EdamamSource) Lookup(ctx context.Context, name string) (*domain.NutritionRecord, error) {
	if err := (config.Credentials{
		"EDAMAM_NUTRITION_APP_ID":  s.appID,
		"EDAMAM_NUTRITION_APP_KEY": s.appKey,
	}).Require("EDAMAM_NUTRITION_APP_ID", "EDAMAM_NUTRITION_APP_KEY"); err != nil {
		return nil, lookup.Credential(provider, err)
	}

	q := url.Values{}
	q.Set("app_id", s.appID)
	q.Set("app_key", s.appKey)
	q.Set("nutrition-type", "logging")
	q.Set("ingr", nutrition.Query(s.qualifier, name))

	req, err := http.NewRequest(http.MethodGet, s.baseURL+"/api/nutrition-data?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var nr nutritionDataResponse
	if err := lookup.GetJSON(ctx, s.client, req, provider, &nr); err != nil {
		// Edamam answers 555 when it cannot parse the ingredient text.
		var le *lookup.Error
		if errors.As(err, &le) && le.Kind == lookup.KindStatus && le.Status == 555 {
			return nil, lookup.NoMatch(provider, name)
		}
		return nil, err
	}
	return toRecord(name, &nr)
}

// toRecord validates the loosely typed response. Edamam reports an unknown
// ingredient as zero weight with no parsed food rather than as an error.
func toRecord(name string, nr *nutritionDataResponse) (*domain.NutritionRecord, error) {
	if nr.TotalWeight == 0 || len(nr.Ingredients) == 0 || len(nr.Ingredients[0].Parsed) == 0 {
		return nil, lookup.NoMatch(provider, name)
	}
	if nr.Calories == nil {
		return nil, lookup.Decode(provider, errors.New("response has no calories"))
	}

	macros := map[string]float64{}
	for _, code := range []string{"PROCNT", "CHOCDF", "FAT"} {
		n, ok := nr.TotalNutrients[code]
		if !ok || n.Quantity == nil {
			return nil, lookup.Decode(provider, fmt.Errorf("response has no %s nutrient", code))
		}
		macros[code] = *n.Quantity
	}

	label := nr.Ingredients[0].Parsed[0].Food
	if label == "" {
		label = name
	}
	return &domain.NutritionRecord{
		Name:     label,
		Calories: *nr.Calories,
		ProteinG: macros["PROCNT"],
		CarbsG:   macros["CHOCDF"],
		FatsG:    macros["FAT"],
	}, nil
}
