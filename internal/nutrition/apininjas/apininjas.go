// Package apininjas looks up nutrition facts with the API Ninjas nutrition
// endpoint, which answers a free-text query with one item per food it parsed.
package apininjas

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/saxenaraghav20/nutritionist-ai/internal/config"
	"github.com/saxenaraghav20/nutritionist-ai/internal/domain"
	"github.com/saxenaraghav20/nutritionist-ai/internal/lookup"
	"github.com/saxenaraghav20/nutritionist-ai/internal/nutrition"
)

const (
	provider       = "api-ninjas"
	defaultBaseURL = "https://api.api-ninjas.com"
)

// item fields are left untyped: on restricted plans the API puts a notice
// string where the number would be.
type item struct {
	Name     string `json:"name"`
	Calories any    `json:"calories"`
	Protein  any    `json:"protein_g"`
	Carbs    any    `json:"carbohydrates_total_g"`
	Fat      any    `json:"fat_total_g"`
}

// APINinjasSource needs a premium API Ninjas plan: free plans answer
// calories and protein with a notice string, which is logged once and
// treated as a decode failure.
type APINinjasSource struct {
	apiKey     string
	qualifier  string
	client     *http.Client
	baseURL    string
	logger     *slog.Logger
	noticeOnce sync.Once
}

func NewAPINinjasSource(apiKey, qualifier string) *APINinjasSource {
	return &APINinjasSource{
		apiKey:    apiKey,
		qualifier: qualifier,
		client:    &http.Client{},
		baseURL:   defaultBaseURL,
		logger:    slog.Default(),
	}
}

// WithLogger sets the logger used for provider notices.
func (s *APINinjasSource) WithLogger(logger *slog.Logger) *APINinjasSource {
	s.logger = logger
	return s
}

func (s *APINinjasSource) Lookup(ctx context.Context, name string) (*domain.NutritionRecord, error) {
	if err := config.RequireCredential("API_NINJAS_KEY", s.apiKey); err != nil {
		return nil, lookup.Credential(provider, err)
	}

	req, err := http.NewRequest(http.MethodGet,
		s.baseURL+"/v1/nutrition?query="+url.QueryEscape(nutrition.Query(s.qualifier, name)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", s.apiKey)

	var items []item
	if err := lookup.GetJSON(ctx, s.client, req, provider, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, lookup.NoMatch(provider, name)
	}
	return s.toRecord(name, items[0])
}

func (s *APINinjasSource) toRecord(name string, it item) (*domain.NutritionRecord, error) {
	fields := map[string]any{
		"calories":              it.Calories,
		"protein_g":             it.Protein,
		"carbohydrates_total_g": it.Carbs,
		"fat_total_g":           it.Fat,
	}
	values := make(map[string]float64, len(fields))
	for key, raw := range fields {
		v, ok := lookup.Number(raw)
		if !ok {
			if notice, isText := raw.(string); isText {
				s.noticeOnce.Do(func() {
					s.logger.Warn("api-ninjas returned a plan notice instead of nutrition values; NUTRITION_BACKEND=apininjas needs a premium plan",
						"field", key, "notice", notice)
				})
			}
			return nil, lookup.Decode(provider, fmt.Errorf("field %s is not numeric: %v", key, raw))
		}
		values[key] = v
	}

	label := it.Name
	if label == "" {
		label = name
	}
	return &domain.NutritionRecord{
		Name:     label,
		Calories: values["calories"],
		ProteinG: values["protein_g"],
		CarbsG:   values["carbohydrates_total_g"],
		FatsG:    values["fat_total_g"],
	}, nil
}
