package domain

// Prediction is one ranked guess from a classifier. Label-list backends fill
// Label and Confidence; generative backends also carry their full answer in
// Description.
type Prediction struct {
	Label       string
	Confidence  float64
	Description string
}

// NutritionRecord holds per-serving nutrition facts for one food.
type NutritionRecord struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatsG    float64 `json:"fats_g"`
}

type RecipeSummary struct {
	Title              string   `json:"title"`
	ThumbnailURL       string   `json:"thumbnail_url"`
	SourceURL          string   `json:"source_url"`
	CaloriesPerServing *float64 `json:"calories_per_serving,omitempty"`
	Category           string   `json:"category,omitempty"`
}

type Outcome string

const (
	OutcomeIdentified           Outcome = "identified"
	OutcomeIdentificationFailed Outcome = "identification_failed"
)

// AnalysisResult is what one analysis request hands to the presentation
// layer. A nil Nutrition means no nutrition data was found; Recipes is never
// nil.
type AnalysisResult struct {
	Outcome         Outcome          `json:"outcome"`
	PredictionLabel string           `json:"prediction_label"`
	DisplayName     string           `json:"display_name"`
	Confidence      float64          `json:"confidence"`
	Analysis        string           `json:"analysis,omitempty"`
	Nutrition       *NutritionRecord `json:"nutrition"`
	Recipes         []RecipeSummary  `json:"recipes"`
}

// IdentificationFailed returns the terminal result used when no food name
// could be derived from the image.
func IdentificationFailed() *AnalysisResult {
	return &AnalysisResult{
		Outcome: OutcomeIdentificationFailed,
		Recipes: []RecipeSummary{},
	}
}
