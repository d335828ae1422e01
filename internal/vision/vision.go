package vision

import (
	"context"
	"fmt"
	"sort"

	"github.com/saxenaraghav20/nutritionist-ai/internal/domain"
)

// SystemInstruction is the shared instruction sent to every generative
// backend. The leading "Dish:" line is what ParseGenerative keys on.
const SystemInstruction = `You are an expert nutritionist. Identify the meal in the photo.
Start your answer with exactly one line of the form "Dish: <common name of the dish>".
Then list each visible food item with an estimated portion and calories, give the
estimated total calories, and a short note on how healthy the meal is.`

// Classifier turns an image into a ranked list of food predictions, highest
// confidence first. hint is optional free text from the user and may be
// ignored by backends that cannot use it.
type Classifier interface {
	Classify(ctx context.Context, image []byte, mimeType, hint string) ([]domain.Prediction, error)
}

// ClassificationError wraps a transport or model failure from a backend.
type ClassificationError struct {
	Backend string
	Err     error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("%s classification failed: %v", e.Backend, e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// UserPrompt builds the text part sent alongside the image.
func UserPrompt(hint string) string {
	if hint == "" {
		return "Analyze this meal."
	}
	return "Analyze this meal. Additional details from the user: " + hint
}

// SortPredictions orders predictions by descending confidence, keeping the
// backend's order for ties.
func SortPredictions(preds []domain.Prediction) {
	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].Confidence > preds[j].Confidence
	})
}
