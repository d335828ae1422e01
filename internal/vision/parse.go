package vision

import (
	"strings"

	"github.com/saxenaraghav20/nutritionist-ai/internal/domain"
)

// ParseGenerative converts a free-text model answer into a single prediction.
// The whole answer is kept in Description. When the answer opens with a
// "Dish: <name>" line the name becomes the label; otherwise the label is the
// full text. Generative backends report no score, so confidence is 1.
func ParseGenerative(raw string) []domain.Prediction {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil
	}
	label := text
	if name, ok := dishName(text); ok {
		label = name
	}
	return []domain.Prediction{{Label: label, Confidence: 1.0, Description: text}}
}

// dishName looks for a "Dish:" header on the first non-empty line, tolerating
// markdown emphasis around it.
func dishName(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.Trim(strings.TrimSpace(line), "*#_ ")
		if line == "" {
			continue
		}
		prefix, rest, found := strings.Cut(line, ":")
		if !found || !strings.EqualFold(strings.Trim(prefix, "*_ "), "dish") {
			return "", false
		}
		name := strings.Trim(rest, "*_ .")
		return name, name != ""
	}
	return "", false
}
