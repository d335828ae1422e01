package nutrition

import (
	"context"
	"strings"

	"github.com/saxenaraghav20/nutritionist-ai/internal/domain"
)

// Source looks up per-serving nutrition facts for a normalized food name.
// A nil record always comes with a non-nil error; errors.Is(err,
// lookup.ErrNotFound) separates "no data" from provider failures.
type Source interface {
	Lookup(ctx context.Context, name string) (*domain.NutritionRecord, error)
}

// Query prefixes name with a serving-size qualifier such as "1 serving of".
func Query(qualifier, name string) string {
	qualifier = strings.TrimSpace(qualifier)
	if qualifier == "" {
		return name
	}
	return qualifier + " " + name
}
