// Package local answers nutrition lookups from the bundled SQLite food table,
// so the pipeline works without a nutrition API account.
package local

import (
	"context"

	"github.com/saxenaraghav20/nutritionist-ai/internal/domain"
	"github.com/saxenaraghav20/nutritionist-ai/internal/lookup"
	"github.com/saxenaraghav20/nutritionist-ai/internal/store"
)

const provider = "local"

type foodFinder interface {
	FindByName(ctx context.Context, name string) (*store.Food, error)
}

type LocalSource struct {
	foods foodFinder
}

func NewLocalSource(foods foodFinder) *LocalSource {
	return &LocalSource{foods: foods}
}

func (s *LocalSource) Lookup(ctx context.Context, name string) (*domain.NutritionRecord, error) {
	f, err := s.foods.FindByName(ctx, name)
	if err != nil {
		return nil, &lookup.Error{Provider: provider, Kind: lookup.KindTransport, Err: err}
	}
	if f == nil {
		return nil, lookup.NoMatch(provider, name)
	}
	rec := f.NutritionRecord
	return &rec, nil
}
