package edamam

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saxenaraghav20/nutritionist-ai/internal/lookup"
)

const searchBody = `{
	"from": 1, "to": 4, "count": 120,
	"hits": [
		{"recipe": {"label": "Margherita Pizza", "image": "https://img/1.jpg", "url": "https://example.com/1",
			"calories": 300, "yield": 4, "dishType": ["main course"], "cuisineType": ["italian"]}},
		{"recipe": {"label": "Cheese Pizza", "image": "https://img/2.jpg", "url": "https://example.com/2",
			"calories": 1000, "yield": 3, "cuisineType": ["italian", "american"]}},
		{"recipe": {"label": "Pizza Bianca", "image": "https://img/3.jpg", "url": "https://example.com/3",
			"calories": 800, "yield": 0}},
		{"recipe": {"label": "Grilled Pizza", "image": "https://img/4.jpg", "url": "https://example.com/4",
			"calories": 500, "yield": 2}}
	]
}`

func newTestSource(t *testing.T, handler http.HandlerFunc) *EdamamSource {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	s := NewEdamamSource("app-id", "app-key")
	s.baseURL = server.URL
	return s
}

func TestEdamamSearch(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/recipes/v2", r.URL.Path)
		assert.Equal(t, "public", r.URL.Query().Get("type"))
		assert.Equal(t, "cheese pizza", r.URL.Query().Get("q"))
		assert.Equal(t, "app-id", r.URL.Query().Get("app_id"))
		_, _ = w.Write([]byte(searchBody))
	})

	recipes, err := s.Search(context.Background(), "cheese pizza", 3)
	require.NoError(t, err)
	require.Len(t, recipes, 3)

	assert.Equal(t, "Margherita Pizza", recipes[0].Title)
	assert.Equal(t, "https://img/1.jpg", recipes[0].ThumbnailURL)
	assert.Equal(t, "https://example.com/1", recipes[0].SourceURL)
	assert.Equal(t, "main course", recipes[0].Category)
	require.NotNil(t, recipes[0].CaloriesPerServing)
	assert.Equal(t, 75.0, *recipes[0].CaloriesPerServing)

	require.NotNil(t, recipes[1].CaloriesPerServing)
	assert.Equal(t, 333.0, *recipes[1].CaloriesPerServing)
	assert.Equal(t, "italian, american", recipes[1].Category)

	assert.Nil(t, recipes[2].CaloriesPerServing)
}

func TestEdamamSearchFailures(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		wantKind lookup.Kind
	}{
		{
			name:     "no hits",
			handler:  func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"hits":[]}`)) },
			wantKind: lookup.KindNoMatch,
		},
		{
			name:     "server error",
			handler:  func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
			wantKind: lookup.KindStatus,
		},
		{
			name:     "not json",
			handler:  func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`<html>`)) },
			wantKind: lookup.KindDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSource(t, tt.handler)

			recipes, err := s.Search(context.Background(), "pizza", 3)
			assert.Empty(t, recipes)
			assert.Equal(t, tt.wantKind, lookup.KindOf(err))
		})
	}
}

func TestEdamamSearchMissingCredential(t *testing.T) {
	s := NewEdamamSource("", "key")

	_, err := s.Search(context.Background(), "pizza", 3)
	assert.Equal(t, lookup.KindCredential, lookup.KindOf(err))
}
