package mealdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saxenaraghav20/nutritionist-ai/internal/lookup"
)

func newTestSource(t *testing.T, handler http.HandlerFunc) *MealDBSource {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	s := NewMealDBSource()
	s.baseURL = server.URL
	return s
}

func TestMealDBSearch(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/json/v1/1/search.php", r.URL.Path)
		assert.Equal(t, "chicken curry", r.URL.Query().Get("s"))
		_, _ = w.Write([]byte(`{"meals":[
			{"idMeal":"52795","strMeal":"Chicken Handi","strMealThumb":"https://img/handi.jpg","strSource":"https://example.com/handi","strCategory":"Chicken"},
			{"idMeal":"52806","strMeal":"Tandoori chicken","strMealThumb":"https://img/tandoori.jpg","strSource":"","strCategory":"Chicken"},
			{"idMeal":"52850","strMeal":"Chicken Couscous","strMealThumb":"https://img/couscous.jpg","strSource":null,"strCategory":"Chicken"},
			{"idMeal":"52920","strMeal":"Chicken Marengo","strMealThumb":"https://img/marengo.jpg","strSource":null,"strCategory":"Chicken"}
		]}`))
	})

	recipes, err := s.Search(context.Background(), "chicken curry", 3)
	require.NoError(t, err)
	require.Len(t, recipes, 3)

	assert.Equal(t, "Chicken Handi", recipes[0].Title)
	assert.Equal(t, "https://img/handi.jpg", recipes[0].ThumbnailURL)
	assert.Equal(t, "https://example.com/handi", recipes[0].SourceURL)
	assert.Equal(t, "Chicken", recipes[0].Category)
	assert.Nil(t, recipes[0].CaloriesPerServing)

	assert.Equal(t, "https://www.themealdb.com/meal/52806", recipes[1].SourceURL)
}

func TestMealDBSearchNoMeals(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"meals":null}`))
	})

	recipes, err := s.Search(context.Background(), "zzz", 3)
	assert.Empty(t, recipes)
	assert.ErrorIs(t, err, lookup.ErrNotFound)
}

func TestMealDBSearchTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	s := NewMealDBSource()
	s.baseURL = server.URL
	server.Close()

	recipes, err := s.Search(context.Background(), "pizza", 3)
	assert.Empty(t, recipes)
	assert.Equal(t, lookup.KindTransport, lookup.KindOf(err))
}
