package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/saxenaraghav20/nutritionist-ai/internal/config"
	"github.com/saxenaraghav20/nutritionist-ai/internal/vision"
)

var jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0}

func testOptions(server *httptest.Server) []option.ClientOption {
	return []option.ClientOption{
		option.WithEndpoint(server.URL + "/"),
		option.WithHTTPClient(server.Client()),
	}
}

func TestGeminiClassify(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-1.5-flash:generateContent"), r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Dish: Salmon Sushi\n"},{"text":"8 pieces, about 400 kcal."}]}}]}`))
	}))
	defer server.Close()

	classifier := NewGeminiClassifier("g-key", "gemini-1.5-flash", testOptions(server)...)

	preds, err := classifier.Classify(context.Background(), jpegHeader, "image/jpeg", "from a bento box")
	require.NoError(t, err)
	require.Len(t, preds, 1)
	assert.Equal(t, "Salmon Sushi", preds[0].Label)
	assert.Contains(t, preds[0].Description, "400 kcal")

	require.Contains(t, body, "systemInstruction")
	contents, ok := body["contents"].([]interface{})
	require.True(t, ok)
	assert.Len(t, contents, 1)
}

func TestGeminiClassifyServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"permission denied"}}`, http.StatusForbidden)
	}))
	defer server.Close()

	classifier := NewGeminiClassifier("g-key", "models/gemini-1.5-flash", testOptions(server)...)

	_, err := classifier.Classify(context.Background(), jpegHeader, "image/jpeg", "")
	var classErr *vision.ClassificationError
	assert.True(t, errors.As(err, &classErr))
}

func TestGeminiClassifyMissingKey(t *testing.T) {
	classifier := NewGeminiClassifier("", "gemini-1.5-flash")

	_, err := classifier.Classify(context.Background(), jpegHeader, "image/jpeg", "")
	var missing *config.MissingCredentialError
	assert.True(t, errors.As(err, &missing))
}

func TestListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"models":[
			{"name":"models/gemini-1.5-flash","supportedGenerationMethods":["generateContent","countTokens"]},
			{"name":"models/embedding-001","supportedGenerationMethods":["embedContent"]}
		]}`))
	}))
	defer server.Close()

	names, err := ListModels(context.Background(), "g-key", testOptions(server)...)
	require.NoError(t, err)
	assert.Equal(t, []string{"models/gemini-1.5-flash"}, names)
}

func TestListModelsMissingKey(t *testing.T) {
	_, err := ListModels(context.Background(), "")
	var missing *config.MissingCredentialError
	assert.True(t, errors.As(err, &missing))
}

func TestModelName(t *testing.T) {
	assert.Equal(t, "models/gemini-pro", modelName("gemini-pro"))
	assert.Equal(t, "models/gemini-pro", modelName("models/gemini-pro"))
}
