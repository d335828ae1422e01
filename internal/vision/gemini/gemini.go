package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"slices"
	"strings"

	generativelanguage "google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"

	"github.com/saxenaraghav20/nutritionist-ai/internal/config"
	"github.com/saxenaraghav20/nutritionist-ai/internal/domain"
	"github.com/saxenaraghav20/nutritionist-ai/internal/vision"
)

const backend = "gemini"

// maxInlineBytes is the inline-data request limit of generateContent.
const maxInlineBytes = 20 * 1024 * 1024

type GeminiClassifier struct {
	apiKey  string
	model   string
	service *vision.Handle[*generativelanguage.Service]
}

// NewGeminiClassifier builds a classifier for the Generative Language API.
// The API service is created on first use. Extra client options are applied
// after the API key, which lets tests point the client at a fake endpoint.
func NewGeminiClassifier(apiKey, model string, opts ...option.ClientOption) *GeminiClassifier {
	return &GeminiClassifier{
		apiKey:  apiKey,
		model:   modelName(model),
		service: vision.NewHandle(newService(apiKey, opts)),
	}
}

func newService(apiKey string, opts []option.ClientOption) func(context.Context) (*generativelanguage.Service, error) {
	return func(ctx context.Context) (*generativelanguage.Service, error) {
		all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
		svc, err := generativelanguage.NewService(ctx, all...)
		if err != nil {
			return nil, fmt.Errorf("failed to create generative language service: %w", err)
		}
		return svc, nil
	}
}

func (c *GeminiClassifier) Classify(ctx context.Context, image []byte, mimeType, hint string) ([]domain.Prediction, error) {
	if err := config.RequireCredential("GOOGLE_API_KEY", c.apiKey); err != nil {
		return nil, err
	}
	mime, err := vision.CheckMedia(image, mimeType, maxInlineBytes)
	if err != nil {
		return nil, err
	}

	svc, err := c.service.Get(ctx)
	if err != nil {
		return nil, &vision.ClassificationError{Backend: backend, Err: err}
	}

	req := &generativelanguage.GenerateContentRequest{
		SystemInstruction: &generativelanguage.Content{
			Parts: []*generativelanguage.Part{{Text: vision.SystemInstruction}},
		},
		Contents: []*generativelanguage.Content{{
			Role: "user",
			Parts: []*generativelanguage.Part{
				{Text: vision.UserPrompt(hint)},
				{InlineData: &generativelanguage.Blob{
					MimeType: mime,
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
	}

	resp, err := svc.Models.GenerateContent(c.model, req).Context(ctx).Do()
	if err != nil {
		return nil, &vision.ClassificationError{Backend: backend, Err: fmt.Errorf("failed to call gemini: %w", err)}
	}

	return vision.ParseGenerative(responseText(resp)), nil
}

// ListModels returns the names of models the key can call generateContent on.
func ListModels(ctx context.Context, apiKey string, opts ...option.ClientOption) ([]string, error) {
	if err := config.RequireCredential("GOOGLE_API_KEY", apiKey); err != nil {
		return nil, err
	}
	svc, err := newService(apiKey, opts)(ctx)
	if err != nil {
		return nil, err
	}

	var names []string
	err = svc.Models.List().Pages(ctx, func(page *generativelanguage.ListModelsResponse) error {
		for _, m := range page.Models {
			if slices.Contains(m.SupportedGenerationMethods, "generateContent") {
				names = append(names, m.Name)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	return names, nil
}

func responseText(resp *generativelanguage.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}

// modelName accepts both "gemini-1.5-flash" and "models/gemini-1.5-flash".
func modelName(model string) string {
	if strings.HasPrefix(model, "models/") {
		return model
	}
	return "models/" + model
}
