// Package huggingface classifies food photos with an image-classification
// model served by the Hugging Face inference API, e.g. nateraw/food.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/saxenaraghav20/nutritionist-ai/internal/config"
	"github.com/saxenaraghav20/nutritionist-ai/internal/domain"
	"github.com/saxenaraghav20/nutritionist-ai/internal/vision"
)

const (
	backend        = "huggingface"
	defaultBaseURL = "https://api-inference.huggingface.co"
	maxImageBytes  = 10 * 1024 * 1024
)

type HuggingFaceClassifier struct {
	token   string
	model   string
	client  *http.Client
	baseURL string
}

func NewHuggingFaceClassifier(token, model string) *HuggingFaceClassifier {
	return &HuggingFaceClassifier{
		token:   token,
		model:   model,
		client:  &http.Client{},
		baseURL: defaultBaseURL,
	}
}

// Classify returns every label the model scored, best first. The hint is not
// used; image-classification models take no text input.
func (c *HuggingFaceClassifier) Classify(ctx context.Context, image []byte, mimeType, _ string) ([]domain.Prediction, error) {
	if err := config.RequireCredential("HF_API_TOKEN", c.token); err != nil {
		return nil, err
	}
	mime, err := vision.CheckMedia(image, mimeType, maxImageBytes)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/models/"+c.model, bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", mime)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &vision.ClassificationError{Backend: backend, Err: fmt.Errorf("failed to call inference api: %w", err)}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close huggingface response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &vision.ClassificationError{
			Backend: backend,
			Err:     fmt.Errorf("inference api returned status %d: %s", resp.StatusCode, errBody),
		}
	}

	var scored []struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&scored); err != nil {
		return nil, &vision.ClassificationError{Backend: backend, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	preds := make([]domain.Prediction, 0, len(scored))
	for _, s := range scored {
		if s.Label == "" {
			continue
		}
		preds = append(preds, domain.Prediction{Label: s.Label, Confidence: s.Score})
	}
	vision.SortPredictions(preds)
	return preds, nil
}
