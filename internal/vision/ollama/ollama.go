package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/saxenaraghav20/nutritionist-ai/internal/domain"
	"github.com/saxenaraghav20/nutritionist-ai/internal/vision"
)

const backend = "ollama"

type generateRequest struct {
	Model  string   `json:"model"`
	System string   `json:"system"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images"`
	Stream bool     `json:"stream"`
}

// OllamaClassifier runs a multimodal model on a self-hosted Ollama server.
type OllamaClassifier struct {
	host   string
	model  string
	client *http.Client
}

func NewOllamaClassifier(host, model string) *OllamaClassifier {
	return &OllamaClassifier{
		host:   host,
		model:  model,
		client: &http.Client{},
	}
}

func (c *OllamaClassifier) Classify(ctx context.Context, image []byte, mimeType, hint string) ([]domain.Prediction, error) {
	if _, err := vision.CheckMedia(image, mimeType, 0); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(generateRequest{
		Model:  c.model,
		System: vision.SystemInstruction,
		Prompt: vision.UserPrompt(hint),
		Images: []string{base64.StdEncoding.EncodeToString(image)},
		Stream: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &vision.ClassificationError{Backend: backend, Err: fmt.Errorf("failed to call ollama: %w", err)}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close ollama response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &vision.ClassificationError{Backend: backend, Err: fmt.Errorf("ollama returned status %d", resp.StatusCode)}
	}

	var respBody struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, &vision.ClassificationError{Backend: backend, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return vision.ParseGenerative(respBody.Response), nil
}
