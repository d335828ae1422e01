package claude

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/saxenaraghav20/nutritionist-ai/internal/config"
	"github.com/saxenaraghav20/nutritionist-ai/internal/domain"
	"github.com/saxenaraghav20/nutritionist-ai/internal/vision"
)

const backend = "claude"

// maxImageBytes is the Messages API limit for a single base64 image.
const maxImageBytes = 5 * 1024 * 1024

type ClaudeClassifier struct {
	apiKey string
	model  string
	client *anthropic.Client
}

// NewClaudeClassifier builds a classifier against the Anthropic Messages API.
// A non-empty baseURL replaces the default endpoint.
func NewClaudeClassifier(apiKey, model, baseURL string) *ClaudeClassifier {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	return &ClaudeClassifier{
		apiKey: apiKey,
		model:  model,
		client: anthropic.NewClient(apiKey, opts...),
	}
}

func (c *ClaudeClassifier) Classify(ctx context.Context, image []byte, mimeType, hint string) ([]domain.Prediction, error) {
	if err := config.RequireCredential("CLAUDE_API_KEY", c.apiKey); err != nil {
		return nil, err
	}
	mime, err := vision.CheckMedia(image, mimeType, maxImageBytes)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:  anthropic.Model(c.model),
		System: vision.SystemInstruction,
		// 1024 tokens covers a dish line plus an itemised calorie breakdown
		// for a crowded plate with room to spare.
		MaxTokens: 1024,
		Messages: []anthropic.Message{{
			Role: anthropic.RoleUser,
			Content: []anthropic.MessageContent{
				anthropic.NewImageMessageContent(anthropic.NewMessageContentSource(
					anthropic.MessagesContentSourceTypeBase64,
					mime,
					base64.StdEncoding.EncodeToString(image),
				)),
				anthropic.NewTextMessageContent(vision.UserPrompt(hint)),
			},
		}},
	})
	if err != nil {
		return nil, &vision.ClassificationError{Backend: backend, Err: fmt.Errorf("failed to call claude: %w", err)}
	}

	var text string
	for _, blk := range resp.Content {
		if blk.Type == anthropic.MessagesContentTypeText {
			text = blk.GetText()
			break
		}
	}
	return vision.ParseGenerative(text), nil
}
