package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// SDKClient uses the official Go SDK instead of raw REST calls
type SDKClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewSDKClient creates an SDK-backed client for model
func NewSDKClient(ctx context.Context, apiKey, model string) (*SDKClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("error creating gemini client: %w", err)
	}
	return &SDKClient{
		client: client,
		model:  client.GenerativeModel(model),
	}, nil
}

// Close closes the Gemini client
func (c *SDKClient) Close() error {
	return c.client.Close()
}

// Generate sends the prompt and image and returns the first text part
func (c *SDKClient) Generate(ctx context.Context, prompt, mimeType string, image []byte) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt), genai.Blob{MIMEType: mimeType, Data: image})
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	return firstText(resp)
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}
	cand := resp.Candidates[0]
	if cand.Content == nil {
		return "", ErrEmptyResponse
	}
	for _, p := range cand.Content.Parts {
		if text, ok := p.(genai.Text); ok {
			return string(text), nil
		}
	}
	return "", ErrEmptyResponse
}
