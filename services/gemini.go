package services

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"nearbot/models"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiClient implements LLMClient on top of the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient initializes the Gemini client with the given API key and
// model name. An empty model falls back to the default.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	cfg := &genai.ClientConfig{}
	if apiKey != "" {
		cfg.APIKey = apiKey
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiClient{client: client, model: model}, nil
}

// Complete sends the turns to Gemini and returns the reply text plus token
// usage. Leading system turns become the system instruction; system turns
// that appear after conversation has started (the "[Context] ..." entries)
// are folded into the contents as user-role messages, preserving their
// position in the transcript.
func (g *GeminiClient) Complete(ctx context.Context, turns []models.Turn) (*models.Completion, error) {
	var system strings.Builder
	var contents []*genai.Content

	for _, t := range turns {
		switch t.Role {
		case models.RoleSystem:
			if len(contents) == 0 {
				if system.Len() > 0 {
					system.WriteString("\n\n")
				}
				system.WriteString(t.Content)
				continue
			}
			contents = append(contents, genai.NewContentFromText(t.Content, genai.RoleUser))
		case models.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(t.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(t.Content, genai.RoleUser))
		}
	}

	config := &genai.GenerateContentConfig{}
	if system.Len() > 0 {
		config.SystemInstruction = genai.NewContentFromText(system.String(), genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		kind := "APIError"
		if ctx.Err() != nil {
			kind = "Timeout"
		}
		return nil, &ProviderError{Kind: kind, Err: err}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, &ProviderError{Kind: "EmptyResponse"}
	}

	completion := &models.Completion{Text: text}
	if resp.UsageMetadata != nil {
		completion.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		completion.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return completion, nil
}
