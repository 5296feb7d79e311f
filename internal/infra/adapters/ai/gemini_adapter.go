package ai

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	"carbusiness-backend/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*GeminiAdapter)(nil)

// GeminiAdapter talks to the Gemini API directly through the official SDK.
// Used when no gateway key is configured.
type GeminiAdapter struct {
	client       *genai.Client
	defaultModel string
}

func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, defaultModel string) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: c, defaultModel: defaultModel}, nil
}

func (g *GeminiAdapter) ListModels(ctx context.Context) ([]string, error) {
	var out []string
	for m := range g.client.Models.All(ctx) {
		if m.Name != "" {
			out = append(out, m.Name)
		}
	}
	if len(out) == 0 && g.defaultModel != "" {
		out = []string{g.defaultModel}
	}
	return out, nil
}

func (g *GeminiAdapter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("gemini: no messages")
	}
	if model == "" {
		model = g.defaultModel
	}
	// The gateway model id carries a provider prefix ("google/..."); the
	// direct API wants the bare model name.
	model = strings.TrimPrefix(model, "google/")

	// System messages go through the config, not the history.
	var cfg genai.GenerateContentConfig
	var turns []adapter.Message
	for _, m := range messages {
		if strings.ToLower(m.Role) == "system" {
			cfg.SystemInstruction = &genai.Content{
				Parts: []*genai.Part{{Text: m.Content}},
			}
			continue
		}
		turns = append(turns, m)
	}

	// A system-only transcript means "open the conversation".
	send := "Olá"
	var contents []*genai.Content
	if len(turns) > 0 {
		send = turns[len(turns)-1].Content
		for _, m := range turns[:len(turns)-1] {
			role := genai.RoleUser
			if strings.ToLower(m.Role) == "assistant" {
				role = genai.RoleModel
			}
			contents = append(contents, &genai.Content{
				Role:  role,
				Parts: []*genai.Part{{Text: m.Content}},
			})
		}
	}

	chat, err := g.client.Chats.Create(ctx, model, &cfg, contents)
	if err != nil {
		return "", err
	}

	resp, err := chat.SendMessage(ctx, genai.Part{Text: send})
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini: empty response")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
