package gemini

import (
	"banking-assistant-be/pkg/llm"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type GeminiProvider struct {
	apiKey    string
	modelName string
	client    *http.Client
}

// Ensure GeminiProvider implements LLMProvider
var _ llm.LLMProvider = &GeminiProvider{}

func NewGeminiProvider(apiKey, modelName string) *GeminiProvider {
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiProvider{
		apiKey:    apiKey,
		modelName: modelName,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type geminiChatParts struct {
	Text string `json:"text"`
}

type geminiChatContent struct {
	Parts []*geminiChatParts `json:"parts"`
	Role  string             `json:"role"`
}

type geminiChatRequest struct {
	Contents []*geminiChatContent `json:"contents"`
}

type geminiChatCandidate struct {
	Content *geminiChatContent `json:"content"`
}

type geminiChatResponse struct {
	Candidates []*geminiChatCandidate `json:"candidates"`
}

func (p *GeminiProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := &llm.Options{
		Model: p.modelName,
	}
	for _, o := range options {
		o(opts)
	}

	// Gemini v1 only knows "user" and "model" roles. System instructions
	// ride along as a user turn; "assistant" maps to "model".
	contents := make([]*geminiChatContent, 0, len(history))
	for _, msg := range history {
		role := msg.Role
		switch role {
		case "assistant":
			role = "model"
		case "system":
			role = "user"
		}
		contents = append(contents, &geminiChatContent{
			Parts: []*geminiChatParts{{Text: msg.Content}},
			Role:  role,
		})
	}

	payload := geminiChatRequest{Contents: contents}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1/models/%s:generateContent",
		opts.Model,
	)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(payloadJson))
	if err != nil {
		return "", err
	}

	req.Header.Set("x-goog-api-key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return "", &llm.ProviderError{Provider: "gemini", Transient: true, Err: err}
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", &llm.ProviderError{Provider: "gemini", Transient: true, Err: err}
	}

	if res.StatusCode != http.StatusOK {
		return "", &llm.ProviderError{
			Provider:  "gemini",
			Transient: res.StatusCode == 429 || res.StatusCode >= 500,
			Err: fmt.Errorf(
				"status error, got status %d. with response body %s",
				res.StatusCode,
				string(resBody),
			),
		}
	}

	var geminiRes geminiChatResponse
	if err := json.Unmarshal(resBody, &geminiRes); err != nil {
		return "", err
	}

	if len(geminiRes.Candidates) == 0 || geminiRes.Candidates[0].Content == nil || len(geminiRes.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty candidates from gemini api")
	}

	return geminiRes.Candidates[0].Content.Parts[0].Text, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}
