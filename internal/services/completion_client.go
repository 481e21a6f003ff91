package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/config"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/metrics"
	"github.com/go-resty/resty/v2"
)

// Completer produces a free-text answer for a question the FAQ table could
// not answer.
type Completer interface {
	Complete(ctx context.Context, message string) (string, error)
}

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	noCompletionText = "Unable to process your request."
)

const assistantSystemPrompt = `You are a helpful Blood Donation Information Assistant for a Blood Donor Finder App.

Guidelines:
1. Provide accurate blood donation information (eligibility, safety, intervals, blood groups)
2. DO NOT provide medical diagnosis or treatment advice
3. Keep responses short, clear, and actionable (max 150 words)
4. Use emojis for better readability
5. Always end with: "For personalized advice, consult a healthcare professional."
6. If user asks medical questions beyond donation info, redirect them to doctors

Current Context:
- This is a Blood Donation Information Platform
- Focus on donation eligibility, safety, process, and logistics
- Never diagnose conditions or recommend treatments`

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// apiError covers the error body shape both providers return.
type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CompletionClient calls OpenAI chat completions or Gemini generateContent.
// Failed calls are not retried.
type CompletionClient struct {
	httpClient *resty.Client
	provider   string
	apiKey     string
	openAIURL  string
	openAI     string
	geminiURL  string
	gemini     string
	metrics    *metrics.Metrics
}

func NewCompletionClient(cfg *config.Config, m *metrics.Metrics) *CompletionClient {
	client := resty.New().
		SetTimeout(cfg.AITimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &CompletionClient{
		httpClient: client,
		provider:   cfg.AIProvider,
		apiKey:     cfg.AIAPIKey,
		openAIURL:  cfg.OpenAIAPIURL,
		openAI:     cfg.OpenAIModel,
		geminiURL:  strings.TrimRight(cfg.GeminiAPIURL, "/"),
		gemini:     cfg.GeminiModel,
		metrics:    m,
	}
}

func (c *CompletionClient) Complete(ctx context.Context, message string) (string, error) {
	start := time.Now()
	defer func() {
		c.metrics.CompletionDuration.Observe(time.Since(start).Seconds())
	}()

	if c.provider == ProviderGemini {
		return c.completeGemini(ctx, message)
	}
	return c.completeOpenAI(ctx, message)
}

func (c *CompletionClient) completeOpenAI(ctx context.Context, message string) (string, error) {
	var result openAIChatResponse
	var failure apiError
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetBody(openAIChatRequest{
			Model: c.openAI,
			Messages: []openAIMessage{
				{Role: "system", Content: assistantSystemPrompt},
				{Role: "user", Content: message},
			},
			Temperature: 0.7,
			MaxTokens:   200,
		}).
		SetResult(&result).
		SetError(&failure).
		Post(c.openAIURL)
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	if resp.IsError() {
		return "", providerError("openai", resp.StatusCode(), failure)
	}

	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return noCompletionText, nil
	}
	return result.Choices[0].Message.Content, nil
}

func (c *CompletionClient) completeGemini(ctx context.Context, message string) (string, error) {
	var result geminiResponse
	var failure apiError
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(geminiRequest{
			Contents: []geminiContent{{
				Parts: []geminiPart{{Text: assistantSystemPrompt + "\n\nUser Question: " + message}},
			}},
		}).
		SetResult(&result).
		SetError(&failure).
		Post(c.geminiURL + "/" + c.gemini + ":generateContent")
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	if resp.IsError() {
		return "", providerError("gemini", resp.StatusCode(), failure)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 ||
		strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text) == "" {
		return noCompletionText, nil
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}

func providerError(provider string, status int, body apiError) error {
	msg := body.Error.Message
	if msg == "" {
		msg = provider + " API error"
	}
	return fmt.Errorf("%s: status %d: %w", provider, status, errors.New(msg))
}
