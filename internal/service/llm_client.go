package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/brandsight/brandsight-api/internal/config"
)

// Provider identifiers accepted in LLM_PROVIDER.
const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
	ProviderOllama     = "ollama"
)

// LLMCallOptions configures a single LLM API call.
type LLMCallOptions struct {
	Temperature float64       // Default: 0.2
	MaxTokens   int           // Default: 1024
	Timeout     time.Duration // Default: 30s
	JSONMode    bool          // Request JSON response format (OpenAI-compatible APIs only)
}

// DefaultLLMCallOptions returns sensible defaults for LLM calls.
func DefaultLLMCallOptions() LLMCallOptions {
	return LLMCallOptions{
		Temperature: 0.2,
		MaxTokens:   1024,
		Timeout:     30 * time.Second,
	}
}

// LLMCallResult holds the result of an LLM API call including token usage.
type LLMCallResult struct {
	Content      string
	InputTokens  int
	OutputTokens int
	FinishReason string // "stop", "length", etc.
}

// LLMClient handles direct LLM API calls. It speaks the wire formats of
// OpenAI-compatible APIs, Anthropic and Ollama directly, without an SDK.
type LLMClient struct {
	logger   *slog.Logger
	provider string
	apiKey   string
	model    string
	baseURL  string
	timeout  time.Duration
}

// NewLLMClient creates an LLM client from service configuration.
func NewLLMClient(logger *slog.Logger, cfg *config.Config) *LLMClient {
	return &LLMClient{
		logger:   logger,
		provider: cfg.LLMProvider,
		apiKey:   cfg.LLMAPIKey,
		model:    cfg.LLMModel,
		baseURL:  cfg.LLMBaseURL,
		timeout:  cfg.LLMTimeout,
	}
}

// Call makes a direct call to the configured LLM API. The system message
// may be empty.
func (c *LLMClient) Call(ctx context.Context, system, prompt string, opts LLMCallOptions) (*LLMCallResult, error) {
	if c.apiKey == "" && c.provider != ProviderOllama {
		return nil, fmt.Errorf("no API key available for provider %s", c.provider)
	}

	if opts.Temperature == 0 {
		opts.Temperature = 0.2
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 1024
	}
	if opts.Timeout == 0 {
		opts.Timeout = c.timeout
	}

	jsonBody, err := json.Marshal(c.buildRequestBody(system, prompt, opts))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	apiURL := c.apiEndpoint()

	if c.logger != nil {
		c.logger.Debug("making LLM API request",
			"provider", c.provider,
			"model", c.model,
			"api_url", apiURL,
			"prompt_length", len(prompt),
			"temperature", opts.Temperature,
			"max_tokens", opts.MaxTokens,
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuthHeaders(req)

	client := &http.Client{Timeout: opts.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Error("LLM API request failed", "provider", c.provider, "error", err)
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if c.logger != nil {
			c.logger.Error("LLM API error",
				"provider", c.provider,
				"status_code", resp.StatusCode,
				"response", string(body),
			)
		}
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return c.ParseResponse(body)
}

// buildRequestBody assembles the provider-specific request payload.
func (c *LLMClient) buildRequestBody(system, prompt string, opts LLMCallOptions) map[string]any {
	if c.provider == ProviderAnthropic {
		// Anthropic takes the system message as a top-level field.
		body := map[string]any{
			"model": c.model,
			"messages": []map[string]string{
				{"role": "user", "content": prompt},
			},
			"temperature": opts.Temperature,
			"max_tokens":  opts.MaxTokens,
		}
		if system != "" {
			body["system"] = system
		}
		return body
	}

	messages := make([]map[string]string, 0, 2)
	if system != "" {
		messages = append(messages, map[string]string{"role": "system", "content": system})
	}
	messages = append(messages, map[string]string{"role": "user", "content": prompt})

	body := map[string]any{
		"model":       c.model,
		"messages":    messages,
		"temperature": opts.Temperature,
		"max_tokens":  opts.MaxTokens,
	}

	// response_format is an OpenAI-compatible extension. Anthropic and
	// Ollama rely on prompt instructions instead.
	if opts.JSONMode && (c.provider == ProviderOpenAI || c.provider == ProviderOpenRouter) {
		body["response_format"] = map[string]string{"type": "json_object"}
	}

	if c.provider == ProviderOllama {
		body["stream"] = false
	}

	return body
}

// apiEndpoint returns the chat completion endpoint for the provider.
func (c *LLMClient) apiEndpoint() string {
	switch c.provider {
	case ProviderOpenRouter:
		return "https://openrouter.ai/api/v1/chat/completions"
	case ProviderAnthropic:
		return "https://api.anthropic.com/v1/messages"
	case ProviderOllama:
		baseURL := c.baseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return baseURL + "/api/chat"
	default:
		baseURL := c.baseURL
		if baseURL == "" {
			baseURL = "https://api.openai.com"
		}
		return baseURL + "/v1/chat/completions"
	}
}

// setAuthHeaders sets the authentication headers for the provider.
func (c *LLMClient) setAuthHeaders(req *http.Request) {
	switch c.provider {
	case ProviderAnthropic:
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", "2023-06-01")
	case ProviderOllama:
		// No auth needed
	default:
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// ParseResponse extracts the text response and token usage from the
// provider's wire format. Exported for testing.
func (c *LLMClient) ParseResponse(body []byte) (*LLMCallResult, error) {
	switch c.provider {
	case ProviderAnthropic:
		return parseAnthropicFormat(body)
	case ProviderOllama:
		return parseOllamaFormat(body)
	default:
		return parseOpenAIFormat(body)
	}
}

func parseAnthropicFormat(body []byte) (*LLMCallResult, error) {
	var resp struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		StopReason string `json:"stop_reason"` // "end_turn", "max_tokens", "stop_sequence"
		Usage      struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse Anthropic response: %w", err)
	}
	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("empty response from LLM")
	}

	result := &LLMCallResult{
		Content:      resp.Content[0].Text,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}

	// Normalize Anthropic's stop_reason to OpenAI-style finish_reason
	switch resp.StopReason {
	case "max_tokens":
		result.FinishReason = "length"
	case "end_turn", "stop_sequence":
		result.FinishReason = "stop"
	default:
		result.FinishReason = resp.StopReason
	}

	return result, nil
}

func parseOllamaFormat(body []byte) (*LLMCallResult, error) {
	var resp struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		DoneReason      string `json:"done_reason"` // "stop", "length"
		PromptEvalCount int    `json:"prompt_eval_count"`
		EvalCount       int    `json:"eval_count"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse Ollama response: %w", err)
	}

	return &LLMCallResult{
		Content:      resp.Message.Content,
		InputTokens:  resp.PromptEvalCount,
		OutputTokens: resp.EvalCount,
		FinishReason: resp.DoneReason,
	}, nil
}

// parseOpenAIFormat parses OpenAI-compatible responses, used for OpenAI
// and OpenRouter.
func parseOpenAIFormat(body []byte) (*LLMCallResult, error) {
	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"` // "stop", "length", "content_filter"
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse OpenAI response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from LLM")
	}

	return &LLMCallResult{
		Content:      resp.Choices[0].Message.Content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		FinishReason: resp.Choices[0].FinishReason,
	}, nil
}
