package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Default endpoints for OpenAI-compatible providers.
const (
	OpenAIBaseURL     = "https://api.openai.com/v1"
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
	OllamaHost        = "http://127.0.0.1:11434"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint:
// OpenAI itself, OpenRouter, or a local Ollama through its /v1 API.
type OpenAIClient struct {
	client   *openai.Client
	provider string
	baseURL  string
	apiKey   string
	retry    backoff
}

// NewOpenAIClient builds a client for provider at baseURL. Local providers
// accept an empty API key.
func NewOpenAIClient(provider, apiKey, baseURL string, c RuntimeConfig) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	cfg.HTTPClient = newHTTPClient(c.HTTPTimeout)
	return &OpenAIClient{
		client:   openai.NewClientWithConfig(cfg),
		provider: provider,
		baseURL:  cfg.BaseURL,
		apiKey:   apiKey,
		retry:    backoff{attempts: c.RetryMax, base: c.BaseDelay, max: c.MaxDelay},
	}
}

func (c *OpenAIClient) validate(req GenerateRequest) error {
	if c.apiKey == "" && c.provider != ProviderOllama && c.provider != ProviderLocal {
		return fmt.Errorf("%s API key is missing", c.provider)
	}
	if req.Model == "" {
		return errors.New("model cannot be empty")
	}
	return nil
}

func (c *OpenAIClient) chatRequest(req GenerateRequest) openai.ChatCompletionRequest {
	msgs := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	return openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    msgs,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	}
}

// Generate sends a chat completion, retrying transient failures.
func (c *OpenAIClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if err := c.validate(req); err != nil {
		return nil, err
	}
	var out *GenerateResponse
	err := c.retry.do(ctx, func() error {
		mctx, meta := withMeta(ctx)
		resp, err := c.client.CreateChatCompletion(mctx, c.chatRequest(req))
		if err != nil {
			return c.mapError(err, meta)
		}
		out = &GenerateResponse{
			ID:        resp.ID,
			RequestID: meta.requestID,
			Usage: Usage{
				PromptTokens:     resp.Usage.PromptTokens,
				CompletionTokens: resp.Usage.CompletionTokens,
				TotalTokens:      resp.Usage.TotalTokens,
			},
		}
		for _, ch := range resp.Choices {
			out.Choices = append(out.Choices, Choice{Message: Message{Role: ch.Message.Role, Content: ch.Message.Content}})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateStream streams content deltas to onDelta.
func (c *OpenAIClient) GenerateStream(ctx context.Context, req GenerateRequest, onDelta func(string)) error {
	if err := c.validate(req); err != nil {
		return err
	}
	mctx, meta := withMeta(ctx)
	creq := c.chatRequest(req)
	creq.Stream = true
	stream, err := c.client.CreateChatCompletionStream(mctx, creq)
	if err != nil {
		return c.mapError(err, meta)
	}
	defer stream.Close()
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("stream read: %w", c.mapError(err, meta))
		}
		if len(resp.Choices) > 0 && resp.Choices[0].Delta.Content != "" {
			onDelta(resp.Choices[0].Delta.Content)
		}
	}
}

// mapError converts SDK errors into the package's typed errors.
func (c *OpenAIClient) mapError(err error, meta *responseMeta) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		e := &APIError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message, RequestID: meta.requestID}
		if code, ok := apiErr.Code.(string); ok {
			e.Code = code
		}
		return classifyAPIError(e, meta.retryAfter)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		e := &APIError{StatusCode: reqErr.HTTPStatusCode, RequestID: meta.requestID}
		if reqErr.Err != nil {
			e.Message = reqErr.Err.Error()
		}
		return classifyAPIError(e, meta.retryAfter)
	}
	if terr := transportError(err, c.baseURL); terr != nil {
		return terr
	}
	return fmt.Errorf("%s request: %w", c.provider, err)
}

func openAIFactory(provider, defaultURL string, attempts int, base time.Duration) RuntimeFactory {
	return func(c RuntimeConfig) Runtime {
		c = c.withDefaults(attempts, base)
		url := c.BaseURL
		if url == "" {
			url = defaultURL
		}
		return NewOpenAIClient(provider, c.APIKey, url, c)
	}
}

func ollamaFactory(c RuntimeConfig) Runtime {
	c = c.withDefaults(2, 200*time.Millisecond)
	host := c.Host
	if host == "" {
		host = OllamaHost
	}
	url := c.BaseURL
	if url == "" {
		url = strings.TrimSuffix(host, "/") + "/v1"
	}
	key := c.APIKey
	if key == "" {
		key = ProviderOllama
	}
	return NewOpenAIClient(ProviderOllama, key, url, c)
}
