package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
)

// AnthropicBaseURL is the default Messages API root.
const AnthropicBaseURL = "https://api.anthropic.com/v1"

const anthropicMaxTokens = 1024

// AnthropicClient implements Runtime over the Anthropic Messages API.
type AnthropicClient struct {
	client  *anthropic.Client
	apiKey  string
	baseURL string
	retry   backoff
}

// NewAnthropicClient builds a client; an empty baseURL uses the public API.
func NewAnthropicClient(apiKey, baseURL string, c RuntimeConfig) *AnthropicClient {
	if baseURL == "" {
		baseURL = AnthropicBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	return &AnthropicClient{
		client: anthropic.NewClient(apiKey,
			anthropic.WithBaseURL(baseURL),
			anthropic.WithHTTPClient(newHTTPClient(c.HTTPTimeout)),
		),
		apiKey:  apiKey,
		baseURL: baseURL,
		retry:   backoff{attempts: c.RetryMax, base: c.BaseDelay, max: c.MaxDelay},
	}
}

// Generate sends one Messages request. System messages become the system
// prompt; the reply's text blocks are joined into a single choice.
func (c *AnthropicClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if c.apiKey == "" {
		return nil, errors.New("anthropic API key is missing")
	}
	if req.Model == "" {
		return nil, errors.New("model cannot be empty")
	}
	system, turns := splitSystem(req.Messages)
	if len(turns) == 0 {
		return nil, errors.New("at least one user message is required")
	}
	msgs := make([]anthropic.Message, len(turns))
	for i, m := range turns {
		text := m.Content
		role := anthropic.RoleUser
		if m.Role == RoleAssistant {
			role = anthropic.RoleAssistant
		}
		msgs[i] = anthropic.Message{Role: role, Content: []anthropic.MessageContent{{Type: "text", Text: &text}}}
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicMaxTokens
	}
	mreq := anthropic.MessagesRequest{
		Model:     anthropic.Model(req.Model),
		Messages:  msgs,
		System:    system,
		MaxTokens: maxTokens,
	}
	if req.Temperature > 0 {
		t := float32(req.Temperature)
		mreq.Temperature = &t
	}

	var out *GenerateResponse
	err := c.retry.do(ctx, func() error {
		mctx, meta := withMeta(ctx)
		resp, err := c.client.CreateMessages(mctx, mreq)
		if err != nil {
			return c.mapError(err, meta)
		}
		var parts []string
		for _, block := range resp.Content {
			if block.Type == "text" && block.Text != nil {
				parts = append(parts, *block.Text)
			}
		}
		out = &GenerateResponse{
			ID:        resp.ID,
			RequestID: meta.requestID,
			Choices:   []Choice{{Message: Message{Role: RoleAssistant, Content: strings.Join(parts, "")}}},
			Usage: Usage{
				PromptTokens:     resp.Usage.InputTokens,
				CompletionTokens: resp.Usage.OutputTokens,
				TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
			},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// anthropicStatus maps Anthropic error types to HTTP status codes.
var anthropicStatus = map[string]int{
	"invalid_request_error": http.StatusBadRequest,
	"authentication_error":  http.StatusUnauthorized,
	"permission_error":      http.StatusForbidden,
	"not_found_error":       http.StatusNotFound,
	"rate_limit_error":      http.StatusTooManyRequests,
	"api_error":             http.StatusInternalServerError,
	"overloaded_error":      529,
}

func (c *AnthropicClient) mapError(err error, meta *responseMeta) error {
	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		typ := string(apiErr.Type)
		e := &APIError{StatusCode: anthropicStatus[typ], Code: typ, Message: apiErr.Message, RequestID: meta.requestID}
		if e.StatusCode == http.StatusNotFound && strings.Contains(strings.ToLower(e.Message), "model") {
			e.Code = "model_not_found"
		}
		return classifyAPIError(e, meta.retryAfter)
	}
	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) {
		e := &APIError{StatusCode: reqErr.StatusCode, RequestID: meta.requestID}
		if reqErr.Err != nil {
			e.Message = reqErr.Err.Error()
		}
		return classifyAPIError(e, meta.retryAfter)
	}
	if terr := transportError(err, c.baseURL); terr != nil {
		return terr
	}
	return fmt.Errorf("anthropic request: %w", err)
}

func anthropicFactory(c RuntimeConfig) Runtime {
	c = c.withDefaults(3, 500*time.Millisecond)
	return NewAnthropicClient(c.APIKey, c.BaseURL, c)
}
