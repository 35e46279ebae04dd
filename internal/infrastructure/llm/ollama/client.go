package ollama

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wealthplay/nex-mentor/internal/core/domain"
	"github.com/wealthplay/nex-mentor/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	httpClient httpDoer
	executor   *resilience.Executor
	observer   ChatObserver
}

// ChatObserver is notified once per Chat call with its failure kind
// (empty on success).
type ChatObserver interface {
	ObserveChat(model string, failure domain.FailureKind, duration time.Duration)
}

type Options struct {
	Timeout            time.Duration
	ResilienceExecutor *resilience.Executor
	Observer           ChatObserver
}

func New(baseURL string) *Client {
	return NewWithOptions(baseURL, Options{})
}

func NewWithOptions(baseURL string, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "http://localhost:11434"
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(timeout),
		executor:   options.ResilienceExecutor,
		observer:   options.Observer,
	}
}

type chatRequest struct {
	Model    string               `json:"model"`
	Messages []domain.ChatMessage `json:"messages"`
	Stream   bool                 `json:"stream"`
}

type chatResponse struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
}

// Chat sends a non-streaming /api/chat request and reports the result as an
// outcome instead of an error.
func (c *Client) Chat(ctx context.Context, model string, messages []domain.ChatMessage) domain.ChatOutcome {
	start := time.Now()
	outcome := c.chat(ctx, model, messages)
	if c.observer != nil {
		c.observer.ObserveChat(model, outcome.Failure, time.Since(start))
	}
	return outcome
}

func (c *Client) chat(ctx context.Context, model string, messages []domain.ChatMessage) domain.ChatOutcome {
	request := chatRequest{Model: model, Messages: messages, Stream: false}

	var response chatResponse
	err := c.execute(ctx, "ollama.chat", func(callCtx context.Context) error {
		response = chatResponse{}
		return c.postJSON(callCtx, "/api/chat", request, &response, "chat")
	})
	if err != nil {
		return domain.ChatFailure(model, failureKind(err), err)
	}

	content := strings.TrimSpace(response.Message.Content)
	if content == "" {
		return domain.ChatFailure(model, domain.FailureEmptyResponse, errors.New("ollama chat returned an empty response"))
	}
	return domain.ChatSuccess(model, content)
}

type tagsResponse struct {
	Models []struct {
		Name  string `json:"name"`
		Model string `json:"model"`
	} `json:"models"`
}

// ListModels returns installed model names in the order Ollama reports them.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	var response tagsResponse
	err := c.execute(ctx, "ollama.tags", func(callCtx context.Context) error {
		response = tagsResponse{}
		return c.getJSON(callCtx, "/api/tags", &response, "tags")
	})
	if err != nil {
		return nil, wrapTemporaryIfNeeded("ollama list models", err)
	}

	names := make([]string, 0, len(response.Models))
	for _, m := range response.Models {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			name = strings.TrimSpace(m.Model)
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func (c *Client) execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	if c.executor == nil {
		return fn(ctx)
	}
	if err := c.executor.Execute(ctx, operation, fn, classifyOllamaError); err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	return nil
}
