package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"study-bot/api/internal/llm"
)

type Engine struct {
	client *goopenai.Client
	apiKey string
	model  string
}

// New; baseURL пустой: api.openai.com.
func New(apiKey, model, baseURL string) *Engine {
	apiKey = strings.TrimSpace(apiKey)
	cfg := goopenai.DefaultConfig(apiKey)
	if b := strings.TrimSpace(baseURL); b != "" {
		cfg.BaseURL = strings.TrimRight(b, "/")
	}
	return &Engine{
		client: goopenai.NewClientWithConfig(cfg),
		apiKey: apiKey,
		model:  strings.TrimSpace(model),
	}
}

func (e *Engine) Name() string { return "gpt" }

func (e *Engine) GetModel() string { return e.model }

// WithModel: копия с другой моделью, клиент общий.
func (e *Engine) WithModel(model string) llm.Engine {
	cp := *e
	cp.model = strings.TrimSpace(model)
	return &cp
}

func (e *Engine) Generate(ctx context.Context, instruction string) (string, error) {
	if e.apiKey == "" {
		return "", errors.New("OPENAI_API_KEY is empty")
	}
	resp, err := e.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: e.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: instruction},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
