// Package genai: Gemini через новый SDK google.golang.org/genai.
package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	gogenai "google.golang.org/genai"

	"study-bot/api/internal/llm"
)

type Engine struct {
	APIKey  string
	Model   string
	BaseURL string // пусто: боевой endpoint; читается при создании клиента

	cl *lazyClient
}

type lazyClient struct {
	once sync.Once
	c    *gogenai.Client
	err  error
}

func New(apiKey, model string) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
		cl:     &lazyClient{},
	}
}

func (e *Engine) Name() string     { return "genai" }
func (e *Engine) GetModel() string { return e.Model }

// WithModel: копия с другой моделью и тем же клиентом.
func (e *Engine) WithModel(model string) llm.Engine {
	cp := *e
	cp.Model = strings.TrimSpace(model)
	return &cp
}

func (e *Engine) client() (*gogenai.Client, error) {
	e.cl.once.Do(func() {
		cfg := &gogenai.ClientConfig{
			APIKey:  e.APIKey,
			Backend: gogenai.BackendGeminiAPI,
		}
		if e.BaseURL != "" {
			cfg.HTTPOptions = gogenai.HTTPOptions{BaseURL: e.BaseURL}
		}
		e.cl.c, e.cl.err = gogenai.NewClient(context.Background(), cfg)
	})
	return e.cl.c, e.cl.err
}

func (e *Engine) Generate(ctx context.Context, instruction string) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("GENAI_API_KEY is empty")
	}
	client, err := e.client()
	if err != nil {
		return "", fmt.Errorf("genai client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, e.Model, gogenai.Text(instruction), nil)
	if err != nil {
		return "", err
	}
	return result.Text(), nil
}
