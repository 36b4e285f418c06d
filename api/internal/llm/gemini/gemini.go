package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"study-bot/api/internal/llm"
)

type Engine struct {
	APIKey string
	model  string

	// клиент создаётся при первом запросе и общий для копий WithModel
	cl *lazyClient
}

type lazyClient struct {
	once sync.Once
	c    *genai.Client
	err  error
}

func New(apiKey, model string) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		model:  strings.TrimSpace(model),
		cl:     &lazyClient{},
	}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.model }

// WithModel: копия движка с другой моделью; исходный не меняется.
func (e *Engine) WithModel(model string) llm.Engine {
	cp := *e
	cp.model = strings.TrimSpace(model)
	return &cp
}

func (e *Engine) client() (*genai.Client, error) {
	e.cl.once.Do(func() {
		e.cl.c, e.cl.err = genai.NewClient(context.Background(), option.WithAPIKey(e.APIKey))
	})
	return e.cl.c, e.cl.err
}

// Generate отправляет инструкцию как единственную текстовую часть.
// Без текста в ответе возвращает "" без ошибки.
func (e *Engine) Generate(ctx context.Context, instruction string) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := e.client()
	if err != nil {
		return "", err
	}

	m := cl.GenerativeModel(e.model)
	if m == nil {
		return "", fmt.Errorf("gemini: model is nil")
	}

	resp, err := m.GenerateContent(ctx, genai.Text(instruction))
	if err != nil {
		return "", err
	}
	return FirstText(resp), nil
}

// FirstText: первая текстовая часть первого кандидата с контентом.
func FirstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}
