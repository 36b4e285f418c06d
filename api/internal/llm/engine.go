package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Engine: провайдер генерации текста по инструкции.
// Пустая строка без ошибки означает «модель ничего не вернула».
type Engine interface {
	Name() string
	GetModel() string
	Generate(ctx context.Context, instruction string) (string, error)
}

// ModelSwitcher: движок, который отдаёт свою копию с другой моделью.
type ModelSwitcher interface {
	WithModel(model string) Engine
}

// WithModel возвращает копию e с моделью model; false, если движок так не умеет.
func WithModel(e Engine, model string) (Engine, bool) {
	ms, ok := e.(ModelSwitcher)
	if !ok || strings.TrimSpace(model) == "" {
		return e, false
	}
	return ms.WithModel(model), true
}

type Engines struct {
	Gemini Engine
	GenAI  Engine
	OpenAI Engine
}

var ErrUnknownEngine = errors.New("unknown llm_name; use 'gemini', 'genai' or 'gpt'")

func (e *Engines) GetEngine(llmName string) (Engine, error) {
	var eng Engine
	switch strings.ToLower(strings.TrimSpace(llmName)) {
	case "gemini":
		eng = e.Gemini
	case "genai":
		eng = e.GenAI
	case "gpt", "openai":
		eng = e.OpenAI
	default:
		return nil, ErrUnknownEngine
	}
	if eng == nil {
		return nil, errors.New(llmName + " is not configured")
	}
	return eng, nil
}

// Manager хранит движок по умолчанию и выбор для отдельных чатов.
type Manager struct {
	def Engine
	m   sync.Map // chatID -> Engine
}

func NewManager(defaultEngine Engine) *Manager {
	return &Manager{def: defaultEngine}
}

func (m *Manager) Get(chatID int64) Engine {
	if v, ok := m.m.Load(chatID); ok {
		return v.(Engine)
	}
	return m.def
}

func (m *Manager) Set(chatID int64, e Engine) {
	m.m.Store(chatID, e)
}

func (m *Manager) Reset(chatID int64) {
	m.m.Delete(chatID)
}

// ForChat: генератор, который на каждый вызов берёт текущий движок чата,
// так что /engine действует и на уже созданную сессию.
func (m *Manager) ForChat(chatID int64) *ChatGenerator {
	return &ChatGenerator{m: m, chatID: chatID}
}

type ChatGenerator struct {
	m      *Manager
	chatID int64
}

func (g *ChatGenerator) Generate(ctx context.Context, instruction string) (string, error) {
	eng := g.m.Get(g.chatID)
	if eng == nil {
		return "", errors.New("no llm engine configured")
	}
	return eng.Generate(ctx, instruction)
}
