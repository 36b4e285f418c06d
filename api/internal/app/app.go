package app

import (
	"context"
	"database/sql"
	"fmt"

	"study-bot/api/internal/config"
	"study-bot/api/internal/llm"
	llmgemini "study-bot/api/internal/llm/gemini"
	llmgenai "study-bot/api/internal/llm/genai"
	llmopenai "study-bot/api/internal/llm/openai"
	"study-bot/api/internal/ocr"
	ocrgemini "study-bot/api/internal/ocr/gemini"
	ocropenai "study-bot/api/internal/ocr/openai"
	"study-bot/api/internal/ocr/yandex"
	"study-bot/api/internal/store"
	"study-bot/api/internal/study"
)

// Deps: всё, что нужно поверхностям (бот, HTTP API, TUI).
type Deps struct {
	Engines     llm.Engines
	Default     llm.Engine
	Recognizers ocr.Recognizers
	Recognizer  ocr.Recognizer // по OCR_ENGINE; nil: сканирование выключено
	Policy      study.CommitPolicy

	DB *sql.DB // nil без DATABASE_URL
}

func (d *Deps) Close() {
	if d.DB != nil {
		_ = d.DB.Close()
	}
}

// Build собирает движки по конфигу. Без ключа движок не создаётся.
// С DSN накатывает миграции и оборачивает движки кэшем генераций.
func Build(ctx context.Context, cfg *config.Config) (*Deps, error) {
	log := config.Logger
	d := &Deps{}

	policy, err := study.ParseCommitPolicy(cfg.CommitPolicy)
	if err != nil {
		return nil, err
	}
	d.Policy = policy

	if cfg.GeminiAPIKey != "" {
		d.Engines.Gemini = llmgemini.New(cfg.GeminiAPIKey, cfg.GeminiModel)
		d.Recognizers.Gemini = ocrgemini.New(cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	if cfg.GenAIAPIKey != "" {
		d.Engines.GenAI = llmgenai.New(cfg.GenAIAPIKey, cfg.GenAIModel)
	}
	if cfg.OpenAIAPIKey != "" {
		d.Engines.OpenAI = llmopenai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
		d.Recognizers.OpenAI = ocropenai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
	}
	if cfg.YCOAuthToken != "" && cfg.YCFolderID != "" {
		d.Recognizers.Yandex = yandex.New(cfg.YCOAuthToken, cfg.YCFolderID)
	}

	if cfg.DatabaseURL != "" {
		if err := store.Migrate(cfg.DatabaseURL); err != nil {
			return nil, err
		}
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		log.Infof("db connected: %s", config.SafeDSNSummary(cfg.DatabaseURL))
		d.DB = db
		repo := store.NewGenerationRepo(db)
		d.Engines = cached(d.Engines, repo, cfg)
	}

	def, err := d.Engines.GetEngine(cfg.DefaultEngine)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("default engine: %w", err)
	}
	d.Default = def

	if rec, err := d.Recognizers.Get(cfg.OCREngine); err == nil {
		d.Recognizer = rec
	} else {
		log.WithError(err).Warn("scanning disabled")
	}
	return d, nil
}

func cached(e llm.Engines, c llm.Cache, cfg *config.Config) llm.Engines {
	wrap := func(eng llm.Engine) llm.Engine {
		if eng == nil {
			return nil
		}
		return llm.NewCached(eng, c, cfg.CacheMaxAge)
	}
	return llm.Engines{
		Gemini: wrap(e.Gemini),
		GenAI:  wrap(e.GenAI),
		OpenAI: wrap(e.OpenAI),
	}
}
