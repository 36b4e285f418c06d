package llm

import (
	"context"
	"time"

	"study-bot/api/internal/config"
	"study-bot/api/internal/util"
)

// Cache: хранилище готовых генераций (см. store.GenerationRepo).
type Cache interface {
	Find(ctx context.Context, promptHash, engine, model string, maxAge time.Duration) (string, error)
	Upsert(ctx context.Context, promptHash, engine, model, text string) error
}

// Cached оборачивает движок кэшем. Ошибки кэша считаются промахом и наверх не идут.
type Cached struct {
	Engine
	cache  Cache
	maxAge time.Duration
}

func NewCached(e Engine, c Cache, maxAge time.Duration) *Cached {
	return &Cached{Engine: e, cache: c, maxAge: maxAge}
}

func (c *Cached) Generate(ctx context.Context, instruction string) (string, error) {
	log := config.WithContext(ctx).WithField("engine", c.Name())
	key := util.SHA256Hex(instruction)

	if txt, err := c.cache.Find(ctx, key, c.Name(), c.GetModel(), c.maxAge); err == nil && txt != "" {
		log.Debug("llm: cache hit")
		return txt, nil
	}

	txt, err := c.Engine.Generate(ctx, instruction)
	if err != nil || txt == "" {
		return txt, err
	}
	if err := c.cache.Upsert(ctx, key, c.Name(), c.GetModel(), txt); err != nil {
		log.WithError(err).Warn("llm: cache upsert failed")
	}
	return txt, nil
}

// WithModel оборачивает тем же кэшем копию движка с другой моделью.
func (c *Cached) WithModel(model string) Engine {
	inner, ok := WithModel(c.Engine, model)
	if !ok {
		return c
	}
	return NewCached(inner, c.cache, c.maxAge)
}
