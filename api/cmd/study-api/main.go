package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"study-bot/api/internal/app"
	"study-bot/api/internal/config"
	"study-bot/api/internal/handle"
	"study-bot/api/internal/httpserver"
	"study-bot/api/internal/store"
)

func main() {
	cfg := config.Load()
	config.InitLogger(cfg.LogLevel, cfg.LogFormat)
	log := config.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer deps.Close()

	h := handle.New(&deps.Engines, deps.Default, &deps.Recognizers,
		handle.WithCommitPolicy(deps.Policy),
		handle.WithTimeout(cfg.GenerateTimeout),
	)
	srv := httpserver.New(":"+cfg.Port, handle.Routes(h))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpserver.Run(gctx, srv) })
	if deps.DB != nil && cfg.CacheMaxAge > 0 {
		repo := store.NewGenerationRepo(deps.DB)
		g.Go(func() error {
			purgeLoop(gctx, repo, cfg.CacheMaxAge)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.WithError(err).Fatal("study-api stopped")
	}
	log.Info("study-api stopped")
}

// purgeLoop раз в час удаляет из кэша генерации старше maxAge.
func purgeLoop(ctx context.Context, repo *store.GenerationRepo, maxAge time.Duration) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := repo.Purge(ctx, maxAge)
			if err != nil {
				config.Logger.WithError(err).Warn("cache purge failed")
				continue
			}
			config.Logger.WithField("rows", n).Debug("cache purged")
		}
	}
}
