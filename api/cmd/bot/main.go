package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"study-bot/api/internal/app"
	"study-bot/api/internal/config"
	"study-bot/api/internal/httpserver"
	"study-bot/api/internal/llm"
	"study-bot/api/internal/telegram"
	"study-bot/api/internal/util"
)

func main() {
	cfg := config.Load()
	config.InitLogger(cfg.LogLevel, cfg.LogFormat)
	log := config.Logger

	token := config.MustEnv("TELEGRAM_BOT_TOKEN")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer deps.Close()

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Fatal(err)
	}
	bot.Debug = false

	r := &telegram.Router{
		Bot:             bot,
		EngManager:      llm.NewManager(deps.Default),
		Engines:         deps.Engines,
		OCR:             deps.Recognizer,
		OCRLangs:        cfg.OCRLangs,
		Policy:          deps.Policy,
		GenerateTimeout: cfg.GenerateTimeout,
	}

	// DefaultServeMux: ListenForWebhook регистрирует обработчик именно там.
	http.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if deps.DB != nil {
			pctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			if err := deps.DB.PingContext(pctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("db: not ok\n" + err.Error()))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := httpserver.New("0.0.0.0:"+cfg.Port, http.DefaultServeMux)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpserver.Run(gctx, srv) })

	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		updates, err := startWebhook(bot, token, webhookURL)
		if err != nil {
			log.Fatal(err)
		}
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case upd, ok := <-updates:
					if !ok {
						log.Warn("webhook updates channel closed")
						return nil
					}
					r.HandleUpdate(upd)
				}
			}
		})
	} else {
		g.Go(func() error {
			runPolling(gctx, bot, r.HandleUpdate)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("bot stopped")
		return
	}
	log.Info("bot stopped")
}

func startWebhook(bot *tgbotapi.BotAPI, token, baseURL string) (tgbotapi.UpdatesChannel, error) {
	// секретный путь вебхука
	path := "/webhook/" + shortHash(token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		return nil, err
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		return nil, err
	}
	config.Logger.WithField("path", path).Info("webhook registered")
	return bot.ListenForWebhook(path), nil
}

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") { // HTTP 429 от Telegram
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return 1 * time.Second
}

// runPolling: устойчивый long polling с backoff.
func runPolling(ctx context.Context, bot *tgbotapi.BotAPI, handle func(tgbotapi.Update)) {
	log := config.Logger
	offset := 0
	const (
		baseDelay = 1 * time.Second
		maxDelay  = 15 * time.Second
	)

	for {
		select {
		case <-ctx.Done():
			log.Info("polling: context cancelled")
			return
		default:
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30

		updates, err := bot.GetUpdates(u)
		if err != nil {
			d := min(max(retryDelayFromError(err), baseDelay), maxDelay)
			log.WithError(err).Warnf("polling error; retry in %v", d)
			sleep(ctx, d)
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			handle(upd)
		}

		if len(updates) == 0 {
			sleep(ctx, 200*time.Millisecond)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func shortHash(s string) string {
	return util.SHA256Hex(s)[:16]
}
