package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"study-bot/api/internal/app"
	"study-bot/api/internal/config"
	"study-bot/api/internal/study"
	"study-bot/api/internal/tui"
)

func main() {
	cfg := config.Load()
	config.InitLogger(cfg.LogLevel, cfg.LogFormat)

	// Логи в терминал ломают экран: пишем в файл или никуда.
	config.Logger.SetOutput(io.Discard)
	if path := os.Getenv("TUI_LOG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			fmt.Fprintln(os.Stderr, "log file:", err)
			os.Exit(1)
		}
		defer f.Close()
		config.Logger.SetOutput(f)
	}

	deps, err := app.Build(context.Background(), cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer deps.Close()

	ctrl := study.NewController(deps.Default, study.WithCommitPolicy(deps.Policy))
	m := tui.New(ctrl, tui.Options{
		Recognizer: deps.Recognizer,
		Langs:      cfg.OCRLangs,
		Timeout:    cfg.GenerateTimeout,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	stop := tui.Bind(ctrl, p.Send)
	defer stop()

	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
