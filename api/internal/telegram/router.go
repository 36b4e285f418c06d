package telegram

import (
	"context"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"study-bot/api/internal/config"
	"study-bot/api/internal/llm"
	"study-bot/api/internal/ocr"
	"study-bot/api/internal/study"
)

// BotAPI: подмножество *tgbotapi.BotAPI, которым пользуется роутер.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Router struct {
	Bot        BotAPI
	EngManager *llm.Manager
	Engines    llm.Engines
	OCR        ocr.Recognizer
	OCRLangs   []string

	Policy          study.CommitPolicy
	GenerateTimeout time.Duration // 0: без таймаута

	// Download скачивает файл Telegram; nil: обычный HTTP GET.
	Download func(ctx context.Context, url string) ([]byte, error)

	sessions sync.Map // chatID -> *session
}

func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		r.handleCallback(*upd.CallbackQuery)
		return
	}
	if upd.Message == nil {
		return
	}
	msg := upd.Message
	cid := msg.Chat.ID

	switch {
	case msg.IsCommand():
		r.HandleCommand(msg)
	case len(msg.Photo) > 0:
		ph := msg.Photo[len(msg.Photo)-1] // самое большое превью
		r.acceptScan(cid, ph.FileID)
	case msg.Document != nil && isScanDocument(msg.Document):
		r.acceptScan(cid, msg.Document.FileID)
	case strings.TrimSpace(msg.Text) != "":
		s := r.session(cid)
		s.ctrl.SetTopic(strings.TrimSpace(msg.Text))
		r.sendCard(cid, s, "Topic: "+strings.TrimSpace(msg.Text)+"\n\n"+cardHint)
	}
}

func (r *Router) HandleCommand(msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	switch msg.Command() {
	case "start", "help":
		r.sendCard(cid, r.session(cid), startText)
	case "options":
		r.sendCard(cid, r.session(cid), cardHint)
	case "submit":
		r.submit(cid, r.session(cid))
	case "clear":
		r.clear(cid, r.session(cid))
	case "engine":
		r.handleEngineCommand(cid, msg.CommandArguments())
	case "health":
		r.send(cid, "✅ OK")
	default:
		r.send(cid, "Unknown command. Try /help")
	}
}

// submit отправляет текущую тему сессии.
func (r *Router) submit(chatID int64, s *session) {
	ctx, cancel := r.requestContext(chatID)
	done := s.ctrl.SubmitCurrent(ctx)
	go func() {
		for range done {
		}
		cancel()
	}()
}

func (r *Router) clear(chatID int64, s *session) {
	s.ctrl.Clear()
	r.sendCard(chatID, s, "Cleared.\n\n"+cardHint)
}

func (r *Router) requestContext(chatID int64) (context.Context, context.CancelFunc) {
	ctx := config.WithFields(context.Background(), map[string]any{"chat_id": chatID})
	if r.GenerateTimeout > 0 {
		return context.WithTimeout(ctx, r.GenerateTimeout)
	}
	return context.WithCancel(ctx)
}

// handleEngineCommand: /engine {gemini|genai|gpt} [model]
func (r *Router) handleEngineCommand(chatID int64, argLine string) {
	args := strings.Fields(argLine)
	if len(args) == 0 {
		cur := r.EngManager.Get(chatID)
		name := "none"
		if cur != nil {
			name = cur.Name() + " (" + cur.GetModel() + ")"
		}
		r.send(chatID, "Current engine: "+name+
			"\nUsage:\n/engine gemini [model]\n/engine genai [model]\n/engine gpt [model]")
		return
	}

	eng, err := r.Engines.GetEngine(args[0])
	if err != nil {
		r.send(chatID, "❌ "+err.Error())
		return
	}
	// Модель меняется только у копии для этого чата.
	if len(args) > 1 {
		if cp, ok := llm.WithModel(eng, args[1]); ok {
			eng = cp
		} else {
			r.send(chatID, "⚠️ "+eng.Name()+" does not support choosing a model; using "+eng.GetModel()+".")
		}
	}
	r.EngManager.Set(chatID, eng)
	r.send(chatID, "✅ Engine: "+eng.Name()+" ("+eng.GetModel()+").")
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := r.Bot.Send(msg); err != nil {
		config.Logger.WithError(err).WithField("chat_id", chatID).Warn("telegram: send failed")
	}
}

func isScanDocument(d *tgbotapi.Document) bool {
	m := strings.ToLower(d.MimeType)
	return strings.HasPrefix(m, "image/") || m == "application/pdf"
}

const startText = `Hi! I turn a topic or a scanned page into study material.

1. Send a topic as text, or send a photo of a page to scan it.
2. Pick the material you want below.
3. Press Submit.

Scanned pages are submitted right away with the current options.
Commands: /options, /submit, /clear, /engine, /help`

const cardHint = "Select Study Material Options:"
