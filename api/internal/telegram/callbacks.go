package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"study-bot/api/internal/config"
	"study-bot/api/internal/study"
)

func (r *Router) handleCallback(cb tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	cid := cb.Message.Chat.ID
	s := r.session(cid)

	switch {
	case strings.HasPrefix(cb.Data, cbTogglePrefix):
		cat, ok := study.ParseCategory(strings.TrimPrefix(cb.Data, cbTogglePrefix))
		if !ok {
			r.ack(cb.ID, "")
			return
		}
		on := s.ctrl.FlipToggle(cat)
		label := cat.Label() + ": off"
		if on {
			label = cat.Label() + ": on"
		}
		r.ack(cb.ID, label)
		r.refreshKeyboard(cid, cb.Message.MessageID, s)

	case cb.Data == cbSubmit:
		r.ack(cb.ID, "")
		r.submit(cid, s)

	case cb.Data == cbClear:
		r.ack(cb.ID, "Cleared")
		s.ctrl.Clear()
		r.refreshKeyboard(cid, cb.Message.MessageID, s)

	default:
		r.ack(cb.ID, "")
	}
}

func (r *Router) ack(callbackID, text string) {
	if _, err := r.Bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		config.Logger.WithError(err).WithField("callback_id", callbackID).Warn("telegram: callback ack failed")
	}
}

func (r *Router) refreshKeyboard(chatID int64, msgID int, s *session) {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, msgID, makeOptionsKeyboard(s.ctrl.Snapshot().Toggles))
	if _, err := r.Bot.Request(edit); err != nil {
		config.Logger.WithError(err).WithField("chat_id", chatID).Warn("telegram: keyboard edit failed")
	}
}
