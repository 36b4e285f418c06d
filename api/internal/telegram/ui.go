package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"study-bot/api/internal/config"
	"study-bot/api/internal/study"
)

const (
	maxMessageRunes = 3900

	cbTogglePrefix = "toggle:"
	cbSubmit       = "submit"
	cbClear        = "clear"
)

// Карточка опций: четыре переключателя, Submit, Clear.
func makeOptionsKeyboard(t study.Toggles) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(study.Categories)+1)
	for _, c := range study.Categories {
		mark := "⬜ "
		if t.Enabled(c) {
			mark = "✅ "
		}
		btn := tgbotapi.NewInlineKeyboardButtonData(mark+c.Label(), cbTogglePrefix+c.String())
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Submit Topic", cbSubmit),
		tgbotapi.NewInlineKeyboardButtonData("Clear", cbClear),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (r *Router) sendCard(chatID int64, s *session, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = makeOptionsKeyboard(s.ctrl.Snapshot().Toggles)
	if _, err := r.Bot.Send(msg); err != nil {
		config.Logger.WithError(err).WithField("chat_id", chatID).Warn("telegram: send options card failed")
	}
}

// splitMessage режет текст на куски не длиннее max рун, по возможности по переводу строки.
func splitMessage(text string, max int) []string {
	runes := []rune(text)
	if len(runes) <= max {
		return []string{text}
	}
	var parts []string
	for len(runes) > max {
		cut := max
		if i := lastIndexRune(runes[:max], '\n'); i > max/2 {
			cut = i + 1
		}
		parts = append(parts, strings.TrimRight(string(runes[:cut]), "\n"))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}

func lastIndexRune(rs []rune, r rune) int {
	for i := len(rs) - 1; i >= 0; i-- {
		if rs[i] == r {
			return i
		}
	}
	return -1
}
