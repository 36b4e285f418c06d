package telegram

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"study-bot/api/internal/config"
	"study-bot/api/internal/study"
)

// session: экран одного чата: контроллер и то, что уже показано.
type session struct {
	chatID int64
	ctrl   *study.Controller

	mu       sync.Mutex
	rendered study.State
}

func (r *Router) session(chatID int64) *session {
	if v, ok := r.sessions.Load(chatID); ok {
		return v.(*session)
	}
	s := &session{
		chatID: chatID,
		ctrl:   study.NewController(r.EngManager.ForChat(chatID), study.WithCommitPolicy(r.Policy)),
	}
	s.ctrl.Subscribe(func(snap study.Snapshot) { r.render(s, snap) })
	v, _ := r.sessions.LoadOrStore(chatID, s)
	return v.(*session)
}

// render показывает изменения State; правки темы и переключателей
// отображаются карточкой опций.
func (r *Router) render(s *session, snap study.Snapshot) {
	s.mu.Lock()
	if sameState(snap.State, s.rendered) {
		s.mu.Unlock()
		return
	}
	s.rendered = snap.State
	s.mu.Unlock()

	st := snap.State
	switch st.Phase {
	case study.Pending:
		if _, err := r.Bot.Request(tgbotapi.NewChatAction(s.chatID, tgbotapi.ChatTyping)); err != nil {
			config.Logger.WithError(err).WithField("chat_id", s.chatID).Debug("telegram: chat action failed")
		}
		r.send(s.chatID, "⏳ Processing...")
	case study.Idle:
		r.send(s.chatID, st.Display())
	case study.Succeeded:
		for i, part := range splitMessage(st.Display(), maxMessageRunes) {
			if i == 0 {
				part = "Generated Study Material:\n\n" + part
			}
			r.send(s.chatID, part)
		}
	default:
		r.send(s.chatID, "⚠️ "+st.Display())
	}
}

// Ошибки сравниваются по тексту: Text уже содержит их описание.
func sameState(a, b study.State) bool {
	return a.Phase == b.Phase && a.Text == b.Text
}
