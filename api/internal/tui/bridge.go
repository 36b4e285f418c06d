package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"study-bot/api/internal/study"
)

// refreshMsg: контроллер изменился; актуальное состояние берётся из Snapshot.
type refreshMsg struct{}

// Bind подписывает программу на изменения контроллера.
// Подписчик не блокируется: подряд идущие изменения схлопываются в один refreshMsg,
// поэтому Update может синхронно вызывать методы контроллера.
func Bind(ctrl *study.Controller, send func(tea.Msg)) (stop func()) {
	signal := make(chan struct{}, 1)
	done := make(chan struct{})

	ctrl.Subscribe(func(study.Snapshot) {
		select {
		case signal <- struct{}{}:
		default:
		}
	})

	go func() {
		for {
			select {
			case <-done:
				return
			case <-signal:
				send(refreshMsg{})
			}
		}
	}()
	return func() { close(done) }
}
