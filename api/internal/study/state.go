package study

import (
	"errors"
	"fmt"
)

// Phase: стадия жизненного цикла последнего запроса.
type Phase int

const (
	Idle Phase = iota
	Pending
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Тексты, которые видит пользователь.
const (
	MsgNeedsSelection = "Please select at least one category to generate a response."
	MsgEmptyResult    = "Sorry, I could not process that.\nPlease try again."
	MsgExternalPrefix = "Something went wrong! "
	MsgNoResponse     = "No response yet."
)

var (
	ErrNeedsSelection = errors.New("no category selected")
	ErrEmptyResult    = errors.New("empty result from model")
	ErrExternal       = errors.New("generation failed")
)

// State: то, что показывается в области ответа.
type State struct {
	Phase Phase
	Text  string
	Err   error
}

func (s State) Busy() bool { return s.Phase == Pending }

// Display: текст для области ответа; пустой ответ показывается заглушкой.
func (s State) Display() string {
	if s.Text == "" {
		return MsgNoResponse
	}
	return s.Text
}

// ErrorKind: машинное имя класса ошибки (для API и логов).
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNeedsSelection):
		return "validation"
	case errors.Is(err, ErrEmptyResult):
		return "empty_result"
	case errors.Is(err, ErrExternal):
		return "external_failure"
	default:
		return "unknown"
	}
}

func succeeded(text string) State { return State{Phase: Succeeded, Text: text} }

func needsSelection() State {
	return State{Phase: Failed, Text: MsgNeedsSelection, Err: ErrNeedsSelection}
}

func emptyResult() State {
	return State{Phase: Failed, Text: MsgEmptyResult, Err: ErrEmptyResult}
}

func externalFailure(err error) State {
	return State{
		Phase: Failed,
		Text:  MsgExternalPrefix + err.Error(),
		Err:   fmt.Errorf("%w: %w", ErrExternal, err),
	}
}

// Snapshot: согласованная копия всего состояния экрана.
type Snapshot struct {
	Topic   string
	Toggles Toggles
	State   State
}
