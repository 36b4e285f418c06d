package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"study-bot/api/internal/ocr"
	"study-bot/api/internal/study"
)

type fakeRecognizer struct {
	text string
	err  error
}

func (f fakeRecognizer) Name() string { return "fake" }
func (f fakeRecognizer) Recognize(ctx context.Context, image []byte, opt ocr.Options) (string, error) {
	return f.text, f.err
}

func newModel(t *testing.T, gen study.GeneratorFunc, rec ocr.Recognizer) (Model, *study.Controller) {
	t.Helper()
	ctrl := study.NewController(gen)
	m := New(ctrl, Options{Recognizer: rec, MarkdownStyle: "notty"})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model), ctrl
}

func press(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func typeText(s string) tea.Msg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keySub   = tea.KeyMsg{Type: tea.KeyCtrlS}
	keyClear = tea.KeyMsg{Type: tea.KeyCtrlL}
	keyScan  = tea.KeyMsg{Type: tea.KeyCtrlO}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
)

func TestTypingSetsTopicAndTogglesFlip(t *testing.T) {
	m, ctrl := newModel(t, func(ctx context.Context, s string) (string, error) { return "x", nil }, nil)

	m = press(m, typeText("Photosynthesis"), keyTab, keyDown, keySpace)

	snap := ctrl.Snapshot()
	if snap.Topic != "Photosynthesis" {
		t.Errorf("topic = %q", snap.Topic)
	}
	if snap.Toggles != (study.Toggles{PracticeQuestions: true}) {
		t.Errorf("toggles = %+v", snap.Toggles)
	}
	if !strings.Contains(m.View(), "[x] Practice Questions") {
		t.Errorf("view does not show the toggle:\n%s", m.View())
	}
}

func TestSubmitRendersResponse(t *testing.T) {
	m, ctrl := newModel(t, func(ctx context.Context, s string) (string, error) {
		return "Chlorophyll", nil
	}, nil)

	m = press(m, typeText("Photosynthesis"), keyTab, keySpace, keySub)
	ctrl.Wait()
	m = press(m, refreshMsg{})

	if st := ctrl.Snapshot().State; st.Phase != study.Succeeded || st.Text != "Chlorophyll" {
		t.Fatalf("state = %+v", st)
	}
	if !strings.Contains(m.View(), "Chlorophyll") {
		t.Errorf("response not rendered:\n%s", m.View())
	}
}

func TestSubmitWithoutCategoryShowsMessage(t *testing.T) {
	calls := 0
	m, _ := newModel(t, func(ctx context.Context, s string) (string, error) {
		calls++
		return "x", nil
	}, nil)

	m = press(m, typeText("Photosynthesis"), keySub)
	if !strings.Contains(m.View(), "Please select at least one category") {
		t.Errorf("view:\n%s", m.View())
	}
	if calls != 0 {
		t.Errorf("generator called %d times", calls)
	}
}

func TestClearResetsScreen(t *testing.T) {
	m, ctrl := newModel(t, func(ctx context.Context, s string) (string, error) { return "x", nil }, nil)
	m = press(m, typeText("Photosynthesis"), keyTab, keySpace, keySub)
	ctrl.Wait()
	m = press(m, refreshMsg{}, keyClear)

	if m.topic.Value() != "" || ctrl.Snapshot().Toggles != (study.Toggles{}) {
		t.Fatalf("not cleared: topic=%q snap=%+v", m.topic.Value(), ctrl.Snapshot())
	}
	if !strings.Contains(m.View(), study.MsgNoResponse) {
		t.Errorf("view:\n%s", m.View())
	}
}

func TestScanAutoSubmits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.jpg")
	if err := os.WriteFile(path, []byte{0xFF, 0xD8}, 0o600); err != nil {
		t.Fatal(err)
	}

	var got string
	m, ctrl := newModel(t, func(ctx context.Context, s string) (string, error) {
		got = s
		return "notes", nil
	}, fakeRecognizer{text: "Mitochondria"})

	m = press(m, keyTab, keySpace, keyTab, keyScan, typeText(path))
	next, cmd := m.Update(keyEnter)
	m = next.(Model)
	if cmd == nil {
		t.Fatal("scan produced no command")
	}
	msg := runUntil[recognizedMsg](t, cmd)
	m = press(m, msg)
	ctrl.Wait()
	m = press(m, refreshMsg{})

	if m.topic.Value() != "Mitochondria" {
		t.Errorf("topic = %q", m.topic.Value())
	}
	if got != study.Build("Mitochondria", study.Toggles{Summary: true}).Text {
		t.Errorf("instruction = %q", got)
	}
}

func TestScanFailureShowsError(t *testing.T) {
	m, _ := newModel(t, func(ctx context.Context, s string) (string, error) { return "x", nil },
		fakeRecognizer{err: errors.New("blurry")})
	m = press(m, recognizedMsg{err: errors.New("blurry")})
	if !strings.Contains(m.View(), "could not recognize text: blurry") {
		t.Errorf("view:\n%s", m.View())
	}
}

func TestScanDisabledWithoutRecognizer(t *testing.T) {
	m, _ := newModel(t, func(ctx context.Context, s string) (string, error) { return "x", nil }, nil)
	m = press(m, keyScan)
	if m.focus == focusScan || m.err == nil {
		t.Errorf("focus = %v err = %v", m.focus, m.err)
	}
}

func TestBindCoalescesNotifications(t *testing.T) {
	ctrl := study.NewController(study.GeneratorFunc(func(ctx context.Context, s string) (string, error) {
		return "x", nil
	}))
	got := make(chan tea.Msg, 16)
	stop := Bind(ctrl, func(msg tea.Msg) { got <- msg })
	defer stop()

	for i := 0; i < 50; i++ {
		ctrl.SetTopic(strings.Repeat("a", i))
	}
	select {
	case msg := <-got:
		if _, ok := msg.(refreshMsg); !ok {
			t.Fatalf("msg = %T", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no refresh delivered")
	}
}

// runUntil выполняет cmd (и вложенные batch) и возвращает первое сообщение типа T.
func runUntil[T tea.Msg](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	var zero T
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case T:
			return msg
		case tea.BatchMsg:
			queue = append(queue, msg...)
		}
	}
	t.Fatalf("no %T produced", zero)
	return zero
}
