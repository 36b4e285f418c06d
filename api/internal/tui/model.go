package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"study-bot/api/internal/ocr"
	"study-bot/api/internal/study"
)

type focus int

const (
	focusTopic focus = iota
	focusToggles
	focusScan
)

type Options struct {
	Recognizer ocr.Recognizer // nil: сканирование выключено
	Langs      []string
	Timeout    time.Duration // 0: без таймаута

	// MarkdownStyle: стиль glamour; пусто: автоопределение по терминалу.
	MarkdownStyle string
}

// recognizedMsg: итог распознавания файла.
type recognizedMsg struct {
	text string
	err  error
}

// Model повторяет экран бота: тема, четыре переключателя, Submit/Scan/Clear и область ответа.
type Model struct {
	ctrl *study.Controller
	opts Options

	snap   study.Snapshot
	focus  focus
	cursor int

	topic    textinput.Model
	path     textinput.Model
	spinner  spinner.Model
	response viewport.Model
	md       *glamour.TermRenderer
	help     help.Model
	keymap   keymap

	scanning bool
	err      error

	width  int
	height int
}

func New(ctrl *study.Controller, opts Options) Model {
	m := Model{
		ctrl:   ctrl,
		opts:   opts,
		snap:   ctrl.Snapshot(),
		keymap: newKeymap(),
		help:   help.New(),
	}

	m.topic = textinput.New()
	m.topic.Placeholder = "Enter a topic..."
	m.topic.Prompt = "> "
	m.topic.CharLimit = 0
	m.topic.SetValue(m.snap.Topic)
	m.topic.Focus()

	m.path = textinput.New()
	m.path.Placeholder = "Path to an image or PDF..."
	m.path.Prompt = "scan> "

	m.spinner = spinner.New(spinner.WithSpinner(spinner.MiniDot))
	m.response = viewport.New(80, 10)

	mdOpts := []glamour.TermRendererOption{
		glamour.WithPreservedNewLines(),
		glamour.WithWordWrap(0),
	}
	if opts.MarkdownStyle != "" {
		mdOpts = append(mdOpts, glamour.WithStandardStyle(opts.MarkdownStyle))
	} else {
		mdOpts = append(mdOpts, glamour.WithAutoStyle())
	}
	m.md, _ = glamour.NewTermRenderer(mdOpts...)

	return m.refreshResponse()
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m.resize(), nil

	case refreshMsg:
		return m.sync(), nil

	case recognizedMsg:
		return m.handleRecognized(msg)

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m.refreshResponse(), cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.response, cmd = m.response.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keymap.openHelp):
		m.keymap.openHelp.SetEnabled(false)
		m.keymap.closeHelp.SetEnabled(true)
		m.help.ShowAll = true
		return m.resize(), nil
	case key.Matches(msg, m.keymap.closeHelp):
		m.keymap.closeHelp.SetEnabled(false)
		m.keymap.openHelp.SetEnabled(true)
		m.help.ShowAll = false
		return m.resize(), nil
	case key.Matches(msg, m.keymap.submit):
		return m.submit()
	case key.Matches(msg, m.keymap.clear):
		m.err = nil
		m.ctrl.Clear()
		return m.sync(), nil
	case key.Matches(msg, m.keymap.scan):
		if m.opts.Recognizer == nil {
			m.err = fmt.Errorf("scanning is not configured")
			return m, nil
		}
		return m.setFocus(focusScan), textinput.Blink
	}

	switch m.focus {
	case focusScan:
		switch {
		case key.Matches(msg, m.keymap.escape):
			return m.setFocus(focusTopic), nil
		case key.Matches(msg, m.keymap.confirm):
			return m.startScan()
		}
		var cmd tea.Cmd
		m.path, cmd = m.path.Update(msg)
		return m, cmd

	case focusToggles:
		switch {
		case key.Matches(msg, m.keymap.next), key.Matches(msg, m.keymap.prev):
			return m.setFocus(focusTopic), textinput.Blink
		case key.Matches(msg, m.keymap.up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case key.Matches(msg, m.keymap.down):
			if m.cursor < len(study.Categories)-1 {
				m.cursor++
			}
			return m, nil
		case key.Matches(msg, m.keymap.toggle):
			m.ctrl.FlipToggle(study.Categories[m.cursor])
			return m.sync(), nil
		}
		var cmd tea.Cmd
		m.response, cmd = m.response.Update(msg)
		return m, cmd

	default:
		if key.Matches(msg, m.keymap.next) || key.Matches(msg, m.keymap.prev) {
			return m.setFocus(focusToggles), nil
		}
		var cmd tea.Cmd
		m.topic, cmd = m.topic.Update(msg)
		if v := m.topic.Value(); v != m.snap.Topic {
			m.ctrl.SetTopic(v)
			m.snap = m.ctrl.Snapshot()
		}
		return m, cmd
	}
}

func (m Model) setFocus(f focus) Model {
	m.focus = f
	m.topic.Blur()
	m.path.Blur()
	switch f {
	case focusTopic:
		m.topic.Focus()
	case focusScan:
		m.path.Reset()
		m.path.Focus()
	}
	return m
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	m.err = nil
	ctx, cancel := m.requestContext()
	done := m.ctrl.SubmitCurrent(ctx)
	go func() {
		for range done {
		}
		cancel()
	}()
	return m.sync(), m.spinnerTick()
}

func (m Model) startScan() (tea.Model, tea.Cmd) {
	path := strings.TrimSpace(m.path.Value())
	if path == "" {
		return m, nil
	}
	m.err = nil
	m.scanning = true
	m = m.setFocus(focusTopic)

	rec, opts, timeout := m.opts.Recognizer, ocr.Options{Langs: m.opts.Langs}, m.opts.Timeout
	scan := func() tea.Msg {
		img, err := os.ReadFile(path)
		if err != nil {
			return recognizedMsg{err: err}
		}
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		text, err := rec.Recognize(ctx, img, opts)
		return recognizedMsg{text: text, err: err}
	}
	return m.refreshResponse(), tea.Batch(scan, m.spinnerTick())
}

func (m Model) handleRecognized(msg recognizedMsg) (tea.Model, tea.Cmd) {
	m.scanning = false
	if msg.err != nil {
		m.err = fmt.Errorf("could not recognize text: %w", msg.err)
		return m.refreshResponse(), nil
	}
	if strings.TrimSpace(msg.text) == "" {
		m.err = fmt.Errorf("no text found in the file")
		return m.refreshResponse(), nil
	}

	ctx, cancel := m.requestContext()
	done := m.ctrl.OnTextRecognized(ctx, msg.text)
	go func() {
		for range done {
		}
		cancel()
	}()
	return m.sync(), m.spinnerTick()
}

func (m Model) requestContext() (context.Context, context.CancelFunc) {
	if m.opts.Timeout > 0 {
		return context.WithTimeout(context.Background(), m.opts.Timeout)
	}
	return context.WithCancel(context.Background())
}

func (m Model) spinnerTick() tea.Cmd {
	sp := m.spinner
	return func() tea.Msg { return sp.Tick() }
}

func (m Model) busy() bool { return m.scanning || m.snap.State.Busy() }

// sync перечитывает состояние контроллера.
func (m Model) sync() Model {
	m.snap = m.ctrl.Snapshot()
	if m.topic.Value() != m.snap.Topic {
		m.topic.SetValue(m.snap.Topic)
		m.topic.CursorEnd()
	}
	return m.refreshResponse()
}

func (m Model) resize() Model {
	m.topic.Width = max(m.width-inputStyle.GetHorizontalFrameSize()-4, 10)
	m.path.Width = m.topic.Width
	m.response.Width = max(m.width, 20)

	used := lipgloss.Height(m.headerView()) + lipgloss.Height(m.help.View(m.keymap))
	if m.err != nil {
		used += lipgloss.Height(m.errView())
	}
	m.response.Height = max(m.height-used, 3)
	return m.refreshResponse()
}

func (m Model) refreshResponse() Model {
	var content string
	st := m.snap.State
	switch {
	case m.busy():
		content = spinnerStyle.Render(m.spinner.View()) + " Processing..."
	case st.Phase == study.Succeeded:
		content = m.renderMarkdown(st.Text)
	case st.Phase == study.Failed:
		content = failedStyle.Render(st.Display())
	default:
		content = responseStyle.Render(st.Display())
	}
	m.response.SetContent(content)
	m.response.GotoTop()
	return m
}

func (m Model) renderMarkdown(text string) string {
	if m.md == nil {
		return responseStyle.Render(text)
	}
	out, err := m.md.Render(text)
	if err != nil {
		return responseStyle.Render(text)
	}
	return out
}

func (m Model) View() string {
	parts := []string{m.headerView(), m.response.View()}
	if m.err != nil {
		parts = append(parts, m.errView())
	}
	parts = append(parts, m.help.View(m.keymap))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) headerView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Study Material"))
	sb.WriteString("\n")
	sb.WriteString(labelStyle.Render("Topic"))
	sb.WriteString("\n")
	sb.WriteString(inputStyle.Render(m.topic.View()))
	sb.WriteString("\n")
	sb.WriteString(labelStyle.Render("Select Study Material Options:"))
	sb.WriteString("\n")
	for i, c := range study.Categories {
		mark := "[ ]"
		if m.snap.Toggles.Enabled(c) {
			mark = "[x]"
		}
		line := mark + " " + c.Label()
		if m.focus == focusToggles && i == m.cursor {
			sb.WriteString(toggleCursorStyle.Render("› " + line))
		} else {
			sb.WriteString(toggleStyle.Render("  " + line))
		}
		sb.WriteString("\n")
	}
	if m.focus == focusScan {
		sb.WriteString(inputStyle.Render(m.path.View()))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) errView() string {
	return errorStyle.Render("Error: " + m.err.Error())
}
