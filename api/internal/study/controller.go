package study

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"study-bot/api/internal/config"
)

// Generator: внешний сервис генерации текста.
type Generator interface {
	Generate(ctx context.Context, instruction string) (string, error)
}

type GeneratorFunc func(ctx context.Context, instruction string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, instruction string) (string, error) {
	return f(ctx, instruction)
}

// RecognizedFunc получает текст от распознавания документа;
// канал как у Submit.
type RecognizedFunc func(ctx context.Context, text string) <-chan State

// CommitPolicy решает, какой из пересекающихся запросов попадёт в State.
type CommitPolicy int

const (
	// CommitLastCompleted: побеждает запрос, завершившийся последним.
	CommitLastCompleted CommitPolicy = iota
	// CommitLatestSubmitted: результат принимается, только если после него
	// не было новой отправки (или Clear).
	CommitLatestSubmitted
)

func (p CommitPolicy) String() string {
	if p == CommitLatestSubmitted {
		return "latest_submitted"
	}
	return "last_completed"
}

func ParseCommitPolicy(s string) (CommitPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last_completed":
		return CommitLastCompleted, nil
	case "latest_submitted":
		return CommitLatestSubmitted, nil
	}
	return CommitLastCompleted, fmt.Errorf("unknown commit policy %q", s)
}

type Option func(*Controller)

func WithCommitPolicy(p CommitPolicy) Option {
	return func(c *Controller) { c.policy = p }
}

// Controller владеет темой, переключателями и состоянием ответа одного экрана.
// Подписчики вызываются в порядке изменений и не должны синхронно вызывать
// изменяющие методы контроллера.
type Controller struct {
	gen    Generator
	policy CommitPolicy

	mu      sync.Mutex
	topic   string
	toggles Toggles
	state   State
	seq     uint64
	subs    []func(Snapshot)

	notifyMu sync.Mutex
	wg       sync.WaitGroup
}

func NewController(gen Generator, opts ...Option) *Controller {
	c := &Controller{gen: gen}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Controller) Policy() CommitPolicy { return c.policy }

// Subscribe регистрирует слушателя изменений состояния.
func (c *Controller) Subscribe(fn func(Snapshot)) {
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	c.mu.Unlock()
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{Topic: c.topic, Toggles: c.toggles, State: c.state}
}

// notifyAndUnlock отпускает c.mu и вызывает подписчиков; порядок вызовов
// совпадает с порядком изменений.
func (c *Controller) notifyAndUnlock() {
	snap := c.snapshotLocked()
	subs := slices.Clone(c.subs)
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

func (c *Controller) SetTopic(topic string) {
	c.mu.Lock()
	c.topic = topic
	c.notifyAndUnlock()
}

func (c *Controller) SetToggle(cat Category, on bool) {
	c.mu.Lock()
	c.toggles = c.toggles.With(cat, on)
	c.notifyAndUnlock()
}

// FlipToggle инвертирует переключатель и возвращает новое значение.
func (c *Controller) FlipToggle(cat Category) bool {
	c.mu.Lock()
	on := !c.toggles.Enabled(cat)
	c.toggles = c.toggles.With(cat, on)
	c.notifyAndUnlock()
	return on
}

// Clear сбрасывает экран. Запросы в полёте не отменяются.
func (c *Controller) Clear() {
	c.mu.Lock()
	c.topic = ""
	c.toggles = Toggles{}
	c.state = State{}
	if c.policy == CommitLatestSubmitted {
		c.seq++
	}
	c.notifyAndUnlock()
}

// SubmitCurrent отправляет текущую тему с текущими переключателями.
func (c *Controller) SubmitCurrent(ctx context.Context) <-chan State {
	c.mu.Lock()
	topic, toggles := c.topic, c.toggles
	c.mu.Unlock()
	return c.Submit(ctx, topic, toggles)
}

// OnTextRecognized подставляет распознанный текст в тему и сразу отправляет.
func (c *Controller) OnTextRecognized(ctx context.Context, text string) <-chan State {
	c.SetTopic(text)
	return c.SubmitCurrent(ctx)
}

// Recognized: OnTextRecognized в виде обработчика для слоя распознавания.
func (c *Controller) Recognized() RecognizedFunc { return c.OnTextRecognized }

// Submit строит инструкцию и асинхронно вызывает генератор.
// Канал получает итоговое состояние этого запроса; при NoOp закрывается пустым.
func (c *Controller) Submit(ctx context.Context, topic string, toggles Toggles) <-chan State {
	done := make(chan State, 1)

	p := Build(topic, toggles)
	if p.Outcome == NoOp {
		close(done)
		return done
	}

	id := uuid.NewString()
	ctx = config.WithFields(ctx, logrus.Fields{"study_request": id})
	log := config.WithContext(ctx)

	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.state = State{Phase: Pending}
	c.notifyAndUnlock()

	if p.Outcome == NeedsSelection {
		log.Debug("study: no category selected")
		st := needsSelection()
		c.commit(ctx, seq, st)
		done <- st
		close(done)
		return done
	}

	instruction := p.Text
	log.WithField("prompt_len", len(instruction)).Info("study: request submitted")

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(done)

		text, err := c.gen.Generate(ctx, instruction)
		var st State
		switch {
		case err != nil:
			log.WithError(err).Warn("study: generation failed")
			st = externalFailure(err)
		case text == "":
			log.Warn("study: empty result")
			st = emptyResult()
		default:
			st = succeeded(text)
		}
		c.commit(ctx, seq, st)
		done <- st
	}()
	return done
}

// commit записывает итог запроса seq с учётом политики.
func (c *Controller) commit(ctx context.Context, seq uint64, st State) bool {
	c.mu.Lock()
	if c.policy == CommitLatestSubmitted && seq != c.seq {
		latest := c.seq
		c.mu.Unlock()
		config.WithContext(ctx).WithFields(logrus.Fields{
			"seq":    seq,
			"latest": latest,
		}).Info("study: stale result dropped")
		return false
	}
	c.state = st
	c.notifyAndUnlock()
	config.WithContext(ctx).WithField("phase", st.Phase.String()).Debug("study: state committed")
	return true
}

// Wait ждёт завершения всех запросов в полёте.
func (c *Controller) Wait() { c.wg.Wait() }
