package study

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type stubGenerator struct {
	calls atomic.Int32
	text  string
	err   error
}

func (s *stubGenerator) Generate(ctx context.Context, instruction string) (string, error) {
	s.calls.Add(1)
	return s.text, s.err
}

func waitState(t *testing.T, ch <-chan State) State {
	t.Helper()
	select {
	case st := <-ch:
		return st
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for request")
	}
	return State{}
}

func TestSubmitSucceeded(t *testing.T) {
	gen := &stubGenerator{text: "Light reactions..."}
	c := NewController(gen)

	var mu sync.Mutex
	var phases []Phase
	c.Subscribe(func(s Snapshot) {
		mu.Lock()
		phases = append(phases, s.State.Phase)
		mu.Unlock()
	})

	st := waitState(t, c.Submit(context.Background(), "Photosynthesis", Toggles{Summary: true}))
	c.Wait()

	if st.Phase != Succeeded || st.Text != "Light reactions..." {
		t.Fatalf("state = %+v", st)
	}
	got := c.Snapshot().State
	if got.Phase != Succeeded || got.Text != "Light reactions..." || got.Busy() {
		t.Fatalf("controller state = %+v busy=%v", got, got.Busy())
	}
	if n := gen.calls.Load(); n != 1 {
		t.Errorf("generator calls = %d, want 1", n)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(phases) != 2 || phases[0] != Pending || phases[1] != Succeeded {
		t.Errorf("phases = %v, want [pending succeeded]", phases)
	}
}

func TestSubmitPassesBuiltInstruction(t *testing.T) {
	var got string
	c := NewController(GeneratorFunc(func(ctx context.Context, instruction string) (string, error) {
		got = instruction
		return "ok", nil
	}))
	waitState(t, c.Submit(context.Background(), "Photosynthesis", Toggles{Summary: true}))

	want := Build("Photosynthesis", Toggles{Summary: true}).Text
	if got != want {
		t.Errorf("instruction = %q, want %q", got, want)
	}
}

func TestSubmitNeedsSelection(t *testing.T) {
	gen := &stubGenerator{text: "unused"}
	c := NewController(gen)

	st := waitState(t, c.Submit(context.Background(), "Photosynthesis", Toggles{}))
	if st.Phase != Failed || st.Text != "Please select at least one category to generate a response." {
		t.Fatalf("state = %+v", st)
	}
	if !errors.Is(st.Err, ErrNeedsSelection) || ErrorKind(st.Err) != "validation" {
		t.Errorf("err = %v", st.Err)
	}
	if c.Snapshot().State.Busy() {
		t.Error("busy after needs-selection")
	}
	if n := gen.calls.Load(); n != 0 {
		t.Errorf("generator calls = %d, want 0", n)
	}
}

func TestSubmitEmptyTopicIsNoOp(t *testing.T) {
	gen := &stubGenerator{text: "first"}
	c := NewController(gen)
	waitState(t, c.Submit(context.Background(), "Photosynthesis", Toggles{Summary: true}))
	before := c.Snapshot().State

	notified := false
	c.Subscribe(func(Snapshot) { notified = true })

	ch := c.Submit(context.Background(), "", Toggles{Summary: true, Vocabulary: true})
	if _, ok := <-ch; ok {
		t.Fatal("no-op submit produced a state")
	}
	if after := c.Snapshot().State; after != before {
		t.Errorf("state changed: %+v -> %+v", before, after)
	}
	if notified {
		t.Error("subscribers notified on no-op")
	}
	if n := gen.calls.Load(); n != 1 {
		t.Errorf("generator calls = %d, want 1", n)
	}
}

func TestSubmitExternalFailure(t *testing.T) {
	c := NewController(&stubGenerator{err: errors.New("network down")})
	st := waitState(t, c.Submit(context.Background(), "Photosynthesis", Toggles{Vocabulary: true}))

	if st.Phase != Failed || st.Text != "Something went wrong! network down" {
		t.Fatalf("state = %+v", st)
	}
	if !errors.Is(st.Err, ErrExternal) || ErrorKind(st.Err) != "external_failure" {
		t.Errorf("err = %v", st.Err)
	}
	c.Wait()
	if c.Snapshot().State.Busy() {
		t.Error("busy after failure")
	}
}

func TestSubmitEmptyResult(t *testing.T) {
	c := NewController(&stubGenerator{text: ""})
	st := waitState(t, c.Submit(context.Background(), "Photosynthesis", Toggles{Resources: true}))

	if st.Phase != Failed || st.Text != "Sorry, I could not process that.\nPlease try again." {
		t.Fatalf("state = %+v", st)
	}
	if ErrorKind(st.Err) != "empty_result" {
		t.Errorf("kind = %q", ErrorKind(st.Err))
	}
	c.Wait()
	if c.Snapshot().State.Busy() {
		t.Error("busy after empty result")
	}
}

func TestPendingWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	c := NewController(GeneratorFunc(func(ctx context.Context, instruction string) (string, error) {
		<-release
		return "done", nil
	}))
	ch := c.Submit(context.Background(), "b", Toggles{Summary: true})
	snap := c.Snapshot()
	if !snap.State.Busy() || snap.State.Text != "" {
		t.Fatalf("state while in flight = %+v", snap.State)
	}
	close(release)
	waitState(t, ch)
}

func TestClearResetsEverything(t *testing.T) {
	c := NewController(&stubGenerator{text: "result"})
	c.SetTopic("Photosynthesis")
	c.SetToggle(Summary, true)
	c.FlipToggle(Resources)
	waitState(t, c.SubmitCurrent(context.Background()))

	c.Clear()
	snap := c.Snapshot()
	if snap.Topic != "" || snap.Toggles != (Toggles{}) || snap.State.Phase != Idle || snap.State.Text != "" {
		t.Fatalf("after Clear: %+v", snap)
	}
	if snap.State.Display() != "No response yet." {
		t.Errorf("display = %q", snap.State.Display())
	}
}

func TestOnTextRecognizedAutoSubmits(t *testing.T) {
	var got string
	c := NewController(GeneratorFunc(func(ctx context.Context, instruction string) (string, error) {
		got = instruction
		return "notes", nil
	}))
	c.SetToggle(Vocabulary, true)

	st := waitState(t, c.OnTextRecognized(context.Background(), "Mitochondria"))
	if st.Phase != Succeeded {
		t.Fatalf("state = %+v", st)
	}
	if c.Snapshot().Topic != "Mitochondria" {
		t.Errorf("topic = %q", c.Snapshot().Topic)
	}
	if got != Build("Mitochondria", Toggles{Vocabulary: true}).Text {
		t.Errorf("instruction = %q", got)
	}
}

func TestSnapshotIsolatedFromLaterEdits(t *testing.T) {
	release := make(chan struct{})
	var got string
	c := NewController(GeneratorFunc(func(ctx context.Context, instruction string) (string, error) {
		<-release
		got = instruction
		return "x", nil
	}))
	c.SetTopic("Photosynthesis")
	c.SetToggle(Summary, true)
	ch := c.SubmitCurrent(context.Background())

	c.SetTopic("Something else")
	c.SetToggle(Resources, true)
	close(release)
	waitState(t, ch)

	if got != Build("Photosynthesis", Toggles{Summary: true}).Text {
		t.Errorf("in-flight instruction changed: %q", got)
	}
}

// racingGenerator блокирует каждый запрос до закрытия канала его темы.
type racingGenerator struct {
	gates map[string]chan struct{}
}

func (r racingGenerator) Generate(ctx context.Context, instruction string) (string, error) {
	for topic, gate := range r.gates {
		if instruction == Build(topic, Toggles{Summary: true}).Text {
			<-gate
			return "result for " + topic, nil
		}
	}
	return "", errors.New("unexpected instruction")
}

func TestOverlappingSubmitsLastCompletedWins(t *testing.T) {
	gen := racingGenerator{gates: map[string]chan struct{}{
		"first":  make(chan struct{}),
		"second": make(chan struct{}),
	}}
	c := NewController(gen)

	first := c.Submit(context.Background(), "first", Toggles{Summary: true})
	second := c.Submit(context.Background(), "second", Toggles{Summary: true})

	close(gen.gates["second"])
	waitState(t, second)
	close(gen.gates["first"])
	waitState(t, first)
	c.Wait()

	// Известное поведение: побеждает тот, кто завершился последним.
	if got := c.Snapshot().State.Text; got != "result for first" {
		t.Fatalf("state text = %q, want result of the first call", got)
	}
}

func TestOverlappingSubmitsLatestSubmittedWins(t *testing.T) {
	gen := racingGenerator{gates: map[string]chan struct{}{
		"first":  make(chan struct{}),
		"second": make(chan struct{}),
	}}
	c := NewController(gen, WithCommitPolicy(CommitLatestSubmitted))

	first := c.Submit(context.Background(), "first", Toggles{Summary: true})
	second := c.Submit(context.Background(), "second", Toggles{Summary: true})

	close(gen.gates["second"])
	waitState(t, second)
	close(gen.gates["first"])
	if st := waitState(t, first); st.Text != "result for first" {
		t.Errorf("first request produced %q", st.Text)
	}
	c.Wait()

	if got := c.Snapshot().State.Text; got != "result for second" {
		t.Fatalf("state text = %q, want result of the second call", got)
	}
}

func TestClearDoesNotCancelInFlight(t *testing.T) {
	release := make(chan struct{})
	c := NewController(GeneratorFunc(func(ctx context.Context, instruction string) (string, error) {
		<-release
		return "late", nil
	}))
	ch := c.Submit(context.Background(), "Photosynthesis", Toggles{Summary: true})
	c.Clear()
	close(release)
	waitState(t, ch)
	c.Wait()

	if got := c.Snapshot().State; got.Phase != Succeeded || got.Text != "late" {
		t.Fatalf("state = %+v, want late result to overwrite the cleared screen", got)
	}
}

func TestClearDropsInFlightUnderLatestSubmitted(t *testing.T) {
	release := make(chan struct{})
	c := NewController(GeneratorFunc(func(ctx context.Context, instruction string) (string, error) {
		<-release
		return "late", nil
	}), WithCommitPolicy(CommitLatestSubmitted))
	ch := c.Submit(context.Background(), "Photosynthesis", Toggles{Summary: true})
	c.Clear()
	close(release)
	waitState(t, ch)
	c.Wait()

	if got := c.Snapshot().State; got.Phase != Idle {
		t.Fatalf("state = %+v, want idle", got)
	}
}

func TestParseCommitPolicy(t *testing.T) {
	for in, want := range map[string]CommitPolicy{
		"":                 CommitLastCompleted,
		"last_completed":   CommitLastCompleted,
		"LATEST_SUBMITTED": CommitLatestSubmitted,
	} {
		got, err := ParseCommitPolicy(in)
		if err != nil || got != want {
			t.Errorf("ParseCommitPolicy(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseCommitPolicy("random"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestSubscribersNotifiedInOrder(t *testing.T) {
	c := NewController(&stubGenerator{text: "x"})

	var order []string
	var late int
	c.Subscribe(func(Snapshot) { order = append(order, "a") })
	c.Subscribe(func(Snapshot) {
		order = append(order, "b")
		if len(order) == 2 {
			// подписка во время оповещения видна только со следующего изменения
			c.Subscribe(func(Snapshot) { late++ })
		}
	})

	c.SetTopic("Photosynthesis")
	if late != 0 {
		t.Fatalf("late subscriber called for the change it was added in")
	}
	c.SetTopic("Mitochondria")

	want := []string{"a", "b", "a", "b"}
	if len(order) != len(want) {
		t.Fatalf("order = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if late != 1 {
		t.Errorf("late subscriber calls = %d, want 1", late)
	}
}
