package editor

import (
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jharlan/notedeck/internal/model"
)

type fakeSaver struct {
	mu    sync.Mutex
	saves []model.Note
	fail  bool
}

func (f *fakeSaver) Upsert(n *model.Note) (*model.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("commit failed")
	}
	saved := n.Clone()
	saved.UpdatedAt = time.Now().UTC()
	f.saves = append(f.saves, saved)
	return &saved, nil
}

func (f *fakeSaver) setFail(fail bool) {
	f.mu.Lock()
	f.fail = fail
	f.mu.Unlock()
}

func (f *fakeSaver) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

func (f *fakeSaver) last() model.Note {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves[len(f.saves)-1]
}

// blockingSaver lets tests hold a write in flight deliberately.
type blockingSaver struct {
	fakeSaver
	started chan struct{}
	release chan struct{}
}

func (b *blockingSaver) Upsert(n *model.Note) (*model.Note, error) {
	b.started <- struct{}{}
	<-b.release
	return b.fakeSaver.Upsert(n)
}

func newTestManager(t *testing.T, saver NoteSaver, debounce time.Duration) *Manager {
	t.Helper()
	return NewManager(saver, Config{
		DebounceInterval: debounce,
		SavedPulse:       40 * time.Millisecond,
	}, slog.Default())
}

func openNote(t *testing.T, m *Manager, id string, onState func(State)) *Session {
	t.Helper()
	s, err := m.Open(model.Note{ID: id, Title: "initial"}, onState)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s
}

func TestDebounceCoalescesBurst(t *testing.T) {
	saver := &fakeSaver{}
	m := newTestManager(t, saver, 60*time.Millisecond)
	s := openNote(t, m, "n1", nil)

	// Three edits inside the quiet window; each restarts the timer.
	s.Mutate(FieldTitle, "d")
	time.Sleep(20 * time.Millisecond)
	s.Mutate(FieldTitle, "dr")
	time.Sleep(20 * time.Millisecond)
	s.Mutate(FieldTitle, "draft")

	if got := saver.count(); got != 0 {
		t.Fatalf("saves before debounce elapsed = %d, want 0", got)
	}

	time.Sleep(150 * time.Millisecond)

	if got := saver.count(); got != 1 {
		t.Fatalf("saves = %d, want exactly 1", got)
	}
	if title := saver.last().Title; title != "draft" {
		t.Errorf("saved title = %q, want state as of the last edit", title)
	}
	if s.Dirty() {
		t.Error("session should be clean after debounced save")
	}
}

func TestManualSaveSkipsDebounce(t *testing.T) {
	saver := &fakeSaver{}
	m := newTestManager(t, saver, time.Hour) // debounce would never fire
	s := openNote(t, m, "n1", nil)

	s.Mutate(FieldContent, "body")
	if err := s.SaveNow(); err != nil {
		t.Fatalf("save now: %v", err)
	}
	if got := saver.count(); got != 1 {
		t.Fatalf("saves = %d, want 1", got)
	}
	if saver.last().Content != "body" {
		t.Errorf("saved content = %q", saver.last().Content)
	}
	if s.Dirty() {
		t.Error("expected clean after manual save")
	}
}

func TestFlushIfDirtyNoopWhenClean(t *testing.T) {
	saver := &fakeSaver{}
	m := newTestManager(t, saver, time.Hour)
	s := openNote(t, m, "n1", nil)

	if err := s.FlushIfDirty(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if got := saver.count(); got != 0 {
		t.Errorf("saves = %d, want 0 for clean session", got)
	}
}

func TestFailedSaveStaysDirty(t *testing.T) {
	saver := &fakeSaver{fail: true}
	m := newTestManager(t, saver, time.Hour)
	s := openNote(t, m, "n1", nil)

	s.Mutate(FieldTitle, "unsaved")
	if err := s.SaveNow(); err == nil {
		t.Fatal("expected save error")
	}
	if !s.Dirty() {
		t.Fatal("session must remain dirty after a failed write")
	}

	// A subsequent trigger retries and succeeds.
	saver.setFail(false)
	if err := s.FlushIfDirty(); err != nil {
		t.Fatalf("retry flush: %v", err)
	}
	if got := saver.count(); got != 1 {
		t.Fatalf("saves = %d, want 1", got)
	}
	if s.Dirty() {
		t.Error("expected clean after successful retry")
	}
}

func TestRacingTriggersProduceOneWrite(t *testing.T) {
	saver := &blockingSaver{
		started: make(chan struct{}, 8),
		release: make(chan struct{}),
	}
	m := newTestManager(t, saver, time.Hour)
	s := openNote(t, m, "n1", nil)

	s.Mutate(FieldTitle, "racy")

	// Visibility loss, shutdown flush, and manual save all fire at once.
	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.FlushIfDirty(); err != nil {
				t.Errorf("flush: %v", err)
			}
		}()
	}

	<-saver.started // one write is in flight
	close(saver.release)
	wg.Wait()

	if got := saver.count(); got != 1 {
		t.Fatalf("saves = %d, want 1: racing triggers must coalesce", got)
	}
}

func TestEditDuringInFlightSaveGetsSecondWrite(t *testing.T) {
	saver := &blockingSaver{
		started: make(chan struct{}, 8),
		release: make(chan struct{}, 8),
	}
	m := newTestManager(t, saver, time.Hour)
	s := openNote(t, m, "n1", nil)

	s.Mutate(FieldTitle, "v1")

	done := make(chan error, 1)
	go func() { done <- s.SaveNow() }()

	<-saver.started // first write holds v1
	s.Mutate(FieldTitle, "v2")
	saver.release <- struct{}{}

	// The flush loop sees the session still dirty and writes again.
	<-saver.started
	saver.release <- struct{}{}

	if err := <-done; err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := saver.count(); got != 2 {
		t.Fatalf("saves = %d, want 2", got)
	}
	if saver.saves[0].Title != "v1" || saver.saves[1].Title != "v2" {
		t.Errorf("saved titles = [%q, %q], want [v1, v2]", saver.saves[0].Title, saver.saves[1].Title)
	}
	if s.Dirty() {
		t.Error("expected clean once the racing edit is persisted")
	}
}

func TestSavedPulseDecaysToClean(t *testing.T) {
	saver := &fakeSaver{}
	var mu sync.Mutex
	var states []State
	m := newTestManager(t, saver, time.Hour)
	s := openNote(t, m, "n1", func(st State) {
		mu.Lock()
		states = append(states, st)
		mu.Unlock()
	})

	s.Mutate(FieldTitle, "x")
	if err := s.SaveNow(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if st := s.State(); st != StateSaved {
		t.Fatalf("state = %s, want saved right after write", st)
	}

	time.Sleep(100 * time.Millisecond)
	if st := s.State(); st != StateClean {
		t.Fatalf("state = %s, want clean after pulse decay", st)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []State{StateDirty, StateSaving, StateSaved, StateClean}
	if len(states) != len(want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("states = %v, want %v", states, want)
		}
	}
}

func TestCloseFlushesAndDiscards(t *testing.T) {
	saver := &fakeSaver{}
	m := newTestManager(t, saver, time.Hour)
	s := openNote(t, m, "n1", nil)

	s.Mutate(FieldContent, "final words")
	if err := m.Close("n1"); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := saver.count(); got != 1 {
		t.Fatalf("saves = %d, want 1 forced by close", got)
	}
	if m.Get("n1") != nil {
		t.Error("session should be discarded after close")
	}
	if err := s.Mutate(FieldTitle, "late"); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}

func TestCloseKeepsSessionOnFailedFlush(t *testing.T) {
	saver := &fakeSaver{fail: true}
	m := newTestManager(t, saver, time.Hour)
	s := openNote(t, m, "n1", nil)

	s.Mutate(FieldTitle, "precious")
	if err := m.Close("n1"); err == nil {
		t.Fatal("expected close to surface the flush failure")
	}
	if m.Get("n1") == nil {
		t.Fatal("session must survive a failed close so edits are not dropped")
	}
	if !s.Dirty() {
		t.Error("session must stay dirty")
	}
}

func TestFlushAllOnShutdown(t *testing.T) {
	saver := &fakeSaver{}
	m := newTestManager(t, saver, time.Hour)
	a := openNote(t, m, "a", nil)
	b := openNote(t, m, "b", nil)
	openNote(t, m, "clean", nil)

	a.Mutate(FieldTitle, "a edit")
	b.Mutate(FieldTitle, "b edit")

	m.FlushAll()

	if got := saver.count(); got != 2 {
		t.Fatalf("saves = %d, want 2 (clean session untouched)", got)
	}
}

func TestOpenIsIdempotentPerNote(t *testing.T) {
	m := newTestManager(t, &fakeSaver{}, time.Hour)
	s1 := openNote(t, m, "n1", nil)
	s2 := openNote(t, m, "n1", nil)
	if s1 != s2 {
		t.Error("expected the same session for the same note id")
	}

	if _, err := m.Open(model.Note{}, nil); err == nil {
		t.Error("expected error for empty note id")
	}
}

func TestMutateValidation(t *testing.T) {
	m := newTestManager(t, &fakeSaver{}, time.Hour)
	s := openNote(t, m, "n1", nil)

	if err := s.Mutate(Field("font"), "x"); err == nil {
		t.Error("expected error for unknown field")
	}
	if err := s.Mutate(FieldTitle, 42); err == nil {
		t.Error("expected error for wrong value type")
	}
	if err := s.Mutate(FieldTags, []string{"a", "b"}); err != nil {
		t.Errorf("tags mutate: %v", err)
	}
	if got := s.Snapshot().Tags; len(got) != 2 {
		t.Errorf("tags = %v, want 2 entries", got)
	}
	if s.State() != StateDirty {
		t.Errorf("state = %s, want dirty", s.State())
	}
}
