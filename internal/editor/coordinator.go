// Package editor coalesces bursts of note edits into the minimum number of
// durable writes. Every exit path from an editing session (manual save,
// debounce timeout, visibility loss, close, shutdown) funnels into the same
// single-flight write, so no edit is lost and no two writes for the same note
// overlap.
package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jharlan/notedeck/internal/model"
)

// State is the UI-facing lifecycle of an open note. Saved is transient: it
// pulses after a successful write and decays back to Clean on its own.
type State string

const (
	StateClean  State = "clean"
	StateDirty  State = "dirty"
	StateSaving State = "saving"
	StateSaved  State = "saved"
)

// Field names an editable note field.
type Field string

const (
	FieldTitle       Field = "title"
	FieldContent     Field = "content"
	FieldTags        Field = "tags"
	FieldWorkspace   Field = "workspace"
	FieldSubcategory Field = "subcategory"
	FieldColor       Field = "color"
)

var ErrClosed = errors.New("editor: session closed")

// NoteSaver is the slice of the record store the coordinator writes through.
type NoteSaver interface {
	Upsert(n *model.Note) (*model.Note, error)
}

type Config struct {
	// DebounceInterval measures quiet time since the last edit, not time
	// since the first one; every mutation restarts it.
	DebounceInterval time.Duration
	// SavedPulse is how long the transient Saved state lasts.
	SavedPulse time.Duration
}

// Manager owns all open editing sessions and the per-note single-flight
// guard.
type Manager struct {
	saver  NoteSaver
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	flight   singleflight.Group
}

func NewManager(saver NoteSaver, cfg Config, logger *slog.Logger) *Manager {
	return &Manager{
		saver:    saver,
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Open starts (or returns the already-open) editing session for a note. The
// note passed in becomes both the working snapshot and the last known good
// copy. onState may be nil.
func (m *Manager) Open(note model.Note, onState func(State)) (*Session, error) {
	if note.ID == "" {
		return nil, errors.New("editor: note id required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[note.ID]; ok {
		return s, nil
	}
	s := &Session{
		mgr:       m,
		id:        note.ID,
		snapshot:  note.Clone(),
		lastSaved: note.Clone(),
		state:     StateClean,
		onState:   onState,
	}
	m.sessions[note.ID] = s
	return s, nil
}

// Get returns the open session for a note id, or nil.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// Close force-flushes a session and discards it. On a failed flush the
// session stays open and dirty so a later trigger can retry; the error is
// returned to the caller.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s := m.sessions[id]
	m.mu.Unlock()
	if s == nil {
		return nil
	}

	if err := s.FlushIfDirty(); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	s.shutdown()
	return nil
}

// FlushAll flushes every dirty session. Called when the process begins
// shutting down; failures are logged and do not stop the other flushes.
func (m *Manager) FlushAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		if err := s.FlushIfDirty(); err != nil {
			m.logger.Error("flush on shutdown", "note_id", s.id, "error", err)
		}
	}
}

// Session is the per-note save state machine.
type Session struct {
	mgr     *Manager
	id      string
	onState func(State)

	mu        sync.Mutex
	snapshot  model.Note // working copy, mutated by edits
	lastSaved model.Note // last known good copy on disk
	dirty     bool
	gen       uint64 // bumped per mutation; detects edits racing a write
	state     State
	timer     *time.Timer // pending debounce, nil when none
	pulse     *time.Timer
	closed    bool
}

func (s *Session) ID() string { return s.id }

// Snapshot returns a copy of the current working state.
func (s *Session) Snapshot() model.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.Clone()
}

// LastSaved returns a copy of the last state known to be on disk.
func (s *Session) LastSaved() model.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaved.Clone()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Mutate applies one field edit, marks the session dirty, and restarts the
// debounce timer. Tags expects []string; everything else expects string.
func (s *Session) Mutate(field Field, value any) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	if err := s.applyLocked(field, value); err != nil {
		s.mu.Unlock()
		return err
	}

	s.gen++
	s.dirty = true
	s.state = StateDirty
	s.stopPulseLocked()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.mgr.cfg.DebounceInterval, s.debounceFired)
	cb := s.onState
	s.mu.Unlock()

	if cb != nil {
		cb(StateDirty)
	}
	return nil
}

func (s *Session) applyLocked(field Field, value any) error {
	str := func() (string, error) {
		v, ok := value.(string)
		if !ok {
			return "", fmt.Errorf("editor: field %s wants string, got %T", field, value)
		}
		return v, nil
	}

	switch field {
	case FieldTitle:
		v, err := str()
		if err != nil {
			return err
		}
		s.snapshot.Title = v
	case FieldContent:
		v, err := str()
		if err != nil {
			return err
		}
		s.snapshot.Content = v
	case FieldWorkspace:
		v, err := str()
		if err != nil {
			return err
		}
		s.snapshot.WorkspaceID = v
	case FieldSubcategory:
		v, err := str()
		if err != nil {
			return err
		}
		s.snapshot.Subcategory = v
	case FieldColor:
		v, err := str()
		if err != nil {
			return err
		}
		s.snapshot.Color = v
	case FieldTags:
		v, ok := value.([]string)
		if !ok {
			return fmt.Errorf("editor: field tags wants []string, got %T", value)
		}
		s.snapshot.Tags = append([]string(nil), v...)
	default:
		return fmt.Errorf("editor: unknown field %q", field)
	}
	return nil
}

func (s *Session) debounceFired() {
	if err := s.flush(); err != nil {
		s.mgr.logger.Error("debounced save", "note_id", s.id, "error", err)
	}
}

// SaveNow cancels any pending debounce and writes immediately.
func (s *Session) SaveNow() error {
	s.cancelPending()
	return s.flush()
}

// FlushIfDirty is the forced-flush trigger for visibility loss, surface
// close, and process shutdown. It is a no-op on a clean session.
func (s *Session) FlushIfDirty() error {
	s.mu.Lock()
	dirty := s.dirty
	s.mu.Unlock()
	if !dirty {
		return nil
	}
	s.cancelPending()
	return s.flush()
}

func (s *Session) cancelPending() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
}

// flush drives saves until the session is clean. A caller whose trigger
// arrives while another save is in flight joins that flight; if its edits
// were not captured the session is still dirty afterward and the loop issues
// a second write.
func (s *Session) flush() error {
	for {
		s.mu.Lock()
		dirty := s.dirty
		s.mu.Unlock()
		if !dirty {
			return nil
		}
		if _, err, _ := s.mgr.flight.Do(s.id, func() (any, error) {
			return nil, s.save()
		}); err != nil {
			return err
		}
	}
}

// save performs one durable write of the current snapshot. On failure the
// session stays dirty so any later trigger retries; there is no retry loop
// here.
func (s *Session) save() error {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	snap := s.snapshot.Clone()
	gen := s.gen
	s.state = StateSaving
	cb := s.onState
	s.mu.Unlock()

	if cb != nil {
		cb(StateSaving)
	}

	saved, err := s.mgr.saver.Upsert(&snap)

	s.mu.Lock()
	if err != nil {
		s.state = StateDirty
		s.mu.Unlock()
		if cb != nil {
			cb(StateDirty)
		}
		return err
	}

	s.lastSaved = saved.Clone()
	s.snapshot.CreatedAt = saved.CreatedAt
	s.snapshot.UpdatedAt = saved.UpdatedAt

	if s.gen == gen {
		s.dirty = false
		s.state = StateSaved
		s.startPulseLocked()
	} else {
		// An edit landed while the write was in flight; it already
		// restarted the debounce timer and keeps the session dirty.
		s.state = StateDirty
	}
	st := s.state
	s.mu.Unlock()

	if cb != nil {
		cb(st)
	}
	return nil
}

func (s *Session) startPulseLocked() {
	s.stopPulseLocked()
	s.pulse = time.AfterFunc(s.mgr.cfg.SavedPulse, func() {
		s.mu.Lock()
		var cb func(State)
		if s.state == StateSaved {
			s.state = StateClean
			cb = s.onState
		}
		s.mu.Unlock()
		if cb != nil {
			cb(StateClean)
		}
	})
}

func (s *Session) stopPulseLocked() {
	if s.pulse != nil {
		s.pulse.Stop()
		s.pulse = nil
	}
}

func (s *Session) shutdown() {
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.stopPulseLocked()
	s.mu.Unlock()
}
